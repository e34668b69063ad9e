// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package songlake

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/pkg/errors"
)

// SongplayPartitionWidth is the size of the id range reserved for each input
// partition when numbering songplays. The partition ordinal occupies the bits
// above it, so ids are unique within a run and increase within a partition,
// but they are not contiguous and not stable across runs.
const SongplayPartitionWidth uint64 = 1 << 33

// IDRange is inclusive at Start and exclusive at End... like slices.
type IDRange struct {
	Start uint64
	End   uint64
}

// RangeAllocator hands out disjoint id ranges, one per partition.
type RangeAllocator interface {
	Get(partition int) (*IDRange, error)
}

// RangeNexter generates ids from a single range.
type RangeNexter interface {
	Next() (uint64, error)
}

// PartitionAllocator is a RangeAllocator which derives each range from the
// partition ordinal, so no coordination between partitions is needed.
type PartitionAllocator struct {
	width uint64
	mu    sync.Mutex
	given map[int]struct{}
}

// NewPartitionAllocator returns a PartitionAllocator with ranges of the given
// width, which must be a power of two no smaller than 1<<16.
func NewPartitionAllocator(width uint64) *PartitionAllocator {
	if width < 1<<16 || bits.OnesCount64(width) > 1 {
		panic(fmt.Sprintf("bad width in NewPartitionAllocator: %d", width))
	}
	return &PartitionAllocator{
		width: width,
		given: make(map[int]struct{}),
	}
}

// Get returns the range of the partition. Each partition's range can be taken
// only once.
func (a *PartitionAllocator) Get(partition int) (*IDRange, error) {
	if partition < 0 {
		return nil, errors.Errorf("negative partition %d", partition)
	}
	shift := uint(bits.TrailingZeros64(a.width))
	if uint64(partition) > (^uint64(0))>>shift-1 {
		return nil, errors.Errorf("partition %d out of range for width %d", partition, a.width)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.given[partition]; ok {
		return nil, errors.Errorf("range for partition %d already allocated", partition)
	}
	a.given[partition] = struct{}{}
	start := uint64(partition) << shift
	return &IDRange{Start: start, End: start + a.width}, nil
}

type rangeNexter struct {
	r *IDRange
}

// NewRangeNexter returns a RangeNexter over r.
func NewRangeNexter(r *IDRange) RangeNexter {
	return &rangeNexter{r: r}
}

func (n *rangeNexter) Next() (uint64, error) {
	if n.r.Start >= n.r.End {
		return 0, errors.Errorf("id range exhausted at %d", n.r.End)
	}
	n.r.Start++
	return n.r.Start - 1, nil
}

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
	"github.com/pkg/errors"
)

// BuildSongPlays joins plays to the catalog on catalog title == event song.
// Matching is exact: no case folding, no trimming. Plays without a match are
// dropped, and a play matching several catalog records yields one row each.
// Catalog records without a song id never match. Rows come out in play order,
// then catalog order.
//
// BuildSongPlays works from the raw catalog and the filtered events, never
// from the extracted dimension tables. It fails if a play's partition can't be
// given an id range, or if a partition runs out of ids.
func BuildSongPlays(plays []EventRecord, catalog []CatalogRecord) ([]SongPlay, error) {
	byTitle := make(map[string][]CatalogRecord)
	for _, rec := range catalog {
		if rec.Title == nil || rec.SongID == nil {
			continue
		}
		byTitle[*rec.Title] = append(byTitle[*rec.Title], rec)
	}

	alloc := NewPartitionAllocator(SongplayPartitionWidth)
	nexters := make(map[int]RangeNexter)
	nextID := func(partition int) (uint64, error) {
		n, ok := nexters[partition]
		if !ok {
			r, err := alloc.Get(partition)
			if err != nil {
				return 0, errors.Wrap(err, "allocating songplay ids")
			}
			n = NewRangeNexter(r)
			nexters[partition] = n
		}
		id, err := n.Next()
		return id, errors.Wrapf(err, "songplay id for partition %d", partition)
	}

	songplays := make([]SongPlay, 0)
	for _, e := range plays {
		if e.Song == nil || e.StartTime.IsZero() {
			continue
		}
		matches := byTitle[*e.Song]
		if len(matches) == 0 {
			continue
		}
		cal := Calendar(e.StartTime)
		for _, rec := range matches {
			id, err := nextID(e.Partition)
			if err != nil {
				return nil, err
			}
			songplays = append(songplays, SongPlay{
				SongplayID: id,
				StartTime:  e.StartTime,
				Year:       cal.Year,
				Month:      cal.Month,
				UserID:     e.UserID,
				Level:      e.Level,
				SongID:     *rec.SongID,
				ArtistID:   rec.ArtistID,
				SessionID:  e.SessionID,
				Location:   e.Location,
				UserAgent:  e.UserAgent,
			})
		}
	}
	return songplays, nil
}

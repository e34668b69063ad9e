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

// Package json decodes songlake records from streams of JSON objects.
package json

import (
	"io"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sparkify/songlake"
)

// Source is a songlake.Source for reading json data. The stream may hold a
// single object or any number of whitespace separated objects.
type Source struct {
	dec *json.Decoder
}

// NewSource gets a new json source which will decode from the given reader.
func NewSource(r io.Reader) *Source {
	return &Source{
		dec: json.NewDecoder(r),
	}
}

// Record implements songlake.Source. It returns the next json object that can
// be decoded from the reader. It is guaranteed to return a
// map[string]interface{} if there is no error.
func (s *Source) Record() (rec interface{}, err error) {
	var res map[string]interface{}
	err = s.dec.Decode(&res)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New("decoded null where an object was expected")
	}
	return res, nil
}

type rawSourceSource struct {
	mu sync.Mutex
	rs songlake.RawSource

	s         *Source
	cur       songlake.NamedReadCloser
	partition int
}

// NewSourceFromRawSource returns a Source which decodes every reader of rs in
// turn. Each record gets the ordinal of its reader stored under
// songlake.PartitionAt. Decoding errors name the reader they occurred in.
func NewSourceFromRawSource(rs songlake.RawSource) songlake.Source {
	return &rawSourceSource{rs: rs, partition: -1}
}

func (r *rawSourceSource) Record() (rec interface{}, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		if r.s == nil {
			reader, err := r.rs.NextReader()
			if err == io.EOF {
				return nil, err
			} else if err != nil {
				return nil, errors.Wrap(err, "getting next reader")
			}
			r.cur = reader
			r.s = NewSource(reader)
			r.partition++
		}
		rec, err = r.s.Record()
		if err == io.EOF {
			r.s = nil
			if err := r.cur.Close(); err != nil {
				return nil, errors.Wrapf(err, "closing %s", r.cur.Name())
			}
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "decoding json from %s", r.cur.Name())
		}
		rec.(map[string]interface{})[songlake.PartitionAt] = r.partition
		return rec, nil
	}
}

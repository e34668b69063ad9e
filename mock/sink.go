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

// Package mock holds in-memory implementations of the songlake interfaces for
// use in tests.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sparkify/songlake"
)

// Sink is an in-memory songlake.Sink. Each Write replaces what was stored at
// the destination. It is safe for concurrent use.
type Sink struct {
	mu     sync.Mutex
	tables map[string]*songlake.Table
	order  []string

	// Fail, if set, is called before each write and its error returned.
	Fail func(dest string, t *songlake.Table) error
	// OnWrite, if set, is called after each successful write.
	OnWrite func(dest string)
}

// Write implements songlake.Sink.
func (s *Sink) Write(ctx context.Context, dest string, t *songlake.Table) error {
	if s.Fail != nil {
		if err := s.Fail(dest, t); err != nil {
			return err
		}
	}
	if err := t.Validate(); err != nil {
		return errors.Wrap(err, "mock sink")
	}
	cp := *t
	cp.Rows = append([][]interface{}(nil), t.Rows...)
	s.mu.Lock()
	if s.tables == nil {
		s.tables = make(map[string]*songlake.Table)
	}
	s.tables[dest] = &cp
	s.order = append(s.order, dest)
	s.mu.Unlock()
	if s.OnWrite != nil {
		s.OnWrite(dest)
	}
	return nil
}

// Table returns what is stored at dest, or nil.
func (s *Sink) Table(dest string) *songlake.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[dest]
}

// Writes returns the destinations written, in write order.
func (s *Sink) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Ledger is an in-memory songlake.Ledger.
type Ledger struct {
	mu      sync.Mutex
	Commits []songlake.Commit
	Err     error
}

// Commit implements songlake.Ledger.
func (l *Ledger) Commit(c songlake.Commit) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.Commits = append(l.Commits, c)
	return nil
}

// Source is a songlake.Source over a fixed list of records. If Err is set it
// is returned once the records run out, instead of io.EOF.
type Source struct {
	mu      sync.Mutex
	Records []interface{}
	Err     error
}

// Record implements songlake.Source.
func (s *Source) Record() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Records) == 0 {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, io.EOF
	}
	rec := s.Records[0]
	s.Records = s.Records[1:]
	return rec, nil
}

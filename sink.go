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
	"context"
	"time"
)

// Sink persists tables. Write replaces whatever was stored at dest with the
// contents of t: it never appends or merges. If t has partition keys, rows
// are laid out in one nested directory per key value, in key order. A Sink
// should make the whole table visible at once or not at all, as far as its
// storage allows.
type Sink interface {
	Write(ctx context.Context, dest string, t *Table) error
}

// Commit describes a table write which completed.
type Commit struct {
	RunID       string    `json:"run_id"`
	Table       string    `json:"table"`
	Dest        string    `json:"dest"`
	Rows        int       `json:"rows"`
	CommittedAt time.Time `json:"committed_at"`
}

// Ledger records completed table writes.
type Ledger interface {
	Commit(c Commit) error
}

// NopLedger records nothing.
type NopLedger struct{}

// Commit does nothing.
func (NopLedger) Commit(Commit) error { return nil }

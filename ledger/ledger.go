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

// Package ledger provides a songlake.Ledger which keeps the history of table
// commits in boltdb, so that past runs can be listed and the latest write of
// each table found without touching the output store.
package ledger

import (
	"encoding/binary"
	"time"

	"github.com/boltdb/bolt"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sparkify/songlake"
)

var (
	commitBucket = []byte("commits")
	latestBucket = []byte("latest")
)

// Ledger is a songlake.Ledger backed by a boltdb file. Commits are stored in
// the order they were made; a second bucket maps each table name to the key
// of its latest commit.
type Ledger struct {
	Db *bolt.DB
}

// Run summarizes the commits of one pipeline run.
type Run struct {
	ID       string    `json:"id"`
	Tables   []string  `json:"tables"`
	Rows     int       `json:"rows"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Open opens (creating if needed) the ledger stored in filename.
func Open(filename string) (*Ledger, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(commitBucket); err != nil {
			return errors.Wrap(err, "creating commits bucket")
		}
		if _, err := tx.CreateBucketIfNotExists(latestBucket); err != nil {
			return errors.Wrap(err, "creating latest bucket")
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return &Ledger{Db: db}, nil
}

// Close syncs and closes the underlying boltdb.
func (l *Ledger) Close() error {
	err := l.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return l.Db.Close()
}

// Commit implements songlake.Ledger.
func (l *Ledger) Commit(c songlake.Commit) error {
	val, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding commit")
	}
	return l.Db.Update(func(tx *bolt.Tx) error {
		cb := tx.Bucket(commitBucket)
		seq, err := cb.NextSequence()
		if err != nil {
			return errors.Wrap(err, "getting sequence")
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		if err := cb.Put(key, val); err != nil {
			return errors.Wrap(err, "inserting into commits bucket")
		}
		return errors.Wrap(tx.Bucket(latestBucket).Put([]byte(c.Table), key), "inserting into latest bucket")
	})
}

// Commits returns every recorded commit, oldest first.
func (l *Ledger) Commits() ([]songlake.Commit, error) {
	commits := make([]songlake.Commit, 0)
	err := l.Db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(commitBucket).ForEach(func(k, v []byte) error {
			var c songlake.Commit
			if err := json.Unmarshal(v, &c); err != nil {
				return errors.Wrapf(err, "decoding commit %d", binary.BigEndian.Uint64(k))
			}
			commits = append(commits, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

// Latest returns the most recent commit of table, and false if the table was
// never written.
func (l *Ledger) Latest(table string) (c songlake.Commit, ok bool, err error) {
	err = l.Db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(latestBucket).Get([]byte(table))
		if key == nil {
			return nil
		}
		val := tx.Bucket(commitBucket).Get(key)
		if val == nil {
			return errors.Errorf("latest commit of %s is missing", table)
		}
		ok = true
		return errors.Wrap(json.Unmarshal(val, &c), "decoding commit")
	})
	return c, ok, err
}

// Runs groups the recorded commits by run, in the order the runs started.
func (l *Ledger) Runs() ([]Run, error) {
	commits, err := l.Commits()
	if err != nil {
		return nil, err
	}
	runs := make([]Run, 0)
	idx := make(map[string]int)
	for _, c := range commits {
		i, ok := idx[c.RunID]
		if !ok {
			i = len(runs)
			idx[c.RunID] = i
			runs = append(runs, Run{ID: c.RunID, Started: c.CommittedAt})
		}
		r := &runs[i]
		r.Tables = append(r.Tables, c.Table)
		r.Rows += c.Rows
		if c.CommittedAt.After(r.Finished) {
			r.Finished = c.CommittedAt
		}
		if c.CommittedAt.Before(r.Started) {
			r.Started = c.CommittedAt
		}
	}
	return runs, nil
}

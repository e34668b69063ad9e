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
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Pipeline reads the catalog and the event log and writes the songs, artists,
// users, time and songplays tables below OutputRoot.
//
// The catalog stage (songs, artists) and the event stage (users, time) run
// concurrently, each reading its whole input before writing anything. The
// songplays table is built once both inputs are in memory, from the raw
// catalog and the filtered events. A failed read or write fails the run;
// tables already written stay written.
type Pipeline struct {
	Catalog    Source
	Events     Source
	Sink       Sink
	OutputRoot string

	RunID  string
	Ledger Ledger
	Stats  Statter
	Log    Logger
}

// Report summarizes a run.
type Report struct {
	RunID string

	mu   sync.Mutex
	rows map[string]int
}

// Rows returns the number of rows written to the named table, and whether it
// was written at all.
func (r *Report) Rows(table string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[table]
	return n, ok
}

// Tables returns the names of the tables written so far.
func (r *Report) Tables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.rows))
	for _, name := range []string{TableSongs, TableArtists, TableUsers, TableTime, TableSongplays} {
		if _, ok := r.rows[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

func (r *Report) add(table string, rows int) {
	r.mu.Lock()
	r.rows[table] = rows
	r.mu.Unlock()
}

func (p *Pipeline) setDefaults() {
	if p.RunID == "" {
		p.RunID = uuid.New().String()
	}
	if p.Ledger == nil {
		p.Ledger = NopLedger{}
	}
	if p.Stats == nil {
		p.Stats = NopStatter{}
	}
	if p.Log == nil {
		p.Log = NopLogger{}
	}
}

func (p *Pipeline) validate() error {
	if p.Catalog == nil {
		return errors.New("no catalog source")
	}
	if p.Events == nil {
		return errors.New("no event source")
	}
	if p.Sink == nil {
		return errors.New("no sink")
	}
	return nil
}

// Run executes the pipeline once. The returned Report lists the tables that
// were written, even when Run fails part way.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	p.setDefaults()
	report := &Report{RunID: p.RunID, rows: make(map[string]int)}
	if err := p.validate(); err != nil {
		return report, errors.Wrap(err, "validating pipeline")
	}
	start := time.Now()
	p.Log.Printf("starting run %s", p.RunID)

	var (
		catalog []CatalogRecord
		plays   []EventRecord
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		catalog, err = p.runCatalogStage(gctx, report)
		return err
	})
	eg.Go(func() (err error) {
		plays, err = p.runEventStage(gctx, report)
		return err
	})
	if err := eg.Wait(); err != nil {
		return report, err
	}

	songplays, err := BuildSongPlays(plays, catalog)
	if err != nil {
		return report, errors.Wrap(err, "building songplays")
	}
	p.Stats.Count("records.dropped", int64(untimed(plays)), 1, "table:"+TableSongplays)
	if err := p.write(ctx, SongPlaysTable(songplays), report); err != nil {
		return report, err
	}

	p.Stats.Timing("run", time.Since(start), 1)
	p.Log.Printf("finished run %s in %v", p.RunID, time.Since(start))
	return report, nil
}

func (p *Pipeline) runCatalogStage(ctx context.Context, report *Report) ([]CatalogRecord, error) {
	catalog, err := ReadCatalog(p.Catalog)
	if err != nil {
		return nil, errors.Wrap(err, "extracting catalog")
	}
	p.Stats.Count("records.read", int64(len(catalog)), 1, "source:catalog")
	p.Log.Debugf("read %d catalog records", len(catalog))

	songs := ExtractSongs(catalog)
	p.Stats.Count("records.dropped", int64(len(catalog)-len(songs)), 1, "table:"+TableSongs)
	if err := p.write(ctx, SongsTable(songs), report); err != nil {
		return nil, err
	}
	artists := ExtractArtists(catalog)
	p.Stats.Count("records.dropped", int64(len(catalog)-len(artists)), 1, "table:"+TableArtists)
	if err := p.write(ctx, ArtistsTable(artists), report); err != nil {
		return nil, err
	}
	return catalog, nil
}

func (p *Pipeline) runEventStage(ctx context.Context, report *Report) ([]EventRecord, error) {
	events, err := ReadEvents(p.Events)
	if err != nil {
		return nil, errors.Wrap(err, "extracting events")
	}
	p.Stats.Count("records.read", int64(len(events)), 1, "source:events")
	plays := FilterPlays(events)
	p.Log.Debugf("read %d events, %d plays", len(events), len(plays))

	if err := p.write(ctx, UsersTable(ExtractUsers(plays)), report); err != nil {
		return nil, err
	}
	times := ExtractTime(plays)
	p.Stats.Count("records.dropped", int64(len(plays)-len(times)), 1, "table:"+TableTime)
	if err := p.write(ctx, TimeTable(times), report); err != nil {
		return nil, err
	}
	return plays, nil
}

// untimed counts the plays with no timestamp, which can't be placed in the
// time or songplays partitions.
func untimed(plays []EventRecord) int {
	n := 0
	for _, e := range plays {
		if e.StartTime.IsZero() {
			n++
		}
	}
	return n
}

// write hands one table to the sink. Cancellation is honored only between
// tables.
func (p *Pipeline) write(ctx context.Context, t *Table, report *Report) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "aborted before writing %s", t.Name)
	}
	if err := t.Validate(); err != nil {
		return errors.Wrap(err, "validating table")
	}
	dest := JoinPath(p.OutputRoot, t.Name)
	start := time.Now()
	if err := p.Sink.Write(ctx, dest, t); err != nil {
		return errors.Wrapf(err, "writing %s to %s", t.Name, dest)
	}
	p.Stats.Count("rows.written", int64(len(t.Rows)), 1, "table:"+t.Name)
	p.Stats.Timing("write", time.Since(start), 1, "table:"+t.Name)
	report.add(t.Name, len(t.Rows))
	err := p.Ledger.Commit(Commit{
		RunID:       p.RunID,
		Table:       t.Name,
		Dest:        dest,
		Rows:        len(t.Rows),
		CommittedAt: time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrapf(err, "recording commit of %s", t.Name)
	}
	p.Log.Printf("wrote %d rows to %s", len(t.Rows), dest)
	return nil
}

// JoinPath appends name to a storage root, which may be a local directory or
// an object-store URL.
func JoinPath(root, name string) string {
	if root == "" {
		return name
	}
	return strings.TrimRight(root, "/") + "/" + name
}

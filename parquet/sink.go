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

// Package parquet provides a songlake.Sink which writes tables as Parquet
// files, using an embedded DuckDB to do the encoding and the partitioning.
package parquet

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sparkify/songlake"
)

// Publisher pushes a committed table directory to remote storage.
type Publisher interface {
	Publish(ctx context.Context, dir, dest string) error
}

// Sink is a songlake.Sink writing Parquet. Partitioned tables are laid out
// Hive style, one "key=value" directory per partition key in key order, with
// the partition columns carried only in the directory names.
//
// Destinations are local directories, unless they are remote URLs and a
// Publisher is set: then the table is staged below StagingDir and handed to
// the Publisher.
type Sink struct {
	db *sql.DB

	// Compression is the Parquet codec, e.g. "snappy" or "zstd".
	Compression string
	// StagingDir holds tables bound for remote destinations. Defaults to
	// os.TempDir().
	StagingDir string
	// Publisher, when set, receives every table whose destination is remote.
	Publisher Publisher
	// IsRemote decides which destinations go to the Publisher.
	IsRemote func(dest string) bool
}

// NewSink opens an in-memory DuckDB for encoding.
func NewSink() (*Sink, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(err, "opening duckdb")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connecting to duckdb")
	}
	return &Sink{
		db:          db,
		Compression: "snappy",
		IsRemote:    func(string) bool { return false },
	}, nil
}

// Close releases the DuckDB instance.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Write implements songlake.Sink. The table is encoded into a fresh
// directory next to dest, then swapped into place, so dest holds either the
// previous table or the new one.
func (s *Sink) Write(ctx context.Context, dest string, t *songlake.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if s.Publisher != nil && s.IsRemote != nil && s.IsRemote(dest) {
		return s.writeRemote(ctx, dest, t)
	}
	return s.writeLocal(ctx, dest, t)
}

func (s *Sink) writeRemote(ctx context.Context, dest string, t *songlake.Table) error {
	base := s.StagingDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "songlake-"+uuid.New().String(), t.Name)
	defer os.RemoveAll(filepath.Dir(dir))
	if err := s.encode(ctx, dir, t); err != nil {
		return err
	}
	return errors.Wrap(s.Publisher.Publish(ctx, dir, dest), "publishing")
}

func (s *Sink) writeLocal(ctx context.Context, dest string, t *songlake.Table) error {
	dest = filepath.Clean(dest)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrap(err, "making parent directory")
	}
	id := uuid.New().String()
	staging := dest + ".staging-" + id
	defer os.RemoveAll(staging)
	if err := s.encode(ctx, staging, t); err != nil {
		return err
	}

	old := dest + ".old-" + id
	_, err := os.Stat(dest)
	switch {
	case err == nil:
		if err := os.Rename(dest, old); err != nil {
			return errors.Wrap(err, "moving previous table aside")
		}
	case !os.IsNotExist(err):
		return errors.Wrap(err, "statting destination")
	}
	if err := os.Rename(staging, dest); err != nil {
		if _, statErr := os.Stat(old); statErr == nil {
			_ = os.Rename(old, dest)
		}
		return errors.Wrap(err, "moving new table into place")
	}
	return errors.Wrap(os.RemoveAll(old), "removing previous table")
}

// encode writes t as Parquet below dir, which must not exist yet.
func (s *Sink) encode(ctx context.Context, dir string, t *songlake.Table) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "making table directory")
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return errors.Wrap(err, "getting connection")
	}
	defer conn.Close()

	stage := "stage_" + strings.Replace(uuid.New().String(), "-", "", -1)
	if _, err := conn.ExecContext(ctx, createStmt(stage, t)); err != nil {
		return errors.Wrap(err, "creating staging table")
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+stage)
	}()

	if err := load(ctx, conn, stage, t); err != nil {
		return errors.Wrap(err, "loading rows")
	}
	if len(t.Rows) == 0 && len(t.PartitionBy) > 0 {
		// There are no partitions to write; the empty directory is the table.
		return nil
	}
	if _, err := conn.ExecContext(ctx, s.copyStmt(stage, dir, t)); err != nil {
		return errors.Wrap(err, "copying to parquet")
	}
	return nil
}

func load(ctx context.Context, conn *sql.Conn, stage string, t *songlake.Table) error {
	if len(t.Rows) == 0 {
		return nil
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", stage, placeholders))
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "preparing insert")
	}
	args := make([]interface{}, len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			args[j] = sqlValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			_ = tx.Rollback()
			return errors.Wrapf(err, "inserting row %d", i)
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "closing insert")
	}
	return errors.Wrap(tx.Commit(), "committing rows")
}

// sqlValue flattens the nullable pointer types used by songlake rows.
// Timestamps are stored as their wall clock, the same reading the calendar
// columns are derived from, since TIMESTAMP has no zone.
func sqlValue(v interface{}) interface{} {
	switch v := v.(type) {
	case time.Time:
		return wallClock(v)
	case *string:
		if v == nil {
			return nil
		}
		return *v
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	case int:
		return int64(v)
	default:
		return v
	}
}

func wallClock(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, sec := t.Clock()
	return time.Date(y, mo, d, h, mi, sec, t.Nanosecond(), time.UTC)
}

func quoteIdent(name string) string {
	return `"` + strings.Replace(name, `"`, `""`, -1) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.Replace(s, "'", "''", -1) + "'"
}

func createStmt(stage string, t *songlake.Table) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quoteIdent(c.Name) + " " + string(c.Type)
	}
	return fmt.Sprintf("CREATE TEMP TABLE %s (%s)", stage, strings.Join(defs, ", "))
}

func (s *Sink) copyStmt(stage, dir string, t *songlake.Table) string {
	opts := []string{"FORMAT PARQUET"}
	if s.Compression != "" {
		opts = append(opts, "COMPRESSION "+quoteLiteral(s.Compression))
	}
	target := dir
	if len(t.PartitionBy) > 0 {
		keys := make([]string, len(t.PartitionBy))
		for i, k := range t.PartitionBy {
			keys[i] = quoteIdent(k)
		}
		opts = append(opts, "PARTITION_BY ("+strings.Join(keys, ", ")+")", "OVERWRITE_OR_IGNORE true")
	} else {
		target = filepath.Join(dir, "part-00000.parquet")
	}
	return fmt.Sprintf("COPY %s TO %s (%s)", stage, quoteLiteral(target), strings.Join(opts, ", "))
}

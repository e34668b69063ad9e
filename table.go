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

// Table names, which are also the destination directory names below the
// output root.
const (
	TableSongs     = "songs"
	TableArtists   = "artists"
	TableUsers     = "users"
	TableTime      = "time"
	TableSongplays = "songplays"
)

// ColumnType is the storage type of a column.
type ColumnType string

// Supported column types. The values are valid DuckDB type names.
const (
	TypeString    ColumnType = "VARCHAR"
	TypeInt       ColumnType = "INTEGER"
	TypeBigInt    ColumnType = "BIGINT"
	TypeUBigInt   ColumnType = "UBIGINT"
	TypeDouble    ColumnType = "DOUBLE"
	TypeTimestamp ColumnType = "TIMESTAMP"
)

// Column is a named, typed column of a Table.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a bounded set of rows with a fixed schema, ready to hand to a Sink.
// Each row holds one value per column, in column order; nil values and nil
// pointers are stored as NULL.
type Table struct {
	Name        string
	Columns     []Column
	PartitionBy []string
	Rows        [][]interface{}
}

// Validate checks that the table has a name and columns, that every partition
// key is one of its columns, and that every row has the right width.
func (t *Table) Validate() error {
	if t.Name == "" {
		return errors.New("table has no name")
	}
	if len(t.Columns) == 0 {
		return errors.Errorf("table %s has no columns", t.Name)
	}
	cols := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := cols[c.Name]; ok {
			return errors.Errorf("table %s: duplicate column %s", t.Name, c.Name)
		}
		cols[c.Name] = struct{}{}
	}
	for _, k := range t.PartitionBy {
		if _, ok := cols[k]; !ok {
			return errors.Errorf("table %s: partition key %s is not a column", t.Name, k)
		}
	}
	if len(t.PartitionBy) == len(t.Columns) {
		return errors.Errorf("table %s: every column is a partition key", t.Name)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return errors.Errorf("table %s: row %d has %d values, want %d", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// ColumnNames returns the names of the table's columns in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// SongsTable builds the songs table, partitioned by year and artist.
func SongsTable(songs []Song) *Table {
	t := &Table{
		Name: TableSongs,
		Columns: []Column{
			{"song_id", TypeString},
			{"title", TypeString},
			{"artist_id", TypeString},
			{"year", TypeBigInt},
			{"duration", TypeDouble},
		},
		PartitionBy: []string{"year", "artist_id"},
		Rows:        make([][]interface{}, len(songs)),
	}
	for i, s := range songs {
		t.Rows[i] = []interface{}{s.SongID, s.Title, s.ArtistID, s.Year, s.Duration}
	}
	return t
}

// ArtistsTable builds the unpartitioned artists table.
func ArtistsTable(artists []Artist) *Table {
	t := &Table{
		Name: TableArtists,
		Columns: []Column{
			{"artist_id", TypeString},
			{"name", TypeString},
			{"location", TypeString},
			{"latitude", TypeDouble},
			{"longitude", TypeDouble},
		},
		Rows: make([][]interface{}, len(artists)),
	}
	for i, a := range artists {
		t.Rows[i] = []interface{}{a.ArtistID, a.Name, a.Location, a.Latitude, a.Longitude}
	}
	return t
}

// UsersTable builds the unpartitioned users table.
func UsersTable(users []User) *Table {
	t := &Table{
		Name: TableUsers,
		Columns: []Column{
			{"user_id", TypeString},
			{"first_name", TypeString},
			{"last_name", TypeString},
			{"gender", TypeString},
			{"level", TypeString},
		},
		Rows: make([][]interface{}, len(users)),
	}
	for i, u := range users {
		t.Rows[i] = []interface{}{u.UserID, u.FirstName, u.LastName, u.Gender, u.Level}
	}
	return t
}

// TimeTable builds the time table, partitioned by year and month.
func TimeTable(entries []TimeEntry) *Table {
	t := &Table{
		Name: TableTime,
		Columns: []Column{
			{"start_time", TypeTimestamp},
			{"hour", TypeInt},
			{"day", TypeInt},
			{"week", TypeInt},
			{"month", TypeInt},
			{"year", TypeInt},
			{"weekday", TypeInt},
		},
		PartitionBy: []string{"year", "month"},
		Rows:        make([][]interface{}, len(entries)),
	}
	for i, e := range entries {
		t.Rows[i] = []interface{}{e.StartTime, e.Hour, e.Day, e.Week, e.Month, e.Year, e.Weekday}
	}
	return t
}

// SongPlaysTable builds the songplays table, partitioned by year and month.
func SongPlaysTable(plays []SongPlay) *Table {
	t := &Table{
		Name: TableSongplays,
		Columns: []Column{
			{"songplay_id", TypeUBigInt},
			{"start_time", TypeTimestamp},
			{"year", TypeInt},
			{"month", TypeInt},
			{"user_id", TypeString},
			{"level", TypeString},
			{"song_id", TypeString},
			{"artist_id", TypeString},
			{"session_id", TypeBigInt},
			{"location", TypeString},
			{"user_agent", TypeString},
		},
		PartitionBy: []string{"year", "month"},
		Rows:        make([][]interface{}, len(plays)),
	}
	for i, p := range plays {
		t.Rows[i] = []interface{}{
			p.SongplayID, p.StartTime, p.Year, p.Month, p.UserID, p.Level,
			p.SongID, p.ArtistID, p.SessionID, p.Location, p.UserAgent,
		}
	}
	return t
}

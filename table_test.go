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

package songlake_test

import (
	"testing"

	"github.com/sparkify/songlake"
	"github.com/sparkify/songlake/test"
)

func TestTableValidate(t *testing.T) {
	cols := []songlake.Column{{Name: "a", Type: songlake.TypeString}, {Name: "b", Type: songlake.TypeInt}}
	tests := []struct {
		name  string
		table songlake.Table
		err   string
	}{
		{name: "ok", table: songlake.Table{Name: "t", Columns: cols, PartitionBy: []string{"b"}, Rows: [][]interface{}{{"x", 1}}}},
		{name: "no name", table: songlake.Table{Columns: cols}, err: "no name"},
		{name: "no columns", table: songlake.Table{Name: "t"}, err: "no columns"},
		{name: "duplicate column", table: songlake.Table{Name: "t", Columns: append(cols, songlake.Column{Name: "a", Type: songlake.TypeInt})}, err: "duplicate column a"},
		{name: "unknown partition key", table: songlake.Table{Name: "t", Columns: cols, PartitionBy: []string{"c"}}, err: "partition key c"},
		{name: "all partition keys", table: songlake.Table{Name: "t", Columns: cols, PartitionBy: []string{"a", "b"}}, err: "every column"},
		{name: "short row", table: songlake.Table{Name: "t", Columns: cols, Rows: [][]interface{}{{"x"}}}, err: "row 0 has 1 values"},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			err := tst.table.Validate()
			if tst.err == "" {
				test.ErrNil(t, err, "validating")
				return
			}
			test.ErrContains(t, err, tst.err)
		})
	}
}

func TestTables(t *testing.T) {
	tables := []*songlake.Table{
		songlake.SongsTable([]songlake.Song{{SongID: "S1"}}),
		songlake.ArtistsTable([]songlake.Artist{{ArtistID: "A1"}}),
		songlake.UsersTable([]songlake.User{{UserID: "1"}}),
		songlake.TimeTable([]songlake.TimeEntry{{StartTime: t1, CalendarFields: songlake.Calendar(t1)}}),
		songlake.SongPlaysTable([]songlake.SongPlay{{SongplayID: 1, StartTime: t1, Year: 2018, Month: 11, SongID: "S1"}}),
	}
	names := []string{"songs", "artists", "users", "time", "songplays"}
	parts := [][]string{{"year", "artist_id"}, nil, nil, {"year", "month"}, {"year", "month"}}
	for i, tab := range tables {
		test.ErrNil(t, tab.Validate(), names[i])
		test.MustBe(t, names[i], tab.Name)
		test.MustBe(t, parts[i], tab.PartitionBy, names[i])
		test.MustBe(t, 1, len(tab.Rows))
	}
	test.MustBe(t, []string{"songplay_id", "start_time", "year", "month", "user_id", "level", "song_id", "artist_id", "session_id", "location", "user_agent"},
		tables[4].ColumnNames())
	test.MustBe(t, []string{"start_time", "hour", "day", "week", "month", "year", "weekday"}, tables[3].ColumnNames())
	test.MustBe(t, []interface{}{t1, 21, 1, 44, 11, 2018, 5}, tables[3].Rows[0])
}

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

// Package fake generates datasets laid out like the song catalog and the
// event logs the ETL reads, for trying it out and for tests.
package fake

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sparkify/songlake/fake/gen"
)

// Dataset describes a fake dataset. The same Dataset always produces the same
// files.
type Dataset struct {
	Seed     int64
	Songs    int
	Artists  int
	Users    int
	Sessions int
	// Start is the first day sessions may begin on. Defaults to 2018-11-01.
	Start time.Time
	// Days is the number of days sessions are spread over. Defaults to 30.
	Days int
}

// Summary counts what Write produced.
type Summary struct {
	SongFiles int
	LogFiles  int
	Events    int
	Plays     int
}

// Generate builds the catalog and the events of the dataset in memory.
func (d Dataset) Generate() ([]*Song, []*Event) {
	if d.Start.IsZero() {
		d.Start = time.Date(2018, time.November, 1, 0, 0, 0, 0, time.UTC)
	}
	if d.Days < 1 {
		d.Days = 30
	}
	cg := NewCatalogGenerator(d.Seed, d.Artists)
	songs := make([]*Song, d.Songs)
	for i := range songs {
		songs[i] = cg.Song(i)
	}
	ug := NewUserGenerator(d.Seed + 1)
	users := make([]*Listener, d.Users)
	for i := range users {
		users[i] = ug.Listener(i)
	}

	eg := NewEventGenerator(d.Seed+2, songs, users)
	g := gen.NewGenerator(d.Seed + 3)
	var events []*Event
	for i := 0; i < d.Sessions; i++ {
		offset := time.Duration(g.Intn(d.Days*24*60*60)) * time.Second
		events = append(events, eg.Session(d.Start.Add(offset))...)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Ts < events[j].Ts })
	return songs, events
}

// Write generates the dataset below root: one file per song at
// song_data/X/Y/Z/<track id>.json, where X, Y and Z are the third to fifth
// characters of the track id, and one file of newline separated events per
// day at log_data/YYYY/MM/YYYY-MM-DD-events.json.
func (d Dataset) Write(root string) (Summary, error) {
	var sum Summary
	songs, events := d.Generate()
	for _, s := range songs {
		t := s.TrackID
		dir := filepath.Join(root, "song_data", t[2:3], t[3:4], t[4:5])
		if err := writeLines(filepath.Join(dir, t+".json"), []interface{}{s}); err != nil {
			return sum, err
		}
		sum.SongFiles++
	}

	byDay := make(map[string][]interface{})
	var days []string
	for _, e := range events {
		day := e.Time().Format("2006-01-02")
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], e)
		sum.Events++
		if e.Page == "NextSong" {
			sum.Plays++
		}
	}
	for _, day := range days {
		name := filepath.Join(root, "log_data", day[0:4], day[5:7], day+"-events.json")
		if err := writeLines(name, byDay[day]); err != nil {
			return sum, err
		}
		sum.LogFiles++
	}
	return sum, nil
}

func writeLines(name string, vals []interface{}) error {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return errors.Wrap(err, "making directory")
	}
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	w := bufio.NewWriter(f)
	for _, v := range vals {
		b, err := json.Marshal(v)
		if err != nil {
			f.Close()
			return errors.Wrapf(err, "encoding %T", v)
		}
		_, _ = w.Write(b)
		_ = w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", name)
	}
	return errors.Wrapf(f.Close(), "closing %s", name)
}

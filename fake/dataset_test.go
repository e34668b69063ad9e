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

package fake_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/sparkify/songlake"
	"github.com/sparkify/songlake/fake"
	"github.com/sparkify/songlake/file"
	"github.com/sparkify/songlake/json"
)

var small = fake.Dataset{Seed: 7, Songs: 40, Artists: 10, Users: 8, Sessions: 30, Days: 5}

func TestDatasetLayout(t *testing.T) {
	root := t.TempDir()
	sum, err := small.Write(root)
	if err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	if sum.SongFiles != 40 {
		t.Fatalf("expected 40 song files, got %d", sum.SongFiles)
	}
	if sum.LogFiles < 1 || sum.LogFiles > 6 {
		t.Fatalf("unexpected number of log files %d", sum.LogFiles)
	}

	songFiles, err := filepath.Glob(filepath.Join(root, "song_data", "*", "*", "*", "TR*.json"))
	if err != nil {
		t.Fatalf("globbing: %v", err)
	}
	if len(songFiles) != 40 {
		t.Fatalf("expected 40 files three levels down, got %d", len(songFiles))
	}
	logFiles, err := filepath.Glob(filepath.Join(root, "log_data", "2018", "11", "2018-11-*-events.json"))
	if err != nil {
		t.Fatalf("globbing: %v", err)
	}
	if len(logFiles) != sum.LogFiles {
		t.Fatalf("expected %d log files, got %v", sum.LogFiles, logFiles)
	}
}

func TestDatasetReadable(t *testing.T) {
	root := t.TempDir()
	sum, err := small.Write(root)
	if err != nil {
		t.Fatalf("writing dataset: %v", err)
	}

	rs, err := file.NewRawSource(root, "song_data/*/*/*")
	if err != nil {
		t.Fatalf("song raw source: %v", err)
	}
	catalog, err := songlake.ReadCatalog(json.NewSourceFromRawSource(rs))
	if err != nil {
		t.Fatalf("reading catalog: %v", err)
	}
	if len(catalog) != 40 {
		t.Fatalf("expected 40 catalog records, got %d", len(catalog))
	}

	rs, err = file.NewRawSource(root, "log_data/*/*")
	if err != nil {
		t.Fatalf("log raw source: %v", err)
	}
	events, err := songlake.ReadEvents(json.NewSourceFromRawSource(rs))
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(events) != sum.Events {
		t.Fatalf("expected %d events, got %d", sum.Events, len(events))
	}
	plays := songlake.FilterPlays(events)
	if len(plays) != sum.Plays || len(plays) == len(events) {
		t.Fatalf("expected %d plays among %d events, got %d", sum.Plays, len(events), len(plays))
	}
	for _, p := range plays {
		if p.StartTime.IsZero() {
			t.Fatalf("play without a timestamp: %#v", p)
		}
	}
	sps, err := songlake.BuildSongPlays(plays, catalog)
	if err != nil {
		t.Fatalf("building songplays: %v", err)
	}
	if len(sps) == 0 {
		t.Fatalf("expected some plays to match the catalog")
	}
}

func TestDatasetRepeatable(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	if _, err := small.Write(a); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	if _, err := small.Write(b); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	files, err := filepath.Glob(filepath.Join(a, "log_data", "*", "*", "*"))
	if err != nil || len(files) == 0 {
		t.Fatalf("globbing: %v %v", files, err)
	}
	for _, fa := range files {
		rel, _ := filepath.Rel(a, fa)
		ca, err := ioutil.ReadFile(fa)
		if err != nil {
			t.Fatalf("reading %s: %v", fa, err)
		}
		cb, err := ioutil.ReadFile(filepath.Join(b, rel))
		if err != nil {
			t.Fatalf("reading %s from second dataset: %v", rel, err)
		}
		if string(ca) != string(cb) {
			t.Fatalf("%s differs between runs", rel)
		}
	}
}

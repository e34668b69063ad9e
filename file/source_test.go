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

package file

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sparkify/songlake"
)

func mustTempDir(t *testing.T, prefix string) string {
	t.Helper()
	d, err := ioutil.TempDir("", prefix)
	if err != nil {
		t.Fatal("getting temp dir")
	}
	return d
}

func mustFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("making dirs: %v", err)
	}
	if err := ioutil.WriteFile(p, []byte(contents), 0644); err != nil {
		t.Fatalf("writing contents: %v", err)
	}
	return p
}

func TestRawSource(t *testing.T) {
	d := mustTempDir(t, "testrawsource")
	defer func() {
		os.RemoveAll(d)
	}()

	names := []string{
		mustFile(t, d, "song_data/A/A/A/TRAAA.json", `{"song_id": "S1"}`),
		mustFile(t, d, "song_data/A/B/C/TRABC.json", `{"song_id": "S2"}`),
		mustFile(t, d, "song_data/A/B/X.json", `{"song_id": "S3"}`),
	}
	mustFile(t, d, "song_data/A/toplevel.json", `{}`)
	mustFile(t, d, "song_data/A/B/C/deeper/TRDEEP.json", `{}`)
	mustFile(t, d, "log_data/2018/11/events.json", `{}`)

	rs, err := NewRawSource(d, "song_data/*/*/*")
	if err != nil {
		t.Fatalf("getting raw source: %v", err)
	}

	gotNames := make([]string, 0, 2)
	var reader songlake.NamedReadCloser
	for reader, err = rs.NextReader(); err == nil; reader, err = rs.NextReader() {
		gotNames = append(gotNames, reader.Name())
		buf, err := ioutil.ReadAll(reader)
		if err != nil {
			t.Fatalf("reading file: %v", err)
		}
		if len(buf) == 0 {
			t.Fatalf("empty read from %s", reader.Name())
		}
		reader.Close()
	}
	if err != io.EOF {
		t.Fatalf("unexpected NextReader error: %v", err)
	}
	if !reflect.DeepEqual(gotNames, names) {
		t.Fatalf("different file names: %v", gotNames)
	}
}

func TestRawSourceNoMatches(t *testing.T) {
	d := mustTempDir(t, "testrawsourceempty")
	defer os.RemoveAll(d)

	rs, err := NewRawSource(d, "log_data/*/*")
	if err != nil {
		t.Fatalf("getting raw source: %v", err)
	}
	if len(rs.Files()) != 0 {
		t.Fatalf("expected no files, got %v", rs.Files())
	}
	if _, err := rs.NextReader(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestRawSourceMissingRoot(t *testing.T) {
	d := mustTempDir(t, "testrawsourcemissing")
	os.RemoveAll(d)

	if _, err := NewRawSource(d, "*"); err == nil {
		t.Fatal("expected error for missing root")
	}
}

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

package etl

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/sparkify/songlake"
	"github.com/sparkify/songlake/fake"
	"github.com/sparkify/songlake/file"
	"github.com/sparkify/songlake/ledger"
	"github.com/sparkify/songlake/parquet"
	"github.com/stretchr/testify/require"
)

var dataset = fake.Dataset{Seed: 3, Songs: 30, Artists: 8, Users: 6, Sessions: 25, Days: 3}

func writeCreds(t *testing.T, contents string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "dl.cfg")
	require.NoError(t, ioutil.WriteFile(name, []byte(contents), 0600))
	return name
}

func TestLoadCredentials(t *testing.T) {
	name := writeCreds(t, "[creds]\nAWS_ACCESS_KEY_ID=AKIDEXAMPLE\nAWS_SECRET_ACCESS_KEY = secret\n")
	creds, err := LoadCredentials(name)
	require.NoError(t, err)
	require.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
	require.Equal(t, "secret", creds.SecretAccessKey)
}

func TestLoadCredentialsMissingKey(t *testing.T) {
	name := writeCreds(t, "[creds]\nAWS_ACCESS_KEY_ID=AKIDEXAMPLE\n")
	_, err := LoadCredentials(name)
	require.Error(t, err)
	require.Contains(t, err.Error(), "AWS_SECRET_ACCESS_KEY")

	name = writeCreds(t, "[other]\nAWS_ACCESS_KEY_ID=AKIDEXAMPLE\nAWS_SECRET_ACCESS_KEY=secret\n")
	_, err = LoadCredentials(name)
	require.Error(t, err)
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.cfg"))
	require.Error(t, err)
}

func newTestMain(t *testing.T) (*Main, *bytes.Buffer) {
	t.Helper()
	m := NewMain()
	buf := &bytes.Buffer{}
	m.SetLogOutput(buf)
	m.LogFormat = "json"
	return m, buf
}

func tableFiles(t *testing.T, dir string) []string {
	t.Helper()
	files, err := listFiles(dir)
	require.NoError(t, err)
	return files
}

func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(dir, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return files, err
}

func TestRunLocal(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	_, err := dataset.Write(in)
	require.NoError(t, err)

	m, _ := newTestMain(t)
	m.Input, m.Output = in, out
	m.Ledger = filepath.Join(t.TempDir(), "ledger.db")
	m.Stats = "prometheus"
	m.Creds = filepath.Join(t.TempDir(), "absent.cfg")

	report, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"songs", "artists", "users", "time", "songplays"}, report.Tables())
	songs, _ := report.Rows(songlake.TableSongs)
	require.Equal(t, 30, songs)

	for _, name := range report.Tables() {
		info, err := os.Stat(filepath.Join(out, name))
		require.NoError(t, err, name)
		require.True(t, info.IsDir())
	}
	require.Equal(t, []string{"part-00000.parquet"}, tableFiles(t, filepath.Join(out, "artists")))
	for _, f := range tableFiles(t, filepath.Join(out, "time")) {
		require.True(t, strings.HasPrefix(f, "year=2018/month=11/"), f)
	}

	// a second run replaces the tables with the same content
	plays, _ := report.Rows(songlake.TableSongplays)
	report2, err := m.Run(context.Background())
	require.NoError(t, err)
	plays2, _ := report2.Rows(songlake.TableSongplays)
	require.Equal(t, plays, plays2)
	require.NotEqual(t, report.RunID, report2.RunID)

	l, err := ledger.Open(m.Ledger)
	require.NoError(t, err)
	defer l.Close()
	runs, err := l.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, report.RunID, runs[0].ID)
	require.Len(t, runs[1].Tables, 5)
}

func TestRunMissingInput(t *testing.T) {
	m, _ := newTestMain(t)
	m.Input = filepath.Join(t.TempDir(), "nothing")
	m.Output = t.TempDir()
	_, err := m.Run(context.Background())
	require.Error(t, err)
	require.Empty(t, tableFiles(t, m.Output))
}

func TestRunEmptyInput(t *testing.T) {
	m, _ := newTestMain(t)
	m.Input, m.Output = t.TempDir(), t.TempDir()
	report, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Tables(), 5)
	n, ok := report.Rows(songlake.TableSongplays)
	require.True(t, ok)
	require.Equal(t, 0, n)
}

func TestRunBadConfig(t *testing.T) {
	m, _ := newTestMain(t)
	_, err := m.Run(context.Background())
	require.Error(t, err)

	m.Input, m.Output = t.TempDir(), t.TempDir()
	m.Stats = "graphite"
	_, err = m.Run(context.Background())
	require.Error(t, err)
	require.Empty(t, tableFiles(t, m.Output))
}

func TestRunRemoteNeedsCredentials(t *testing.T) {
	m, _ := newTestMain(t)
	m.Input = t.TempDir()
	m.Output = "s3a://lake/out"
	m.Creds = writeCreds(t, "[creds]\nAWS_ACCESS_KEY_ID=AKIDEXAMPLE\n")
	m.s3client = func(*session.Session) s3Client {
		t.Fatal("no client should be made without credentials")
		return nil
	}
	_, err := m.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "credentials")
}

// localClient stands in for S3 with local directories: bucket names map to
// directories below root.
type localClient struct {
	root      string
	published map[string][]string
}

func (c *localClient) local(url string) string {
	return filepath.Join(c.root, strings.SplitN(url, "://", 2)[1])
}

func (c *localClient) raw(ctx context.Context, root, pattern string) (songlake.RawSource, error) {
	return file.NewRawSource(c.local(root), pattern)
}

func (c *localClient) publisher() parquet.Publisher { return c }

func (c *localClient) Publish(ctx context.Context, dir, dest string) error {
	files, err := listFiles(dir)
	c.published[dest] = files
	return err
}

func TestRunRemote(t *testing.T) {
	objects := t.TempDir()
	_, err := dataset.Write(filepath.Join(objects, "udacity-dend"))
	require.NoError(t, err)

	client := &localClient{root: objects, published: make(map[string][]string)}
	m, _ := newTestMain(t)
	m.Input = "s3a://udacity-dend"
	m.Output = "s3://lake/out/"
	m.StagingDir = t.TempDir()
	m.Creds = writeCreds(t, "[creds]\nAWS_ACCESS_KEY_ID=AKIDEXAMPLE\nAWS_SECRET_ACCESS_KEY=secret\n")
	m.s3client = func(*session.Session) s3Client { return client }

	report, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Tables(), 5)
	require.Equal(t, []string{"part-00000.parquet"}, client.published["s3://lake/out/users"])
	require.NotEmpty(t, client.published["s3://lake/out/songs"])
	entries, err := ioutil.ReadDir(m.StagingDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

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

// Package file provides a songlake.RawSource over files on local disk.
package file

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sparkify/songlake"
)

// RawSource is a songlake.RawSource over the regular files matching a glob
// pattern below a root directory, in lexical order.
type RawSource struct {
	files   []string
	fileIdx *uint64
}

// NewRawSource resolves pattern (e.g. "song_data/*/*/*") relative to root.
// The pattern uses filepath.Match syntax, so "*" does not cross directory
// separators. Matched files are taken as they are; matched directories
// contribute the regular files directly inside them. A pattern matching
// nothing yields an empty source, but a root which can't be read is an
// error.
func NewRawSource(root, pattern string) (*RawSource, error) {
	fileIdx := uint64(0)
	s := &RawSource{
		fileIdx: &fileIdx,
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "statting root")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("root %s is not a directory", root)
	}
	matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, errors.Wrapf(err, "matching %s", pattern)
	}
	s.files = make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, errors.Wrapf(err, "statting %s", m)
		}
		if info.Mode().IsRegular() {
			s.files = append(s.files, m)
			continue
		}
		if !info.IsDir() {
			continue
		}
		infos, err := ioutil.ReadDir(m)
		if err != nil {
			return nil, errors.Wrapf(err, "reading directory %s", m)
		}
		for _, info := range infos {
			if info.Mode().IsRegular() {
				s.files = append(s.files, filepath.Join(m, info.Name()))
			}
		}
	}
	sort.Strings(s.files)
	return s, nil
}

// Files returns the matched file paths.
func (s *RawSource) Files() []string {
	return s.files
}

type namedFile struct {
	*os.File
	name string
}

func (f *namedFile) Name() string {
	return f.name
}

// NextReader implements songlake.RawSource.
func (s *RawSource) NextReader() (songlake.NamedReadCloser, error) {
	idx := atomic.AddUint64(s.fileIdx, 1) - 1
	if int(idx) >= len(s.files) {
		return nil, io.EOF
	}

	f, err := os.Open(s.files[idx])
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.files[idx])
	}
	return &namedFile{File: f, name: s.files[idx]}, nil
}

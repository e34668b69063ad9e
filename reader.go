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
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// ReadCatalog drains src and interprets every record as a CatalogRecord. Any
// error from the source or from interpreting a record is returned and no
// records are; a source with no records yields an empty, non-nil slice.
func ReadCatalog(src Source) ([]CatalogRecord, error) {
	recs := make([]CatalogRecord, 0)
	for i := 0; ; i++ {
		raw, err := src.Record()
		if err == io.EOF {
			return recs, nil
		} else if err != nil {
			return nil, errors.Wrap(err, "reading catalog record")
		}
		rec, err := ParseCatalogRecord(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "catalog record %d", i)
		}
		recs = append(recs, rec)
	}
}

// ReadEvents drains src and interprets every record as an EventRecord, with
// the same all-or-nothing behavior as ReadCatalog.
func ReadEvents(src Source) ([]EventRecord, error) {
	recs := make([]EventRecord, 0)
	for i := 0; ; i++ {
		raw, err := src.Record()
		if err == io.EOF {
			return recs, nil
		} else if err != nil {
			return nil, errors.Wrap(err, "reading event record")
		}
		rec, err := ParseEventRecord(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "event record %d", i)
		}
		recs = append(recs, rec)
	}
}

// ParseCatalogRecord interprets a decoded JSON object as a CatalogRecord.
// Missing keys and JSON nulls become nil (or zero for year and duration);
// values of a coercible type (e.g. a year given as "2008") are converted.
func ParseCatalogRecord(raw interface{}) (rec CatalogRecord, err error) {
	m, err := asMap(raw)
	if err != nil {
		return rec, err
	}
	f := fields{m: m}
	rec = CatalogRecord{
		SongID:          f.str("song_id"),
		Title:           f.str("title"),
		ArtistID:        f.str("artist_id"),
		ArtistName:      f.str("artist_name"),
		ArtistLocation:  f.str("artist_location"),
		ArtistLatitude:  f.number("artist_latitude"),
		ArtistLongitude: f.number("artist_longitude"),
		Year:            f.integer("year"),
	}
	if d := f.number("duration"); d != nil {
		rec.Duration = *d
	}
	return rec, f.err
}

// ParseEventRecord interprets a decoded JSON object as an EventRecord. The
// timestamp is taken from start_time (a date string or epoch milliseconds)
// and otherwise from ts (epoch milliseconds). Date strings without an offset
// are read as UTC, strings with one keep it, and epoch values are UTC.
func ParseEventRecord(raw interface{}) (rec EventRecord, err error) {
	m, err := asMap(raw)
	if err != nil {
		return rec, err
	}
	f := fields{m: m}
	rec = EventRecord{
		Page:      f.str("page"),
		UserID:    f.str("userId"),
		FirstName: f.str("firstName"),
		LastName:  f.str("lastName"),
		Gender:    f.str("gender"),
		Level:     f.str("level"),
		Song:      f.str("song"),
		SessionID: f.integer("sessionId"),
		Location:  f.str("location"),
		UserAgent: f.str("userAgent"),
		StartTime: f.timestamp("start_time", "ts"),
		Partition: int(f.integer(PartitionAt)),
	}
	return rec, f.err
}

func asMap(raw interface{}) (map[string]interface{}, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("expected a JSON object, got %T", raw)
	}
	return m, nil
}

// fields coerces values out of a decoded object, keeping the first error.
type fields struct {
	m   map[string]interface{}
	err error
}

func (f *fields) fail(key string, err error) {
	if f.err == nil {
		f.err = errors.Wrapf(err, "field %s", key)
	}
}

// get returns the value at key, treating absent keys, nulls and empty
// strings as missing for non-string columns.
func (f *fields) get(key string) (interface{}, bool) {
	v, ok := f.m[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func (f *fields) str(key string) *string {
	v, ok := f.m[key]
	if !ok || v == nil {
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		f.fail(key, err)
		return nil
	}
	return &s
}

func (f *fields) integer(key string) int64 {
	v, ok := f.get(key)
	if !ok {
		return 0
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		f.fail(key, err)
	}
	return i
}

func (f *fields) number(key string) *float64 {
	v, ok := f.get(key)
	if !ok {
		return nil
	}
	fl, err := cast.ToFloat64E(v)
	if err != nil {
		f.fail(key, err)
		return nil
	}
	return &fl
}

// timestamp returns the first usable timestamp among keys.
func (f *fields) timestamp(keys ...string) time.Time {
	for _, key := range keys {
		v, ok := f.get(key)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			t, err := cast.StringToDateInDefaultLocation(s, time.UTC)
			if err != nil {
				f.fail(key, err)
				return time.Time{}
			}
			return t
		}
		ms, err := cast.ToInt64E(v)
		if err != nil {
			f.fail(key, err)
			return time.Time{}
		}
		return time.Unix(0, ms*int64(time.Millisecond)).UTC()
	}
	return time.Time{}
}

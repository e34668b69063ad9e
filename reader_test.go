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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sparkify/songlake"
	"github.com/sparkify/songlake/json"
	"github.com/sparkify/songlake/mock"
	"github.com/sparkify/songlake/test"
)

func TestReadCatalog(t *testing.T) {
	src := json.NewSource(strings.NewReader(`
{"num_songs": 1, "artist_id": "ARJIE2Y1187B994AB7", "artist_latitude": null, "artist_longitude": null, "artist_location": "", "artist_name": "Line Renaud", "song_id": "SOUPIRU12A6D4FA1E1", "title": "Der Kleine Dompfaff", "duration": 152.92036, "year": 0}
{"artist_id": "AR1", "artist_latitude": 35.14968, "artist_longitude": "-90.04892", "song_id": "S2", "title": "Halo", "duration": "200", "year": "2008"}
{"title": "orphan"}`))
	recs, err := songlake.ReadCatalog(src)
	test.ErrNil(t, err, "reading catalog")
	test.MustBe(t, 3, len(recs))

	test.MustBe(t, "SOUPIRU12A6D4FA1E1", *recs[0].SongID)
	test.MustBe(t, "", *recs[0].ArtistLocation, "empty string kept")
	if recs[0].ArtistLatitude != nil || recs[0].ArtistLongitude != nil {
		t.Fatalf("expected null coordinates, got %v %v", recs[0].ArtistLatitude, recs[0].ArtistLongitude)
	}
	test.MustBe(t, 152.92036, recs[0].Duration)
	test.MustBe(t, int64(0), recs[0].Year)

	test.MustBe(t, int64(2008), recs[1].Year, "coerced year")
	test.MustBe(t, 200.0, recs[1].Duration)
	test.MustBe(t, -90.04892, *recs[1].ArtistLongitude)

	if recs[2].SongID != nil || recs[2].ArtistName != nil {
		t.Fatalf("expected missing keys to be nil: %#v", recs[2])
	}
}

func TestReadCatalogBadValue(t *testing.T) {
	src := json.NewSource(strings.NewReader(`{"song_id": "S1", "year": 2008}
{"song_id": "S2", "year": "nineteen"}`))
	recs, err := songlake.ReadCatalog(src)
	test.ErrContains(t, err, "field year")
	if recs != nil {
		t.Fatalf("expected no records on error, got %d", len(recs))
	}
}

func TestReadEvents(t *testing.T) {
	src := json.NewSource(strings.NewReader(`
{"artist": "Des'ree", "auth": "Logged In", "firstName": "Kaylee", "gender": "F", "itemInSession": 1, "lastName": "Summers", "length": 246.30812, "level": "free", "location": "Phoenix-Mesa-Scottsdale, AZ", "method": "PUT", "page": "NextSong", "registration": 1540344794796.0, "sessionId": 139, "song": "You Gotta Be", "status": 200, "ts": 1541106106796, "userAgent": "Mozilla/5.0", "userId": "8"}
{"page": "Home", "userId": "", "sessionId": "12", "start_time": "2018-11-01 21:01:46"}
{"page": "NextSong", "userId": null, "start_time": "2018-11-01T21:01:46-05:00", "ts": 1}
{"page": "NextSong", "start_time": 1541106106796}`))
	recs, err := songlake.ReadEvents(src)
	test.ErrNil(t, err, "reading events")
	test.MustBe(t, 4, len(recs))

	test.MustBe(t, true, recs[0].IsPlay())
	test.MustBe(t, "8", *recs[0].UserID)
	test.MustBe(t, int64(139), recs[0].SessionID)
	mustTime(t, time.Date(2018, time.November, 1, 21, 1, 46, 796000000, time.UTC), recs[0].StartTime)

	test.MustBe(t, false, recs[1].IsPlay())
	test.MustBe(t, "", *recs[1].UserID)
	test.MustBe(t, int64(12), recs[1].SessionID)
	mustTime(t, time.Date(2018, time.November, 1, 21, 1, 46, 0, time.UTC), recs[1].StartTime)

	if recs[2].UserID != nil {
		t.Fatalf("expected nil user id, got %q", *recs[2].UserID)
	}
	_, offset := recs[2].StartTime.Zone()
	test.MustBe(t, -5*60*60, offset, "offset kept")
	test.MustBe(t, 21, recs[2].StartTime.Hour(), "start_time preferred over ts")

	mustTime(t, recs[0].StartTime, recs[3].StartTime)
}

func mustTime(t *testing.T, exp, got time.Time) {
	t.Helper()
	if !exp.Equal(got) {
		t.Fatalf("expected %v, got %v", exp, got)
	}
}

func TestReadEventsPartition(t *testing.T) {
	src := &mock.Source{Records: []interface{}{
		map[string]interface{}{"page": "NextSong", songlake.PartitionAt: 4},
		map[string]interface{}{"page": "NextSong"},
	}}
	recs, err := songlake.ReadEvents(src)
	test.ErrNil(t, err, "reading events")
	test.MustBe(t, 4, recs[0].Partition)
	test.MustBe(t, 0, recs[1].Partition)
	if !recs[1].StartTime.IsZero() {
		t.Fatalf("expected zero time, got %v", recs[1].StartTime)
	}
}

func TestReadEventsErrors(t *testing.T) {
	src := &mock.Source{
		Records: []interface{}{map[string]interface{}{"page": "NextSong"}},
		Err:     errors.New("connection reset"),
	}
	_, err := songlake.ReadEvents(src)
	test.ErrContains(t, err, "connection reset")

	_, err = songlake.ReadEvents(&mock.Source{Records: []interface{}{"not an object"}})
	test.ErrContains(t, err, "expected a JSON object")

	_, err = songlake.ReadEvents(&mock.Source{Records: []interface{}{
		map[string]interface{}{"start_time": "yesterday-ish"},
	}})
	test.ErrContains(t, err, "field start_time")
}

func TestReadEmpty(t *testing.T) {
	recs, err := songlake.ReadEvents(&mock.Source{})
	test.ErrNil(t, err, "reading empty source")
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", recs)
	}
}

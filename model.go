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
	"time"
)

// PageNextSong is the value of EventRecord.Page for an actual play, as opposed
// to navigation or account events.
const PageNextSong = "NextSong"

// CatalogRecord is one raw entry of the song catalog as read from storage.
// Pointer fields are nullable; a missing or null JSON value leaves them nil.
type CatalogRecord struct {
	SongID          *string
	Title           *string
	ArtistID        *string
	ArtistName      *string
	ArtistLocation  *string
	ArtistLatitude  *float64
	ArtistLongitude *float64
	Year            int64
	Duration        float64
}

// EventRecord is one raw application log event.
type EventRecord struct {
	Page      *string
	UserID    *string
	FirstName *string
	LastName  *string
	Gender    *string
	Level     *string
	Song      *string
	SessionID int64
	Location  *string
	UserAgent *string
	// StartTime is the zero time when the record carried no timestamp.
	StartTime time.Time

	// Partition is the ordinal of the input split (file or object) the record
	// was read from. It is used for songplay id assignment only.
	Partition int
}

// IsPlay reports whether the event is a song play.
func (e EventRecord) IsPlay() bool {
	return e.Page != nil && *e.Page == PageNextSong
}

// Song is a row of the songs dimension.
type Song struct {
	SongID   string
	Title    *string
	ArtistID *string
	Year     int64
	Duration float64
}

// Artist is a row of the artists dimension.
type Artist struct {
	ArtistID  string
	Name      *string
	Location  *string
	Latitude  *float64
	Longitude *float64
}

// User is a row of the users dimension. UserID is not unique across rows: a
// user whose level changed shows up once per level.
type User struct {
	UserID    string
	FirstName *string
	LastName  *string
	Gender    *string
	Level     *string
}

// TimeEntry is a row of the time dimension.
type TimeEntry struct {
	StartTime time.Time
	CalendarFields
}

// SongPlay is a row of the songplays fact table.
type SongPlay struct {
	SongplayID uint64
	StartTime  time.Time
	Year       int
	Month      int
	UserID     *string
	Level      *string
	SongID     string
	ArtistID   *string
	SessionID  int64
	Location   *string
	UserAgent  *string
}

// StringPtr returns a pointer to s. It is a convenience for building records.
func StringPtr(s string) *string { return &s }

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }

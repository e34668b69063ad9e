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

package fake

import (
	"time"

	"github.com/sparkify/songlake/fake/gen"
)

// Event is one application event, shaped like the lines of the files under
// log_data/.
type Event struct {
	Artist        *string  `json:"artist"`
	Auth          string   `json:"auth"`
	FirstName     *string  `json:"firstName"`
	Gender        *string  `json:"gender"`
	ItemInSession int      `json:"itemInSession"`
	LastName      *string  `json:"lastName"`
	Length        *float64 `json:"length"`
	Level         string   `json:"level"`
	Location      *string  `json:"location"`
	Method        string   `json:"method"`
	Page          string   `json:"page"`
	Registration  *float64 `json:"registration"`
	SessionID     int      `json:"sessionId"`
	Song          *string  `json:"song"`
	Status        int      `json:"status"`
	Ts            int64    `json:"ts"`
	UserAgent     *string  `json:"userAgent"`
	UserID        *string  `json:"userId"`
}

// Time returns the event's timestamp in UTC.
func (e *Event) Time() time.Time {
	return time.Unix(0, e.Ts*int64(time.Millisecond)).UTC()
}

// otherPages are the non-play pages a session visits.
var otherPages = []string{"Home", "Thumbs Up", "Add to Playlist", "Settings", "Thumbs Down", "Add Friend", "Help", "About", "Upgrade", "Logout"}

// EventGenerator generates listening sessions over a catalog and a user base.
type EventGenerator struct {
	g       *gen.Generator
	catalog []*Song
	users   []*Listener
	session int

	// PlayRate is the fraction of logged-in events which are song plays.
	PlayRate float64
	// MissRate is the fraction of plays of songs which are not in the catalog.
	MissRate float64
	// AnonymousRate is the fraction of sessions by logged out visitors.
	AnonymousRate float64
	// NullUserRate is the fraction of plays which lost their user id.
	NullUserRate float64
}

// NewEventGenerator gets a new EventGenerator.
func NewEventGenerator(seed int64, catalog []*Song, users []*Listener) *EventGenerator {
	return &EventGenerator{
		g:             gen.NewGenerator(seed),
		catalog:       catalog,
		users:         users,
		PlayRate:      0.8,
		MissRate:      0.3,
		AnonymousRate: 0.1,
		NullUserRate:  0.02,
	}
}

// Session returns the events of one session starting at start.
func (g *EventGenerator) Session(start time.Time) []*Event {
	g.session++
	if len(g.users) == 0 || g.g.Chance(g.AnonymousRate) {
		return g.anonymous(start)
	}
	u := g.users[g.g.Uint64(len(g.users))]
	n := 1 + g.g.Intn(30)
	events := make([]*Event, 0, n)
	ts := start
	for i := 0; i < n; i++ {
		e := &Event{
			Auth:          "Logged In",
			FirstName:     strPtr(u.FirstName),
			Gender:        strPtr(u.Gender),
			ItemInSession: i,
			LastName:      strPtr(u.LastName),
			Level:         u.Level,
			Location:      strPtr(u.Location),
			Method:        "GET",
			Page:          g.g.Pick(otherPages),
			Registration:  &u.Registration,
			SessionID:     g.session,
			Status:        200,
			Ts:            ts.UnixNano() / int64(time.Millisecond),
			UserAgent:     strPtr(u.UserAgent),
			UserID:        strPtr(u.UserID),
		}
		if g.g.Chance(g.PlayRate) {
			g.play(e)
		}
		if e.Page == "Upgrade" && u.Level == "free" && g.g.Chance(0.5) {
			u.Level = "paid"
		}
		events = append(events, e)
		ts = ts.Add(time.Duration(30+g.g.Intn(300)) * time.Second)
	}
	return events
}

func (g *EventGenerator) play(e *Event) {
	e.Page = "NextSong"
	e.Method = "PUT"
	if len(g.catalog) > 0 && !g.g.Chance(g.MissRate) {
		s := g.catalog[g.g.Uint64(len(g.catalog))]
		e.Artist, e.Song, e.Length = strPtr(s.ArtistName), strPtr(s.Title), &s.Duration
	} else {
		length := g.g.Float64(60, 600)
		e.Artist = strPtr(g.g.String(12, 5000))
		e.Song = strPtr(g.g.String(16, 100000))
		e.Length = &length
	}
	if g.g.Chance(g.NullUserRate) {
		e.UserID = nil
	}
}

func (g *EventGenerator) anonymous(start time.Time) []*Event {
	n := 1 + g.g.Intn(3)
	events := make([]*Event, n)
	for i := range events {
		events[i] = &Event{
			Auth:          "Logged Out",
			ItemInSession: i,
			Level:         "free",
			Method:        "GET",
			Page:          "Home",
			SessionID:     g.session,
			Status:        200,
			Ts:            start.Add(time.Duration(i)*time.Minute).UnixNano() / int64(time.Millisecond),
			UserID:        strPtr(""),
		}
	}
	events[n-1].Page = "Login"
	events[n-1].Method = "PUT"
	events[n-1].Status = 307
	return events
}

func strPtr(s string) *string { return &s }

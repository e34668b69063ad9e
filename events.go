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

// FilterPlays returns the events whose page is NextSong, in input order. Every
// event-derived table is built from its result.
func FilterPlays(events []EventRecord) []EventRecord {
	plays := make([]EventRecord, 0, len(events))
	for _, e := range events {
		if e.IsPlay() {
			plays = append(plays, e)
		}
	}
	return plays
}

// nullable is a comparable stand-in for *string so that nil and "" stay
// distinct inside map keys.
type nullable struct {
	val   string
	valid bool
}

func nullableOf(s *string) nullable {
	if s == nil {
		return nullable{}
	}
	return nullable{val: *s, valid: true}
}

type userKey struct {
	id, first, last, gender, level nullable
}

// ExtractUsers returns the distinct (user id, first name, last name, gender,
// level) tuples of plays, in first-seen order, skipping events without a user
// id. Distinctness is over the whole tuple, so a user who changed level is
// returned once per level.
func ExtractUsers(plays []EventRecord) []User {
	seen := make(map[userKey]struct{})
	users := make([]User, 0)
	for _, e := range plays {
		if e.UserID == nil {
			continue
		}
		k := userKey{
			id:     nullableOf(e.UserID),
			first:  nullableOf(e.FirstName),
			last:   nullableOf(e.LastName),
			gender: nullableOf(e.Gender),
			level:  nullableOf(e.Level),
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		users = append(users, User{
			UserID:    *e.UserID,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Gender:    e.Gender,
			Level:     e.Level,
		})
	}
	return users
}

// ExtractTime returns one TimeEntry per play. Timestamps are not deduplicated.
// Plays without a timestamp have no time key and are skipped.
func ExtractTime(plays []EventRecord) []TimeEntry {
	entries := make([]TimeEntry, 0, len(plays))
	for _, e := range plays {
		if e.StartTime.IsZero() {
			continue
		}
		entries = append(entries, TimeEntry{
			StartTime:      e.StartTime,
			CalendarFields: Calendar(e.StartTime),
		})
	}
	return entries
}

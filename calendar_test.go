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
	"testing"
	"time"

	"github.com/sparkify/songlake"
	"github.com/sparkify/songlake/test"
)

func TestCalendar(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		exp  songlake.CalendarFields
	}{
		{
			name: "wednesday afternoon",
			t:    time.Date(2023, time.March, 15, 14, 30, 0, 0, time.UTC),
			exp:  songlake.CalendarFields{Hour: 14, Day: 15, Week: 11, Month: 3, Year: 2023, Weekday: 4},
		},
		{
			name: "sunday is 1",
			t:    time.Date(2018, time.November, 4, 0, 0, 0, 0, time.UTC),
			exp:  songlake.CalendarFields{Hour: 0, Day: 4, Week: 44, Month: 11, Year: 2018, Weekday: 1},
		},
		{
			name: "saturday is 7",
			t:    time.Date(2018, time.November, 3, 23, 59, 59, 0, time.UTC),
			exp:  songlake.CalendarFields{Hour: 23, Day: 3, Week: 44, Month: 11, Year: 2018, Weekday: 7},
		},
		{
			name: "iso week belongs to next year",
			t:    time.Date(2018, time.December, 31, 12, 0, 0, 0, time.UTC),
			exp:  songlake.CalendarFields{Hour: 12, Day: 31, Week: 1, Month: 12, Year: 2018, Weekday: 2},
		},
		{
			name: "own location, no conversion",
			t:    time.Date(2018, time.November, 1, 1, 0, 0, 0, time.FixedZone("UTC-5", -5*60*60)),
			exp:  songlake.CalendarFields{Hour: 1, Day: 1, Week: 44, Month: 11, Year: 2018, Weekday: 5},
		},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			test.MustBe(t, tst.exp, songlake.Calendar(tst.t))
		})
	}
}

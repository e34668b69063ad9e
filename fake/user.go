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
	"fmt"

	"github.com/sparkify/songlake/fake/gen"
)

// Listener is a user of the streaming app.
type Listener struct {
	UserID       string
	FirstName    string
	LastName     string
	Gender       string
	Level        string
	Location     string
	UserAgent    string
	Registration float64
}

// UserGenerator generates fake Listeners.
type UserGenerator struct {
	g *gen.Generator
}

// NewUserGenerator initializes a new UserGenerator.
func NewUserGenerator(seed int64) *UserGenerator {
	return &UserGenerator{g: gen.NewGenerator(seed)}
}

// Listener returns a Listener with user id n+1 and realistic-ish values.
func (u *UserGenerator) Listener(n int) *Listener {
	l := &Listener{
		UserID:       fmt.Sprintf("%d", n+1),
		FirstName:    u.g.Pick(firstNames),
		LastName:     u.g.Pick(lastNames),
		Gender:       "F",
		Level:        "free",
		Location:     u.g.Pick(metroAreas),
		UserAgent:    u.g.Pick(userAgents),
		Registration: float64(1540000000000 + int64(u.g.Intn(10000000))*1000),
	}
	if u.g.Chance(0.5) {
		l.Gender = "M"
	}
	if u.g.Chance(0.3) {
		l.Level = "paid"
	}
	return l
}

var firstNames = []string{"Jacqueline", "Chloe", "Kate", "Lily", "Aleena", "Jacob", "Tegan", "Ryan", "Mohammad", "Matthew", "Layla", "Ava", "Sara", "Jayden", "Avery", "Kaylee", "Noah", "Wyatt", "Cecilia", "Emily"}

var lastNames = []string{"Lynch", "Cuevas", "Harrell", "Koch", "Kirby", "Klein", "Levine", "Smith", "Rodriguez", "Jones", "Griffin", "Robinson", "Garrison", "Cruz", "Watkins", "Cox", "Hill", "Johnson", "Owens", "Larson"}

var metroAreas = []string{
	"Atlanta-Sandy Springs-Roswell, GA", "San Francisco-Oakland-Hayward, CA",
	"Lansing-East Lansing, MI", "Chicago-Naperville-Elgin, IL-IN-WI",
	"Portland-South Portland, ME", "New York-Newark-Jersey City, NY-NJ-PA",
	"Janesville-Beloit, WI", "Houston-The Woodlands-Sugar Land, TX",
	"Tampa-St. Petersburg-Clearwater, FL", "Waterloo-Cedar Falls, IA",
}

var userAgents = []string{
	`"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_4) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/36.0.1985.143 Safari/537.36"`,
	`"Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/36.0.1985.143 Safari/537.36"`,
	`Mozilla/5.0 (Windows NT 6.1; WOW64; rv:31.0) Gecko/20100101 Firefox/31.0`,
	`"Mozilla/5.0 (iPhone; CPU iPhone OS 7_1_2 like Mac OS X) AppleWebKit/537.51.2 (KHTML, like Gecko) Version/7.0 Mobile/11D257 Safari/9537.53"`,
	`Mozilla/5.0 (X11; Linux x86_64; rv:31.0) Gecko/20100101 Firefox/31.0`,
}

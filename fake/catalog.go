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
	"strings"

	"github.com/sparkify/songlake/fake/gen"
)

// Song is one entry of the song catalog, shaped like the files under
// song_data/.
type Song struct {
	NumSongs        int      `json:"num_songs"`
	ArtistID        string   `json:"artist_id"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	ArtistLocation  string   `json:"artist_location"`
	ArtistName      string   `json:"artist_name"`
	SongID          string   `json:"song_id"`
	Title           string   `json:"title"`
	Duration        float64  `json:"duration"`
	Year            int      `json:"year"`

	// TrackID names the file the song is stored in.
	TrackID string `json:"-"`
}

type artist struct {
	id        string
	name      string
	location  string
	lat, long *float64
}

// CatalogGenerator generates songs by a fixed population of artists.
type CatalogGenerator struct {
	g       *gen.Generator
	artists []artist
}

// NewCatalogGenerator gets a CatalogGenerator with numArtists artists.
func NewCatalogGenerator(seed int64, numArtists int) *CatalogGenerator {
	if numArtists < 1 {
		numArtists = 1
	}
	c := &CatalogGenerator{g: gen.NewGenerator(seed)}
	for i := 0; i < numArtists; i++ {
		a := artist{
			id:   c.g.ID("AR", uint64(i), 16),
			name: c.name(2),
		}
		// most artists in the real catalog have no coordinates
		if c.g.Chance(0.4) {
			a.location = c.g.Pick(cities)
			lat, long := c.g.Float64(-60, 70), c.g.Float64(-180, 180)
			a.lat, a.long = &lat, &long
		}
		c.artists = append(c.artists, a)
	}
	return c
}

// Song returns the n-th song of the catalog. The ids depend only on n.
func (c *CatalogGenerator) Song(n int) *Song {
	a := c.artists[c.g.Uint64(len(c.artists))]
	s := &Song{
		NumSongs:        1,
		ArtistID:        a.id,
		ArtistLatitude:  a.lat,
		ArtistLongitude: a.long,
		ArtistLocation:  a.location,
		ArtistName:      a.name,
		SongID:          c.g.ID("SO", uint64(n), 16),
		Title:           c.name(1 + c.g.Intn(4)),
		Duration:        float64(int(c.g.Float64(60, 600)*100000)) / 100000,
		TrackID:         c.g.ID("TR", uint64(n), 16),
	}
	if c.g.Chance(0.5) {
		s.Year = 1960 + c.g.Intn(60)
	}
	return s
}

func (c *CatalogGenerator) name(words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = c.g.Pick(titleWords)
	}
	return strings.Join(parts, " ")
}

var titleWords = []string{
	"Love", "Night", "Heart", "Blue", "Rain", "Fire", "Dream", "Road", "Home",
	"Baby", "Gold", "Summer", "River", "Sky", "Dance", "Moon", "Time", "Light",
	"Wild", "Silver", "Stone", "Shadow", "Angel", "Storm", "City", "Ocean",
	"Echo", "Midnight", "Ghost", "Paradise", "Thunder", "Velvet", "Wonder",
}

var cities = []string{
	"New York, NY", "Los Angeles, CA", "Chicago, IL", "London, England",
	"Nashville, TN", "Austin, TX", "Atlanta, GA", "Seattle, WA", "Detroit, MI",
	"Berlin, Germany", "Kingston, Jamaica", "Stockholm, Sweden", "Paris, France",
}

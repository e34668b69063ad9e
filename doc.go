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

// Package songlake builds the Sparkify song play data lake. It turns a song
// catalog and the app's event logs into a star schema of partitioned tables.
//
// The work is split across four stages, each with an interface or a set of
// pure functions in this package and implementations in sub-packages.
//
// 1. Source
//
//    A RawSource (file, aws/s3) yields the input splits matched by a glob below
//    a storage root, one reader at a time. A Source (json) decodes those
//    readers into records, tagging each with the ordinal of its split.
//
// 2. Readers
//
//    ReadCatalog and ReadEvents coerce decoded records into CatalogRecord and
//    EventRecord values. Missing and null values stay nil; values of the wrong
//    but convertible type are converted; anything else fails the whole read.
//
// 3. Transformations
//
//    ExtractSongs and ExtractArtists project the catalog. FilterPlays keeps the
//    NextSong events, from which ExtractUsers and ExtractTime build the users
//    and time dimensions. BuildSongPlays joins the plays to the catalog on the
//    song title to build the songplays fact table. All of them are pure.
//
// 4. Sink
//
//    A Sink (parquet) replaces the table stored at a destination with a new
//    one, partitioned as the Table says.
//
// Pipeline ties the stages together for one run, recording each table it
// writes in a Ledger (ledger) and reporting to a Statter (promstat, termstat)
// and a Logger (logger). The etl package configures a Pipeline from the
// command line options of cmd.
package songlake

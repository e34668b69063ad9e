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

package cmd

import (
	"fmt"
	"io"

	"github.com/jaffee/commandeer"
	"github.com/pkg/errors"
	"github.com/sparkify/songlake/fake"
	"github.com/spf13/cobra"
)

// GenMain is the configuration of the gen subcommand.
type GenMain struct {
	Dir      string `help:"Directory to write song_data/ and log_data/ into."`
	Seed     int64  `help:"Random seed. The same seed and sizes give the same files."`
	Songs    int    `help:"Number of songs in the catalog."`
	Artists  int    `help:"Number of distinct artists."`
	Users    int    `help:"Number of distinct users."`
	Sessions int    `help:"Number of listening sessions."`
	Days     int    `help:"Number of days, from 2018-11-01, the sessions are spread over."`
}

// NewGenMain gets a GenMain with small defaults.
func NewGenMain() *GenMain {
	return &GenMain{
		Dir:      "data",
		Seed:     1,
		Songs:    500,
		Artists:  100,
		Users:    50,
		Sessions: 400,
		Days:     30,
	}
}

// Run writes the dataset.
func (m *GenMain) Run() (fake.Summary, error) {
	if m.Dir == "" {
		return fake.Summary{}, errors.New("no output directory")
	}
	d := fake.Dataset{
		Seed:     m.Seed,
		Songs:    m.Songs,
		Artists:  m.Artists,
		Users:    m.Users,
		Sessions: m.Sessions,
		Days:     m.Days,
	}
	sum, err := d.Write(m.Dir)
	return sum, errors.Wrap(err, "writing dataset")
}

// NewGenCommand returns the gen subcommand.
func NewGenCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	genMain := NewGenMain()
	genCommand := &cobra.Command{
		Use:   "gen",
		Short: "Generate a fake song catalog and event logs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := genMain.Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "wrote %d song files and %d log files (%d events, %d plays) to %s\n",
				sum.SongFiles, sum.LogFiles, sum.Events, sum.Plays, genMain.Dir)
			return nil
		},
	}
	flags := genCommand.Flags()
	err = commandeer.Flags(flags, genMain)
	if err != nil {
		panic(err)
	}
	return genCommand
}

func init() {
	subcommandFns["gen"] = NewGenCommand
}

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
	"time"

	"github.com/jaffee/commandeer"
	"github.com/sparkify/songlake/etl"
	"github.com/spf13/cobra"
)

// ETLMain is the configuration of the etl subcommand.
var ETLMain *etl.Main

// NewETLCommand returns the etl subcommand, which runs the pipeline once.
func NewETLCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	ETLMain = etl.NewMain()
	ETLMain.SetLogOutput(stderr)
	etlCommand := &cobra.Command{
		Use:   "etl",
		Short: "Build the data lake tables from the song catalog and event logs.",
		Long: `Reads the song catalog and the event logs below the input root,
and writes the songs, artists, users, time and songplays tables below the
output root, replacing whatever was there.

Options may also be given as SONGLAKE_<OPTION> environment variables or in a
TOML file named by --config, with flags taking precedence over the
environment, and the environment over the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			report, err := ETLMain.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range report.Tables() {
				rows, _ := report.Rows(name)
				fmt.Fprintf(stdout, "%-10s %d\n", name, rows)
			}
			fmt.Fprintf(stdout, "run %s done in %v\n", report.RunID, time.Since(start))
			return nil
		},
	}
	flags := etlCommand.Flags()
	err = commandeer.Flags(flags, ETLMain)
	if err != nil {
		panic(err)
	}
	return etlCommand
}

func init() {
	subcommandFns["etl"] = NewETLCommand
}

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
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/jaffee/commandeer"
	"github.com/pkg/errors"
	"github.com/sparkify/songlake/ledger"
	"github.com/spf13/cobra"
)

// RunsMain is the configuration of the runs subcommand.
type RunsMain struct {
	Ledger string `help:"Path of the ledger written by etl."`
	JSON   bool   `help:"Print the runs as JSON."`
}

// Run prints the runs recorded in the ledger to w.
func (m *RunsMain) Run(w io.Writer) error {
	if m.Ledger == "" {
		return errors.New("no ledger given")
	}
	l, err := ledger.Open(m.Ledger)
	if err != nil {
		return err
	}
	defer l.Close()
	runs, err := l.Runs()
	if err != nil {
		return errors.Wrap(err, "listing runs")
	}
	if m.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(runs), "encoding runs")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tFINISHED\tROWS\tTABLES")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID,
			r.Started.Format(time.RFC3339), r.Finished.Format(time.RFC3339),
			r.Rows, strings.Join(r.Tables, ","))
	}
	return errors.Wrap(tw.Flush(), "writing runs")
}

// NewRunsCommand returns the runs subcommand.
func NewRunsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	runsMain := &RunsMain{Ledger: "songlake.ledger"}
	runsCommand := &cobra.Command{
		Use:   "runs",
		Short: "List the runs recorded in the ledger.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runsMain.Run(stdout)
		},
	}
	flags := runsCommand.Flags()
	err = commandeer.Flags(flags, runsMain)
	if err != nil {
		panic(err)
	}
	return runsCommand
}

func init() {
	subcommandFns["runs"] = NewRunsCommand
}

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

package promstat

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestStatterCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewStatter("songlake", reg)

	s.Count("rows.written", 3, 1, "table:songs")
	s.Count("rows.written", 4, 1, "table:songs")
	s.Count("rows.written", 2, 1, "table:users")

	require.Equal(t, float64(7), testutil.ToFloat64(s.counters["rows_written_total"].WithLabelValues("songs")))
	require.Equal(t, float64(2), testutil.ToFloat64(s.counters["rows_written_total"].WithLabelValues("users")))
	require.Equal(t, float64(0), testutil.ToFloat64(s.errors))
}

func TestStatterLabelMismatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewStatter("songlake", reg)

	s.Count("records.read", 1, 1, "source:catalog")
	s.Count("records.read", 1, 1, "table:songs")
	s.Count("records.read", -1, 1, "source:catalog")

	require.Equal(t, float64(1), testutil.ToFloat64(s.counters["records_read_total"].WithLabelValues("catalog")))
	require.Equal(t, float64(2), testutil.ToFloat64(s.errors))
}

func TestStatterGaugeSetTiming(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewStatter("songlake", reg)

	s.Gauge("tables.pending", 5, 1)
	s.Gauge("tables.pending", 2, 1)
	s.Set("run", "r1", 1)
	s.Timing("write", 1500*time.Millisecond, 1, "table:time")
	s.Histogram("batch.size", 10, 1)

	require.Equal(t, float64(2), testutil.ToFloat64(s.gauges["tables_pending"].WithLabelValues()))
	require.Equal(t, float64(1), testutil.ToFloat64(s.gauges["run_set"].WithLabelValues("r1")))
	require.Equal(t, 1, testutil.CollectAndCount(s.histograms["write_seconds"]))
	require.Equal(t, 1, testutil.CollectAndCount(s.histograms["batch_size"]))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewStatter("songlake", reg)
	s.Count("rows.written", 9, 1, "table:songplays")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `songlake_rows_written_total{table="songplays"} 9`), string(body))
}

func TestParseTags(t *testing.T) {
	keys, vals := parseTags([]string{"table:songs", "bare", "a.b:c:d"})
	require.Equal(t, []string{"a_b", "table", "tag"}, keys)
	require.Equal(t, []string{"c:d", "songs", "bare"}, vals)
}

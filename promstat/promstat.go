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

// Package promstat provides a songlake.Statter which exports stats as
// Prometheus metrics.
//
// Metric names are prefixed with a namespace and have dots replaced by
// underscores. Tags of the form "key:value" become labels; a tag without a
// colon becomes a label named "tag". The label names of a metric are fixed by
// the first call which uses it, and later calls with other label names are
// counted in <namespace>_stat_errors_total and otherwise ignored.
package promstat

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Statter is a songlake.Statter which registers its metrics with a
// prometheus.Registerer.
type Statter struct {
	namespace string
	reg       prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string

	errors prometheus.Counter
}

// NewStatter returns a Statter registering with reg. Metric names are
// prefixed with namespace.
func NewStatter(namespace string, reg prometheus.Registerer) *Statter {
	s := &Statter{
		namespace:  namespace,
		reg:        reg,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		labels:     make(map[string][]string),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stat_errors_total",
			Help:      "Stats which could not be recorded.",
		}),
	}
	reg.MustRegister(s.errors)
	return s
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Count adds value to the counter <name>_total.
func (s *Statter) Count(name string, value int64, rate float64, tags ...string) {
	if value < 0 {
		s.errors.Inc()
		return
	}
	keys, vals := parseTags(tags)
	s.mu.Lock()
	defer s.mu.Unlock()
	full := metricName(name) + "_total"
	cv, ok := s.counters[full]
	if !ok {
		cv = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: s.namespace,
			Name:      full,
			Help:      "Count of " + name + ".",
		}, keys)
		if !s.register(full, cv, keys) {
			return
		}
		s.counters[full] = cv
	}
	if c, ok := s.with(full, keys, vals); ok {
		cv.WithLabelValues(c...).Add(float64(value))
	}
}

// Gauge sets the gauge <name>.
func (s *Statter) Gauge(name string, value float64, rate float64, tags ...string) {
	keys, vals := parseTags(tags)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauge(metricName(name), keys, vals, value)
}

// Set records value as a label of the gauge <name>_set, which is set to 1.
func (s *Statter) Set(name string, value string, rate float64, tags ...string) {
	keys, vals := parseTags(append(tags, "value:"+value))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauge(metricName(name)+"_set", keys, vals, 1)
}

func (s *Statter) gauge(full string, keys, vals []string, value float64) {
	gv, ok := s.gauges[full]
	if !ok {
		gv = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: s.namespace,
			Name:      full,
			Help:      "Gauge " + full + ".",
		}, keys)
		if !s.register(full, gv, keys) {
			return
		}
		s.gauges[full] = gv
	}
	if v, ok := s.with(full, keys, vals); ok {
		gv.WithLabelValues(v...).Set(value)
	}
}

// Histogram observes value in the histogram <name>.
func (s *Statter) Histogram(name string, value float64, rate float64, tags ...string) {
	keys, vals := parseTags(tags)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observe(metricName(name), prometheus.DefBuckets, keys, vals, value)
}

// Timing observes value, in seconds, in the histogram <name>_seconds.
func (s *Statter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	keys, vals := parseTags(tags)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observe(metricName(name)+"_seconds", prometheus.ExponentialBuckets(0.01, 2, 14), keys, vals, value.Seconds())
}

func (s *Statter) observe(full string, buckets []float64, keys, vals []string, value float64) {
	hv, ok := s.histograms[full]
	if !ok {
		hv = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: s.namespace,
			Name:      full,
			Help:      "Distribution of " + full + ".",
			Buckets:   buckets,
		}, keys)
		if !s.register(full, hv, keys) {
			return
		}
		s.histograms[full] = hv
	}
	if v, ok := s.with(full, keys, vals); ok {
		hv.WithLabelValues(v...).Observe(value)
	}
}

// register must be called with s.mu held.
func (s *Statter) register(full string, c prometheus.Collector, keys []string) bool {
	if err := s.reg.Register(c); err != nil {
		s.errors.Inc()
		return false
	}
	s.labels[full] = keys
	return true
}

// with checks keys against the label names the metric was created with.
func (s *Statter) with(full string, keys, vals []string) ([]string, bool) {
	want := s.labels[full]
	if len(want) != len(keys) {
		s.errors.Inc()
		return nil, false
	}
	for i := range want {
		if want[i] != keys[i] {
			s.errors.Inc()
			return nil, false
		}
	}
	return vals, true
}

func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}

// parseTags splits "key:value" tags into label names and values, sorted by
// name. Later tags win over earlier ones with the same key.
func parseTags(tags []string) (keys, vals []string) {
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		k, v := "tag", tag
		if i := strings.Index(tag, ":"); i >= 0 {
			k, v = metricName(tag[:i]), tag[i+1:]
		}
		m[k] = v
	}
	keys = make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals = make([]string, len(keys))
	for i, k := range keys {
		vals[i] = m[k]
	}
	return keys, vals
}

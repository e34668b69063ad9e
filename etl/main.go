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

// Package etl wires the songlake pipeline to its storage, credentials,
// metrics and logging, as configured from the command line.
package etl

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sparkify/songlake"
	"github.com/sparkify/songlake/aws/s3"
	"github.com/sparkify/songlake/file"
	"github.com/sparkify/songlake/json"
	"github.com/sparkify/songlake/ledger"
	"github.com/sparkify/songlake/logger"
	"github.com/sparkify/songlake/parquet"
	"github.com/sparkify/songlake/promstat"
	"github.com/sparkify/songlake/termstat"
	"github.com/spf13/viper"
)

// Main is the configuration of one ETL run.
type Main struct {
	Input       string `help:"Root of the input data: a local directory or an s3:// (or s3a://) URL."`
	Output      string `help:"Root below which the tables are written: a local directory or an s3:// (or s3a://) URL."`
	SongGlob    string `help:"Glob, relative to the input root, matching the song catalog files."`
	LogGlob     string `help:"Glob, relative to the input root, matching the event log files."`
	Creds       string `help:"INI file with a [creds] section holding AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY. Read only for object-store roots."`
	Region      string `help:"AWS region of the buckets."`
	Config      string `help:"TOML file to read the other options from."`
	Ledger      string `help:"Path of the boltdb file recording table commits. Blank disables it."`
	Stats       string `help:"Where to send stats: none, term or prometheus."`
	MetricsAddr string `help:"Address to serve Prometheus metrics on while running, with -stats=prometheus."`
	Compression string `help:"Parquet compression codec."`
	StagingDir  string `help:"Local directory for staging tables bound for object storage. Defaults to the system temp dir."`
	LogFormat   string `help:"Log format: json or console."`
	Verbose     bool   `help:"Enable debug logging."`

	logOut   io.Writer
	s3client func(sess *session.Session) s3Client
}

// s3Client gives a run its object-store sources and publisher.
type s3Client interface {
	raw(ctx context.Context, root, pattern string) (songlake.RawSource, error)
	publisher() parquet.Publisher
}

type awsClient struct {
	sess *session.Session
}

func (c awsClient) raw(ctx context.Context, root, pattern string) (songlake.RawSource, error) {
	return s3.NewRawSource(ctx, awss3.New(c.sess), root, pattern)
}

func (c awsClient) publisher() parquet.Publisher {
	return s3.NewPublisher(c.sess)
}

// NewMain gets a Main with the defaults of the Sparkify dataset.
func NewMain() *Main {
	return &Main{
		SongGlob:    "song_data/*/*/*",
		LogGlob:     "log_data/*/*",
		Creds:       "dl.cfg",
		Region:      "us-west-2",
		Stats:       "none",
		Compression: "snappy",
		LogFormat:   logger.FormatConsole,
		logOut:      os.Stderr,
		s3client:    func(sess *session.Session) s3Client { return awsClient{sess: sess} },
	}
}

// SetLogOutput redirects the run's logs.
func (m *Main) SetLogOutput(w io.Writer) {
	m.logOut = w
}

// LoadCredentials reads the [creds] section of an INI file. Both keys must be
// present and non-empty.
func LoadCredentials(filename string) (s3.Credentials, error) {
	var creds s3.Credentials
	v := viper.New()
	v.SetConfigFile(filename)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return creds, errors.Wrapf(err, "reading credentials file '%s'", filename)
	}
	creds.AccessKeyID = strings.TrimSpace(v.GetString("creds.aws_access_key_id"))
	creds.SecretAccessKey = strings.TrimSpace(v.GetString("creds.aws_secret_access_key"))
	if creds.AccessKeyID == "" {
		return creds, errors.Errorf("AWS_ACCESS_KEY_ID missing from [creds] in '%s'", filename)
	}
	if creds.SecretAccessKey == "" {
		return creds, errors.Errorf("AWS_SECRET_ACCESS_KEY missing from [creds] in '%s'", filename)
	}
	return creds, nil
}

func (m *Main) validate() error {
	if m.Input == "" {
		return errors.New("no input root")
	}
	if m.Output == "" {
		return errors.New("no output root")
	}
	if m.SongGlob == "" || m.LogGlob == "" {
		return errors.New("song and log globs are required")
	}
	return nil
}

// Run executes the ETL once and returns the pipeline's report. Configuration
// problems are reported before anything is read or written.
func (m *Main) Run(ctx context.Context) (*songlake.Report, error) {
	if err := m.validate(); err != nil {
		return nil, errors.Wrap(err, "validating configuration")
	}
	if m.logOut == nil {
		m.logOut = os.Stderr
	}
	log, err := logger.New(m.logOut, m.LogFormat, m.Verbose)
	if err != nil {
		return nil, errors.Wrap(err, "setting up logging")
	}

	var client s3Client
	if s3.IsURL(m.Input) || s3.IsURL(m.Output) {
		creds, err := LoadCredentials(m.Creds)
		if err != nil {
			return nil, errors.Wrap(err, "loading credentials")
		}
		sess, err := s3.NewSession(creds, m.Region)
		if err != nil {
			return nil, errors.Wrap(err, "setting up AWS session")
		}
		client = m.s3client(sess)
	}

	songs, err := m.rawSource(ctx, client, m.SongGlob)
	if err != nil {
		return nil, errors.Wrap(err, "listing song data")
	}
	events, err := m.rawSource(ctx, client, m.LogGlob)
	if err != nil {
		return nil, errors.Wrap(err, "listing log data")
	}

	sink, err := parquet.NewSink()
	if err != nil {
		return nil, errors.Wrap(err, "setting up parquet sink")
	}
	defer sink.Close()
	sink.Compression = m.Compression
	sink.StagingDir = m.StagingDir
	if s3.IsURL(m.Output) {
		sink.Publisher = client.publisher()
		sink.IsRemote = s3.IsURL
	}

	p := &songlake.Pipeline{
		Catalog:    json.NewSourceFromRawSource(songs),
		Events:     json.NewSourceFromRawSource(events),
		Sink:       sink,
		OutputRoot: m.Output,
		Log:        log,
	}
	if m.Ledger != "" {
		l, err := ledger.Open(m.Ledger)
		if err != nil {
			return nil, errors.Wrap(err, "opening ledger")
		}
		defer l.Close()
		p.Ledger = l
	}
	stats, stop, err := m.stats(log)
	if err != nil {
		return nil, errors.Wrap(err, "setting up stats")
	}
	defer stop()
	p.Stats = stats

	report, err := p.Run(ctx)
	if err != nil {
		log.With("run", report.RunID).Errorf("run failed after writing %v: %v", report.Tables(), err)
		return report, err
	}
	return report, nil
}

func (m *Main) rawSource(ctx context.Context, client s3Client, pattern string) (songlake.RawSource, error) {
	if s3.IsURL(m.Input) {
		return client.raw(ctx, m.Input, pattern)
	}
	return file.NewRawSource(m.Input, pattern)
}

// stats builds the configured Statter, and a func releasing what it holds.
func (m *Main) stats(log *logger.Logger) (songlake.Statter, func(), error) {
	switch m.Stats {
	case "", "none":
		return songlake.NopStatter{}, func() {}, nil
	case "term":
		c := termstat.NewCollector(m.logOut, 2*time.Second)
		return c, func() { c.Close() }, nil
	case "prometheus":
		reg := prometheus.NewRegistry()
		s := promstat.NewStatter("songlake", reg)
		if m.MetricsAddr == "" {
			return s, func() {}, nil
		}
		ln, err := net.Listen("tcp", m.MetricsAddr)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "listening on %s", m.MetricsAddr)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promstat.Handler(reg))
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server: %v", err)
			}
		}()
		log.Printf("serving metrics on %s", ln.Addr())
		return s, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}, nil
	default:
		return nil, nil, errors.Errorf("unknown stats destination '%s'", m.Stats)
	}
}

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

// Package s3 reads input splits from, and publishes tables to, Amazon S3.
package s3

import (
	"context"
	"io"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	"github.com/sparkify/songlake"
)

// Credentials are the static keys used to talk to S3.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// NewSession returns an AWS session using exactly the given credentials and
// region. Nothing is read from or written to the process environment.
func NewSession(creds Credentials, region string) (*session.Session, error) {
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, errors.New("incomplete credentials")
	}
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(creds.AccessKeyID, creds.SecretAccessKey, ""),
	})
	if err != nil {
		return nil, errors.Wrap(err, "getting new session")
	}
	return sess, nil
}

// IsURL reports whether p names a location in S3 ("s3://" or "s3a://").
func IsURL(p string) bool {
	return strings.HasPrefix(p, "s3://") || strings.HasPrefix(p, "s3a://")
}

// ParseURL splits an S3 URL into bucket and key prefix. The prefix has no
// leading slash.
func ParseURL(p string) (bucket, prefix string, err error) {
	if !IsURL(p) {
		return "", "", errors.Errorf("not an s3 url: %s", p)
	}
	u, err := url.Parse(p)
	if err != nil {
		return "", "", errors.Wrapf(err, "parsing %s", p)
	}
	if u.Host == "" {
		return "", "", errors.Errorf("no bucket in %s", p)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// RawSource is a songlake.RawSource over the objects of a bucket whose keys,
// relative to a root prefix, match a glob pattern. Objects are read in key
// order.
type RawSource struct {
	ctx    context.Context
	bucket string
	s3     s3iface.S3API
	keys   []string
	objIdx *uint64
}

// staticPrefix returns the part of pattern before its first glob
// metacharacter, which is what S3 can filter on server side.
func staticPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, `*?[\`); i >= 0 {
		return pattern[:i]
	}
	return pattern
}

// matches reports whether the relative key rel is selected by pattern: either
// the key itself matches, or the "directory" holding it does.
func matches(pattern, rel string) (bool, error) {
	ok, err := path.Match(pattern, rel)
	if err != nil || ok {
		return ok, err
	}
	return path.Match(pattern, path.Dir(rel))
}

// NewRawSource lists the objects below root (a "s3://bucket/prefix/" URL)
// selected by pattern, which uses path.Match syntax. A pattern matching a
// key prefix up to a slash selects the objects directly below it, the way a
// glob matching a directory selects the files in it. No matches is not an
// error.
func NewRawSource(ctx context.Context, client s3iface.S3API, root, pattern string) (*RawSource, error) {
	bucket, prefix, err := ParseURL(root)
	if err != nil {
		return nil, err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	idx := uint64(0)
	rs := &RawSource{
		ctx:    ctx,
		bucket: bucket,
		s3:     client,
		objIdx: &idx,
	}
	var matchErr error
	err = client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix + staticPrefix(pattern)),
	}, func(page *s3.ListObjectsV2Output, last bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			ok, err := matches(pattern, strings.TrimPrefix(key, prefix))
			if err != nil {
				matchErr = errors.Wrapf(err, "matching %s", pattern)
				return false
			}
			if ok {
				rs.keys = append(rs.keys, key)
			}
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing objects")
	}
	if matchErr != nil {
		return nil, matchErr
	}
	sort.Strings(rs.keys)
	return rs, nil
}

// Keys returns the matched object keys.
func (rs *RawSource) Keys() []string {
	return rs.keys
}

type objReader struct {
	name string
	body io.ReadCloser
}

func (o *objReader) Read(buf []byte) (n int, err error) {
	return o.body.Read(buf)
}

func (o *objReader) Close() error {
	return o.body.Close()
}

func (o *objReader) Name() string {
	return o.name
}

// NextReader implements songlake.RawSource.
func (rs *RawSource) NextReader() (songlake.NamedReadCloser, error) {
	idx := atomic.AddUint64(rs.objIdx, 1) - 1
	if int(idx) >= len(rs.keys) {
		return nil, io.EOF
	}
	key := rs.keys[idx]

	result, err := rs.s3.GetObjectWithContext(rs.ctx, &s3.GetObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %v", key)
	}
	return &objReader{name: "s3://" + rs.bucket + "/" + key, body: result.Body}, nil
}

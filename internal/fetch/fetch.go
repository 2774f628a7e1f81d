// Copyright © 2018 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fetch is soar's HTTP layer: a single shared client offering
// whole-object GETs with progress and resumable ranged GETs. Every
// request carries a User-Agent and honors context cancellation.
// Whole-object GETs retry transient failures with exponential backoff;
// ranged downloads are not retried.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/clearlinux/soar/internal/progress"
	"github.com/pkg/errors"
)

// UserAgent is sent on every request.
const UserAgent = "soar/1.0"

// StatusError carries the URL and status code of a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("got status %d fetching %s", e.StatusCode, e.URL)
}

// Fetcher is shared across an entire operation batch: one
// *http.Client, immutable once built.
type Fetcher struct {
	client *http.Client
}

// New builds a Fetcher. metadataTimeout bounds whole-object requests;
// body streaming for ranged downloads has
// no overall timeout; only the context the caller supplies bounds it.
func New(metadataTimeout time.Duration) *Fetcher {
	if metadataTimeout <= 0 {
		metadataTimeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: metadataTimeout},
	}
}

func (f *Fetcher) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "building request for %s", url)
	}
	req.Header.Set("User-Agent", UserAgent)
	return req, nil
}

// GetAll performs a whole-object GET, used for metadata and icons,
// reporting bytes read to bar (which may be progress.NoOp's bar).
func (f *Fetcher) GetAll(ctx context.Context, url string, bar progress.Bar) ([]byte, error) {
	req, err := f.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var body []byte
	op := func() error {
		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&StatusError{URL: url, StatusCode: resp.StatusCode})
		}

		if resp.ContentLength > 0 {
			bar.SetTotal(resp.ContentLength)
		}

		counting := &countingReader{r: resp.Body, bar: bar}
		body, err = io.ReadAll(counting)
		return err
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, errors.Wrapf(err, "fetching %s", url)
	}
	return body, nil
}

// GetConditional performs a whole-object GET that short-circuits to a
// 304 when ifNoneMatch matches the server's current ETag, avoiding a
// full re-download of unchanged metadata. notModified is true only on
// a genuine 304; any other outcome returns the body and the response's
// new ETag (which may be empty if the server doesn't send one).
func (f *Fetcher) GetConditional(ctx context.Context, url, ifNoneMatch string) (body []byte, etag string, notModified bool, err error) {
	req, err := f.newRequest(ctx, url)
	if err != nil {
		return nil, "", false, err
	}
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}

	op := func() error {
		resp, doErr := f.client.Do(req)
		if doErr != nil {
			return doErr
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusNotModified {
			notModified = true
			etag = resp.Header.Get("ETag")
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&StatusError{URL: url, StatusCode: resp.StatusCode})
		}

		etag = resp.Header.Get("ETag")
		body, doErr = io.ReadAll(resp.Body)
		return doErr
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if retryErr := backoff.Retry(op, backoff.WithContext(bo, ctx)); retryErr != nil {
		return nil, "", false, errors.Wrapf(retryErr, "fetching %s", url)
	}
	return body, etag, notModified, nil
}

// RangedDownload performs a resumable ranged GET into stagingPath,
// resuming from its current length. If the server ignores the Range
// header and returns a full (200) body, or reports the staged bytes
// already exceed the object (416), the staging file is truncated and
// the download restarts from zero.
func (f *Fetcher) RangedDownload(ctx context.Context, url, stagingPath string, bar progress.Bar) error {
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := stagingSize(stagingPath)
		if err != nil {
			return errors.Wrapf(err, "statting staging file %s", stagingPath)
		}

		req, err := f.newRequest(ctx, url)
		if err != nil {
			return err
		}
		if existing > 0 {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-", existing))
		}

		restart, err := f.downloadOnce(req, stagingPath, existing, bar)
		if err != nil {
			return err
		}
		if !restart {
			return nil
		}
		// Server ignored the Range header; truncate and retry from zero.
		if err := os.Truncate(stagingPath, 0); err != nil {
			return errors.Wrapf(err, "truncating staging file %s for restart", stagingPath)
		}
	}
	return errors.Errorf("server for %s never honored a ranged request after restart", url)
}

// downloadOnce issues req and streams the response into stagingPath.
// It reports (true, nil) when the caller should truncate and restart
// because the server returned a full body despite a Range request.
func (f *Fetcher) downloadOnce(req *http.Request, stagingPath string, existing int64, bar progress.Bar) (bool, error) {
	// The metadata timeout covers the whole response body, so ranged
	// downloads use a copy of the client without it.
	client := *f.client
	client.Timeout = 0
	resp, err := client.Do(req)
	if err != nil {
		return false, errors.Wrapf(err, "downloading %s", req.URL.String())
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		if existing > 0 {
			// Server ignored our Range header: ask caller to restart.
			return true, nil
		}
	case http.StatusPartialContent:
		// Expected resumed response.
	case http.StatusRequestedRangeNotSatisfiable:
		// The staging file is already longer than the remote object;
		// whatever is in it cannot be trusted.
		return true, nil
	default:
		return false, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	total := existing
	if resp.ContentLength > 0 {
		total += resp.ContentLength
	}
	if total > 0 {
		bar.SetTotal(total)
	}
	bar.Add(existing)

	flags := os.O_CREATE | os.O_WRONLY
	if resp.StatusCode == http.StatusPartialContent {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	out, err := os.OpenFile(stagingPath, flags, 0644)
	if err != nil {
		return false, errors.Wrapf(err, "opening staging file %s", stagingPath)
	}
	defer func() { _ = out.Close() }()

	counting := &countingReader{r: resp.Body, bar: bar}
	if _, err := io.Copy(out, counting); err != nil {
		return false, errors.Wrapf(err, "writing staging file %s", stagingPath)
	}
	return false, nil
}

func stagingSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return fi.Size(), nil
}

type countingReader struct {
	r   io.Reader
	bar progress.Bar
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.bar.Add(int64(n))
	}
	return n, err
}

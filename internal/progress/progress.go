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

// Package progress abstracts the multi-bar progress sink the install
// engine reports through. A no-op Sink stands in for --quiet, so
// worker logic never branches on whether a human is watching.
package progress

import (
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// Bar is a single progress indicator for one in-flight transfer.
type Bar interface {
	// SetTotal sets (or resets) the known total size in bytes. A
	// total <= 0 means unknown.
	SetTotal(total int64)
	// Add reports n additional bytes processed.
	Add(n int64)
	// Finish marks the bar complete.
	Finish()
}

// Sink produces and owns Bars, keyed by an arbitrary caller-chosen
// string (full_name, typically). Bar is idempotent per key for the
// lifetime of a Sink -- repeated installs of the same package within
// one batch reuse a bar instead of stacking a new one each retry.
type Sink interface {
	Bar(key, description string) Bar
}

// NoOp is a Sink whose Bars discard everything -- used for --quiet.
type NoOp struct{}

type noopBar struct{}

// Bar returns a shared no-op Bar.
func (NoOp) Bar(key, description string) Bar { return noopBar{} }

func (noopBar) SetTotal(int64) {}
func (noopBar) Add(int64)      {}
func (noopBar) Finish()        {}

// MultiBar renders one schollz/progressbar line per in-flight
// package plus an aggregate line for the whole batch.
type MultiBar struct {
	out io.Writer

	mu    sync.Mutex
	bars  map[string]*pbBar
	total *progressbar.ProgressBar
}

// NewMultiBar creates a MultiBar writing to out.
func NewMultiBar(out io.Writer) *MultiBar {
	return &MultiBar{
		out:  out,
		bars: make(map[string]*pbBar),
		total: progressbar.NewOptions64(-1,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("total"),
			progressbar.OptionShowBytes(true),
		),
	}
}

// Bar returns the Bar for key, creating it on first use.
func (m *MultiBar) Bar(key, description string) Bar {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bars[key]; ok {
		return b
	}
	pb := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(m.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
	)
	b := &pbBar{pb: pb, total: m.total}
	m.bars[key] = b
	return b
}

type pbBar struct {
	pb    *progressbar.ProgressBar
	total *progressbar.ProgressBar
}

func (b *pbBar) SetTotal(total int64) {
	b.pb.ChangeMax64(total)
}

func (b *pbBar) Add(n int64) {
	_ = b.pb.Add64(n)
	if b.total != nil {
		_ = b.total.Add64(n)
	}
}

func (b *pbBar) Finish() {
	_ = b.pb.Finish()
}

// FormatBytes renders n bytes human-readably, for progress
// descriptions and log lines.
func FormatBytes(n int64) string {
	return humanize.Bytes(uint64(n))
}

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

// Package tracker is the durable record of installed packages: a
// single msgpack-encoded file, rewritten via temp-file-then-rename on
// every mutation so a crash mid-write never leaves it unreadable.
package tracker

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/clearlinux/soar/internal/digest"
	"github.com/clearlinux/soar/internal/store"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// InstalledPackage is one durable tracker record.
type InstalledPackage struct {
	Repository       string `msgpack:"repository"`
	Collection       string `msgpack:"collection"`
	Family           string `msgpack:"family"`
	Name             string `msgpack:"name"`
	FullName         string `msgpack:"full_name"`
	BinaryName       string `msgpack:"binary_name"`
	Version          string `msgpack:"version"`
	Checksum         string `msgpack:"checksum"`
	SizeBytes        int64  `msgpack:"size_bytes"`
	InstallTimestamp int64  `msgpack:"install_timestamp"` // unix seconds
}

// ErrNotInstalled is returned when an operation expects an existing
// record and finds none.
var ErrNotInstalled = errors.New("package is not installed")

// Tracker guards the single tracker file with a mutex held across
// "mutate in memory + persist", so concurrent install workers
// serialize on it and never interleave partial rewrites.
type Tracker struct {
	path string

	mu      sync.Mutex
	records []InstalledPackage
	loaded  bool
}

// New returns a Tracker backed by the file at path (typically
// "<installs>/latest").
func New(path string) *Tracker {
	return &Tracker{path: path}
}

func (t *Tracker) ensureLoaded() error {
	if t.loaded {
		return nil
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.loaded = true
			return nil
		}
		return errors.Wrap(err, "reading tracker file")
	}
	var records []InstalledPackage
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return errors.Wrap(err, "decoding tracker file")
	}
	t.records = records
	t.loaded = true
	return nil
}

func (t *Tracker) persist() error {
	data, err := msgpack.Marshal(t.records)
	if err != nil {
		return errors.Wrap(err, "encoding tracker file")
	}
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "writing tracker temp file")
	}
	return digest.Promote(tmp, t.path)
}

func fullName(r store.ResolvedPackage) string {
	return r.Package.FullName("-")
}

func (t *Tracker) find(repo, collection, full string) int {
	for i := range t.records {
		r := t.records[i]
		if r.Repository == repo && r.Collection == collection && r.FullName == full {
			return i
		}
	}
	return -1
}

// IsInstalled matches by (repository, collection, full_name).
func (t *Tracker) IsInstalled(r store.ResolvedPackage) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(); err != nil {
		return false, err
	}
	return t.find(r.Repository, r.Collection, fullName(r)) >= 0, nil
}

// Lookup returns the tracker record for r, if any.
func (t *Tracker) Lookup(r store.ResolvedPackage) (InstalledPackage, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(); err != nil {
		return InstalledPackage{}, false, err
	}
	idx := t.find(r.Repository, r.Collection, fullName(r))
	if idx < 0 {
		return InstalledPackage{}, false, nil
	}
	return t.records[idx], true, nil
}

// Register updates the record for r in place if present, else
// appends it.
func (t *Tracker) Register(r store.ResolvedPackage, checksum string, sizeBytes int64, now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(); err != nil {
		return err
	}

	rec := InstalledPackage{
		Repository:       r.Repository,
		Collection:       r.Collection,
		Family:           r.Package.Family,
		Name:             r.Package.Name,
		FullName:         fullName(r),
		BinaryName:       r.Package.BinaryName,
		Version:          r.Package.Version,
		Checksum:         checksum,
		SizeBytes:        sizeBytes,
		InstallTimestamp: now.Unix(),
	}

	if idx := t.find(rec.Repository, rec.Collection, rec.FullName); idx >= 0 {
		t.records[idx] = rec
	} else {
		t.records = append(t.records, rec)
	}
	return t.persist()
}

// Unregister removes the record for r, erroring if absent.
func (t *Tracker) Unregister(r store.ResolvedPackage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(); err != nil {
		return err
	}
	idx := t.find(r.Repository, r.Collection, fullName(r))
	if idx < 0 {
		return errors.Wrapf(ErrNotInstalled, "%s/%s#%s", r.Repository, fullName(r), r.Collection)
	}
	t.records = append(t.records[:idx], t.records[idx+1:]...)
	return t.persist()
}

// Match returns every record a parsed query selects: name is
// required, family and collection narrow the match when non-empty.
// exact forbids family-widening, so an empty query family then only
// matches records that have no family of their own.
func (t *Tracker) Match(family, name, collection string, exact bool) ([]InstalledPackage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(); err != nil {
		return nil, err
	}
	var out []InstalledPackage
	for _, r := range t.records {
		if r.Name != name {
			continue
		}
		if collection != "" && r.Collection != collection {
			continue
		}
		if family != "" && r.Family != family {
			continue
		}
		if exact && family == "" && r.Family != "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// UnregisterRecord removes rec from the tracker, erroring if absent.
func (t *Tracker) UnregisterRecord(rec InstalledPackage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(); err != nil {
		return err
	}
	idx := t.find(rec.Repository, rec.Collection, rec.FullName)
	if idx < 0 {
		return errors.Wrapf(ErrNotInstalled, "%s/%s#%s", rec.Repository, rec.FullName, rec.Collection)
	}
	t.records = append(t.records[:idx], t.records[idx+1:]...)
	return t.persist()
}

// FindByPrefix returns every record whose checksum starts with
// prefix, used by the install engine to identify which installed
// record owns a file path by its install-directory checksum prefix.
func (t *Tracker) FindByPrefix(prefix string) ([]InstalledPackage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(); err != nil {
		return nil, err
	}
	var out []InstalledPackage
	for _, r := range t.records {
		if strings.HasPrefix(r.Checksum, prefix) {
			out = append(out, r)
		}
	}
	return out, nil
}

// All returns a snapshot of every tracked record.
func (t *Tracker) All() ([]InstalledPackage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]InstalledPackage, len(t.records))
	copy(out, t.records)
	return out, nil
}

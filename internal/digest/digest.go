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

// Package digest provides the streaming BLAKE3 hashing, atomic file
// promotion, and xattr ownership tagging primitives the rest of soar
// builds on.
package digest

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/xattr"
	"github.com/zeebo/blake3"
)

const chunkSize = 8 * 1024

// ManagedByAttr is the xattr tag set on every artifact this tool
// promotes into the content-addressed store.
const ManagedByAttr = "user.managed_by"

// ManagedByValue is the value ManagedByAttr is set to.
const ManagedByValue = "soar"

// Hash streams bytes through BLAKE3 and reports the lowercase 64-hex
// digest. Use NewHash, Write repeatedly, then Sum.
type Hash struct {
	h *blake3.Hasher
}

// NewHash creates a Hash ready to accept writes.
func NewHash() *Hash {
	return &Hash{h: blake3.New()}
}

// Write implements io.Writer.
func (h *Hash) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum returns the lowercase 64-hex digest of everything written so
// far.
func (h *Hash) Sum() string {
	sum := h.h.Sum(nil)
	return hex.EncodeToString(sum)
}

// HashFile streams a file's contents through BLAKE3 in chunkSize
// reads and returns its lowercase 64-hex digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "opening %s for hashing", path)
	}
	defer func() { _ = f.Close() }()

	h := NewHash()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", errors.Wrapf(err, "reading %s for hashing", path)
	}
	return h.Sum(), nil
}

// Verify reports whether the file at path hashes to expected. A
// mismatch is reported as (false, nil); only I/O failure is an
// error.
func Verify(path, expected string) (bool, error) {
	got, err := HashFile(path)
	if err != nil {
		return false, err
	}
	return got == expected, nil
}

// Promote atomically moves src into dst, unlinking any existing file
// at dst first. Both paths must be
// on the same filesystem for the rename to be atomic; callers are
// responsible for staging under the same root as the final
// destination.
func Promote(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return errors.Wrapf(err, "removing existing file at %s before promotion", dst)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "statting destination %s", dst)
	}
	if err := os.Rename(src, dst); err != nil {
		return errors.Wrapf(err, "promoting %s to %s", src, dst)
	}
	return nil
}

// Tag sets the ManagedByAttr xattr on path. xattr unavailability
// (tmpfs, some FUSE mounts) is demoted to a warning by the caller,
// not treated as fatal here -- Tag just reports the raw error so the
// caller can decide.
func Tag(path string) error {
	return xattr.Set(path, ManagedByAttr, []byte(ManagedByValue))
}

// IsTagged reports whether path carries the soar ownership tag. A
// missing attribute or unsupported filesystem both report false with
// no error, so foreign-ownership checks degrade to "not ours" rather
// than failing outright.
func IsTagged(path string) bool {
	val, err := xattr.Get(path, ManagedByAttr)
	if err != nil {
		return false
	}
	return string(val) == ManagedByValue
}

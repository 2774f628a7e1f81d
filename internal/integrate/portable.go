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

package integrate

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// PortableOptions mirrors the three mutually-constraining portable
// directory options. The *Set fields distinguish "flag absent" from
// "flag present with an empty value", since the two mean different
// things here.
type PortableOptions struct {
	Portable bool

	PortableHomeSet bool
	PortableHome    string

	PortableConfigSet bool
	PortableConfig    string
}

// Any reports whether any portable behavior was requested.
func (o PortableOptions) Any() bool {
	return o.Portable || o.PortableHomeSet || o.PortableConfigSet
}

// Validate rejects the conflicting combination of portable with
// either split form. Callers run it before any filesystem mutation.
func (o PortableOptions) Validate() error {
	if o.Portable && (o.PortableHomeSet || o.PortableConfigSet) {
		return errors.New("portable cannot be combined with portable_home or portable_config")
	}
	return nil
}

// ApplyPortable creates the requested portable home/config
// directories for installPath and, for the named-value form, symlinks
// a sibling to them. A no-op when opts requests nothing.
func ApplyPortable(installPath, binaryName string, opts PortableOptions) error {
	if !opts.Any() {
		return nil
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	wantHome := opts.Portable || opts.PortableHomeSet
	wantConfig := opts.Portable || opts.PortableConfigSet

	if wantHome {
		if err := applyPortableDir(installPath, binaryName, opts.PortableHome, ".home"); err != nil {
			return errors.Wrap(err, "creating portable home directory")
		}
	}
	if wantConfig {
		if err := applyPortableDir(installPath, binaryName, opts.PortableConfig, ".config"); err != nil {
			return errors.Wrap(err, "creating portable config directory")
		}
	}
	return nil
}

// applyPortableDir implements one half of the portable_home/
// portable_config pair: value == "" creates a sibling directory
// directly; a non-empty value creates "<value>/<binaryName><suffix>"
// and symlinks the sibling to it.
func applyPortableDir(installPath, binaryName, value, suffix string) error {
	sibling := installPath + suffix
	if value == "" {
		return os.MkdirAll(sibling, 0755)
	}

	target := filepath.Join(value, binaryName+suffix)
	if err := os.MkdirAll(target, 0755); err != nil {
		return errors.Wrapf(err, "creating %s", target)
	}
	if _, err := os.Lstat(sibling); err == nil {
		return nil
	}
	return os.Symlink(target, sibling)
}

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

// Package corepath resolves the canonical directory layout soar
// operates on. It expands "$VAR"/"~" references in configured paths
// and exposes the roots every other package is handed explicitly
// rather than reaching for globals.
package corepath

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/pkg/errors"
)

// Paths is the process-wide set of canonical directories. It is
// constructed once at startup (see New) and never mutated afterward;
// every reader sees a consistent snapshot.
type Paths struct {
	Root        string // soar_root
	Bin         string // soar_bin, symlink namespace
	Cache       string // soar_cache, run cache
	Registry    string // <root>/registry
	Installs    string // <root>/installs
	Packages    string // <root>/packages
	PackagesTmp string // <root>/packages/tmp
}

const vendorName = "soar"

// New resolves Paths from the root/bin/cache triple, applying
// environment and "~" expansion to each and deriving the
// registry/installs/packages subdirectories. Required directories are
// created lazily on first use elsewhere; New itself performs no I/O
// beyond env lookups.
func New(root, bin, cache string) (*Paths, error) {
	expRoot, err := Expand(root)
	if err != nil {
		return nil, errors.Wrap(err, "expanding soar_root")
	}
	expBin, err := Expand(bin)
	if err != nil {
		return nil, errors.Wrap(err, "expanding soar_bin")
	}
	expCache, err := Expand(cache)
	if err != nil {
		return nil, errors.Wrap(err, "expanding soar_cache")
	}

	p := &Paths{
		Root:        expRoot,
		Bin:         expBin,
		Cache:       expCache,
		Registry:    filepath.Join(expRoot, "registry"),
		Installs:    filepath.Join(expRoot, "installs"),
		Packages:    filepath.Join(expRoot, "packages"),
		PackagesTmp: filepath.Join(expRoot, "packages", "tmp"),
	}
	return p, nil
}

// Resolve layers the SOAR_ROOT/SOAR_BIN/SOAR_CACHE environment
// overrides on top of the configured values, fills in XDG-derived
// defaults for whatever remains empty, and builds the layout. The
// environment always wins over the config document.
func Resolve(root, bin, cache string) (*Paths, error) {
	if v := os.Getenv("SOAR_ROOT"); v != "" {
		root = v
	}
	if v := os.Getenv("SOAR_BIN"); v != "" {
		bin = v
	}
	if v := os.Getenv("SOAR_CACHE"); v != "" {
		cache = v
	}

	if root == "" {
		root = filepath.Join(xdg.DataHome(), vendorName)
	}
	expRoot, err := Expand(root)
	if err != nil {
		return nil, errors.Wrap(err, "expanding soar_root")
	}
	if bin == "" {
		bin = filepath.Join(expRoot, "bin")
	}
	if cache == "" {
		cache = filepath.Join(expRoot, "cache")
	}
	return New(expRoot, bin, cache)
}

// Default builds Paths with no configured values: environment
// overrides plus XDG defaults only.
func Default() (*Paths, error) {
	return Resolve("", "", "")
}

// EnsureDirs creates every required directory under Root. Absence is
// never fatal on its own; only creation failure is.
func (p *Paths) EnsureDirs() error {
	dirs := []string{p.Root, p.Bin, p.Cache, p.Registry, p.Installs, p.Packages, p.PackagesTmp, p.IconRegistryDir()}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return errors.Wrapf(err, "creating directory %s", d)
		}
	}
	return nil
}

// IconRegistryDir is where best-effort per-collection default icons
// are cached by the metadata pipeline.
func (p *Paths) IconRegistryDir() string {
	return filepath.Join(p.Registry, "icons")
}

// XDGDataHome returns $XDG_DATA_HOME (or its default), the base of
// the icon/application linking tree.
func (p *Paths) XDGDataHome() string {
	return xdg.DataHome()
}

// XDGIconDir returns $XDG_DATA_HOME/icons/hicolor/<w>x<h>/apps.
func (p *Paths) XDGIconDir(w, h int) string {
	return filepath.Join(p.XDGDataHome(), "icons", "hicolor", dimensionDir(w, h), "apps")
}

// XDGApplicationsDir returns $XDG_DATA_HOME/applications.
func (p *Paths) XDGApplicationsDir() string {
	return filepath.Join(p.XDGDataHome(), "applications")
}

func dimensionDir(w, h int) string {
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}

// Expand performs literal "$VAR" (read until the first
// non-alphanumeric/non-underscore character) and leading "~"
// expansion. A referenced environment variable that is unset is a
// hard error.
func Expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolving home directory for ~ expansion")
		}
		rest := strings.TrimPrefix(path, "~")
		rest = strings.TrimPrefix(rest, string(filepath.Separator))
		path = filepath.Join(home, rest)
	}

	var b strings.Builder
	i := 0
	for i < len(path) {
		c := path[i]
		if c == '$' && i+1 < len(path) {
			j := i + 1
			for j < len(path) && isVarChar(path[j]) {
				j++
			}
			name := path[i+1 : j]
			if name == "" {
				b.WriteByte(c)
				i++
				continue
			}
			val, ok := os.LookupEnv(name)
			if !ok {
				return "", errors.Errorf("undefined environment variable %q in path %q", name, path)
			}
			b.WriteString(val)
			i = j
			continue
		}
		b.WriteByte(c)
		i++
	}
	return filepath.Clean(b.String()), nil
}

func isVarChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

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

// Package appconfig loads soar's on-disk JSON configuration
// document: parse, then expand environment references in every
// path-shaped field, then validate.
package appconfig

import (
	"encoding/json"
	"os"

	"github.com/clearlinux/soar/internal/corepath"
	"github.com/clearlinux/soar/internal/metadata"
	"github.com/pkg/errors"
)

// Config is the full recognized shape of the config document:
// directory roots, the repository list, and install engine tuning.
type Config struct {
	SoarRoot  string `json:"soar_root"`
	SoarBin   string `json:"soar_bin"`
	SoarCache string `json:"soar_cache"`

	Repositories []metadata.RepositoryConfig `json:"repositories"`

	Parallel      *bool `json:"parallel"`
	ParallelLimit int64 `json:"parallel_limit"`
	SearchLimit   int   `json:"search_limit"`
}

const (
	defaultParallelLimit = 4
	defaultSearchLimit   = 20
)

// Load reads, parses, expands, and validates the config document at
// path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrapf(err, "validating config %s", path)
	}
	return &cfg, nil
}

// expandPaths applies corepath.Expand's "$VAR"/"~" contract to every
// path-shaped field.
func (c *Config) expandPaths() error {
	fields := []*string{&c.SoarRoot, &c.SoarBin, &c.SoarCache}
	for _, f := range fields {
		if *f == "" {
			continue
		}
		expanded, err := corepath.Expand(*f)
		if err != nil {
			return err
		}
		*f = expanded
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ParallelLimit <= 0 {
		c.ParallelLimit = defaultParallelLimit
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = defaultSearchLimit
	}
}

// ParallelEnabled reports the parallel knob, defaulting to true when
// the config document leaves it unset.
func (c *Config) ParallelEnabled() bool {
	if c.Parallel == nil {
		return true
	}
	return *c.Parallel
}

func (c *Config) validate() error {
	if len(c.Repositories) == 0 {
		return errors.New("at least one repository must be configured")
	}
	seen := make(map[string]bool, len(c.Repositories))
	for _, r := range c.Repositories {
		if r.Name == "" {
			return errors.New("repository entry missing name")
		}
		if r.URL == "" {
			return errors.Errorf("repository %q missing url", r.Name)
		}
		if seen[r.Name] {
			return errors.Errorf("duplicate repository name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Paths resolves the corepath.Paths this config implies, with
// SOAR_ROOT/SOAR_BIN/SOAR_CACHE environment overrides applied on top.
func (c *Config) Paths() (*corepath.Paths, error) {
	return corepath.Resolve(c.SoarRoot, c.SoarBin, c.SoarCache)
}

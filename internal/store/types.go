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

// Package store holds the in-memory package catalog: the repository
// -> collection -> name -> variant data model plus the query parser
// and resolver built on top of it.
package store

import "strings"

// Package is one catalog entry, immutable once parsed out of
// repository metadata.
type Package struct {
	Name       string `msgpack:"name"`
	BinaryName string `msgpack:"binary_name"`
	Family     string `msgpack:"family"`

	Version     string `msgpack:"version"`
	Description string `msgpack:"description"`
	Note        string `msgpack:"note"`
	Homepage    string `msgpack:"homepage"`
	SourceURL   string `msgpack:"source_url"`
	Category    string `msgpack:"category"`
	Provides    string `msgpack:"provides"`

	DownloadURL    string `msgpack:"download_url"`
	Size           string `msgpack:"size"`
	Bsum           string `msgpack:"bsum"`
	BuildDate      string `msgpack:"build_date"`
	BuildLogURL    string `msgpack:"build_log_url"`
	BuildScriptURL string `msgpack:"build_script_url"`
	IconURL        string `msgpack:"icon_url"`
}

// FullName is "family + sep + name" when family is set, else just
// name. sep is "/" for display and "-" for filesystem use.
func (p *Package) FullName(sep string) string {
	if p.Family == "" {
		return p.Name
	}
	return p.Family + sep + p.Name
}

// BsumIsNull reports whether the catalog gives this package no
// integrity digest: its bsum is the literal "null" (any case) or empty.
func (p *Package) BsumIsNull() bool {
	return strings.EqualFold(p.Bsum, "null") || p.Bsum == ""
}

// ProvidesList splits the comma-separated Provides field.
func (p *Package) ProvidesList() []string {
	if p.Provides == "" {
		return nil
	}
	parts := strings.Split(p.Provides, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CollectionPackages maps a lowercased package name to its family
// variants within one collection.
type CollectionPackages map[string][]*Package

// RepositoryPackages maps collection name to its packages.
type RepositoryPackages map[string]CollectionPackages

// PackageStore is the full catalog: repository name to its
// collections.
type PackageStore struct {
	Repositories map[string]RepositoryPackages
	// Order preserves the configured repository order for stable UX
	// across iteration of the (unordered) map above.
	Order []string
}

// NewPackageStore returns an empty store.
func NewPackageStore() *PackageStore {
	return &PackageStore{Repositories: make(map[string]RepositoryPackages)}
}

// Put registers (or replaces) the normalized catalog for a
// repository, preserving first-seen order.
func (s *PackageStore) Put(repo string, rp RepositoryPackages) {
	if _, ok := s.Repositories[repo]; !ok {
		s.Order = append(s.Order, repo)
	}
	s.Repositories[repo] = rp
}

// ResolvedPackage is the atomic unit of install/remove/update: a
// repository + collection + Package triple.
type ResolvedPackage struct {
	Repository string
	Collection string
	Package    *Package
}

// FullName delegates to the underlying Package.
func (r *ResolvedPackage) FullName(sep string) string {
	return r.Package.FullName(sep)
}

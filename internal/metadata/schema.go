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

// Package metadata implements the repository metadata pipeline:
// fetch, validate, cache, and normalize per-repo catalogs into a
// store.PackageStore.
package metadata

import "github.com/clearlinux/soar/internal/store"

// wirePackage mirrors the repository metadata JSON field for field,
// before normalization into store.Package.
type wirePackage struct {
	Pkg         string `json:"pkg"`
	PkgName     string `json:"pkg_name"`
	Description string `json:"description"`
	Note        string `json:"note"`
	Version     string `json:"version"`
	DownloadURL string `json:"download_url"`
	Size        string `json:"size"`
	Bsum        string `json:"bsum"`
	BuildDate   string `json:"build_date"`
	SrcURL      string `json:"src_url"`
	Homepage    string `json:"homepage"`
	BuildScript string `json:"build_script"`
	BuildLog    string `json:"build_log"`
	Category    string `json:"category"`
	Provides    string `json:"provides"`
	Icon        string `json:"icon"`
}

// wireCatalog is the top-level JSON document: collection name to its
// package list.
type wireCatalog map[string][]wirePackage

func (w wirePackage) normalize() *store.Package {
	p := &store.Package{
		Name:           normalizeName(w.Pkg),
		BinaryName:     w.PkgName,
		Family:         DeriveFamily(w.DownloadURL),
		Version:        w.Version,
		Description:    w.Description,
		Note:           w.Note,
		Homepage:       w.Homepage,
		SourceURL:      w.SrcURL,
		Category:       w.Category,
		Provides:       w.Provides,
		DownloadURL:    w.DownloadURL,
		Size:           w.Size,
		Bsum:           w.Bsum,
		BuildDate:      w.BuildDate,
		BuildLogURL:    w.BuildLog,
		BuildScriptURL: w.BuildScript,
		IconURL:        w.Icon,
	}
	if p.BinaryName == "" {
		p.BinaryName = p.Name
	}
	return p
}

func normalizeName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

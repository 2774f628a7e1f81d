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

package metadata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/clearlinux/soar/internal/corelog"
	"github.com/clearlinux/soar/internal/corepath"
	"github.com/clearlinux/soar/internal/digest"
	"github.com/clearlinux/soar/internal/fetch"
	"github.com/clearlinux/soar/internal/progress"
	"github.com/clearlinux/soar/internal/store"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// RepositoryConfig is one entry of the config's repositories[] list.
type RepositoryConfig struct {
	Name     string            `json:"name"`
	URL      string            `json:"url"`
	Metadata string            `json:"metadata"`
	Sources  map[string]string `json:"sources"`
}

func (r RepositoryConfig) metadataFilename() string {
	if r.Metadata != "" {
		return r.Metadata
	}
	return "metadata.json"
}

// Pipeline drives the fetch -> validate -> cache -> parse -> persist
// flow for every configured repository.
type Pipeline struct {
	paths   *corepath.Paths
	fetcher *fetch.Fetcher
}

// New builds a Pipeline.
func New(paths *corepath.Paths, fetcher *fetch.Fetcher) *Pipeline {
	return &Pipeline{paths: paths, fetcher: fetcher}
}

// Load refreshes (if stale or absent) and returns the normalized
// catalog for every configured repository, merged into one
// store.PackageStore.
func (p *Pipeline) Load(ctx context.Context, repos []RepositoryConfig) (*store.PackageStore, error) {
	ps := store.NewPackageStore()
	for _, repo := range repos {
		rp, err := p.loadOne(ctx, repo)
		if err != nil {
			return nil, errors.Wrapf(err, "loading repository %q", repo.Name)
		}
		ps.Put(repo.Name, rp)
	}
	return ps, nil
}

func (p *Pipeline) loadOne(ctx context.Context, repo RepositoryConfig) (store.RepositoryPackages, error) {
	url := repo.URL + "/" + repo.metadataFilename()
	cachedPath := filepath.Join(p.paths.Registry, repo.Name)
	remoteBsumPath := cachedPath + ".remote.bsum"
	etagPath := cachedPath + ".etag"

	stale, err := p.isStale(ctx, url, cachedPath, remoteBsumPath)
	if err != nil {
		corelog.Warning(corelog.Metadata, "checking staleness of %s: %s (forcing refetch)", repo.Name, err)
		stale = true
	}

	var rp store.RepositoryPackages
	if !stale {
		rp, err = loadCached(cachedPath)
		if err == nil {
			return rp, nil
		}
		corelog.Warning(corelog.Metadata, "cached registry for %s is corrupt, refetching once: %s", repo.Name, err)
	}

	// Even when the bsum sidecar says "stale" (or the cached copy is
	// unreadable), a conditional GET lets an unchanged server
	// short-circuit to 304 without a full body transfer. A registry
	// whose sidecar cannot be fetched never reaches this point while a
	// readable cached copy exists: isStale trusts the cache then.
	if etag, etagErr := os.ReadFile(etagPath); etagErr == nil {
		if _, _, notModified, condErr := p.fetcher.GetConditional(ctx, url, string(etag)); condErr == nil && notModified {
			if rp, err := loadCached(cachedPath); err == nil {
				return rp, nil
			}
		}
	}

	return p.refetch(ctx, repo, url, cachedPath, remoteBsumPath, etagPath)
}

// isStale compares the remote .bsum sidecar (best-effort) against the
// local cached one; a fetch failure is treated as "trust the local
// cache".
func (p *Pipeline) isStale(ctx context.Context, url, cachedPath, remoteBsumPath string) (bool, error) {
	if _, err := os.Stat(cachedPath); os.IsNotExist(err) {
		return true, nil
	}

	remote, err := p.fetcher.GetAll(ctx, url+".bsum", progress.NoOp{}.Bar("", ""))
	if err != nil {
		// Best-effort: can't reach the sidecar, trust the local cache.
		return false, nil
	}

	local, err := os.ReadFile(remoteBsumPath)
	if err != nil {
		return true, nil
	}

	return string(remote) != string(local), nil
}

func (p *Pipeline) refetch(ctx context.Context, repo RepositoryConfig, url, cachedPath, remoteBsumPath, etagPath string) (store.RepositoryPackages, error) {
	body, etag, _, err := p.fetcher.GetConditional(ctx, url, "")
	if err != nil {
		return nil, errors.Wrap(err, "fetching metadata")
	}
	if len(body) == 0 {
		return nil, errors.New("metadata response was empty")
	}

	var wire wireCatalog
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, errors.Wrap(err, "parsing metadata JSON")
	}

	rp := normalize(wire)

	if err := persist(cachedPath, rp); err != nil {
		return nil, errors.Wrap(err, "persisting normalized registry")
	}

	if etag != "" {
		_ = os.WriteFile(etagPath, []byte(etag), 0644)
	}
	if remote, err := p.fetcher.GetAll(ctx, url+".bsum", progress.NoOp{}.Bar("", "")); err == nil {
		_ = os.WriteFile(remoteBsumPath, remote, 0644)
	}

	p.fetchDefaultIcons(ctx, repo, rp)

	return rp, nil
}

// normalize groups each collection's package list by lowercased
// name, deriving family per-package from its download URL.
func normalize(wire wireCatalog) store.RepositoryPackages {
	rp := make(store.RepositoryPackages, len(wire))
	for collName, pkgs := range wire {
		coll := make(store.CollectionPackages)
		for _, w := range pkgs {
			p := w.normalize()
			coll[p.Name] = append(coll[p.Name], p)
		}
		rp[collName] = coll
	}
	return rp
}

func persist(path string, rp store.RepositoryPackages) error {
	data, err := msgpack.Marshal(rp)
	if err != nil {
		return errors.Wrap(err, "encoding registry")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "writing registry temp file")
	}
	return digest.Promote(tmp, path)
}

func loadCached(path string) (store.RepositoryPackages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading cached registry")
	}
	var rp store.RepositoryPackages
	if err := msgpack.Unmarshal(data, &rp); err != nil {
		return nil, errors.Wrap(err, "decoding cached registry")
	}
	return rp, nil
}

// fetchDefaultIcons best-effort downloads one icon per collection.
// Missing icons are never fatal.
func (p *Pipeline) fetchDefaultIcons(ctx context.Context, repo RepositoryConfig, rp store.RepositoryPackages) {
	for collName := range rp {
		src, ok := repo.Sources[collName]
		if !ok {
			continue
		}
		dst := filepath.Join(p.paths.IconRegistryDir(), repo.Name+"-"+collName+".png")
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		body, err := p.fetcher.GetAll(ctx, src+"/icon.png", progress.NoOp{}.Bar("", ""))
		if err != nil {
			corelog.Debug(corelog.Metadata, "no default icon for %s/%s: %s", repo.Name, collName, err)
			continue
		}
		if err := os.WriteFile(dst, body, 0644); err != nil {
			corelog.Warning(corelog.Metadata, "writing default icon for %s/%s: %s", repo.Name, collName, err)
		}
	}
}

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

// Package ops implements soar's user-facing operations: install,
// remove, update, use, search, query, list, info, run. It is the one
// place that wires every other package together; cmd/soar's cobra
// tree is a thin adapter over this package.
package ops

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/clearlinux/soar/internal/appconfig"
	"github.com/clearlinux/soar/internal/corelog"
	"github.com/clearlinux/soar/internal/corepath"
	"github.com/clearlinux/soar/internal/digest"
	"github.com/clearlinux/soar/internal/fetch"
	"github.com/clearlinux/soar/internal/install"
	"github.com/clearlinux/soar/internal/integrate"
	"github.com/clearlinux/soar/internal/metadata"
	"github.com/clearlinux/soar/internal/progress"
	"github.com/clearlinux/soar/internal/prompt"
	"github.com/clearlinux/soar/internal/store"
	"github.com/clearlinux/soar/internal/tracker"
	"github.com/pkg/errors"
)

// Context bundles the shared state every operation needs: the loaded
// config, resolved paths, package store, tracker, and the external
// collaborators (fetcher, selector, progress sink).
type Context struct {
	Config  *appconfig.Config
	Paths   *corepath.Paths
	Store   *store.PackageStore
	Tracker *tracker.Tracker
	Fetcher *fetch.Fetcher
	Sel     prompt.Selector
	Sink    progress.Sink
}

// NewContext loads the config at cfgPath, resolves paths, ensures the
// directory layout exists, and loads the merged package store from
// every configured repository.
func NewContext(ctx context.Context, cfgPath string, interactive, quiet bool) (*Context, error) {
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	paths, err := cfg.Paths()
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}

	fetcher := fetch.New(30 * time.Second)
	pipeline := metadata.New(paths, fetcher)
	ps, err := pipeline.Load(ctx, cfg.Repositories)
	if err != nil {
		return nil, err
	}

	var sel prompt.Selector = prompt.FirstWins{}
	if interactive {
		sel = prompt.Interactive{}
	}
	var sink progress.Sink = progress.NoOp{}
	if !quiet {
		sink = progress.NewMultiBar(os.Stderr)
	}

	return &Context{
		Config:  cfg,
		Paths:   paths,
		Store:   ps,
		Tracker: tracker.New(filepath.Join(paths.Installs, "latest")),
		Fetcher: fetcher,
		Sel:     sel,
		Sink:    sink,
	}, nil
}

// InstallOptions configures one Install call.
type InstallOptions struct {
	Yes      bool
	Force    bool
	Parallel bool
	Portable integrate.PortableOptions
}

func (c *Context) newEngine(opts InstallOptions) *install.Engine {
	return install.New(c.Paths, c.Fetcher, c.Tracker, c.Sink, install.Options{
		Parallel:      opts.Parallel || c.Config.ParallelEnabled(),
		ParallelLimit: c.Config.ParallelLimit,
		Force:         opts.Force,
		Yes:           opts.Yes,
		Portable:      opts.Portable,
	})
}

// Install resolves every query to one package and runs them through
// the install engine.
func (c *Context) Install(ctx context.Context, queries []string, opts InstallOptions) ([]install.Result, error) {
	if err := opts.Portable.Validate(); err != nil {
		return nil, err
	}
	resolved, err := c.resolveAll(queries, opts.Yes)
	if err != nil {
		return nil, err
	}

	results := c.newEngine(opts).InstallAll(ctx, resolved)
	for i, r := range results {
		if r.State == install.Done && !r.Skipped && resolved[i].Package.Note != "" {
			corelog.Info(corelog.Install, "%s: %s", r.FullName, resolved[i].Package.Note)
		}
	}
	return results, nil
}

func (c *Context) resolveAll(queries []string, yes bool) ([]store.ResolvedPackage, error) {
	out := make([]store.ResolvedPackage, 0, len(queries))
	for _, q := range queries {
		rp, err := c.Store.ResolveOne(store.ParseQuery(q), yes, c.Sel)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %q", q)
		}
		out = append(out, rp)
	}
	return out, nil
}

// Remove unlinks and unregisters every installed record a query
// selects. Matching runs against the tracker, not the catalog, so a
// package that has since vanished from its repository can still be
// removed. exact forbids family-widening: a bare name then only
// matches a record installed without a family.
func (c *Context) Remove(queries []string, exact bool) error {
	for _, q := range queries {
		query := store.ParseQuery(q)
		recs, err := c.Tracker.Match(query.Family, query.Name, query.Collection, exact)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			return errors.Wrapf(tracker.ErrNotInstalled, "%s", q)
		}
		for _, rec := range recs {
			if err := c.removeOne(rec); err != nil {
				return errors.Wrapf(err, "removing %q", q)
			}
		}
	}
	return nil
}

func (c *Context) removeOne(rec tracker.InstalledPackage) error {
	paths := install.DeriveRecordPaths(c.Paths, rec)
	if target, err := filepathReadlink(paths.SymlinkPath); err == nil && target == paths.InstallPath {
		_ = removeFile(paths.SymlinkPath)
	}
	integrate.RemoveLinks(c.Paths, rec.FullName, rec.BinaryName)
	if err := removeAll(paths.InstallDir); err != nil {
		return err
	}
	return c.Tracker.UnregisterRecord(rec)
}

// UpdateCandidate pairs a tracker record with the catalog entry it no
// longer matches.
type UpdateCandidate struct {
	Installed tracker.InstalledPackage
	Resolved  store.ResolvedPackage
}

// ListUpdates reports installed packages whose checksum no longer
// matches the catalog's bsum, without installing anything.
func (c *Context) ListUpdates() ([]UpdateCandidate, error) {
	all, err := c.Tracker.All()
	if err != nil {
		return nil, err
	}
	var out []UpdateCandidate
	for _, rec := range all {
		q := store.Query{Collection: rec.Collection, Family: rec.Family, Name: rec.Name}
		candidates := c.Store.GetPackages(q)
		for _, rp := range candidates {
			if rp.Repository == rec.Repository && rp.Package.Bsum != rec.Checksum {
				out = append(out, UpdateCandidate{Installed: rec, Resolved: rp})
			}
		}
	}
	return out, nil
}

// Update installs the named queries (or, if queries is empty, every
// package ListUpdates reports) with force enabled.
func (c *Context) Update(ctx context.Context, queries []string, opts InstallOptions) ([]install.Result, error) {
	opts.Force = true

	if len(queries) > 0 {
		return c.Install(ctx, queries, opts)
	}

	candidates, err := c.ListUpdates()
	if err != nil {
		return nil, err
	}
	resolved := make([]store.ResolvedPackage, len(candidates))
	for i, cand := range candidates {
		resolved[i] = cand.Resolved
	}
	return c.newEngine(opts).InstallAll(ctx, resolved), nil
}

// Use switches <bin>/<binary_name> to the resolved package's install
// path, installing it first if necessary.
func (c *Context) Use(ctx context.Context, query string) error {
	rp, err := c.Store.ResolveOne(store.ParseQuery(query), true, c.Sel)
	if err != nil {
		return err
	}

	rec, ok, err := c.Tracker.Lookup(rp)
	if err != nil {
		return err
	}
	if !ok {
		results, err := c.Install(ctx, []string{query}, InstallOptions{Yes: true})
		if err != nil {
			return err
		}
		if len(results) == 0 || results[0].State != install.Done {
			return errors.Errorf("installing %q before use", query)
		}
		rec, ok, err = c.Tracker.Lookup(rp)
		if err != nil || !ok {
			return errors.Errorf("package %q not found in tracker after install", query)
		}
	}

	paths := install.DerivePaths(c.Paths, rp, rec.Checksum)
	_ = removeFile(paths.SymlinkPath)
	return symlink(paths.InstallPath, paths.SymlinkPath)
}

// Search delegates to the package store's substring/exact scorer.
func (c *Context) Search(term string, opts store.SearchOptions) []store.SearchResult {
	if opts.Limit <= 0 {
		opts.Limit = c.Config.SearchLimit
	}
	return c.Store.Search(term, opts)
}

// Query resolves every candidate matching q, for the read-only "query"
// operation.
func (c *Context) Query(q string) []store.ResolvedPackage {
	return c.Store.GetPackages(store.ParseQuery(q))
}

// List presents every package in collection (or every collection when
// empty).
func (c *Context) List(collection string) []store.ResolvedPackage {
	return c.Store.List(collection)
}

// Info resolves q to exactly one package for a detailed read-only
// presentation.
func (c *Context) Info(q string) (store.ResolvedPackage, error) {
	return c.Store.ResolveOne(store.ParseQuery(q), true, c.Sel)
}

// Run ensures the resolved package's binary is cached under
// <cache>/<binary_name> (verifying but not registering it), then
// executes it with argv.
func (c *Context) Run(ctx context.Context, query string, argv []string) error {
	rp, err := c.Store.ResolveOne(store.ParseQuery(query), true, c.Sel)
	if err != nil {
		return err
	}

	cachedPath := filepath.Join(c.Paths.Cache, rp.Package.BinaryName)
	if !fileExists(cachedPath) {
		staging := cachedPath + ".part"
		if err := c.Fetcher.RangedDownload(ctx, rp.Package.DownloadURL, staging, c.Sink.Bar(rp.FullName("/"), rp.FullName("/"))); err != nil {
			return err
		}
		if !rp.Package.BsumIsNull() {
			ok, err := digest.Verify(staging, rp.Package.Bsum)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("checksum mismatch caching %s for run", rp.FullName("/"))
			}
		}
		if err := digest.Promote(staging, cachedPath); err != nil {
			return err
		}
		if err := chmodExecutable(cachedPath); err != nil {
			return err
		}
	}

	return execBinary(ctx, cachedPath, argv)
}

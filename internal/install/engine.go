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

package install

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/clearlinux/soar/internal/corelog"
	"github.com/clearlinux/soar/internal/corepath"
	"github.com/clearlinux/soar/internal/digest"
	"github.com/clearlinux/soar/internal/fetch"
	"github.com/clearlinux/soar/internal/integrate"
	"github.com/clearlinux/soar/internal/progress"
	"github.com/clearlinux/soar/internal/prompt"
	"github.com/clearlinux/soar/internal/store"
	"github.com/clearlinux/soar/internal/tracker"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// Options configures one Engine run.
type Options struct {
	Parallel      bool
	ParallelLimit int64
	Force         bool
	Yes           bool
	Portable      integrate.PortableOptions
}

// errAbortPackage is returned internally when the user explicitly
// chooses to delete a mismatched download rather than keep it.
var errAbortPackage = errors.New("install aborted: checksum mismatch, staged file deleted")

// Engine runs the install state machine across a batch of resolved
// packages, bounding concurrency with a counting semaphore.
type Engine struct {
	paths   *corepath.Paths
	fetcher *fetch.Fetcher
	track   *tracker.Tracker
	sink    progress.Sink
	sel     prompt.Selector
	opts    Options
}

// New builds an Engine. Its selector, consulted for ambiguous-ownership
// symlink prompts and checksum-mismatch keep/delete prompts, is
// prompt.FirstWins{} when opts.Yes is set and prompt.Interactive{}
// otherwise.
func New(paths *corepath.Paths, fetcher *fetch.Fetcher, track *tracker.Tracker, sink progress.Sink, opts Options) *Engine {
	if opts.ParallelLimit <= 0 {
		opts.ParallelLimit = 4
	}
	if !opts.Parallel {
		opts.ParallelLimit = 1
	}
	if sink == nil {
		sink = progress.NoOp{}
	}
	sel := prompt.Selector(prompt.FirstWins{})
	if !opts.Yes {
		sel = prompt.Interactive{}
	}
	return &Engine{paths: paths, fetcher: fetcher, track: track, sink: sink, sel: sel, opts: opts}
}

// InstallAll runs every ResolvedPackage through the state machine,
// skipping already-installed packages unless Force is set, bounded by
// ParallelLimit concurrent workers. Results are returned in input
// order.
func (e *Engine) InstallAll(ctx context.Context, pkgs []store.ResolvedPackage) []Result {
	sem := semaphore.NewWeighted(e.opts.ParallelLimit)
	results := make([]Result, len(pkgs))

	var wg sync.WaitGroup
	for i, r := range pkgs {
		i, r := i, r

		installed, err := e.track.IsInstalled(r)
		if err != nil {
			corelog.Warning(corelog.Install, "checking install state of %s: %s", r.FullName("/"), err)
		}
		if installed && !e.opts.Force {
			results[i] = Result{FullName: r.FullName("/"), State: Done, Skipped: true}
			corelog.Info(corelog.Install, "%s already installed, skipping", r.FullName("/"))
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{FullName: r.FullName("/"), State: Failed, Err: err}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = e.installOne(ctx, r)
		}()
	}
	wg.Wait()
	return results
}

// installOne drives a single package through Planned -> Downloading ->
// Verifying -> Promoting -> Integrating -> Registering -> Done,
// stopping at the first error and reporting which stage failed. A
// failed download leaves its staging file in place for a later
// resume.
func (e *Engine) installOne(ctx context.Context, r store.ResolvedPackage) Result {
	full := r.FullName("/")
	bar := e.sink.Bar(full, full)
	defer bar.Finish()

	state := Planned
	fail := func(err error) Result {
		corelog.Error(corelog.Install, "%s: failed at %s: %s", full, state, err)
		return Result{FullName: full, State: Failed, Err: errors.Wrapf(err, "installing %s (stage %s)", full, state)}
	}

	staging := StagingPathFor(e.paths, r)

	state = Downloading
	if err := e.fetcher.RangedDownload(ctx, r.Package.DownloadURL, staging, bar); err != nil {
		return fail(err)
	}

	state = Verifying
	checksum, err := e.verify(staging, r)
	if err != nil {
		return fail(err)
	}

	paths := DerivePaths(e.paths, r, checksum)

	state = Promoting
	if err := e.promote(staging, paths); err != nil {
		return fail(err)
	}

	state = Integrating
	if _, err := integrate.Run(ctx, e.paths, r, paths.InstallPath, e.fetcher); err != nil {
		// The binary is usable even when desktop/icon linking fails.
		corelog.Warning(corelog.Integrate, "%s: integration incomplete: %s", full, err)
	}

	if e.opts.Portable.Any() {
		if err := integrate.ApplyPortable(paths.InstallPath, r.Package.BinaryName, e.opts.Portable); err != nil {
			return fail(err)
		}
	}

	if err := e.manageSymlink(paths, r, checksum); err != nil {
		return fail(err)
	}

	state = Registering
	sizeBytes := fileSize(paths.InstallPath)
	if err := e.track.Register(r, checksum, sizeBytes, time.Now()); err != nil {
		return fail(err)
	}

	state = Done
	corelog.Info(corelog.Install, "%s installed at %s (%s)", full, paths.InstallPath, progress.FormatBytes(sizeBytes))
	return Result{FullName: full, State: Done}
}

// verify computes the staged file's checksum and compares it against
// the catalog's bsum. A null bsum warns and proceeds unverified.
// A mismatch prompts keep-or-delete unless Yes is set, in which case
// it warns and proceeds; an explicit "delete" choice removes the
// staging file and aborts this package only.
func (e *Engine) verify(staging string, r store.ResolvedPackage) (string, error) {
	sum, err := digest.HashFile(staging)
	if err != nil {
		return "", err
	}
	if r.Package.BsumIsNull() {
		corelog.Warning(corelog.Digest, "%s has no published checksum, installing unverified", r.FullName("/"))
		return sum, nil
	}
	if sum == r.Package.Bsum {
		return sum, nil
	}

	if e.opts.Yes {
		corelog.Warning(corelog.Digest, "%s checksum mismatch (expected %s, got %s), proceeding due to --yes", r.FullName("/"), r.Package.Bsum, sum)
		return sum, nil
	}

	keep, err := e.sel.Confirm(r.FullName("/")+": checksum mismatch, keep anyway?", false)
	if err != nil {
		return "", err
	}
	if keep {
		corelog.Warning(corelog.Digest, "%s checksum mismatch, keeping per user choice", r.FullName("/"))
		return sum, nil
	}
	_ = os.Remove(staging)
	return "", errAbortPackage
}

// promote creates the install directory and atomically moves the
// staged file into it, then tags it with the ownership xattr.
func (e *Engine) promote(staging string, paths Paths) error {
	if err := os.MkdirAll(paths.InstallDir, 0755); err != nil {
		return errors.Wrapf(err, "creating install directory %s", paths.InstallDir)
	}
	if err := digest.Promote(staging, paths.InstallPath); err != nil {
		return err
	}
	if err := os.Chmod(paths.InstallPath, 0755); err != nil {
		return errors.Wrapf(err, "marking %s executable", paths.InstallPath)
	}
	if err := digest.Tag(paths.InstallPath); err != nil {
		corelog.Warning(corelog.Digest, "tagging %s: %s (unsupported filesystem?)", paths.InstallPath, err)
	}
	return nil
}

// manageSymlink enforces the single-owner rule for the bin
// namespace. A preexisting symlink is resolved: if
// its target lives outside <packages>/ or lacks the soar ownership
// tag, it is refused untouched -- not ours. If its owner (by first-8
// checksum-prefix directory name) matches the package being
// installed, it is replaced silently. If the owner differs, the user
// is prompted (unless Yes is set).
func (e *Engine) manageSymlink(paths Paths, r store.ResolvedPackage, checksum string) error {
	target, err := os.Readlink(paths.SymlinkPath)
	if err != nil {
		if _, statErr := os.Lstat(paths.SymlinkPath); statErr == nil {
			return errors.Errorf("%s exists and is not a symlink, refusing to replace it", paths.SymlinkPath)
		}
		return e.linkSymlink(paths)
	}

	if target == paths.InstallPath {
		return nil
	}
	if !strings.HasPrefix(target, e.paths.Packages) || !digest.IsTagged(target) {
		corelog.Warning(corelog.Install, "%s is not managed by soar, leaving it in place", paths.SymlinkPath)
		return nil
	}

	if ownerPrefix(target) != checksum[:min(8, len(checksum))] {
		if !e.opts.Yes {
			replace, err := e.sel.Confirm(paths.SymlinkPath+" is owned by a different package, replace it?", false)
			if err != nil {
				return err
			}
			if !replace {
				corelog.Info(corelog.Install, "leaving %s pointed at the previous owner", paths.SymlinkPath)
				return nil
			}
		}
	}

	if err := os.Remove(paths.SymlinkPath); err != nil {
		return errors.Wrapf(err, "removing previous symlink %s", paths.SymlinkPath)
	}
	return e.linkSymlink(paths)
}

func (e *Engine) linkSymlink(paths Paths) error {
	if err := os.Symlink(paths.InstallPath, paths.SymlinkPath); err != nil {
		return errors.Wrapf(err, "linking %s to %s", paths.SymlinkPath, paths.InstallPath)
	}
	return nil
}

// ownerPrefix extracts the first-8-hex checksum prefix from an install
// path of the form "<packages>/<prefix>-<full_name>/<binary_name>".
func ownerPrefix(installPath string) string {
	dir := filepath.Base(filepath.Dir(installPath))
	if idx := strings.Index(dir, "-"); idx >= 0 {
		return dir[:idx]
	}
	return dir
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

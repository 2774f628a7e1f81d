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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clearlinux/soar/internal/corelog"
	"github.com/clearlinux/soar/internal/corepath"
	"github.com/clearlinux/soar/internal/fetch"
	"github.com/clearlinux/soar/internal/store"
	"github.com/pkg/errors"
)

// Result reports what, if anything, Run linked into the desktop
// environment.
type Result struct {
	Kind          Kind
	IconLinked    bool
	DesktopLinked bool
}

// Run classifies the artifact at installPath and, for AppImage and
// FlatImage kinds, extracts or fetches its icon and desktop file,
// post-processes both, and symlinks them into the XDG tree. Plain
// ELF and Unknown artifacts are a no-op success: soar always installs
// the binary regardless of what the integrator can do with it.
func Run(ctx context.Context, paths *corepath.Paths, r store.ResolvedPackage, installPath string, fetcher *fetch.Fetcher) (Result, error) {
	kind, err := Classify(installPath)
	if err != nil {
		return Result{}, errors.Wrapf(err, "classifying %s", installPath)
	}
	if kind == Unknown {
		corelog.Debug(corelog.Integrate, "%s is not an ELF artifact (looks like %s), nothing to integrate", installPath, sniffFile(installPath))
		return Result{Kind: kind}, nil
	}
	if kind == ELF {
		return Result{Kind: kind}, nil
	}

	assetsDir := installPath + ".assets"
	var assets extractedAppImage
	switch kind {
	case AppImage:
		assets, err = extractAppImage(installPath, assetsDir)
	case FlatImage:
		if err := os.MkdirAll(assetsDir, 0755); err != nil {
			return Result{Kind: kind}, errors.Wrapf(err, "creating assets directory %s", assetsDir)
		}
		assets, err = fetchPublishedAssets(ctx, fetcher, r.Package, assetsDir)
	}
	if err != nil {
		return Result{Kind: kind}, errors.Wrapf(err, "extracting %s assets", kind)
	}

	binaryName := r.Package.BinaryName
	execPath := filepath.Join(paths.Bin, binaryName)
	result := Result{Kind: kind}

	if assets.iconPath != "" {
		processedIcon := installPath + ".png"
		if err := installIcon(assets.iconPath, processedIcon); err != nil {
			corelog.Warning(corelog.Integrate, "processing icon for %s: %s", binaryName, err)
		} else if err := linkIcon(paths, processedIcon, binaryName); err != nil {
			corelog.Warning(corelog.Integrate, "linking icon for %s: %s", binaryName, err)
		} else {
			result.IconLinked = true
		}
	}

	if assets.desktopPath != "" {
		processedDesktop := installPath + ".desktop"
		if err := rewriteDesktopFile(assets.desktopPath, processedDesktop, binaryName, execPath); err != nil {
			corelog.Warning(corelog.Integrate, "processing desktop file for %s: %s", binaryName, err)
		} else if err := linkDesktop(paths, processedDesktop, r); err != nil {
			corelog.Warning(corelog.Integrate, "linking desktop file for %s: %s", binaryName, err)
		} else {
			result.DesktopLinked = true
		}
	}

	return result, nil
}

// linkIcon symlinks the processed icon into the XDG hicolor tree,
// refusing to clobber a foreign file.
func linkIcon(paths *corepath.Paths, processedIcon, binaryName string) error {
	size := iconSizeOf(processedIcon)
	dir := paths.XDGIconDir(size, size)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating icon directory %s", dir)
	}
	dst := filepath.Join(dir, binaryName+".png")
	return linkIntoPackages(paths, processedIcon, dst)
}

// linkDesktop symlinks the processed .desktop file into
// $XDG_DATA_HOME/applications.
func linkDesktop(paths *corepath.Paths, processedDesktop string, r store.ResolvedPackage) error {
	dir := paths.XDGApplicationsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating applications directory %s", dir)
	}
	name := fmt.Sprintf("%s-soar.desktop", strings.ReplaceAll(r.FullName("-"), "/", "-"))
	dst := filepath.Join(dir, name)
	return linkIntoPackages(paths, processedDesktop, dst)
}

// linkIntoPackages symlinks src at dst, refusing to replace any
// existing file whose target does not already live under
// paths.Packages -- that file was not created by soar.
func linkIntoPackages(paths *corepath.Paths, src, dst string) error {
	if target, err := os.Readlink(dst); err == nil {
		if !strings.HasPrefix(target, paths.Packages) {
			return errors.Errorf("refusing to replace %s: not owned by soar", dst)
		}
		if err := os.Remove(dst); err != nil {
			return errors.Wrapf(err, "removing stale link %s", dst)
		}
	} else if _, statErr := os.Lstat(dst); statErr == nil {
		return errors.Errorf("refusing to replace %s: not a symlink", dst)
	}
	return os.Symlink(src, dst)
}

// iconSizeOf reports the square dimension the icon at path was
// processed to. installIcon always writes a square PNG at one of
// supportedIconSizes, so callers needing the size just re-derive it
// from the file rather than threading an extra return value through
// Run's call chain.
func iconSizeOf(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return supportedIconSizes[0]
	}
	defer func() { _ = f.Close() }()
	cfg, err := decodePNGConfig(f)
	if err != nil {
		return supportedIconSizes[0]
	}
	return cfg
}

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

// Package install is the concurrent install engine: a bounded worker
// pool built around a counting semaphore, each worker running the
// Planned -> Downloading -> Verifying -> Promoting -> Integrating ->
// Registering -> Done state machine for one package.
package install

import (
	"path/filepath"

	"github.com/clearlinux/soar/internal/corepath"
	"github.com/clearlinux/soar/internal/store"
	"github.com/clearlinux/soar/internal/tracker"
)

// Paths are the derived (never stored) filesystem locations for one
// ResolvedPackage given its checksum.
type Paths struct {
	InstallDir  string
	InstallPath string
	StagingPath string
	SymlinkPath string
}

// DerivePaths computes InstallPaths for r once its checksum is known.
// Before the checksum is known (i.e. before the download completes),
// only StagingPath is meaningful -- see StagingPathFor.
func DerivePaths(p *corepath.Paths, r store.ResolvedPackage, checksum string) Paths {
	prefix := checksum
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	dirName := prefix + "-" + r.FullName("-")
	installDir := filepath.Join(p.Packages, dirName)
	return Paths{
		InstallDir:  installDir,
		InstallPath: filepath.Join(installDir, r.Package.BinaryName),
		StagingPath: StagingPathFor(p, r),
		SymlinkPath: filepath.Join(p.Bin, r.Package.BinaryName),
	}
}

// DeriveRecordPaths computes the same layout from a tracker record,
// for operations (remove, use) that start from what is installed
// rather than from the catalog.
func DeriveRecordPaths(p *corepath.Paths, rec tracker.InstalledPackage) Paths {
	prefix := rec.Checksum
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	installDir := filepath.Join(p.Packages, prefix+"-"+rec.FullName)
	return Paths{
		InstallDir:  installDir,
		InstallPath: filepath.Join(installDir, rec.BinaryName),
		StagingPath: filepath.Join(p.PackagesTmp, rec.FullName+".part"),
		SymlinkPath: filepath.Join(p.Bin, rec.BinaryName),
	}
}

// StagingPathFor computes the staging path for r, stable across
// retries of the same package so a resumed download finds its
// partial bytes.
func StagingPathFor(p *corepath.Paths, r store.ResolvedPackage) string {
	return filepath.Join(p.PackagesTmp, r.FullName("-")+".part")
}

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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/clearlinux/soar/internal/stringset"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/filesystem/squashfs"
	"github.com/pkg/errors"
)

// squashfsMagic is the little-endian "hsqs" superblock signature.
var squashfsMagic = []byte{0x68, 0x73, 0x71, 0x73}

const squashfsScanChunk = 1 << 20

// extractedAppImage is everything pulled out of an AppImage's embedded
// squashfs payload that integration needs downstream.
type extractedAppImage struct {
	desktopPath string // path to the extracted .desktop file, if any
	iconPath    string // path to the extracted .DirIcon, if any
}

// extractAppImage locates the embedded squashfs image inside the
// AppImage ELF wrapper at path and pulls its top-level .desktop and
// .DirIcon entries into destDir. Symlinked entries are resolved
// in-archive, with a visited set bounding the walk so a cyclic image
// errors instead of looping.
func extractAppImage(path, destDir string) (extractedAppImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return extractedAppImage{}, errors.Wrapf(err, "opening %s", path)
	}
	defer func() { _ = f.Close() }()

	offset, err := findSquashfsOffset(f)
	if err != nil {
		return extractedAppImage{}, err
	}

	fi, err := f.Stat()
	if err != nil {
		return extractedAppImage{}, errors.Wrapf(err, "statting %s", path)
	}

	fsys, err := squashfs.Read(f, fi.Size()-offset, offset, 0)
	if err != nil {
		return extractedAppImage{}, errors.Wrapf(err, "reading embedded squashfs in %s", path)
	}

	entries, err := fsys.ReadDir("/")
	if err != nil {
		return extractedAppImage{}, errors.Wrap(err, "reading squashfs root directory")
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return extractedAppImage{}, errors.Wrapf(err, "creating extraction directory %s", destDir)
	}

	var out extractedAppImage
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case name == ".DirIcon":
			dst := filepath.Join(destDir, ".DirIcon")
			if err := extractSquashfsFile(fsys, "/"+name, entry, dst, stringset.New()); err == nil {
				out.iconPath = dst
			}
		case strings.HasSuffix(name, ".desktop"):
			dst := filepath.Join(destDir, name)
			if err := extractSquashfsFile(fsys, "/"+name, entry, dst, stringset.New()); err == nil {
				out.desktopPath = dst
			}
		}
	}
	return out, nil
}

// readlinker is satisfied by squashfs directory entries that are
// symlinks and can report their in-image target.
type readlinker interface {
	Readlink() (string, error)
}

// extractSquashfsFile copies one entry from fsys to dst, following
// in-image symlinks. Every path touched on the way goes into
// visited; revisiting one means the image links back on itself.
func extractSquashfsFile(fsys filesystem.FileSystem, srcPath string, info os.FileInfo, dst string, visited stringset.Set) error {
	for {
		if visited.Contains(srcPath) {
			return errors.Errorf("symlink cycle detected extracting %s", srcPath)
		}
		visited.Add(srcPath)

		if info == nil || info.Mode()&os.ModeSymlink == 0 {
			break
		}
		rl, ok := info.Sys().(readlinker)
		if !ok {
			if rl, ok = info.(readlinker); !ok {
				break
			}
		}
		target, err := rl.Readlink()
		if err != nil {
			return errors.Wrapf(err, "reading symlink %s in squashfs image", srcPath)
		}
		if !strings.HasPrefix(target, "/") {
			target = filepath.Join(filepath.Dir(srcPath), target)
		}
		srcPath = filepath.Clean(target)
		info, err = statSquashfsPath(fsys, srcPath)
		if err != nil {
			return err
		}
	}

	src, err := fsys.OpenFile(srcPath, os.O_RDONLY)
	if err != nil {
		return errors.Wrapf(err, "opening %s in squashfs image", srcPath)
	}
	defer func() { _ = src.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dst)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, src); err != nil {
		return errors.Wrapf(err, "extracting %s", srcPath)
	}
	return nil
}

// statSquashfsPath looks path up through its parent directory's
// listing, since the squashfs driver exposes per-entry metadata only
// via ReadDir.
func statSquashfsPath(fsys filesystem.FileSystem, path string) (os.FileInfo, error) {
	dir := filepath.Dir(path)
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading squashfs directory %s", dir)
	}
	base := filepath.Base(path)
	for _, e := range entries {
		if e.Name() == base {
			return e, nil
		}
	}
	return nil, errors.Errorf("%s not found in squashfs image", path)
}

// findSquashfsOffset scans f for the squashfs superblock magic,
// chunk-by-chunk, since the AppImage runtime stub that precedes it
// varies in size across builds.
func findSquashfsOffset(f *os.File) (int64, error) {
	buf := make([]byte, squashfsScanChunk)
	var base int64
	for {
		n, err := f.ReadAt(buf, base)
		if n > 0 {
			if idx := bytes.Index(buf[:n], squashfsMagic); idx >= 0 {
				return base + int64(idx), nil
			}
		}
		if err == io.EOF || n == 0 {
			break
		}
		if err != nil && err != io.EOF {
			return 0, errors.Wrap(err, "scanning for squashfs superblock")
		}
		base += int64(n) - int64(len(squashfsMagic))
		if base < 0 {
			base = 0
		}
	}
	return 0, errors.New("no embedded squashfs image found")
}

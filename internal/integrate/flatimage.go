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
	"os"
	"path/filepath"
	"strings"

	"github.com/clearlinux/soar/internal/fetch"
	"github.com/clearlinux/soar/internal/progress"
	"github.com/clearlinux/soar/internal/store"
	"github.com/pkg/errors"
)

// fetchPublishedAssets downloads the icon and desktop files FlatImage
// packages publish alongside the binary, since their payload is never
// opened. The catalog's icon field is authoritative for the icon URL;
// a sibling of the download URL is the fallback when the catalog has
// none. The desktop file is always published as a sibling.
func fetchPublishedAssets(ctx context.Context, fetcher *fetch.Fetcher, pkg *store.Package, destDir string) (extractedAppImage, error) {
	base := strings.TrimSuffix(pkg.DownloadURL, filepath.Ext(pkg.DownloadURL))
	iconURL := pkg.IconURL
	if iconURL == "" {
		iconURL = base + ".png"
	}

	var out extractedAppImage
	if body, err := fetcher.GetAll(ctx, iconURL, progress.NoOp{}.Bar("", "")); err == nil {
		dst := filepath.Join(destDir, ".DirIcon")
		if err := os.WriteFile(dst, body, 0644); err == nil {
			out.iconPath = dst
		}
	}
	if body, err := fetcher.GetAll(ctx, base+".desktop", progress.NoOp{}.Bar("", "")); err == nil {
		dst := filepath.Join(destDir, "published.desktop")
		if err := os.WriteFile(dst, body, 0644); err == nil {
			out.desktopPath = dst
		}
	}

	if out.iconPath == "" && out.desktopPath == "" {
		return out, errors.Errorf("no published icon or desktop file found for %s", pkg.FullName("/"))
	}
	return out, nil
}

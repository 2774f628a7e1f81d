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
	"os"
	"path/filepath"
	"strings"

	"github.com/clearlinux/soar/internal/corelog"
	"github.com/clearlinux/soar/internal/corepath"
)

// RemoveLinks undoes the XDG linking a previous Run performed for a
// removed package: the applications entry and any hicolor icon link
// for binaryName. Only symlinks pointing back into the package store
// are touched; anything else was not created by soar and is left
// alone.
func RemoveLinks(paths *corepath.Paths, fullName, binaryName string) {
	desktop := filepath.Join(paths.XDGApplicationsDir(), fullName+"-soar.desktop")
	removeOwnedLink(paths, desktop)

	for _, size := range supportedIconSizes {
		icon := filepath.Join(paths.XDGIconDir(size, size), binaryName+".png")
		removeOwnedLink(paths, icon)
	}
}

func removeOwnedLink(paths *corepath.Paths, link string) {
	target, err := os.Readlink(link)
	if err != nil {
		return
	}
	if !strings.HasPrefix(target, paths.Packages) {
		return
	}
	if err := os.Remove(link); err != nil {
		corelog.Warning(corelog.Integrate, "removing %s: %s", link, err)
	}
}

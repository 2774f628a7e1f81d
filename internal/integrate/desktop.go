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
	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// desktopSection is the standard freedesktop .desktop group name.
const desktopSection = "Desktop Entry"

// rewriteDesktopFile loads a .desktop file extracted from a payload
// and sets Icon= to iconPath (Run passes the binary name, which is
// what the hicolor icon link is named after) and Exec= to execPath,
// rewriting TryExec= to execPath only when the file already has one.
// .desktop's ini grammar is better served by a real parser than a
// bespoke line scanner.
func rewriteDesktopFile(srcPath, dstPath, iconPath, execPath string) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
		AllowShadows:        true,
	}, srcPath)
	if err != nil {
		return errors.Wrapf(err, "parsing desktop file %s", srcPath)
	}

	sec := cfg.Section(desktopSection)
	if iconPath != "" {
		sec.Key("Icon").SetValue(iconPath)
	}
	if execPath != "" {
		sec.Key("Exec").SetValue(execPath)
		if sec.HasKey("TryExec") {
			sec.Key("TryExec").SetValue(execPath)
		}
	}
	stripComments(cfg)

	if err := cfg.SaveTo(dstPath); err != nil {
		return errors.Wrapf(err, "writing desktop file %s", dstPath)
	}
	return nil
}

// stripComments clears every section and key comment so the
// rewritten file carries none of the payload's annotations.
func stripComments(cfg *ini.File) {
	for _, sec := range cfg.Sections() {
		sec.Comment = ""
		for _, key := range sec.Keys() {
			key.Comment = ""
		}
	}
}

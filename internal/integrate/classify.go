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

// Package integrate classifies installed artifacts and wires them
// into the desktop environment: AppImage payload extraction,
// FlatImage published-asset fetching, icon post-processing, and XDG
// linking. Classification matches exact magic bytes for the three
// recognized artifact kinds, with github.com/h2non/filetype as a
// diagnostic fallback for anything none of the signatures match.
package integrate

import (
	"bytes"
	"os"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"
)

// Kind is the recognized artifact type of an installed binary.
type Kind int

const (
	Unknown Kind = iota
	ELF
	AppImage
	FlatImage
)

func (k Kind) String() string {
	switch k {
	case ELF:
		return "elf"
	case AppImage:
		return "appimage"
	case FlatImage:
		return "flatimage"
	default:
		return "unknown"
	}
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// appImageMagic and flatImageMagic sit at bytes 8..12 of an ELF
// prefix, the AppImage/FlatImage type discriminator.
var appImageMagic = []byte{'A', 'I', 0x02, 0x00}
var flatImageMagic = []byte{'F', 'I', 0x01, 0x00}

const classifyMagicOffset = 8
const classifyMagicLen = 4

// Classify reads the first 12 bytes of path and matches them against
// the recognized signatures. Anything that isn't an ELF prefix is
// Unknown; sniff can name what it looks like for logging, but never
// upgrades the classification.
func Classify(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, errors.Wrapf(err, "opening %s to classify", path)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, classifyMagicOffset+classifyMagicLen)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return Unknown, errors.Wrapf(err, "reading %s header", path)
	}
	head = head[:n]

	if len(head) < 4 || !bytes.Equal(head[:4], elfMagic) {
		return Unknown, nil
	}
	if len(head) < classifyMagicOffset+classifyMagicLen {
		return ELF, nil
	}

	disc := head[classifyMagicOffset : classifyMagicOffset+classifyMagicLen]
	switch {
	case bytes.Equal(disc, appImageMagic):
		return AppImage, nil
	case bytes.Equal(disc, flatImageMagic):
		return FlatImage, nil
	default:
		return ELF, nil
	}
}

// sniff is used by callers that want a human-readable guess at an
// Unknown artifact's real content type for diagnostics only.
func sniff(head []byte) string {
	kind, err := filetype.Match(head)
	if err != nil || kind.Extension == "" {
		return "unknown"
	}
	return kind.Extension
}

// sniffFile reads enough of path for filetype's magic table and
// reports its best guess.
func sniffFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "unknown"
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 262)
	n, _ := f.Read(head)
	return sniff(head[:n])
}

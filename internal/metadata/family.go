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

import "strings"

// archPlatformTokens are path segments that can never be a family,
// even though they occupy the second-to-last position of a
// download_url. Kept as a package-level var, not a const block, so
// new architecture names can be added without touching DeriveFamily
// itself.
var archPlatformTokens = map[string]bool{
	"x86_64":  true,
	"aarch64": true,
	"arm64":   true,
	"amd64":   true,
	"i686":    true,
	"linux":   true,
	"any":     true,
	"noarch":  true,
}

// DeriveFamily extracts the family sub-namespace from a download
// URL's path: the second-to-last segment, unless that segment is an
// architecture/platform token. Returns "" when there is no
// such segment or it is a reserved token.
func DeriveFamily(downloadURL string) string {
	path := downloadURL
	if idx := strings.Index(path, "://"); idx >= 0 {
		path = path[idx+3:]
	}
	if idx := strings.Index(path, "/"); idx >= 0 {
		path = path[idx:]
	} else {
		return ""
	}

	segments := splitNonEmpty(path, '/')
	if len(segments) < 2 {
		return ""
	}

	candidate := segments[len(segments)-2]
	if archPlatformTokens[strings.ToLower(candidate)] {
		return ""
	}
	return candidate
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

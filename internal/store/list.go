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

package store

import "sort"

// List enumerates the full catalog, optionally filtered by
// collection, sorted by (collection, full name).
func (s *PackageStore) List(collection string) []ResolvedPackage {
	var out []ResolvedPackage
	for _, repoName := range s.Order {
		repo := s.Repositories[repoName]
		for collName, coll := range repo {
			if collection != "" && collName != collection {
				continue
			}
			for _, variants := range coll {
				for _, pkg := range variants {
					out = append(out, ResolvedPackage{Repository: repoName, Collection: collName, Package: pkg})
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Collection != out[j].Collection {
			return out[i].Collection < out[j].Collection
		}
		return out[i].FullName("-") < out[j].FullName("-")
	})
	return out
}

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

import (
	"sort"
	"strings"
)

// SearchResult pairs a resolved package with its match score.
type SearchResult struct {
	Package ResolvedPackage
	Score   int
	order   int
}

// SearchOptions controls a Search call.
type SearchOptions struct {
	CaseSensitive bool
	// Category and Provides, when non-empty, are applied as exact
	// (Category) / membership (Provides) filters after scoring.
	Category string
	Provides string
	Limit    int
}

// Search scores every catalog package against term: exact match
// scores 2, substring match scores 1, everything else is excluded.
// Results are sorted by descending score, then by configured
// repository order, collection name, package name and the catalog
// order of each name's variants.
func (s *PackageStore) Search(term string, opts SearchOptions) []SearchResult {
	needle := term
	if !opts.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	var results []SearchResult
	order := 0
	for _, repoName := range s.Order {
		repo := s.Repositories[repoName]
		collNames := make([]string, 0, len(repo))
		for collName := range repo {
			collNames = append(collNames, collName)
		}
		sort.Strings(collNames)
		for _, collName := range collNames {
			coll := repo[collName]
			names := make([]string, 0, len(coll))
			for name := range coll {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				variants := coll[name]
				hay := name
				if !opts.CaseSensitive {
					hay = strings.ToLower(hay)
				}

				var score int
				switch {
				case hay == needle:
					score = 2
				case strings.Contains(hay, needle):
					score = 1
				default:
					continue
				}

				for _, pkg := range variants {
					if opts.Category != "" && !strings.EqualFold(pkg.Category, opts.Category) {
						continue
					}
					if opts.Provides != "" && !containsFold(pkg.ProvidesList(), opts.Provides) {
						continue
					}
					results = append(results, SearchResult{
						Package: ResolvedPackage{Repository: repoName, Collection: collName, Package: pkg},
						Score:   score,
						order:   order,
					})
					order++
				}
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].order < results[j].order
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

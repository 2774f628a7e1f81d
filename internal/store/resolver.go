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
	"fmt"
	"sort"

	"github.com/clearlinux/soar/internal/prompt"
	"github.com/pkg/errors"
)

// ErrNoSuchPackage is returned when a query matches nothing.
var ErrNoSuchPackage = errors.New("no such package")

// ErrInvalidCollection is returned when a query carries a collection
// suffix no configured repository exposes. The CLI maps it to its own
// distinct exit code.
var ErrInvalidCollection = errors.New("no such collection")

// HasCollection reports whether any repository exposes collection.
func (s *PackageStore) HasCollection(collection string) bool {
	for _, repo := range s.Repositories {
		if _, ok := repo[collection]; ok {
			return true
		}
	}
	return false
}

// GetPackages performs a linear scan across every configured
// repository and collection, filtering by name equality, then by
// collection if specified, then by family if specified. Candidates
// come in configured repository order, then collection name, then the
// catalog order of each name's variants, so repeated queries present
// candidates stably.
func (s *PackageStore) GetPackages(q Query) []ResolvedPackage {
	var out []ResolvedPackage
	for _, repoName := range s.Order {
		repo := s.Repositories[repoName]
		collNames := make([]string, 0, len(repo))
		for collName := range repo {
			collNames = append(collNames, collName)
		}
		sort.Strings(collNames)
		for _, collName := range collNames {
			coll := repo[collName]
			if q.Collection != "" && collName != q.Collection {
				continue
			}
			variants, ok := coll[q.Name]
			if !ok {
				continue
			}
			for _, pkg := range variants {
				if q.Family != "" && pkg.Family != q.Family {
					continue
				}
				out = append(out, ResolvedPackage{Repository: repoName, Collection: collName, Package: pkg})
			}
		}
	}
	return out
}

// ResolveOne resolves a query to exactly one ResolvedPackage. If
// there is a single candidate it is returned directly; with multiple
// candidates, yes picks the first, otherwise sel is consulted.
func (s *PackageStore) ResolveOne(q Query, yes bool, sel prompt.Selector) (ResolvedPackage, error) {
	if q.Collection != "" && !s.HasCollection(q.Collection) {
		return ResolvedPackage{}, errors.Wrapf(ErrInvalidCollection, "collection %q in query %q", q.Collection, q.String())
	}

	candidates := s.GetPackages(q)
	switch len(candidates) {
	case 0:
		return ResolvedPackage{}, errors.Wrapf(ErrNoSuchPackage, "query %q", q.String())
	case 1:
		return candidates[0], nil
	}

	if yes {
		return candidates[0], nil
	}

	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = fmt.Sprintf("%s/%s#%s (%s)", c.Package.Family, c.Package.Name, c.Collection, c.Package.Version)
	}
	idx, err := sel.Choose(fmt.Sprintf("multiple packages match %q, pick one", q.String()), labels)
	if err != nil {
		return ResolvedPackage{}, errors.Wrap(err, "resolving ambiguous query")
	}
	return candidates[idx], nil
}

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

// Package stringset implements a small set collection of strings,
// used where a walk needs to remember which paths it has already
// touched.
package stringset

import "sort"

// Set represents a set collection of strings.
type Set map[string]struct{}

// New returns a new Set holding values.
func New(values ...string) Set {
	s := make(Set, len(values))
	s.Add(values...)
	return s
}

// Add adds one or more strings to the set.
func (s Set) Add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

// Contains checks if the set contains value.
func (s Set) Contains(value string) bool {
	_, ok := s[value]
	return ok
}

// Sorted returns the set's strings in ascending order.
func (s Set) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

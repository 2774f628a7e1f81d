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

import "strings"

// Query is a parsed "[family/]name[#collection]" user request. All
// three fields are case-insensitive; Name is required. An empty
// Collection or Family broadens the match.
type Query struct {
	Family     string
	Name       string
	Collection string
}

// ParseQuery splits on "#" from the right for the collection suffix,
// then on "/" from the left for the family prefix. An empty
// collection string after "#" is treated the same as "unspecified".
func ParseQuery(s string) Query {
	rest := s

	var collection string
	if idx := strings.LastIndex(rest, "#"); idx >= 0 {
		collection = rest[idx+1:]
		rest = rest[:idx]
	}

	var family string
	if idx := strings.Index(rest, "/"); idx >= 0 {
		family = rest[:idx]
		rest = rest[idx+1:]
	}

	return Query{
		Family:     strings.ToLower(family),
		Name:       strings.ToLower(rest),
		Collection: strings.ToLower(collection),
	}
}

// String serializes the query back to "[family/]name[#collection]",
// the inverse of ParseQuery.
func (q Query) String() string {
	var b strings.Builder
	if q.Family != "" {
		b.WriteString(q.Family)
		b.WriteByte('/')
	}
	b.WriteString(q.Name)
	if q.Collection != "" {
		b.WriteByte('#')
		b.WriteString(q.Collection)
	}
	return b.String()
}

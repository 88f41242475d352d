// Copyright 2025 Dolthub, Inc.
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

// Package filter implements the name selection predicate used to restrict
// which tables and columns participate in a conversion run.
package filter

import "path"

// NameFilter is a set of name patterns. An empty filter selects every name.
// Patterns use path.Match syntax, so "Btl*" selects every name with the
// prefix "Btl" while a pattern without metacharacters is an exact match.
type NameFilter struct {
	patterns []string
}

// NewNameFilter creates a NameFilter from the given patterns.
func NewNameFilter(patterns ...string) *NameFilter {
	return &NameFilter{patterns: patterns}
}

// Empty reports whether the filter has no patterns and therefore selects
// every name.
func (f *NameFilter) Empty() bool {
	return len(f.patterns) == 0
}

// Contains reports whether the filter selects the given name.
func (f *NameFilter) Contains(name string) bool {
	if len(f.patterns) == 0 {
		return true
	}
	for _, p := range f.patterns {
		if p == name {
			return true
		}
		if matched, err := path.Match(p, name); err == nil && matched {
			return true
		}
	}
	return false
}

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

package bdat

import (
	"fmt"
	"strconv"
	"strings"
)

// Label identifies a table or column. Modern BDAT files store identifiers as
// 32-bit Murmur3 hashes; a Label remembers whether it originated as a hash
// even after the original name has been recovered, so that a round trip can
// re-encode the exact original form.
type Label struct {
	name   string
	hash   uint32
	hashed bool
}

// NameLabel returns a plain, unhashed label.
func NameLabel(name string) Label {
	return Label{name: name}
}

// HashLabel returns a hashed label whose original name is unknown.
func HashLabel(hash uint32) Label {
	return Label{hash: hash, hashed: true}
}

// ResolvedLabel returns a hashed label whose original name has been recovered.
func ResolvedLabel(name string, hash uint32) Label {
	return Label{name: name, hash: hash, hashed: true}
}

// ParseLabel is the inverse of FileString. A bracketed or bare 8-digit hex
// string is read back as a raw hash when hashed is true; anything else becomes
// a resolved hashed label (re-hashing the name) or a plain name label.
func ParseLabel(s string, hashed bool) Label {
	if h, ok := parseHexHash(strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")); ok && (hashed || strings.HasPrefix(s, "<")) {
		return HashLabel(h)
	}
	if hashed {
		return ResolvedLabel(s, HashName(s))
	}
	return NameLabel(s)
}

func parseHexHash(s string) (uint32, bool) {
	if len(s) != 8 {
		return 0, false
	}
	h, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(h), true
}

// IsHashed reports whether the label originated as a hash.
func (l Label) IsHashed() bool {
	return l.hashed
}

// Resolved reports whether a displayable name is known for the label.
func (l Label) Resolved() bool {
	return l.name != ""
}

// Name returns the label's name, which is empty for an unresolved hash.
func (l Label) Name() string {
	return l.name
}

// Hash returns the label's 32-bit hash. For a resolved label this is the hash
// of the recovered name; for an unhashed label it is computed on demand.
func (l Label) Hash() uint32 {
	if l.hashed {
		return l.hash
	}
	return HashName(l.name)
}

// Resolve returns a copy of the label with the given recovered name. The
// hashed origin is preserved.
func (l Label) Resolve(name string) Label {
	if !l.hashed {
		return l
	}
	return Label{name: name, hash: l.hash, hashed: true}
}

// String renders the label for display: the name when known, else the hash in
// angle brackets.
func (l Label) String() string {
	if l.name != "" {
		return l.name
	}
	if l.hashed {
		return fmt.Sprintf("<%08x>", l.hash)
	}
	return ""
}

// FileString renders the label for use in file and field names: the name when
// known, else the bare hex hash without brackets.
func (l Label) FileString() string {
	if l.name != "" {
		return l.name
	}
	if l.hashed {
		return fmt.Sprintf("%08x", l.hash)
	}
	return ""
}

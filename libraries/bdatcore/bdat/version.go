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
	"encoding/json"
	"fmt"
)

// Version identifies the binary format generation of a BDAT file.
type Version uint8

const (
	VersionLegacy Version = 1
	VersionModern Version = 2
)

// Known reports whether v is a format generation this package understands.
func (v Version) Known() bool {
	return v == VersionLegacy || v == VersionModern
}

// LabelsHashed reports whether the format stores identifiers as name hashes.
func (v Version) LabelsHashed() bool {
	return v == VersionModern
}

func (v Version) String() string {
	switch v {
	case VersionLegacy:
		return "legacy"
	case VersionModern:
		return "modern"
	}
	return fmt.Sprintf("unknown(%d)", uint8(v))
}

// ParseVersion parses the textual form used in schema sidecars.
func ParseVersion(s string) (Version, error) {
	switch s {
	case "legacy":
		return VersionLegacy, nil
	case "modern":
		return VersionModern, nil
	}
	return 0, fmt.Errorf("unknown format version %q", s)
}

func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVersion(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

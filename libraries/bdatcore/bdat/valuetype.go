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
	"strings"
)

// BaseType enumerates the scalar kinds a cell may hold.
type BaseType uint8

const (
	UnknownBase BaseType = iota
	UInt8
	UInt16
	UInt32
	Int8
	Int16
	Int32
	Float32
	String
	HashRef
)

var baseTypeNames = map[BaseType]string{
	UInt8:   "uint8",
	UInt16:  "uint16",
	UInt32:  "uint32",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Float32: "float32",
	String:  "string",
	HashRef: "hashref",
}

func (b BaseType) String() string {
	if s, ok := baseTypeNames[b]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", uint8(b))
}

// ValueType is the declared type of a column: a base scalar kind, optionally
// an array of that kind.
type ValueType struct {
	Base    BaseType
	IsArray bool
}

// Scalar returns the ValueType for a scalar of the given base kind.
func Scalar(b BaseType) ValueType {
	return ValueType{Base: b}
}

// ArrayOf returns the ValueType for an array of the given base kind.
func ArrayOf(b BaseType) ValueType {
	return ValueType{Base: b, IsArray: true}
}

// ParseValueType parses the textual form of a ValueType, e.g. "int32" or
// "int32[]".
func ParseValueType(s string) (ValueType, error) {
	isArray := strings.HasSuffix(s, "[]")
	base := strings.TrimSuffix(s, "[]")
	for b, name := range baseTypeNames {
		if name == base {
			return ValueType{Base: b, IsArray: isArray}, nil
		}
	}
	return ValueType{}, fmt.Errorf("unknown value type %q", s)
}

func (t ValueType) String() string {
	if t.IsArray {
		return t.Base.String() + "[]"
	}
	return t.Base.String()
}

func (t ValueType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ValueType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseValueType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

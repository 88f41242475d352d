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

import "fmt"

// Value is a single cell value. The runtime kind must match the declared
// ValueType of the cell's column:
//
//	uint8 uint16 uint32 int8 int16 int32 float32 string Label
//
// for scalars, and the corresponding element-typed slice for arrays.
type Value = interface{}

// ValidateValue checks that v's runtime kind matches the declared type.
func (t ValueType) ValidateValue(v Value) error {
	if t.IsArray {
		ok := false
		switch t.Base {
		case UInt8:
			_, ok = v.([]uint8)
		case UInt16:
			_, ok = v.([]uint16)
		case UInt32:
			_, ok = v.([]uint32)
		case Int8:
			_, ok = v.([]int8)
		case Int16:
			_, ok = v.([]int16)
		case Int32:
			_, ok = v.([]int32)
		case Float32:
			_, ok = v.([]float32)
		case String:
			_, ok = v.([]string)
		case HashRef:
			_, ok = v.([]Label)
		}
		if !ok {
			return fmt.Errorf("value %v (%T) does not match declared type %s", v, v, t)
		}
		return nil
	}

	ok := false
	switch t.Base {
	case UInt8:
		_, ok = v.(uint8)
	case UInt16:
		_, ok = v.(uint16)
	case UInt32:
		_, ok = v.(uint32)
	case Int8:
		_, ok = v.(int8)
	case Int16:
		_, ok = v.(int16)
	case Int32:
		_, ok = v.(int32)
	case Float32:
		_, ok = v.(float32)
	case String:
		_, ok = v.(string)
	case HashRef:
		_, ok = v.(Label)
	}
	if !ok {
		return fmt.Errorf("value %v (%T) does not match declared type %s", v, v, t)
	}
	return nil
}

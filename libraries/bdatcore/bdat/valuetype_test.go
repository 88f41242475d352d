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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValueType(t *testing.T) {
	tests := []struct {
		in       string
		expected ValueType
	}{
		{"uint8", Scalar(UInt8)},
		{"int32", Scalar(Int32)},
		{"float32", Scalar(Float32)},
		{"string", Scalar(String)},
		{"hashref", Scalar(HashRef)},
		{"int32[]", ArrayOf(Int32)},
		{"string[]", ArrayOf(String)},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			vt, err := ParseValueType(test.in)
			require.NoError(t, err)
			assert.Equal(t, test.expected, vt)
			assert.Equal(t, test.in, vt.String())
		})
	}

	_, err := ParseValueType("int64")
	assert.Error(t, err)
	_, err = ParseValueType("")
	assert.Error(t, err)
}

func TestValueTypeJSON(t *testing.T) {
	data, err := json.Marshal(ArrayOf(Float32))
	require.NoError(t, err)
	assert.Equal(t, `"float32[]"`, string(data))

	var vt ValueType
	require.NoError(t, json.Unmarshal([]byte(`"hashref"`), &vt))
	assert.Equal(t, Scalar(HashRef), vt)

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &vt))
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, Scalar(Int32).ValidateValue(int32(7)))
	assert.NoError(t, Scalar(String).ValidateValue("Slime"))
	assert.NoError(t, Scalar(HashRef).ValidateValue(NameLabel("x")))
	assert.NoError(t, ArrayOf(UInt16).ValidateValue([]uint16{1, 2}))

	assert.Error(t, Scalar(Int32).ValidateValue(int64(7)))
	assert.Error(t, Scalar(UInt8).ValidateValue("7"))
	assert.Error(t, ArrayOf(Int32).ValidateValue(int32(7)))
	assert.Error(t, ArrayOf(String).ValidateValue([]int32{1}))
}

func TestTableValidate(t *testing.T) {
	name := NameLabel("Enemy")
	tbl := &Table{
		Name: &name,
		Columns: []ColumnDef{
			{Label: NameLabel("id"), Type: Scalar(Int32)},
			{Label: NameLabel("name"), Type: Scalar(String)},
		},
		Rows: []Row{{ID: 1, Cells: []Value{int32(7), "Slime"}}},
	}
	require.NoError(t, tbl.Validate())

	tbl.Rows = append(tbl.Rows, Row{ID: 2, Cells: []Value{int32(8)}})
	assert.Error(t, tbl.Validate())

	tbl.Rows = []Row{{ID: 1, Cells: []Value{"7", "Slime"}}}
	assert.Error(t, tbl.Validate())
}

func TestColumnIndex(t *testing.T) {
	tbl := &Table{
		Columns: []ColumnDef{
			{Label: NameLabel("id"), Type: Scalar(Int32)},
			{Label: HashLabel(0xa1b2c3d4), Type: Scalar(String)},
		},
	}

	assert.Equal(t, 0, tbl.ColumnIndex("id"))
	assert.Equal(t, 1, tbl.ColumnIndex("<a1b2c3d4>"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
}

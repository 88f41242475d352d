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

package codec

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
)

func allTypesFile() *File {
	name := bdat.NameLabel("AllTypes")
	hashed := bdat.HashLabel(0xa1b2c3d4)
	return &File{
		Version: bdat.VersionModern,
		Tables: []bdat.Table{
			{
				Name: &name,
				Columns: []bdat.ColumnDef{
					{Label: bdat.NameLabel("u8"), Type: bdat.Scalar(bdat.UInt8)},
					{Label: bdat.NameLabel("u16"), Type: bdat.Scalar(bdat.UInt16)},
					{Label: bdat.NameLabel("u32"), Type: bdat.Scalar(bdat.UInt32)},
					{Label: bdat.NameLabel("i8"), Type: bdat.Scalar(bdat.Int8)},
					{Label: bdat.NameLabel("i16"), Type: bdat.Scalar(bdat.Int16)},
					{Label: bdat.NameLabel("i32"), Type: bdat.Scalar(bdat.Int32)},
					{Label: bdat.NameLabel("f32"), Type: bdat.Scalar(bdat.Float32)},
					{Label: bdat.NameLabel("str"), Type: bdat.Scalar(bdat.String)},
					{Label: bdat.HashLabel(0x0badf00d), Type: bdat.Scalar(bdat.HashRef)},
					{Label: bdat.NameLabel("arr"), Type: bdat.ArrayOf(bdat.Int32)},
					{Label: bdat.NameLabel("names"), Type: bdat.ArrayOf(bdat.String)},
				},
				Rows: []bdat.Row{
					{ID: 1, Cells: []bdat.Value{
						uint8(1), uint16(2), uint32(3), int8(-1), int16(-2), int32(-3),
						float32(1.5), "hello", bdat.HashLabel(0xdeadbeef),
						[]int32{1, 2, 3}, []string{"a", "b"},
					}},
					{ID: 9, Cells: []bdat.Value{
						uint8(0), uint16(0), uint32(0), int8(0), int16(0), int32(0),
						float32(0), "", bdat.HashLabel(0),
						[]int32{}, []string{},
					}},
				},
			},
			{
				Name: &hashed,
				Columns: []bdat.ColumnDef{
					{Label: bdat.NameLabel("id"), Type: bdat.Scalar(bdat.Int32)},
				},
				Rows: []bdat.Row{{ID: 4, Cells: []bdat.Value{int32(42)}}},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	c := New(binary.LittleEndian)
	f := allTypesFile()

	var buf bytes.Buffer
	require.NoError(t, c.WriteFile(&buf, f))

	decoded, err := c.ReadFile(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, f.Version, decoded.Version)
	require.Len(t, decoded.Tables, len(f.Tables))

	// Offsets are recomputed by the codec, so compare tables with decoded
	// offsets applied to the expectation.
	for ti := range f.Tables {
		expected := f.Tables[ti]
		for ci := range expected.Columns {
			expected.Columns[ci].Offset = decoded.Tables[ti].Columns[ci].Offset
		}
		assert.Equal(t, expected, decoded.Tables[ti])
	}

	// A second encode of the decoded form is byte-identical.
	var buf2 bytes.Buffer
	require.NoError(t, c.WriteFile(&buf2, decoded))
	assert.Equal(t, buf.Bytes(), buf2.Bytes())
}

func TestBigEndianRoundTrip(t *testing.T) {
	c := New(binary.BigEndian)
	f := allTypesFile()

	var buf bytes.Buffer
	require.NoError(t, c.WriteFile(&buf, f))
	decoded, err := c.ReadFile(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, decoded.Tables, 2)
	assert.Equal(t, int32(42), decoded.Tables[1].Rows[0].Cells[0])
}

func TestUnnamedTable(t *testing.T) {
	c := New(binary.LittleEndian)
	f := &File{
		Version: bdat.VersionLegacy,
		Tables: []bdat.Table{{
			Columns: []bdat.ColumnDef{{Label: bdat.NameLabel("id"), Type: bdat.Scalar(bdat.Int32)}},
			Rows:    []bdat.Row{{ID: 0, Cells: []bdat.Value{int32(1)}}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, c.WriteFile(&buf, f))
	decoded, err := c.ReadFile(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, decoded.Tables[0].Name)
}

func TestBadMagic(t *testing.T) {
	c := New(binary.LittleEndian)
	_, err := c.ReadFile(bytes.NewReader([]byte("JSON{\"not\":\"bdat\"}")))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestUnknownVersion(t *testing.T) {
	c := New(binary.LittleEndian)
	var buf bytes.Buffer
	require.NoError(t, c.WriteFile(&buf, &File{Version: bdat.VersionModern}))

	// the version byte follows the 4-byte magic
	raw := buf.Bytes()
	raw[4] = 9
	_, err := c.ReadFile(bytes.NewReader(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format version 9")
}

func TestTruncatedFile(t *testing.T) {
	c := New(binary.LittleEndian)
	f := allTypesFile()
	var buf bytes.Buffer
	require.NoError(t, c.WriteFile(&buf, f))

	_, err := c.ReadFile(bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
	assert.Error(t, err)
}

func TestWriteRejectsInvalidTable(t *testing.T) {
	c := New(binary.LittleEndian)
	name := bdat.NameLabel("Bad")
	f := &File{
		Version: bdat.VersionModern,
		Tables: []bdat.Table{{
			Name:    &name,
			Columns: []bdat.ColumnDef{{Label: bdat.NameLabel("id"), Type: bdat.Scalar(bdat.Int32)}},
			Rows:    []bdat.Row{{ID: 1, Cells: []bdat.Value{"not an int"}}},
		}},
	}
	assert.Error(t, c.WriteFile(&bytes.Buffer{}, f))
}

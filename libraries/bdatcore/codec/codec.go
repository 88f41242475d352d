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

// Package codec reads and writes the binary table container. The conversion
// engine consumes it strictly through the Codec value, so a different
// container implementation can be substituted without touching the engine.
package codec

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
)

var fileMagic = [4]byte{'B', 'D', 'A', 'T'}

var ErrBadMagic = errors.New("not a BDAT file")

// File is the decoded form of one binary file: its format version and its
// tables, in file order.
type File struct {
	Version bdat.Version
	Tables  []bdat.Table
}

// Codec encodes and decodes binary table files with a fixed byte order.
type Codec struct {
	Order binary.ByteOrder
}

// New returns a Codec using the given byte order. BDAT files are
// little-endian in practice.
func New(order binary.ByteOrder) Codec {
	return Codec{Order: order}
}

const (
	labelNone uint8 = iota
	labelName
	labelHash
)

// ReadFile decodes a binary stream into its typed tables.
func (c Codec) ReadFile(r io.Reader) (*File, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "could not read file header")
	}
	if magic != fileMagic {
		return nil, ErrBadMagic
	}

	var version uint8
	if err := binary.Read(r, c.Order, &version); err != nil {
		return nil, errors.Wrap(err, "could not read format version")
	}
	if !bdat.Version(version).Known() {
		return nil, errors.Errorf("unsupported format version %d", version)
	}

	var tableCount uint32
	if err := binary.Read(r, c.Order, &tableCount); err != nil {
		return nil, errors.Wrap(err, "could not read table count")
	}

	f := &File{Version: bdat.Version(version)}
	for i := uint32(0); i < tableCount; i++ {
		tbl, err := c.readTable(r)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read table %d", i)
		}
		f.Tables = append(f.Tables, *tbl)
	}
	return f, nil
}

// WriteFile encodes the typed tables back into one binary stream. Column
// offsets are recomputed from the declared types; the placeholder offsets
// written by the text converters are ignored.
func (c Codec) WriteFile(w io.Writer, f *File) error {
	if _, err := w.Write(fileMagic[:]); err != nil {
		return errors.Wrap(err, "could not write file header")
	}
	if err := binary.Write(w, c.Order, uint8(f.Version)); err != nil {
		return err
	}
	if err := binary.Write(w, c.Order, uint32(len(f.Tables))); err != nil {
		return err
	}
	for i := range f.Tables {
		if err := f.Tables[i].Validate(); err != nil {
			return errors.Wrapf(err, "table %s is not encodable", tableDesc(&f.Tables[i]))
		}
		if err := c.writeTable(w, &f.Tables[i]); err != nil {
			return errors.Wrapf(err, "could not write table %s", tableDesc(&f.Tables[i]))
		}
	}
	return nil
}

func tableDesc(t *bdat.Table) string {
	if t.Name == nil {
		return "(unnamed)"
	}
	return t.Name.String()
}

func (c Codec) readTable(r io.Reader) (*bdat.Table, error) {
	name, err := c.readLabel(r)
	if err != nil {
		return nil, err
	}

	var colCount uint32
	if err := binary.Read(r, c.Order, &colCount); err != nil {
		return nil, err
	}

	tbl := &bdat.Table{Name: name}
	for i := uint32(0); i < colCount; i++ {
		label, err := c.readLabel(r)
		if err != nil {
			return nil, err
		}
		if label == nil {
			return nil, errors.New("column label may not be empty")
		}
		var tyByte uint8
		if err := binary.Read(r, c.Order, &tyByte); err != nil {
			return nil, err
		}
		var offset uint32
		if err := binary.Read(r, c.Order, &offset); err != nil {
			return nil, err
		}
		tbl.Columns = append(tbl.Columns, bdat.ColumnDef{
			Label:  *label,
			Type:   bdat.ValueType{Base: bdat.BaseType(tyByte &^ arrayFlag), IsArray: tyByte&arrayFlag != 0},
			Offset: int(offset),
		})
	}

	var rowCount uint32
	if err := binary.Read(r, c.Order, &rowCount); err != nil {
		return nil, err
	}
	for i := uint32(0); i < rowCount; i++ {
		var id uint32
		if err := binary.Read(r, c.Order, &id); err != nil {
			return nil, err
		}
		row := bdat.Row{ID: int(id)}
		for _, col := range tbl.Columns {
			v, err := c.readValue(r, col.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d, column %s", id, col.Label.String())
			}
			row.Cells = append(row.Cells, v)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}

const arrayFlag uint8 = 0x80

func (c Codec) writeTable(w io.Writer, tbl *bdat.Table) error {
	if err := c.writeLabel(w, tbl.Name); err != nil {
		return err
	}
	if err := binary.Write(w, c.Order, uint32(len(tbl.Columns))); err != nil {
		return err
	}
	offset := 0
	for _, col := range tbl.Columns {
		if err := c.writeLabel(w, &col.Label); err != nil {
			return err
		}
		tyByte := uint8(col.Type.Base)
		if col.Type.IsArray {
			tyByte |= arrayFlag
		}
		if err := binary.Write(w, c.Order, tyByte); err != nil {
			return err
		}
		if err := binary.Write(w, c.Order, uint32(offset)); err != nil {
			return err
		}
		offset += cellWidth(col.Type)
	}
	if err := binary.Write(w, c.Order, uint32(len(tbl.Rows))); err != nil {
		return err
	}
	for _, row := range tbl.Rows {
		if err := binary.Write(w, c.Order, uint32(row.ID)); err != nil {
			return err
		}
		for i, col := range tbl.Columns {
			if err := c.writeValue(w, col.Type, row.Cells[i]); err != nil {
				return errors.Wrapf(err, "row %d, column %s", row.ID, col.Label.String())
			}
		}
	}
	return nil
}

// cellWidth is the binary row-buffer width of a cell: variable-length cells
// occupy a 4-byte slot.
func cellWidth(t bdat.ValueType) int {
	if t.IsArray {
		return 4
	}
	switch t.Base {
	case bdat.UInt8, bdat.Int8:
		return 1
	case bdat.UInt16, bdat.Int16:
		return 2
	default:
		return 4
	}
}

func (c Codec) readLabel(r io.Reader) (*bdat.Label, error) {
	var tag uint8
	if err := binary.Read(r, c.Order, &tag); err != nil {
		return nil, err
	}
	switch tag {
	case labelNone:
		return nil, nil
	case labelName:
		s, err := c.readString(r)
		if err != nil {
			return nil, err
		}
		l := bdat.NameLabel(s)
		return &l, nil
	case labelHash:
		var h uint32
		if err := binary.Read(r, c.Order, &h); err != nil {
			return nil, err
		}
		l := bdat.HashLabel(h)
		return &l, nil
	}
	return nil, errors.Errorf("invalid label tag %d", tag)
}

func (c Codec) writeLabel(w io.Writer, l *bdat.Label) error {
	if l == nil {
		return binary.Write(w, c.Order, labelNone)
	}
	if l.IsHashed() {
		if err := binary.Write(w, c.Order, labelHash); err != nil {
			return err
		}
		return binary.Write(w, c.Order, l.Hash())
	}
	if err := binary.Write(w, c.Order, labelName); err != nil {
		return err
	}
	return c.writeString(w, l.Name())
}

func (c Codec) readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, c.Order, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (c Codec) writeString(w io.Writer, s string) error {
	if len(s) > 0xffff {
		return errors.Errorf("string of length %d exceeds encodable size", len(s))
	}
	if err := binary.Write(w, c.Order, uint16(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func (c Codec) readValue(r io.Reader, t bdat.ValueType) (bdat.Value, error) {
	if t.IsArray {
		var n uint16
		if err := binary.Read(r, c.Order, &n); err != nil {
			return nil, err
		}
		return c.readArray(r, t.Base, int(n))
	}
	return c.readScalar(r, t.Base)
}

func (c Codec) readScalar(r io.Reader, b bdat.BaseType) (bdat.Value, error) {
	switch b {
	case bdat.UInt8:
		var v uint8
		err := binary.Read(r, c.Order, &v)
		return v, err
	case bdat.UInt16:
		var v uint16
		err := binary.Read(r, c.Order, &v)
		return v, err
	case bdat.UInt32:
		var v uint32
		err := binary.Read(r, c.Order, &v)
		return v, err
	case bdat.Int8:
		var v int8
		err := binary.Read(r, c.Order, &v)
		return v, err
	case bdat.Int16:
		var v int16
		err := binary.Read(r, c.Order, &v)
		return v, err
	case bdat.Int32:
		var v int32
		err := binary.Read(r, c.Order, &v)
		return v, err
	case bdat.Float32:
		var v float32
		err := binary.Read(r, c.Order, &v)
		return v, err
	case bdat.String:
		return c.readString(r)
	case bdat.HashRef:
		var h uint32
		if err := binary.Read(r, c.Order, &h); err != nil {
			return nil, err
		}
		return bdat.HashLabel(h), nil
	}
	return nil, errors.Errorf("unknown base type %d", uint8(b))
}

func (c Codec) readArray(r io.Reader, b bdat.BaseType, n int) (bdat.Value, error) {
	appendTo := func(dst []bdat.Value) ([]bdat.Value, error) {
		for i := 0; i < n; i++ {
			v, err := c.readScalar(r, b)
			if err != nil {
				return nil, err
			}
			dst = append(dst, v)
		}
		return dst, nil
	}
	vals, err := appendTo(make([]bdat.Value, 0, n))
	if err != nil {
		return nil, err
	}

	switch b {
	case bdat.UInt8:
		out := make([]uint8, n)
		for i, v := range vals {
			out[i] = v.(uint8)
		}
		return out, nil
	case bdat.UInt16:
		out := make([]uint16, n)
		for i, v := range vals {
			out[i] = v.(uint16)
		}
		return out, nil
	case bdat.UInt32:
		out := make([]uint32, n)
		for i, v := range vals {
			out[i] = v.(uint32)
		}
		return out, nil
	case bdat.Int8:
		out := make([]int8, n)
		for i, v := range vals {
			out[i] = v.(int8)
		}
		return out, nil
	case bdat.Int16:
		out := make([]int16, n)
		for i, v := range vals {
			out[i] = v.(int16)
		}
		return out, nil
	case bdat.Int32:
		out := make([]int32, n)
		for i, v := range vals {
			out[i] = v.(int32)
		}
		return out, nil
	case bdat.Float32:
		out := make([]float32, n)
		for i, v := range vals {
			out[i] = v.(float32)
		}
		return out, nil
	case bdat.String:
		out := make([]string, n)
		for i, v := range vals {
			out[i] = v.(string)
		}
		return out, nil
	case bdat.HashRef:
		out := make([]bdat.Label, n)
		for i, v := range vals {
			out[i] = v.(bdat.Label)
		}
		return out, nil
	}
	return nil, errors.Errorf("unknown base type %d", uint8(b))
}

func (c Codec) writeValue(w io.Writer, t bdat.ValueType, v bdat.Value) error {
	if !t.IsArray {
		return c.writeScalar(w, t.Base, v)
	}

	n, elems := arrayElems(v)
	if n > 0xffff {
		return errors.Errorf("array of length %d exceeds encodable size", n)
	}
	if err := binary.Write(w, c.Order, uint16(n)); err != nil {
		return err
	}
	for _, e := range elems {
		if err := c.writeScalar(w, t.Base, e); err != nil {
			return err
		}
	}
	return nil
}

func arrayElems(v bdat.Value) (int, []bdat.Value) {
	switch arr := v.(type) {
	case []uint8:
		out := make([]bdat.Value, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return len(arr), out
	case []uint16:
		out := make([]bdat.Value, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return len(arr), out
	case []uint32:
		out := make([]bdat.Value, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return len(arr), out
	case []int8:
		out := make([]bdat.Value, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return len(arr), out
	case []int16:
		out := make([]bdat.Value, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return len(arr), out
	case []int32:
		out := make([]bdat.Value, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return len(arr), out
	case []float32:
		out := make([]bdat.Value, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return len(arr), out
	case []string:
		out := make([]bdat.Value, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return len(arr), out
	case []bdat.Label:
		out := make([]bdat.Value, len(arr))
		for i, e := range arr {
			out[i] = e
		}
		return len(arr), out
	}
	return 0, nil
}

func (c Codec) writeScalar(w io.Writer, b bdat.BaseType, v bdat.Value) error {
	switch b {
	case bdat.String:
		return c.writeString(w, v.(string))
	case bdat.HashRef:
		return binary.Write(w, c.Order, v.(bdat.Label).Hash())
	default:
		// Fixed-width numerics encode directly.
		return binary.Write(w, c.Order, v)
	}
}

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

package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
	"github.com/dolthub/bdatconv/libraries/bdatcore/fschema"
)

// arraySep joins the elements of an array cell inside a single CSV field.
// Elements escape '\' and '|' with a backslash; an empty element is written
// as `\e` so that an empty array ("") and a one-empty-string array stay
// distinct.
const arraySep = '|'

// CSVConverter reads and writes tables as delimited text. The first record
// is a header of the form "$id,<col>,<col>,..."; field quoting follows
// RFC 4180 rules.
type CSVConverter struct {
	delim rune
}

var _ Serializer = CSVConverter{}
var _ Deserializer = CSVConverter{}

// NewCSVConverter creates a CSVConverter honoring opts.Delim.
func NewCSVConverter(opts Options) CSVConverter {
	delim := opts.Delim
	if delim == 0 {
		delim = ','
	}
	return CSVConverter{delim: delim}
}

// FileName implements Serializer.
func (cc CSVConverter) FileName(tableName string) string {
	return tableName + ".csv"
}

// TableExtension implements Deserializer.
func (cc CSVConverter) TableExtension() string {
	return "csv"
}

// WriteTable implements Serializer.
func (cc CSVConverter) WriteTable(t *bdat.Table, wr io.Writer) error {
	cw := csv.NewWriter(wr)
	cw.Comma = cc.delim

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, idField)
	for _, col := range t.Columns {
		header = append(header, col.Label.FileString())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, len(header))
	for _, row := range t.Rows {
		if len(row.Cells) != len(t.Columns) {
			return NewMalformedRow(tableName(t), row.ID,
				fmt.Sprintf("row has %d cells, table has %d columns", len(row.Cells), len(t.Columns)))
		}
		rec[0] = strconv.Itoa(row.ID)
		for i, col := range t.Columns {
			s, err := formatCSVValue(col.Type, row.Cells[i])
			if err != nil {
				return errors.Wrapf(err, "row %d, column %s", row.ID, col.Label.String())
			}
			rec[i+1] = s
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCSVValue(ty bdat.ValueType, v bdat.Value) (string, error) {
	if !ty.IsArray {
		return formatCSVScalar(ty.Base, v)
	}

	elems, err := arrayElems(ty.Base, v)
	if err != nil {
		return "", err
	}
	for i, e := range elems {
		elems[i] = escapeElem(e)
	}
	return strings.Join(elems, string(arraySep)), nil
}

func formatCSVScalar(base bdat.BaseType, v bdat.Value) (string, error) {
	switch base {
	case bdat.UInt8, bdat.UInt16, bdat.UInt32, bdat.Int8, bdat.Int16, bdat.Int32:
		return fmt.Sprintf("%d", v), nil
	case bdat.Float32:
		f, ok := v.(float32)
		if !ok {
			return "", fmt.Errorf("expected float32 cell, found %T", v)
		}
		return strconv.FormatFloat(float64(f), 'g', -1, 32), nil
	case bdat.String:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("expected string cell, found %T", v)
		}
		return s, nil
	case bdat.HashRef:
		l, ok := v.(bdat.Label)
		if !ok {
			return "", fmt.Errorf("expected label cell, found %T", v)
		}
		return l.String(), nil
	}
	return "", fmt.Errorf("unknown value type %s", base)
}

func arrayElems(base bdat.BaseType, v bdat.Value) ([]string, error) {
	switch base {
	case bdat.UInt8:
		return formatElems[uint8](v)
	case bdat.UInt16:
		return formatElems[uint16](v)
	case bdat.UInt32:
		return formatElems[uint32](v)
	case bdat.Int8:
		return formatElems[int8](v)
	case bdat.Int16:
		return formatElems[int16](v)
	case bdat.Int32:
		return formatElems[int32](v)
	case bdat.Float32:
		fs, ok := v.([]float32)
		if !ok {
			return nil, fmt.Errorf("expected float32 array cell, found %T", v)
		}
		out := make([]string, len(fs))
		for i, f := range fs {
			out[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
		}
		return out, nil
	case bdat.String:
		ss, ok := v.([]string)
		if !ok {
			return nil, fmt.Errorf("expected string array cell, found %T", v)
		}
		out := make([]string, len(ss))
		copy(out, ss)
		return out, nil
	case bdat.HashRef:
		ls, ok := v.([]bdat.Label)
		if !ok {
			return nil, fmt.Errorf("expected label array cell, found %T", v)
		}
		out := make([]string, len(ls))
		for i, l := range ls {
			out[i] = l.String()
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown value type %s", base)
}

func formatElems[T uint8 | uint16 | uint32 | int8 | int16 | int32](v bdat.Value) ([]string, error) {
	ns, ok := v.([]T)
	if !ok {
		return nil, fmt.Errorf("expected %T cell, found %T", ns, v)
	}
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = fmt.Sprintf("%d", n)
	}
	return out, nil
}

func escapeElem(s string) string {
	if s == "" {
		return `\e`
	}
	var sb strings.Builder
	for _, r := range s {
		if r == '\\' || r == arraySep {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func unescapeElem(s string) (string, error) {
	if s == `\e` {
		return "", nil
	}
	var sb strings.Builder
	esc := false
	for _, r := range s {
		if esc {
			sb.WriteRune(r)
			esc = false
			continue
		}
		if r == '\\' {
			esc = true
			continue
		}
		sb.WriteRune(r)
	}
	if esc {
		return "", fmt.Errorf("dangling escape in array element %q", s)
	}
	return sb.String(), nil
}

// splitArrayField splits a joined array field on unescaped separators.
func splitArrayField(s string) []string {
	if s == "" {
		return nil
	}
	var elems []string
	var sb strings.Builder
	esc := false
	for _, r := range s {
		if esc {
			sb.WriteByte('\\')
			sb.WriteRune(r)
			esc = false
			continue
		}
		switch r {
		case '\\':
			esc = true
		case arraySep:
			elems = append(elems, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	if esc {
		sb.WriteByte('\\')
	}
	elems = append(elems, sb.String())
	return elems
}

// ReadTable implements Deserializer.
func (cc CSVConverter) ReadTable(name *bdat.Label, sch *fschema.FileSchema, rd io.Reader) (*bdat.Table, error) {
	dispName := labelName(name)

	if sch == nil {
		return nil, &SchemaMissingError{Table: dispName}
	}
	colSchemas, ok := sch.Columns(fileName(name))
	if !ok {
		return nil, &SchemaMissingError{Table: dispName}
	}

	cr := csv.NewReader(rd)
	cr.Comma = cc.delim
	cr.ReuseRecord = true
	// field counts are checked per record below, so mismatches can carry
	// the offending row's id
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, NewMalformedRow(dispName, -1, "file has no header row")
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading table %s", dispName)
	}
	if len(header) == 0 || header[0] != idField {
		return nil, NewMalformedRow(dispName, -1, "header must start with "+idField)
	}

	t := &bdat.Table{
		Name:    name,
		Columns: make([]bdat.ColumnDef, len(colSchemas)),
	}
	colIdx := make(map[string]int, len(colSchemas))
	for i, cs := range colSchemas {
		t.Columns[i] = bdat.ColumnDef{Label: cs.Label(), Type: cs.Type}
		colIdx[cs.Name] = i
	}

	// fieldCol maps header positions (past $id) onto schema columns.
	fieldCol := make([]int, len(header)-1)
	seen := make([]bool, len(colSchemas))
	for fi, key := range header[1:] {
		i, ok := colIdx[key]
		if !ok {
			return nil, NewMalformedRow(dispName, -1, "unknown column "+key+" in header")
		}
		if seen[i] {
			return nil, NewMalformedRow(dispName, -1, "duplicate column "+key+" in header")
		}
		fieldCol[fi] = i
		seen[i] = true
	}
	for i, s := range seen {
		if !s {
			return nil, NewMalformedRow(dispName, -1, "missing column "+colSchemas[i].Name+" in header")
		}
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, NewMalformedRow(dispName, -1, err.Error())
		}

		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, NewMalformedRow(dispName, -1, "bad "+idField+" field "+rec[0])
		}
		if len(rec) != len(header) {
			return nil, NewMalformedRow(dispName, id,
				fmt.Sprintf("row has %d fields, header has %d", len(rec), len(header)))
		}

		cells := make([]bdat.Value, len(colSchemas))
		for fi, field := range rec[1:] {
			i := fieldCol[fi]
			cell, err := parseCSVValue(colSchemas[i].Type, field)
			if err != nil {
				return nil, NewMalformedRow(dispName, id, "column "+colSchemas[i].Name+": "+err.Error())
			}
			cells[i] = cell
		}
		t.Rows = append(t.Rows, bdat.Row{ID: id, Cells: cells})
	}
	return t, nil
}

func parseCSVValue(ty bdat.ValueType, field string) (bdat.Value, error) {
	if !ty.IsArray {
		return parseCSVScalar(ty.Base, field)
	}

	raw := splitArrayField(field)
	switch ty.Base {
	case bdat.UInt8:
		return parseElems[uint8](ty.Base, raw)
	case bdat.UInt16:
		return parseElems[uint16](ty.Base, raw)
	case bdat.UInt32:
		return parseElems[uint32](ty.Base, raw)
	case bdat.Int8:
		return parseElems[int8](ty.Base, raw)
	case bdat.Int16:
		return parseElems[int16](ty.Base, raw)
	case bdat.Int32:
		return parseElems[int32](ty.Base, raw)
	case bdat.Float32:
		out := make([]float32, len(raw))
		for i, e := range raw {
			v, err := parseCSVScalar(ty.Base, e)
			if err != nil {
				return nil, err
			}
			out[i] = v.(float32)
		}
		return out, nil
	case bdat.String:
		out := make([]string, len(raw))
		for i, e := range raw {
			s, err := unescapeElem(e)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case bdat.HashRef:
		out := make([]bdat.Label, len(raw))
		for i, e := range raw {
			s, err := unescapeElem(e)
			if err != nil {
				return nil, err
			}
			out[i] = parseLabelCell(s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown value type %s", ty.Base)
}

func parseElems[T uint8 | uint16 | uint32 | int8 | int16 | int32](base bdat.BaseType, raw []string) (bdat.Value, error) {
	out := make([]T, len(raw))
	for i, e := range raw {
		v, err := parseCSVScalar(base, e)
		if err != nil {
			return nil, err
		}
		out[i] = v.(T)
	}
	return out, nil
}

func parseCSVScalar(base bdat.BaseType, field string) (bdat.Value, error) {
	switch base {
	case bdat.UInt8:
		v, err := strconv.ParseUint(field, 10, 8)
		return uint8(v), err
	case bdat.UInt16:
		v, err := strconv.ParseUint(field, 10, 16)
		return uint16(v), err
	case bdat.UInt32:
		v, err := strconv.ParseUint(field, 10, 32)
		return uint32(v), err
	case bdat.Int8:
		v, err := strconv.ParseInt(field, 10, 8)
		return int8(v), err
	case bdat.Int16:
		v, err := strconv.ParseInt(field, 10, 16)
		return int16(v), err
	case bdat.Int32:
		v, err := strconv.ParseInt(field, 10, 32)
		return int32(v), err
	case bdat.Float32:
		v, err := strconv.ParseFloat(field, 32)
		return float32(v), err
	case bdat.String:
		return field, nil
	case bdat.HashRef:
		return parseLabelCell(field), nil
	}
	return nil, fmt.Errorf("unknown value type %s", base)
}

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
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
	"github.com/dolthub/bdatconv/libraries/bdatcore/fschema"
)

// idField is the reserved row field holding the row's id. It is not a legal
// column name in any table, so it never collides.
const idField = "$id"

// JSONConverter reads and writes tables as JSON documents of the form
//
//	{"schema": [...], "rows": [{"$id": 1, "col": val, ...}, ...]}
//
// The schema entry is present only in typed mode. Row fields appear in column
// order, which the stock map-based marshalling cannot guarantee, so row
// objects are assembled by hand.
type JSONConverter struct {
	typed  bool
	pretty bool
}

var _ Serializer = JSONConverter{}
var _ Deserializer = JSONConverter{}

// NewJSONConverter creates a JSONConverter honoring opts.Typed and
// opts.Pretty.
func NewJSONConverter(opts Options) JSONConverter {
	return JSONConverter{typed: opts.Typed, pretty: opts.Pretty}
}

type jsonTable struct {
	Schema []fschema.ColumnSchema `json:"schema,omitempty"`
	Rows   []json.RawMessage      `json:"rows"`
}

// FileName implements Serializer.
func (jc JSONConverter) FileName(tableName string) string {
	return tableName + ".json"
}

// TableExtension implements Deserializer.
func (jc JSONConverter) TableExtension() string {
	return "json"
}

// WriteTable implements Serializer.
func (jc JSONConverter) WriteTable(t *bdat.Table, wr io.Writer) error {
	doc := jsonTable{Rows: make([]json.RawMessage, len(t.Rows))}
	if jc.typed {
		doc.Schema = fschema.ColumnsOf(t)
	}

	for i, row := range t.Rows {
		raw, err := encodeJSONRow(t, row)
		if err != nil {
			return err
		}
		doc.Rows[i] = raw
	}

	var data []byte
	var err error
	if jc.pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return err
	}

	_, err = wr.Write(data)
	return err
}

func encodeJSONRow(t *bdat.Table, row bdat.Row) (json.RawMessage, error) {
	if len(row.Cells) != len(t.Columns) {
		return nil, NewMalformedRow(tableName(t), row.ID,
			fmt.Sprintf("row has %d cells, table has %d columns", len(row.Cells), len(t.Columns)))
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(`"` + idField + `":`)
	buf.WriteString(fmt.Sprintf("%d", row.ID))

	for i, col := range t.Columns {
		key, err := json.Marshal(col.Label.FileString())
		if err != nil {
			return nil, err
		}
		val, err := encodeJSONValue(col.Type, row.Cells[i])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d, column %s", row.ID, col.Label.String())
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeJSONValue(ty bdat.ValueType, v bdat.Value) (json.RawMessage, error) {
	if ty.IsArray {
		return encodeJSONArray(ty.Base, v)
	}
	return encodeJSONScalar(ty.Base, v)
}

func encodeJSONScalar(base bdat.BaseType, v bdat.Value) (json.RawMessage, error) {
	if base == bdat.HashRef {
		l, ok := v.(bdat.Label)
		if !ok {
			return nil, fmt.Errorf("expected label cell, found %T", v)
		}
		return json.Marshal(l.String())
	}
	return json.Marshal(v)
}

func encodeJSONArray(base bdat.BaseType, v bdat.Value) (json.RawMessage, error) {
	switch base {
	case bdat.HashRef:
		ls, ok := v.([]bdat.Label)
		if !ok {
			return nil, fmt.Errorf("expected label array cell, found %T", v)
		}
		strs := make([]string, len(ls))
		for i, l := range ls {
			strs[i] = l.String()
		}
		return json.Marshal(strs)
	case bdat.UInt8:
		// a []uint8 is a []byte to the marshaller, which renders base64
		ns, ok := v.([]uint8)
		if !ok {
			return nil, fmt.Errorf("expected uint8 array cell, found %T", v)
		}
		widened := make([]uint16, len(ns))
		for i, n := range ns {
			widened[i] = uint16(n)
		}
		v = widened
	}
	// empty typed slices must render as [], not null
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(raw, []byte("null")) {
		raw = []byte("[]")
	}
	return raw, nil
}

// ReadTable implements Deserializer.
func (jc JSONConverter) ReadTable(name *bdat.Label, sch *fschema.FileSchema, rd io.Reader) (*bdat.Table, error) {
	dispName := labelName(name)

	var doc jsonTable
	dec := json.NewDecoder(rd)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "reading table %s", dispName)
	}

	colSchemas := doc.Schema
	if len(colSchemas) == 0 {
		if sch == nil {
			return nil, &SchemaMissingError{Table: dispName}
		}
		var ok bool
		colSchemas, ok = sch.Columns(fileName(name))
		if !ok {
			return nil, &SchemaMissingError{Table: dispName}
		}
	}

	t := &bdat.Table{
		Name:    name,
		Columns: make([]bdat.ColumnDef, len(colSchemas)),
		Rows:    make([]bdat.Row, 0, len(doc.Rows)),
	}
	colIdx := make(map[string]int, len(colSchemas))
	for i, cs := range colSchemas {
		t.Columns[i] = bdat.ColumnDef{Label: cs.Label(), Type: cs.Type}
		colIdx[cs.Name] = i
	}

	for _, raw := range doc.Rows {
		row, err := decodeJSONRow(dispName, t.Columns, colIdx, raw)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func decodeJSONRow(table string, cols []bdat.ColumnDef, colIdx map[string]int, raw json.RawMessage) (bdat.Row, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return bdat.Row{}, NewMalformedRow(table, -1, "row is not a JSON object: "+err.Error())
	}

	idRaw, ok := fields[idField]
	if !ok {
		return bdat.Row{}, NewMalformedRow(table, -1, "row has no "+idField+" field")
	}
	var id int
	if err := json.Unmarshal(idRaw, &id); err != nil {
		return bdat.Row{}, NewMalformedRow(table, -1, "bad "+idField+" field: "+err.Error())
	}
	delete(fields, idField)

	cells := make([]bdat.Value, len(cols))
	seen := make([]bool, len(cols))
	for key, val := range fields {
		i, ok := colIdx[key]
		if !ok {
			return bdat.Row{}, NewMalformedRow(table, id, "unknown column "+key)
		}
		cell, err := decodeJSONValue(cols[i].Type, val)
		if err != nil {
			return bdat.Row{}, NewMalformedRow(table, id, "column "+key+": "+err.Error())
		}
		cells[i] = cell
		seen[i] = true
	}
	for i, s := range seen {
		if !s {
			return bdat.Row{}, NewMalformedRow(table, id, "missing column "+cols[i].Label.FileString())
		}
	}
	return bdat.Row{ID: id, Cells: cells}, nil
}

func decodeJSONValue(ty bdat.ValueType, raw json.RawMessage) (bdat.Value, error) {
	if ty.IsArray {
		return decodeJSONArray(ty.Base, raw)
	}
	return decodeJSONScalar(ty.Base, raw)
}

func decodeJSONScalar(base bdat.BaseType, raw json.RawMessage) (bdat.Value, error) {
	switch base {
	case bdat.UInt8:
		var v uint8
		err := json.Unmarshal(raw, &v)
		return v, err
	case bdat.UInt16:
		var v uint16
		err := json.Unmarshal(raw, &v)
		return v, err
	case bdat.UInt32:
		var v uint32
		err := json.Unmarshal(raw, &v)
		return v, err
	case bdat.Int8:
		var v int8
		err := json.Unmarshal(raw, &v)
		return v, err
	case bdat.Int16:
		var v int16
		err := json.Unmarshal(raw, &v)
		return v, err
	case bdat.Int32:
		var v int32
		err := json.Unmarshal(raw, &v)
		return v, err
	case bdat.Float32:
		var v float32
		err := json.Unmarshal(raw, &v)
		return v, err
	case bdat.String:
		var v string
		err := json.Unmarshal(raw, &v)
		return v, err
	case bdat.HashRef:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return parseLabelCell(s), nil
	}
	return nil, fmt.Errorf("unknown value type %s", base)
}

func decodeJSONArray(base bdat.BaseType, raw json.RawMessage) (bdat.Value, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}

	switch base {
	case bdat.UInt8:
		return decodeJSONElems[uint8](base, elems)
	case bdat.UInt16:
		return decodeJSONElems[uint16](base, elems)
	case bdat.UInt32:
		return decodeJSONElems[uint32](base, elems)
	case bdat.Int8:
		return decodeJSONElems[int8](base, elems)
	case bdat.Int16:
		return decodeJSONElems[int16](base, elems)
	case bdat.Int32:
		return decodeJSONElems[int32](base, elems)
	case bdat.Float32:
		return decodeJSONElems[float32](base, elems)
	case bdat.String:
		return decodeJSONElems[string](base, elems)
	case bdat.HashRef:
		out := make([]bdat.Label, len(elems))
		for i, e := range elems {
			var s string
			if err := json.Unmarshal(e, &s); err != nil {
				return nil, err
			}
			out[i] = parseLabelCell(s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown value type %s", base)
}

func decodeJSONElems[T any](base bdat.BaseType, elems []json.RawMessage) (bdat.Value, error) {
	out := make([]T, len(elems))
	for i, e := range elems {
		if err := json.Unmarshal(e, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// parseLabelCell turns a hashref cell's text back into a label. Unresolved
// hashes were written bracketed, so such a string is never ambiguous with a
// resolved name.
func parseLabelCell(s string) bdat.Label {
	return bdat.ParseLabel(s, true)
}

func tableName(t *bdat.Table) string {
	return labelName(t.Name)
}

func labelName(name *bdat.Label) string {
	if name == nil {
		return "(unnamed)"
	}
	return name.String()
}

func fileName(name *bdat.Label) string {
	if name == nil {
		return "(unnamed)"
	}
	return name.FileString()
}

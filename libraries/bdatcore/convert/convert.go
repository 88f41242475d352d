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

// Package convert implements the type-directed, bidirectional mapping between
// typed tables and their textual documents. Converters are selected by a
// runtime format tag; the batch orchestrator only sees the Serializer and
// Deserializer interfaces.
package convert

import (
	"fmt"
	"io"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
	"github.com/dolthub/bdatconv/libraries/bdatcore/fschema"
)

// Supported format tags.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Options configures a converter.
type Options struct {
	// Typed embeds column name/type/hashed entries in each table document.
	// When false, type information lives exclusively in the schema sidecar.
	Typed bool
	// Pretty adds spaces and newlines to JSON output.
	Pretty bool
	// Delim is the CSV field delimiter; 0 means ','.
	Delim rune
}

// Serializer converts one table to its textual document.
type Serializer interface {
	// WriteTable writes the converted table to wr. The caller owns buffering
	// and must flush before moving to the next table.
	WriteTable(t *bdat.Table, wr io.Writer) error

	// FileName formats the output file name for a converted table.
	FileName(tableName string) string
}

// Deserializer converts a textual document back into a typed table.
type Deserializer interface {
	// ReadTable reads a table from rd, using the recorded column schema to
	// decode every cell. Text documents never carry enough type information
	// on their own; a missing schema is an error.
	ReadTable(name *bdat.Label, sch *fschema.FileSchema, rd io.Reader) (*bdat.Table, error)

	// TableExtension returns the file extension of converted table files.
	TableExtension() string
}

// NewSerializer returns the Serializer for a format tag.
func NewSerializer(format string, opts Options) (Serializer, error) {
	switch format {
	case FormatJSON:
		return NewJSONConverter(opts), nil
	case FormatCSV:
		return NewCSVConverter(opts), nil
	}
	return nil, fmt.Errorf("unknown file type '%s'", format)
}

// NewDeserializer returns the Deserializer for a format tag.
func NewDeserializer(format string, opts Options) (Deserializer, error) {
	switch format {
	case FormatJSON:
		return NewJSONConverter(opts), nil
	case FormatCSV:
		return NewCSVConverter(opts), nil
	}
	return nil, fmt.Errorf("unknown file type '%s'", format)
}

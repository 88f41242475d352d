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

// Package fschema accumulates and persists the per-file schema sidecar: the
// column layout of every table in one source binary file, plus the binary
// format version. The sidecar is the durable contract between an export run
// and a later import run; text documents alone do not carry enough type
// information to be deserialized.
package fschema

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"

	"github.com/pkg/errors"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

// Extension is the file extension of schema sidecar files.
const Extension = "bschema"

// ColumnSchema describes one column: its display name, declared type, and
// whether the name was originally a hash. The hashed flag is independent of
// the written name, so a resolved hash still round-trips to its hashed form.
type ColumnSchema struct {
	Name   string         `json:"name"`
	Type   bdat.ValueType `json:"type"`
	Hashed bool           `json:"hashed"`
}

// Label reconstructs the column's label with its recorded variant.
func (c ColumnSchema) Label() bdat.Label {
	return bdat.ParseLabel(c.Name, c.Hashed)
}

// FileSchema aggregates the column layout of every table inside one source
// binary file. It is created fresh per file at export start, fed once per
// table in encounter order, persisted at end of file processing, and reloaded
// at import start.
type FileSchema struct {
	FileName string                    `json:"file_name"`
	Version  bdat.Version              `json:"version"`
	Tables   map[string][]ColumnSchema `json:"tables"`
}

// MissingTableFileError reports a table recorded in a schema with no
// corresponding text file on disk.
type MissingTableFileError struct {
	Table string
	Path  string
}

func (e *MissingTableFileError) Error() string {
	return fmt.Sprintf("table %s has no converted file at %s", e.Table, e.Path)
}

// New creates an empty schema for one source file.
func New(fileName string, version bdat.Version) *FileSchema {
	return &FileSchema{
		FileName: fileName,
		Version:  version,
		Tables:   map[string][]ColumnSchema{},
	}
}

// FeedTable records the table's current column layout under the table's name.
// It must be called for every named table of the source file, before any
// selection filtering, so the sidecar describes the whole file.
func (fs *FileSchema) FeedTable(t *bdat.Table) {
	if t.Name == nil {
		return
	}
	fs.Tables[t.Name.FileString()] = ColumnsOf(t)
}

// ColumnsOf extracts the column layout of a table.
func ColumnsOf(t *bdat.Table) []ColumnSchema {
	cols := make([]ColumnSchema, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = ColumnSchema{
			Name:   c.Label.FileString(),
			Type:   c.Type,
			Hashed: c.Label.IsHashed(),
		}
	}
	return cols
}

// Columns returns the recorded column layout for a table.
func (fs *FileSchema) Columns(tableName string) ([]ColumnSchema, bool) {
	cols, ok := fs.Tables[tableName]
	return cols, ok
}

// TableCount returns the number of tables the schema describes.
func (fs *FileSchema) TableCount() int {
	return len(fs.Tables)
}

// TableNames returns the recorded table names in sorted order.
func (fs *FileSchema) TableNames() []string {
	names := make([]string, 0, len(fs.Tables))
	for name := range fs.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SidecarName returns the sidecar file name for the schema's source file.
func (fs *FileSchema) SidecarName() string {
	return fs.FileName + "." + Extension
}

// Write persists the schema beside the converted per-table files, under a
// name derived from the source file's name.
func (fs *FileSchema) Write(fsys filesys.WritableFS, dir string) error {
	data, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return err
	}
	fp := path.Join(dir, fs.SidecarName())
	if err := fsys.WriteFile(fp, data); err != nil {
		return errors.Wrapf(err, "could not write schema file %s", fp)
	}
	return nil
}

// Read loads a schema sidecar from the given path.
func Read(fsys filesys.ReadableFS, fp string) (*FileSchema, error) {
	fs := &FileSchema{}
	if err := filesys.UnmarshalJSONFile(fsys, fp, fs); err != nil {
		return nil, errors.Wrapf(err, "could not read schema file %s", fp)
	}
	if fs.Tables == nil {
		fs.Tables = map[string][]ColumnSchema{}
	}
	return fs, nil
}

// TableFile locates one expected converted table file.
type TableFile struct {
	Table string
	Path  string
}

// TableFiles enumerates the expected per-table files for every table the
// schema records, inside tablesDir with the given extension. A missing
// expected file is an error, not a silent skip.
func (fs *FileSchema) TableFiles(fsys filesys.ReadableFS, tablesDir, ext string) ([]TableFile, error) {
	var files []TableFile
	for _, name := range fs.TableNames() {
		fp := path.Join(tablesDir, name+"."+ext)
		if exists, isDir := fsys.Exists(fp); !exists || isDir {
			return nil, &MissingTableFileError{Table: name, Path: fp}
		}
		files = append(files, TableFile{Table: name, Path: fp})
	}
	return files, nil
}

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

// ColumnDef describes one column of a table. Offset is the cell's byte offset
// within a binary row; it only has meaning to the binary codec and is written
// as zero when a column is re-synthesized from text.
type ColumnDef struct {
	Label  Label
	Type   ValueType
	Offset int
}

// Row is one table row. ID is a stable, externally meaningful identity that
// is independent of the row's position and must survive a round trip
// unchanged. Cells are positionally aligned with the table's columns.
type Row struct {
	ID    int
	Cells []Value
}

// Table is the in-memory form of one BDAT table. A nil Name marks an unnamed
// table, which cannot be exported.
type Table struct {
	Name    *Label
	Columns []ColumnDef
	Rows    []Row
}

// ColumnIndex returns the position of the column with the given display name,
// or -1 when no such column exists.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Label.String() == name {
			return i
		}
	}
	return -1
}

// Validate checks the structural invariants of the table: every row has
// exactly one cell per column and every cell's kind matches its column's
// declared type.
func (t *Table) Validate() error {
	for _, r := range t.Rows {
		if len(r.Cells) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, table has %d columns", r.ID, len(r.Cells), len(t.Columns))
		}
		for i, c := range t.Columns {
			if err := c.Type.ValidateValue(r.Cells[i]); err != nil {
				return fmt.Errorf("row %d, column %s: %w", r.ID, c.Label.String(), err)
			}
		}
	}
	return nil
}

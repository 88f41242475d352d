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

// Package hashes implements the name-hash resolver: a process-wide, read-only
// lookup from a 32-bit label hash to its recovered original name. It is
// loaded once before any conversion begins and shared by every worker.
package hashes

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

// HashNameTable maps label hashes to recovered names. The zero-entry table is
// valid and resolves nothing.
type HashNameTable struct {
	names map[uint32]string
}

// Empty returns a resolver with no entries.
func Empty() *HashNameTable {
	return &HashNameTable{names: map[uint32]string{}}
}

// Load reads a name list, one name per line, and builds the resolver by
// hashing each name. Blank lines and lines starting with '#' are skipped.
func Load(r io.Reader) (*HashNameTable, error) {
	t := Empty()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		t.names[bdat.HashName(name)] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read hash name list")
	}
	return t, nil
}

// LoadFile reads a name list from the given file.
func LoadFile(fs filesys.ReadableFS, path string) (*HashNameTable, error) {
	rd, err := fs.OpenForRead(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open hash name list %s", path)
	}
	defer rd.Close()
	return Load(rd)
}

// Len returns the number of resolvable hashes.
func (t *HashNameTable) Len() int {
	return len(t.names)
}

// Resolve looks up the recovered name for a hash. Absence is not an error;
// the caller keeps the numeric form.
func (t *HashNameTable) Resolve(hash uint32) (string, bool) {
	name, ok := t.names[hash]
	return name, ok
}

// RewriteLabel returns the label with its name recovered when the resolver
// knows the hash. Unhashed, already resolved, and unknown labels are returned
// unchanged, which makes rewriting idempotent.
func (t *HashNameTable) RewriteLabel(l bdat.Label) bdat.Label {
	if !l.IsHashed() || l.Resolved() {
		return l
	}
	if name, ok := t.names[l.Hash()]; ok {
		return l.Resolve(name)
	}
	return l
}

// RewriteTable rewrites, in place, every hashed label in the table whose hash
// resolves: the table name, column labels, and hashed-string cell values.
// This must run before the file schema accumulator observes the table so the
// schema records the label state the export actually used.
func (t *HashNameTable) RewriteTable(tbl *bdat.Table) {
	if tbl.Name != nil {
		rewritten := t.RewriteLabel(*tbl.Name)
		tbl.Name = &rewritten
	}
	for i := range tbl.Columns {
		tbl.Columns[i].Label = t.RewriteLabel(tbl.Columns[i].Label)
	}
	for idx, col := range tbl.Columns {
		if col.Type.Base != bdat.HashRef {
			continue
		}
		for r := range tbl.Rows {
			switch cell := tbl.Rows[r].Cells[idx].(type) {
			case bdat.Label:
				tbl.Rows[r].Cells[idx] = t.RewriteLabel(cell)
			case []bdat.Label:
				for j := range cell {
					cell[j] = t.RewriteLabel(cell[j])
				}
			}
		}
	}
}

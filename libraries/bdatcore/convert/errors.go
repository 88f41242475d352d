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
	"errors"
	"strconv"
	"strings"
)

// MalformedRowError is returned when a row of a text document cannot be
// decoded against the table's schema. Decoding a table aborts on the first
// malformed row.
type MalformedRowError struct {
	// Table is the display name of the table being decoded.
	Table string
	// RowID is the row's declared id, or -1 when the failure precedes id
	// extraction (a header problem, or a row with no id field).
	RowID int
	// Details describes what was wrong with the row.
	Details []string
}

// NewMalformedRow creates a MalformedRowError
func NewMalformedRow(table string, rowID int, details ...string) *MalformedRowError {
	return &MalformedRowError{Table: table, RowID: rowID, Details: details}
}

func (mre *MalformedRowError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed row")
	if mre.RowID >= 0 {
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(mre.RowID))
	}
	if mre.Table != "" {
		sb.WriteString(" in table ")
		sb.WriteString(mre.Table)
	}
	if len(mre.Details) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(mre.Details, "; "))
	}
	return sb.String()
}

// IsMalformedRow returns true if the error chain contains a MalformedRowError.
func IsMalformedRow(err error) bool {
	mre := &MalformedRowError{}
	return errors.As(err, &mre)
}

// SchemaMissingError is returned when a document carries no embedded schema
// and the sidecar has no entry for the table.
type SchemaMissingError struct {
	Table string
}

func (sme *SchemaMissingError) Error() string {
	return "no schema available for table " + sme.Table
}

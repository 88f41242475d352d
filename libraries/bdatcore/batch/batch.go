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

// Package batch orchestrates multi-file conversion runs. Each input file is
// one unit of work; units run on a bounded worker pool and the first failure
// stops scheduling of further units while in-flight units finish.
package batch

import (
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dolthub/bdatconv/libraries/bdatcore/codec"
	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

// Runner executes export and import runs against a filesystem and a binary
// codec. It holds no per-run state; a single Runner may serve many runs.
type Runner struct {
	fs     filesys.Filesys
	cdc    codec.Codec
	logger *zap.Logger
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(fs filesys.Filesys, cdc codec.Codec, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{fs: fs, cdc: cdc, logger: logger}
}

// ExportOptions configures a binary-to-text run.
type ExportOptions struct {
	// OutDir is the root of the converted output tree.
	OutDir string
	// Format selects the text format; empty means "json".
	Format string
	// Typed embeds column schemas in each table document.
	Typed bool
	// NoSchema skips writing the schema sidecar. Such output cannot be
	// imported unless Typed is set.
	NoSchema bool
	// Tables and Columns restrict which tables and columns are written.
	// Empty means all. Filtering never narrows the schema sidecar.
	Tables  []string
	Columns []string
	// Jobs is the worker pool size; <= 0 means one worker per CPU.
	Jobs int
	// Pretty and Delim are passed through to the converter.
	Pretty bool
	Delim  rune
	// Progress, when non-nil, receives counter updates during the run.
	Progress *Progress
}

// ImportOptions configures a text-to-binary run.
type ImportOptions struct {
	// OutDir is the root of the rebuilt binary tree.
	OutDir string
	// Format selects the text format; empty means "json".
	Format string
	// Jobs is the worker pool size; <= 0 means one worker per CPU.
	Jobs int
	// Delim is the CSV field delimiter.
	Delim rune
	// Progress, when non-nil, receives counter updates during the run.
	Progress *Progress
}

func normFormat(format string) string {
	if format == "" {
		return "json"
	}
	return format
}

func poolSize(jobs int) uint32 {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return uint32(jobs)
}

// Progress tracks a run's completed work. All counters are safe for
// concurrent increment; readers may poll at any time.
type Progress struct {
	files  atomic.Uint64
	tables atomic.Uint64
	rows   atomic.Uint64
}

func (p *Progress) fileDone() {
	if p != nil {
		p.files.Add(1)
	}
}

func (p *Progress) tableDone(rows int) {
	if p != nil {
		p.tables.Add(1)
		p.rows.Add(uint64(rows))
	}
}

// Counts returns the number of completed files, tables, and rows.
func (p *Progress) Counts() (files, tables, rows uint64) {
	return p.files.Load(), p.tables.Load(), p.rows.Load()
}

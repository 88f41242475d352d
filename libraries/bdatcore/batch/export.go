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

package batch

import (
	"context"
	"fmt"
	"path"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
	"github.com/dolthub/bdatconv/libraries/bdatcore/convert"
	"github.com/dolthub/bdatconv/libraries/bdatcore/filter"
	"github.com/dolthub/bdatconv/libraries/bdatcore/fschema"
	"github.com/dolthub/bdatconv/libraries/bdatcore/hashes"
	"github.com/dolthub/bdatconv/libraries/utils/async"
)

// Export converts every .bdat file among inputs into per-table text files
// under opts.OutDir. For input file <dir>/game.bdat the run writes
// <out>/<dir>/game/<Table>.<ext> for each selected table, plus the schema
// sidecar <out>/<dir>/game.bdat.bschema unless opts.NoSchema is set.
// hashNames may be nil to skip label resolution.
func (r *Runner) Export(ctx context.Context, inputs []string, hashNames *hashes.HashNameTable, opts ExportOptions) error {
	if opts.OutDir == "" {
		return fmt.Errorf("no output directory set")
	}
	if hashNames == nil {
		hashNames = hashes.Empty()
	}

	ser, err := convert.NewSerializer(normFormat(opts.Format), convert.Options{
		Typed:  opts.Typed,
		Pretty: opts.Pretty,
		Delim:  opts.Delim,
	})
	if err != nil {
		return err
	}

	files, root, err := listInputs(r.fs, inputs, "bdat")
	if err != nil {
		return err
	}

	tblFilter := filter.NewNameFilter(opts.Tables...)
	colFilter := filter.NewNameFilter(opts.Columns...)

	r.logger.Info("starting export",
		zap.Int("files", len(files)),
		zap.String("format", normFormat(opts.Format)),
		zap.Int("hash_names", hashNames.Len()))

	exec := async.NewActionExecutor(ctx, func(ctx context.Context, fp string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.exportFile(ctx, fp, root, ser, hashNames, tblFilter, colFilter, opts)
		if err != nil {
			return errors.Wrapf(err, "exporting %s", fp)
		}
		opts.Progress.fileDone()
		return nil
	}, poolSize(opts.Jobs))

	for _, fp := range files {
		exec.Execute(fp)
	}
	return exec.WaitForEmpty()
}

func (r *Runner) exportFile(
	ctx context.Context,
	fp, root string,
	ser convert.Serializer,
	hashNames *hashes.HashNameTable,
	tblFilter, colFilter *filter.NameFilter,
	opts ExportOptions,
) error {
	rd, err := r.fs.OpenForRead(fp)
	if err != nil {
		return err
	}
	f, err := r.cdc.ReadFile(rd)
	rd.Close()
	if err != nil {
		return err
	}

	rel := relPath(root, fp)
	baseName := path.Base(rel)
	parentDir := path.Join(opts.OutDir, path.Dir(rel))
	tablesDir := path.Join(parentDir, fileStem(baseName))

	sch := fschema.New(baseName, f.Version)
	wroteDir := false
	for i := range f.Tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := &f.Tables[i]
		hashNames.RewriteTable(t)
		if t.Name == nil {
			r.logger.Warn("skipping unnamed table", zap.String("file", fp))
			continue
		}
		// the sidecar records every named table, selected or not, so a
		// filtered export can still be imported against the full file
		sch.FeedTable(t)

		tableName := t.Name.FileString()
		if !tblFilter.Contains(tableName) {
			continue
		}
		sel := projectColumns(t, colFilter)

		if !wroteDir {
			if err := r.fs.MkDirs(tablesDir); err != nil {
				return err
			}
			wroteDir = true
		}
		if err := r.writeTable(sel, ser, path.Join(tablesDir, ser.FileName(tableName))); err != nil {
			return errors.Wrapf(err, "table %s", tableName)
		}
		opts.Progress.tableDone(len(sel.Rows))
	}

	if opts.NoSchema {
		return nil
	}
	if !wroteDir {
		if err := r.fs.MkDirs(parentDir); err != nil {
			return err
		}
	}
	return sch.Write(r.fs, parentDir)
}

func (r *Runner) writeTable(t *bdat.Table, ser convert.Serializer, fp string) error {
	wr, err := r.fs.OpenForWrite(fp)
	if err != nil {
		return err
	}
	if err := ser.WriteTable(t, wr); err != nil {
		wr.Close()
		return err
	}
	return wr.Close()
}

// projectColumns narrows a table to the columns the filter selects. An empty
// filter returns the table unchanged.
func projectColumns(t *bdat.Table, colFilter *filter.NameFilter) *bdat.Table {
	if colFilter.Empty() {
		return t
	}

	var keep []int
	for i, col := range t.Columns {
		if colFilter.Contains(col.Label.FileString()) {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.Columns) {
		return t
	}

	sel := &bdat.Table{
		Name:    t.Name,
		Columns: make([]bdat.ColumnDef, len(keep)),
		Rows:    make([]bdat.Row, len(t.Rows)),
	}
	for j, i := range keep {
		sel.Columns[j] = t.Columns[i]
	}
	for ri, row := range t.Rows {
		cells := make([]bdat.Value, len(keep))
		for j, i := range keep {
			if i < len(row.Cells) {
				cells[j] = row.Cells[i]
			}
		}
		sel.Rows[ri] = bdat.Row{ID: row.ID, Cells: cells}
	}
	return sel
}

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
	"golang.org/x/sync/errgroup"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
	"github.com/dolthub/bdatconv/libraries/bdatcore/codec"
	"github.com/dolthub/bdatconv/libraries/bdatcore/convert"
	"github.com/dolthub/bdatconv/libraries/bdatcore/fschema"
	"github.com/dolthub/bdatconv/libraries/utils/async"
)

// Import rebuilds binary files from schema sidecars among inputs. For a
// sidecar <dir>/game.bdat.bschema the run reads <dir>/game/<Table>.<ext> for
// every table the schema records and writes <out>/<dir>/game.bdat. Tables of
// one file decode in parallel; the encode joins them in schema order.
func (r *Runner) Import(ctx context.Context, inputs []string, opts ImportOptions) error {
	if opts.OutDir == "" {
		return fmt.Errorf("no output directory set")
	}

	deser, err := convert.NewDeserializer(normFormat(opts.Format), convert.Options{
		Delim: opts.Delim,
	})
	if err != nil {
		return err
	}

	sidecars, root, err := listInputs(r.fs, inputs, fschema.Extension)
	if err != nil {
		return err
	}

	r.logger.Info("starting import",
		zap.Int("files", len(sidecars)),
		zap.String("format", normFormat(opts.Format)))

	exec := async.NewActionExecutor(ctx, func(ctx context.Context, fp string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.importFile(ctx, fp, root, deser, opts)
		if err != nil {
			return errors.Wrapf(err, "importing %s", fp)
		}
		opts.Progress.fileDone()
		return nil
	}, poolSize(opts.Jobs))

	for _, fp := range sidecars {
		exec.Execute(fp)
	}
	return exec.WaitForEmpty()
}

func (r *Runner) importFile(ctx context.Context, fp, root string, deser convert.Deserializer, opts ImportOptions) error {
	sch, err := fschema.Read(r.fs, fp)
	if err != nil {
		return err
	}

	tablesDir := path.Join(path.Dir(fp), fileStem(sch.FileName))
	tableFiles, err := sch.TableFiles(r.fs, tablesDir, deser.TableExtension())
	if err != nil {
		return err
	}

	tables := make([]bdat.Table, len(tableFiles))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, tf := range tableFiles {
		i, tf := i, tf
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			t, err := r.readTable(tf, sch, deser)
			if err != nil {
				return err
			}
			tables[i] = *t
			opts.Progress.tableDone(len(t.Rows))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	rel := relPath(root, fp)
	outPath := path.Join(opts.OutDir, path.Dir(rel), sch.FileName)
	if err := r.fs.MkDirs(path.Dir(outPath)); err != nil {
		return err
	}
	wr, err := r.fs.OpenForWrite(outPath)
	if err != nil {
		return err
	}
	f := &codec.File{Version: sch.Version, Tables: tables}
	if err := r.cdc.WriteFile(wr, f); err != nil {
		wr.Close()
		return err
	}
	return wr.Close()
}

func (r *Runner) readTable(tf fschema.TableFile, sch *fschema.FileSchema, deser convert.Deserializer) (*bdat.Table, error) {
	rd, err := r.fs.OpenForRead(tf.Path)
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	// the sidecar map keys table names by their written form; whether that
	// form is a raw hash follows from the file's format version
	name := bdat.ParseLabel(tf.Table, sch.Version.LabelsHashed())
	return deser.ReadTable(&name, sch, rd)
}

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
	"bytes"
	"context"
	"encoding/binary"
	goerrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dolthub/bdatconv/libraries/bdatcore/bdat"
	"github.com/dolthub/bdatconv/libraries/bdatcore/codec"
	"github.com/dolthub/bdatconv/libraries/bdatcore/convert"
	"github.com/dolthub/bdatconv/libraries/bdatcore/fschema"
	"github.com/dolthub/bdatconv/libraries/bdatcore/hashes"
	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

func resolved(name string) bdat.Label {
	return bdat.ResolvedLabel(name, bdat.HashName(name))
}

// testResolver knows every resolvable name in modernFile. The binary form
// stores hashed labels as bare hashes, so exporting without it yields
// hex-named files.
func testResolver(t *testing.T) *hashes.HashNameTable {
	names, err := hashes.Load(strings.NewReader("Enemy\nItem\nid\ndrop\ntags\nnames\nrefs\nFang\n"))
	require.NoError(t, err)
	return names
}

// modernFile uses hashed labels throughout and covers scalar, array, and
// hashref columns. Table names sort in file order so a rebuilt file is
// byte-identical to its source.
func modernFile() *codec.File {
	enemy := resolved("Enemy")
	item := resolved("Item")
	return &codec.File{
		Version: bdat.VersionModern,
		Tables: []bdat.Table{
			{
				Name: &enemy,
				Columns: []bdat.ColumnDef{
					{Label: resolved("id"), Type: bdat.Scalar(bdat.Int32)},
					{Label: bdat.HashLabel(0xa1b2c3d4), Type: bdat.Scalar(bdat.String)},
					{Label: resolved("drop"), Type: bdat.Scalar(bdat.HashRef)},
				},
				Rows: []bdat.Row{
					{ID: 1, Cells: []bdat.Value{int32(7), "Slime", bdat.HashLabel(0x0badf00d)}},
					{ID: 2, Cells: []bdat.Value{int32(9), "Wolf", resolved("Fang")}},
				},
			},
			{
				Name: &item,
				Columns: []bdat.ColumnDef{
					{Label: resolved("id"), Type: bdat.Scalar(bdat.UInt16)},
					{Label: resolved("tags"), Type: bdat.ArrayOf(bdat.Int32)},
					{Label: resolved("names"), Type: bdat.ArrayOf(bdat.String)},
					{Label: resolved("refs"), Type: bdat.ArrayOf(bdat.HashRef)},
				},
				Rows: []bdat.Row{
					{ID: 1, Cells: []bdat.Value{
						uint16(3), []int32{-1, 2}, []string{"a|b", ""},
						[]bdat.Label{bdat.HashLabel(0xffffffff), resolved("Fang")},
					}},
					{ID: 4, Cells: []bdat.Value{
						uint16(0), []int32{}, []string{}, []bdat.Label{},
					}},
				},
			},
		},
	}
}

func legacyFile() *codec.File {
	stats := bdat.NameLabel("Stats")
	return &codec.File{
		Version: bdat.VersionLegacy,
		Tables: []bdat.Table{
			{
				Name: &stats,
				Columns: []bdat.ColumnDef{
					{Label: bdat.NameLabel("hp"), Type: bdat.Scalar(bdat.UInt8)},
					{Label: bdat.NameLabel("rate"), Type: bdat.Scalar(bdat.Float32)},
				},
				Rows: []bdat.Row{
					{ID: 1, Cells: []bdat.Value{uint8(200), float32(0.25)}},
				},
			},
		},
	}
}

func encodeFile(t *testing.T, cdc codec.Codec, f *codec.File) []byte {
	var buf bytes.Buffer
	require.NoError(t, cdc.WriteFile(&buf, f))
	return buf.Bytes()
}

func newTestRunner(files map[string][]byte) (*Runner, *filesys.InMemFS) {
	fs := filesys.NewInMemFS(nil, files)
	return NewRunner(fs, codec.New(binary.LittleEndian), zap.NewNop()), fs
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "csv"} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			cdc := codec.New(binary.LittleEndian)
			origGame := encodeFile(t, cdc, modernFile())
			origExtra := encodeFile(t, cdc, legacyFile())

			r, fs := newTestRunner(map[string][]byte{
				"/in/game.bdat":      origGame,
				"/in/dlc/extra.bdat": origExtra,
			})

			prog := &Progress{}
			err := r.Export(ctx, []string{"/in"}, testResolver(t), ExportOptions{
				OutDir:   "/out",
				Format:   format,
				Progress: prog,
			})
			require.NoError(t, err)

			ext := "." + format
			for _, fp := range []string{
				"/out/game/Enemy" + ext,
				"/out/game/Item" + ext,
				"/out/game.bdat.bschema",
				"/out/dlc/extra/Stats" + ext,
				"/out/dlc/extra.bdat.bschema",
			} {
				exists, isDir := fs.Exists(fp)
				assert.True(t, exists && !isDir, "expected file %s", fp)
			}
			files, tables, rows := prog.Counts()
			assert.Equal(t, uint64(2), files)
			assert.Equal(t, uint64(3), tables)
			assert.Equal(t, uint64(5), rows)

			err = r.Import(ctx, []string{"/out"}, ImportOptions{
				OutDir: "/rebuilt",
				Format: format,
			})
			require.NoError(t, err)

			rebuilt, err := fs.ReadFile("/rebuilt/game.bdat")
			require.NoError(t, err)
			assert.Equal(t, origGame, rebuilt)

			rebuilt, err = fs.ReadFile("/rebuilt/dlc/extra.bdat")
			require.NoError(t, err)
			assert.Equal(t, origExtra, rebuilt)
		})
	}
}

func TestExportTableFilterKeepsSchemaComplete(t *testing.T) {
	ctx := context.Background()
	cdc := codec.New(binary.LittleEndian)
	r, fs := newTestRunner(map[string][]byte{
		"/in/game.bdat": encodeFile(t, cdc, modernFile()),
	})

	err := r.Export(ctx, []string{"/in/game.bdat"}, testResolver(t), ExportOptions{
		OutDir: "/out",
		Tables: []string{"Enemy"},
	})
	require.NoError(t, err)

	exists, _ := fs.Exists("/out/game/Enemy.json")
	assert.True(t, exists)
	exists, _ = fs.Exists("/out/game/Item.json")
	assert.False(t, exists)

	// the sidecar still describes the whole file
	sch, err := fschema.Read(fs, "/out/game.bdat.bschema")
	require.NoError(t, err)
	assert.Equal(t, 2, sch.TableCount())
	assert.Equal(t, []string{"Enemy", "Item"}, sch.TableNames())
}

func TestExportColumnFilter(t *testing.T) {
	ctx := context.Background()
	cdc := codec.New(binary.LittleEndian)
	r, fs := newTestRunner(map[string][]byte{
		"/in/game.bdat": encodeFile(t, cdc, modernFile()),
	})

	err := r.Export(ctx, []string{"/in/game.bdat"}, testResolver(t), ExportOptions{
		OutDir:  "/out",
		Tables:  []string{"Enemy"},
		Columns: []string{"id"},
	})
	require.NoError(t, err)

	doc, err := fs.ReadFile("/out/game/Enemy.json")
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"id":7`)
	assert.NotContains(t, string(doc), "Slime")

	// column selection narrows documents, never the sidecar
	sch, err := fschema.Read(fs, "/out/game.bdat.bschema")
	require.NoError(t, err)
	cols, ok := sch.Columns("Enemy")
	require.True(t, ok)
	assert.Len(t, cols, 3)
}

func TestExportUnnamedTableSkipped(t *testing.T) {
	ctx := context.Background()
	cdc := codec.New(binary.LittleEndian)

	f := modernFile()
	f.Tables[1].Name = nil
	r, fs := newTestRunner(map[string][]byte{
		"/in/game.bdat": encodeFile(t, cdc, f),
	})

	err := r.Export(ctx, []string{"/in/game.bdat"}, testResolver(t), ExportOptions{OutDir: "/out"})
	require.NoError(t, err)

	exists, _ := fs.Exists("/out/game/Enemy.json")
	assert.True(t, exists)

	sch, err := fschema.Read(fs, "/out/game.bdat.bschema")
	require.NoError(t, err)
	assert.Equal(t, []string{"Enemy"}, sch.TableNames())
}

func TestExportFailFast(t *testing.T) {
	ctx := context.Background()
	cdc := codec.New(binary.LittleEndian)
	good := encodeFile(t, cdc, legacyFile())

	r, fs := newTestRunner(map[string][]byte{
		"/in/a.bdat": good,
		"/in/b.bdat": good,
		"/in/c.bdat": []byte("this is not a table file"),
		"/in/d.bdat": good,
		"/in/e.bdat": good,
	})

	prog := &Progress{}
	err := r.Export(ctx, []string{"/in"}, nil, ExportOptions{
		OutDir:   "/out",
		Jobs:     1,
		Progress: prog,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/in/c.bdat")

	// with one worker and sorted scheduling, nothing past the failure starts
	files, _, _ := prog.Counts()
	assert.Equal(t, uint64(2), files)
	exists, _ := fs.Exists("/out/d")
	assert.False(t, exists)
}

func TestExportHashResolution(t *testing.T) {
	ctx := context.Background()
	cdc := codec.New(binary.LittleEndian)

	enemy := bdat.HashLabel(bdat.HashName("Enemy"))
	f := &codec.File{
		Version: bdat.VersionModern,
		Tables: []bdat.Table{
			{
				Name: &enemy,
				Columns: []bdat.ColumnDef{
					{Label: bdat.HashLabel(bdat.HashName("id")), Type: bdat.Scalar(bdat.Int32)},
					{Label: bdat.HashLabel(bdat.HashName("drop")), Type: bdat.Scalar(bdat.HashRef)},
				},
				Rows: []bdat.Row{
					{ID: 1, Cells: []bdat.Value{int32(7), bdat.HashLabel(bdat.HashName("Fang"))}},
				},
			},
		},
	}
	orig := encodeFile(t, cdc, f)

	r, fs := newTestRunner(map[string][]byte{"/in/game.bdat": orig})

	names, err := hashes.Load(strings.NewReader("Enemy\nid\ndrop\nFang\n"))
	require.NoError(t, err)

	err = r.Export(ctx, []string{"/in/game.bdat"}, names, ExportOptions{OutDir: "/out"})
	require.NoError(t, err)

	// resolution names the output file and the cells
	doc, err := fs.ReadFile("/out/game/Enemy.json")
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"drop":"Fang"`)

	// resolved labels re-hash to their source values on import
	err = r.Import(ctx, []string{"/out"}, ImportOptions{OutDir: "/rebuilt"})
	require.NoError(t, err)
	rebuilt, err := fs.ReadFile("/rebuilt/game.bdat")
	require.NoError(t, err)
	assert.Equal(t, orig, rebuilt)
}

func TestExportTypedNoSchema(t *testing.T) {
	ctx := context.Background()
	cdc := codec.New(binary.LittleEndian)
	r, fs := newTestRunner(map[string][]byte{
		"/in/game.bdat": encodeFile(t, cdc, modernFile()),
	})

	err := r.Export(ctx, []string{"/in/game.bdat"}, testResolver(t), ExportOptions{
		OutDir:   "/out",
		Typed:    true,
		NoSchema: true,
	})
	require.NoError(t, err)

	exists, _ := fs.Exists("/out/game.bdat.bschema")
	assert.False(t, exists)
	doc, err := fs.ReadFile("/out/game/Enemy.json")
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"schema"`)

	// schema-less output has no sidecars to import from
	err = r.Import(ctx, []string{"/out"}, ImportOptions{OutDir: "/rebuilt"})
	require.Error(t, err)
}

func TestImportMalformedRow(t *testing.T) {
	ctx := context.Background()
	cdc := codec.New(binary.LittleEndian)
	r, fs := newTestRunner(map[string][]byte{
		"/in/game.bdat": encodeFile(t, cdc, modernFile()),
	})

	require.NoError(t, r.Export(ctx, []string{"/in/game.bdat"}, testResolver(t), ExportOptions{OutDir: "/out"}))
	require.NoError(t, fs.WriteFile("/out/game/Enemy.json", []byte(`{"rows":[{"$id":3,"id":1}]}`)))

	err := r.Import(ctx, []string{"/out"}, ImportOptions{OutDir: "/rebuilt"})
	require.Error(t, err)
	mre := &convert.MalformedRowError{}
	require.True(t, goerrors.As(err, &mre), "got %v", err)
	assert.Equal(t, 3, mre.RowID)
}

func TestImportMissingTableFile(t *testing.T) {
	ctx := context.Background()

	sch := fschema.New("solo.bdat", bdat.VersionLegacy)
	sch.Tables["Ghost"] = []fschema.ColumnSchema{
		{Name: "id", Type: bdat.Scalar(bdat.Int32)},
	}
	r, fs := newTestRunner(nil)
	require.NoError(t, fs.MkDirs("/out"))
	require.NoError(t, sch.Write(fs, "/out"))

	err := r.Import(ctx, []string{"/out"}, ImportOptions{OutDir: "/rebuilt"})
	require.Error(t, err)
	mtfe := &fschema.MissingTableFileError{}
	assert.True(t, goerrors.As(err, &mtfe), "got %v", err)
}

func TestExportRequiresOutDir(t *testing.T) {
	r, _ := newTestRunner(nil)
	err := r.Export(context.Background(), []string{"/in"}, nil, ExportOptions{})
	require.Error(t, err)
	err = r.Import(context.Background(), []string{"/in"}, ImportOptions{})
	require.Error(t, err)
}

func TestUnknownFormatRejectedBeforeIO(t *testing.T) {
	r, _ := newTestRunner(nil)
	err := r.Export(context.Background(), []string{"/nope"}, nil, ExportOptions{
		OutDir: "/out",
		Format: "xml",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown file type")
}

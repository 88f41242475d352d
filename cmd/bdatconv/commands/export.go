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

package commands

import (
	"context"
	"encoding/binary"

	"github.com/fatih/color"

	"github.com/dolthub/bdatconv/cmd/bdatconv/cli"
	"github.com/dolthub/bdatconv/libraries/bdatcore/batch"
	"github.com/dolthub/bdatconv/libraries/bdatcore/codec"
	"github.com/dolthub/bdatconv/libraries/bdatcore/hashes"
	"github.com/dolthub/bdatconv/libraries/bdatcore/toolcfg"
	"github.com/dolthub/bdatconv/libraries/utils/argparser"
)

const exportDesc = "Convert binary table files into per-table text documents plus a schema sidecar."

// ExportCmd converts .bdat files to text.
type ExportCmd struct{}

func (cmd ExportCmd) Name() string {
	return "export"
}

func (cmd ExportCmd) Description() string {
	return "Converts binary table files into editable text."
}

func (cmd ExportCmd) ArgParser() *argparser.ArgParser {
	ap := argparser.NewArgParser(cmd.Name())
	ap.SupportsString(outParam, "o", "dir", "Root directory for converted output.")
	ap.SupportsValidatedString(formatParam, "f", "format", "Text format to write, json or csv. Defaults to json.",
		argparser.ValidatorFromStrList(formatParam, supportedFormats))
	ap.SupportsFlag(untypedParam, "", "Leave column types out of table documents; the schema sidecar stays authoritative.")
	ap.SupportsFlag(noSchemaParam, "", "Skip writing schema sidecars. Such output cannot be imported unless typed.")
	ap.SupportsStringList(tableParam, "t", "name", "Convert only tables matching this name or pattern. May be repeated.")
	ap.SupportsStringList(columnParam, "c", "name", "Convert only columns matching this name or pattern. May be repeated.")
	ap.SupportsInt(jobsParam, "j", "n", "Number of files converted in parallel. Defaults to the CPU count.")
	ap.SupportsFlag(prettyParam, "", "Indent JSON output.")
	ap.SupportsString(delimParam, "", "char", "CSV field delimiter. Defaults to ','.")
	ap.SupportsString(hashesParam, "", "file", "File of known label names for hash resolution, one per line.")
	ap.SupportsString(configParam, "", "file", "YAML file of run defaults. Flags take precedence.")
	return ap
}

func (cmd ExportCmd) Exec(ctx context.Context, commandStr string, args []string, env *cli.Env) int {
	ap := cmd.ArgParser()
	apr, err := ap.Parse(args)
	if err != nil {
		return handleParseError(commandStr, exportDesc, ap, err)
	}

	cfg, err := loadConfig(apr, env.FS)
	if err != nil {
		cli.PrintErrln(color.RedString(err.Error()))
		return 1
	}

	outDir := apr.GetValueOrDefault(outParam, toolcfg.String(cfg.OutDir, ""))
	if outDir == "" {
		cli.PrintErrln(color.RedString("no output directory: pass -o or set out_dir in the config file"))
		return 1
	}
	if apr.NArg() == 0 {
		cli.PrintErrln(color.RedString("no input files or directories given"))
		return 1
	}

	delim, err := parseDelim(apr.GetValueOrDefault(delimParam, toolcfg.String(cfg.Delimiter, ",")))
	if err != nil {
		cli.PrintErrln(color.RedString(err.Error()))
		return 1
	}

	tables := apr.GetValues(tableParam)
	if len(tables) == 0 {
		tables = cfg.Tables
	}
	columns := apr.GetValues(columnParam)
	if len(columns) == 0 {
		columns = cfg.Columns
	}

	hashNames := hashes.Empty()
	if fp := apr.GetValueOrDefault(hashesParam, toolcfg.String(cfg.HashFile, "")); fp != "" {
		hashNames, err = hashes.LoadFile(env.FS, fp)
		if err != nil {
			cli.PrintErrln(color.RedString(err.Error()))
			return 1
		}
	}

	prog := &batch.Progress{}
	opts := batch.ExportOptions{
		OutDir:   outDir,
		Format:   apr.GetValueOrDefault(formatParam, toolcfg.String(cfg.Format, "json")),
		Typed:    !apr.Contains(untypedParam) && toolcfg.Bool(cfg.Typed, true),
		NoSchema: apr.Contains(noSchemaParam) || toolcfg.Bool(cfg.NoSchema, false),
		Tables:   tables,
		Columns:  columns,
		Jobs:     apr.GetInt(jobsParam, toolcfg.Int(cfg.Jobs, 0)),
		Pretty:   apr.Contains(prettyParam) || toolcfg.Bool(cfg.Pretty, false),
		Delim:    delim,
		Progress: prog,
	}

	runner := batch.NewRunner(env.FS, codec.New(binary.LittleEndian), env.Logger)
	err = runWithProgress(prog, "exported", func() error {
		return runner.Export(ctx, apr.Args(), hashNames, opts)
	})
	if err != nil {
		cli.PrintErrln(color.RedString("export failed: " + err.Error()))
		return 1
	}

	cli.Println(statusLine(prog, "Exported"))
	return 0
}

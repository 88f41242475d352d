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
	"github.com/dolthub/bdatconv/libraries/bdatcore/toolcfg"
	"github.com/dolthub/bdatconv/libraries/utils/argparser"
)

const importDesc = "Rebuild binary table files from schema sidecars and their per-table text documents."

// ImportCmd converts text back to .bdat files.
type ImportCmd struct{}

func (cmd ImportCmd) Name() string {
	return "import"
}

func (cmd ImportCmd) Description() string {
	return "Rebuilds binary table files from converted text."
}

func (cmd ImportCmd) ArgParser() *argparser.ArgParser {
	ap := argparser.NewArgParser(cmd.Name())
	ap.SupportsString(outParam, "o", "dir", "Root directory for rebuilt binary files.")
	ap.SupportsValidatedString(formatParam, "f", "format", "Text format to read, json or csv. Defaults to json.",
		argparser.ValidatorFromStrList(formatParam, supportedFormats))
	ap.SupportsInt(jobsParam, "j", "n", "Number of files rebuilt in parallel. Defaults to the CPU count.")
	ap.SupportsString(delimParam, "", "char", "CSV field delimiter. Defaults to ','.")
	ap.SupportsString(configParam, "", "file", "YAML file of run defaults. Flags take precedence.")
	return ap
}

func (cmd ImportCmd) Exec(ctx context.Context, commandStr string, args []string, env *cli.Env) int {
	ap := cmd.ArgParser()
	apr, err := ap.Parse(args)
	if err != nil {
		return handleParseError(commandStr, importDesc, ap, err)
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

	prog := &batch.Progress{}
	opts := batch.ImportOptions{
		OutDir:   outDir,
		Format:   apr.GetValueOrDefault(formatParam, toolcfg.String(cfg.Format, "json")),
		Jobs:     apr.GetInt(jobsParam, toolcfg.Int(cfg.Jobs, 0)),
		Delim:    delim,
		Progress: prog,
	}

	runner := batch.NewRunner(env.FS, codec.New(binary.LittleEndian), env.Logger)
	err = runWithProgress(prog, "imported", func() error {
		return runner.Import(ctx, apr.Args(), opts)
	})
	if err != nil {
		cli.PrintErrln(color.RedString("import failed: " + err.Error()))
		return 1
	}

	cli.Println(statusLine(prog, "Imported"))
	return 0
}

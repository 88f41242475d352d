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

// Package commands implements the tool's subcommands.
package commands

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/dolthub/bdatconv/cmd/bdatconv/cli"
	"github.com/dolthub/bdatconv/libraries/bdatcore/batch"
	"github.com/dolthub/bdatconv/libraries/bdatcore/toolcfg"
	"github.com/dolthub/bdatconv/libraries/utils/argparser"
	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

const (
	outParam      = "out"
	formatParam   = "format"
	untypedParam  = "untyped"
	noSchemaParam = "no-schema"
	tableParam    = "table"
	columnParam   = "column"
	jobsParam     = "jobs"
	prettyParam   = "pretty"
	delimParam    = "delim"
	hashesParam   = "hashes"
	configParam   = "config"
)

var supportedFormats = []string{"json", "csv"}

// handleParseError turns an argparser error into an exit code, printing help
// for the universal help flag.
func handleParseError(commandStr, desc string, ap *argparser.ArgParser, err error) int {
	if err == argparser.ErrHelp {
		cli.PrintHelp(commandStr, desc, ap)
		return 0
	}
	cli.PrintErrln(color.RedString(err.Error()))
	return 1
}

// loadConfig reads the --config file if one was given, otherwise returns an
// empty config so callers can read defaults from it unconditionally.
func loadConfig(apr *argparser.ArgParseResults, fs filesys.ReadableFS) (*toolcfg.Config, error) {
	fp, ok := apr.GetValue(configParam)
	if !ok {
		return &toolcfg.Config{}, nil
	}
	return toolcfg.Load(fs, fp)
}

// parseDelim vets a delimiter argument as a single character.
func parseDelim(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r, nil
}

// runWithProgress runs the given function, rendering a single in-place
// status line while it runs when stdout is a terminal.
func runWithProgress(prog *batch.Progress, verb string, run func() error) error {
	if !cli.OutputIsTTY() {
		return run()
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		prevLen := 0
		for {
			select {
			case <-done:
				cli.DeleteAndPrint(prevLen, statusLine(prog, verb))
				cli.Println()
				return
			case <-ticker.C:
				prevLen = cli.DeleteAndPrint(prevLen, statusLine(prog, verb))
			}
		}
	}()

	err := run()
	close(done)
	wg.Wait()
	return err
}

func statusLine(prog *batch.Progress, verb string) string {
	files, tables, rows := prog.Counts()
	return fmt.Sprintf("%s %s files, %s tables, %s rows",
		verb,
		humanize.Comma(int64(files)),
		humanize.Comma(int64(tables)),
		humanize.Comma(int64(rows)))
}

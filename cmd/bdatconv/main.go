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

package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dolthub/bdatconv/cmd/bdatconv/cli"
	"github.com/dolthub/bdatconv/cmd/bdatconv/commands"
	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

const version = "0.3.0"

var subCommands = cli.NewSubCommandHandler("bdatconv", "Schema-driven BDAT to text converter.", []cli.Command{
	commands.ExportCmd{},
	commands.ImportCmd{},
})

func main() {
	args := os.Args[1:]

	verbose := false
	filtered := args[:0]
	for _, arg := range args {
		if arg == "-v" || arg == "--verbose" {
			verbose = true
			continue
		}
		filtered = append(filtered, arg)
	}
	args = filtered

	if len(args) == 1 && args[0] == "--version" {
		cli.Println("bdatconv version", version)
		os.Exit(0)
	}

	logger := newLogger(verbose)
	defer logger.Sync()

	env := &cli.Env{
		FS:     filesys.LocalFS,
		Logger: logger.With(zap.String("run_id", uuid.New().String())),
	}
	os.Exit(subCommands.Exec(context.Background(), "bdatconv", args, env))
}

// newLogger builds a console logger on stderr so log lines never interleave
// with converted output or the progress line on stdout.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

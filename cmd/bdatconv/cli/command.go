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

package cli

import (
	"context"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/dolthub/bdatconv/libraries/utils/argparser"
	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

// Env carries the ambient collaborators a command runs against.
type Env struct {
	// FS is the filesystem commands convert against.
	FS filesys.Filesys
	// Logger is the run's logger; never nil.
	Logger *zap.Logger
}

// Command is the interface which defines a cli command.
type Command interface {
	// Name returns the name of the command. This is what is used on the
	// command line to invoke the command.
	Name() string
	// Description returns a description of the command.
	Description() string
	// ArgParser returns the parser for the command's arguments, used for
	// both parsing and help text.
	ArgParser() *argparser.ArgParser
	// Exec executes the command.
	Exec(ctx context.Context, commandStr string, args []string, env *Env) int
}

func isHelp(str string) bool {
	switch {
	case str == "-h":
		return true
	case strings.TrimLeft(str, "- ") == "help":
		return true
	}

	return false
}

// SubCommandHandler is a command implementation which holds subcommands
// which can be called.
type SubCommandHandler struct {
	name        string
	description string
	Subcommands []Command
}

// NewSubCommandHandler returns a new SubCommandHandler instance.
func NewSubCommandHandler(name, description string, subcommands []Command) SubCommandHandler {
	return SubCommandHandler{name, description, subcommands}
}

func (hc SubCommandHandler) Name() string {
	return hc.name
}

func (hc SubCommandHandler) Description() string {
	return hc.description
}

func (hc SubCommandHandler) ArgParser() *argparser.ArgParser {
	return argparser.NewArgParser(hc.name)
}

func (hc SubCommandHandler) Exec(ctx context.Context, commandStr string, args []string, env *Env) int {
	if len(args) < 1 {
		hc.printUsage(commandStr)
		return 1
	}

	subCommandStr := strings.ToLower(strings.TrimSpace(args[0]))
	for _, cmd := range hc.Subcommands {
		if strings.ToLower(cmd.Name()) == subCommandStr {
			return cmd.Exec(ctx, commandStr+" "+subCommandStr, args[1:], env)
		}
	}

	if !isHelp(subCommandStr) {
		PrintErrln(color.RedString("Unknown Command " + subCommandStr))
	}

	hc.printUsage(commandStr)
	return 1
}

func (hc SubCommandHandler) printUsage(commandStr string) {
	Println("Valid commands for", commandStr, "are")

	for _, cmd := range hc.Subcommands {
		Printf("    %16s - %s\n", cmd.Name(), cmd.Description())
	}
}

// PrintHelp writes a command's usage and supported options.
func PrintHelp(commandStr string, desc string, ap *argparser.ArgParser) {
	Println("usage:", commandStr, "[<options>] <input>...")
	Println()
	Println(desc)

	if len(ap.Supported) == 0 {
		return
	}

	Println()
	Println("options:")
	for _, opt := range ap.Supported {
		name := "--" + opt.Name
		if opt.Abbrev != "" {
			name = "-" + opt.Abbrev + ", " + name
		}
		if opt.ValDesc != "" {
			name += " <" + opt.ValDesc + ">"
		}
		Printf("    %-28s %s\n", name, opt.Desc)
	}
}

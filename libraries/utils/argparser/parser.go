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

// Package argparser parses command line options for the tool's subcommands.
// Options are declared up front with the Supports* methods; anything else on
// the command line is an error or a positional argument.
package argparser

import (
	"errors"
	"strings"
)

const (
	helpFlag       = "help"
	helpFlagAbbrev = "h"
)

type ArgParser struct {
	Name              string
	Supported         []*Option
	nameOrAbbrevToOpt map[string]*Option
}

// NewArgParser creates an ArgParser for a named command.
func NewArgParser(name string) *ArgParser {
	return &ArgParser{
		Name:              name,
		nameOrAbbrevToOpt: make(map[string]*Option),
	}
}

// SupportOption adds support for a new argument with the option given.
// Options must have a unique name and abbreviated name.
func (ap *ArgParser) SupportOption(opt *Option) {
	name := opt.Name
	abbrev := opt.Abbrev

	_, nameExist := ap.nameOrAbbrevToOpt[name]
	_, abbrevExist := ap.nameOrAbbrevToOpt[abbrev]

	if name == "" {
		panic("Name is required")
	} else if name == "help" || abbrev == "help" || name == "h" || abbrev == "h" {
		panic(`"help" and "h" are both reserved`)
	} else if nameExist || abbrevExist {
		panic("There is a bug.  Two supported arguments have the same name or abbreviation")
	} else if name[0] == '-' || (len(abbrev) > 0 && abbrev[0] == '-') {
		panic("There is a bug. Option names, and abbreviations should not start with -")
	}

	ap.Supported = append(ap.Supported, opt)
	ap.nameOrAbbrevToOpt[name] = opt
	if abbrev != "" {
		ap.nameOrAbbrevToOpt[abbrev] = opt
	}
}

// SupportsFlag adds support for a new flag (argument with no value).
func (ap *ArgParser) SupportsFlag(name, abbrev, desc string) *ArgParser {
	ap.SupportOption(&Option{Name: name, Abbrev: abbrev, OptType: OptionalFlag, Desc: desc})
	return ap
}

// SupportsString adds support for a new string argument.
func (ap *ArgParser) SupportsString(name, abbrev, valDesc, desc string) *ArgParser {
	ap.SupportOption(&Option{Name: name, Abbrev: abbrev, ValDesc: valDesc, OptType: OptionalValue, Desc: desc})
	return ap
}

// SupportsValidatedString adds support for a new string argument vetted by
// the given validator.
func (ap *ArgParser) SupportsValidatedString(name, abbrev, valDesc, desc string, validator ValidationFunc) *ArgParser {
	ap.SupportOption(&Option{Name: name, Abbrev: abbrev, ValDesc: valDesc, OptType: OptionalValue, Desc: desc, Validator: validator})
	return ap
}

// SupportsStringList adds support for a string argument that may be given
// multiple times; occurrences accumulate.
func (ap *ArgParser) SupportsStringList(name, abbrev, valDesc, desc string) *ArgParser {
	ap.SupportOption(&Option{Name: name, Abbrev: abbrev, ValDesc: valDesc, OptType: OptionalValue, Desc: desc, AllowList: true})
	return ap
}

// SupportsInt adds support for a new int argument.
func (ap *ArgParser) SupportsInt(name, abbrev, valDesc, desc string) *ArgParser {
	ap.SupportOption(&Option{Name: name, Abbrev: abbrev, ValDesc: valDesc, OptType: OptionalValue, Desc: desc, Validator: isIntStr})
	return ap
}

// Parse parses the string args given using the configuration previously
// specified with calls to the various Supports* methods. Any unrecognized
// arguments result in an appropriate error being returned. If the universal
// --help or -h flag is found, ErrHelp is returned.
func (ap *ArgParser) Parse(args []string) (*ArgParseResults, error) {
	positionalArgs := make([]string, 0, 16)
	namedArgs := make(map[string][]string)
	onlyPositionalArgsLeft := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) == 0 || arg[0] != '-' || onlyPositionalArgsLeft {
			positionalArgs = append(positionalArgs, arg)
			continue
		}
		if arg == "--" {
			onlyPositionalArgsLeft = true
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if name == helpFlag || name == helpFlagAbbrev {
			return nil, ErrHelp
		}

		var value string
		var hasValue bool
		if idx := strings.IndexByte(name, '='); idx != -1 {
			name, value = name[:idx], name[idx+1:]
			hasValue = true
		}

		opt, ok := ap.nameOrAbbrevToOpt[name]
		if !ok {
			return nil, UnknownArgumentParam{name: name}
		}

		if opt.OptType == OptionalFlag {
			if hasValue {
				return nil, errors.New("error: flag `" + opt.Name + "' does not take a value")
			}
			if _, exists := namedArgs[opt.Name]; exists {
				return nil, errors.New("error: multiple values provided for `" + opt.Name + "'")
			}
			namedArgs[opt.Name] = nil
			continue
		}

		if !hasValue {
			if i+1 >= len(args) {
				return nil, errors.New("error: no value for option `" + opt.Name + "'")
			}
			i++
			value = args[i]
		}
		if opt.Validator != nil {
			if err := opt.Validator(value); err != nil {
				return nil, err
			}
		}
		if _, exists := namedArgs[opt.Name]; exists && !opt.AllowList {
			return nil, errors.New("error: multiple values provided for `" + opt.Name + "'")
		}
		namedArgs[opt.Name] = append(namedArgs[opt.Name], value)
	}

	return &ArgParseResults{namedArgs: namedArgs, args: positionalArgs, parser: ap}, nil
}

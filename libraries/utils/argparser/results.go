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

package argparser

import "strconv"

// ArgParseResults is the result of parsing a command line.
type ArgParseResults struct {
	namedArgs map[string][]string
	args      []string
	parser    *ArgParser
}

// Contains reports whether the named option or flag appeared.
func (res *ArgParseResults) Contains(name string) bool {
	_, ok := res.namedArgs[name]
	return ok
}

// GetValue returns the value of the named option and whether it appeared.
// For list options it returns the first occurrence.
func (res *ArgParseResults) GetValue(name string) (string, bool) {
	vals, ok := res.namedArgs[name]
	if !ok || len(vals) == 0 {
		return "", ok
	}
	return vals[0], true
}

// GetValueOrDefault returns the value of the named option, or defVal if it
// did not appear.
func (res *ArgParseResults) GetValueOrDefault(name, defVal string) string {
	if val, ok := res.GetValue(name); ok {
		return val
	}
	return defVal
}

// GetValues returns every occurrence of a list option.
func (res *ArgParseResults) GetValues(name string) []string {
	return res.namedArgs[name]
}

// GetInt returns the named option as an int, or defVal if it did not appear.
// The parser already vetted the value as an integer.
func (res *ArgParseResults) GetInt(name string, defVal int) int {
	val, ok := res.GetValue(name)
	if !ok {
		return defVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defVal
	}
	return n
}

// Args returns the positional arguments.
func (res *ArgParseResults) Args() []string {
	return res.args
}

// NArg returns the number of positional arguments.
func (res *ArgParseResults) NArg() int {
	return len(res.args)
}

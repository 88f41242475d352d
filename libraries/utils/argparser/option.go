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

import (
	"errors"
	"strconv"
)

// ErrHelp is returned from parsing when the universal --help or -h flag is
// found.
var ErrHelp = errors.New("Help")

// UnknownArgumentParam is the error for an option the parser does not
// support.
type UnknownArgumentParam struct {
	name string
}

func (unkn UnknownArgumentParam) Error() string {
	return "error: unknown option `" + unkn.name + "'"
}

type OptionType int

const (
	// OptionalFlag is an option with no value.
	OptionalFlag OptionType = iota
	// OptionalValue is an option that takes a value.
	OptionalValue
)

// ValidationFunc vets an option's value at parse time.
type ValidationFunc func(string) error

// An Option is a named argument a command supports.
type Option struct {
	Name      string
	Abbrev    string
	ValDesc   string
	OptType   OptionType
	Desc      string
	Validator ValidationFunc
	AllowList bool
}

func isIntStr(str string) error {
	if _, err := strconv.ParseInt(str, 10, 64); err != nil {
		return errors.New("error: '" + str + "' is not a valid int")
	}
	return nil
}

// ValidatorFromStrList returns a ValidationFunc accepting only the given
// values.
func ValidatorFromStrList(paramName string, validStrList []string) ValidationFunc {
	validStrSet := make(map[string]struct{})
	for _, str := range validStrList {
		validStrSet[str] = struct{}{}
	}
	return func(s string) error {
		if _, ok := validStrSet[s]; !ok {
			return errors.New(s + " is not a valid option for '" + paramName + "'")
		}
		return nil
	}
}

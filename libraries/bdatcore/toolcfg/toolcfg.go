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

// Package toolcfg reads the optional YAML defaults file. Every field is a
// pointer so that an unset field is distinguishable from a zero value;
// command line flags override anything set here.
package toolcfg

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

// Config holds run defaults loaded from a YAML file.
type Config struct {
	OutDir    *string  `yaml:"out_dir,omitempty"`
	Format    *string  `yaml:"format,omitempty"`
	Typed     *bool    `yaml:"typed,omitempty"`
	NoSchema  *bool    `yaml:"no_schema,omitempty"`
	Pretty    *bool    `yaml:"pretty,omitempty"`
	Delimiter *string  `yaml:"delimiter,omitempty"`
	Jobs      *int     `yaml:"jobs,omitempty"`
	HashFile  *string  `yaml:"hash_file,omitempty"`
	Tables    []string `yaml:"tables,omitempty"`
	Columns   []string `yaml:"columns,omitempty"`
}

// Load reads and parses a config file. Unknown keys are errors so a typo
// does not silently drop a setting.
func Load(fs filesys.ReadableFS, path string) (*Config, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read config file %s", path)
	}
	cfg := &Config{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "could not parse config file %s", path)
	}
	return cfg, nil
}

// String returns *p, or def when p is nil.
func String(p *string, def string) string {
	if p != nil {
		return *p
	}
	return def
}

// Bool returns *p, or def when p is nil.
func Bool(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

// Int returns *p, or def when p is nil.
func Int(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}

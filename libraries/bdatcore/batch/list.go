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
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

// listInputs expands the user-supplied inputs into the concrete files of a
// run. Directory inputs are walked recursively for files with the given
// extension; file inputs are taken as given. The returned root is the common
// directory of all files; output trees mirror the structure below it.
func listInputs(fs filesys.Filesys, inputs []string, ext string) (files []string, root string, err error) {
	suffix := "." + ext
	for _, in := range inputs {
		exists, isDir := fs.Exists(in)
		if !exists {
			return nil, "", fmt.Errorf("input %s does not exist", in)
		}
		if !isDir {
			files = append(files, in)
			continue
		}
		err = fs.Iter(in, true, func(p string, size int64, isDir bool) (stop bool) {
			if !isDir && strings.HasSuffix(p, suffix) {
				files = append(files, p)
			}
			return false
		})
		if err != nil {
			return nil, "", err
		}
	}

	sort.Strings(files)
	files = dedupe(files)
	if len(files) == 0 {
		return nil, "", fmt.Errorf("no %s files among the inputs", suffix)
	}
	return files, commonRoot(files), nil
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// commonRoot returns the longest directory prefix shared by every path.
func commonRoot(files []string) string {
	segs := strings.Split(path.Dir(files[0]), "/")
	for _, f := range files[1:] {
		other := strings.Split(path.Dir(f), "/")
		if len(other) < len(segs) {
			segs = segs[:len(other)]
		}
		for i := range segs {
			if segs[i] != other[i] {
				segs = segs[:i]
				break
			}
		}
	}
	return strings.Join(segs, "/")
}

// relPath strips the run root from a file path.
func relPath(root, fp string) string {
	if root == "" || root == "." {
		return fp
	}
	return strings.TrimPrefix(strings.TrimPrefix(fp, root), "/")
}

// fileStem strips the final extension from a file name.
func fileStem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

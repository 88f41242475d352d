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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/bdatconv/libraries/utils/filesys"
)

func TestListInputs(t *testing.T) {
	fs := filesys.NewInMemFS(nil, map[string][]byte{
		"/data/a.bdat":       {},
		"/data/sub/b.bdat":   {},
		"/data/sub/skip.txt": {},
		"/other/c.bdat":      {},
	})

	files, root, err := listInputs(fs, []string{"/data"}, "bdat")
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/a.bdat", "/data/sub/b.bdat"}, files)
	assert.Equal(t, "/data", root)

	// file inputs and directory inputs mix; duplicates collapse
	files, root, err = listInputs(fs, []string{"/data", "/data/a.bdat", "/other/c.bdat"}, "bdat")
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/a.bdat", "/data/sub/b.bdat", "/other/c.bdat"}, files)
	assert.Equal(t, "", root)

	_, _, err = listInputs(fs, []string{"/missing"}, "bdat")
	assert.Error(t, err)

	// a directory with no matching files is an error, not an empty run
	_, _, err = listInputs(fs, []string{"/data"}, "bschema")
	assert.Error(t, err)
}

func TestCommonRoot(t *testing.T) {
	tests := []struct {
		files []string
		root  string
	}{
		{[]string{"/a/b/c.bdat"}, "/a/b"},
		{[]string{"/a/b/c.bdat", "/a/b/d.bdat"}, "/a/b"},
		{[]string{"/a/b/c.bdat", "/a/x/d.bdat"}, "/a"},
		{[]string{"/a/c.bdat", "/b/d.bdat"}, ""},
		{[]string{"game.bdat"}, "."},
	}
	for _, test := range tests {
		assert.Equal(t, test.root, commonRoot(test.files))
	}
}

func TestRelPath(t *testing.T) {
	assert.Equal(t, "c.bdat", relPath("/a/b", "/a/b/c.bdat"))
	assert.Equal(t, "sub/c.bdat", relPath("/a/b", "/a/b/sub/c.bdat"))
	assert.Equal(t, "game.bdat", relPath(".", "game.bdat"))
	assert.Equal(t, "/a/c.bdat", relPath("", "/a/c.bdat"))
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "game", fileStem("game.bdat"))
	assert.Equal(t, "game.bdat", fileStem("game.bdat.bschema"))
	assert.Equal(t, "noext", fileStem("noext"))
}

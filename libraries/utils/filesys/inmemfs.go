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

package filesys

import (
	"bytes"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

// InMemFS is an in-memory Filesys implementation used in testing.
type InMemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
}

var _ Filesys = (*InMemFS)(nil)

// NewInMemFS creates an InMemFS with the given directories and files. Paths
// are rooted at "/".
func NewInMemFS(dirs []string, files map[string][]byte) *InMemFS {
	fs := &InMemFS{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
	}
	for _, dir := range dirs {
		fs.mkDirs(normPath(dir))
	}
	for fp, data := range files {
		fp = normPath(fp)
		fs.mkDirs(path.Dir(fp))
		fs.files[fp] = data
	}
	return fs
}

// EmptyInMemFS creates an empty InMemFS.
func EmptyInMemFS() *InMemFS {
	return NewInMemFS(nil, nil)
}

func normPath(fp string) string {
	fp = path.Clean(strings.ReplaceAll(fp, "\\", "/"))
	if !strings.HasPrefix(fp, "/") {
		fp = "/" + fp
	}
	return fp
}

func (fs *InMemFS) mkDirs(dir string) {
	for d := dir; ; d = path.Dir(d) {
		fs.dirs[d] = true
		if d == "/" {
			break
		}
	}
}

func (fs *InMemFS) Exists(fp string) (exists bool, isDir bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	fp = normPath(fp)
	if fs.dirs[fp] {
		return true, true
	}
	_, ok := fs.files[fp]
	return ok, false
}

func (fs *InMemFS) OpenForRead(fp string) (io.ReadCloser, error) {
	data, err := fs.ReadFile(fp)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (fs *InMemFS) ReadFile(fp string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	fp = normPath(fp)
	if fs.dirs[fp] {
		return nil, ErrIsDir
	}
	data, ok := fs.files[fp]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (fs *InMemFS) OpenForWrite(fp string) (io.WriteCloser, error) {
	return &memFileWriter{fs: fs, path: normPath(fp)}, nil
}

func (fs *InMemFS) WriteFile(fp string, data []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fp = normPath(fp)
	if fs.dirs[fp] {
		return ErrIsDir
	}
	fs.mkDirs(path.Dir(fp))
	fs.files[fp] = append([]byte(nil), data...)
	return nil
}

func (fs *InMemFS) MkDirs(dir string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.mkDirs(normPath(dir))
	return nil
}

func (fs *InMemFS) Iter(directory string, recursive bool, cb FSIterCB) error {
	fs.mu.RLock()
	directory = normPath(directory)
	if !fs.dirs[directory] {
		fs.mu.RUnlock()
		return ErrDirNotExist
	}

	type item struct {
		path  string
		size  int64
		isDir bool
	}
	var items []item
	prefix := directory
	if prefix != "/" {
		prefix += "/"
	}
	for fp, data := range fs.files {
		if !strings.HasPrefix(fp, prefix) {
			continue
		}
		if !recursive && strings.Contains(fp[len(prefix):], "/") {
			continue
		}
		items = append(items, item{fp, int64(len(data)), false})
	}
	for dir := range fs.dirs {
		if !strings.HasPrefix(dir, prefix) || dir == directory {
			continue
		}
		if !recursive && strings.Contains(dir[len(prefix):], "/") {
			continue
		}
		items = append(items, item{dir, 0, true})
	}
	fs.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].path < items[j].path })
	for _, it := range items {
		if cb(it.path, it.size, it.isDir) {
			return nil
		}
	}
	return nil
}

// memFileWriter buffers writes and commits the file on Close.
type memFileWriter struct {
	fs   *InMemFS
	path string
	buf  bytes.Buffer
}

func (w *memFileWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memFileWriter) Close() error {
	return w.fs.WriteFile(w.path, w.buf.Bytes())
}

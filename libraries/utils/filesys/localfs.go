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
	"io"
	"os"
	"path/filepath"
)

// LocalFS is the machine's local filesystem.
var LocalFS Filesys = &localFS{}

type localFS struct{}

func (fs *localFS) Exists(path string) (exists bool, isDir bool) {
	stat, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return true, stat.IsDir()
}

func (fs *localFS) Iter(path string, recursive bool, cb FSIterCB) error {
	if !recursive {
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				return err
			}
			if cb(filepath.Join(path, entry.Name()), info.Size(), entry.IsDir()) {
				return nil
			}
		}
		return nil
	}

	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == path {
			return nil
		}
		if cb(p, info.Size(), info.IsDir()) {
			return filepath.SkipAll
		}
		return nil
	})
}

func (fs *localFS) OpenForRead(fp string) (io.ReadCloser, error) {
	if exists, isDir := fs.Exists(fp); !exists {
		return nil, os.ErrNotExist
	} else if isDir {
		return nil, ErrIsDir
	}
	return os.Open(fp)
}

func (fs *localFS) ReadFile(fp string) ([]byte, error) {
	return os.ReadFile(fp)
}

func (fs *localFS) OpenForWrite(fp string) (io.WriteCloser, error) {
	return os.OpenFile(fp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.ModePerm)
}

func (fs *localFS) WriteFile(fp string, data []byte) error {
	return os.WriteFile(fp, data, os.ModePerm)
}

func (fs *localFS) MkDirs(path string) error {
	// MkdirAll succeeds when the directory already exists, so concurrent
	// creation of sibling output directories is safe.
	return os.MkdirAll(path, os.ModePerm)
}

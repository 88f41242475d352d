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
	"encoding/json"
	"errors"
	"io"
)

var ErrIsDir = errors.New("operation not valid on a directory")
var ErrDirNotExist = errors.New("directory does not exist")

// ReadableFS is an interface providing read access to objs in a filesystem.
type ReadableFS interface {
	// OpenForRead opens a file for reading.
	OpenForRead(fp string) (io.ReadCloser, error)

	// ReadFile reads the entire contents of a file.
	ReadFile(fp string) ([]byte, error)

	// Exists will tell you if a file or directory with a given path already
	// exists, and if it does is it a directory.
	Exists(path string) (exists bool, isDir bool)
}

// WritableFS is an interface providing write access to objs in a filesystem.
type WritableFS interface {
	// OpenForWrite opens a file for writing. The file will be created if it
	// does not exist, and overwritten if it does.
	OpenForWrite(fp string) (io.WriteCloser, error)

	// WriteFile writes the entire data buffer to a given file.
	WriteFile(fp string, data []byte) error

	// MkDirs creates a folder and all the parent folders that are necessary
	// to create it. It must tolerate concurrent creation of the same or
	// sibling directories by other goroutines.
	MkDirs(path string) error
}

// FSIterCB is called for every item found while iterating. Returning true
// stops the iteration.
type FSIterCB func(path string, size int64, isDir bool) (stop bool)

// WalkableFS is an interface for walking the files and subdirectories of a
// directory.
type WalkableFS interface {
	// Iter iterates over the files and subdirectories within a directory,
	// optionally recursively. There are no ordering guarantees.
	Iter(directory string, recursive bool, cb FSIterCB) error
}

// Filesys is an interface whose implementors provide read, write, and list
// mechanisms.
type Filesys interface {
	ReadableFS
	WritableFS
	WalkableFS
}

// UnmarshalJSONFile reads the file at path and unmarshals it into dest.
func UnmarshalJSONFile(fs ReadableFS, path string, dest interface{}) error {
	data, err := fs.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

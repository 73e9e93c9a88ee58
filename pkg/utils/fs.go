/*
Copyright © 2023 - 2026 uefikit authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package utils

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
)

const filePerm = os.FileMode(0644)

// Exists checks if a file or directory exists on the volume. The path may be
// in EFI (backslash) form.
func Exists(fs types.FS, path string) bool {
	_, err := fs.Stat(HostPath(path))
	return err == nil
}

// ReadFile reads a whole file given in EFI path form.
func ReadFile(fs types.FS, path string) ([]byte, error) {
	return fs.ReadFile(HostPath(path))
}

// ReadFileInto reads a file into a caller-provided buffer. When the buffer
// cannot hold the file it fails with a BufTooSmallError carrying the file's
// reported size, so the caller can retry with a heap buffer.
func ReadFileInto(fs types.FS, path string, buf []byte) (int, error) {
	hp := HostPath(path)
	fi, err := fs.Stat(hp)
	if err != nil {
		return 0, err
	}
	if int64(len(buf)) < fi.Size() {
		return 0, &errors.BufTooSmallError{Need: int(fi.Size())}
	}
	f, err := fs.Open(hp)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n, err := io.ReadFull(f, buf[:fi.Size()])
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}
	return n, err
}

// ReadFileRetry reads a file through the fixed stack-sized buffer first and
// falls back to a single heap retry on BufTooSmall, mirroring how entry files
// are read on firmware.
func ReadFileRetry(fs types.FS, path string, initial int) ([]byte, error) {
	buf := make([]byte, initial)
	n, err := ReadFileInto(fs, path, buf)
	if err == nil {
		return buf[:n], nil
	}
	need, ok := errors.IsBufTooSmall(err)
	if !ok {
		return nil, err
	}
	buf = make([]byte, need)
	n, err = ReadFileInto(fs, path, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// WriteFile writes a whole file given in EFI path form.
func WriteFile(fs types.FS, path string, data []byte) error {
	return fs.WriteFile(HostPath(path), data, filePerm)
}

// AppendFile appends data to a file given in EFI path form, creating it when
// missing.
func AppendFile(fs types.FS, path string, data []byte) error {
	f, err := fs.OpenFile(HostPath(path), os.O_WRONLY|os.O_CREATE|os.O_APPEND, filePerm)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

// Delete removes a file given in EFI path form.
func Delete(fs types.FS, path string) error {
	return fs.Remove(HostPath(path))
}

// Rename moves a file as a copy followed by a delete, which is all the
// simple-filesystem protocol guarantees us.
func Rename(fs types.FS, oldPath, newPath string) error {
	data, err := ReadFile(fs, oldPath)
	if err != nil {
		return err
	}
	if err := WriteFile(fs, newPath, data); err != nil {
		return err
	}
	return Delete(fs, oldPath)
}

// ReadFilteredDir lists the names in dir whose lower-cased name ends in
// suffix and whose size is non-zero, excluding subdirectories. The suffix
// must already be lower case. Names come back sorted so directory scans are
// deterministic.
func ReadFilteredDir(fs types.FS, dir, suffix string) ([]string, error) {
	des, err := fs.ReadDir(HostPath(dir))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if name == "." || name == ".." {
			continue
		}
		if suffix != "" && !strings.HasSuffix(strings.ToLower(name), suffix) {
			continue
		}
		fi, err := de.Info()
		if err != nil || fi.Size() == 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

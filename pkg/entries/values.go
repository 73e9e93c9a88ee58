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

package entries

import (
	"runtime"
	"strings"

	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// MachineID is a 32 character lowercase hex machine identity. The zero value
// means unset.
type MachineID string

func NewMachineID(s string) (MachineID, error) {
	s = strings.ToLower(s)
	if len(s) != 32 {
		return "", &errors.InvalidValueError{Kind: "machine-id", Value: s}
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", &errors.InvalidValueError{Kind: "machine-id", Value: s}
		}
	}
	return MachineID(s), nil
}

func (m MachineID) String() string { return string(m) }
func (m MachineID) IsSet() bool    { return m != "" }

// SortKey is an ASCII-alphanumeric ordering key; '.', '_' and '-' are also
// allowed. The zero value means unset.
type SortKey string

func NewSortKey(s string) (SortKey, error) {
	if s == "" {
		return "", &errors.InvalidValueError{Kind: "sort-key", Value: s}
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return "", &errors.InvalidValueError{Kind: "sort-key", Value: s}
		}
	}
	return SortKey(s), nil
}

func (k SortKey) String() string { return string(k) }
func (k SortKey) IsSet() bool    { return k != "" }

// Architecture is one of the four UEFI image architecture tags.
type Architecture string

const (
	ArchX86  Architecture = "x86"
	ArchX64  Architecture = "x64"
	ArchArm  Architecture = "arm"
	ArchAa64 Architecture = "aa64"
)

func NewArchitecture(s string) (Architecture, error) {
	switch Architecture(s) {
	case ArchX86, ArchX64, ArchArm, ArchAa64:
		return Architecture(s), nil
	}
	return "", &errors.InvalidValueError{Kind: "architecture", Value: s}
}

func (a Architecture) String() string { return string(a) }
func (a Architecture) IsSet() bool    { return a != "" }

// HostArchitecture is the tag of the architecture this binary runs on.
func HostArchitecture() Architecture {
	switch runtime.GOARCH {
	case "amd64":
		return ArchX64
	case "386":
		return ArchX86
	case "arm64":
		return ArchAa64
	case "arm":
		return ArchArm
	}
	return ""
}

// EfiPath is a backslash-separated absolute path on some volume. Its
// constructor normalizes forward slashes first, then rejects the characters
// EFI filenames cannot carry and any "." or ".." component. The zero value
// means unset.
type EfiPath string

func NewEfiPath(s string) (EfiPath, error) {
	s = utils.NormalizePath(s)
	if s == "" || strings.ContainsAny(s, `"*/:<>?|`) {
		return "", &errors.InvalidValueError{Kind: "path", Value: s}
	}
	for _, part := range strings.Split(s, `\`) {
		if part == "." || part == ".." {
			return "", &errors.InvalidValueError{Kind: "path", Value: s}
		}
	}
	if !strings.HasPrefix(s, `\`) {
		s = `\` + s
	}
	return EfiPath(s), nil
}

func (p EfiPath) String() string { return string(p) }
func (p EfiPath) IsSet() bool    { return p != "" }

// Host converts the path to the forward-slash form the FS abstraction uses.
func (p EfiPath) Host() string { return utils.HostPath(string(p)) }

// Tftp converts the path to the forward-slash, no-leading-slash form TFTP
// servers expect.
func (p EfiPath) Tftp() string { return utils.TftpPath(string(p)) }

// FsHandle wraps a filesystem-capable volume handle. Its constructor probes
// the handle for the filesystem capability and fails if absent; the opened
// filesystem is cached for the handle's lifetime.
type FsHandle struct {
	vol types.VolumeHandle
	fs  types.FS
}

func NewFsHandle(vol types.VolumeHandle) (*FsHandle, error) {
	if vol == nil {
		return nil, &errors.InvalidValueError{Kind: "fs-handle", Value: "<nil>"}
	}
	fs, err := vol.OpenVolume()
	if err != nil {
		return nil, err
	}
	return &FsHandle{vol: vol, fs: fs}, nil
}

func (h *FsHandle) FS() types.FS               { return h.fs }
func (h *FsHandle) Volume() types.VolumeHandle { return h.vol }
func (h *FsHandle) String() string {
	if h == nil || h.vol == nil {
		return "<none>"
	}
	return h.vol.String()
}

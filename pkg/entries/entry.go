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

// Package entries holds the boot entry record, its typed field values, the
// ranking order and the boot-counter filename convention.
package entries

import (
	"sort"
	"strings"
)

// Action says what loading an entry actually does.
type Action int

const (
	// BootEfi loads the EFI image at EfiPath from the owning volume.
	BootEfi Action = iota
	// BootTftp fetches EfiPath over TFTP from the server named by Filename.
	BootTftp
	// Reboot restarts the machine.
	Reboot
	// Shutdown powers the machine off.
	Shutdown
	// ResetToFirmware reboots into the firmware setup UI.
	ResetToFirmware
)

func (a Action) String() string {
	switch a {
	case BootEfi:
		return "boot-efi"
	case BootTftp:
		return "boot-tftp"
	case Reboot:
		return "reboot"
	case Shutdown:
		return "shutdown"
	case ResetToFirmware:
		return "reset-to-firmware"
	}
	return "unknown"
}

// Origin names the parser that produced an entry.
type Origin string

const (
	OriginType1    Origin = "type1"
	OriginUKI      Origin = "uki"
	OriginWindows  Origin = "windows"
	OriginFallback Origin = "fallback"
	OriginShell    Origin = "shell"
	OriginMacOS    Origin = "macos"
	OriginSpecial  Origin = "special"
)

// Entry is one candidate boot option. String fields with a zero value are
// unset; typed fields carry their own unset state.
type Entry struct {
	Title          string
	Version        string
	MachineID      MachineID
	SortKey        SortKey
	Options        string
	DevicetreePath EfiPath
	Architecture   Architecture
	EfiPath        EfiPath
	Action         Action
	Bad            bool
	Handle         *FsHandle
	Origin         Origin

	// Filename is the on-disk name the entry came from, or a synthetic
	// name; Suffix is its extension including the dot.
	Filename string
	Suffix   string
}

// DisplayTitle is what front-ends show: the title when present, else the
// filename with its suffix stripped.
func (e *Entry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return e.stem()
}

func (e *Entry) stem() string {
	return strings.TrimSuffix(e.Filename, e.Suffix)
}

// Less implements the ranking order, lower sorts earlier:
// good before bad, keyed before unkeyed, ascending sort key, ascending
// machine id, descending version, descending stripped filename. Absent
// values compare as smallest.
func (e *Entry) Less(other *Entry) bool {
	if e.Bad != other.Bad {
		return !e.Bad
	}
	if e.SortKey.IsSet() != other.SortKey.IsSet() {
		return e.SortKey.IsSet()
	}
	if c := strings.Compare(string(e.SortKey), string(other.SortKey)); c != 0 {
		return c < 0
	}
	if c := strings.Compare(string(e.MachineID), string(other.MachineID)); c != 0 {
		return c < 0
	}
	if c := strings.Compare(e.Version, other.Version); c != 0 {
		return c > 0
	}
	return strings.Compare(e.stem(), other.stem()) > 0
}

// Sort stably orders a discovered list.
func Sort(list []*Entry) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Less(list[j])
	})
}

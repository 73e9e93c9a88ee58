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

package parsers

import (
	"strings"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// entryBufSize is the first-try read buffer for entry files; larger files go
// through one heap retry.
const entryBufSize = 4096

// Type1 scans \loader\entries\*.conf, the key/value entry format. It also
// drives boot counting: a "+left" or "+left-done" tag in the filename is
// decremented and the file renamed on every scan, and entries out of tries
// come back soft-deranked.
type Type1 struct{}

func (Type1) Origin() entries.Origin { return entries.OriginType1 }

func (p Type1) Parse(log types.Logger, handle *entries.FsHandle, out *[]*entries.Entry) {
	fs := handle.FS()
	names, err := utils.ReadFilteredDir(fs, constants.EntriesDir, constants.ConfSuffix)
	if err != nil {
		log.Debugf("no type-1 entries: %v", err)
		return
	}
	for _, name := range names {
		path := utils.JoinEfi(constants.EntriesDir, name)
		data, err := utils.ReadFileRetry(fs, path, entryBufSize)
		if err != nil {
			log.Warnf("cannot read %s: %v", path, err)
			continue
		}
		*out = append(*out, p.parseEntry(log, handle, name, data))
	}
}

func (p Type1) parseEntry(log types.Logger, handle *entries.FsHandle, name string, data []byte) *entries.Entry {
	b := entries.NewBuilder(log).
		Action(entries.BootEfi).
		Origin(entries.OriginType1).
		Handle(handle)

	var linux, efi, options string
	var initrds []string

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, " ")
		if !found {
			key, value, found = strings.Cut(line, "\t")
		}
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			b.Title(value)
		case "version":
			b.Version(value)
		case "machine_id", "machine-id":
			b.MachineID(value)
		case "sort_key", "sort-key":
			b.SortKey(value)
		case "architecture":
			b.Architecture(value)
		case "linux":
			linux = value
		case "efi":
			efi = value
		case "options":
			options = value
		case "initrd":
			initrds = append(initrds, value)
		case "devicetree":
			b.DevicetreePath(value)
		}
	}

	// linux wins over efi when both are present.
	if linux != "" {
		b.EfiPath(linux)
	} else if efi != "" {
		b.EfiPath(efi)
	}

	opts := options
	for _, initrd := range initrds {
		opts += " initrd=" + initrd
	}
	if opts = strings.TrimSpace(opts); opts != "" {
		b.Options(opts)
	}

	filename, bad := p.countBoot(log, handle, name)
	return b.Filename(filename, constants.ConfSuffix).Bad(bad).Build()
}

// countBoot applies the boot-counter step for one entry file. An entry with
// no tries left comes back bad; one with tries left is decremented and the
// file renamed. Rename failures are logged and non-fatal; the entry still
// appears under its old name.
func (p Type1) countBoot(log types.Logger, handle *entries.FsHandle, name string) (string, bool) {
	counter, ok := entries.ParseCounter(name)
	if !ok {
		return name, false
	}
	if counter.IsBad() {
		return name, true
	}
	newName := counter.Decrement().Filename()
	oldPath := utils.JoinEfi(constants.EntriesDir, name)
	newPath := utils.JoinEfi(constants.EntriesDir, newName)
	if err := utils.Rename(handle.FS(), oldPath, newPath); err != nil {
		log.Warnf("cannot rename %s to %s: %v", oldPath, newPath, err)
		return name, false
	}
	return newName, false
}

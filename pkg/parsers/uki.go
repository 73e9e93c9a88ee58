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
	"bytes"
	"debug/pe"

	"github.com/joho/godotenv"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

const osrelSection = ".osrel"

// UKI scans \EFI\Linux\*.efi, the unified kernel image format: PE
// executables carrying their os-release metadata in an .osrel section.
type UKI struct{}

func (UKI) Origin() entries.Origin { return entries.OriginUKI }

func (p UKI) Parse(log types.Logger, handle *entries.FsHandle, out *[]*entries.Entry) {
	fs := handle.FS()
	names, err := utils.ReadFilteredDir(fs, constants.UKIDir, constants.EfiSuffix)
	if err != nil {
		log.Debugf("no unified kernel images: %v", err)
		return
	}
	for _, name := range names {
		path := utils.JoinEfi(constants.UKIDir, name)
		data, err := utils.ReadFile(fs, path)
		if err != nil {
			log.Warnf("cannot read %s: %v", path, err)
			continue
		}
		*out = append(*out, p.parseImage(log, handle, name, path, data))
	}
}

func (p UKI) parseImage(log types.Logger, handle *entries.FsHandle, name, path string, data []byte) *entries.Entry {
	b := entries.NewBuilder(log).
		Action(entries.BootEfi).
		Origin(entries.OriginUKI).
		Handle(handle).
		EfiPath(path).
		Filename(name, constants.EfiSuffix)

	osrel, arch, err := readOsrel(data)
	if err != nil {
		// A UKI without readable metadata still boots; fall back to
		// the defaults.
		log.Warnf("%v", &errors.UKIError{Path: path, Err: err})
		osrel = map[string]string{}
	}

	title := firstOf(osrel, "PRETTY_NAME", "IMAGE_ID", "NAME", "ID")
	if title == "" {
		title = "Linux"
	}
	b.Title(title)

	sortKey := firstOf(osrel, "IMAGE_ID", "ID")
	if sortKey == "" {
		sortKey = "linux"
	}
	b.SortKey(sortKey)

	if version := firstOf(osrel, "IMAGE_VERSION", "VERSION", "VERSION_ID", "BUILD_ID"); version != "" {
		b.Version(version)
	}
	if arch != "" {
		b.Architecture(arch)
	}
	return b.Build()
}

// readOsrel opens the image as PE, decodes the .osrel section as KEY=VALUE
// lines and maps the PE machine type to an architecture tag.
func readOsrel(data []byte) (map[string]string, string, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	arch := ""
	switch f.FileHeader.Machine {
	case pe.IMAGE_FILE_MACHINE_AMD64:
		arch = string(entries.ArchX64)
	case pe.IMAGE_FILE_MACHINE_I386:
		arch = string(entries.ArchX86)
	case pe.IMAGE_FILE_MACHINE_ARM64:
		arch = string(entries.ArchAa64)
	case pe.IMAGE_FILE_MACHINE_ARMNT:
		arch = string(entries.ArchArm)
	}

	section := f.Section(osrelSection)
	if section == nil {
		return map[string]string{}, arch, nil
	}
	raw, err := section.Data()
	if err != nil {
		return nil, arch, err
	}
	if size := section.VirtualSize; size > 0 && int(size) < len(raw) {
		raw = raw[:size]
	}
	osrel, err := godotenv.Unmarshal(string(raw))
	if err != nil {
		return nil, arch, err
	}
	return osrel, arch, nil
}

func firstOf(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

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
	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// Fallback detects the removable-media loader for the host architecture in
// \EFI\BOOT. Its title is the volume label when the volume has one, so media
// show up under their own name.
type Fallback struct{}

func (Fallback) Origin() entries.Origin { return entries.OriginFallback }

func (p Fallback) Parse(log types.Logger, handle *entries.FsHandle, out *[]*entries.Entry) {
	file, ok := constants.FallbackFileForArch[entries.HostArchitecture().String()]
	if !ok {
		return
	}
	path := utils.JoinEfi(constants.FallbackDir, file)
	if !utils.Exists(handle.FS(), path) {
		return
	}
	title := handle.Volume().VolumeLabel()
	if title == "" {
		title = file
	}
	*out = append(*out, entries.NewBuilder(log).
		Action(entries.BootEfi).
		Origin(entries.OriginFallback).
		Handle(handle).
		Title(title).
		SortKey("fallback").
		EfiPath(path).
		Filename(file, constants.EfiSuffix).
		Build())
}

// Shell detects an UEFI shell binary at the conventional root path.
type Shell struct{}

func (Shell) Origin() entries.Origin { return entries.OriginShell }

func (p Shell) Parse(log types.Logger, handle *entries.FsHandle, out *[]*entries.Entry) {
	if !utils.Exists(handle.FS(), constants.ShellPath) {
		return
	}
	*out = append(*out, entries.NewBuilder(log).
		Action(entries.BootEfi).
		Origin(entries.OriginShell).
		Handle(handle).
		Title("EFI Shell").
		SortKey("shell").
		EfiPath(constants.ShellPath).
		Filename("shellx64.efi", constants.EfiSuffix).
		Build())
}

// MacOS detects the fixed-path macOS loader.
type MacOS struct{}

func (MacOS) Origin() entries.Origin { return entries.OriginMacOS }

func (p MacOS) Parse(log types.Logger, handle *entries.FsHandle, out *[]*entries.Entry) {
	if !utils.Exists(handle.FS(), constants.MacOSBootPath) {
		return
	}
	*out = append(*out, entries.NewBuilder(log).
		Action(entries.BootEfi).
		Origin(entries.OriginMacOS).
		Handle(handle).
		Title("macOS").
		SortKey("macos").
		EfiPath(constants.MacOSBootPath).
		Filename("boot.efi", constants.EfiSuffix).
		Build())
}

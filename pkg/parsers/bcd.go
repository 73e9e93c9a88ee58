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
	"fmt"

	"www.velocidex.com/golang/regparser"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// BCD object/element addresses of interest. The first is the boot manager
// object, whose 24000001 element lists the display order; each listed GUID is
// an OS loader object whose 12000004 element is its description.
const (
	bcdBootMgrObject = "{9dea862c-5cdd-4e70-acc1-f32b344d4795}"
	bcdDisplayOrder  = "24000001"
	bcdDescription   = "12000004"
	bcdElementValue  = "Element"
)

// Windows detects a Windows installation. When the BCD hive is readable the
// entry title comes from the boot manager's display order; otherwise a plain
// "Windows" entry is emitted as long as bootmgfw.efi exists.
type Windows struct{}

func (Windows) Origin() entries.Origin { return entries.OriginWindows }

func (p Windows) Parse(log types.Logger, handle *entries.FsHandle, out *[]*entries.Entry) {
	fs := handle.FS()
	if !utils.Exists(fs, constants.WindowsBootmgrPath) {
		return
	}

	title := "Windows"
	if data, err := utils.ReadFile(fs, constants.BCDPath); err == nil {
		if t, err := bcdTitle(data); err != nil {
			log.Warnf("%v", err)
		} else if t != "" {
			title = t
		}
	}

	*out = append(*out, entries.NewBuilder(log).
		Action(entries.BootEfi).
		Origin(entries.OriginWindows).
		Handle(handle).
		Title(title).
		SortKey("windows").
		EfiPath(constants.WindowsBootmgrPath).
		Filename("bootmgfw.efi", constants.EfiSuffix).
		Build())
}

// bcdTitle digs the display title out of a BCD registry hive. The hive comes
// from removable media, so arbitrary corruption must surface as an error,
// never a panic; the recover catches the known hive-parser panics on
// malformed input.
func bcdTitle(data []byte) (title string, err error) {
	defer func() {
		if r := recover(); r != nil {
			title = ""
			err = &errors.BCDError{Err: fmt.Errorf("malformed hive: %v", r)}
		}
	}()

	registry, rerr := regparser.NewRegistry(bytes.NewReader(data))
	if rerr != nil {
		return "", &errors.BCDError{Err: rerr}
	}

	order := bcdMultiSz(registry, "Objects/"+bcdBootMgrObject+"/Elements/"+bcdDisplayOrder)
	if len(order) != 1 {
		// Zero or several installations; no single title to show.
		return "", nil
	}
	return bcdSz(registry, "Objects/"+order[0]+"/Elements/"+bcdDescription), nil
}

func bcdMultiSz(registry *regparser.Registry, path string) []string {
	key := registry.OpenKey(path)
	if key == nil {
		return nil
	}
	for _, value := range key.Values() {
		if value.ValueName() == bcdElementValue {
			return value.ValueData().MultiSz
		}
	}
	return nil
}

func bcdSz(registry *regparser.Registry, path string) string {
	key := registry.OpenKey(path)
	if key == nil {
		return ""
	}
	for _, value := range key.Values() {
		if value.ValueName() == bcdElementValue {
			return value.ValueData().String
		}
	}
	return ""
}

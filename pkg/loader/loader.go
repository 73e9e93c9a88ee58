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

// Package loader turns a chosen boot entry into a loaded, ready-to-start
// image: reset actions, local EFI loads with optional devicetree
// installation, and TFTP network loads.
package loader

import (
	"time"

	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/secureboot"
	"github.com/uefikit/bootmgr/pkg/types"
)

// resetStall is how long to wait before the forced reset when setting
// OsIndications failed: long enough to read the error, nowhere to return to.
const resetStall = 5 * time.Second

// Load dispatches on the entry's action. Reset actions do not return on real
// firmware; boot actions return the loaded image handle, ready for
// StartImage.
func Load(cfg *types.Config, store *efivars.Store, e *entries.Entry) (types.ImageHandle, error) {
	switch e.Action {
	case entries.Reboot:
		return types.NoImage, cfg.Reset.Reboot()
	case entries.Shutdown:
		return types.NoImage, cfg.Reset.Shutdown()
	case entries.ResetToFirmware:
		return types.NoImage, resetToFirmware(cfg, store)
	case entries.BootTftp:
		return loadTftp(cfg, store, e)
	}
	return loadEfi(cfg, store, e)
}

// resetToFirmware sets the boot-to-firmware-UI bit in OsIndications,
// preserving the other bits, then warm-resets. When the variable cannot be
// written the reset still happens; there is nowhere to return to.
func resetToFirmware(cfg *types.Config, store *efivars.Store) error {
	indications, err := store.GetUint64(efi.GlobalVariable, constants.OsIndicationsName)
	if err == nil {
		indications |= constants.OsIndicationBootToFwUI
		err = store.SetUint64(efi.GlobalVariable, constants.OsIndicationsName, efivars.DefaultAttrs, &indications)
	}
	if err != nil {
		cfg.Logger.Errorf("cannot request firmware setup: %v", err)
		cfg.Reset.Stall(resetStall)
	}
	return cfg.Reset.WarmReset()
}

// loadEfi loads a local image: partition device path + file path, verified
// through Shim when applicable, devicetree installed for ARM targets, load
// options injected last.
func loadEfi(cfg *types.Config, store *efivars.Store, e *entries.Entry) (types.ImageHandle, error) {
	if !e.EfiPath.IsSet() {
		return types.NoImage, errors.ErrConfigMissingEfi
	}
	if e.Handle == nil {
		return types.NoImage, errors.ErrConfigMissingHandle
	}

	dp, err := e.Handle.Volume().DevicePath()
	if err != nil {
		return types.NoImage, err
	}
	dp = append(dp, efi.FilePathDevicePathNode(e.EfiPath.String()))

	handle, err := secureboot.LoadImage(cfg, store, cfg.SelfImage, types.ImageSource{DevicePath: dp})
	if err != nil {
		return types.NoImage, err
	}

	if e.DevicetreePath.IsSet() && hostIsArm() {
		if err := InstallDevicetree(cfg, e.Handle.FS(), e.DevicetreePath.String()); err != nil {
			unload(cfg, handle)
			return types.NoImage, err
		}
	}

	if e.Options != "" {
		if err := SetLoadOptions(cfg, handle, e.Options); err != nil {
			unload(cfg, handle)
			return types.NoImage, err
		}
	}
	return handle, nil
}

func hostIsArm() bool {
	switch entries.HostArchitecture() {
	case entries.ArchArm, entries.ArchAa64:
		return true
	}
	return false
}

func unload(cfg *types.Config, handle types.ImageHandle) {
	if err := cfg.Loader.UnloadImage(handle); err != nil {
		cfg.Logger.Warnf("cannot unload image: %v", err)
	}
}

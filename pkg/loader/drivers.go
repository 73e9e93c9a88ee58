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

package loader

import (
	stderrors "errors"

	efi "github.com/canonical/go-efilib"
	"github.com/hashicorp/go-multierror"

	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/secureboot"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// LoadDrivers loads and starts every *.efi driver in dir on the boot volume,
// then reconnects drivers to controllers once if at least one started. A
// driver that fails to load or start is reported and skipped; the bundled
// driver set must not be able to brick the boot.
func LoadDrivers(cfg *types.Config, store *efivars.Store, dir entries.EfiPath) error {
	vol, err := cfg.Partitions.BootVolume()
	if err != nil {
		return err
	}
	handle, err := entries.NewFsHandle(vol)
	if err != nil {
		return err
	}

	names, err := utils.ReadFilteredDir(handle.FS(), dir.Host(), ".efi")
	if err != nil {
		cfg.Logger.Debugf("no driver directory %s: %v", dir, err)
		return nil
	}
	if len(names) == 0 {
		return nil
	}

	var loadErrs *multierror.Error
	started := 0
	for _, name := range names {
		path := utils.JoinEfi(dir.String(), name)
		if err := startDriver(cfg, store, handle, path); err != nil {
			cfg.Logger.Warnf("driver %s: %v", path, err)
			loadErrs = multierror.Append(loadErrs, err)
			continue
		}
		started++
	}

	if started > 0 {
		if err := cfg.Loader.ReconnectAll(); err != nil {
			loadErrs = multierror.Append(loadErrs, err)
		}
	}
	return loadErrs.ErrorOrNil()
}

func startDriver(cfg *types.Config, store *efivars.Store, handle *entries.FsHandle, path string) error {
	dp, err := handle.Volume().DevicePath()
	if err != nil {
		return err
	}
	dp = append(dp, efi.FilePathDevicePathNode(path))

	img, err := secureboot.LoadImage(cfg, store, cfg.SelfImage, types.ImageSource{DevicePath: dp})
	if err != nil {
		return err
	}
	if err := cfg.Loader.StartImage(img); err != nil {
		// ErrUnsupported means the started image was an application, not
		// a driver; it ran and exited, nothing to clean up.
		if stderrors.Is(err, errors.ErrUnsupported) {
			return nil
		}
		unload(cfg, img)
		return err
	}
	return nil
}

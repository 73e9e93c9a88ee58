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

package secureboot

import (
	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// Enabled reports whether Secure Boot is actually enforcing: the global
// SecureBoot variable equals 1.
func Enabled(store *efivars.Store) bool {
	v, err := store.GetUint8(efi.GlobalVariable, constants.SecureBootName)
	return err == nil && v == 1
}

// shimContext is what the shim validator needs at hook time.
type shimContext struct {
	cfg  *types.Config
	shim types.ShimLock
}

// ShimValidator verifies an image through Shim. A file buffer verifies
// directly; a bare device path is resolved to its volume, read, and then
// verified. With neither there is nothing to authenticate.
func ShimValidator(ctx interface{}, dp efi.DevicePath, file []byte) error {
	sctx, ok := ctx.(*shimContext)
	if !ok || sctx.shim == nil {
		return errors.ErrNoValidator
	}
	if file != nil {
		return sctx.shim.Verify(file)
	}
	if dp == nil {
		return errors.ErrNoDevicePathOrFile
	}
	vol, path, err := sctx.cfg.Partitions.Resolve(dp)
	if err != nil {
		return err
	}
	fs, err := vol.OpenVolume()
	if err != nil {
		return err
	}
	data, err := utils.ReadFile(fs, path)
	if err != nil {
		return err
	}
	return sctx.shim.Verify(data)
}

// LoadImage loads an image through the firmware, routing verification
// through Shim when that is both present and needed. Shim v16+ hooks the
// firmware loader itself, and with Secure Boot off the firmware accepts
// anything, so in both cases the direct load suffices.
func LoadImage(cfg *types.Config, store *efivars.Store, parent types.ImageHandle, src types.ImageSource) (types.ImageHandle, error) {
	shim, present := cfg.Security.ShimLock()
	if !present || cfg.Security.ShimLoaderPresent() || !Enabled(store) {
		return cfg.Loader.LoadImage(parent, src)
	}

	// Ask Shim to keep its protocol alive across the chainload; volatile,
	// Shim only reads it during this boot.
	retain := true
	attrs := efi.AttributeBootserviceAccess
	if err := store.SetBool(constants.ShimGUID, constants.ShimRetainName, attrs, &retain); err != nil {
		cfg.Logger.Warnf("cannot set %s: %v", constants.ShimRetainName, err)
	}

	guard, err := Install(cfg.Logger, cfg.Security, ShimValidator, &shimContext{cfg: cfg, shim: shim})
	if err != nil {
		return types.NoImage, err
	}
	defer guard.Uninstall()

	return cfg.Loader.LoadImage(parent, src)
}

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

// Package bootmgr is the facade tying the pieces together: settings, driver
// loading, entry discovery, default selection and booting.
package bootmgr

import (
	"fmt"

	"github.com/uefikit/bootmgr/internal/version"
	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/discover"
	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/loader"
	"github.com/uefikit/bootmgr/pkg/settings"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// BootManager holds one discovery's worth of state. It is not safe for
// concurrent use; the front-ends drive it from a single goroutine.
type BootManager struct {
	cfg      *types.Config
	store    *efivars.Store
	settings *settings.Settings
	list     []*entries.Entry

	// oneShot is the entry filename consumed from LoaderEntryOneShot,
	// empty when none was set.
	oneShot string

	// oneShotTimeout overrides the settings timeout for this boot only.
	oneShotTimeout *int

	// persistDefault is the entry filename read from LoaderEntryDefault. It
	// survives across boots and loses only to the one-shot.
	persistDefault string

	// varTimeout is the persistent LoaderConfigTimeout override.
	varTimeout *int
}

// New runs the startup sequence: parse settings off the boot volume, load
// bundled drivers when enabled, discover and sort entries, apply the overlay,
// append the special entries and publish the loader interface variables.
// Discovery errors on individual volumes are logged, not fatal; a boot
// manager with an empty list is still usable.
func New(cfg *types.Config) (*BootManager, error) {
	b := &BootManager{
		cfg:   cfg,
		store: efivars.NewStore(cfg.Logger, cfg.Vars),
	}

	bootVol, err := cfg.Partitions.BootVolume()
	if err != nil {
		return nil, err
	}
	bootFs := cfg.Fs
	if bootFs == nil {
		bootFs, err = bootVol.OpenVolume()
		if err != nil {
			return nil, err
		}
	}

	b.settings = settings.Parse(cfg.Logger, bootFs)
	b.readLoaderVars()

	if b.settings.Drivers {
		if err := loader.LoadDrivers(cfg, b.store, b.settings.DriverPath); err != nil {
			cfg.Logger.Warnf("loading drivers: %v", err)
		}
	}

	list, err := discover.Run(cfg)
	if err != nil {
		cfg.Logger.Warnf("discovery: %v", err)
	}

	if overlay := readOverlay(cfg.Logger, bootFs); overlay != nil {
		overlay.Apply(cfg.Logger, list)
		entries.Sort(list)
	}

	b.list = discover.AddSpecial(cfg, list, b.settings.Pxe)

	b.exportLoaderInfo(bootVol)
	return b, nil
}

// List returns the discovered entries in display order.
func (b *BootManager) List() []*entries.Entry {
	return b.list
}

// Settings returns the parsed configuration.
func (b *BootManager) Settings() *settings.Settings {
	return b.settings
}

// Timeout returns the effective menu timeout in seconds, honoring a one-shot
// override ahead of the configured value.
func (b *BootManager) Timeout() int {
	if b.oneShotTimeout != nil {
		return *b.oneShotTimeout
	}
	if b.varTimeout != nil {
		return *b.varTimeout
	}
	return b.settings.Timeout
}

// DefaultIndex picks the entry selected by default: the one-shot filename
// wins, then the persistent LoaderEntryDefault filename, then the persisted
// index variable when it indexes into the list, then the configured default,
// then the first entry.
func (b *BootManager) DefaultIndex() int {
	if b.oneShot != "" {
		for i, e := range b.list {
			if e.Filename == b.oneShot {
				return i
			}
		}
		b.cfg.Logger.Warnf("one-shot entry %q not found", b.oneShot)
	}

	if b.persistDefault != "" {
		for i, e := range b.list {
			if e.Filename == b.persistDefault {
				return i
			}
		}
		b.cfg.Logger.Warnf("default entry %q not found", b.persistDefault)
	}

	if b.store.Exists(constants.VendorGUID, constants.BootDefaultName) {
		idx, err := b.store.GetUint16(constants.VendorGUID, constants.BootDefaultName)
		if err == nil && int(idx) < len(b.list) {
			return int(idx)
		}
		b.cfg.Logger.Warnf("persisted default %d out of range, ignoring", idx)
	}

	if d := b.settings.Default; d != nil && int(*d) < len(b.list) {
		return int(*d)
	}
	return 0
}

// SetDefault persists idx as the default entry index. A nil-like negative idx
// deletes the variable, reverting to the configured default.
func (b *BootManager) SetDefault(idx int) error {
	if idx < 0 {
		return b.store.SetUint16(constants.VendorGUID, constants.BootDefaultName, efivars.DefaultAttrs, nil)
	}
	if idx >= len(b.list) {
		return &errors.InvalidValueError{Kind: "index", Value: fmt.Sprint(idx)}
	}
	v := uint16(idx)
	return b.store.SetUint16(constants.VendorGUID, constants.BootDefaultName, efivars.DefaultAttrs, &v)
}

// Load loads the image behind entry idx. When a boot entry fails it is marked
// bad for the rest of this session and the error propagates to the caller,
// who typically retries with another entry. Reset actions never go bad; a
// failed reset says nothing about the entry.
func (b *BootManager) Load(idx int) (types.ImageHandle, error) {
	if idx < 0 || idx >= len(b.list) {
		return types.NoImage, &errors.InvalidValueError{Kind: "index", Value: fmt.Sprint(idx)}
	}
	e := b.list[idx]
	b.cfg.Logger.Infof("loading %s", e.DisplayTitle())
	handle, err := loader.Load(b.cfg, b.store, e)
	if err != nil && (e.Action == entries.BootEfi || e.Action == entries.BootTftp) {
		e.Bad = true
	}
	return handle, err
}

// Boot loads entry idx and transfers control. On success it does not return
// until the image exits; the exec timestamp is published just before.
func (b *BootManager) Boot(idx int) error {
	handle, err := b.Load(idx)
	if err != nil {
		return err
	}
	if handle == types.NoImage {
		// reset actions return only on mocked firmware
		return nil
	}
	b.store.MarkExec(b.cfg.Timer)
	return b.cfg.Loader.StartImage(handle)
}

// Validate re-runs the entry lints against the current filesystem state and
// returns the failure per entry filename, skipping entries that pass.
func (b *BootManager) Validate() map[string]error {
	host := entries.HostArchitecture()
	out := map[string]error{}
	for _, e := range b.list {
		if err := e.Check(host); err != nil {
			out[e.Filename] = err
		}
	}
	return out
}

// readLoaderVars picks up the loader interface overrides: the one-shot
// variables are read and deleted so they apply to exactly this boot, the
// persistent ones are read in place.
func (b *BootManager) readLoaderVars() {
	guid := constants.LoaderGUID

	if v, ok, err := b.store.ConsumeString(guid, efivars.LoaderEntryOneShot); err != nil {
		b.cfg.Logger.Warnf("cannot consume %s: %v", efivars.LoaderEntryOneShot, err)
	} else if ok {
		b.oneShot = v
	}

	if v, ok, err := b.store.ConsumeString(guid, efivars.LoaderConfigTimeoutOneShot); err != nil {
		b.cfg.Logger.Warnf("cannot consume %s: %v", efivars.LoaderConfigTimeoutOneShot, err)
	} else if ok {
		t, err := efivars.ParseLoaderTimeout(v)
		if err != nil {
			b.cfg.Logger.Warnf("bad one-shot timeout %q: %v", v, err)
		} else {
			b.oneShotTimeout = &t
		}
	}

	if b.store.Exists(guid, efivars.LoaderEntryDefault) {
		if v, err := b.store.GetString(guid, efivars.LoaderEntryDefault); err == nil {
			b.persistDefault = v
		}
	}

	if b.store.Exists(guid, efivars.LoaderConfigTimeout) {
		v, err := b.store.GetString(guid, efivars.LoaderConfigTimeout)
		if err != nil {
			return
		}
		t, err := efivars.ParseLoaderTimeout(v)
		if err != nil {
			b.cfg.Logger.Warnf("bad timeout %q: %v", v, err)
			return
		}
		b.varTimeout = &t
	}
}

func (b *BootManager) exportLoaderInfo(bootVol types.VolumeHandle) {
	partUUID := ""
	if id, ok := bootVol.PartitionUUID(); ok {
		partUUID = id.String()
	}
	names := make([]string, 0, len(b.list))
	for _, e := range b.list {
		names = append(names, e.Filename)
	}
	b.store.ExportLoaderInfo(b.cfg.Timer, version.Ident(), partUUID, names)
}

func readOverlay(log types.Logger, fs types.FS) entries.Overlay {
	data, err := utils.ReadFile(fs, utils.HostPath(constants.OverlayPath))
	if err != nil {
		return nil
	}
	overlay, err := entries.ParseOverlay(data)
	if err != nil {
		log.Warnf("cannot parse %s: %v", constants.OverlayPath, err)
		return nil
	}
	return overlay
}

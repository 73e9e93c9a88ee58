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
	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// fixupPadding leaves room for the firmware fixup to grow the tree before
// the retry path kicks in.
const fixupPadding = 4096

// dtbBufSize covers typical device trees in one read.
const dtbBufSize = 2 * 1024 * 1024

// DevicetreeGuard owns a devicetree blob through the fixup/install sequence.
// Install consumes the guard; a consumed guard cannot be installed again.
type DevicetreeGuard struct {
	cfg      *types.Config
	blob     []byte
	consumed bool
}

// LoadDevicetree reads the blob from the volume and runs the firmware fixup
// protocol over it when present, growing the buffer once if the protocol
// reports it too small.
func LoadDevicetree(cfg *types.Config, fs types.FS, path string) (*DevicetreeGuard, error) {
	blob, err := utils.ReadFileRetry(fs, utils.HostPath(path), dtbBufSize)
	if err != nil {
		return nil, err
	}

	if cfg.Fixup != nil && cfg.Fixup.Present() {
		grown := make([]byte, len(blob)+fixupPadding)
		copy(grown, blob)
		blob = grown

		flags := types.FixupApply | types.FixupReserveMemory
		err = cfg.Fixup.Fixup(blob, flags)
		if need, ok := errors.IsBufTooSmall(err); ok {
			next := make([]byte, need)
			copy(next, blob)
			blob = next
			err = cfg.Fixup.Fixup(blob, flags)
		}
		if err != nil {
			return nil, err
		}
	}

	return &DevicetreeGuard{cfg: cfg, blob: blob}, nil
}

// Install publishes the blob as the devicetree configuration table. The guard
// is consumed whether the install succeeds or not; the firmware may already
// reference the table and the buffer must not be reused.
func (g *DevicetreeGuard) Install() error {
	if g.consumed {
		return errors.ErrGuardConsumed
	}
	g.consumed = true
	return g.cfg.Tables.Install(constants.DevicetreeTableGUID, g.blob)
}

// InstallDevicetree is the whole sequence: load, fixup, install.
func InstallDevicetree(cfg *types.Config, fs types.FS, path string) error {
	guard, err := LoadDevicetree(cfg, fs, path)
	if err != nil {
		return err
	}
	cfg.Logger.Debugf("installing devicetree %s", path)
	return guard.Install()
}

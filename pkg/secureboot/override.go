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

// Package secureboot interposes a custom validator into the firmware's image
// authentication path by hooking the Security and Security2 arch protocols,
// and integrates with Shim's verification protocol.
package secureboot

import (
	"reflect"
	"sync"

	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
)

// Validator authenticates one image, given a device path, an in-memory file,
// or both.
type Validator func(ctx interface{}, dp efi.DevicePath, file []byte) error

// overrideCell is the process-wide hook state. The authentication callbacks
// carry no user-context slot, so the thunks must reach the registered
// validator through this single cell; that is also why only one override can
// exist at a time.
type overrideCell struct {
	mu        sync.Mutex
	installed bool
	validator Validator
	ctx       interface{}

	sec       *types.SecurityProtocol
	sec2      *types.Security2Protocol
	origState types.SecurityAuthState
	origAuth  types.SecurityAuthenticate
	releases  []func()
}

var cell overrideCell

// Guard is the scoped override: Install hooks the protocols, Uninstall
// restores them. Uninstall is idempotent and must run on every exit path.
type Guard struct {
	once sync.Once
	noop bool
}

// Install hooks the registered validator into the Security and Security2
// protocols. Installing the same validator twice returns a no-op guard, the
// first guard keeps ownership of the hooks; installing a different validator
// while one is active is an error, since the second hook would invisibly
// break the first.
func Install(log types.Logger, registry types.SecurityRegistry, v Validator, ctx interface{}) (*Guard, error) {
	cell.mu.Lock()
	defer cell.mu.Unlock()

	if cell.installed {
		if reflect.ValueOf(cell.validator).Pointer() == reflect.ValueOf(v).Pointer() {
			return &Guard{noop: true}, nil
		}
		return nil, errors.ErrOverrideInstalled
	}

	sec, release1, err := registry.OpenSecurity()
	if err != nil {
		return nil, err
	}
	sec2, release2, err := registry.OpenSecurity2()
	if err != nil {
		if release1 != nil {
			release1()
		}
		return nil, err
	}

	cell.validator = v
	cell.ctx = ctx
	cell.sec = sec
	cell.sec2 = sec2
	cell.releases = nil
	if release1 != nil {
		cell.releases = append(cell.releases, release1)
	}
	if release2 != nil {
		cell.releases = append(cell.releases, release2)
	}

	if sec != nil {
		cell.origState = sec.FileAuthState
		sec.FileAuthState = authStateThunk
	}
	if sec2 != nil {
		cell.origAuth = sec2.FileAuthentication
		sec2.FileAuthentication = authThunk
	}
	cell.installed = true
	log.Debugf("security override installed")
	return &Guard{}, nil
}

// Uninstall restores the saved protocol function pointers and releases the
// exclusive protocol opens.
func (g *Guard) Uninstall() {
	g.once.Do(func() {
		if g.noop {
			return
		}
		cell.mu.Lock()
		defer cell.mu.Unlock()
		if !cell.installed {
			return
		}
		if cell.sec != nil {
			cell.sec.FileAuthState = cell.origState
		}
		if cell.sec2 != nil {
			cell.sec2.FileAuthentication = cell.origAuth
		}
		for _, release := range cell.releases {
			release()
		}
		cell.installed = false
		cell.validator = nil
		cell.ctx = nil
		cell.sec = nil
		cell.sec2 = nil
		cell.origState = nil
		cell.origAuth = nil
		cell.releases = nil
	})
}

// authStateThunk replaces the Security protocol slot: it dispatches to the
// registered validator and falls through to the original on failure.
func authStateThunk(authStatus uint32, dp efi.DevicePath) error {
	cell.mu.Lock()
	v, ctx, orig := cell.validator, cell.ctx, cell.origState
	cell.mu.Unlock()

	if v == nil {
		return errors.ErrNoValidator
	}
	if err := v(ctx, dp, nil); err == nil {
		return nil
	}
	if orig != nil {
		return orig(authStatus, dp)
	}
	return errors.ErrNoValidator
}

// authThunk replaces the Security2 protocol slot.
func authThunk(dp efi.DevicePath, file []byte, bootPolicy bool) error {
	cell.mu.Lock()
	v, ctx, orig := cell.validator, cell.ctx, cell.origAuth
	cell.mu.Unlock()

	if v == nil {
		return errors.ErrNoValidator
	}
	if err := v(ctx, dp, file); err == nil {
		return nil
	}
	if orig != nil {
		return orig(dp, file, bootPolicy)
	}
	return errors.ErrNoValidator
}

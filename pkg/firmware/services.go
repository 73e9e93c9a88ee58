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

package firmware

import (
	"fmt"

	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/types"
)

func errUnsupportedHosted(what string) error {
	return fmt.Errorf("%s requires firmware boot services", what)
}

type hostedLoader struct {
	log types.Logger
}

// NewLoader returns an ImageLoader without a firmware to load into. Every
// call fails; the front-end uses it only behind dry-run checks.
func NewLoader(log types.Logger) types.ImageLoader {
	return &hostedLoader{log: log}
}

func (l *hostedLoader) LoadImage(parent types.ImageHandle, src types.ImageSource) (types.ImageHandle, error) {
	return types.NoImage, errUnsupportedHosted("image loading")
}

func (l *hostedLoader) StartImage(h types.ImageHandle) error {
	return errUnsupportedHosted("image execution")
}

func (l *hostedLoader) UnloadImage(h types.ImageHandle) error {
	return errUnsupportedHosted("image unloading")
}

func (l *hostedLoader) SetLoadOptions(h types.ImageHandle, options []byte) error {
	return errUnsupportedHosted("load options")
}

func (l *hostedLoader) ReconnectAll() error {
	return errUnsupportedHosted("driver reconnection")
}

type hostedSecurity struct{}

// NewSecurity returns a SecurityRegistry reporting every authentication
// protocol absent, the same shape as firmware without Secure Boot support.
func NewSecurity() types.SecurityRegistry {
	return hostedSecurity{}
}

func (hostedSecurity) OpenSecurity() (*types.SecurityProtocol, func(), error) {
	return nil, nil, nil
}

func (hostedSecurity) OpenSecurity2() (*types.Security2Protocol, func(), error) {
	return nil, nil, nil
}

func (hostedSecurity) ShimLock() (types.ShimLock, bool) {
	return nil, false
}

func (hostedSecurity) ShimLoaderPresent() bool {
	return false
}

type hostedFixup struct{}

// NewFixup returns a DevicetreeFixup reporting the protocol absent.
func NewFixup() types.DevicetreeFixup {
	return hostedFixup{}
}

func (hostedFixup) Present() bool {
	return false
}

func (hostedFixup) Fixup(blob []byte, flags uint32) error {
	return errUnsupportedHosted("devicetree fixup")
}

type hostedTables struct {
	log types.Logger
}

// NewTables returns a ConfigTables that cannot install anything; the table
// registry only exists inside boot services.
func NewTables(log types.Logger) types.ConfigTables {
	return &hostedTables{log: log}
}

func (t *hostedTables) Install(guid efi.GUID, data []byte) error {
	return errUnsupportedHosted("configuration table installation")
}

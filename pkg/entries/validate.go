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

package entries

import (
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// IsGood runs the validity lints on an entry. Entries failing any lint are
// dropped from discovery; the reason is logged at debug level since a scan
// over foreign media trips these routinely.
func (e *Entry) IsGood(log types.Logger) bool {
	err := e.Check(HostArchitecture())
	if err != nil {
		log.Debugf("dropping entry %q: %v", e.Filename, err)
		return false
	}
	return true
}

// Check returns the first lint an entry fails for the given host
// architecture, nil for a bootable entry.
func (e *Entry) Check(host Architecture) error {
	switch e.Action {
	case BootEfi, BootTftp:
		if !e.EfiPath.IsSet() {
			return errors.ErrConfigMissingEfi
		}
	}
	if e.Action == BootEfi && e.Handle == nil {
		return errors.ErrConfigMissingHandle
	}
	if e.Architecture.IsSet() && e.Architecture != host {
		return &errors.NonMatchingArchError{Want: e.Architecture.String(), Host: host.String()}
	}
	if e.Handle != nil {
		fs := e.Handle.FS()
		if e.EfiPath.IsSet() && e.Action == BootEfi && !utils.Exists(fs, e.EfiPath.Host()) {
			return &errors.NotExistError{Kind: "efi", Path: e.EfiPath.String()}
		}
		if e.DevicetreePath.IsSet() && !utils.Exists(fs, e.DevicetreePath.Host()) {
			return &errors.NotExistError{Kind: "devicetree", Path: e.DevicetreePath.String()}
		}
	}
	return nil
}

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

package efivars

import (
	"fmt"
	"strconv"
	"strings"

	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/types"
)

// Boot Loader Interface variable names, under constants.LoaderGUID. This is
// the conventional namespace bootctl and the boot loader talk through.
const (
	LoaderTimeInitUSec         = "LoaderTimeInitUSec"
	LoaderTimeExecUSec         = "LoaderTimeExecUSec"
	LoaderInfo                 = "LoaderInfo"
	LoaderFeatures             = "LoaderFeatures"
	LoaderDevicePartUUID       = "LoaderDevicePartUUID"
	LoaderEntries              = "LoaderEntries"
	LoaderEntryDefault         = "LoaderEntryDefault"
	LoaderEntryOneShot         = "LoaderEntryOneShot"
	LoaderConfigTimeout        = "LoaderConfigTimeout"
	LoaderConfigTimeoutOneShot = "LoaderConfigTimeoutOneShot"
)

// Feature bits advertised in LoaderFeatures.
const (
	FeatureConfigTimeout        uint64 = 1 << 0
	FeatureConfigTimeoutOneShot uint64 = 1 << 1
	FeatureEntryDefault         uint64 = 1 << 2
	FeatureEntryOneShot         uint64 = 1 << 3
	FeatureBootCounting         uint64 = 1 << 4
	FeatureXBOOTLDR             uint64 = 1 << 5
)

// SupportedFeatures is what this loader implements.
const SupportedFeatures = FeatureConfigTimeout |
	FeatureConfigTimeoutOneShot |
	FeatureEntryDefault |
	FeatureEntryOneShot |
	FeatureBootCounting |
	FeatureXBOOTLDR

// Loader-interface variables are volatile: they describe this boot only.
const loaderAttrs = efi.AttributeBootserviceAccess | efi.AttributeRuntimeAccess

// ExportLoaderInfo publishes the status side of the Boot Loader Interface:
// init timestamp, feature bits, loader identity, the partition we run from
// and the NUL-separated discovered entry filenames.
func (s *Store) ExportLoaderInfo(timer types.Timer, info string, partUUID string, filenames []string) {
	guid := constants.LoaderGUID

	initUSec := fmt.Sprintf("%d", timer.NowMicros())
	if err := s.SetString(guid, LoaderTimeInitUSec, loaderAttrs, &initUSec); err != nil {
		s.log.Warnf("cannot export %s: %v", LoaderTimeInitUSec, err)
	}

	features := SupportedFeatures
	if err := s.setUint(guid, LoaderFeatures, loaderAttrs, 8, &features); err != nil {
		s.log.Warnf("cannot export %s: %v", LoaderFeatures, err)
	}

	if err := s.SetString(guid, LoaderInfo, loaderAttrs, &info); err != nil {
		s.log.Warnf("cannot export %s: %v", LoaderInfo, err)
	}

	if partUUID != "" {
		upper := strings.ToUpper(partUUID)
		if err := s.SetString(guid, LoaderDevicePartUUID, loaderAttrs, &upper); err != nil {
			s.log.Warnf("cannot export %s: %v", LoaderDevicePartUUID, err)
		}
	}

	joined := strings.Join(filenames, "\x00")
	if err := s.SetString(guid, LoaderEntries, loaderAttrs, &joined); err != nil {
		s.log.Warnf("cannot export %s: %v", LoaderEntries, err)
	}
}

// MarkExec stamps LoaderTimeExecUSec, called just before control transfers
// to the loaded image.
func (s *Store) MarkExec(timer types.Timer) {
	execUSec := fmt.Sprintf("%d", timer.NowMicros())
	if err := s.SetString(constants.LoaderGUID, LoaderTimeExecUSec, loaderAttrs, &execUSec); err != nil {
		s.log.Warnf("cannot export %s: %v", LoaderTimeExecUSec, err)
	}
}

// ParseLoaderTimeout maps the interface's timeout strings to seconds:
// "menu-force" means wait forever (-1), "menu-hidden"/"menu-disabled" mean
// boot immediately (0), anything else is decimal seconds.
func ParseLoaderTimeout(v string) (int, error) {
	switch v {
	case "menu-force":
		return -1, nil
	case "menu-hidden", "menu-disabled":
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid loader timeout %q: %w", v, err)
	}
	return n, nil
}

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

package constants

import (
	efi "github.com/canonical/go-efilib"
)

const (
	// SettingsPath is the boot manager's own configuration file, read from
	// the filesystem the boot image was loaded from.
	SettingsPath = `\loader\bootmgr-rs.conf`

	// OverlayPath is the optional per-entry overrides file applied after
	// discovery.
	OverlayPath = `\loader\entries.yaml`

	// EntriesDir holds BLS type-1 entry files.
	EntriesDir = `\loader\entries`

	// UKIDir holds BLS type-2 unified kernel images.
	UKIDir = `\EFI\Linux`

	// BCDPath is the Windows Boot Configuration Data hive.
	BCDPath = `\EFI\Microsoft\Boot\BCD`

	// WindowsBootmgrPath is the Windows boot manager executable.
	WindowsBootmgrPath = `\EFI\Microsoft\Boot\bootmgfw.efi`

	// MacOSBootPath is the fixed location of the macOS loader.
	MacOSBootPath = `\System\Library\CoreServices\boot.efi`

	// ShellPath is the conventional location of an UEFI shell binary.
	ShellPath = `\shellx64.efi`

	// FallbackDir holds the removable-media fallback loaders.
	FallbackDir = `\EFI\BOOT`

	// DefaultDriverPath is where UEFI drivers are picked up from unless the
	// settings file overrides it.
	DefaultDriverPath = `\EFI\BOOT\drivers`

	ConfSuffix = ".conf"
	EfiSuffix  = ".efi"

	// DefaultTimeout is the menu timeout in seconds applied when the
	// settings file does not carry one.
	DefaultTimeout = 5

	// BootDefaultName is the variable holding the persisted default entry
	// index, stored under VendorGUID.
	BootDefaultName = "BootDefault"

	// ShimRetainName asks Shim to keep its verification protocol installed
	// across the chainload.
	ShimRetainName = "ShimRetainProtocol"

	// SecureBootName is the global variable reporting Secure Boot state.
	SecureBootName = "SecureBoot"

	// OsIndicationsName is the global variable carrying boot hints; bit 0
	// requests the firmware setup UI on the next reset.
	OsIndicationsName = "OsIndications"

	// OsIndicationBootToFwUI is bit 0 of OsIndications.
	OsIndicationBootToFwUI = uint64(1) << 0
)

// Vendor GUID namespaces. VendorGUID is this project's private namespace, the
// others are well-known.
var (
	// VendorGUID: 23600d08-561e-4e68-a024-1d7d6e04ee4e
	VendorGUID = efi.MakeGUID(0x23600d08, 0x561e, 0x4e68, 0xa024, [...]uint8{0x1d, 0x7d, 0x6e, 0x04, 0xee, 0x4e})

	// ShimGUID: 605dab50-e046-4300-abb6-3dd810dd8b23 (ShimLock namespace)
	ShimGUID = efi.MakeGUID(0x605dab50, 0xe046, 0x4300, 0xabb6, [...]uint8{0x3d, 0xd8, 0x10, 0xdd, 0x8b, 0x23})

	// LoaderGUID: 4a67b082-0a4c-41cf-b6c7-440b29bb8c4f (Boot Loader Interface)
	LoaderGUID = efi.MakeGUID(0x4a67b082, 0x0a4c, 0x41cf, 0xb6c7, [...]uint8{0x44, 0x0b, 0x29, 0xbb, 0x8c, 0x4f})

	// ESPGUID is the GPT type of the EFI System Partition.
	ESPGUID = efi.MakeGUID(0xc12a7328, 0xf81f, 0x11d2, 0xba4b, [...]uint8{0x00, 0xa0, 0x9c, 0x7e, 0x03, 0x1b})

	// XBootLdrGUID is the GPT type of the extended boot loader partition.
	XBootLdrGUID = efi.MakeGUID(0xbc13c2ff, 0x59e6, 0x4262, 0xa352, [...]uint8{0xb2, 0x75, 0xfd, 0x6f, 0x71, 0x72})

	// DevicetreeTableGUID is the configuration table under which a DTB is
	// published to the OS: b1b621d5-f19c-41a5-830b-d9152c69aae0.
	DevicetreeTableGUID = efi.MakeGUID(0xb1b621d5, 0xf19c, 0x41a5, 0x830b, [...]uint8{0xd9, 0x15, 0x2c, 0x69, 0xaa, 0xe0})
)

// IsBootPartitionType reports whether a GPT partition type GUID identifies a
// partition we scan for boot entries.
func IsBootPartitionType(guid efi.GUID) bool {
	return guid == ESPGUID || guid == XBootLdrGUID
}

// FallbackFileForArch maps an architecture tag to the removable-media loader
// name under FallbackDir.
var FallbackFileForArch = map[string]string{
	"x64":  "BOOTX64.EFI",
	"x86":  "BOOTIA32.EFI",
	"aa64": "BOOTAA64.EFI",
	"arm":  "BOOTARM.EFI",
}

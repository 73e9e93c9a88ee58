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

package types

import (
	"context"
	"net"
	"time"

	efi "github.com/canonical/go-efilib"
)

// Variables abstracts the firmware variable store. The real binding delegates
// to go-efilib over efivarfs; tests use the in-memory mock.
type Variables interface {
	GetVariable(guid efi.GUID, name string) (data []byte, attrs efi.VariableAttributes, err error)
	SetVariable(guid efi.GUID, name string, data []byte, attrs efi.VariableAttributes) error
	DelVariable(guid efi.GUID, name string) error
	ListVariables() ([]efi.VariableDescriptor, error)
}

// VolumeHandle is an opaque handle to one filesystem-capable partition, in
// firmware handle-enumeration order.
type VolumeHandle interface {
	// OpenVolume opens the filesystem living on the partition. It fails
	// when the handle has no filesystem capability.
	OpenVolume() (FS, error)

	// PartitionType returns the GPT partition type GUID. ok is false for
	// handles that expose no GPT entry (non-GPT media).
	PartitionType() (guid efi.GUID, ok bool)

	// PartitionUUID returns the unique GPT partition GUID when available.
	PartitionUUID() (guid efi.GUID, ok bool)

	// VolumeLabel returns the filesystem label, possibly empty.
	VolumeLabel() string

	// DevicePath returns the partition's device path, used as the prefix
	// when building a file device path for the image loader.
	DevicePath() (efi.DevicePath, error)

	String() string
}

// PartitionSource enumerates filesystem-capable handles and resolves device
// paths back to them.
type PartitionSource interface {
	// Volumes returns every filesystem-capable handle, in enumeration
	// order. Discovery iterates this deterministically.
	Volumes() ([]VolumeHandle, error)

	// BootVolume returns the handle of the partition the boot manager
	// itself was loaded from.
	BootVolume() (VolumeHandle, error)

	// Resolve splits a file device path into the owning volume and the
	// backslash-separated file path on it.
	Resolve(dp efi.DevicePath) (VolumeHandle, string, error)
}

// ImageHandle is an opaque token for a loaded image.
type ImageHandle int

// NoImage is the zero ImageHandle.
const NoImage ImageHandle = 0

// ImageSource is either a device path or an in-memory buffer; exactly one is
// set.
type ImageSource struct {
	DevicePath efi.DevicePath
	Buffer     []byte
}

// ImageLoader abstracts the firmware image loading service.
type ImageLoader interface {
	LoadImage(parent ImageHandle, src ImageSource) (ImageHandle, error)
	StartImage(h ImageHandle) error
	UnloadImage(h ImageHandle) error

	// SetLoadOptions injects the command line a loaded image will observe.
	// The buffer must stay valid until StartImage returns.
	SetLoadOptions(h ImageHandle, options []byte) error

	// ReconnectAll re-binds drivers to controllers, used after loading
	// UEFI drivers at startup.
	ReconnectAll() error
}

// Reset abstracts the firmware reset service. Reboot, Shutdown and WarmReset
// do not return on real firmware.
type Reset interface {
	Reboot() error
	Shutdown() error
	WarmReset() error
	Stall(d time.Duration)
}

// Timer is the monotonic microsecond clock sampled at init.
type Timer interface {
	NowMicros() uint64
}

// NetworkOffer is the result of a PXE DHCP discover.
type NetworkOffer struct {
	Server   net.IP
	BootFile string
}

// Network abstracts the firmware PXE base code: one DHCPv4 discover and the
// TFTP primitive.
type Network interface {
	// Start brings up the base code; calling it when already started is a
	// no-op.
	Start(ctx context.Context) error
	Discover(ctx context.Context) (*NetworkOffer, error)
	FileSize(ctx context.Context, server net.IP, path string) (int64, error)
	ReadFile(ctx context.Context, server net.IP, path string) ([]byte, error)
}

// SecurityAuthState is the Security arch protocol's single function slot.
type SecurityAuthState func(authStatus uint32, dp efi.DevicePath) error

// SecurityAuthenticate is the Security2 arch protocol's single function slot.
type SecurityAuthenticate func(dp efi.DevicePath, file []byte, bootPolicy bool) error

// SecurityProtocol mirrors the firmware Security arch protocol: a struct
// holding one function pointer the image loader calls for every load.
type SecurityProtocol struct {
	FileAuthState SecurityAuthState
}

// Security2Protocol mirrors the firmware Security2 arch protocol.
type Security2Protocol struct {
	FileAuthentication SecurityAuthenticate
}

// ShimLock is Shim's verification protocol.
type ShimLock interface {
	Verify(buf []byte) error
}

// SecurityRegistry locates the authentication protocols. Opening is
// exclusive; the returned release func gives the protocol back and must be
// called on every exit path.
type SecurityRegistry interface {
	// OpenSecurity returns (nil, nil, nil) when the protocol is absent.
	OpenSecurity() (*SecurityProtocol, func(), error)
	OpenSecurity2() (*Security2Protocol, func(), error)

	// ShimLock returns Shim's verifier, ok=false when Shim is absent.
	ShimLock() (ShimLock, bool)

	// ShimLoaderPresent reports the Shim v16+ marker protocol, meaning
	// Shim hooks the image loader itself and needs no override.
	ShimLoaderPresent() bool
}

// DevicetreeFixup is the optional firmware devicetree fixup protocol.
type DevicetreeFixup interface {
	Present() bool

	// Fixup applies firmware fixups in place. When the blob is too small
	// it returns a BufTooSmallError carrying the required size.
	Fixup(blob []byte, flags uint32) error
}

// Devicetree fixup flags.
const (
	FixupApply         uint32 = 1 << 0
	FixupReserveMemory uint32 = 1 << 1
)

// ConfigTables abstracts the firmware configuration table registry.
type ConfigTables interface {
	Install(guid efi.GUID, data []byte) error
}

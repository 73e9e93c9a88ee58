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

package mocks

import (
	"fmt"

	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
)

// MockVolume is a VolumeHandle over any types.FS, typically a vfst test
// filesystem.
type MockVolume struct {
	Name    string
	Fs      types.FS
	Label   string
	Type    efi.GUID
	HasType bool
	UUID    efi.GUID
	HasUUID bool

	OpenErr error
}

func (v *MockVolume) OpenVolume() (types.FS, error) {
	if v.OpenErr != nil {
		return nil, v.OpenErr
	}
	if v.Fs == nil {
		return nil, &errors.NotExistError{Kind: "filesystem", Path: v.Name}
	}
	return v.Fs, nil
}

func (v *MockVolume) PartitionType() (efi.GUID, bool) {
	return v.Type, v.HasType
}

func (v *MockVolume) PartitionUUID() (efi.GUID, bool) {
	return v.UUID, v.HasUUID
}

func (v *MockVolume) VolumeLabel() string {
	return v.Label
}

func (v *MockVolume) DevicePath() (efi.DevicePath, error) {
	return efi.DevicePath{
		&efi.HardDriveDevicePathNode{
			PartitionNumber: 1,
			Signature:       efi.GUIDHardDriveSignature(v.UUID),
			MBRType:         efi.GPT,
		},
	}, nil
}

func (v *MockVolume) String() string {
	return v.Name
}

// MockPartitions serves a fixed volume list.
type MockPartitions struct {
	Vols []types.VolumeHandle

	// BootIndex selects which volume BootVolume returns.
	BootIndex int

	VolumesErr error
}

func (p *MockPartitions) Volumes() ([]types.VolumeHandle, error) {
	if p.VolumesErr != nil {
		return nil, p.VolumesErr
	}
	return p.Vols, nil
}

func (p *MockPartitions) BootVolume() (types.VolumeHandle, error) {
	if p.BootIndex < 0 || p.BootIndex >= len(p.Vols) {
		return nil, &errors.NotExistError{Kind: "boot volume", Path: fmt.Sprint(p.BootIndex)}
	}
	return p.Vols[p.BootIndex], nil
}

func (p *MockPartitions) Resolve(dp efi.DevicePath) (types.VolumeHandle, string, error) {
	var sig efi.GUID
	var path string
	found := false
	for _, node := range dp {
		switch n := node.(type) {
		case *efi.HardDriveDevicePathNode:
			if g, ok := n.Signature.(efi.GUIDHardDriveSignature); ok {
				sig = efi.GUID(g)
				found = true
			}
		case efi.FilePathDevicePathNode:
			path = string(n)
		}
	}
	if !found || path == "" {
		return nil, "", fmt.Errorf("cannot resolve device path")
	}
	for _, v := range p.Vols {
		if id, ok := v.PartitionUUID(); ok && id == sig {
			return v, path, nil
		}
	}
	return nil, "", &errors.NotExistError{Kind: "partition", Path: sig.String()}
}

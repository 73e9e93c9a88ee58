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
	"path/filepath"
	"strconv"
	"strings"

	efi "github.com/canonical/go-efilib"
	efilinux "github.com/canonical/go-efilib/linux"
	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/block"
	vfs "github.com/twpayne/go-vfs/v4"

	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
)

// espMountPoints are checked in order when looking for the boot volume on a
// hosted system.
var espMountPoints = []string{"/boot/efi", "/efi", "/boot"}

type hostedPartitions struct {
	log types.Logger
}

// NewPartitions returns a PartitionSource over the host block layer.
func NewPartitions(log types.Logger) types.PartitionSource {
	return &hostedPartitions{log: log}
}

func (p *hostedPartitions) Volumes() ([]types.VolumeHandle, error) {
	devices, err := block.New(ghw.WithDisableTools(), ghw.WithDisableWarnings())
	if err != nil {
		return nil, err
	}
	var vols []types.VolumeHandle
	for _, d := range devices.Disks {
		for _, part := range d.Partitions {
			vols = append(vols, newHostedVolume(p.log, d, part))
		}
	}
	return vols, nil
}

func (p *hostedPartitions) BootVolume() (types.VolumeHandle, error) {
	vols, err := p.Volumes()
	if err != nil {
		return nil, err
	}
	for _, mp := range espMountPoints {
		for _, v := range vols {
			if v.(*hostedVolume).part.MountPoint == mp {
				return v, nil
			}
		}
	}
	return nil, &errors.NotExistError{Kind: "boot volume", Path: strings.Join(espMountPoints, ", ")}
}

// Resolve matches the device path's hard drive signature against the
// partition GUIDs of the known volumes and returns the trailing file path.
func (p *hostedPartitions) Resolve(dp efi.DevicePath) (types.VolumeHandle, string, error) {
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
		return nil, "", fmt.Errorf("cannot resolve device path %s", dp.String())
	}

	vols, err := p.Volumes()
	if err != nil {
		return nil, "", err
	}
	for _, v := range vols {
		if id, ok := v.PartitionUUID(); ok && id == sig {
			return v, path, nil
		}
	}
	return nil, "", &errors.NotExistError{Kind: "partition", Path: sig.String()}
}

type hostedVolume struct {
	log  types.Logger
	disk *block.Disk
	part *block.Partition

	gptProbed bool
	gptEntry  *efi.PartitionEntry
}

func newHostedVolume(log types.Logger, disk *block.Disk, part *block.Partition) *hostedVolume {
	return &hostedVolume{log: log, disk: disk, part: part}
}

func (v *hostedVolume) OpenVolume() (types.FS, error) {
	if v.part.MountPoint == "" {
		return nil, &errors.NotExistError{Kind: "mount point", Path: v.String()}
	}
	return vfs.NewPathFS(vfs.OSFS, v.part.MountPoint), nil
}

func (v *hostedVolume) PartitionType() (efi.GUID, bool) {
	if e := v.gpt(); e != nil {
		return e.PartitionTypeGUID, true
	}
	return efi.GUID{}, false
}

func (v *hostedVolume) PartitionUUID() (efi.GUID, bool) {
	if guid, err := efi.DecodeGUIDString(v.part.UUID); err == nil {
		return guid, true
	}
	if e := v.gpt(); e != nil {
		return e.UniquePartitionGUID, true
	}
	return efi.GUID{}, false
}

func (v *hostedVolume) VolumeLabel() string {
	if v.part.FilesystemLabel != "" {
		return v.part.FilesystemLabel
	}
	return v.part.Label
}

func (v *hostedVolume) DevicePath() (efi.DevicePath, error) {
	num, err := v.partitionNumber()
	if err != nil {
		return nil, err
	}
	node, err := efilinux.NewHardDriveDevicePathNodeFromDevice(filepath.Join("/dev", v.disk.Name), num)
	if err != nil {
		return nil, err
	}
	return efi.DevicePath{node}, nil
}

func (v *hostedVolume) String() string {
	return filepath.Join("/dev", v.part.Name)
}

// gpt reads the partition's GPT entry from the disk, once. This needs read
// access to the raw device; without it the volume just reports no GPT data.
func (v *hostedVolume) gpt() *efi.PartitionEntry {
	if v.gptProbed {
		return v.gptEntry
	}
	v.gptProbed = true

	num, err := v.partitionNumber()
	if err != nil {
		return nil
	}
	table, err := efilinux.ReadPartitionTable(filepath.Join("/dev", v.disk.Name), efi.PrimaryPartitionTable, false)
	if err != nil {
		v.log.Debugf("cannot read partition table of %s: %v", v.disk.Name, err)
		return nil
	}
	if num < 1 || num > len(table.Entries) {
		return nil
	}
	v.gptEntry = table.Entries[num-1]
	return v.gptEntry
}

// partitionNumber extracts the 1-indexed partition number from the kernel
// name, "sda3" or "nvme0n1p3".
func (v *hostedVolume) partitionNumber() (int, error) {
	rest := strings.TrimPrefix(v.part.Name, v.disk.Name)
	rest = strings.TrimPrefix(rest, "p")
	num, err := strconv.Atoi(rest)
	if err != nil || num < 1 {
		return 0, fmt.Errorf("cannot derive partition number of %s", v.part.Name)
	}
	return num, nil
}

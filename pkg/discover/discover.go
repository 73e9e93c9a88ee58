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

// Package discover runs every parser over every eligible partition and turns
// the raw emissions into the validated, ranked boot entry list.
package discover

import (
	"github.com/hashicorp/go-multierror"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/parsers"
	"github.com/uefikit/bootmgr/pkg/types"
)

// Run scans all volumes. Per-volume failures are collected and logged but do
// not abort the scan; the error aggregate is returned alongside whatever was
// found so the caller can decide how loud to be.
func Run(cfg *types.Config) ([]*entries.Entry, error) {
	var scanErrs *multierror.Error

	vols, err := cfg.Partitions.Volumes()
	if err != nil {
		return nil, err
	}

	var found []*entries.Entry
	all := parsers.All()
	for _, vol := range vols {
		if typeGUID, ok := vol.PartitionType(); ok && !constants.IsBootPartitionType(typeGUID) {
			cfg.Logger.Debugf("skipping %s: not a boot partition", vol)
			continue
		}
		handle, err := entries.NewFsHandle(vol)
		if err != nil {
			cfg.Logger.Debugf("skipping %s: %v", vol, err)
			scanErrs = multierror.Append(scanErrs, err)
			continue
		}
		for _, parser := range all {
			parser.Parse(cfg.Logger, handle, &found)
		}
	}

	kept := found[:0]
	for _, e := range found {
		if e.IsGood(cfg.Logger) {
			kept = append(kept, e)
		}
	}
	entries.Sort(kept)
	return kept, scanErrs.ErrorOrNil()
}

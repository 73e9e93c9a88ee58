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

package discover

import (
	"context"
	"strings"

	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/types"
)

// AddSpecial appends the synthetic power-management entries and, when asked
// for, a PXE network boot entry offered by the local DHCP server.
func AddSpecial(cfg *types.Config, list []*entries.Entry, pxe bool) []*entries.Entry {
	list = append(list,
		special("Reboot", "reboot", entries.Reboot),
		special("Shutdown", "shutdown", entries.Shutdown),
		special("Reboot Into Firmware Interface", "firmware", entries.ResetToFirmware),
	)
	if pxe {
		if e := pxeEntry(cfg); e != nil {
			list = append(list, e)
		}
	}
	return list
}

func special(title, filename string, action entries.Action) *entries.Entry {
	return entries.NewBuilder(nil).
		Title(title).
		Action(action).
		Origin(entries.OriginSpecial).
		Filename(filename, "").
		Build()
}

// pxeEntry asks the network base code for a bootstrap offer. HTTP(S) boot
// file names are not ours to handle and are skipped.
func pxeEntry(cfg *types.Config) *entries.Entry {
	ctx := context.Background()
	if err := cfg.Net.Start(ctx); err != nil {
		cfg.Logger.Warnf("cannot start network base code: %v", err)
		return nil
	}
	offer, err := cfg.Net.Discover(ctx)
	if err != nil {
		cfg.Logger.Warnf("PXE discover failed: %v", err)
		return nil
	}
	if offer == nil || offer.BootFile == "" {
		return nil
	}
	lower := strings.ToLower(offer.BootFile)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		cfg.Logger.Debugf("ignoring HTTP boot offer %q", offer.BootFile)
		return nil
	}
	server := offer.Server.To4()
	if server == nil {
		cfg.Logger.Warnf("ignoring PXE offer from non-IPv4 server %s", offer.Server)
		return nil
	}
	return entries.NewBuilder(cfg.Logger).
		Title("Network Boot").
		Action(entries.BootTftp).
		Origin(entries.OriginSpecial).
		EfiPath(offer.BootFile).
		Filename(server.String(), "").
		Build()
}

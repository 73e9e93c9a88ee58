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

package loader

import (
	"context"
	"math"
	"net"

	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/secureboot"
	"github.com/uefikit/bootmgr/pkg/types"
)

// loadTftp fetches the boot file over TFTP and loads it from the in-memory
// buffer. The entry stores the server address in Filename and the file path
// in EfiPath, the shape the PXE discover step produces.
func loadTftp(cfg *types.Config, store *efivars.Store, e *entries.Entry) (types.ImageHandle, error) {
	if !e.EfiPath.IsSet() {
		return types.NoImage, errors.ErrConfigMissingEfi
	}
	server := net.ParseIP(e.Filename)
	if server == nil || server.To4() == nil {
		return types.NoImage, &errors.IPParseError{Value: e.Filename}
	}

	ctx := context.Background()
	if err := cfg.Net.Start(ctx); err != nil {
		return types.NoImage, err
	}

	path := e.EfiPath.Tftp()
	size, err := cfg.Net.FileSize(ctx, server, path)
	if err != nil {
		return types.NoImage, err
	}
	if size <= 0 || size > math.MaxInt32 {
		return types.NoImage, &errors.InvalidContentLengthError{Length: size}
	}

	cfg.Logger.Infof("fetching %s from %s (%d bytes)", path, server, size)
	buf, err := cfg.Net.ReadFile(ctx, server, path)
	if err != nil {
		return types.NoImage, err
	}

	handle, err := secureboot.LoadImage(cfg, store, cfg.SelfImage, types.ImageSource{Buffer: buf})
	if err != nil {
		return types.NoImage, err
	}
	if e.Options != "" {
		if err := SetLoadOptions(cfg, handle, e.Options); err != nil {
			unload(cfg, handle)
			return types.NoImage, err
		}
	}
	return handle, nil
}

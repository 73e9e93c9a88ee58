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
	"math"
	"sync"

	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/types"
)

// The firmware keeps a pointer to the load options buffer, not a copy, so the
// buffer must outlive the call and survive until the image starts. One boot
// happens at a time; a single process-wide cell is enough.
var loadOptionsCell struct {
	mu  sync.Mutex
	buf []byte
}

// SetLoadOptions encodes the command line as NUL-terminated UTF-16 and hands
// it to the loaded image. Buffers longer than the firmware's 32-bit length
// field are truncated at a character boundary.
func SetLoadOptions(cfg *types.Config, handle types.ImageHandle, options string) error {
	buf := efivars.EncodeUTF16(options)
	if len(buf) > math.MaxUint32 {
		cfg.Logger.Warnf("load options too long, truncating to %d bytes", math.MaxUint32-1)
		buf = buf[:math.MaxUint32-1]
		// keep UTF-16 alignment and the terminator
		buf = append(buf[:len(buf)&^1-2], 0, 0)
	}

	loadOptionsCell.mu.Lock()
	loadOptionsCell.buf = buf
	loadOptionsCell.mu.Unlock()

	return cfg.Loader.SetLoadOptions(handle, buf)
}

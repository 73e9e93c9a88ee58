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

// Package firmware provides the hosted bindings behind the capability
// interfaces in pkg/types: EFI variables through efivarfs, partitions through
// the block layer, DHCP and TFTP through the host network stack. Services
// that only exist inside boot services (image loading, the security arch
// protocols, devicetree fixups) are reported absent, which the core treats
// the same way it treats firmware without them.
package firmware

import (
	"time"

	"github.com/uefikit/bootmgr/pkg/types"
)

type monotonicTimer struct {
	start time.Time
}

// NewTimer returns a Timer counting microseconds from process start.
func NewTimer() types.Timer {
	return &monotonicTimer{start: time.Now()}
}

func (t *monotonicTimer) NowMicros() uint64 {
	return uint64(time.Since(t.start).Microseconds())
}

type hostedReset struct {
	log types.Logger
}

// NewReset returns a Reset that refuses to act. Resetting the machine from a
// hosted inspection tool is never what the operator wants; the front-end
// keeps boot actions behind a dry-run flag for the same reason.
func NewReset(log types.Logger) types.Reset {
	return &hostedReset{log: log}
}

func (r *hostedReset) Reboot() error {
	r.log.Info("reboot requested, not acting on a hosted system")
	return errUnsupportedHosted("reboot")
}

func (r *hostedReset) Shutdown() error {
	r.log.Info("shutdown requested, not acting on a hosted system")
	return errUnsupportedHosted("shutdown")
}

func (r *hostedReset) WarmReset() error {
	r.log.Info("warm reset requested, not acting on a hosted system")
	return errUnsupportedHosted("warm reset")
}

func (r *hostedReset) Stall(d time.Duration) {
	time.Sleep(d)
}

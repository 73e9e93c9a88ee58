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

package loader_test

import (
	"fmt"
	"time"

	efi "github.com/canonical/go-efilib"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4/vfst"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/loader"
	"github.com/uefikit/bootmgr/pkg/mocks"
	"github.com/uefikit/bootmgr/pkg/types"
)

// optionRejectingLoader fails SetLoadOptions, for the unload-on-failure path.
type optionRejectingLoader struct {
	*mocks.MockLoader
}

func (l *optionRejectingLoader) SetLoadOptions(h types.ImageHandle, options []byte) error {
	return fmt.Errorf("out of resources")
}

var _ = Describe("Entry loading", Label("loader"), func() {
	var cfg *types.Config
	var store *efivars.Store
	var vars *mocks.MockVariables
	var images *mocks.MockLoader
	var reset *mocks.MockReset
	var cleanup func()

	BeforeEach(func() {
		vars = mocks.NewMockVariables()
		store = efivars.NewStore(types.NewNullLogger(), vars)
		images = mocks.NewMockLoader()
		reset = &mocks.MockReset{}
		cfg = &types.Config{
			Logger:   types.NewNullLogger(),
			Loader:   images,
			Reset:    reset,
			Security: &mocks.MockSecurity{},
			Net:      mocks.NewMockNetwork(),
		}
	})

	AfterEach(func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	})

	newHandle := func(files map[string]interface{}) *entries.FsHandle {
		fs, c, err := vfst.NewTestFS(files)
		Expect(err).To(BeNil())
		cleanup = c
		handle, err := entries.NewFsHandle(&mocks.MockVolume{
			Name: "esp", Fs: fs,
			UUID: constants.VendorGUID, HasUUID: true,
		})
		Expect(err).To(BeNil())
		return handle
	}

	Describe("reset actions", func() {
		It("dispatches reboot and shutdown", func() {
			h, err := loader.Load(cfg, store, &entries.Entry{Action: entries.Reboot})
			Expect(err).To(BeNil())
			Expect(h).To(Equal(types.NoImage))
			Expect(reset.Reboots).To(Equal(1))

			_, err = loader.Load(cfg, store, &entries.Entry{Action: entries.Shutdown})
			Expect(err).To(BeNil())
			Expect(reset.Shutdowns).To(Equal(1))
		})

		It("requests the firmware UI preserving other indication bits", func() {
			existing := uint64(1) << 4
			Expect(store.SetUint64(efi.GlobalVariable, constants.OsIndicationsName,
				efivars.DefaultAttrs, &existing)).To(Succeed())

			_, err := loader.Load(cfg, store, &entries.Entry{Action: entries.ResetToFirmware})
			Expect(err).To(BeNil())
			Expect(reset.WarmResets).To(Equal(1))
			Expect(reset.Stalls).To(BeEmpty())

			got, err := store.GetUint64(efi.GlobalVariable, constants.OsIndicationsName)
			Expect(err).To(BeNil())
			Expect(got).To(Equal(existing | constants.OsIndicationBootToFwUI))
		})

		It("stalls and still resets when the variable write fails", func() {
			vars.SetErr = fmt.Errorf("firmware says no")

			_, err := loader.Load(cfg, store, &entries.Entry{Action: entries.ResetToFirmware})
			Expect(err).To(BeNil())
			Expect(reset.WarmResets).To(Equal(1))
			Expect(reset.Stalls).To(Equal([]time.Duration{5 * time.Second}))
		})
	})

	Describe("local EFI images", func() {
		It("builds the file device path and injects load options", func() {
			handle := newHandle(map[string]interface{}{"/vmlinuz": "kernel"})
			e := &entries.Entry{
				Action:  entries.BootEfi,
				EfiPath: entries.EfiPath(`\vmlinuz`),
				Handle:  handle,
				Options: "root=/dev/sda2 rw",
			}

			h, err := loader.Load(cfg, store, e)
			Expect(err).To(BeNil())
			Expect(h).NotTo(Equal(types.NoImage))

			Expect(images.Loaded).To(HaveLen(1))
			dp := images.Loaded[0].DevicePath
			Expect(dp).NotTo(BeEmpty())
			last, ok := dp[len(dp)-1].(efi.FilePathDevicePathNode)
			Expect(ok).To(BeTrue())
			Expect(string(last)).To(Equal(`\vmlinuz`))

			Expect(images.Options[h]).To(Equal(efivars.EncodeUTF16("root=/dev/sda2 rw")))
		})

		It("rejects an entry without a path", func() {
			_, err := loader.Load(cfg, store, &entries.Entry{Action: entries.BootEfi})
			Expect(err).To(Equal(errors.ErrConfigMissingEfi))
		})

		It("rejects an entry without a volume handle", func() {
			_, err := loader.Load(cfg, store, &entries.Entry{
				Action:  entries.BootEfi,
				EfiPath: entries.EfiPath(`\vmlinuz`),
			})
			Expect(err).To(Equal(errors.ErrConfigMissingHandle))
		})

		It("propagates a load failure", func() {
			handle := newHandle(map[string]interface{}{"/vmlinuz": "kernel"})
			images.LoadErr = fmt.Errorf("unsupported")

			_, err := loader.Load(cfg, store, &entries.Entry{
				Action:  entries.BootEfi,
				EfiPath: entries.EfiPath(`\vmlinuz`),
				Handle:  handle,
			})
			Expect(err).NotTo(BeNil())
		})

		It("unloads the image when option injection fails", func() {
			handle := newHandle(map[string]interface{}{"/vmlinuz": "kernel"})
			cfg.Loader = &optionRejectingLoader{MockLoader: images}

			_, err := loader.Load(cfg, store, &entries.Entry{
				Action:  entries.BootEfi,
				EfiPath: entries.EfiPath(`\vmlinuz`),
				Handle:  handle,
				Options: "quiet",
			})
			Expect(err).NotTo(BeNil())
			Expect(images.Unloaded).To(HaveLen(1))
		})
	})

	Describe("load options", func() {
		It("encodes the command line as UTF-16", func() {
			Expect(loader.SetLoadOptions(cfg, 1, "quiet splash")).To(Succeed())
			Expect(images.Options[1]).To(Equal(efivars.EncodeUTF16("quiet splash")))
		})
	})
})

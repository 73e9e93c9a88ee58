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

package bootmgr_test

import (
	"fmt"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4/vfst"

	"github.com/uefikit/bootmgr/pkg/bootmgr"
	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/mocks"
	"github.com/uefikit/bootmgr/pkg/types"
)

var _ = Describe("Boot manager", Label("bootmgr"), func() {
	var cfg *types.Config
	var vars *mocks.MockVariables
	var store *efivars.Store
	var images *mocks.MockLoader
	var reset *mocks.MockReset
	var network *mocks.MockNetwork
	var cleanup func()

	entryBody := func(title, key string) string {
		return fmt.Sprintf("title %s\nsort_key %s\nlinux /vmlinuz\n", title, key)
	}

	baseFiles := func() map[string]interface{} {
		return map[string]interface{}{
			"/loader/entries/a.conf":  entryBody("Alpha", "a"),
			"/loader/entries/b.conf":  entryBody("Bravo", "b"),
			"/loader/entries/c.conf":  entryBody("Charlie", "c"),
			"/loader/entries/d.conf":  entryBody("Delta", "d"),
			"/loader/bootmgr-rs.conf": "timeout 7\ndefault 3\n",
			"/vmlinuz":                "kernel",
		}
	}

	setup := func(files map[string]interface{}) {
		fs, c, err := vfst.NewTestFS(files)
		Expect(err).To(BeNil())
		cleanup = c

		vol := &mocks.MockVolume{
			Name: "esp", Fs: fs, Label: "ESP",
			Type: constants.ESPGUID, HasType: true,
			UUID: constants.VendorGUID, HasUUID: true,
		}
		cfg = &types.Config{
			Logger:     types.NewNullLogger(),
			Vars:       vars,
			Partitions: &mocks.MockPartitions{Vols: []types.VolumeHandle{vol}},
			Loader:     images,
			Net:        network,
			Reset:      reset,
			Timer:      &mocks.FakeTimer{Value: 42, Step: 1},
			Security:   &mocks.MockSecurity{},
		}
	}

	newManager := func() *bootmgr.BootManager {
		b, err := bootmgr.New(cfg)
		Expect(err).To(BeNil())
		return b
	}

	BeforeEach(func() {
		vars = mocks.NewMockVariables()
		store = efivars.NewStore(types.NewNullLogger(), vars)
		images = mocks.NewMockLoader()
		reset = &mocks.MockReset{}
		network = mocks.NewMockNetwork()
	})

	AfterEach(func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	})

	It("discovers, ranks and appends the special entries", func() {
		setup(baseFiles())
		b := newManager()

		list := b.List()
		Expect(list).To(HaveLen(7))
		Expect(list[0].Title).To(Equal("Alpha"))
		Expect(list[3].Title).To(Equal("Delta"))
		Expect(list[4].Action).To(Equal(entries.Reboot))
		Expect(list[6].Action).To(Equal(entries.ResetToFirmware))
		Expect(b.Settings().Timeout).To(Equal(7))
		Expect(b.Timeout()).To(Equal(7))
	})

	It("reads settings from a configured boot filesystem", func() {
		setup(baseFiles())
		bootFs, c, err := vfst.NewTestFS(map[string]interface{}{
			"/loader/bootmgr-rs.conf": "timeout 9\n",
		})
		Expect(err).To(BeNil())
		defer c()
		cfg.Fs = bootFs

		b := newManager()
		// entries still come off the volume, only settings move
		Expect(b.List()).To(HaveLen(7))
		Expect(b.Timeout()).To(Equal(9))
	})

	It("publishes the loader interface variables", func() {
		setup(baseFiles())
		newManager()

		guid := constants.LoaderGUID
		info, err := store.GetString(guid, efivars.LoaderInfo)
		Expect(err).To(BeNil())
		Expect(info).To(ContainSubstring("bootmgr"))

		names, err := store.GetString(guid, efivars.LoaderEntries)
		Expect(err).To(BeNil())
		Expect(names).To(ContainSubstring("a.conf\x00b.conf"))

		part, err := store.GetString(guid, efivars.LoaderDevicePartUUID)
		Expect(err).To(BeNil())
		Expect(part).To(Equal("23600D08-561E-4E68-A024-1D7D6E04EE4E"))

		Expect(store.Exists(guid, efivars.LoaderTimeInitUSec)).To(BeTrue())
	})

	Describe("default selection", func() {
		It("prefers the persisted variable over the configured default", func() {
			setup(baseFiles())
			idx := uint16(2)
			Expect(store.SetUint16(constants.VendorGUID, constants.BootDefaultName,
				efivars.DefaultAttrs, &idx)).To(Succeed())

			Expect(newManager().DefaultIndex()).To(Equal(2))
		})

		It("falls back to the configured default without the variable", func() {
			setup(baseFiles())
			Expect(newManager().DefaultIndex()).To(Equal(3))
		})

		It("falls back to the first entry with neither", func() {
			files := baseFiles()
			files["/loader/bootmgr-rs.conf"] = "timeout 7\n"
			setup(files)
			Expect(newManager().DefaultIndex()).To(Equal(0))
		})

		It("ignores an out-of-range persisted index", func() {
			setup(baseFiles())
			idx := uint16(50)
			Expect(store.SetUint16(constants.VendorGUID, constants.BootDefaultName,
				efivars.DefaultAttrs, &idx)).To(Succeed())

			Expect(newManager().DefaultIndex()).To(Equal(3))
		})

		It("honors LoaderEntryDefault over the persisted index", func() {
			setup(baseFiles())
			idx := uint16(2)
			Expect(store.SetUint16(constants.VendorGUID, constants.BootDefaultName,
				efivars.DefaultAttrs, &idx)).To(Succeed())
			name := "b.conf"
			Expect(store.SetString(constants.LoaderGUID, efivars.LoaderEntryDefault,
				efivars.DefaultAttrs, &name)).To(Succeed())

			b := newManager()
			Expect(b.DefaultIndex()).To(Equal(1))
			// persistent, must survive the read
			Expect(store.Exists(constants.LoaderGUID, efivars.LoaderEntryDefault)).To(BeTrue())
		})

		It("skips a LoaderEntryDefault naming no entry", func() {
			setup(baseFiles())
			name := "gone.conf"
			Expect(store.SetString(constants.LoaderGUID, efivars.LoaderEntryDefault,
				efivars.DefaultAttrs, &name)).To(Succeed())

			Expect(newManager().DefaultIndex()).To(Equal(3))
		})
	})

	Describe("one-shot variables", func() {
		It("selects the named entry once and consumes the variable", func() {
			setup(baseFiles())
			name := "c.conf"
			Expect(store.SetString(constants.LoaderGUID, efivars.LoaderEntryOneShot,
				efivars.DefaultAttrs, &name)).To(Succeed())

			b := newManager()
			Expect(b.DefaultIndex()).To(Equal(2))
			Expect(store.Exists(constants.LoaderGUID, efivars.LoaderEntryOneShot)).To(BeFalse())
		})

		It("overrides the timeout for this boot only", func() {
			setup(baseFiles())
			v := "menu-force"
			Expect(store.SetString(constants.LoaderGUID, efivars.LoaderConfigTimeoutOneShot,
				efivars.DefaultAttrs, &v)).To(Succeed())

			b := newManager()
			Expect(b.Timeout()).To(Equal(-1))
			Expect(store.Exists(constants.LoaderGUID, efivars.LoaderConfigTimeoutOneShot)).To(BeFalse())
		})

		It("applies the persistent timeout override below the one-shot", func() {
			setup(baseFiles())
			v := "20"
			Expect(store.SetString(constants.LoaderGUID, efivars.LoaderConfigTimeout,
				efivars.DefaultAttrs, &v)).To(Succeed())

			b := newManager()
			Expect(b.Timeout()).To(Equal(20))
			Expect(store.Exists(constants.LoaderGUID, efivars.LoaderConfigTimeout)).To(BeTrue())
		})
	})

	Describe("SetDefault", func() {
		It("persists and clears the default index", func() {
			setup(baseFiles())
			b := newManager()

			Expect(b.SetDefault(1)).To(Succeed())
			got, err := store.GetUint16(constants.VendorGUID, constants.BootDefaultName)
			Expect(err).To(BeNil())
			Expect(got).To(Equal(uint16(1)))
			Expect(b.DefaultIndex()).To(Equal(1))

			Expect(b.SetDefault(-1)).To(Succeed())
			Expect(store.Exists(constants.VendorGUID, constants.BootDefaultName)).To(BeFalse())
			Expect(b.DefaultIndex()).To(Equal(3))
		})

		It("rejects an index past the list", func() {
			setup(baseFiles())
			Expect(newManager().SetDefault(99)).NotTo(BeNil())
		})
	})

	Describe("loading and booting", func() {
		It("boots an entry and stamps the exec time", func() {
			setup(baseFiles())
			b := newManager()

			Expect(b.Boot(0)).To(Succeed())
			Expect(images.Started).To(HaveLen(1))
			Expect(store.Exists(constants.LoaderGUID, efivars.LoaderTimeExecUSec)).To(BeTrue())
		})

		It("handles reset actions without starting an image", func() {
			setup(baseFiles())
			b := newManager()

			Expect(b.Boot(4)).To(Succeed())
			Expect(reset.Reboots).To(Equal(1))
			Expect(images.Started).To(BeEmpty())
		})

		It("marks the entry bad when its load fails", func() {
			setup(baseFiles())
			b := newManager()
			images.LoadErr = fmt.Errorf("access denied")

			_, err := b.Load(0)
			Expect(err).NotTo(BeNil())
			Expect(b.List()[0].Bad).To(BeTrue())

			images.LoadErr = nil
			_, err = b.Load(1)
			Expect(err).To(BeNil())
		})

		It("does not mark reset entries bad when the reset fails", func() {
			setup(baseFiles())
			b := newManager()
			reset.Err = fmt.Errorf("not allowed")

			_, err := b.Load(4)
			Expect(err).NotTo(BeNil())
			Expect(b.List()[4].Bad).To(BeFalse())
		})

		It("rejects an out-of-range index", func() {
			setup(baseFiles())
			_, err := newManager().Load(99)
			Expect(err).NotTo(BeNil())
		})
	})

	It("applies the overlay and re-ranks", func() {
		files := baseFiles()
		files["/loader/entries.yaml"] = "b.conf:\n  title: Renamed\na.conf:\n  bad: true\n"
		setup(files)
		b := newManager()

		list := b.List()
		Expect(list[0].Filename).To(Equal("b.conf"))
		Expect(list[0].Title).To(Equal("Renamed"))
		Expect(list[3].Filename).To(Equal("a.conf"))
		Expect(list[3].Bad).To(BeTrue())
	})

	It("offers a network boot entry when PXE is enabled", func() {
		files := baseFiles()
		files["/loader/bootmgr-rs.conf"] = "pxe true\n"
		setup(files)
		network.Offer = &types.NetworkOffer{
			Server:   net.IPv4(192, 0, 2, 1),
			BootFile: "grubx64.efi",
		}

		list := newManager().List()
		Expect(list).To(HaveLen(8))
		Expect(list[7].Action).To(Equal(entries.BootTftp))
	})

	It("reports no failures for a freshly discovered list", func() {
		setup(baseFiles())
		Expect(newManager().Validate()).To(BeEmpty())
	})
})

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

package parsers_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4/vfst"

	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/mocks"
	"github.com/uefikit/bootmgr/pkg/parsers"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

var _ = Describe("Type-1 parser", Label("parsers", "type1"), func() {
	var cleanup func()
	var handle *entries.FsHandle
	var fs types.FS

	newVolume := func(files map[string]interface{}) {
		var err error
		fs, cleanup, err = vfst.NewTestFS(files)
		Expect(err).To(BeNil())
		handle, err = entries.NewFsHandle(&mocks.MockVolume{Name: "esp", Fs: fs})
		Expect(err).To(BeNil())
	}

	parse := func() []*entries.Entry {
		var out []*entries.Entry
		parsers.Type1{}.Parse(types.NewNullLogger(), handle, &out)
		return out
	}

	AfterEach(func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	})

	It("parses an entry with multiple initrd lines", func() {
		newVolume(map[string]interface{}{
			"/loader/entries/arch.conf": "title Linux\n" +
				"linux /vmlinuz-linux\n" +
				"initrd /intel-ucode.img\n" +
				"initrd /initramfs.img\n" +
				"options root=PARTUUID=abc ro\n",
		})

		out := parse()
		Expect(out).To(HaveLen(1))
		e := out[0]
		Expect(e.Title).To(Equal("Linux"))
		Expect(e.EfiPath).To(Equal(entries.EfiPath(`\vmlinuz-linux`)))
		Expect(e.Options).To(Equal("root=PARTUUID=abc ro initrd=/intel-ucode.img initrd=/initramfs.img"))
		Expect(e.Origin).To(Equal(entries.OriginType1))
		Expect(e.Filename).To(Equal("arch.conf"))
		Expect(e.Suffix).To(Equal(".conf"))
		Expect(e.Action).To(Equal(entries.BootEfi))
		Expect(e.Handle).To(Equal(handle))
	})

	It("prefers linux over efi and knows both key spellings", func() {
		newVolume(map[string]interface{}{
			"/loader/entries/both.conf": "linux /vmlinuz\n" +
				"efi /EFI/systemd/systemd-bootx64.efi\n" +
				"machine-id 0123456789abcdef0123456789abcdef\n" +
				"sort-key arch\n",
		})

		out := parse()
		Expect(out).To(HaveLen(1))
		Expect(out[0].EfiPath).To(Equal(entries.EfiPath(`\vmlinuz`)))
		Expect(out[0].MachineID.IsSet()).To(BeTrue())
		Expect(out[0].SortKey).To(Equal(entries.SortKey("arch")))
	})

	It("decrements a boot counter and renames the file", func() {
		newVolume(map[string]interface{}{
			"/loader/entries/somelinuxconf+3.conf": "title Counted\nlinux /vmlinuz\n",
		})

		out := parse()
		Expect(out).To(HaveLen(1))
		Expect(out[0].Filename).To(Equal("somelinuxconf+2-1.conf"))
		Expect(out[0].Bad).To(BeFalse())
		Expect(utils.Exists(fs, `\loader\entries\somelinuxconf+2-1.conf`)).To(BeTrue())
		Expect(utils.Exists(fs, `\loader\entries\somelinuxconf+3.conf`)).To(BeFalse())
	})

	It("marks an exhausted counter bad without renaming", func() {
		newVolume(map[string]interface{}{
			"/loader/entries/spent+0-3.conf": "title Spent\nlinux /vmlinuz\n",
		})

		out := parse()
		Expect(out).To(HaveLen(1))
		Expect(out[0].Filename).To(Equal("spent+0-3.conf"))
		Expect(out[0].Bad).To(BeTrue())
		Expect(utils.Exists(fs, `\loader\entries\spent+0-3.conf`)).To(BeTrue())
	})

	It("survives arbitrary bytes", func() {
		newVolume(map[string]interface{}{
			"/loader/entries/junk.conf": string([]byte{0x00, 0xff, 0xfe, '\n', 'x', ' ', 0x01, '\n'}),
		})

		out := parse()
		Expect(out).To(HaveLen(1))
		Expect(out[0].Title).To(Equal(""))
		Expect(out[0].EfiPath.IsSet()).To(BeFalse())
	})

	It("skips comments and keeps only recognized keys", func() {
		newVolume(map[string]interface{}{
			"/loader/entries/min.conf": "# generated\n" +
				"linux /vmlinuz\n" +
				"devicetree /dtbs/board.dtb\n" +
				"frobnicate yes\n",
		})

		out := parse()
		Expect(out).To(HaveLen(1))
		Expect(out[0].DevicetreePath).To(Equal(entries.EfiPath(`\dtbs\board.dtb`)))
	})

	It("yields nothing without an entries directory", func() {
		newVolume(map[string]interface{}{"/README": "hi"})
		Expect(parse()).To(BeEmpty())
	})
})

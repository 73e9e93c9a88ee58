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

package entries_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4/vfst"

	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/mocks"
	"github.com/uefikit/bootmgr/pkg/types"
)

var _ = Describe("Entry validation", Label("entries", "validate"), func() {
	var handle *entries.FsHandle
	var cleanup func()
	var log types.Logger

	// an architecture tag that can never match the running host
	otherArch := "aa64"
	if entries.HostArchitecture() == entries.ArchAa64 {
		otherArch = "x64"
	}

	BeforeEach(func() {
		log = types.NewNullLogger()
		fs, c, err := vfst.NewTestFS(map[string]interface{}{
			"/vmlinuz":        "image",
			"/dtbs/board.dtb": "blob",
		})
		Expect(err).To(BeNil())
		cleanup = c
		handle, err = entries.NewFsHandle(&mocks.MockVolume{Name: "esp", Fs: fs})
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		cleanup()
	})

	It("keeps an entry whose paths exist", func() {
		e := entries.NewBuilder(log).EfiPath("/vmlinuz").Handle(handle).Build()
		Expect(e.IsGood(log)).To(BeTrue())
	})

	It("keeps an entry tagged with the host architecture", func() {
		e := entries.NewBuilder(log).
			EfiPath("/vmlinuz").
			Handle(handle).
			Architecture(entries.HostArchitecture().String()).
			Build()
		Expect(e.IsGood(log)).To(BeTrue())
	})

	It("drops an entry built for another architecture", func() {
		e := entries.NewBuilder(log).
			EfiPath("/vmlinuz").
			Handle(handle).
			Architecture(otherArch).
			Build()
		Expect(e.IsGood(log)).To(BeFalse())
	})

	It("drops boot entries without an image path", func() {
		e := entries.NewBuilder(log).Handle(handle).Build()
		Expect(e.IsGood(log)).To(BeFalse())
	})

	It("drops local boot entries without a volume handle", func() {
		e := entries.NewBuilder(log).EfiPath("/vmlinuz").Build()
		Expect(e.IsGood(log)).To(BeFalse())
	})

	It("drops entries whose image is missing from the volume", func() {
		e := entries.NewBuilder(log).EfiPath("/missing").Handle(handle).Build()
		Expect(e.IsGood(log)).To(BeFalse())
	})

	It("drops entries whose devicetree is missing from the volume", func() {
		e := entries.NewBuilder(log).
			EfiPath("/vmlinuz").
			DevicetreePath("/dtbs/other.dtb").
			Handle(handle).
			Build()
		Expect(e.IsGood(log)).To(BeFalse())
	})

	It("keeps special entries untouched", func() {
		e := entries.NewBuilder(log).Action(entries.Reboot).Origin(entries.OriginSpecial).Build()
		Expect(e.IsGood(log)).To(BeTrue())
	})
})

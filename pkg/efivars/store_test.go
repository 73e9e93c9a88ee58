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

package efivars_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/mocks"
	"github.com/uefikit/bootmgr/pkg/types"
)

var _ = Describe("Variable store", Label("efivars", "store"), func() {
	var store *efivars.Store
	guid := constants.VendorGUID

	BeforeEach(func() {
		store = efivars.NewStore(types.NewNullLogger(), mocks.NewMockVariables())
	})

	Describe("integer round trips", func() {
		It("round-trips every width", func() {
			v8 := uint8(0x12)
			Expect(store.SetUint8(guid, "U8", efivars.DefaultAttrs, &v8)).To(Succeed())
			got8, err := store.GetUint8(guid, "U8")
			Expect(err).To(BeNil())
			Expect(got8).To(Equal(v8))

			v16 := uint16(0x1234)
			Expect(store.SetUint16(guid, "U16", efivars.DefaultAttrs, &v16)).To(Succeed())
			got16, err := store.GetUint16(guid, "U16")
			Expect(err).To(BeNil())
			Expect(got16).To(Equal(v16))

			v32 := uint32(0x12345678)
			Expect(store.SetUint32(guid, "U32", efivars.DefaultAttrs, &v32)).To(Succeed())
			got32, err := store.GetUint32(guid, "U32")
			Expect(err).To(BeNil())
			Expect(got32).To(Equal(v32))

			v64 := uint64(0x123456789abcdef0)
			Expect(store.SetUint64(guid, "U64", efivars.DefaultAttrs, &v64)).To(Succeed())
			got64, err := store.GetUint64(guid, "U64")
			Expect(err).To(BeNil())
			Expect(got64).To(Equal(v64))
		})

		It("reads an absent variable as zero", func() {
			got, err := store.GetUint32(guid, "Missing")
			Expect(err).To(BeNil())
			Expect(got).To(Equal(uint32(0)))
			Expect(store.Exists(guid, "Missing")).To(BeFalse())
		})

		It("deletes on a nil write and reads zero after", func() {
			v := uint16(7)
			Expect(store.SetUint16(guid, "D", efivars.DefaultAttrs, &v)).To(Succeed())
			Expect(store.Exists(guid, "D")).To(BeTrue())

			Expect(store.SetUint16(guid, "D", efivars.DefaultAttrs, nil)).To(Succeed())
			Expect(store.Exists(guid, "D")).To(BeFalse())
			got, err := store.GetUint16(guid, "D")
			Expect(err).To(BeNil())
			Expect(got).To(Equal(uint16(0)))
		})

		It("deleting an absent variable succeeds", func() {
			Expect(store.SetUint64(guid, "NeverSet", efivars.DefaultAttrs, nil)).To(Succeed())
		})
	})

	Describe("booleans", func() {
		It("round-trips and defaults to false", func() {
			v := true
			Expect(store.SetBool(guid, "B", efivars.DefaultAttrs, &v)).To(Succeed())
			got, err := store.GetBool(guid, "B")
			Expect(err).To(BeNil())
			Expect(got).To(BeTrue())

			got, err = store.GetBool(guid, "Absent")
			Expect(err).To(BeNil())
			Expect(got).To(BeFalse())
		})
	})

	Describe("strings", func() {
		It("round-trips UTF-16 with a terminator", func() {
			v := "arch.conf"
			Expect(store.SetString(guid, "S", efivars.DefaultAttrs, &v)).To(Succeed())
			got, err := store.GetString(guid, "S")
			Expect(err).To(BeNil())
			Expect(got).To(Equal(v))
		})

		It("keeps interior NULs in multi-string values", func() {
			v := "one.conf\x00two.conf"
			Expect(store.SetString(guid, "List", efivars.DefaultAttrs, &v)).To(Succeed())
			got, err := store.GetString(guid, "List")
			Expect(err).To(BeNil())
			Expect(got).To(Equal(v))
		})

		It("reads an absent string as empty", func() {
			got, err := store.GetString(guid, "AbsentS")
			Expect(err).To(BeNil())
			Expect(got).To(Equal(""))
		})

		It("consumes one-shot strings", func() {
			v := "one.conf"
			Expect(store.SetString(guid, "OneShot", efivars.DefaultAttrs, &v)).To(Succeed())

			got, ok, err := store.ConsumeString(guid, "OneShot")
			Expect(err).To(BeNil())
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(v))

			_, ok, err = store.ConsumeString(guid, "OneShot")
			Expect(err).To(BeNil())
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("Loader interface", Label("efivars", "bli"), func() {
	var store *efivars.Store

	BeforeEach(func() {
		store = efivars.NewStore(types.NewNullLogger(), mocks.NewMockVariables())
	})

	It("exports the status variables", func() {
		timer := &mocks.FakeTimer{Value: 1234}
		store.ExportLoaderInfo(timer, "bootmgr v0.0.1", "abc-def", []string{"one.conf", "two.conf"})

		guid := constants.LoaderGUID
		info, err := store.GetString(guid, efivars.LoaderInfo)
		Expect(err).To(BeNil())
		Expect(info).To(Equal("bootmgr v0.0.1"))

		initUSec, err := store.GetString(guid, efivars.LoaderTimeInitUSec)
		Expect(err).To(BeNil())
		Expect(initUSec).To(Equal("1234"))

		part, err := store.GetString(guid, efivars.LoaderDevicePartUUID)
		Expect(err).To(BeNil())
		Expect(part).To(Equal("ABC-DEF"))

		list, err := store.GetString(guid, efivars.LoaderEntries)
		Expect(err).To(BeNil())
		Expect(list).To(Equal("one.conf\x00two.conf"))

		features, err := store.GetUint64(guid, efivars.LoaderFeatures)
		Expect(err).To(BeNil())
		Expect(features).To(Equal(efivars.SupportedFeatures))
	})

	It("stamps the exec time", func() {
		store.MarkExec(&mocks.FakeTimer{Value: 99})
		got, err := store.GetString(constants.LoaderGUID, efivars.LoaderTimeExecUSec)
		Expect(err).To(BeNil())
		Expect(got).To(Equal("99"))
	})

	DescribeTable("timeout parsing",
		func(in string, want int, wantErr bool) {
			got, err := efivars.ParseLoaderTimeout(in)
			if wantErr {
				Expect(err).NotTo(BeNil())
				return
			}
			Expect(err).To(BeNil())
			Expect(got).To(Equal(want))
		},
		Entry("menu-force", "menu-force", -1, false),
		Entry("menu-hidden", "menu-hidden", 0, false),
		Entry("menu-disabled", "menu-disabled", 0, false),
		Entry("decimal", "10", 10, false),
		Entry("garbage", "soon", 0, true),
	)
})

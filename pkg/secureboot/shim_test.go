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

package secureboot_test

import (
	"fmt"

	efi "github.com/canonical/go-efilib"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4/vfst"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/efivars"
	"github.com/uefikit/bootmgr/pkg/mocks"
	"github.com/uefikit/bootmgr/pkg/secureboot"
	"github.com/uefikit/bootmgr/pkg/types"
)

// verifyingLoader drives the hooked Security2 slot the way the firmware
// loader would before accepting an image.
type verifyingLoader struct {
	*mocks.MockLoader
	registry *mocks.MockSecurity
}

func (l *verifyingLoader) LoadImage(parent types.ImageHandle, src types.ImageSource) (types.ImageHandle, error) {
	if l.registry.Security2 != nil && l.registry.Security2.FileAuthentication != nil {
		if err := l.registry.Security2.FileAuthentication(src.DevicePath, src.Buffer, true); err != nil {
			return types.NoImage, err
		}
	}
	return l.MockLoader.LoadImage(parent, src)
}

var _ = Describe("Shim-routed image loading", Label("secureboot", "shim"), func() {
	var cfg *types.Config
	var store *efivars.Store
	var registry *mocks.MockSecurity
	var loader *verifyingLoader

	enableSecureBoot := func() {
		one := uint8(1)
		Expect(store.SetUint8(efi.GlobalVariable, constants.SecureBootName,
			efivars.DefaultAttrs, &one)).To(Succeed())
	}

	BeforeEach(func() {
		store = efivars.NewStore(types.NewNullLogger(), mocks.NewMockVariables())
		registry = &mocks.MockSecurity{
			Security2: &types.Security2Protocol{
				FileAuthentication: func(dp efi.DevicePath, file []byte, bootPolicy bool) error {
					return fmt.Errorf("firmware denies unsigned image")
				},
			},
			Shim: &mocks.MockShim{},
		}
		loader = &verifyingLoader{MockLoader: mocks.NewMockLoader(), registry: registry}
		cfg = &types.Config{
			Logger:   types.NewNullLogger(),
			Security: registry,
			Loader:   loader,
		}
	})

	It("reports Secure Boot state from the global variable", func() {
		Expect(secureboot.Enabled(store)).To(BeFalse())
		enableSecureBoot()
		Expect(secureboot.Enabled(store)).To(BeTrue())
	})

	It("loads directly when Secure Boot is off", func() {
		// With enforcement off the firmware slot would not be consulted.
		registry.Security2.FileAuthentication = nil

		h, err := secureboot.LoadImage(cfg, store, types.NoImage, types.ImageSource{Buffer: []byte("image")})
		Expect(err).To(BeNil())
		Expect(h).NotTo(Equal(types.NoImage))
		Expect(registry.Opens).To(Equal(0))
		Expect(registry.Shim.Verified).To(BeEmpty())
	})

	It("loads directly when Shim is absent", func() {
		enableSecureBoot()
		registry.Shim = nil
		// The firmware slot still rejects, so the load fails; the point is
		// that no override was installed.
		_, err := secureboot.LoadImage(cfg, store, types.NoImage, types.ImageSource{Buffer: []byte("image")})
		Expect(err).NotTo(BeNil())
		Expect(registry.Opens).To(Equal(0))
	})

	It("loads directly when Shim hooks the loader itself", func() {
		enableSecureBoot()
		registry.Loader = true
		registry.Security2.FileAuthentication = nil

		h, err := secureboot.LoadImage(cfg, store, types.NoImage, types.ImageSource{Buffer: []byte("image")})
		Expect(err).To(BeNil())
		Expect(h).NotTo(Equal(types.NoImage))
		Expect(registry.Opens).To(Equal(0))
	})

	It("verifies a buffer through Shim under Secure Boot", func() {
		enableSecureBoot()

		image := []byte("machine-owner signed image")
		h, err := secureboot.LoadImage(cfg, store, types.NoImage, types.ImageSource{Buffer: image})
		Expect(err).To(BeNil())
		Expect(h).NotTo(Equal(types.NoImage))
		Expect(registry.Shim.Verified).To(HaveLen(1))
		Expect(registry.Shim.Verified[0]).To(Equal(image))

		// Hook released again, retain flag left for Shim.
		Expect(registry.Opens).To(Equal(registry.Releases))
		retain, err := store.GetBool(constants.ShimGUID, constants.ShimRetainName)
		Expect(err).To(BeNil())
		Expect(retain).To(BeTrue())
	})

	It("resolves a device path and verifies the file bytes", func() {
		enableSecureBoot()

		fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
			"/vmlinuz": "kernel bytes",
		})
		Expect(err).To(BeNil())
		defer cleanup()

		vol := &mocks.MockVolume{
			Name: "esp", Fs: fs,
			UUID:    constants.VendorGUID,
			HasUUID: true,
		}
		cfg.Partitions = &mocks.MockPartitions{Vols: []types.VolumeHandle{vol}}

		dp, err := vol.DevicePath()
		Expect(err).To(BeNil())
		dp = append(dp, efi.FilePathDevicePathNode(`\vmlinuz`))

		registry.Security = &types.SecurityProtocol{}
		registry.Security2 = nil
		secLoader := &pathVerifyingLoader{MockLoader: loader.MockLoader, registry: registry}
		cfg.Loader = secLoader

		h, err := secureboot.LoadImage(cfg, store, types.NoImage, types.ImageSource{DevicePath: dp})
		Expect(err).To(BeNil())
		Expect(h).NotTo(Equal(types.NoImage))
		Expect(registry.Shim.Verified).To(HaveLen(1))
		Expect(string(registry.Shim.Verified[0])).To(Equal("kernel bytes"))
	})

	It("falls back to the firmware verdict when Shim rejects", func() {
		enableSecureBoot()
		registry.Shim.VerifyErr = fmt.Errorf("untrusted")

		_, err := secureboot.LoadImage(cfg, store, types.NoImage, types.ImageSource{Buffer: []byte("image")})
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("firmware denies"))
		Expect(registry.Opens).To(Equal(registry.Releases))
	})
})

// pathVerifyingLoader drives the hooked Security slot, which only sees the
// device path.
type pathVerifyingLoader struct {
	*mocks.MockLoader
	registry *mocks.MockSecurity
}

func (l *pathVerifyingLoader) LoadImage(parent types.ImageHandle, src types.ImageSource) (types.ImageHandle, error) {
	if l.registry.Security != nil && l.registry.Security.FileAuthState != nil {
		if err := l.registry.Security.FileAuthState(0, src.DevicePath); err != nil {
			return types.NoImage, err
		}
	}
	return l.MockLoader.LoadImage(parent, src)
}

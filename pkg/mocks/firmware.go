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

package mocks

import (
	"context"
	"net"
	"time"

	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
)

// MockLoader records loads and starts.
type MockLoader struct {
	Loaded   []types.ImageSource
	Started  []types.ImageHandle
	Unloaded []types.ImageHandle
	Options  map[types.ImageHandle][]byte

	LoadErr  error
	StartErr error

	next types.ImageHandle
}

func NewMockLoader() *MockLoader {
	return &MockLoader{Options: map[types.ImageHandle][]byte{}}
}

func (l *MockLoader) LoadImage(parent types.ImageHandle, src types.ImageSource) (types.ImageHandle, error) {
	if l.LoadErr != nil {
		return types.NoImage, l.LoadErr
	}
	l.Loaded = append(l.Loaded, src)
	l.next++
	return l.next, nil
}

func (l *MockLoader) StartImage(h types.ImageHandle) error {
	if l.StartErr != nil {
		return l.StartErr
	}
	l.Started = append(l.Started, h)
	return nil
}

func (l *MockLoader) UnloadImage(h types.ImageHandle) error {
	l.Unloaded = append(l.Unloaded, h)
	return nil
}

func (l *MockLoader) SetLoadOptions(h types.ImageHandle, options []byte) error {
	l.Options[h] = options
	return nil
}

func (l *MockLoader) ReconnectAll() error {
	return nil
}

// MockReset counts reset requests instead of acting on them. Err makes every
// reset call fail.
type MockReset struct {
	Reboots    int
	Shutdowns  int
	WarmResets int
	Stalls     []time.Duration
	Err        error
}

func (r *MockReset) Reboot() error         { r.Reboots++; return r.Err }
func (r *MockReset) Shutdown() error       { r.Shutdowns++; return r.Err }
func (r *MockReset) WarmReset() error      { r.WarmResets++; return r.Err }
func (r *MockReset) Stall(d time.Duration) { r.Stalls = append(r.Stalls, d) }

// FakeTimer returns a fixed microsecond reading, advancing by Step per call.
type FakeTimer struct {
	Value uint64
	Step  uint64
}

func (t *FakeTimer) NowMicros() uint64 {
	v := t.Value
	t.Value += t.Step
	return v
}

// MockNetwork serves a canned DHCP offer and an in-memory file set keyed by
// TFTP path.
type MockNetwork struct {
	Offer *types.NetworkOffer
	Files map[string][]byte

	StartErr    error
	DiscoverErr error

	StartCalls int
}

func NewMockNetwork() *MockNetwork {
	return &MockNetwork{Files: map[string][]byte{}}
}

func (n *MockNetwork) Start(ctx context.Context) error {
	n.StartCalls++
	return n.StartErr
}

func (n *MockNetwork) Discover(ctx context.Context) (*types.NetworkOffer, error) {
	if n.DiscoverErr != nil {
		return nil, n.DiscoverErr
	}
	if n.Offer == nil {
		return nil, &errors.NotExistError{Kind: "offer", Path: "dhcp"}
	}
	return n.Offer, nil
}

func (n *MockNetwork) FileSize(ctx context.Context, server net.IP, path string) (int64, error) {
	data, ok := n.Files[path]
	if !ok {
		return 0, &errors.NotExistError{Kind: "tftp file", Path: path}
	}
	return int64(len(data)), nil
}

func (n *MockNetwork) ReadFile(ctx context.Context, server net.IP, path string) ([]byte, error) {
	data, ok := n.Files[path]
	if !ok {
		return nil, &errors.NotExistError{Kind: "tftp file", Path: path}
	}
	return data, nil
}

// MockShim is a ShimLock verifier with a programmable verdict.
type MockShim struct {
	VerifyErr error
	Verified  [][]byte
}

func (s *MockShim) Verify(buf []byte) error {
	s.Verified = append(s.Verified, buf)
	return s.VerifyErr
}

// MockSecurity is a SecurityRegistry over mutable protocol structs tracking
// open/release pairing.
type MockSecurity struct {
	Security  *types.SecurityProtocol
	Security2 *types.Security2Protocol
	Shim      *MockShim
	Loader    bool

	Opens    int
	Releases int
}

func (m *MockSecurity) OpenSecurity() (*types.SecurityProtocol, func(), error) {
	if m.Security == nil {
		return nil, nil, nil
	}
	m.Opens++
	return m.Security, func() { m.Releases++ }, nil
}

func (m *MockSecurity) OpenSecurity2() (*types.Security2Protocol, func(), error) {
	if m.Security2 == nil {
		return nil, nil, nil
	}
	m.Opens++
	return m.Security2, func() { m.Releases++ }, nil
}

func (m *MockSecurity) ShimLock() (types.ShimLock, bool) {
	if m.Shim == nil {
		return nil, false
	}
	return m.Shim, true
}

func (m *MockSecurity) ShimLoaderPresent() bool {
	return m.Loader
}

// MockFixup simulates the devicetree fixup protocol, optionally demanding a
// larger buffer once.
type MockFixup struct {
	Absent bool
	Need   int
	Err    error

	Calls []int
}

func (f *MockFixup) Present() bool {
	return !f.Absent
}

func (f *MockFixup) Fixup(blob []byte, flags uint32) error {
	f.Calls = append(f.Calls, len(blob))
	if f.Err != nil {
		return f.Err
	}
	if f.Need > len(blob) {
		return &errors.BufTooSmallError{Need: f.Need}
	}
	return nil
}

// MockTables records installed configuration tables.
type MockTables struct {
	Installed map[efi.GUID][]byte
	Err       error
}

func NewMockTables() *MockTables {
	return &MockTables{Installed: map[efi.GUID][]byte{}}
}

func (t *MockTables) Install(guid efi.GUID, data []byte) error {
	if t.Err != nil {
		return t.Err
	}
	t.Installed[guid] = data
	return nil
}

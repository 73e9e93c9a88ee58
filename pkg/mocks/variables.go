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
	"sort"

	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/errors"
)

type mockVariable struct {
	data  []byte
	attrs efi.VariableAttributes
}

// MockVariables is an in-memory variable store.
type MockVariables struct {
	store map[efi.VariableDescriptor]mockVariable

	// SetErr makes every write fail, for exercising the degraded paths.
	SetErr error
}

func NewMockVariables() *MockVariables {
	return &MockVariables{store: map[efi.VariableDescriptor]mockVariable{}}
}

func (m *MockVariables) GetVariable(guid efi.GUID, name string) ([]byte, efi.VariableAttributes, error) {
	v, ok := m.store[efi.VariableDescriptor{Name: name, GUID: guid}]
	if !ok {
		return nil, 0, errors.ErrVarNotFound
	}
	return v.data, v.attrs, nil
}

func (m *MockVariables) SetVariable(guid efi.GUID, name string, data []byte, attrs efi.VariableAttributes) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	key := efi.VariableDescriptor{Name: name, GUID: guid}
	if len(data) == 0 {
		delete(m.store, key)
	} else {
		m.store[key] = mockVariable{data: data, attrs: attrs}
	}
	return nil
}

func (m *MockVariables) DelVariable(guid efi.GUID, name string) error {
	key := efi.VariableDescriptor{Name: name, GUID: guid}
	if _, ok := m.store[key]; !ok {
		return errors.ErrVarNotFound
	}
	delete(m.store, key)
	return nil
}

func (m *MockVariables) ListVariables() ([]efi.VariableDescriptor, error) {
	out := make([]efi.VariableDescriptor, 0, len(m.store))
	for k := range m.store {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

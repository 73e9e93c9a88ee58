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

// Package efivars layers typed accessors over the raw firmware variable
// store, plus the Boot Loader Interface variable namespace.
package efivars

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"unicode/utf16"

	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
)

// DefaultAttrs is what variables are written with unless a caller says
// otherwise: persistent and visible to both boot services and the OS.
const DefaultAttrs = efi.AttributeNonVolatile |
	efi.AttributeBootserviceAccess |
	efi.AttributeRuntimeAccess

// Store wraps a Variables backend with typed get/set. Integer getters map a
// missing variable to the type's zero value; setters treat a nil pointer as
// a delete.
type Store struct {
	log  types.Logger
	vars types.Variables
}

func NewStore(log types.Logger, vars types.Variables) *Store {
	return &Store{log: log, vars: vars}
}

func (s *Store) Raw() types.Variables { return s.vars }

// Exists reports whether the variable is present at all, which the default
// zero value of the getters cannot.
func (s *Store) Exists(guid efi.GUID, name string) bool {
	_, _, err := s.vars.GetVariable(guid, name)
	return err == nil
}

func (s *Store) getUint(guid efi.GUID, name string, size int) (uint64, error) {
	data, _, err := s.vars.GetVariable(guid, name)
	if err != nil {
		if stderrors.Is(err, errors.ErrVarNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(data) != size {
		return 0, fmt.Errorf("variable %s: length %d, want %d", name, len(data), size)
	}
	var buf [8]byte
	copy(buf[:], data)
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (s *Store) setUint(guid efi.GUID, name string, attrs efi.VariableAttributes, size int, val *uint64) error {
	if val == nil {
		err := s.vars.DelVariable(guid, name)
		if stderrors.Is(err, errors.ErrVarNotFound) {
			return nil
		}
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], *val)
	return s.vars.SetVariable(guid, name, buf[:size], attrs)
}

func (s *Store) GetBool(guid efi.GUID, name string) (bool, error) {
	v, err := s.getUint(guid, name, 1)
	return v != 0, err
}

func (s *Store) GetUint8(guid efi.GUID, name string) (uint8, error) {
	v, err := s.getUint(guid, name, 1)
	return uint8(v), err
}

func (s *Store) GetUint16(guid efi.GUID, name string) (uint16, error) {
	v, err := s.getUint(guid, name, 2)
	return uint16(v), err
}

func (s *Store) GetUint32(guid efi.GUID, name string) (uint32, error) {
	v, err := s.getUint(guid, name, 4)
	return uint32(v), err
}

func (s *Store) GetUint64(guid efi.GUID, name string) (uint64, error) {
	return s.getUint(guid, name, 8)
}

func (s *Store) GetUint(guid efi.GUID, name string) (uint, error) {
	v, err := s.getUint(guid, name, 8)
	return uint(v), err
}

func (s *Store) SetBool(guid efi.GUID, name string, attrs efi.VariableAttributes, val *bool) error {
	if val == nil {
		return s.setUint(guid, name, attrs, 1, nil)
	}
	v := uint64(0)
	if *val {
		v = 1
	}
	return s.setUint(guid, name, attrs, 1, &v)
}

func (s *Store) SetUint8(guid efi.GUID, name string, attrs efi.VariableAttributes, val *uint8) error {
	if val == nil {
		return s.setUint(guid, name, attrs, 1, nil)
	}
	v := uint64(*val)
	return s.setUint(guid, name, attrs, 1, &v)
}

func (s *Store) SetUint16(guid efi.GUID, name string, attrs efi.VariableAttributes, val *uint16) error {
	if val == nil {
		return s.setUint(guid, name, attrs, 2, nil)
	}
	v := uint64(*val)
	return s.setUint(guid, name, attrs, 2, &v)
}

func (s *Store) SetUint32(guid efi.GUID, name string, attrs efi.VariableAttributes, val *uint32) error {
	if val == nil {
		return s.setUint(guid, name, attrs, 4, nil)
	}
	v := uint64(*val)
	return s.setUint(guid, name, attrs, 4, &v)
}

func (s *Store) SetUint64(guid efi.GUID, name string, attrs efi.VariableAttributes, val *uint64) error {
	return s.setUint(guid, name, attrs, 8, val)
}

func (s *Store) SetUint(guid efi.GUID, name string, attrs efi.VariableAttributes, val *uint) error {
	if val == nil {
		return s.setUint(guid, name, attrs, 8, nil)
	}
	v := uint64(*val)
	return s.setUint(guid, name, attrs, 8, &v)
}

// GetString reads a NUL-terminated UTF-16 string variable. Missing maps to
// the empty string. Interior NULs are kept, so multi-string values like
// LoaderEntries read back whole; only trailing termination is stripped.
func (s *Store) GetString(guid efi.GUID, name string) (string, error) {
	data, _, err := s.vars.GetVariable(guid, name)
	if err != nil {
		if stderrors.Is(err, errors.ErrVarNotFound) {
			return "", nil
		}
		return "", err
	}
	if len(data)%2 != 0 {
		return "", fmt.Errorf("variable %s: odd length %d", name, len(data))
	}
	u16 := make([]uint16, len(data)/2)
	for i := range u16 {
		u16[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	for len(u16) > 0 && u16[len(u16)-1] == 0 {
		u16 = u16[:len(u16)-1]
	}
	return string(utf16.Decode(u16)), nil
}

// SetString writes a NUL-terminated UTF-16 string variable; nil deletes.
func (s *Store) SetString(guid efi.GUID, name string, attrs efi.VariableAttributes, val *string) error {
	if val == nil {
		err := s.vars.DelVariable(guid, name)
		if stderrors.Is(err, errors.ErrVarNotFound) {
			return nil
		}
		return err
	}
	return s.vars.SetVariable(guid, name, EncodeUTF16(*val), attrs)
}

// SetBytes writes a raw slice value; nil deletes.
func (s *Store) SetBytes(guid efi.GUID, name string, attrs efi.VariableAttributes, val []byte) error {
	if val == nil {
		err := s.vars.DelVariable(guid, name)
		if stderrors.Is(err, errors.ErrVarNotFound) {
			return nil
		}
		return err
	}
	return s.vars.SetVariable(guid, name, val, attrs)
}

// ConsumeString reads a string variable and deletes it, for one-shot
// variables. Missing maps to ("", false).
func (s *Store) ConsumeString(guid efi.GUID, name string) (string, bool, error) {
	if !s.Exists(guid, name) {
		return "", false, nil
	}
	v, err := s.GetString(guid, name)
	if err != nil {
		return "", false, err
	}
	if err := s.vars.DelVariable(guid, name); err != nil && !stderrors.Is(err, errors.ErrVarNotFound) {
		s.log.Warnf("cannot consume variable %s: %v", name, err)
	}
	return v, true, nil
}

// EncodeUTF16 renders a string as little-endian UTF-16 with a trailing NUL,
// the encoding every string-valued variable uses.
func EncodeUTF16(s string) []byte {
	u16 := efi.ConvertUTF8ToUTF16(s + "\x00")
	out := make([]byte, 2*len(u16))
	for i, c := range u16 {
		binary.LittleEndian.PutUint16(out[2*i:], c)
	}
	return out
}

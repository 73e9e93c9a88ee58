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

package firmware

import (
	"context"
	stderrors "errors"

	efi "github.com/canonical/go-efilib"

	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
)

type realVariables struct {
	ctx context.Context
}

// NewVariables returns the variable store backed by efivarfs. Reads work for
// any user; writes need the privileges efivarfs demands.
func NewVariables() types.Variables {
	return &realVariables{ctx: efi.WithDefaultVarsBackend(context.Background())}
}

func (v *realVariables) GetVariable(guid efi.GUID, name string) ([]byte, efi.VariableAttributes, error) {
	data, attrs, err := efi.ReadVariable(v.ctx, name, guid)
	if err != nil {
		return nil, 0, mapVarErr(err)
	}
	return data, attrs, nil
}

func (v *realVariables) SetVariable(guid efi.GUID, name string, data []byte, attrs efi.VariableAttributes) error {
	return efi.WriteVariable(v.ctx, name, guid, attrs, data)
}

func (v *realVariables) DelVariable(guid efi.GUID, name string) error {
	// efivarfs deletes on a zero-length write carrying the variable's own
	// attributes.
	_, attrs, err := efi.ReadVariable(v.ctx, name, guid)
	if err != nil {
		return mapVarErr(err)
	}
	return efi.WriteVariable(v.ctx, name, guid, attrs, nil)
}

func (v *realVariables) ListVariables() ([]efi.VariableDescriptor, error) {
	return efi.ListVariables(v.ctx)
}

// mapVarErr folds the library's not-found sentinel into ours so callers only
// ever match one.
func mapVarErr(err error) error {
	if stderrors.Is(err, efi.ErrVarNotExist) {
		return errors.ErrVarNotFound
	}
	return err
}

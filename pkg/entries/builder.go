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

package entries

import (
	"github.com/uefikit/bootmgr/pkg/types"
)

// Builder assembles an Entry field by field. Setters for validated fields
// run the constructors; an invalid value is warned about and leaves the
// field unset, so arbitrary input can never produce a malformed entry.
type Builder struct {
	log   types.Logger
	entry Entry
}

func NewBuilder(log types.Logger) *Builder {
	if log == nil {
		log = types.NewNullLogger()
	}
	return &Builder{log: log}
}

// ToBuilder turns an existing entry back into a builder, so overlays edit
// through the same validation the parsers used.
func (e *Entry) ToBuilder(log types.Logger) *Builder {
	b := NewBuilder(log)
	b.entry = *e
	return b
}

func (b *Builder) Title(s string) *Builder {
	b.entry.Title = s
	return b
}

func (b *Builder) Version(s string) *Builder {
	b.entry.Version = s
	return b
}

func (b *Builder) MachineID(s string) *Builder {
	id, err := NewMachineID(s)
	if err != nil {
		b.log.Warnf("ignoring %v", err)
		return b
	}
	b.entry.MachineID = id
	return b
}

func (b *Builder) SortKey(s string) *Builder {
	key, err := NewSortKey(s)
	if err != nil {
		b.log.Warnf("ignoring %v", err)
		return b
	}
	b.entry.SortKey = key
	return b
}

func (b *Builder) Options(s string) *Builder {
	b.entry.Options = s
	return b
}

func (b *Builder) DevicetreePath(s string) *Builder {
	p, err := NewEfiPath(s)
	if err != nil {
		b.log.Warnf("ignoring %v", err)
		return b
	}
	b.entry.DevicetreePath = p
	return b
}

func (b *Builder) Architecture(s string) *Builder {
	arch, err := NewArchitecture(s)
	if err != nil {
		b.log.Warnf("ignoring %v", err)
		return b
	}
	b.entry.Architecture = arch
	return b
}

func (b *Builder) EfiPath(s string) *Builder {
	p, err := NewEfiPath(s)
	if err != nil {
		b.log.Warnf("ignoring %v", err)
		return b
	}
	b.entry.EfiPath = p
	return b
}

func (b *Builder) Action(a Action) *Builder {
	b.entry.Action = a
	return b
}

func (b *Builder) Bad(bad bool) *Builder {
	b.entry.Bad = bad
	return b
}

func (b *Builder) Handle(h *FsHandle) *Builder {
	b.entry.Handle = h
	return b
}

func (b *Builder) Origin(o Origin) *Builder {
	b.entry.Origin = o
	return b
}

func (b *Builder) Filename(name, suffix string) *Builder {
	b.entry.Filename = name
	b.entry.Suffix = suffix
	return b
}

func (b *Builder) Build() *Entry {
	e := b.entry
	return &e
}

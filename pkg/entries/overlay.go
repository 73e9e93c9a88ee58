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
	"gopkg.in/yaml.v3"

	"github.com/uefikit/bootmgr/pkg/types"
)

// Overlay is the single optional overrides file an external editor maintains:
// a map keyed by entry filename of fields to override. Overrides pass through
// the builder so invalid typed values are rejected with a warning, exactly as
// if a parser had seen them.
type Overlay map[string]OverlayFields

type OverlayFields struct {
	Title   *string `yaml:"title,omitempty"`
	Options *string `yaml:"options,omitempty"`
	SortKey *string `yaml:"sort-key,omitempty"`
	Bad     *bool   `yaml:"bad,omitempty"`
}

// ParseOverlay decodes the overlay file body.
func ParseOverlay(data []byte) (Overlay, error) {
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return o, nil
}

// Apply rewrites matching entries in place through their builders.
func (o Overlay) Apply(log types.Logger, list []*Entry) {
	for i, e := range list {
		fields, ok := o[e.Filename]
		if !ok {
			continue
		}
		b := e.ToBuilder(log)
		if fields.Title != nil {
			b.Title(*fields.Title)
		}
		if fields.Options != nil {
			b.Options(*fields.Options)
		}
		if fields.SortKey != nil {
			b.SortKey(*fields.SortKey)
		}
		if fields.Bad != nil {
			b.Bad(*fields.Bad)
		}
		list[i] = b.Build()
	}
}

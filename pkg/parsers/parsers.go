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

// Package parsers contains the per-schema boot entry scanners. Every parser
// walks one filesystem for one on-disk format and emits zero or more entries;
// a broken file is logged and skipped, it never aborts the scan.
package parsers

import (
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/types"
)

// Parser scans one volume for one entry schema. Emitted entries carry the
// owning handle and the parser's origin tag.
type Parser interface {
	Origin() entries.Origin
	Parse(log types.Logger, handle *entries.FsHandle, out *[]*entries.Entry)
}

// All returns every parser, in the order they run per volume.
func All() []Parser {
	return []Parser{
		&Type1{},
		&UKI{},
		&Windows{},
		&Fallback{},
		&Shell{},
		&MacOS{},
	}
}

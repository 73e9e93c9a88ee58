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

package utils

import (
	"strings"
)

// NormalizePath converts forward slashes to the backslash separators EFI file
// paths use. It is idempotent.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "/", `\`)
}

// HostPath converts a backslash-separated EFI path into the forward-slash
// form the FS abstraction expects, rooted at the volume.
func HostPath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// TftpPath converts a backslash-separated path back into the forward-slash
// form TFTP servers expect, without a leading slash.
func TftpPath(p string) string {
	return strings.TrimPrefix(strings.ReplaceAll(p, `\`, "/"), "/")
}

// JoinEfi joins path components with backslashes, collapsing duplicate
// separators at the seams.
func JoinEfi(parts ...string) string {
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(NormalizePath(p), `\`)
		if p != "" {
			trimmed = append(trimmed, p)
		}
	}
	return `\` + strings.Join(trimmed, `\`)
}

// BaseEfi returns the last component of a backslash-separated path.
func BaseEfi(p string) string {
	p = NormalizePath(p)
	if i := strings.LastIndex(p, `\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

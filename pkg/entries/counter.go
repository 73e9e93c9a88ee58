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
	"fmt"
	"strconv"
	"strings"
)

// Counter is the boot-counting state embedded in a type-1 entry filename:
// "<base>+<left>.conf" for an untried entry, "<base>+<left>-<done>.conf"
// once attempts have been recorded. left counts tries remaining, done counts
// tries burned.
type Counter struct {
	base   string
	suffix string
	left   uint64
	done   uint64
}

// ParseCounter recognizes the counter convention in a filename. ok is false
// when the name carries no counter.
func ParseCounter(filename string) (c *Counter, ok bool) {
	suffix := ""
	stem := filename
	if i := strings.LastIndex(filename, "."); i >= 0 {
		suffix = filename[i:]
		stem = filename[:i]
	}
	plus := strings.LastIndex(stem, "+")
	if plus < 0 {
		return nil, false
	}
	base, tail := stem[:plus], stem[plus+1:]
	leftStr, doneStr, hasDone := strings.Cut(tail, "-")
	left, err := strconv.ParseUint(leftStr, 10, 64)
	if err != nil {
		return nil, false
	}
	var done uint64
	if hasDone {
		done, err = strconv.ParseUint(doneStr, 10, 64)
		if err != nil {
			return nil, false
		}
	}
	return &Counter{base: base, suffix: suffix, left: left, done: done}, true
}

// Decrement burns one try. At zero tries left it does nothing; the entry is
// bad at that point.
func (c *Counter) Decrement() *Counter {
	if c.left > 0 {
		c.left--
		c.done++
	}
	return c
}

// IsBad reports whether all tries are burned.
func (c *Counter) IsBad() bool {
	return c.left == 0
}

// Filename renders the counter back into the on-disk name. The "-done" part
// is only present once at least one try has been recorded.
func (c *Counter) Filename() string {
	if c.done == 0 {
		return fmt.Sprintf("%s+%d%s", c.base, c.left, c.suffix)
	}
	return fmt.Sprintf("%s+%d-%d%s", c.base, c.left, c.done, c.suffix)
}

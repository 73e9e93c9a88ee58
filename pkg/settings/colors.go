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

package settings

import (
	"fmt"
)

// Color is a text attribute from the fixed firmware console palette.
type Color uint8

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White
)

var colorNames = map[string]Color{
	"black":        Black,
	"blue":         Blue,
	"green":        Green,
	"cyan":         Cyan,
	"red":          Red,
	"magenta":      Magenta,
	"brown":        Brown,
	"gray":         LightGray,
	"darkgray":     DarkGray,
	"lightblue":    LightBlue,
	"lightgreen":   LightGreen,
	"lightcyan":    LightCyan,
	"lightred":     LightRed,
	"lightmagenta": LightMagenta,
	"yellow":       Yellow,
	"white":        White,
}

// ParseColor maps a palette name to its attribute value.
func ParseColor(name string) (Color, error) {
	c, ok := colorNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown color %q", name)
	}
	return c, nil
}

func (c Color) String() string {
	for name, v := range colorNames {
		if v == c && name != "gray" {
			return name
		}
	}
	if c == LightGray {
		return "gray"
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

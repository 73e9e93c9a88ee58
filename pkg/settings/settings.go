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

// Package settings parses the boot manager's own configuration file:
// "key value" lines, '#' comments, unknown keys ignored, invalid values
// keep their defaults.
package settings

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/uefikit/bootmgr/pkg/constants"
	"github.com/uefikit/bootmgr/pkg/entries"
	"github.com/uefikit/bootmgr/pkg/types"
	"github.com/uefikit/bootmgr/pkg/utils"
)

// Settings is the decoded \loader\bootmgr-rs.conf.
type Settings struct {
	// Timeout in seconds before the default entry boots; -1 disables
	// auto-boot, 0 boots immediately.
	Timeout int `mapstructure:"timeout"`

	// Default is the configured default index into the sorted list, nil
	// when unconfigured.
	Default *uint `mapstructure:"default"`

	// Drivers enables loading UEFI drivers from DriverPath at startup.
	Drivers    bool            `mapstructure:"drivers"`
	DriverPath entries.EfiPath `mapstructure:"driver_path"`

	// Editor lets the front-end expose options editing.
	Editor bool `mapstructure:"editor"`

	// Pxe offers a network boot entry when a DHCP offer carries one.
	Pxe bool `mapstructure:"pxe"`

	Background          Color `mapstructure:"background"`
	Foreground          Color `mapstructure:"foreground"`
	HighlightBackground Color `mapstructure:"highlight_background"`
	HighlightForeground Color `mapstructure:"highlight_foreground"`
}

// NewSettings returns the defaults: 5 second timeout, no configured default,
// drivers off, standard dark theme.
func NewSettings() *Settings {
	return &Settings{
		Timeout:             constants.DefaultTimeout,
		DriverPath:          entries.EfiPath(constants.DefaultDriverPath),
		Background:          Black,
		Foreground:          LightGray,
		HighlightBackground: LightGray,
		HighlightForeground: Black,
	}
}

// Parse reads the settings file from the boot volume. A missing file yields
// the defaults; so does every unknown key or unparseable value.
func Parse(log types.Logger, fs types.FS) *Settings {
	s := NewSettings()
	data, err := utils.ReadFile(fs, constants.SettingsPath)
	if err != nil {
		log.Debugf("no settings file %s: %v", constants.SettingsPath, err)
		return s
	}
	s.apply(log, ParseKeyValues(data))
	return s
}

// ParseKeyValues splits a "key value" config body into a map. Blank lines
// and '#' comments are skipped; a repeated key keeps the last value.
func ParseKeyValues(data []byte) map[string]string {
	kv := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, " ")
		if !found {
			key, value, found = strings.Cut(line, "\t")
		}
		if !found {
			continue
		}
		kv[key] = strings.TrimSpace(value)
	}
	return kv
}

// apply decodes one key at a time so a bad value only loses that key, never
// the whole file.
func (s *Settings) apply(log types.Logger, kv map[string]string) {
	for key, value := range kv {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           s,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.ComposeDecodeHookFunc(decodeColor, decodePath),
		})
		if err != nil {
			log.Warnf("settings decoder: %v", err)
			return
		}
		if err := dec.Decode(map[string]string{key: value}); err != nil {
			log.Warnf("ignoring setting %s=%q: %v", key, value, err)
		}
	}
}

func decodeColor(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(Color(0)) {
		return data, nil
	}
	return ParseColor(data.(string))
}

func decodePath(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(entries.EfiPath("")) {
		return data, nil
	}
	return entries.NewEfiPath(data.(string))
}

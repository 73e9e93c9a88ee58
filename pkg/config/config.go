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

// Package config assembles the types.Config aggregate through functional
// options. Fields left unset get the hosted defaults; tests override
// everything with mocks.
package config

import (
	"github.com/uefikit/bootmgr/pkg/firmware"
	"github.com/uefikit/bootmgr/pkg/types"
)

type GenericOptions func(c *types.Config)

func WithLogger(logger types.Logger) GenericOptions {
	return func(c *types.Config) { c.Logger = logger }
}

func WithFs(fs types.FS) GenericOptions {
	return func(c *types.Config) { c.Fs = fs }
}

func WithVariables(vars types.Variables) GenericOptions {
	return func(c *types.Config) { c.Vars = vars }
}

func WithPartitions(p types.PartitionSource) GenericOptions {
	return func(c *types.Config) { c.Partitions = p }
}

func WithLoader(l types.ImageLoader) GenericOptions {
	return func(c *types.Config) { c.Loader = l }
}

func WithNetwork(n types.Network) GenericOptions {
	return func(c *types.Config) { c.Net = n }
}

func WithReset(r types.Reset) GenericOptions {
	return func(c *types.Config) { c.Reset = r }
}

func WithTimer(t types.Timer) GenericOptions {
	return func(c *types.Config) { c.Timer = t }
}

func WithSecurity(s types.SecurityRegistry) GenericOptions {
	return func(c *types.Config) { c.Security = s }
}

func WithFixup(f types.DevicetreeFixup) GenericOptions {
	return func(c *types.Config) { c.Fixup = f }
}

func WithTables(t types.ConfigTables) GenericOptions {
	return func(c *types.Config) { c.Tables = t }
}

func WithSelfImage(h types.ImageHandle) GenericOptions {
	return func(c *types.Config) { c.SelfImage = h }
}

// NewConfig builds a Config with hosted defaults for anything the options do
// not set. The hosted bindings talk to efivarfs and the block layer and are
// only fully functional on Linux with sufficient privileges.
func NewConfig(opts ...GenericOptions) *types.Config {
	c := &types.Config{}
	for _, o := range opts {
		o(c)
	}

	if c.Logger == nil {
		c.Logger = types.NewLogger()
	}
	if c.Vars == nil {
		c.Vars = firmware.NewVariables()
	}
	if c.Partitions == nil {
		c.Partitions = firmware.NewPartitions(c.Logger)
	}
	if c.Loader == nil {
		c.Loader = firmware.NewLoader(c.Logger)
	}
	if c.Net == nil {
		c.Net = firmware.NewNetwork(c.Logger)
	}
	if c.Reset == nil {
		c.Reset = firmware.NewReset(c.Logger)
	}
	if c.Timer == nil {
		c.Timer = firmware.NewTimer()
	}
	if c.Security == nil {
		c.Security = firmware.NewSecurity()
	}
	if c.Fixup == nil {
		c.Fixup = firmware.NewFixup()
	}
	if c.Tables == nil {
		c.Tables = firmware.NewTables(c.Logger)
	}
	return c
}

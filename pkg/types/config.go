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

package types

// Config aggregates the firmware capabilities and ambient services every
// component receives. It is assembled once by the front-end through the
// functional options in pkg/config.
type Config struct {
	Logger     Logger
	Fs         FS // boot image volume filesystem; nil opens it from Partitions
	Vars       Variables
	Partitions PartitionSource
	Loader     ImageLoader
	Net        Network
	Reset      Reset
	Timer      Timer
	Security   SecurityRegistry
	Fixup      DevicetreeFixup
	Tables     ConfigTables

	// SelfImage is the boot manager's own image handle, used as the
	// parent for every load.
	SelfImage ImageHandle
}

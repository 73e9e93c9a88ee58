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

package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/uefikit/bootmgr/pkg/bootmgr"
	"github.com/uefikit/bootmgr/pkg/config"
	"github.com/uefikit/bootmgr/pkg/errors"
	"github.com/uefikit/bootmgr/pkg/types"
)

// CheckRoot is a helper to return on PreRunE, for commands that write
// firmware variables.
func CheckRoot() error {
	if os.Geteuid() != 0 {
		return errors.NewExit("this command requires root privileges", 2)
	}
	return nil
}

func newLogger() types.Logger {
	log := types.NewLogger()
	if viper.GetBool("debug") {
		log.SetLevel(logrus.DebugLevel)
	}
	if viper.GetBool("quiet") {
		log.SetOutput(io.Discard)
	}
	return log
}

// newBootManager runs the full startup sequence against the host firmware
// bindings.
func newBootManager() (*bootmgr.BootManager, error) {
	cfg := config.NewConfig(config.WithLogger(newLogger()))
	mgr, err := bootmgr.New(cfg)
	if err != nil {
		return nil, errors.NewExitFromError(err, 1)
	}
	return mgr, nil
}

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
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/uefikit/bootmgr/pkg/errors"
)

func NewSetDefaultCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "set-default <index>",
		Args:  cobra.MaximumNArgs(1),
		Short: "Persist the default boot entry index",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return CheckRoot()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newBootManager()
			if err != nil {
				return err
			}

			if cmd.Flag("clear").Changed {
				return errors.NewExitFromError(mgr.SetDefault(-1), 1)
			}
			if len(args) != 1 {
				return errors.NewExit("an index or --clear is required", 1)
			}
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.NewExit(fmt.Sprintf("invalid index %q", args[0]), 1)
			}
			return errors.NewExitFromError(mgr.SetDefault(idx), 1)
		},
	}
	root.AddCommand(c)
	c.Flags().Bool("clear", false, "Remove the persisted default")
	return c
}

// register the subcommand into rootCmd
var _ = NewSetDefaultCmd(rootCmd)

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

func NewBootCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "boot [index]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Boot an entry, or the default one",
		Long: "Without --exec this is a dry run: the entry is resolved and " +
			"checked but nothing is loaded. Image loading needs firmware " +
			"boot services and fails on a hosted system.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newBootManager()
			if err != nil {
				return err
			}

			idx := mgr.DefaultIndex()
			if len(args) == 1 {
				idx, err = strconv.Atoi(args[0])
				if err != nil {
					return errors.NewExit(fmt.Sprintf("invalid index %q", args[0]), 1)
				}
			}
			list := mgr.List()
			if idx < 0 || idx >= len(list) {
				return errors.NewExit(fmt.Sprintf("index %d out of range", idx), 1)
			}

			if !cmd.Flag("exec").Changed {
				e := list[idx]
				fmt.Fprintf(cmd.OutOrStdout(), "would boot %d: %s (%s)\n", idx, e.DisplayTitle(), e.Action)
				return nil
			}
			return errors.NewExitFromError(mgr.Boot(idx), 1)
		},
	}
	root.AddCommand(c)
	c.Flags().Bool("exec", false, "Actually load and start the image")
	return c
}

// register the subcommand into rootCmd
var _ = NewBootCmd(rootCmd)

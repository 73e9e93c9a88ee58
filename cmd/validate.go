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

	"github.com/spf13/cobra"

	"github.com/uefikit/bootmgr/pkg/errors"
)

func NewValidateCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "validate",
		Args:  cobra.ExactArgs(0),
		Short: "Re-check every discovered entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := newBootManager()
			if err != nil {
				return err
			}

			failures := mgr.Validate()
			out := cmd.OutOrStdout()
			for _, e := range mgr.List() {
				if ferr, ok := failures[e.Filename]; ok {
					fmt.Fprintf(out, "FAIL %-40s %v\n", e.Filename, ferr)
				} else {
					fmt.Fprintf(out, "ok   %s\n", e.Filename)
				}
			}
			if len(failures) > 0 {
				return errors.NewExit(fmt.Sprintf("%d entries failed validation", len(failures)), 1)
			}
			return nil
		},
	}
	root.AddCommand(c)
	return c
}

// register the subcommand into rootCmd
var _ = NewValidateCmd(rootCmd)

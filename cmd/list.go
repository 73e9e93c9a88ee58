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
	"github.com/spf13/viper"
)

func NewListCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Args:  cobra.ExactArgs(0),
		Short: "List the discovered boot entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			viper.SetDefault("quiet", true)

			mgr, err := newBootManager()
			if err != nil {
				return err
			}

			def := mgr.DefaultIndex()
			out := cmd.OutOrStdout()
			for i, e := range mgr.List() {
				marker := " "
				if i == def {
					marker = "*"
				}
				bad := ""
				if e.Bad {
					bad = " (bad)"
				}
				fmt.Fprintf(out, "%s %3d  %-40s %s%s\n", marker, i, e.DisplayTitle(), e.Origin, bad)
			}
			return nil
		},
	}
	root.AddCommand(c)
	return c
}

// register the subcommand into rootCmd
var _ = NewListCmd(rootCmd)

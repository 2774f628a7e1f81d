// Copyright © 2018 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/clearlinux/soar/internal/ops"
	"github.com/spf13/cobra"
)

var updateFlags = struct {
	listOnly bool
}{}

var updateCmd = &cobra.Command{
	Use:   "update [query]...",
	Short: "Update installed packages (all, unless queries are given)",
	Run: func(cmd *cobra.Command, args []string) {
		oc, err := buildContext(cmd.Context())
		if err != nil {
			fail(err)
		}

		if updateFlags.listOnly {
			candidates, err := oc.ListUpdates()
			if err != nil {
				fail(err)
			}
			if len(candidates) == 0 {
				fmt.Println("everything is up to date")
				return
			}
			for _, c := range candidates {
				fmt.Printf("%s: %s -> %s\n", c.Installed.FullName, c.Installed.Version, c.Resolved.Package.Version)
			}
			return
		}

		results, err := oc.Update(cmd.Context(), args, ops.InstallOptions{
			Yes:      rootFlags.yes,
			Parallel: rootFlags.parallel,
		})
		if err != nil {
			fail(err)
		}
		printInstallResults(results)
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateFlags.listOnly, "list", false, "only list packages that would be updated")
	RootCmd.AddCommand(updateCmd)
}

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

	"github.com/spf13/cobra"
)

var removeFlags = struct {
	exact bool
}{}

var removeCmd = &cobra.Command{
	Use:     "remove <query>...",
	Aliases: []string{"rm", "uninstall"},
	Short:   "Remove one or more installed packages",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		oc, err := buildContext(cmd.Context())
		if err != nil {
			fail(err)
		}
		if err := oc.Remove(args, removeFlags.exact); err != nil {
			fail(err)
		}
		for _, q := range args {
			fmt.Printf("%s: removed\n", q)
		}
	},
}

func init() {
	removeCmd.Flags().BoolVar(&removeFlags.exact, "exact", false, "forbid family-widening when a query is ambiguous")
	RootCmd.AddCommand(removeCmd)
}

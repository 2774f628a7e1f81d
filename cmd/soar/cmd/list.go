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

var listCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "List catalog packages, optionally restricted to one collection",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		oc, err := buildContext(cmd.Context())
		if err != nil {
			fail(err)
		}
		var collection string
		if len(args) == 1 {
			collection = args[0]
		}
		for _, rp := range oc.List(collection) {
			fmt.Printf("%s#%s  %s\n", rp.FullName("/"), rp.Collection, rp.Package.Version)
		}
	},
}

func init() {
	RootCmd.AddCommand(listCmd)
}

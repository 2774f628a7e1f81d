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

var queryCmd = &cobra.Command{
	Use:   "query <query>",
	Short: "List every catalog entry matching [family/]name[#collection]",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		oc, err := buildContext(cmd.Context())
		if err != nil {
			fail(err)
		}
		matches := oc.Query(args[0])
		if len(matches) == 0 {
			fmt.Println("no matches")
			return
		}
		for _, rp := range matches {
			fmt.Printf("%s/%s#%s  %s\n", rp.Package.Family, rp.Package.Name, rp.Collection, rp.Package.Version)
		}
	},
}

func init() {
	RootCmd.AddCommand(queryCmd)
}

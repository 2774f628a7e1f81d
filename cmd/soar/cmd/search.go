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

	"github.com/clearlinux/soar/internal/store"
	"github.com/spf13/cobra"
)

var searchFlags = struct {
	caseSensitive bool
	category      string
	provides      string
	limit         int
}{}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the catalog by name substring",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		oc, err := buildContext(cmd.Context())
		if err != nil {
			fail(err)
		}
		results := oc.Search(args[0], store.SearchOptions{
			CaseSensitive: searchFlags.caseSensitive,
			Category:      searchFlags.category,
			Provides:      searchFlags.provides,
			Limit:         searchFlags.limit,
		})
		if len(results) == 0 {
			fmt.Println("no matches")
			return
		}
		for _, r := range results {
			fmt.Printf("%s#%s  %s\n", r.Package.FullName("/"), r.Package.Collection, r.Package.Package.Description)
		}
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchFlags.caseSensitive, "case-sensitive", false, "match case-sensitively")
	searchCmd.Flags().StringVar(&searchFlags.category, "category", "", "filter results by category")
	searchCmd.Flags().StringVar(&searchFlags.provides, "provides", "", "filter results by a provided capability")
	searchCmd.Flags().IntVar(&searchFlags.limit, "limit", 0, "maximum results to print (0 = config default)")
	RootCmd.AddCommand(searchCmd)
}

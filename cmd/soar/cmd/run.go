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
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:                "run <query> [-- args...]",
	Short:              "Ensure a package is cached and execute it",
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	Run: func(cmd *cobra.Command, args []string) {
		oc, err := buildContext(cmd.Context())
		if err != nil {
			fail(err)
		}
		if err := oc.Run(cmd.Context(), args[0], args[1:]); err != nil {
			fail(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(runCmd)
}

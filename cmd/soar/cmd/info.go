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

var infoCmd = &cobra.Command{
	Use:   "info <query>",
	Short: "Show full catalog detail for one resolved package",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		oc, err := buildContext(cmd.Context())
		if err != nil {
			fail(err)
		}
		rp, err := oc.Info(args[0])
		if err != nil {
			fail(err)
		}
		p := rp.Package
		fmt.Printf("name:        %s\n", rp.FullName("/"))
		fmt.Printf("collection:  %s\n", rp.Collection)
		fmt.Printf("version:     %s\n", p.Version)
		fmt.Printf("description: %s\n", p.Description)
		fmt.Printf("homepage:    %s\n", p.Homepage)
		fmt.Printf("source:      %s\n", p.SourceURL)
		fmt.Printf("category:    %s\n", p.Category)
		fmt.Printf("provides:    %s\n", p.Provides)
		fmt.Printf("download:    %s\n", p.DownloadURL)
		fmt.Printf("size:        %s\n", p.Size)
		fmt.Printf("bsum:        %s\n", p.Bsum)
		fmt.Printf("build date:  %s\n", p.BuildDate)
		fmt.Printf("build log:   %s\n", p.BuildLogURL)
		fmt.Printf("build script: %s\n", p.BuildScriptURL)
		if p.Note != "" {
			fmt.Printf("note:        %s\n", p.Note)
		}
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

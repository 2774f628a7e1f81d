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

	"github.com/clearlinux/soar/internal/install"
	"github.com/clearlinux/soar/internal/integrate"
	"github.com/clearlinux/soar/internal/ops"
	"github.com/spf13/cobra"
)

var installFlags = struct {
	force          bool
	portable       bool
	portableHome   string
	portableConfig string
}{}

var installCmd = &cobra.Command{
	Use:   "install <query>...",
	Short: "Install one or more packages",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		oc, err := buildContext(cmd.Context())
		if err != nil {
			fail(err)
		}

		opts := ops.InstallOptions{
			Yes:      rootFlags.yes,
			Force:    installFlags.force,
			Parallel: rootFlags.parallel,
			Portable: integrate.PortableOptions{
				Portable:          installFlags.portable,
				PortableHomeSet:   cmd.Flags().Changed("portable-home"),
				PortableHome:      installFlags.portableHome,
				PortableConfigSet: cmd.Flags().Changed("portable-config"),
				PortableConfig:    installFlags.portableConfig,
			},
		}

		results, err := oc.Install(cmd.Context(), args, opts)
		if err != nil {
			fail(err)
		}
		printInstallResults(results)
	},
}

func init() {
	installCmd.Flags().BoolVarP(&installFlags.force, "force", "f", false, "reinstall even if already installed")
	installCmd.Flags().BoolVar(&installFlags.portable, "portable", false, "create both portable home and config directories")
	installCmd.Flags().StringVar(&installFlags.portableHome, "portable-home", "", "create a portable home directory, optionally under this path")
	installCmd.Flags().StringVar(&installFlags.portableConfig, "portable-config", "", "create a portable config directory, optionally under this path")
	RootCmd.AddCommand(installCmd)
}

func printInstallResults(results []install.Result) {
	for _, r := range results {
		switch {
		case r.Skipped:
			fmt.Printf("%s: already installed\n", r.FullName)
		case r.State == install.Done:
			fmt.Printf("%s: installed\n", r.FullName)
		default:
			fmt.Printf("%s: failed (%s): %s\n", r.FullName, r.State, r.Err)
		}
	}
}

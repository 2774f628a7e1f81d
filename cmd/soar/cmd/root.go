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

// Package cmd is soar's cobra command tree: a thin adapter over
// internal/ops, one file per subcommand.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/clearlinux/soar/internal/corelog"
	"github.com/clearlinux/soar/internal/ops"
	"github.com/clearlinux/soar/internal/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	configFile string
	yes        bool
	quiet      bool
	parallel   bool
	verbose    bool
}{}

// RootCmd is soar's base command.
var RootCmd = &cobra.Command{
	Use:   "soar",
	Short: "A fast, portable package manager for self-contained Linux binaries",
	Long:  `soar installs native ELF, AppImage, and FlatImage applications from remote repositories into a content-addressed local store and links them onto your PATH.`,
}

// Execute runs the command tree; it is called once from main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaultConfig := filepath.Join(xdg.New("", "soar").ConfigHome(), "config.json")

	RootCmd.PersistentFlags().StringVarP(&rootFlags.configFile, "config", "c", defaultConfig, "path to soar's JSON config file")
	RootCmd.PersistentFlags().BoolVarP(&rootFlags.yes, "yes", "y", false, "assume yes for any prompt, picking the first candidate")
	RootCmd.PersistentFlags().BoolVarP(&rootFlags.quiet, "quiet", "q", false, "suppress progress bars")
	RootCmd.PersistentFlags().BoolVarP(&rootFlags.parallel, "parallel", "p", false, "install/update packages concurrently")
	RootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable debug logging")
}

// buildContext loads the shared ops.Context once per command
// invocation.
func buildContext(ctx context.Context) (*ops.Context, error) {
	if rootFlags.verbose {
		corelog.SetLevel(corelog.LevelDebug)
	}
	oc, err := ops.NewContext(ctx, rootFlags.configFile, !rootFlags.yes, rootFlags.quiet)
	if err != nil {
		return nil, errors.Wrap(err, "initializing soar")
	}
	return oc, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "soar: %s\n", err)
	if errors.Is(err, store.ErrInvalidCollection) {
		os.Exit(-1)
	}
	os.Exit(1)
}

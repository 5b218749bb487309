// Copyright 2025 walteh LLC
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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/walteh/copytx/cmd/copytx/commands"
	"github.com/walteh/copytx/cmd/copytx/opts"
	"github.com/walteh/copytx/pkg/runner"
)

func main() {
	// Setup logging
	setupLogging(false)
	ctx := log.Logger.WithContext(context.Background())

	// Shared options, populated once flags are parsed
	rootOpts := &opts.RootOpts{}

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "copytx",
		Short: "Transactional file tree copies with undo",
		Long: `copytx applies a plan of copy steps as one transaction: every step is
checked before anything runs, fixes happen in plan order, and the first
failure rolls back by moving already copied targets into a recoverable
trash area.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(debug)
			fillRootOpts(rootOpts)
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewCheckCmd(rootOpts),
		commands.NewApplyCmd(rootOpts),
		commands.NewRollbackCmd(rootOpts),
		commands.NewTrashCmd(rootOpts),
		newVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		runner.NewUserLogger(ctx).LogValidation(false, "Command failed", err)
		os.Exit(1)
	}
}

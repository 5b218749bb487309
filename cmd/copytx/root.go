package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/walteh/copytx/cmd/copytx/opts"
)

var (
	// Flags
	configFile string
	debug      bool
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".copytx.hcl", "plan file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// fillRootOpts copies parsed flag values into the shared options. Cobra only
// binds flag values during Execute, so this runs from PersistentPreRun, not
// from main.
func fillRootOpts(rootOpts *opts.RootOpts) {
	rootOpts.ConfigFile = configFile
	rootOpts.Debug = debug
}

// setupLogging configures zerolog based on flags
func setupLogging(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
}

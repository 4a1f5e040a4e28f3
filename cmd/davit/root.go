// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for davit.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"davit-cli/internal/config"
	"davit-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging and full error chains
	verbose bool

	// cfg is the loaded global configuration, available to all subcommands
	cfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "davit",
		Short: "A catalog-driven command runner for containerized projects",
		Long: TitleStyle.Render("davit") + SubtitleStyle.Render(" - A catalog-driven command runner") + `

davit turns the command catalog in your project's davit.yaml into
external process invocations against Docker Compose, kubectl, or the
local shell, adapting to live container state.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a davit.yaml in your project directory
  2. Define commands under the interaction tree
  3. Run them with: davit run <command-name>

` + SubtitleStyle.Render("Examples:") + `
  davit ls                  List all catalog commands
  davit run test            Run the 'test' command
  davit run rails console   Run the nested 'rails console' command`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(lsCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig loads the global settings and installs the log handler.
func initRootConfig() {
	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		loaded = config.DefaultConfig()
	}
	cfg = loaded

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.Verbose
	}

	initLogging()
}

// initLogging routes slog through a charmbracelet handler on stderr so
// internal warnings share the CLI's styling. Debug level under --verbose.
func initLogging() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "davit",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	slog.SetDefault(slog.New(logger))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}

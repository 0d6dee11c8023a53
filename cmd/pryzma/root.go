// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the pryzma command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "pryzma",
		Short: "Dependency resolver and bundler for Pryzma projects",
		Long: TitleStyle.Render("pryzma") + SubtitleStyle.Render(" - dependency resolver and bundler for Pryzma projects") + `

pryzma follows 'use' and '#insert' directives from a project's entry point,
reports unresolved references and cycles, and writes a single bundled source
file together with a dependency manifest.

` + SubtitleStyle.Render("Examples:") + `
  pryzma build .             Build the project in the current directory
  pryzma build -f tool.pryzma
                             Build a single file
  pryzma deps --format dot   Print the dependency graph for Graphviz
  pryzma ppm install json    Install a package`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				app.setupLogging(true)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is <config dir>/pryzma/config.cue)")

	root.AddCommand(
		newBuildCommand(app),
		newDepsCommand(app),
		newPPMCommand(app),
		newConfigCommand(app),
	)
	return root
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	app := NewApp(Dependencies{})
	root := NewRootCommand(app)

	err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, app, err)
		}),
	)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Execute runs the CLI and exits the process.
func Execute() {
	os.Exit(Main())
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pryzma/pryzma/internal/build"
	"github.com/pryzma/pryzma/internal/config"
	"github.com/pryzma/pryzma/internal/depgraph"
	"github.com/pryzma/pryzma/internal/project"
)

var errFileWithProject = errors.New("--file cannot be combined with a project argument")

type buildFlags struct {
	file      string
	autoFetch bool
	strict    bool
	watch     bool
}

func newBuildCommand(app *App) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build [project]",
		Short: "Bundle a project or a single file",
		Long: `Bundle a project or a single file.

The project argument is '.' for the current directory (the default), a path,
or the name of a project under projects_dir. With --file, the given source
file is built on its own and its directory acts as the project root.

The bundle and build/dependency_manifest.json are always written; unresolved
references and cycles are reported as warnings unless --strict is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "build a single source file")
	cmd.Flags().BoolVarP(&flags.autoFetch, "auto-fetch", "a", false, "install missing packages before bundling")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail when references are missing or cyclic")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild when source files change")
	return cmd
}

func runBuild(cmd *cobra.Command, app *App, flags buildFlags, args []string) error {
	ctx := cmd.Context()
	cfg, err := app.LoadConfig(ctx)
	if err != nil {
		return err
	}
	p, err := resolveProject(cfg, flags.file, args)
	if err != nil {
		return err
	}

	opts := buildOptions(app, cfg, flags.autoFetch)
	opts.Strict = flags.strict || cfg.Build.Strict
	opts.PostCommand = cfg.Build.PostCommand
	opts.Stdout = app.stdout
	opts.Stderr = app.stderr

	if flags.watch {
		return build.Watch(ctx, p, opts, func(out *build.Outcome, err error) {
			if out != nil {
				printBuildSummary(app.stdout, out)
			}
			if err != nil {
				renderError(app.stderr, app, err)
			}
		})
	}

	out, err := build.Run(ctx, p, opts)
	if out != nil {
		printBuildSummary(app.stdout, out)
	}
	return err
}

// buildOptions holds the settings shared by build and deps.
func buildOptions(app *App, cfg *config.Config, autoFetch bool) build.Options {
	opts := build.Options{
		PackagesDir: cfg.PackagesDir,
		AutoFetch:   autoFetch || cfg.Build.AutoFetch,
		Logger:      app.logger,
	}
	if opts.AutoFetch {
		opts.Fetcher = app.Packages(cfg, app.logger)
	}
	return opts
}

func resolveProject(cfg *config.Config, file string, args []string) (*project.Project, error) {
	if file != "" {
		if len(args) > 0 {
			return nil, errFileWithProject
		}
		return project.ForFile(file)
	}

	name := "."
	if len(args) == 1 {
		name = args[0]
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}
	return project.Open(project.Locate(name, cfg.ProjectsDir, cwd))
}

func printBuildSummary(w io.Writer, out *build.Outcome) {
	root := out.Project.Root
	fmt.Fprintf(w, "%s %s (%d files, %d modules)\n",
		SuccessStyle.Render("Built"), PathStyle.Render(out.Project.Name),
		len(out.Report.OrderedFiles), len(out.Bundle.Modules))
	fmt.Fprintf(w, "  bundle:   %s\n", depgraph.RelativePath(root, out.BundlePath))
	fmt.Fprintf(w, "  manifest: %s\n", depgraph.RelativePath(root, out.ManifestPath))
	for _, name := range out.Fetched {
		fmt.Fprintf(w, "  fetched:  %s\n", PathStyle.Render(name))
	}
	if n := len(out.Report.Missing); n > 0 {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("  %d unresolved reference(s)", n)))
	}
	if n := len(out.Report.Cycles); n > 0 {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("  %d dependency cycle(s)", n)))
	}
}

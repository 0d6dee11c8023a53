// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pryzma/pryzma/internal/build"
	"github.com/pryzma/pryzma/internal/depgraph"
	"github.com/pryzma/pryzma/internal/issue"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
)

type depsFlags struct {
	file      string
	format    string
	order     bool
	autoFetch bool
	strict    bool
}

func newDepsCommand(app *App) *cobra.Command {
	var flags depsFlags

	cmd := &cobra.Command{
		Use:   "deps [project]",
		Short: "Show the dependency graph without building",
		Long: `Show the dependency graph without building.

Output formats:
  text   files in discovery order, then missing references and cycles
  json   the full report, including the adjacency graph
  dot    a Graphviz digraph; insert edges are dotted, missing targets red

--order prints the files dependencies-first instead, and fails on cycles.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, app, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "analyze a single source file")
	cmd.Flags().StringVar(&flags.format, "format", formatText, "output format: text, json or dot")
	cmd.Flags().BoolVar(&flags.order, "order", false, "print the dependencies-first load order")
	cmd.Flags().BoolVarP(&flags.autoFetch, "auto-fetch", "a", false, "install missing packages first")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit non-zero when references are missing or cyclic")
	return cmd
}

func runDeps(cmd *cobra.Command, app *App, flags depsFlags, args []string) error {
	switch flags.format {
	case formatText, formatJSON, formatDOT:
	default:
		return fmt.Errorf("unknown format %q (want text, json or dot)", flags.format)
	}

	ctx := cmd.Context()
	cfg, err := app.LoadConfig(ctx)
	if err != nil {
		return err
	}
	p, err := resolveProject(cfg, flags.file, args)
	if err != nil {
		return err
	}

	report, _ := build.Analyze(ctx, p, buildOptions(app, cfg, flags.autoFetch))

	if flags.order {
		return printLoadOrder(app.stdout, p.Root, p.Entry, report)
	}

	switch flags.format {
	case formatJSON:
		enc := json.NewEncoder(app.stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	case formatDOT:
		fmt.Fprint(app.stdout, report.ExportDOT(p.Root))
	default:
		printReport(app.stdout, p.Root, report)
	}

	if flags.strict && !report.OK() {
		return &ExitError{Code: 1}
	}
	return nil
}

func printLoadOrder(w io.Writer, root, entry string, report *depgraph.Report) error {
	order, err := report.LoadOrder()
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("order dependencies").
			WithResource(entry).
			WithSuggestion("Run 'pryzma deps' to list the cycles").
			WithIssue(issue.DependencyCycleId).
			Wrap(err).
			BuildError()
	}
	for _, path := range order {
		fmt.Fprintln(w, depgraph.RelativePath(root, path))
	}
	return nil
}

func printReport(w io.Writer, root string, report *depgraph.Report) {
	fmt.Fprintln(w, TitleStyle.Render("Files"))
	for i, path := range report.OrderedFiles {
		fmt.Fprintf(w, "  %d. %s\n", i+1, depgraph.RelativePath(root, path))
	}

	if len(report.Missing) > 0 {
		fmt.Fprintln(w, WarningStyle.Render("Missing"))
		for _, line := range report.RelativeMissing(root) {
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}
	if len(report.Cycles) > 0 {
		fmt.Fprintln(w, WarningStyle.Render("Cycles"))
		for _, line := range report.RelativeCycles(root) {
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}
}

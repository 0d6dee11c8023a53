// SPDX-License-Identifier: MPL-2.0

package build

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pryzma/pryzma/internal/bundle"
	"github.com/pryzma/pryzma/internal/depgraph"
	"github.com/pryzma/pryzma/internal/diagnostic"
	"github.com/pryzma/pryzma/internal/hook"
	"github.com/pryzma/pryzma/internal/issue"
	"github.com/pryzma/pryzma/internal/project"
	"github.com/pryzma/pryzma/pkg/resolve"
)

const (
	// OutputDir is the artifact directory below the project root.
	OutputDir = "build"
	// ManifestFile is the manifest name inside OutputDir.
	ManifestFile = "dependency_manifest.json"
	// BundleSuffix follows the project name in the bundle file name.
	BundleSuffix = "_bundle.pryzma"
)

var (
	// ErrUnresolved is wrapped by strict-mode failures caused by missing references.
	ErrUnresolved = errors.New("unresolved dependencies")
	// ErrCyclic is wrapped by strict-mode failures caused by dependency cycles.
	ErrCyclic = errors.New("dependency cycles")
)

type (
	// Fetcher installs a package into the package repository.
	Fetcher interface {
		Install(ctx context.Context, name string) error
	}

	// Options control a build.
	Options struct {
		// PackagesDir is the package repository root; empty disables
		// package references.
		PackagesDir string
		// AutoFetch installs inferred packages for missing references and
		// repeats the graph pass. It requires Fetcher.
		AutoFetch bool
		Fetcher   Fetcher
		// Strict turns missing references and cycles into an error once the
		// artifacts are written.
		Strict bool
		// PostCommand is run by the embedded shell after a successful build.
		PostCommand string
		// Stdout and Stderr receive the post-build command output.
		Stdout io.Writer
		Stderr io.Writer
		Logger *slog.Logger
	}

	// Manifest is the content of build/dependency_manifest.json.
	Manifest struct {
		EntryPoint     string                  `json:"entry_point"`
		OrderedFiles   []string                `json:"ordered_files"`
		Missing        []depgraph.MissingIssue `json:"missing"`
		Cycles         [][]string              `json:"cycles"`
		BundledModules []bundle.ModuleMetadata `json:"bundled_modules"`
	}

	// Outcome describes a finished build.
	Outcome struct {
		Project      *project.Project
		Report       *depgraph.Report
		Bundle       *bundle.Result
		Manifest     *Manifest
		ManifestPath string
		BundlePath   string
		// Fetched lists the packages installed by auto-fetch.
		Fetched []string
	}
)

// NewManifest combines a graph report and a bundle result.
func NewManifest(report *depgraph.Report, result *bundle.Result) *Manifest {
	return &Manifest{
		EntryPoint:     report.EntryPoint,
		OrderedFiles:   report.OrderedFiles,
		Missing:        report.Missing,
		Cycles:         report.Cycles,
		BundledModules: result.Metadata(),
	}
}

// Analyze runs the graph pass for p, installing missing packages first when
// auto-fetch is enabled. It never writes to the project.
func Analyze(ctx context.Context, p *project.Project, opts Options) (*depgraph.Report, []string) {
	logger := opts.logger()
	builder := depgraph.NewBuilder(opts.resolver(p))
	report := builder.Build(p.Entry)

	if !opts.AutoFetch || opts.Fetcher == nil || len(report.Missing) == 0 {
		return report, nil
	}

	var fetched []string
	for _, name := range report.MissingPackages() {
		if ctx.Err() != nil {
			break
		}
		logger.Info("auto-fetching package", "package", name)
		if err := opts.Fetcher.Install(ctx, name); err != nil {
			logger.Warn("auto-fetch failed", "package", name, "error", err)
			continue
		}
		fetched = append(fetched, name)
	}
	return builder.Build(p.Entry), fetched
}

// Run builds p: graph pass, optional auto-fetch, bundle, manifest and
// post-build command. In strict mode the returned error accompanies a
// complete Outcome, since the artifacts are written before the check.
func Run(ctx context.Context, p *project.Project, opts Options) (*Outcome, error) {
	logger := opts.logger()

	report, fetched := Analyze(ctx, p, opts)
	logFindings(logger, p.Root, report.Diagnostics)
	for _, line := range report.RelativeMissing(p.Root) {
		logger.Warn("unresolved dependency: " + line)
	}
	for _, line := range report.RelativeCycles(p.Root) {
		logger.Warn("dependency cycle: " + line)
	}

	result, err := bundle.New(opts.resolver(p)).Bundle(p.Entry)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("bundle entry point").
			WithResource(p.Entry).
			WithIssue(issue.EntryPointNotFoundId).
			Wrap(err).
			BuildError()
	}
	logFindings(logger, p.Root, result.Diagnostics)

	out := &Outcome{
		Project:      p,
		Report:       report,
		Bundle:       result,
		Manifest:     NewManifest(report, result),
		ManifestPath: filepath.Join(p.Root, OutputDir, ManifestFile),
		BundlePath:   filepath.Join(p.Root, OutputDir, p.Name+BundleSuffix),
		Fetched:      fetched,
	}
	if err := out.write(); err != nil {
		return nil, issue.WrapWithContext(err, "write build artifacts", filepath.Dir(out.BundlePath))
	}
	logger.Info("build written", "bundle", depgraph.RelativePath(p.Root, out.BundlePath), "modules", len(result.Modules))

	if opts.Strict {
		if err := strictError(p, report); err != nil {
			return out, err
		}
	}

	if opts.PostCommand != "" {
		logger.Debug("running post-build command")
		err := hook.Run(ctx, hook.Request{
			Script:   opts.PostCommand,
			Dir:      p.Root,
			Bundle:   out.BundlePath,
			Manifest: out.ManifestPath,
			Project:  p.Name,
			Stdout:   opts.Stdout,
			Stderr:   opts.Stderr,
		})
		if err != nil {
			return out, issue.NewErrorContext().
				WithOperation("run post-build command").
				WithResource(p.Root).
				WithSuggestion("Check build.post_command with 'pryzma config show'").
				WithIssue(issue.PostBuildFailedId).
				Wrap(err).
				BuildError()
		}
	}

	return out, nil
}

func (o *Outcome) write() error {
	dir := filepath.Dir(o.ManifestPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := MarshalManifest(o.Manifest)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.ManifestPath, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.WriteFile(o.BundlePath, []byte(o.Bundle.Text), 0o644); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	return nil
}

// MarshalManifest encodes m with four-space indentation.
func MarshalManifest(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func strictError(p *project.Project, report *depgraph.Report) error {
	switch {
	case len(report.Missing) > 0:
		return issue.NewErrorContext().
			WithOperation("resolve dependencies").
			WithResource(p.Entry).
			WithSuggestion("Install missing packages with 'pryzma ppm install <name>' or build with --auto-fetch").
			WithIssue(issue.UnresolvedDependenciesId).
			Wrap(fmt.Errorf("%d %w", len(report.Missing), ErrUnresolved)).
			BuildError()
	case len(report.Cycles) > 0:
		return issue.NewErrorContext().
			WithOperation("resolve dependencies").
			WithResource(p.Entry).
			WithSuggestion("Run 'pryzma deps' to inspect the dependency graph").
			WithIssue(issue.DependencyCycleId).
			Wrap(fmt.Errorf("%d %w", len(report.Cycles), ErrCyclic)).
			BuildError()
	}
	return nil
}

func logFindings(logger *slog.Logger, root string, diags []diagnostic.Diagnostic) {
	for _, d := range diags {
		attrs := []any{"code", d.Code, "file", depgraph.RelativePath(root, d.Path)}
		if d.Line > 0 {
			attrs = append(attrs, "line", d.Line)
		}
		if d.Cause != nil {
			attrs = append(attrs, "error", d.Cause)
		}
		if d.Severity == diagnostic.SeverityError {
			logger.Warn(d.Message, attrs...)
		} else {
			logger.Debug(d.Message, attrs...)
		}
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) resolver(p *project.Project) *resolve.Resolver {
	return resolve.New(p.Root, o.PackagesDir)
}

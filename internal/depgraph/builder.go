// SPDX-License-Identifier: MPL-2.0

// Package depgraph discovers every source file an entry file depends on.
//
// The walk is depth-first over use and #insert directives, following the
// directives of each file in line order. Files are identified by their real
// (symlink-resolved) path; a file is scanned at most once per build.
package depgraph

import (
	"path/filepath"
	"slices"

	"github.com/pryzma/pryzma/internal/diagnostic"
	"github.com/pryzma/pryzma/pkg/directive"
	"github.com/pryzma/pryzma/pkg/resolve"

	"github.com/spf13/afero"
)

type (
	// Builder walks the dependency graph of an entry file. A Builder holds no
	// per-walk state and can be reused for sequential builds.
	Builder struct {
		Resolver *resolve.Resolver
		// Fs overrides the resolver's filesystem when set.
		Fs afero.Fs
	}

	// frame is one file being visited. Its directives are consumed in order;
	// the frame is popped once all of them are handled.
	frame struct {
		path       string
		dir        string
		directives []directive.Directive
		next       int
	}

	walk struct {
		b       *Builder
		report  *Report
		stack   []*frame
		visited map[string]bool
	}
)

// NewBuilder returns a Builder using resolver for references and files.
func NewBuilder(resolver *resolve.Resolver) *Builder {
	return &Builder{Resolver: resolver}
}

// Build walks every file reachable from entry. Unresolvable references,
// unreadable files and cycles are recorded in the report; Build itself never
// fails.
func (b *Builder) Build(entry string) *Report {
	w := &walk{
		b:       b,
		report:  newReport(entry),
		visited: make(map[string]bool),
	}

	w.enter(entry)
	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]
		if top.next >= len(top.directives) {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}
		d := top.directives[top.next]
		top.next++

		resolved, err := b.Resolver.Resolve(d.RawTarget, top.dir)
		if err != nil {
			w.report.Missing = append(w.report.Missing, MissingIssue{
				Source: top.path,
				Target: d.RawTarget,
				Line:   d.Line,
				Type:   d.Kind,
			})
			continue
		}

		realPath := b.Resolver.RealPath(resolved)
		w.report.Graph[top.path] = append(w.report.Graph[top.path], realPath)
		w.report.Edges = append(w.report.Edges, Edge{From: top.path, To: realPath, Kind: d.Kind, Line: d.Line})
		w.enter(realPath)
	}

	return w.report
}

// enter moves path from unvisited to visiting, or records a cycle when path
// is already on the stack. Visited files are left alone.
func (w *walk) enter(path string) {
	realPath := w.b.Resolver.RealPath(path)

	if idx := slices.IndexFunc(w.stack, func(f *frame) bool { return f.path == realPath }); idx != -1 {
		cycle := make([]string, 0, len(w.stack)-idx+1)
		for _, f := range w.stack[idx:] {
			cycle = append(cycle, f.path)
		}
		w.report.Cycles = append(w.report.Cycles, append(cycle, realPath))
		return
	}
	if w.visited[realPath] {
		return
	}

	w.visited[realPath] = true
	w.report.OrderedFiles = append(w.report.OrderedFiles, realPath)
	w.report.Graph[realPath] = []string{}

	directives, err := directive.ScanFile(w.b.fs(), realPath)
	if err != nil {
		w.report.Diagnostics = append(w.report.Diagnostics,
			diagnostic.Error(diagnostic.CodeUnreadableFile, realPath, err, "cannot read source file"))
		directives = nil
	}

	w.stack = append(w.stack, &frame{
		path:       realPath,
		dir:        filepath.Dir(realPath),
		directives: directives,
	})
}

func (b *Builder) fs() afero.Fs {
	if b.Fs != nil {
		return b.Fs
	}
	if b.Resolver != nil && b.Resolver.Fs != nil {
		return b.Resolver.Fs
	}
	return afero.NewOsFs()
}

// SPDX-License-Identifier: MPL-2.0

package depgraph

import (
	"slices"

	"github.com/pryzma/pryzma/internal/dag"
	"github.com/pryzma/pryzma/internal/diagnostic"
	"github.com/pryzma/pryzma/pkg/directive"
	"github.com/pryzma/pryzma/pkg/resolve"
)

type (
	// MissingIssue is a directive whose target could not be resolved.
	MissingIssue struct {
		// Source is the real path of the file containing the directive.
		Source string `json:"source"`
		// Target is the raw reference text as written.
		Target string `json:"target"`
		// Line is the 1-based line of the directive.
		Line int            `json:"line"`
		Type directive.Kind `json:"type"`
	}

	// Edge is one resolved directive.
	Edge struct {
		From string
		To   string
		Kind directive.Kind
		Line int
	}

	// Report is the outcome of a graph walk.
	Report struct {
		// EntryPoint is the entry path as given to Build.
		EntryPoint string `json:"entry_point"`
		// OrderedFiles lists real paths in first-discovery order.
		OrderedFiles []string `json:"ordered_files"`
		// Graph maps each visited file to the real paths of its resolved
		// dependencies, in directive order.
		Graph   map[string][]string `json:"graph"`
		Missing []MissingIssue      `json:"missing"`
		// Cycles holds closed loops: the first and last element are equal.
		Cycles [][]string `json:"cycles"`

		Edges       []Edge                  `json:"-"`
		Diagnostics []diagnostic.Diagnostic `json:"-"`
	}
)

func newReport(entry string) *Report {
	return &Report{
		EntryPoint:   entry,
		OrderedFiles: []string{},
		Graph:        make(map[string][]string),
		Missing:      []MissingIssue{},
		Cycles:       [][]string{},
	}
}

// OK reports whether the walk found no missing references and no cycles.
func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Cycles) == 0
}

// LoadOrder returns the visited files ordered so that every file follows the
// files it depends on. It returns a *dag.CycleError when the graph is cyclic.
func (r *Report) LoadOrder() ([]string, error) {
	g := dag.New()
	for _, file := range r.OrderedFiles {
		g.AddNode(file)
	}
	for _, file := range r.OrderedFiles {
		for _, dep := range r.Graph[file] {
			g.AddDependency(file, dep)
		}
	}
	return g.TopologicalSort()
}

// MissingPackages returns the installable package names inferred from the
// missing references, deduplicated in first-seen order.
func (r *Report) MissingPackages() []string {
	var names []string
	for _, issue := range r.Missing {
		name, ok := resolve.PackageName(issue.Target)
		if !ok || slices.Contains(names, name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

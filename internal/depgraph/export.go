// SPDX-License-Identifier: MPL-2.0

package depgraph

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pryzma/pryzma/pkg/directive"
)

// ExportDOT renders the report as a Graphviz digraph. Paths are shown
// relative to root when possible. Missing references appear as dashed red
// nodes labelled with their raw target.
func (r *Report) ExportDOT(root string) string {
	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\" shape=box];\n\n")

	for _, file := range r.OrderedFiles {
		fmt.Fprintf(&b, "  %q;\n", RelativePath(root, file))
	}
	if len(r.Missing) > 0 {
		b.WriteString("\n")
	}
	for _, issue := range r.Missing {
		fmt.Fprintf(&b, "  %q [style=dashed color=\"#f85149\"];\n", missingID(issue.Target))
	}

	if len(r.Edges) > 0 || len(r.Missing) > 0 {
		b.WriteString("\n")
	}
	for _, e := range r.Edges {
		fmt.Fprintf(&b, "  %q -> %q [style=%s];\n", RelativePath(root, e.From), RelativePath(root, e.To), edgeStyle(e.Kind))
	}
	for _, issue := range r.Missing {
		fmt.Fprintf(&b, "  %q -> %q [style=%s color=\"#f85149\"];\n",
			RelativePath(root, issue.Source), missingID(issue.Target), edgeStyle(issue.Type))
	}

	b.WriteString("}\n")
	return b.String()
}

// RelativeCycles returns each cycle with its paths made relative to root and
// joined with " -> ".
func (r *Report) RelativeCycles(root string) []string {
	out := make([]string, 0, len(r.Cycles))
	for _, cycle := range r.Cycles {
		parts := make([]string, len(cycle))
		for i, node := range cycle {
			parts[i] = RelativePath(root, node)
		}
		out = append(out, strings.Join(parts, " -> "))
	}
	return out
}

// RelativeMissing describes each missing reference as
// "target referenced in file:line (type)" with file relative to root.
func (r *Report) RelativeMissing(root string) []string {
	out := make([]string, 0, len(r.Missing))
	for _, issue := range r.Missing {
		out = append(out, fmt.Sprintf("%s referenced in %s:%d (%s)",
			issue.Target, RelativePath(root, issue.Source), issue.Line, issue.Type))
	}
	return out
}

func missingID(target string) string {
	return "missing: " + target
}

func edgeStyle(kind directive.Kind) string {
	if kind == directive.KindInsert {
		return "dotted"
	}
	return "solid"
}

// RelativePath returns path relative to root in slash form, or path
// unchanged when no relative form exists.
func RelativePath(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

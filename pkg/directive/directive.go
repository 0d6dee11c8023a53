// SPDX-License-Identifier: MPL-2.0

package directive

import (
	"slices"
	"strings"
)

const (
	// KindUse is an import of a module whose functions are namespaced.
	KindUse Kind = "use"
	// KindInsert is a literal textual inclusion of another file.
	KindInsert Kind = "insert"

	// ModifierNoNamespace exempts a used module from function namespacing.
	ModifierNoNamespace = "nan"

	commentMarker = "//"
	useKeyword    = "use "
	insertKeyword = "#insert"
)

// insertStopMarkers end an #insert target. Whitespace also ends it.
var insertStopMarkers = []string{" with ", " as ", " import ", " => ", " = ", "{", "(", "["}

type (
	// Kind distinguishes use directives from insert directives.
	Kind string

	// Directive is one import-like statement found in a source file.
	Directive struct {
		// Kind is KindUse or KindInsert.
		Kind Kind
		// RawTarget is the un-normalized reference text with quotes removed.
		RawTarget string
		// Alias is the explicit "as" alias of a use directive, if any.
		Alias string
		// Modifiers holds the lower-cased tokens of a "with" clause.
		Modifiers []string
		// SourceFile is the file the directive was read from.
		SourceFile string
		// Line is the 1-based physical line number.
		Line int
	}

	// UseStatement is the parsed form of a single use line.
	UseStatement struct {
		Target    string
		Alias     string
		Modifiers []string
	}
)

// HasModifier reports whether the directive carries the given modifier.
func (d Directive) HasModifier(name string) bool {
	return hasModifier(d.Modifiers, name)
}

// NamespacingExempt reports whether the directive opts out of namespacing.
func (d Directive) NamespacingExempt() bool {
	return hasModifier(d.Modifiers, ModifierNoNamespace)
}

// NamespacingExempt reports whether the statement opts out of namespacing.
func (u UseStatement) NamespacingExempt() bool {
	return hasModifier(u.Modifiers, ModifierNoNamespace)
}

func hasModifier(mods []string, name string) bool {
	return slices.Contains(mods, name) || slices.Contains(mods, "#"+name)
}

// StripComment returns the part of line before the first "//".
func StripComment(line string) string {
	before, _, _ := strings.Cut(line, commentMarker)
	return before
}

// IsUseLine reports whether the comment-stripped, trimmed line is a use directive.
func IsUseLine(stripped string) bool {
	return strings.HasPrefix(stripped, useKeyword)
}

// IsInsertLine reports whether the comment-stripped, trimmed line is an #insert directive.
func IsInsertLine(stripped string) bool {
	return strings.HasPrefix(stripped, insertKeyword)
}

// InsertTarget returns the sanitized target of an #insert line. The line
// must already satisfy IsInsertLine.
func InsertTarget(stripped string) string {
	return SanitizeInsertTarget(strings.TrimPrefix(stripped, insertKeyword))
}

// SanitizeInsertTarget trims an #insert fragment down to its reference:
// the text is cut at the earliest stop marker or whitespace, then stripped
// of surrounding quotes, semicolons and commas.
func SanitizeInsertTarget(fragment string) string {
	fragment = strings.TrimSpace(StripComment(fragment))
	if fragment == "" {
		return ""
	}

	end := len(fragment)
	for _, marker := range insertStopMarkers {
		if idx := strings.Index(fragment, marker); idx != -1 && idx < end {
			end = idx
		}
	}
	if idx := strings.IndexFunc(fragment, isSpace); idx != -1 && idx < end {
		end = idx
	}

	return strings.Trim(fragment[:end], ";,\"'")
}

// ParseUse parses a use line. The second result is false when the line is
// not a use directive or its target is empty.
func ParseUse(line string) (UseStatement, bool) {
	normalized := strings.TrimRight(strings.TrimSpace(StripComment(line)), ";")
	if len(normalized) < len(useKeyword) || !strings.EqualFold(normalized[:len(useKeyword)], useKeyword) {
		return UseStatement{}, false
	}

	tokens := strings.Fields(normalized[len(useKeyword):])

	var (
		stmt   UseStatement
		target []string
	)
	for i := 0; i < len(tokens); {
		switch strings.ToLower(tokens[i]) {
		case "with":
			i++
			for i < len(tokens) && !strings.EqualFold(tokens[i], "as") {
				if mod := strings.ToLower(strings.Trim(tokens[i], ",")); mod != "" {
					stmt.Modifiers = append(stmt.Modifiers, mod)
				}
				i++
			}
		case "as":
			i++
			if i < len(tokens) {
				stmt.Alias = strings.Trim(tokens[i], ".,\"'")
				i++
			}
		default:
			target = append(target, tokens[i])
			i++
		}
	}

	stmt.Target = strings.Trim(strings.TrimSpace(strings.Join(target, " ")), "\"'")
	if stmt.Target == "" {
		return UseStatement{}, false
	}
	return stmt, true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

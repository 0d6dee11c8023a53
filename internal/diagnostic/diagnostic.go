// SPDX-License-Identifier: MPL-2.0

// Package diagnostic defines the non-fatal findings that the graph and bundle
// passes hand back to their callers. Passes never print; the CLI decides how
// diagnostics are rendered.
package diagnostic

import "fmt"

const (
	// SeverityWarning indicates a recoverable problem; the pass continued.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a problem that dropped part of the output.
	SeverityError Severity = "error"

	// CodeUnreadableFile is reported when a source file cannot be read.
	CodeUnreadableFile Code = "unreadable_file"
	// CodeUnresolvedReference is reported when a directive target matches no file.
	CodeUnresolvedReference Code = "unresolved_reference"
	// CodeInsertRecursion is reported when an #insert re-enters a file that is
	// still being expanded.
	CodeInsertRecursion Code = "insert_recursion"
	// CodeModuleReentry is reported when a use directive names a module that
	// is still being expanded.
	CodeModuleReentry Code = "module_reentry"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Code is a machine-readable diagnostic identifier.
	Code string

	// Diagnostic is a structured finding returned to callers rather than
	// written to stderr.
	Diagnostic struct {
		Severity Severity
		Code     Code
		// Message is the human-readable description.
		Message string
		// Path is the file the diagnostic is about (optional).
		Path string
		// Line is the 1-based line of the triggering directive, 0 when unknown.
		Line int
		// Cause is the underlying error (optional).
		Cause error
	}
)

// Warn builds a warning diagnostic.
func Warn(code Code, path string, line int, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Path: path, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Error builds an error diagnostic carrying cause.
func Error(code Code, path string, cause error, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: code, Path: path, Cause: cause, Message: fmt.Sprintf(format, args...)}
}

// String renders the diagnostic as "path:line: message".
func (d Diagnostic) String() string {
	loc := d.Path
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", d.Path, d.Line)
	}
	msg := d.Message
	if d.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, d.Cause)
	}
	if loc == "" {
		return msg
	}
	return loc + ": " + msg
}

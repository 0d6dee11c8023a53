// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "build project"},
			expected: "failed to build project",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "read project descriptor", Resource: "./pryzma.json"},
			expected: "failed to read project descriptor: ./pryzma.json",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "locate entry point",
				Resource:  "src/main.pryzma",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to locate entry point: src/main.pryzma: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("read source").
		Wrap(fs.ErrNotExist).
		BuildError()

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should find the wrapped cause")
	}
	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find *ActionableError")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := &ActionableError{
		Operation:   "install package",
		Resource:    "json",
		Suggestions: []string{"Check the package name", "Configure a mirror"},
		Cause:       errors.New("mirror failed"),
	}

	plain := err.Format(false)
	if !strings.Contains(plain, "\n  • Check the package name") || !strings.Contains(plain, "\n  • Configure a mirror") {
		t.Errorf("Format(false) missing suggestions:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") || !strings.Contains(verbose, "1. mirror failed") {
		t.Errorf("Format(true) missing chain:\n%s", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without an operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without an operation should return nil")
	}

	ae := NewErrorContext().
		WithOperation("build project").
		WithResource("/p").
		WithSuggestion("a").
		WithSuggestion("b").
		WithIssue(ProjectNotFoundId).
		Build()
	if ae.Operation != "build project" || ae.Resource != "/p" || len(ae.Suggestions) != 2 || ae.Issue != ProjectNotFoundId {
		t.Errorf("Build() = %+v", ae)
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
	cause := errors.New("boom")
	ae := WrapWithContext(cause, "write manifest", "build/dependency_manifest.json")
	if !errors.Is(ae, cause) {
		t.Error("wrapped cause lost")
	}
}

func TestIdOf(t *testing.T) {
	t.Parallel()

	linked := NewErrorContext().
		WithOperation("resolve dependencies").
		WithIssue(DependencyCycleId).
		Wrap(errors.New("1 dependency cycles")).
		BuildError()

	tests := []struct {
		name   string
		err    error
		wantId Id
		wantOk bool
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: errors.New("boom")},
		{name: "unlinked actionable", err: WrapWithContext(errors.New("boom"), "write", "x")},
		{name: "linked", err: linked, wantId: DependencyCycleId, wantOk: true},
		{name: "linked below unlinked", err: WrapWithContext(linked, "build project", "/p"), wantId: DependencyCycleId, wantOk: true},
		{name: "wrapped by fmt", err: fmt.Errorf("watch: %w", linked), wantId: DependencyCycleId, wantOk: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, ok := IdOf(tt.err)
			if id != tt.wantId || ok != tt.wantOk {
				t.Errorf("IdOf() = %v, %v; want %v, %v", id, ok, tt.wantId, tt.wantOk)
			}
		})
	}
}

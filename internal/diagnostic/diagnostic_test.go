// SPDX-License-Identifier: MPL-2.0

package diagnostic

import (
	"errors"
	"testing"
)

func TestDiagnosticString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "warning with line",
			diag: Warn(CodeUnresolvedReference, "/p/main.pryzma", 3, "unresolved use %q", "json"),
			want: `/p/main.pryzma:3: unresolved use "json"`,
		},
		{
			name: "error with cause",
			diag: Error(CodeUnreadableFile, "/p/lib.pryzma", errors.New("permission denied"), "cannot read file"),
			want: "/p/lib.pryzma: cannot read file: permission denied",
		},
		{
			name: "no location",
			diag: Diagnostic{Message: "plain"},
			want: "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.diag.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeverity(t *testing.T) {
	t.Parallel()
	if d := Warn(CodeModuleReentry, "", 0, "x"); d.Severity != SeverityWarning {
		t.Errorf("Warn severity = %q", d.Severity)
	}
	if d := Error(CodeUnreadableFile, "", nil, "x"); d.Severity != SeverityError {
		t.Errorf("Error severity = %q", d.Severity)
	}
}

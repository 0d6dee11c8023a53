// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pryzma/pryzma/internal/issue"
	"github.com/pryzma/pryzma/internal/testutil"
)

func TestLocate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"dot is cwd", ".", "/work"},
		{"empty is cwd", "", "/work"},
		{"named project", "hello", "/home/u/.pryzma/projects/hello"},
		{"relative path", "sub/app", "/work/sub/app"},
		{"absolute path", "/srv/app/", "/srv/app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			want := filepath.FromSlash(tt.want)
			if got := Locate(tt.arg, filepath.FromSlash("/home/u/.pryzma/projects"), filepath.FromSlash("/work")); got != want {
				t.Errorf("Locate(%q) = %q, want %q", tt.arg, got, want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	root := testutil.OsTree(t, testutil.Tree{
		"pryzma.json": `{
    "name": "hello",
    "type": "basic",
    "version": "1.0",
    "entry_point": "src/main.pryzma",
    "description": "Basic Pryzma project"
}`,
		"src/main.pryzma": "print \"hi\"\n",
	})

	p, err := Open(root)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if p.Root != root || p.Entry != filepath.Join(root, "src", "main.pryzma") {
		t.Errorf("Open() = %+v", p)
	}
	if p.Name != filepath.Base(root) {
		t.Errorf("Name = %q, want directory name", p.Name)
	}
	if p.Descriptor.Name != "hello" || p.Descriptor.Type != "basic" || p.Descriptor.Description != "Basic Pryzma project" {
		t.Errorf("Descriptor = %+v", p.Descriptor)
	}
}

func TestOpen_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tree   testutil.Tree
		sub    string
		wantID issue.Id
	}{
		{"missing directory", testutil.Tree{}, "absent", issue.ProjectNotFoundId},
		{"missing descriptor", testutil.Tree{"main.pryzma": ""}, "", issue.ProjectNotFoundId},
		{"malformed descriptor", testutil.Tree{"pryzma.json": "{not json"}, "", issue.ProjectDescriptorInvalidId},
		{"no entry point", testutil.Tree{"pryzma.json": `{"name": "x"}`}, "", issue.ProjectDescriptorInvalidId},
		{"missing entry file", testutil.Tree{"pryzma.json": `{"entry_point": "main.pryzma"}`}, "", issue.EntryPointNotFoundId},
		{"entry is a directory", testutil.Tree{"pryzma.json": `{"entry_point": "src"}`, "src/a.pryzma": ""}, "", issue.EntryPointNotFoundId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := testutil.OsTree(t, tt.tree)

			_, err := Open(filepath.Join(root, tt.sub))
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("Open() error = %v, want *issue.ActionableError", err)
			}
			if ae.Issue != tt.wantID {
				t.Errorf("Issue = %d, want %d", ae.Issue, tt.wantID)
			}
		})
	}
}

func TestReadDescriptor_Missing(t *testing.T) {
	t.Parallel()

	if _, err := ReadDescriptor(t.TempDir()); !errors.Is(err, ErrNoDescriptor) {
		t.Errorf("ReadDescriptor() error = %v, want ErrNoDescriptor", err)
	}
}

func TestForFile(t *testing.T) {
	t.Parallel()

	root := testutil.OsTree(t, testutil.Tree{"tools/run.pryzma": ""})

	p, err := ForFile(filepath.Join(root, "tools", "run.pryzma"))
	if err != nil {
		t.Fatalf("ForFile() error = %v", err)
	}
	if p.Root != filepath.Join(root, "tools") || p.Name != "run" || p.Descriptor != nil {
		t.Errorf("ForFile() = %+v", p)
	}

	_, err = ForFile(filepath.Join(root, "nope.pryzma"))
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ForFile(missing) error = %v", err)
	}
}

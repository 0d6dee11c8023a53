// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestMemTree(t *testing.T) {
	t.Parallel()

	fsys := MemTree(t, "/proj", Tree{
		"main.pryzma":    "use lib\n",
		"lib/lib.pryzma": "/f{}\n",
	})

	data, err := afero.ReadFile(fsys, "/proj/lib/lib.pryzma")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "/f{}\n" {
		t.Errorf("content = %q", data)
	}
	if ok, _ := afero.IsDir(fsys, "/proj/lib"); !ok {
		t.Error("expected /proj/lib to be a directory")
	}
}

func TestOsTree(t *testing.T) {
	t.Parallel()

	root := OsTree(t, Tree{"a/b.txt": "x"})
	if _, err := os.Stat(filepath.Join(root, "a", "b.txt")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
}

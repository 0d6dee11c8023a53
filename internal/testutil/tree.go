// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// Tree maps slash-separated relative paths to file contents.
type Tree map[string]string

// WriteTree writes every file of tree below root on fsys, creating parent
// directories as needed. The test fails immediately on any write error.
func WriteTree(t testing.TB, fsys afero.Fs, root string, tree Tree) {
	t.Helper()
	for rel, content := range tree {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// MemTree returns an in-memory filesystem holding tree below root.
func MemTree(t testing.TB, root string, tree Tree) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	WriteTree(t, fsys, root, tree)
	return fsys
}

// OsTree writes tree into a fresh temporary directory and returns its path.
// Symlinks in the temporary directory path are resolved so returned paths
// compare equal to real paths computed by the code under test.
func OsTree(t testing.TB, tree Tree) string {
	t.Helper()
	root := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	WriteTree(t, afero.NewOsFs(), root, tree)
	return root
}

// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"testing"
)

func homeVar() string {
	if runtime.GOOS == "windows" {
		return "USERPROFILE"
	}
	return "HOME"
}

func TestSetHomeDir(t *testing.T) {
	// Not parallel: mutates the process environment.
	tmpDir := t.TempDir()
	original, hadOriginal := os.LookupEnv(homeVar())

	cleanup := SetHomeDir(t, tmpDir)
	if got := os.Getenv(homeVar()); got != tmpDir {
		t.Errorf("%s = %q, want %q", homeVar(), got, tmpDir)
	}
	if home, err := os.UserHomeDir(); err != nil || home != tmpDir {
		t.Errorf("os.UserHomeDir() = %q, %v; want %q", home, err, tmpDir)
	}

	cleanup()
	got, has := os.LookupEnv(homeVar())
	if has != hadOriginal || got != original {
		t.Errorf("after cleanup %s = %q (set %v), want %q (set %v)", homeVar(), got, has, original, hadOriginal)
	}
}

func TestMustSetenv_UnsetsNewVariable(t *testing.T) {
	const key = "PRYZMA_TESTUTIL_PROBE"
	cleanup := MustSetenv(t, key, "1")
	if os.Getenv(key) != "1" {
		t.Fatalf("%s not set", key)
	}
	cleanup()
	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("%s still set after cleanup", key)
	}
}

func TestMustChdir(t *testing.T) {
	dir := t.TempDir()
	before, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	restore := MustChdir(t, dir)
	now, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if info1, _ := os.Stat(now); !os.SameFile(info1, mustStat(t, dir)) {
		t.Errorf("working directory = %q, want %q", now, dir)
	}

	restore()
	if after, _ := os.Getwd(); after != before {
		t.Errorf("working directory after restore = %q, want %q", after, before)
	}
}

func mustStat(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return info
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/pryzma/pryzma/internal/config"
	"github.com/pryzma/pryzma/internal/issue"
	"github.com/pryzma/pryzma/internal/ppm"
	"github.com/pryzma/pryzma/internal/testutil"
)

type fakePackages struct {
	mu        sync.Mutex
	installed []string
	failing   map[string]error
}

func (f *fakePackages) Install(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing[name]; err != nil {
		return err
	}
	if slices.Contains(f.installed, name) {
		return ppm.ErrAlreadyInstalled
	}
	f.installed = append(f.installed, name)
	return nil
}

func (f *fakePackages) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Sorted(slices.Values(f.installed)), nil
}

func (f *fakePackages) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.Index(f.installed, name)
	if i < 0 {
		return ppm.ErrNotInstalled
	}
	f.installed = slices.Delete(f.installed, i, i+1)
	return nil
}

type harness struct {
	app      *App
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	packages *fakePackages
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.PackagesDir = filepath.Join(t.TempDir(), "packages")
	cfg.ProjectsDir = filepath.Join(t.TempDir(), "projects")

	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, packages: &fakePackages{}}
	h.app = NewApp(Dependencies{
		Config:   config.Static(cfg),
		Packages: func(*config.Config, *slog.Logger) PackageManager { return h.packages },
		Stdout:   h.stdout,
		Stderr:   h.stderr,
	})
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCommand(h.app)
	root.SetArgs(args)
	root.SetOut(h.stdout)
	root.SetErr(h.stderr)
	return root.ExecuteContext(t.Context())
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got := getVersionString(); got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestBuildCommand_Project(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	root := testutil.OsTree(t, testutil.Tree{
		"pryzma.json": `{"name": "app", "entry_point": "main.pryzma"}`,
		"main.pryzma": "use lib\nlib.run()\n",
		"lib.pryzma":  "/run{\n  print 1\n}\n",
	})

	if err := h.run(t, "build", root); err != nil {
		t.Fatalf("build error: %v\nstderr:\n%s", err, h.stderr)
	}
	name := filepath.Base(root)
	if _, err := os.Stat(filepath.Join(root, "build", name+"_bundle.pryzma")); err != nil {
		t.Errorf("bundle not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "build", "dependency_manifest.json")); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "(2 files, 1 modules)") {
		t.Errorf("summary = %q", h.stdout.String())
	}
}

func TestBuildCommand_FileWithProjectArgument(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	err := h.run(t, "build", "-f", "main.pryzma", "app")
	if !errors.Is(err, errFileWithProject) {
		t.Fatalf("error = %v, want errFileWithProject", err)
	}
}

func TestBuildCommand_StrictReportsIssue(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	root := testutil.OsTree(t, testutil.Tree{"tool.pryzma": "use ./nowhere\n"})

	err := h.run(t, "build", "--strict", "-f", filepath.Join(root, "tool.pryzma"))
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.UnresolvedDependenciesId {
		t.Fatalf("error = %v, want unresolved dependencies issue", err)
	}
	if _, statErr := os.Stat(filepath.Join(root, "build", "tool_bundle.pryzma")); statErr != nil {
		t.Errorf("strict failure should still write the bundle: %v", statErr)
	}
}

func TestBuildCommand_AutoFetchUsesPackageManager(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	root := testutil.OsTree(t, testutil.Tree{"tool.pryzma": "use json\n"})

	if err := h.run(t, "build", "-a", "-f", filepath.Join(root, "tool.pryzma")); err != nil {
		t.Fatalf("build error: %v", err)
	}
	if !slices.Equal(h.packages.installed, []string{"json"}) {
		t.Errorf("installed = %v, want [json]", h.packages.installed)
	}
}

func TestDepsCommand_Formats(t *testing.T) {
	t.Parallel()

	tree := testutil.Tree{
		"main.pryzma": "use a\nuse ./gone\n",
		"a.pryzma":    "#insert b.pryzma\n",
		"b.pryzma":    "print 1\n",
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "text", want: []string{"1. main.pryzma", "2. a.pryzma", "3. b.pryzma", "./gone referenced in main.pryzma:2 (use)"}},
		{name: "json", args: []string{"--format", "json"}, want: []string{`"entry_point": `, `"graph": {`, `"target": "./gone"`}},
		{name: "dot", args: []string{"--format", "dot"}, want: []string{"digraph", `"a.pryzma" -> "b.pryzma" [style=dotted]`}},
		{name: "order", args: []string{"--order"}, want: []string{"b.pryzma\na.pryzma\nmain.pryzma\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			root := testutil.OsTree(t, tree)
			args := append([]string{"deps", "-f", filepath.Join(root, "main.pryzma")}, tt.args...)
			if err := h.run(t, args...); err != nil {
				t.Fatalf("deps error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(h.stdout.String(), want) {
					t.Errorf("output lacks %q:\n%s", want, h.stdout.String())
				}
			}
		})
	}
}

func TestDepsCommand_OrderFailsOnCycle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	root := testutil.OsTree(t, testutil.Tree{
		"main.pryzma": "use a\n",
		"a.pryzma":    "use main\n",
	})

	err := h.run(t, "deps", "--order", "-f", filepath.Join(root, "main.pryzma"))
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.DependencyCycleId {
		t.Fatalf("error = %v, want dependency cycle issue", err)
	}
}

func TestDepsCommand_StrictExitCode(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	root := testutil.OsTree(t, testutil.Tree{"main.pryzma": "use ./gone\n"})

	err := h.run(t, "deps", "--strict", "-f", filepath.Join(root, "main.pryzma"))
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("error = %v, want exit code 1", err)
	}
}

func TestDepsCommand_UnknownFormat(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.run(t, "deps", "--format", "svg"); err == nil || !strings.Contains(err.Error(), `unknown format "svg"`) {
		t.Fatalf("error = %v", err)
	}
}

func TestPPMCommands(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.packages.installed = []string{"json"}

	if err := h.run(t, "ppm", "install", "json", "net"); err != nil {
		t.Fatalf("install error: %v", err)
	}
	out := h.stdout.String()
	if !strings.Contains(out, "json is already installed") || !strings.Contains(out, "Installed net") {
		t.Errorf("install output = %q", out)
	}

	h.stdout.Reset()
	if err := h.run(t, "ppm", "list"); err != nil {
		t.Fatal(err)
	}
	if got := h.stdout.String(); got != "- json\n- net\n" {
		t.Errorf("list output = %q", got)
	}

	h.stdout.Reset()
	if err := h.run(t, "ppm", "remove", "json"); err != nil {
		t.Fatal(err)
	}
	if err := h.run(t, "ppm", "remove", "json"); !errors.Is(err, ppm.ErrNotInstalled) {
		t.Errorf("second remove error = %v, want ErrNotInstalled", err)
	}
}

func TestPPMInstall_Failure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.packages.failing = map[string]error{"broken": errors.New("no mirror")}

	err := h.run(t, "ppm", "install", "broken")
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.PackageInstallFailedId {
		t.Fatalf("error = %v, want package install issue", err)
	}
}

func TestPPMList_Empty(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.run(t, "ppm", "list"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.stdout.String(), "No packages installed.") {
		t.Errorf("list output = %q", h.stdout.String())
	}
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if err := h.run(t, "config", "dump"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.stdout.String(), "packages_dir: ") || !strings.Contains(h.stdout.String(), "\nppm: {\n") {
		t.Errorf("dump output = %q", h.stdout.String())
	}

	h.stdout.Reset()
	if err := h.run(t, "config", "show"); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Current Configuration", "packages_dir", config.DefaultMirror, "(default)"} {
		if !strings.Contains(h.stdout.String(), want) {
			t.Errorf("show output lacks %q:\n%s", want, h.stdout.String())
		}
	}
}

func TestLoadConfig_ErrorIsReturned(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("bad config")
	failing := config.ProviderFunc(func(context.Context, config.LoadOptions) (*config.Config, error) {
		return nil, wantErr
	})
	app := NewApp(Dependencies{Config: failing, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	root := NewRootCommand(app)
	root.SetArgs([]string{"ppm", "list"})
	if err := root.ExecuteContext(t.Context()); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	var buf bytes.Buffer
	renderError(&buf, h.app, &ExitError{Code: 2})
	if buf.Len() != 0 {
		t.Errorf("reported exit error should render nothing, got %q", buf.String())
	}

	buf.Reset()
	renderError(&buf, h.app, errors.New("plain failure"))
	if !strings.Contains(buf.String(), "Error: plain failure") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	err := issue.NewErrorContext().
		WithOperation("resolve dependencies").
		WithSuggestion("Install the package").
		WithIssue(issue.UnresolvedDependenciesId).
		Wrap(errors.New("1 unresolved dependencies")).
		BuildError()
	renderError(&buf, h.app, err)
	if !strings.Contains(buf.String(), "resolve dependencies") || !strings.Contains(buf.String(), "Install the package") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestBuildCommand_DefaultsToWorkingDirectory(t *testing.T) {
	// Not parallel: changes the working directory.
	h := newHarness(t)
	root := testutil.OsTree(t, testutil.Tree{
		"pryzma.json": `{"name": "here", "entry_point": "main.pryzma"}`,
		"main.pryzma": "print 1\n",
	})
	t.Cleanup(testutil.MustChdir(t, root))

	if err := h.run(t, "build"); err != nil {
		t.Fatalf("build error: %v", err)
	}
	want := filepath.Join("build", filepath.Base(root)+"_bundle.pryzma")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("bundle not written to %s: %v", want, err)
	}
}

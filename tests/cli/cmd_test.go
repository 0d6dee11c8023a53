// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript.
//
// The pryzma command runs in-process: testscript re-executes the test binary
// whenever a script invokes it.
package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	cmd "github.com/pryzma/pryzma/cmd/pryzma"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"pryzma": cmd.Main,
	}))
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			// Keep packages, projects and the config file inside the sandbox.
			env.Setenv("PRYZMA_PACKAGES_DIR", filepath.Join(env.WorkDir, "packages"))
			env.Setenv("PRYZMA_PROJECTS_DIR", filepath.Join(env.WorkDir, "projects"))
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("NO_COLOR", "1")
			return nil
		},
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}

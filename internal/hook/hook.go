// SPDX-License-Identifier: MPL-2.0

// Package hook runs the post-build command with an embedded POSIX shell, so
// the command behaves the same on every platform.
package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Environment variables exposed to the post-build command.
const (
	EnvBundle   = "PRYZMA_BUNDLE"
	EnvManifest = "PRYZMA_MANIFEST"
	EnvProject  = "PRYZMA_PROJECT"
)

// ErrNonZeroExit is the sentinel error wrapped by ExitError.
var ErrNonZeroExit = errors.New("post-build command exited with non-zero status")

type (
	// Request describes one post-build invocation.
	Request struct {
		// Script is shell source; an empty script is a no-op.
		Script string
		// Dir is the working directory, normally the project root.
		Dir      string
		Bundle   string
		Manifest string
		Project  string
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ExitError is returned when the script exits with a non-zero status.
	ExitError struct {
		Code int
	}
)

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("post-build command exited with status %d", e.Code)
}

// Unwrap returns ErrNonZeroExit for errors.Is() compatibility.
func (e *ExitError) Unwrap() error { return ErrNonZeroExit }

// Run parses and executes req.Script.
func Run(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.Script) == "" {
		return nil
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(req.Script), "post_command")
	if err != nil {
		return fmt.Errorf("failed to parse post-build command: %w", err)
	}

	stdout, stderr := req.Stdout, req.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	env := append(os.Environ(),
		EnvBundle+"="+req.Bundle,
		EnvManifest+"="+req.Manifest,
		EnvProject+"="+req.Project,
	)

	runner, err := interp.New(
		interp.Dir(req.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &ExitError{Code: int(exitStatus)}
		}
		return fmt.Errorf("post-build command failed: %w", err)
	}
	return nil
}

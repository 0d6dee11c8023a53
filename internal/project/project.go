// SPDX-License-Identifier: MPL-2.0

// Package project locates a build's project root, entry file and artifact
// name, either from a pryzma.json descriptor or from a single source file.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pryzma/pryzma/internal/issue"

	"github.com/spf13/viper"
)

// DescriptorFile is the project descriptor file name.
const DescriptorFile = "pryzma.json"

var (
	// ErrNoDescriptor is returned when a project directory has no pryzma.json.
	ErrNoDescriptor = errors.New("missing " + DescriptorFile)
	// ErrNoEntryPoint is returned when pryzma.json names no entry point.
	ErrNoEntryPoint = errors.New("entry_point is not set")
)

type (
	// Descriptor is the content of pryzma.json.
	Descriptor struct {
		Name    string `json:"name" mapstructure:"name"`
		Type    string `json:"type" mapstructure:"type"`
		Version string `json:"version" mapstructure:"version"`
		// EntryPoint is relative to the project directory.
		EntryPoint  string `json:"entry_point" mapstructure:"entry_point"`
		Description string `json:"description" mapstructure:"description"`
		Venv        string `json:"venv,omitempty" mapstructure:"venv"`
	}

	// Project is a resolved build target.
	Project struct {
		// Root is the absolute project directory.
		Root string
		// Entry is the absolute entry file path.
		Entry string
		// Name names build artifacts: the directory name in project mode, the
		// entry file stem in file mode.
		Name string
		// Descriptor is nil in single-file mode.
		Descriptor *Descriptor
	}
)

// Locate maps a project argument to a directory: "." is cwd, a path
// containing a separator is used as is, anything else names a folder under
// projectsDir.
func Locate(name, projectsDir, cwd string) string {
	switch {
	case name == "" || name == ".":
		return cwd
	case filepath.IsAbs(name):
		return filepath.Clean(name)
	case strings.ContainsAny(name, `/\`):
		return filepath.Join(cwd, name)
	default:
		return filepath.Join(projectsDir, name)
	}
}

// ReadDescriptor reads pryzma.json from dir.
func ReadDescriptor(dir string) (*Descriptor, error) {
	path := filepath.Join(dir, DescriptorFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoDescriptor
		}
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var d Descriptor
	if err := v.Unmarshal(&d); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &d, nil
}

// Open resolves a descriptor-based project rooted at dir. Every failure is an
// *issue.ActionableError linked to the matching catalog entry.
func Open(dir string) (*Project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		root = filepath.Clean(dir)
	}

	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		if statErr == nil {
			statErr = fmt.Errorf("%s is not a directory", root)
		}
		return nil, issue.NewErrorContext().
			WithOperation("open project").
			WithResource(root).
			WithSuggestion("Use '.' to build the project in the current directory").
			WithSuggestion("Check projects_dir with 'pryzma config show'").
			WithIssue(issue.ProjectNotFoundId).
			Wrap(statErr).
			BuildError()
	}

	desc, err := ReadDescriptor(root)
	if err != nil {
		id := issue.ProjectDescriptorInvalidId
		if errors.Is(err, ErrNoDescriptor) {
			id = issue.ProjectNotFoundId
		}
		return nil, issue.NewErrorContext().
			WithOperation("read project descriptor").
			WithResource(filepath.Join(root, DescriptorFile)).
			WithSuggestion("Use 'pryzma build -f <file>' to build a single file without a descriptor").
			WithIssue(id).
			Wrap(err).
			BuildError()
	}
	if strings.TrimSpace(desc.EntryPoint) == "" {
		return nil, issue.NewErrorContext().
			WithOperation("read project descriptor").
			WithResource(filepath.Join(root, DescriptorFile)).
			WithSuggestion("Add an \"entry_point\" field such as \"main.pryzma\"").
			WithIssue(issue.ProjectDescriptorInvalidId).
			Wrap(ErrNoEntryPoint).
			BuildError()
	}

	entry := filepath.Join(root, filepath.FromSlash(desc.EntryPoint))
	if err := requireFile(entry); err != nil {
		return nil, err
	}

	return &Project{
		Root:       root,
		Entry:      entry,
		Name:       filepath.Base(root),
		Descriptor: desc,
	}, nil
}

// ForFile resolves single-file mode: the project root is the file's directory.
func ForFile(path string) (*Project, error) {
	entry, err := filepath.Abs(path)
	if err != nil {
		entry = filepath.Clean(path)
	}
	if err := requireFile(entry); err != nil {
		return nil, err
	}
	base := filepath.Base(entry)
	return &Project{
		Root:  filepath.Dir(entry),
		Entry: entry,
		Name:  strings.TrimSuffix(base, filepath.Ext(base)),
	}, nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return nil
	}
	if err == nil {
		err = fmt.Errorf("%s is a directory", path)
	}
	return issue.NewErrorContext().
		WithOperation("locate entry point").
		WithResource(path).
		WithSuggestion("Check the entry_point field of " + DescriptorFile).
		WithSuggestion("Check the path passed with -f").
		WithIssue(issue.EntryPointNotFoundId).
		Wrap(err).
		BuildError()
}

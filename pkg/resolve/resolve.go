// SPDX-License-Identifier: MPL-2.0

// Package resolve turns raw Pryzma references into file paths.
//
// A reference may name a script relative to the referencing file, a module
// relative to the project root (or its src folder), or an installed package in
// the package repository. Callers do not need to know which style a string
// uses: Resolve tries every location in a fixed order and the first existing
// file wins.
package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// DefaultExt is the source file extension appended to extensionless references.
	DefaultExt = ".pryzma"
	// AltExt is tried for package references when DefaultExt is absent.
	AltExt = ".prz"

	// SourceDir is the conventional source folder under the project root.
	SourceDir = "src"

	packageSeparator = "::"
)

// ErrNotFound is wrapped by every NotFoundError.
var ErrNotFound = errors.New("reference not found")

type (
	// NotFoundError reports a reference that matched no candidate location.
	// It wraps ErrNotFound for errors.Is() compatibility.
	NotFoundError struct {
		// Reference is the raw reference text, unmodified.
		Reference string
	}

	// Resolver resolves references against a project root and a package
	// repository. A Resolver only reads from its filesystem and is safe to
	// share between sequential builds.
	Resolver struct {
		// Fs is the filesystem to probe. Nil means the OS filesystem.
		Fs afero.Fs
		// ProjectRoot is the project directory.
		ProjectRoot string
		// PackageRoot is the installed-package repository. Empty disables
		// package resolution.
		PackageRoot string
		// Ext and FallbackExt default to DefaultExt and AltExt.
		Ext         string
		FallbackExt string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reference %q not found", e.Reference)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// New creates a Resolver on the OS filesystem.
func New(projectRoot, packageRoot string) *Resolver {
	return &Resolver{
		Fs:          afero.NewOsFs(),
		ProjectRoot: projectRoot,
		PackageRoot: packageRoot,
	}
}

// Resolve returns the path of the file named by reference, searching
// currentDir (the directory of the referencing file), the project root, the
// project's src folder and finally the package repository.
func (r *Resolver) Resolve(reference, currentDir string) (string, error) {
	normalized := normalize(reference)
	if normalized == "" {
		return "", &NotFoundError{Reference: reference}
	}

	candidates := []string{normalized}
	if !strings.HasSuffix(normalized, r.ext()) {
		candidates = append(candidates, normalized+r.ext())
	}

	var roots []string
	if filepath.IsAbs(normalized) {
		roots = []string{""}
	} else {
		if currentDir != "" {
			roots = append(roots, r.RealPath(currentDir))
		}
		projectRoot := r.RealPath(r.ProjectRoot)
		roots = append(roots, projectRoot)
		if srcRoot := filepath.Join(projectRoot, SourceDir); r.isDir(srcRoot) {
			roots = append(roots, srcRoot)
		}
	}

	for _, root := range roots {
		for _, candidate := range candidates {
			path := filepath.Clean(filepath.Join(root, candidate))
			if r.isFile(path) {
				return path, nil
			}
		}
	}

	if path, ok := r.resolvePackage(reference); ok {
		return path, nil
	}

	return "", &NotFoundError{Reference: reference}
}

// resolvePackage maps a package reference onto the package repository.
// "a::b::c" names PackageRoot/a/b/c.ext and a bare "pkg" names
// PackageRoot/pkg/pkg.ext; FallbackExt is tried when the first is absent.
func (r *Resolver) resolvePackage(reference string) (string, bool) {
	if r.PackageRoot == "" {
		return "", false
	}

	name := strings.TrimLeft(strings.Trim(strings.TrimSpace(reference), "\"'"), "@")
	if !IsPackageReference(name) {
		return "", false
	}

	var rel string
	if strings.Contains(name, packageSeparator) {
		parts := packageParts(name)
		if len(parts) == 0 {
			return "", false
		}
		stem := parts[len(parts)-1]
		rel = filepath.Join(append(parts[:len(parts)-1:len(parts)-1], stem+r.ext())...)
	} else {
		rel = filepath.Join(name, name+r.ext())
	}

	candidate := filepath.Join(r.PackageRoot, rel)
	if r.isFile(candidate) {
		return candidate, true
	}
	alt := strings.TrimSuffix(candidate, r.ext()) + r.fallbackExt()
	if r.isFile(alt) {
		return alt, true
	}
	return "", false
}

// IsPackageReference reports whether reference has the shape of an installed
// package name: not empty, not relative, and free of path separators.
func IsPackageReference(reference string) bool {
	return reference != "" &&
		!strings.HasPrefix(reference, ".") &&
		!strings.ContainsAny(reference, `/\`)
}

// PackageName infers the installable package named by a reference, for
// fetching missing dependencies. "net::http" yields "net" and a bare "json"
// yields "json"; path-like references yield no name.
func PackageName(reference string) (string, bool) {
	name := strings.TrimLeft(normalize(reference), "@")
	if name == "" {
		return "", false
	}
	if first, _, found := strings.Cut(name, packageSeparator); found {
		first = strings.TrimSpace(first)
		return first, first != ""
	}
	if !IsPackageReference(name) {
		return "", false
	}
	return name, true
}

// RealPath returns the absolute, symlink-resolved form of path. When the
// path cannot be evaluated (it does not exist, or the filesystem is not the
// OS filesystem) the cleaned absolute path is returned.
func (r *Resolver) RealPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if _, isOS := r.fs().(*afero.OsFs); !isOS {
		return abs
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func (r *Resolver) isFile(path string) bool {
	info, err := r.fs().Stat(path)
	return err == nil && !info.IsDir()
}

func (r *Resolver) isDir(path string) bool {
	info, err := r.fs().Stat(path)
	return err == nil && info.IsDir()
}

func (r *Resolver) fs() afero.Fs {
	if r.Fs == nil {
		return afero.NewOsFs()
	}
	return r.Fs
}

func (r *Resolver) ext() string {
	if r.Ext == "" {
		return DefaultExt
	}
	return r.Ext
}

func (r *Resolver) fallbackExt() string {
	if r.FallbackExt == "" {
		return AltExt
	}
	return r.FallbackExt
}

func normalize(reference string) string {
	return strings.Trim(strings.TrimSpace(strings.ReplaceAll(reference, `\`, "/")), "\"'")
}

func packageParts(name string) []string {
	var parts []string
	for part := range strings.SplitSeq(name, packageSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

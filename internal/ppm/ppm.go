// SPDX-License-Identifier: MPL-2.0

package ppm

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/pryzma/pryzma/internal/config"
)

// maxArchiveBytes caps the size of a downloaded package archive (64 MB).
const maxArchiveBytes = 64 << 20

var (
	// ErrAlreadyInstalled is returned by Install when the package directory exists.
	ErrAlreadyInstalled = errors.New("package already installed")
	// ErrNotInstalled is returned by Remove when the package directory is absent.
	ErrNotInstalled = errors.New("package not installed")
	// ErrInvalidName is the sentinel error wrapped by InvalidNameError.
	ErrInvalidName = errors.New("invalid package name")

	packageNameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)
)

type (
	// Cloner clones repoURL into dir. The directory does not exist yet.
	Cloner func(ctx context.Context, repoURL, dir string) error

	// Option configures an Installer.
	Option func(*Installer)

	// Installer installs packages into a package repository directory, one
	// subdirectory per package.
	Installer struct {
		// PackagesDir is the package repository root.
		PackagesDir string
		// Mirrors are base URLs serving <mirror>/download/<name> as zip archives.
		Mirrors []string
		// FallbackRepo is a git repository holding one folder per package.
		FallbackRepo    string
		ProbeTimeout    time.Duration
		DownloadTimeout time.Duration

		client *http.Client
		clone  Cloner
		logger *slog.Logger
	}

	// InvalidNameError is returned when a package name cannot be used as a
	// directory name inside the package repository.
	InvalidNameError struct {
		Name string
	}

	// InstallError is returned when every source failed.
	InstallError struct {
		Name     string
		Attempts []error
	}

	probeResult struct {
		mirror  string
		latency time.Duration
	}
)

// WithHTTPClient sets the HTTP client used for probing and downloading.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Installer) { i.client = c }
}

// WithCloner replaces the git clone used by the repository fallback.
func WithCloner(c Cloner) Option {
	return func(i *Installer) { i.clone = c }
}

// WithLogger sets the logger that receives progress records.
func WithLogger(l *slog.Logger) Option {
	return func(i *Installer) { i.logger = l }
}

// New creates an Installer for packagesDir using the mirror and timeout
// settings of cfg. Zero timeouts fall back to the configuration defaults.
func New(packagesDir string, cfg config.PPMConfig, opts ...Option) *Installer {
	defaults := config.DefaultConfig().PPM
	i := &Installer{
		PackagesDir:     packagesDir,
		Mirrors:         cfg.EffectiveMirrors(),
		FallbackRepo:    cfg.FallbackRepo,
		ProbeTimeout:    cfg.ProbeTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
		client:          http.DefaultClient,
		clone:           CloneShallow,
		logger:          slog.Default(),
	}
	if i.FallbackRepo == "" {
		i.FallbackRepo = defaults.FallbackRepo
	}
	if i.ProbeTimeout <= 0 {
		i.ProbeTimeout = defaults.ProbeTimeout
	}
	if i.DownloadTimeout <= 0 {
		i.DownloadTimeout = defaults.DownloadTimeout
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid package name %q", e.Name)
}

// Unwrap returns ErrInvalidName for errors.Is() compatibility.
func (e *InvalidNameError) Unwrap() error { return ErrInvalidName }

// Error implements the error interface.
func (e *InstallError) Error() string {
	return fmt.Sprintf("installing package %q failed from all sources: %v", e.Name, errors.Join(e.Attempts...))
}

// Unwrap exposes the per-source failures.
func (e *InstallError) Unwrap() []error { return e.Attempts }

// ValidateName reports whether name is usable as a package directory name.
func ValidateName(name string) error {
	if name == "." || name == ".." || !packageNameRegex.MatchString(name) {
		return &InvalidNameError{Name: name}
	}
	return nil
}

// PackageDir returns the directory a package is installed into.
func (i *Installer) PackageDir(name string) string {
	return filepath.Join(i.PackagesDir, name)
}

// IsInstalled reports whether the package directory exists.
func (i *Installer) IsInstalled(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	_, err := os.Stat(i.PackageDir(name))
	return err == nil
}

// Install fetches a package and unpacks it into PackagesDir/<name>.
//
// Mirrors that answer a HEAD probe with 200 are tried fastest first. When no
// mirror answers the probe, every mirror is tried in configured order. The
// last resort is a shallow clone of FallbackRepo, copying its <name> folder.
func (i *Installer) Install(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(i.PackagesDir, 0o755); err != nil {
		return fmt.Errorf("creating packages directory: %w", err)
	}
	if i.IsInstalled(name) {
		return fmt.Errorf("%s: %w", name, ErrAlreadyInstalled)
	}

	var attempts []error

	candidates := i.probe(ctx, name)
	if len(candidates) == 0 {
		i.logger.Debug("no mirror answered the probe, trying configured order", "package", name)
		candidates = i.Mirrors
	}
	for _, mirror := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := i.installFromMirror(ctx, mirror, name)
		if err == nil {
			i.logger.Info("package installed", "package", name, "source", mirror)
			return nil
		}
		i.logger.Warn("mirror failed", "mirror", mirror, "error", err)
		attempts = append(attempts, fmt.Errorf("mirror %s: %w", mirror, err))
	}

	if i.FallbackRepo != "" {
		err := i.installFromRepo(ctx, name)
		if err == nil {
			i.logger.Info("package installed", "package", name, "source", i.FallbackRepo)
			return nil
		}
		attempts = append(attempts, fmt.Errorf("repository %s: %w", i.FallbackRepo, err))
	}

	return &InstallError{Name: name, Attempts: attempts}
}

// List returns the names of installed packages, sorted.
func (i *Installer) List() ([]string, error) {
	entries, err := os.ReadDir(i.PackagesDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading packages directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		// in-flight installs are dot-prefixed temp directories
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Remove deletes an installed package.
func (i *Installer) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	dir := i.PackageDir(name)
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.IsDir()) {
		return fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing package %s: %w", name, err)
	}
	return nil
}

// probe sends a HEAD request to every mirror and returns the ones that
// answered 200, ordered by latency.
func (i *Installer) probe(ctx context.Context, name string) []string {
	var results []probeResult
	for _, mirror := range i.Mirrors {
		start := time.Now()
		resp, err := i.doRequest(ctx, i.ProbeTimeout, http.MethodHead, downloadURL(mirror, name))
		if err != nil {
			i.logger.Debug("mirror probe failed", "mirror", mirror, "error", err)
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			i.logger.Debug("mirror probe rejected", "mirror", mirror, "status", resp.StatusCode)
			continue
		}
		results = append(results, probeResult{mirror: mirror, latency: time.Since(start)})
	}
	slices.SortStableFunc(results, func(a, b probeResult) int {
		return int(a.latency - b.latency)
	})
	mirrors := make([]string, 0, len(results))
	for _, r := range results {
		mirrors = append(mirrors, r.mirror)
	}
	return mirrors
}

func (i *Installer) installFromMirror(ctx context.Context, mirror, name string) (err error) {
	reqURL := downloadURL(mirror, name)
	i.logger.Debug("downloading package", "url", reqURL)

	ctx, cancel := context.WithTimeout(ctx, i.DownloadTimeout)
	defer cancel()

	resp, err := i.doRequest(ctx, 0, http.MethodGet, reqURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	if len(data) > maxArchiveBytes {
		return fmt.Errorf("archive exceeds %d bytes", maxArchiveBytes)
	}
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}

	return i.place(name, func(dir string) error { return extractArchive(archive, dir) })
}

func (i *Installer) installFromRepo(ctx context.Context, name string) error {
	cloneDir, err := os.MkdirTemp("", "ppm-clone-*")
	if err != nil {
		return fmt.Errorf("creating clone directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(cloneDir) }()

	repoDir := filepath.Join(cloneDir, "repo")
	if err := i.clone(ctx, i.FallbackRepo, repoDir); err != nil {
		return err
	}
	folder := filepath.Join(repoDir, name)
	if info, statErr := os.Stat(folder); statErr != nil || !info.IsDir() {
		return fmt.Errorf("package %q not found in repository", name)
	}

	return i.place(name, func(dir string) error { return os.CopyFS(dir, os.DirFS(folder)) })
}

// place fills a temporary directory inside PackagesDir and renames it to the
// package directory, so a failed install leaves nothing behind.
func (i *Installer) place(name string, fill func(dir string) error) error {
	tmp, err := os.MkdirTemp(i.PackagesDir, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	if err := fill(tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}
	if err := os.Rename(tmp, i.PackageDir(name)); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("installing package directory: %w", err)
	}
	return nil
}

// doRequest executes a body-less request. A positive timeout bounds the
// whole exchange, including reading the response.
func (i *Installer) doRequest(ctx context.Context, timeout time.Duration, method, reqURL string) (*http.Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := i.client.Do(req) //nolint:gosec // mirror URLs come from validated configuration
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// CloneShallow clones the default branch of repoURL at depth 1.
func CloneShallow(ctx context.Context, repoURL, dir string) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		SingleBranch: true,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return fmt.Errorf("cloning %s: %w", repoURL, err)
	}
	return nil
}

func downloadURL(mirror, name string) string {
	return strings.TrimRight(mirror, "/") + "/download/" + name
}

func extractArchive(archive *zip.Reader, dest string) error {
	for _, file := range archive.File {
		destPath := filepath.Join(dest, filepath.FromSlash(file.Name))

		relPath, relErr := filepath.Rel(dest, destPath)
		if relErr != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			return fmt.Errorf("invalid path in archive: %s", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return fmt.Errorf("creating directory: %w", err)
			}
			continue
		}
		if !file.Mode().IsRegular() {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("creating parent directory: %w", err)
		}
		if err := extractFile(file, destPath); err != nil {
			return fmt.Errorf("extracting %s: %w", file.Name, err)
		}
	}
	return nil
}

func extractFile(file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, io.LimitReader(rc, maxArchiveBytes))
	return err
}

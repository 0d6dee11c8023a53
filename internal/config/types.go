// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultMirror is the package mirror used when none is configured.
	DefaultMirror = "http://pryzma.dzordz.pl/api"
	// DefaultFallbackRepo is cloned when no mirror can serve a package.
	DefaultFallbackRepo = "https://github.com/IgorCielniak/Pryzma-packages"

	defaultProbeTimeout    = 3 * time.Second
	defaultDownloadTimeout = 10 * time.Second
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidMirror is the sentinel error wrapped by InvalidMirrorError.
	ErrInvalidMirror = errors.New("invalid mirror URL")
	// ErrInvalidTimeout is returned when a timeout is zero or negative.
	ErrInvalidTimeout = errors.New("invalid timeout")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidMirrorError is returned when a mirror is not an absolute http(s) URL.
	InvalidMirrorError struct {
		Value string
	}

	// InvalidTimeoutError is returned when a configured timeout is not positive.
	InvalidTimeoutError struct {
		Field string
		Value time.Duration
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// PackagesDir is where packages are installed and resolved from.
		PackagesDir string `json:"packages_dir" mapstructure:"packages_dir"`
		// ProjectsDir holds named projects.
		ProjectsDir string      `json:"projects_dir" mapstructure:"projects_dir"`
		PPM         PPMConfig   `json:"ppm" mapstructure:"ppm"`
		Build       BuildConfig `json:"build" mapstructure:"build"`
		UI          UIConfig    `json:"ui" mapstructure:"ui"`
	}

	// PPMConfig configures package installation.
	PPMConfig struct {
		// Mirrors are base URLs serving <mirror>/download/<package> as zip archives.
		Mirrors []string `json:"mirrors" mapstructure:"mirrors"`
		// FallbackRepo is a git repository holding one folder per package.
		FallbackRepo    string        `json:"fallback_repo" mapstructure:"fallback_repo"`
		ProbeTimeout    time.Duration `json:"probe_timeout" mapstructure:"probe_timeout"`
		DownloadTimeout time.Duration `json:"download_timeout" mapstructure:"download_timeout"`
	}

	// BuildConfig holds build defaults; command-line flags take precedence.
	BuildConfig struct {
		// AutoFetch installs missing packages before bundling.
		AutoFetch bool `json:"auto_fetch" mapstructure:"auto_fetch"`
		// Strict fails the build when references are missing or cyclic.
		Strict bool `json:"strict" mapstructure:"strict"`
		// PostCommand is a shell script run after a successful build.
		PostCommand string `json:"post_command" mapstructure:"post_command"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Error implements the error interface for InvalidMirrorError.
func (e *InvalidMirrorError) Error() string {
	return fmt.Sprintf("invalid mirror %q: must be an absolute http or https URL", e.Value)
}

// Unwrap returns ErrInvalidMirror for errors.Is() compatibility.
func (e *InvalidMirrorError) Unwrap() error { return ErrInvalidMirror }

// Error implements the error interface for InvalidTimeoutError.
func (e *InvalidTimeoutError) Error() string {
	return fmt.Sprintf("invalid %s %s: must be positive", e.Field, e.Value)
}

// Unwrap returns ErrInvalidTimeout for errors.Is() compatibility.
func (e *InvalidTimeoutError) Unwrap() error { return ErrInvalidTimeout }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid validates mirror URLs and timeouts.
func (c PPMConfig) IsValid() (bool, []error) {
	var errs []error
	for _, m := range c.Mirrors {
		u, err := url.Parse(m)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, &InvalidMirrorError{Value: m})
		}
	}
	if c.ProbeTimeout <= 0 {
		errs = append(errs, &InvalidTimeoutError{Field: "ppm.probe_timeout", Value: c.ProbeTimeout})
	}
	if c.DownloadTimeout <= 0 {
		errs = append(errs, &InvalidTimeoutError{Field: "ppm.download_timeout", Value: c.DownloadTimeout})
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.PPM.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// EffectiveMirrors returns the configured mirrors, or DefaultMirror when none
// are configured.
func (c PPMConfig) EffectiveMirrors() []string {
	if len(c.Mirrors) == 0 {
		return []string{DefaultMirror}
	}
	return c.Mirrors
}

// DataDir returns ~/.pryzma, the default home of packages and projects.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return ".pryzma"
	}
	return filepath.Join(home, ".pryzma")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dataDir := DataDir()
	return &Config{
		PackagesDir: filepath.Join(dataDir, "packages"),
		ProjectsDir: filepath.Join(dataDir, "projects"),
		PPM: PPMConfig{
			Mirrors:         []string{},
			FallbackRepo:    DefaultFallbackRepo,
			ProbeTimeout:    defaultProbeTimeout,
			DownloadTimeout: defaultDownloadTimeout,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

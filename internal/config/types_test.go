// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	for _, cs := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if ok, errs := cs.IsValid(); !ok || errs != nil {
			t.Errorf("%q.IsValid() = %v, %v", cs, ok, errs)
		}
	}

	ok, errs := ColorScheme("neon").IsValid()
	if ok || len(errs) != 1 || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Errorf("neon.IsValid() = %v, %v", ok, errs)
	}
}

func TestPPMConfig_IsValid(t *testing.T) {
	t.Parallel()

	valid := DefaultConfig().PPM
	valid.Mirrors = []string{"http://localhost:8080/api"}
	if ok, errs := valid.IsValid(); !ok {
		t.Errorf("IsValid() = %v", errs)
	}

	invalid := PPMConfig{Mirrors: []string{"ftp://x", "/relative"}, ProbeTimeout: 0, DownloadTimeout: -time.Second}
	ok, errs := invalid.IsValid()
	if ok || len(errs) != 4 {
		t.Fatalf("IsValid() = %v, %v; want 4 errors", ok, errs)
	}
	if !errors.Is(errs[0], ErrInvalidMirror) || !errors.Is(errs[2], ErrInvalidTimeout) {
		t.Errorf("unexpected error kinds: %v", errs)
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	if ok, errs := DefaultConfig().IsValid(); !ok {
		t.Errorf("DefaultConfig().IsValid() = %v", errs)
	}

	cfg := DefaultConfig()
	cfg.UI.ColorScheme = "neon"
	ok, errs := cfg.IsValid()
	if ok || !errors.Is(errs[0], ErrInvalidConfig) {
		t.Errorf("IsValid() = %v, %v", ok, errs)
	}
}

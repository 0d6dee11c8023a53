// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pryzma/pryzma/internal/config"
)

// newConfigCommand creates the `pryzma config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pryzma configuration",
		Long: `Manage pryzma configuration.

Configuration is stored in:
  - Linux: ~/.config/pryzma/config.cue
  - macOS: ~/Library/Application Support/pryzma/config.cue
  - Windows: %APPDATA%\pryzma\config.cue

Every key can be overridden with a PRYZMA_ environment variable, for example
PRYZMA_PACKAGES_DIR or PRYZMA_BUILD_STRICT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}
			path, err := config.FilePath(config.LoadOptions{ConfigFilePath: app.configPath})
			if err != nil {
				return err
			}
			showConfig(app, cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), PathStyle.Render(path))
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), PathStyle.Render(path))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", dir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App, cfg *config.Config, path string) {
	w := app.stdout
	key := PathStyle.Render
	value := SuccessStyle.Render

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path == "" {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), path)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", key("packages_dir"), value(cfg.PackagesDir))
	fmt.Fprintf(w, "%s: %s\n", key("projects_dir"), value(cfg.ProjectsDir))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("ppm"))
	mirrors := cfg.PPM.EffectiveMirrors()
	if len(cfg.PPM.Mirrors) == 0 {
		fmt.Fprintf(w, "  mirrors: %s %s\n", value(strings.Join(mirrors, ", ")), SubtitleStyle.Render("(default)"))
	} else {
		fmt.Fprintf(w, "  mirrors: %s\n", value(strings.Join(mirrors, ", ")))
	}
	fmt.Fprintf(w, "  fallback_repo: %s\n", value(cfg.PPM.FallbackRepo))
	fmt.Fprintf(w, "  probe_timeout: %s\n", value(cfg.PPM.ProbeTimeout.String()))
	fmt.Fprintf(w, "  download_timeout: %s\n", value(cfg.PPM.DownloadTimeout.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("build"))
	fmt.Fprintf(w, "  auto_fetch: %s\n", value(fmt.Sprintf("%v", cfg.Build.AutoFetch)))
	fmt.Fprintf(w, "  strict: %s\n", value(fmt.Sprintf("%v", cfg.Build.Strict)))
	if cfg.Build.PostCommand == "" {
		fmt.Fprintf(w, "  post_command: %s\n", SubtitleStyle.Render("(none)"))
	} else {
		fmt.Fprintf(w, "  post_command: %s\n", value(cfg.Build.PostCommand))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", key("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", value(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", value(fmt.Sprintf("%v", cfg.UI.Verbose)))
}

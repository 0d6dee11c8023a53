// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pryzma/pryzma/internal/issue"
	"github.com/pryzma/pryzma/internal/ppm"
)

func newPPMCommand(app *App) *cobra.Command {
	ppmCmd := &cobra.Command{
		Use:   "ppm",
		Short: "Manage installed packages",
		Long: `Manage the packages installed under packages_dir.

Packages are downloaded from the configured mirrors (ppm.mirrors), fastest
responder first, and fall back to a shallow clone of ppm.fallback_repo.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	ppmCmd.AddCommand(&cobra.Command{
		Use:   "install <name>...",
		Short: "Install packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}
			pm := app.Packages(cfg, app.logger)
			for _, name := range args {
				err := pm.Install(cmd.Context(), name)
				switch {
				case errors.Is(err, ppm.ErrAlreadyInstalled):
					fmt.Fprintf(app.stdout, "%s %s is already installed\n", WarningStyle.Render("Skipped"), PathStyle.Render(name))
				case err != nil:
					return issue.NewErrorContext().
						WithOperation("install package").
						WithResource(name).
						WithSuggestion("Check the package name and your network connection").
						WithSuggestion("List or add mirrors under ppm.mirrors in the configuration").
						WithIssue(issue.PackageInstallFailedId).
						Wrap(err).
						BuildError()
				default:
					fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Installed"), PathStyle.Render(name))
				}
			}
			return nil
		},
	})

	ppmCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}
			names, err := app.Packages(cfg, app.logger).List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("No packages installed."))
				return nil
			}
			for _, name := range names {
				fmt.Fprintf(app.stdout, "- %s\n", name)
			}
			return nil
		},
	})

	ppmCmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an installed package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Packages(cfg, app.logger).Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Removed"), PathStyle.Render(args[0]))
			return nil
		},
	})

	return ppmCmd
}

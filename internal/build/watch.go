// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"

	"github.com/pryzma/pryzma/internal/project"
	"github.com/pryzma/pryzma/internal/watch"
)

// Watch builds p once and again after every change to a source file below
// the project root, until ctx is cancelled. report receives each result.
func Watch(ctx context.Context, p *project.Project, opts Options, report func(*Outcome, error)) error {
	logger := opts.logger()
	rebuild := func(ctx context.Context) {
		out, err := Run(ctx, p, opts)
		if report != nil {
			report(out, err)
		}
	}

	w, err := watch.New(watch.Config{
		BaseDir: p.Root,
		Logger:  logger,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info("rebuilding", "changed", changed)
			rebuild(ctx)
			return nil
		},
	})
	if err != nil {
		return err
	}

	rebuild(ctx)
	logger.Info("watching for changes", "dir", p.Root)
	return w.Run(ctx)
}

package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kustomize-upstream/internal/config"
	"github.com/hupe1980/kustomize-upstream/internal/fetch"
	"github.com/hupe1980/kustomize-upstream/internal/logging"
	"github.com/hupe1980/kustomize-upstream/internal/split"
	"github.com/hupe1980/kustomize-upstream/internal/watch"
)

type runOptions struct {
	dryRun   bool
	watch    bool
	debounce time.Duration
}

func runSplit(ctx context.Context, cmd *cobra.Command, configPath string, opts *runOptions) error {
	settings := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	out := cmd.OutOrStdout()

	if !opts.watch {
		_, err := splitOnce(ctx, configPath, settings, opts, out, logger)
		return err
	}

	watchOpts := watch.DefaultOptions()
	watchOpts.Files = []string{configPath}
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logger
	watchOpts.Out = cmd.ErrOrStderr()

	return watch.Run(ctx, watchOpts, func(runCtx context.Context) (*watch.Summary, error) {
		result, err := splitOnce(runCtx, configPath, settings, opts, out, logger)
		if err != nil {
			return nil, err
		}

		return &watch.Summary{
			Source:    result.Source,
			Packages:  len(result.Packages),
			Resources: result.Resources(),
			Files:     len(result.Files),
		}, nil
	})
}

// splitOnce loads the split configuration and runs the split. The
// configuration is re-read on every call so watch mode picks up edits.
func splitOnce(ctx context.Context, configPath string, settings *config.Config, opts *runOptions, out io.Writer, logger *slog.Logger) (*split.Result, error) {
	splitCfg, err := config.LoadSplitConfig(configPath)
	if err != nil {
		return nil, err
	}

	for _, w := range splitCfg.Warnings() {
		logger.Warn(w, slog.String("config", configPath))
	}

	client := fetch.NewClient(
		fetch.WithTimeout(settings.Timeout),
		fetch.WithLogger(logger),
	)

	runner := split.NewRunner(splitCfg,
		split.WithFetcher(client),
		split.WithOutputDir(settings.OutputDir),
		split.WithDryRun(opts.dryRun),
		split.WithOutput(out),
		split.WithLogger(logger),
	)

	return runner.Run(ctx)
}

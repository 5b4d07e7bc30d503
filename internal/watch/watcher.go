package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc performs one split run.
type RunFunc func(ctx context.Context) (*Summary, error)

// Summary is what a run reports back to the watcher.
type Summary struct {
	Source    string
	Packages  int
	Resources int
	Files     int
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the files whose changes trigger a run, typically the split
	// configuration.
	Files []string

	// Debounce is the quiet period before triggering a run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out receives one status line per run.
	Out io.Writer
}

// DefaultOptions returns the default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run performs an initial run, then re-runs on every relevant change until
// ctx is cancelled or SIGINT/SIGTERM is received. Failed runs are reported
// and watching continues.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if len(opts.Files) == 0 {
		return errors.New("no files to watch")
	}

	targets, err := resolveTargets(opts.Files)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range parentDirs(targets) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := &session{opts: opts, runFn: runFn}

	fmt.Fprintf(opts.Out, "watching %d file(s) (debounce=%s)\n", len(targets), opts.Debounce)

	s.run(sigCtx, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		s.run(sigCtx, path)
	})
	debouncer.logger = opts.Logger
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "shutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, targets) {
				continue
			}

			opts.Logger.Debug("change detected",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// session serializes runs triggered by the debouncer.
type session struct {
	opts  Options
	runFn RunFunc
	mu    sync.Mutex
}

func (s *session) run(ctx context.Context, trigger string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	now := time.Now().Format("15:04:05")

	result, err := s.runFn(ctx)
	if err != nil {
		fmt.Fprintf(s.opts.Out, "[%s] %s -> ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(s.opts.Out, "[%s] %s -> OK (%d packages, %d resources, %d files)\n",
		now, trigger, result.Packages, result.Resources, result.Files)
}

func resolveTargets(files []string) (map[string]struct{}, error) {
	targets := make(map[string]struct{}, len(files))

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", f, err)
		}

		targets[filepath.Clean(abs)] = struct{}{}
	}

	return targets, nil
}

func parentDirs(targets map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(targets))
	dirs := make([]string, 0, len(targets))

	for t := range targets {
		dir := filepath.Dir(t)
		if _, ok := seen[dir]; ok {
			continue
		}

		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	return dirs
}

// isRelevant reports whether event changes one of the target files.
func isRelevant(event fsnotify.Event, targets map[string]struct{}) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	_, ok := targets[filepath.Clean(event.Name)]

	return ok
}

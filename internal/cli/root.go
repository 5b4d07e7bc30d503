// Package cli implements the kustomize-upstream command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kustomize-upstream/internal/config"
	"github.com/hupe1980/kustomize-upstream/internal/fetch"
	"github.com/hupe1980/kustomize-upstream/internal/logging"
	"github.com/hupe1980/kustomize-upstream/internal/version"
)

// Process exit codes (sysexits.h).
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUnavailable = 69
	ExitConfig      = 78
)

const configExample = `config.yaml example:

top:
  name: contour
  version: 1.14.0
  sourceTemplate: https://raw.githubusercontent.com/projectcontour/contour/v{{ .top.version }}/examples/render/contour.yaml
defaultPackageSpec:
  template: |
    apiVersion: kustomize.config.k8s.io/v1beta1
    kind: Kustomization
    resources:
    {{- range .package.resources }}
      - {{ .filename }}
    {{- end }}
  pathTemplate: "{{ .top.name }}-{{ .top.version }}/{{ .packageName }}"
  filenameTemplate: kustomization.yaml
  defaultName: main
  resourceSpec:
    pathTemplate: "{{ .top.name }}-{{ .top.version }}/{{ .packageName }}"
    filenameTemplate: "{{ .resource.index | pad3 }}_{{ .resource.kind }}_{{ .resource.name }}.yaml"
splitRules:
  - matcher:
      kind: clusterrole
    packageName: cr
  - matcher:
      kind: clusterrolebinding
    packageName: crb
  - matcher:
      kind: customresourcedefinition
    packageName: crd
`

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error

	// Usage requests the usage text to be printed with the error.
	Usage bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command, runs it with the process arguments, and
// returns the exit code.
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	code := exitCode(err)

	switch code {
	case ExitUnavailable:
		fmt.Fprintln(stderr, "unable to fetch the upstream project")
		fmt.Fprintf(stderr, "error: %v\n", err)
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Usage {
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, cmd.UsageString())
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, configExample)
	}

	return code
}

// exitCode maps an error returned by the command to a process exit code.
func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return ExitUnavailable
	}

	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}

	return ExitFailure
}

// NewRootCommand constructs the kustomize-upstream command.
func NewRootCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "kustomize-upstream <config.yaml>",
		Short: "Split an upstream multi-document manifest into kustomize packages",
		Long: `kustomize-upstream reads a multi-document yaml and splits it to multiple
packages each containing one manifest file per manifest using user defined
split rules. Split rules use the kubernetes manifest parameters kind, name
or namespace as criteria. kustomize-upstream generates as well a
kustomization.yaml per package using templates.

Templates use Go template syntax with the sprig function library, plus
pad3 (zero pad an index to three digits) and toYaml.

` + configExample,
		Version:       version.GetInfo().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &ExitError{
					Code:  ExitConfig,
					Err:   fmt.Errorf("expected exactly one configuration file, got %d argument(s)", len(args)),
					Usage: true,
				}
			}

			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return &ExitError{Code: ExitConfig, Err: err}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("outputDir", cfg.OutputDir),
				slog.Duration("timeout", cfg.Timeout),
			)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd.Context(), cmd, args[0], opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.BoolP("quiet", "q", false, "suppress non-essential log output")
	pf.String("output-dir", ".", "directory relative rendered paths are resolved against")
	pf.Duration("timeout", 0, "timeout for fetching the upstream manifest (0 disables)")

	f := cmd.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the files that would be created without writing them")
	f.BoolVar(&opts.watch, "watch", false, "re-run whenever the configuration file changes")
	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "debounce interval for --watch")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitConfig, Err: err, Usage: true}
	})

	return cmd
}

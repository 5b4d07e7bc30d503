package split

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hupe1980/kustomize-upstream/internal/config"
	"github.com/hupe1980/kustomize-upstream/internal/fetch"
	"github.com/hupe1980/kustomize-upstream/internal/filter"
	"github.com/hupe1980/kustomize-upstream/internal/k8s"
	"github.com/hupe1980/kustomize-upstream/internal/k8s/parser"
	"github.com/hupe1980/kustomize-upstream/internal/output"
	"github.com/hupe1980/kustomize-upstream/internal/render"
)

// Result summarizes a run.
type Result struct {
	// Source is the rendered manifest URL.
	Source string

	// Packages are the packages in creation order.
	Packages []*Package

	// Files are the written (or, in dry-run mode, planned) file paths in
	// write order.
	Files []string

	// Documents is the number of documents in the manifest.
	Documents int

	// Skipped counts documents without a kind.
	Skipped int

	// Dropped counts resources removed by a split rule without a package.
	Dropped int
}

// Resources returns the number of resources assigned to packages.
func (r *Result) Resources() int {
	n := 0
	for _, pkg := range r.Packages {
		n += len(pkg.Resources)
	}

	return n
}

// Runner executes the split pipeline for one configuration.
type Runner struct {
	config    *config.SplitConfig
	fetcher   fetch.Fetcher
	parser    parser.Parser
	renderer  *render.Renderer
	serialize output.SerializeOptions
	outputDir string
	dryRun    bool
	out       io.Writer
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithFetcher replaces the manifest fetcher.
func WithFetcher(f fetch.Fetcher) Option {
	return func(r *Runner) {
		r.fetcher = f
	}
}

// WithOutputDir sets the directory relative rendered paths are resolved
// against.
func WithOutputDir(dir string) Option {
	return func(r *Runner) {
		r.outputDir = dir
	}
}

// WithDryRun announces files without writing them.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithOutput sets the writer that receives one line per written file.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithLogger sets a logger for the Runner.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner for cfg.
func NewRunner(cfg *config.SplitConfig, opts ...Option) *Runner {
	r := &Runner{
		config:    cfg,
		fetcher:   fetch.NewClient(),
		parser:    parser.NewParser(),
		renderer:  render.New(),
		serialize: output.DefaultSerializeOptions(),
		outputDir: ".",
		out:       os.Stdout,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the pipeline. The first error aborts the run; files written
// before it are left in place.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	source, err := r.renderer.Render(render.NameSource, r.config.Top.SourceTemplate, render.SourceContext(r.config.Top))
	if err != nil {
		return nil, err
	}

	cfg := r.config.WithSource(source)
	result := &Result{Source: source}

	r.logger.Info("fetching upstream manifest", slog.String("url", source))

	body, err := r.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	docs, err := r.parser.Parse(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	result.Documents = len(docs)

	classifier := filter.NewClassifier(cfg.SplitRules, cfg.DefaultPackageSpec.DefaultName)
	packages := NewAccumulator()

	for _, doc := range docs {
		res, err := doc.Resource()
		if err != nil {
			return nil, fmt.Errorf("reading manifest: %w", err)
		}

		if res == nil {
			result.Skipped++
			r.logger.Debug("skipping document without kind", slog.Int("index", doc.Index))

			continue
		}

		cls := classifier.Classify(res)
		if cls.Dropped() {
			result.Dropped++
			r.logger.Debug("dropping resource",
				slog.String("resource", res.QualifiedName()),
				slog.Int("rule", cls.Rule),
			)

			continue
		}

		if err := r.writeResource(cfg, cls.PackageName, res, packages, result); err != nil {
			return nil, err
		}
	}

	for _, pkg := range packages.Packages() {
		if err := r.writePackage(cfg, pkg, result); err != nil {
			return nil, err
		}
	}

	result.Packages = packages.Packages()

	r.logger.Info("split complete",
		slog.Int("documents", result.Documents),
		slog.Int("resources", result.Resources()),
		slog.Int("packages", len(result.Packages)),
		slog.Int("skipped", result.Skipped),
		slog.Int("dropped", result.Dropped),
	)

	return result, nil
}

func (r *Runner) writeResource(cfg *config.SplitConfig, packageName string, res *k8s.Resource, packages *Accumulator, result *Result) error {
	spec := cfg.DefaultPackageSpec.ResourceSpec
	data := render.ResourceContext(cfg.Top, packageName, res)

	filename, err := r.renderer.Render(render.NameResourceFilename, spec.FilenameTemplate, data)
	if err != nil {
		return err
	}

	path, err := r.renderer.Render(render.NameResourcePath, spec.PathTemplate, data)
	if err != nil {
		return err
	}

	if err := res.Place(filename, path); err != nil {
		return err
	}

	packages.Assign(res, packageName)

	r.logger.Debug("resource assigned",
		slog.String("resource", res.QualifiedName()),
		slog.String("apiVersion", res.APIVersion()),
		slog.String("namespace", res.NamespaceOrEmpty()),
		slog.String("package", packageName),
	)

	content, err := output.SerializeDocument(res.Object.Object, r.serialize)
	if err != nil {
		return fmt.Errorf("%s: %w", res.QualifiedName(), err)
	}

	return r.write(r.location(path, filename), content, result)
}

func (r *Runner) writePackage(cfg *config.SplitConfig, pkg *Package, result *Result) error {
	spec := cfg.DefaultPackageSpec
	location := render.PackageLocationContext(cfg.Top, pkg.Name)

	path, err := r.renderer.Render(render.NamePackagePath, spec.PathTemplate, location)
	if err != nil {
		return err
	}

	filename, err := r.renderer.Render(render.NamePackageFilename, spec.FilenameTemplate, location)
	if err != nil {
		return err
	}

	body, err := r.renderer.Render(render.NamePackageDescriptor, spec.Template, render.DescriptorContext(cfg.Top, pkg.Name, pkg.Resources))
	if err != nil {
		return err
	}

	return r.write(r.location(path, filename), []byte(body), result)
}

// location resolves a rendered path and filename. Absolute paths are used
// as rendered; relative ones are resolved against the output directory.
func (r *Runner) location(path, filename string) string {
	if filepath.IsAbs(path) {
		return filepath.Join(path, filename)
	}

	return filepath.Join(r.outputDir, path, filename)
}

func (r *Runner) write(path string, data []byte, result *Result) error {
	result.Files = append(result.Files, path)

	if r.dryRun {
		_, err := fmt.Fprintf(r.out, "would create file: %s\n", path)
		return err
	}

	if _, err := fmt.Fprintf(r.out, "create file: %s\n", path); err != nil {
		return err
	}

	return output.NewFileWriter(path, output.WithLogger(r.logger)).Write(data)
}

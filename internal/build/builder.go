package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/deps"
	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/feature"
	"github.com/aem-design/compose/internal/merge"
	"github.com/aem-design/compose/internal/pipeline"
)

const (
	// ConfigFileName is the composed webpack configuration written by Build.
	ConfigFileName = "webpack.config.json"

	// ManifestFileName describes the composed configuration.
	ManifestFileName = "manifest.json"
)

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Status is the terminal status of the composition.
	Status pipeline.Status

	// Skipped lists features whose dependencies were already present.
	Skipped []feature.ID

	// ConfigPath is the written webpack configuration. Empty unless Completed.
	ConfigPath string

	// ManifestPath is the written manifest. Empty unless Completed.
	ManifestPath string

	// Hash is the SHA256 of the written webpack configuration.
	Hash string

	// Err is the abort cause when Status is Aborted.
	Err error
}

// Manifest describes one composed configuration.
type Manifest struct {
	Project   string       `json:"project"`
	Mode      config.Mode  `json:"mode"`
	Features  []feature.ID `json:"features"`
	Skipped   []feature.ID `json:"skipped,omitempty"`
	Hash      string       `json:"hash"`
	Config    string       `json:"config"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Options configures the builder.
type Options struct {
	// Env holds the environment flags. An empty Project falls back to compose.json.
	Env config.EnvOptions

	// Features overrides the feature list from compose.json.
	Features []string

	// SkipInstall reports every dependency as present.
	SkipInstall bool

	// Logger is used by the pipeline and installers. Default: slog.Default().
	Logger *slog.Logger

	// Recorder receives pipeline metrics.
	Recorder pipeline.Recorder

	// Resolver overrides the built-in feature registry.
	Resolver pipeline.Resolver

	// Installer overrides the npm and binary installers.
	Installer deps.Installer

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder composes and writes the webpack configuration of one project.
type Builder struct {
	config  *config.Config
	options Options

	// mu serializes runs; package managers share lock files in the project.
	mu sync.Mutex
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if options.Env.Project == "" {
		options.Env.Project = cfg.Project
	}
	if len(options.Features) == 0 {
		options.Features = cfg.Features
	}
	if !options.SkipInstall && cfg.Install.Skip {
		options.SkipInstall = true
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Builder{
		config:  cfg,
		options: options,
	}
}

// Composition is the outcome of Compose together with the input it ran on.
type Composition struct {
	Input  pipeline.Input
	Result pipeline.Result
}

// Compose runs the pipeline without writing anything. The error is set only
// when the project itself is misconfigured; feature failures are reported
// through Result.Status.
func (b *Builder) Compose(ctx context.Context) (*Composition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.compose(ctx)
}

func (b *Builder) compose(ctx context.Context) (*Composition, error) {
	in, err := b.input()
	if err != nil {
		return nil, err
	}

	b.progress("Composing features...")
	p := pipeline.New(b.resolver(), b.installer(), b.pipelineOptions()...)
	res := p.Run(ctx, in)

	if res.Status == pipeline.Completed {
		project, _ := b.config.ProjectSet().Project(in.Env.Project)
		res.Config = merge.Merge(res.Config, hostProps(in, project), nil)
	}

	return &Composition{Input: in, Result: res}, nil
}

// Build composes the configuration and, when the composition completes,
// writes it and its manifest to the output directory.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()

	comp, err := b.compose(ctx)
	if err != nil {
		return nil, err
	}

	res := comp.Result
	result := &Result{
		Status:  res.Status,
		Skipped: res.Skipped,
		Err:     res.Err,
	}
	if res.Status != pipeline.Completed {
		result.Duration = time.Since(start)
		return result, nil
	}

	outputDir := b.config.OutputPath()
	if comp.Input.Env.Clean {
		b.progress("Cleaning output directory...")
		if err := os.RemoveAll(outputDir); err != nil {
			return nil, errors.New("E142").Wrap(err)
		}
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.New("E142").Wrap(err)
	}

	b.progress("Writing " + ConfigFileName + "...")
	configPath := filepath.Join(outputDir, ConfigFileName)
	if err := writeJSON(configPath, res.Config); err != nil {
		return nil, errors.New("E142").Wrap(err)
	}
	hash, err := hashFile(configPath)
	if err != nil {
		return nil, errors.New("E142").Wrap(err)
	}

	b.progress("Writing manifest...")
	manifestPath := filepath.Join(outputDir, ManifestFileName)
	manifest := Manifest{
		Project:   comp.Input.Env.Project,
		Mode:      comp.Input.Env.Mode,
		Features:  comp.Input.Features,
		Skipped:   res.Skipped,
		Hash:      hash,
		Config:    ConfigFileName,
		CreatedAt: time.Now().UTC(),
	}
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, errors.New("E142").Wrap(err)
	}

	result.ConfigPath = configPath
	result.ManifestPath = manifestPath
	result.Hash = hash
	result.Duration = time.Since(start)
	return result, nil
}

// input assembles the pipeline input from compose.json and the options.
func (b *Builder) input() (pipeline.Input, error) {
	env, err := config.SetupEnvironment(b.options.Env)
	if err != nil {
		return pipeline.Input{}, err
	}

	reg, err := b.config.Registry()
	if err != nil {
		return pipeline.Input{}, err
	}
	paths, err := reg.RuntimePaths(env.Project)
	if err != nil {
		return pipeline.Input{}, errors.New("E220").Wrap(err)
	}

	cfgs, err := b.config.Configurables()
	if err != nil {
		return pipeline.Input{}, err
	}

	table, err := b.config.Strategies()
	if err != nil {
		return pipeline.Input{}, err
	}

	base, err := config.LoadBase(b.config.BasePath())
	if err != nil {
		return pipeline.Input{}, err
	}

	return pipeline.Input{
		Env:           env,
		Features:      feature.ParseIDs(b.options.Features),
		Paths:         paths,
		Base:          base,
		Strategies:    table,
		Registry:      reg,
		Configurables: cfgs,
		Tools:         b.tools(),
	}, nil
}

func (b *Builder) resolver() pipeline.Resolver {
	if b.options.Resolver != nil {
		return b.options.Resolver
	}
	return feature.NewRegistry()
}

func (b *Builder) tools() *deps.Binary {
	return deps.NewBinary(b.config.BinDir(), b.options.Logger)
}

func (b *Builder) installer() deps.Installer {
	switch {
	case b.options.Installer != nil:
		return b.options.Installer
	case b.options.SkipInstall:
		return deps.Noop
	}

	dir := b.config.Dir()
	if dir == "" {
		dir = "."
	}
	return deps.Router{
		Packages: deps.NewNPM(dir, b.config.Install.PackageManager, b.options.Logger),
		Tools:    b.tools(),
	}
}

func (b *Builder) pipelineOptions() []pipeline.Option {
	opts := []pipeline.Option{pipeline.WithLogger(b.options.Logger)}
	if b.options.Recorder != nil {
		opts = append(opts, pipeline.WithRecorder(b.options.Recorder))
	}
	if b.options.OnProgress != nil {
		opts = append(opts, pipeline.OnFeature(func(e pipeline.FeatureEvent) {
			b.progress("Processed " + string(e.Feature) + " (" + e.Outcome.String() + ")")
		}))
	}
	return opts
}

// hostProps returns the host-owned part of the configuration: the
// properties features may not set.
func hostProps(in pipeline.Input, project config.Project) merge.Config {
	entries := map[string]any{}
	for _, name := range slices.Sorted(maps.Keys(project.Entries)) {
		entries[name] = filepath.Join(in.Paths.Source, project.Entries[name])
	}

	output := in.Paths.Public
	if in.Paths.Clientlibs != "" && project.OutputName != "" {
		output = filepath.Join(in.Paths.Clientlibs, project.OutputName)
	}

	props := merge.Config{
		"context": in.Paths.Source,
		"entry":   entries,
		"mode":    string(in.Env.Mode),
		"name":    in.Env.Project,
		"stats":   "minimal",
	}
	merge.Set(props, "output.path", output)
	merge.Set(props, "output.publicPath", in.Paths.PublicAEM)
	merge.Set(props, "resolve.modules", []any{"node_modules", in.Paths.Source})

	if in.Env.Development() {
		props["devtool"] = "eval-cheap-module-source-map"
	} else {
		props["devtool"] = false
	}
	if in.Env.HMR {
		merge.Set(props, "devServer.hot", true)
	}
	return props
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

// hashFile returns the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputPath())
}

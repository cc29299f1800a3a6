// Package pipeline composes a build configuration from an ordered list of
// features.
//
// Each feature is resolved, its dependencies are installed and its
// fragment is merged into the accumulated configuration, strictly one
// feature at a time. A run ends Completed, RestartNeeded or Aborted.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/deps"
	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/feature"
	"github.com/aem-design/compose/internal/merge"
)

const tracerName = "github.com/aem-design/compose/internal/pipeline"

// RestartMessage tells the operator to re-run after a RestartNeeded result.
const RestartMessage = "It appears some dependencies were just installed, please re-run the same command again to continue!"

// IgnoredProps are configuration paths owned by the host build. They are
// removed from every fragment before it is merged.
var IgnoredProps = []string{
	"context",
	"devtool",
	"devServer.contentBase",
	"entry",
	"mode",
	"name",
	"optimization.splitChunks.cacheGroups.vue",
	"performance",
	"performance.assetFilter",
	"performance.hints",
	"resolve.modules",
	"stats",
}

// Resolver turns a feature ID into a feature instance.
type Resolver interface {
	Resolve(id feature.ID, ctx feature.Context) (feature.Feature, error)
}

// Recorder receives per-feature and per-run measurements.
type Recorder interface {
	ObserveFeature(feature, outcome string, d time.Duration)
	ObserveRun(status string, d time.Duration)
}

// Input is everything one run reads.
type Input struct {
	// Env holds the build-mode flags.
	Env config.Environment

	// Features are processed in this order. Duplicates are processed twice.
	Features []feature.ID

	// Paths are handed to every feature.
	Paths config.Paths

	// Base is the starting configuration. It is not modified.
	Base merge.Config

	// Strategies is the merge table. Nil means merge.DefaultTable().
	Strategies merge.Table

	// Registry and Configurables are passed through to features.
	Registry      *config.Registry
	Configurables *config.Configurables

	// Tools locates installed tool binaries for features that need them.
	Tools feature.ToolLocator
}

// FeatureEvent describes one processed feature.
type FeatureEvent struct {
	Feature  feature.ID
	Index    int
	Total    int
	Outcome  deps.Outcome
	Duration time.Duration
}

// Pipeline runs the composition loop. The zero value is not usable; use New.
type Pipeline struct {
	resolver  Resolver
	installer deps.Installer
	logger    *slog.Logger
	recorder  Recorder
	tracer    trace.Tracer
	onFeature func(FeatureEvent)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithTracer sets the tracer. Default: the global provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

// OnFeature registers a callback invoked after each feature is merged.
func OnFeature(fn func(FeatureEvent)) Option {
	return func(p *Pipeline) {
		p.onFeature = fn
	}
}

// New creates a pipeline that resolves features with resolver and installs
// their dependencies with installer.
func New(resolver Resolver, installer deps.Installer, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver:  resolver,
		installer: installer,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}
	return p
}

// Run composes in.Features over in.Base.
//
// The aggregate install outcome is sticky: once any feature reports
// RestartRequired the run ends RestartNeeded, but every remaining feature
// is still processed. A resolution or installation error stops the run at
// once. Cancellation of ctx is honored between features; an install that
// has started is not interrupted.
func (p *Pipeline) Run(ctx context.Context, in Input) Result {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "compose.run", trace.WithAttributes(
		attribute.String("compose.project", in.Env.Project),
		attribute.Int("compose.features", len(in.Features)),
	))
	defer span.End()

	res := p.run(ctx, in)

	span.SetAttributes(attribute.String("compose.status", res.Status.String()))
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if p.recorder != nil {
		p.recorder.ObserveRun(res.Status.String(), time.Since(start))
	}
	return res
}

func (p *Pipeline) run(ctx context.Context, in Input) Result {
	table := in.Strategies
	if table == nil {
		table = merge.DefaultTable()
	}

	acc := merge.Clone(in.Base)
	if acc == nil {
		acc = merge.Config{}
	}
	aggregate := deps.Installed
	var skipped []feature.ID

	for i, id := range in.Features {
		if err := ctx.Err(); err != nil {
			return p.abort(id, err)
		}

		outcome, next, err := p.step(ctx, in, id, acc, table, i)
		if err != nil {
			return p.abort(id, err)
		}
		acc = next

		if aggregate != deps.RestartRequired {
			aggregate = outcome
		}
		if outcome == deps.Skipped {
			skipped = append(skipped, id)
		}
	}

	if len(skipped) > 0 {
		names := make([]string, len(skipped))
		for i, id := range skipped {
			names[i] = string(id)
		}
		p.logger.Info("No required dependencies are missing for: " + strings.Join(names, ", "))
	}

	if aggregate == deps.RestartRequired {
		p.logger.Info("restart required", "skipped", skipped)
		return Result{Status: RestartNeeded, Skipped: skipped}
	}

	return Result{Status: Completed, Config: acc, Skipped: skipped}
}

// step processes one feature and returns its install outcome and the new
// accumulator. acc itself is never modified.
func (p *Pipeline) step(ctx context.Context, in Input, id feature.ID, acc merge.Config, table merge.Table, index int) (deps.Outcome, merge.Config, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "compose.feature", trace.WithAttributes(
		attribute.String("compose.feature", string(id)),
		attribute.Int("compose.index", index),
	))
	defer span.End()

	inst, err := p.resolver.Resolve(id, feature.Context{
		Env:           in.Env,
		Paths:         in.Paths,
		Config:        merge.Clone(acc),
		Registry:      in.Registry,
		Configurables: in.Configurables,
		Tools:         in.Tools,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}

	required := inst.Dependencies()
	// An install that has started runs to completion; cancellation is
	// honored before the next feature.
	outcome, err := p.installer.Install(context.WithoutCancel(ctx), required)
	if err != nil {
		err = errors.FromError(err, "E210")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, nil, err
	}

	fragment := inst.Fragment()
	for _, path := range IgnoredProps {
		if _, ok := merge.Get(fragment, path); ok {
			p.logger.Warn("ignoring host-owned configuration", "feature", id, "path", path)
		}
	}
	next := merge.Merge(acc, merge.Strip(fragment, IgnoredProps), table)

	elapsed := time.Since(start)
	span.SetAttributes(
		attribute.String("compose.outcome", outcome.String()),
		attribute.Int("compose.dependencies", len(required)),
	)
	p.logger.Debug("feature processed",
		"feature", id,
		"outcome", outcome.String(),
		"dependencies", len(required),
		"duration", elapsed,
	)
	if p.recorder != nil {
		p.recorder.ObserveFeature(string(id), outcome.String(), elapsed)
	}
	if p.onFeature != nil {
		p.onFeature(FeatureEvent{
			Feature:  id,
			Index:    index,
			Total:    len(in.Features),
			Outcome:  outcome,
			Duration: elapsed,
		})
	}

	return outcome, next, nil
}

func (p *Pipeline) abort(id feature.ID, err error) Result {
	p.logger.Error("Failed to install dependencies", "feature", id, "error", err)
	return Result{Status: Aborted, Feature: id, Err: err}
}

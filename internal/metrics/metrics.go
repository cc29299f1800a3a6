// Package metrics exposes Prometheus collectors for composition runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "compose").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "compose",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors for composition runs.
type Metrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	featuresTotal   *prometheus.CounterVec
	featureDuration *prometheus.HistogramVec
}

// New registers the collectors with the configured registry.
//
// Metrics collected:
//   - compose_runs_total: Counter of pipeline runs by status
//   - compose_run_duration_seconds: Histogram of pipeline run duration
//   - compose_feature_installs_total: Counter of feature installs by feature and outcome
//   - compose_feature_duration_seconds: Histogram of per-feature duration
func New(opts ...Option) *Metrics {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "runs_total",
			Help:        "Total number of composition runs by terminal status",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),

		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "run_duration_seconds",
			Help:        "Composition run duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		featuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "feature_installs_total",
			Help:        "Total number of feature dependency installs by outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"feature", "outcome"}),

		featureDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "feature_duration_seconds",
			Help:        "Time spent resolving, installing and merging one feature",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"feature"}),
	}
}

// ObserveFeature records one processed feature.
func (m *Metrics) ObserveFeature(feature, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.featuresTotal.WithLabelValues(feature, outcome).Inc()
	m.featureDuration.WithLabelValues(feature).Observe(d.Seconds())
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(d.Seconds())
}

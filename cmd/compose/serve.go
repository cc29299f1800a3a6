package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aem-design/compose/internal/build"
	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/dev"
	"github.com/aem-design/compose/internal/feature"
	"github.com/aem-design/compose/internal/metrics"
)

func serveCmd() *cobra.Command {
	var (
		flags envFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the inspection server",
		Long: `Start an HTTP server that composes the configuration on request.

Endpoints:
  GET /config    Compose and return the configuration
  GET /features  List available and configured features
  GET /events    WebSocket stream of recomposition results (with --watch)
  GET /metrics   Prometheus metrics
  GET /healthz   Liveness check

With --watch, changes to compose.json, the base configuration,
package.json or tsconfig.json trigger a recomposition.

Examples:
  compose serve
  compose serve --addr=:4100 --watch --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags, addr)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&addr, "addr", dev.DefaultAddr, "Address to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, flags envFlags, addr string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := flags.options()
	opts.Recorder = metrics.New(metrics.WithRegistry(reg))
	builder := build.New(cfg, opts)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	printBanner(out)
	fmt.Fprintln(out)
	info(out, "Project:  %s", cfg.Dir())
	info(out, "Features: %v", cfg.Features)
	info(out, "Server:   http://%s", addr)
	fmt.Fprintln(out)

	srv := dev.NewServer(dev.ServerOptions{
		Config:   cfg,
		Composer: builder,
		Features: feature.NewRegistry().IDs(),
		Gatherer: reg,
		Logger:   slog.Default(),
		Addr:     addr,
		Watch:    flags.watch,
		OnCompose: func(ev dev.Event) {
			switch ev.Type {
			case dev.EventCompleted:
				success(out, "Recomposed after change to %s", ev.Trigger)
			case dev.EventRestart:
				warn(out, "Dependencies were installed after change to %s", ev.Trigger)
			default:
				errorMsg(cmd.ErrOrStderr(), "Composition failed: %s", ev.Error)
			}
		},
	})

	if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}


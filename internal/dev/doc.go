// Package dev provides the inspection server used while developing a
// project's feature set.
//
// The server exposes:
//   - GET /healthz: liveness
//   - GET /features: available and configured feature IDs
//   - GET /config: runs the pipeline and returns the composed configuration
//   - GET /events: WebSocket stream of recomposition events in watch mode
//   - GET /metrics: Prometheus metrics
//
// In watch mode an fsnotify Watcher follows compose.json, the base
// configuration, package.json and tsconfig.json, and every change triggers
// a recomposition whose outcome is pushed to /events clients.
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{
//	    Config:   cfg,
//	    Composer: build.New(cfg, build.Options{}),
//	    Features: feature.NewRegistry().IDs(),
//	    Watch:    true,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package dev

package dev

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aem-design/compose/internal/build"
	"github.com/aem-design/compose/internal/config"
	"github.com/aem-design/compose/internal/errors"
	"github.com/aem-design/compose/internal/feature"
	"github.com/aem-design/compose/internal/merge"
	"github.com/aem-design/compose/internal/pipeline"
)

// DefaultAddr is the default listen address of the inspection server.
const DefaultAddr = "localhost:4100"

// Composer runs one composition. *build.Builder implements it.
type Composer interface {
	Compose(ctx context.Context) (*build.Composition, error)
}

// ServerOptions configures the inspection server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Composer runs the pipeline for /config and on file changes.
	Composer Composer

	// Features lists the feature IDs the registry can resolve.
	Features []feature.ID

	// Gatherer backs /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Logger receives request and recomposition logs. Default: slog.Default().
	Logger *slog.Logger

	// Addr is the listen address. Default: DefaultAddr.
	Addr string

	// Watch recomposes when project files change and pushes the result to
	// /events clients.
	Watch bool

	// OnCompose is called after every recomposition triggered by a change.
	OnCompose func(Event)
}

// Server is the inspection server.
type Server struct {
	options    ServerOptions
	events     *EventHub
	watcher    *Watcher
	httpServer *http.Server
	mu         sync.Mutex
	running    bool
}

// NewServer creates a new inspection server.
func NewServer(options ServerOptions) *Server {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Gatherer == nil {
		options.Gatherer = prometheus.DefaultGatherer
	}
	if options.Addr == "" {
		options.Addr = DefaultAddr
	}

	s := &Server{
		options: options,
		events:  NewEventHub(),
	}
	if options.Watch && options.Config != nil {
		s.watcher = NewWatcher(WatcherConfig{
			Paths: CollectWatchPaths(options.Config),
		})
	}
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/features", s.handleFeatures)
	r.Get("/config", s.handleConfig)
	r.Get("/events", s.events.HandleWebSocket)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.options.Gatherer, promhttp.HandlerOpts{}))
	return r
}

// Start serves until ctx is canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:              s.options.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	if s.watcher != nil {
		s.watcher.OnChange(func(c Change) {
			s.Recompose(ctx, c.Path)
		})
		go func() {
			if err := s.watcher.Start(ctx); err != nil && ctx.Err() == nil {
				s.options.Logger.Warn("file watcher stopped", "error", err)
			}
		}()
	}

	s.options.Logger.Info("inspection server running", "addr", "http://"+s.options.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.events.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// Recompose runs the pipeline and broadcasts the outcome to /events clients.
func (s *Server) Recompose(ctx context.Context, trigger string) Event {
	comp, err := s.options.Composer.Compose(ctx)

	ev := eventFor(comp, err)
	ev.Trigger = trigger
	s.options.Logger.Info("recomposed", "trigger", trigger, "status", ev.Type)

	s.events.Broadcast(ev)
	if s.options.OnCompose != nil {
		s.options.OnCompose(ev)
	}
	return ev
}

func eventFor(comp *build.Composition, err error) Event {
	if err != nil {
		return Event{Type: EventError, Error: err.Error()}
	}
	res := comp.Result
	switch res.Status {
	case pipeline.Completed:
		return Event{Type: EventCompleted, Skipped: res.Skipped}
	case pipeline.RestartNeeded:
		return Event{Type: EventRestart, Skipped: res.Skipped}
	default:
		return Event{Type: EventAborted, Feature: res.Feature, Error: errString(res.Err)}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

type featuresResponse struct {
	Available  []feature.ID `json:"available"`
	Configured []feature.ID `json:"configured"`
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	resp := featuresResponse{
		Available:  s.options.Features,
		Configured: []feature.ID{},
	}
	if s.options.Config != nil {
		resp.Configured = feature.ParseIDs(s.options.Config.Features)
	}
	writeJSON(w, http.StatusOK, resp)
}

type configResponse struct {
	Status  string       `json:"status"`
	Skipped []feature.ID `json:"skipped,omitempty"`
	Feature feature.ID   `json:"feature,omitempty"`
	Config  merge.Config `json:"config,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	comp, err := s.options.Composer.Compose(r.Context())
	if err != nil {
		msg := err.Error()
		var ce *errors.ComposeError
		if !errors.As(err, &ce) {
			msg = "E120: " + msg
		}
		writeJSON(w, http.StatusInternalServerError, configResponse{
			Status: "error",
			Error:  msg,
		})
		return
	}

	res := comp.Result
	resp := configResponse{
		Status:  res.Status.String(),
		Skipped: res.Skipped,
	}

	status := http.StatusOK
	switch res.Status {
	case pipeline.Completed:
		resp.Config = res.Config
	case pipeline.RestartNeeded:
		status = http.StatusConflict
		resp.Error = pipeline.RestartMessage
	case pipeline.Aborted:
		status = http.StatusUnprocessableEntity
		resp.Feature = res.Feature
		resp.Error = errString(res.Err)
	}
	writeJSON(w, status, resp)
}

// logRequests logs one record per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.options.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/todoflow-labs/todo-service/internal/config"
	"github.com/todoflow-labs/todo-service/internal/events"
	"github.com/todoflow-labs/todo-service/internal/handler"
	"github.com/todoflow-labs/todo-service/internal/logging"
	"github.com/todoflow-labs/todo-service/internal/metrics"
	"github.com/todoflow-labs/todo-service/internal/store"
)

const shutdownTimeout = 10 * time.Second

func Run() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize logger and metrics
	logger := logging.New(cfg.LogLevel).With().Str("service", "todo-api").Logger()
	if metricsSrv := metrics.Serve(cfg.MetricsAddr, &logger); metricsSrv != nil {
		logger.Info().Msgf("metrics server listening on %s", cfg.MetricsAddr)
		defer metricsSrv.Close()
	}

	// Connect to NATS when configured
	var pub events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		js, err := events.Connect(cfg.NATSURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to set up event publisher")
		}
		pub = js
		logger.Info().Str("subject", events.Subject).Msg("publishing item events to NATS")
	} else {
		logger.Info().Msg("NATS_URL not set, item events disabled")
	}
	defer pub.Close()

	st := store.New()
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewRouter(st, pub, &logger, cfg.CORSOrigins),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("todo-api listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// NewRouter wires middleware, the todo endpoints under /api/todos and the
// health probes.
func NewRouter(st *store.Store, pub events.Publisher, logger *logging.Logger, origins []string) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Routes
	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(pub))
	r.Mount("/api/todos", handler.Routes(st, pub, logger))

	// Error handlers
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "route not found", http.StatusNotFound)
		logger.Warn().Str("path", r.URL.Path).Msg("404 not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		logger.Warn().Str("path", r.URL.Path).Msg("405 method not allowed")
	})

	return r
}

// Logs one line per request once the response is written.
func requestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func readyz(pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !pub.Ready() {
			http.Error(w, "event publisher not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	}
}

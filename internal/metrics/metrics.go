// Package metrics exposes Prometheus counters for the todo API.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/todoflow-labs/todo-service/internal/logging"
)

// Outcome labels.
const (
	Success  = "success"
	Invalid  = "invalid"
	NotFound = "not_found"
	Error    = "error"
)

var (
	// TodoRequests counts handled API calls by operation and outcome.
	TodoRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todo_requests_total",
		Help: "Todo API requests by operation and outcome.",
	}, []string{"op", "outcome"})

	// EventsPublished counts lifecycle events by type and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todo_events_published_total",
		Help: "Item lifecycle events handed to the publisher.",
	}, []string{"type", "outcome"})

	// StoredItems tracks the current number of items in the store.
	StoredItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "todo_items",
		Help: "Items currently held in memory.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts the metrics listener on addr in the background and returns the
// server so the caller can shut it down. An empty addr disables it.
func Serve(addr string, logger *logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

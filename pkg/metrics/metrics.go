// Package metrics serves the Prometheus registry of the pipeline.
// All metrics are defined in their respective packages (jikan, ratelimit,
// extract, transform, load, handoff, dag) to keep modularity and avoid
// circular dependencies.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/animelist-etl/pkg/logging"
)

// Server exposes /metrics and /health on a listen address.
type Server struct {
	server   *http.Server
	listener net.Listener
	logger   zerolog.Logger
}

// NewMux returns the handler tree of the metrics server.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// Start listens on addr and serves in the background.
func Start(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	s := &Server{
		server: &http.Server{
			Handler:           NewMux(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: listener,
		logger:   logging.NewLogger("metrics"),
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("Serving metrics")
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Metrics Documentation
//
// Request Metrics (pkg/jikan):
//   - animelist_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - animelist_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - animelist_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Pacing Metrics (pkg/ratelimit):
//   - animelist_pacer_wait_seconds (Histogram): Time spent waiting before a request
//   - animelist_pacer_throttles_total (Counter): Requests that had to wait
//
// Stage Metrics (pkg/extract, pkg/transform, pkg/load):
//   - animelist_pages_fetched_total (Counter): Season pages fetched
//   - animelist_rows_extracted_total (Counter): Records accumulated
//   - animelist_rows_transformed_total (Counter): Cleaned records produced
//   - animelist_rows_loaded_total (Counter): Rows committed to the sink
//   - animelist_load_chunks_total{result} (Counter): Insert chunks by result (committed, error)
//
// Handoff Metrics (pkg/handoff):
//   - animelist_handoff_bytes{key} (Gauge): Size of the last value pushed per name
//   - animelist_handoff_errors_total{operation} (Counter): Failed push or pull calls
//
// Orchestrator Metrics (pkg/dag):
//   - animelist_task_attempts_total{task, result} (Counter): Task attempts by result
//   - animelist_task_duration_seconds{task} (Histogram): Task duration including retries
//
// Example Prometheus Queries:
//
//   # Jikan error rate
//   rate(animelist_errors_total[5m])
//
//   # Rows lost between extraction and load (placeholder excluded)
//   animelist_rows_extracted_total - animelist_rows_loaded_total
//
//   # Retried tasks
//   sum by (task) (animelist_task_attempts_total{result="failure"})

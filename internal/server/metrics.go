package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/privcal/calagent/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is the default listen address for the scrape endpoint.
	DefaultMetricsAddr = ":9090"

	// DefaultMetricsReadTimeout bounds header reads on the metrics listener.
	DefaultMetricsReadTimeout = 10 * time.Second

	// DefaultMetricsWriteTimeout bounds scrape responses.
	DefaultMetricsWriteTimeout = 10 * time.Second

	// DefaultMetricsIdleTimeout closes idle scrape connections.
	DefaultMetricsIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the graceful shutdown window shared with
	// the MCP listener.
	DefaultShutdownTimeout = 30 * time.Second
)

// MetricsServerConfig holds configuration for the metrics server.
type MetricsServerConfig struct {
	// Addr is the listen address, e.g. ":9090".
	Addr string

	// Enabled determines whether the metrics server should be started.
	Enabled bool

	// InstrumentationProvider must be enabled; it owns the Prometheus
	// registration behind the /metrics handler.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves the Prometheus scrape endpoint on its own
// listener, keeping operational data off the MCP port.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
}

// NewMetricsServer validates the configuration and returns a server
// exposing /metrics for scraping.
func NewMetricsServer(cfg MetricsServerConfig) (*MetricsServer, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultMetricsAddr
	}

	if cfg.InstrumentationProvider == nil {
		return nil, fmt.Errorf("instrumentation provider is required for metrics server")
	}

	if !cfg.InstrumentationProvider.Enabled() {
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	}

	return &MetricsServer{
		addr: cfg.Addr,
	}, nil
}

// Start listens and blocks until Shutdown or a listener error. Run it
// in a goroutine for non-blocking use.
func (s *MetricsServer) Start() error {
	mux := http.NewServeMux()

	// The OpenTelemetry prometheus exporter registers into the global
	// Prometheus registry, which promhttp.Handler() exposes.
	mux.Handle("/metrics", promhttp.Handler())

	// The scrape listener gets its own trivial liveness endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultMetricsReadTimeout,
		WriteTimeout:      DefaultMetricsWriteTimeout,
		IdleTimeout:       DefaultMetricsIdleTimeout,
	}

	slog.Info("starting metrics server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains the metrics listener. Safe to call before Start.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		slog.Info("shutting down metrics server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}

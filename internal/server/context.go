package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/privcal/calagent/internal/agent"
	"github.com/privcal/calagent/internal/bulk"
	"github.com/privcal/calagent/internal/config"
	"github.com/privcal/calagent/internal/instrumentation"
	"github.com/privcal/calagent/internal/llm"
	"github.com/privcal/calagent/internal/logging"
	"github.com/privcal/calagent/internal/proxy"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	agent    *agent.Agent
	cfg      config.Config
	logger   *slog.Logger
	readOnly bool

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context, wiring the proxy client,
// bulk executor, generation service, and agent from configuration.
func NewServerContext(ctx context.Context, cfg config.Config, logger *slog.Logger) (*ServerContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	// The credential itself never reaches the log stream.
	logger.Debug("configuring proxy client",
		slog.String("proxy_url", cfg.ProxyURL),
		slog.String("api_key", logging.SanitizeToken(cfg.ProxyAPIKey)))

	proxyClient := proxy.NewClient(cfg, logger)
	executor := bulk.NewExecutor(proxyClient, cfg.BulkConcurrency, logger)
	provider := llm.NewOpenAIProvider(cfg, logger)
	llmService := llm.NewService(provider, logger)

	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		agent:  agent.New(proxyClient, executor, llmService, cfg, logger),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// NewServerContextWithAgent creates a server context around an existing
// agent. Used by tests to inject fakes.
func NewServerContextWithAgent(ctx context.Context, a *agent.Agent, cfg config.Config, logger *slog.Logger) *ServerContext {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		agent:  a,
		cfg:    cfg,
		logger: logger,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Agent returns the calendar agent.
func (sc *ServerContext) Agent() *agent.Agent {
	return sc.agent
}

// Config returns the server configuration.
func (sc *ServerContext) Config() config.Config {
	return sc.cfg
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SetInstrumentation attaches the metrics recorder and audit logger.
// Both may be nil when instrumentation is disabled.
func (sc *ServerContext) SetInstrumentation(metrics *instrumentation.Metrics, auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
	sc.auditLogger = auditLogger
}

// Metrics returns the metrics recorder, or nil if instrumentation is
// not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// AuditLogger returns the audit logger, or nil if instrumentation is
// not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetReadOnly marks the server as read-only. Mutating tools are not
// registered when read-only is set.
func (sc *ServerContext) SetReadOnly(readOnly bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.readOnly = readOnly
}

// ReadOnly returns whether the server is read-only.
func (sc *ServerContext) ReadOnly() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.readOnly
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}

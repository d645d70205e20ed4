// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the calagent MCP server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, proxy operations, and generation calls
//   - Distributed tracing for request flows and proxy calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of active user sessions
//
// Proxy Metrics:
//   - proxy_operations_total: Counter of calendar proxy operations by operation and status
//   - proxy_operation_duration_seconds: Histogram of proxy operation durations
//
// Generation Metrics:
//   - llm_generations_total: Counter of text generation calls by operation and status
//   - llm_generation_duration_seconds: Histogram of generation call durations
//
// Bulk Mutation Metrics:
//   - bulk_operations_total: Counter of bulk mutation operations by action and status
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - HTTP request handling
//   - MCP tool invocations (tool.<name>)
//   - Calendar proxy calls (proxy.<operation>)
//   - Text generation calls (llm.<operation>)
//
// # Privacy
//
// Metric labels and span attributes never carry raw calendar ids, event
// titles, or attendee identities. Calendar identifiers are anonymized
// before recording; event ids are opaque and safe.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calagent)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "calagent",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record an HTTP request
//	recorder.RecordHTTPRequest(ctx, "POST", "/mcp", 200, time.Since(start))
//
//	// Record a proxy operation
//	recorder.RecordProxyOperation(ctx, "list_events", "success", time.Since(start))
//
//	// Record an MCP tool invocation
//	recorder.RecordToolInvocation(ctx, "calendar_list_events", "success", time.Since(start))
package instrumentation

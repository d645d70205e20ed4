package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/privcal/calagent/internal/instrumentation"
	"github.com/privcal/calagent/internal/logging"
	"github.com/privcal/calagent/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with metrics and audit logging.
// It records tool invocation metrics and logs the invocation for audit purposes.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Get metrics and audit logger (may be nil if not configured)
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// If no instrumentation configured, just call the handler
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		// Start timing and create invocation record
		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)

		// Record which calendar and event the invocation touches. The audit
		// log keeps the raw IDs; metric labels only ever see the hash.
		args := request.GetArguments()
		if calendarID := GetCalendarIDFromArgs(args); calendarID != "" {
			invocation.WithCalendar(calendarID, GetStringArg(args, "event_id"))
		}

		// Call the actual handler
		result, err := handler(ctx, request)
		duration := time.Since(start)

		// Determine status
		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
		}

		// Record metrics
		if metrics != nil {
			metrics.RecordToolInvocationWithCalendar(ctx, toolName, status, invocation.CalendarHash(), duration)
		}

		// Log audit
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		logCompletion(sc, toolName, status, duration)

		return result, err
	}
}

// InstrumentedToolHandlerWithOperation is like InstrumentedToolHandler but also
// records the proxy operation type for more detailed metrics.
//
// This handler records both:
// - MCP tool invocation metrics (mcp_tool_invocations_total, mcp_tool_duration_seconds)
// - Proxy operation metrics (proxy_operations_total, proxy_operation_duration_seconds)
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithOperation("my_tool", instrumentation.OperationList, sc, handler))
func InstrumentedToolHandlerWithOperation(
	toolName string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Get metrics and audit logger (may be nil if not configured)
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// If no instrumentation configured, just call the handler
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		// Start timing and create invocation record
		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithOperation(operation)

		args := request.GetArguments()
		if calendarID := GetCalendarIDFromArgs(args); calendarID != "" {
			invocation.WithCalendar(calendarID, GetStringArg(args, "event_id"))
		}

		// Call the actual handler
		result, err := handler(ctx, request)
		duration := time.Since(start)

		// Determine status
		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
		}

		// Record metrics
		if metrics != nil {
			// Record MCP tool invocation metrics
			metrics.RecordToolInvocationWithCalendar(ctx, toolName, status, invocation.CalendarHash(), duration)

			// Record proxy operation metrics for operation-level observability
			metrics.RecordProxyOperation(ctx, operation, status, duration)
		}

		// Log audit
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		logCompletion(sc, toolName, status, duration)

		return result, err
	}
}

// InstrumentedToolHandlerWithGeneration is like InstrumentedToolHandler but
// also records the text generation call behind the tool.
//
// This handler records both:
// - MCP tool invocation metrics (mcp_tool_invocations_total, mcp_tool_duration_seconds)
// - Generation metrics (llm_generations_total, llm_generation_duration_seconds)
//
// The tool duration is used for the generation histogram: the generation
// call dominates these tools, and the taxonomy keeps one timing source.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithGeneration("my_tool", instrumentation.GenerationSummarize, sc, handler))
func InstrumentedToolHandlerWithGeneration(
	toolName string,
	generation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Get metrics and audit logger (may be nil if not configured)
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// If no instrumentation configured, just call the handler
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		// Start timing and create invocation record
		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithOperation(generation)

		args := request.GetArguments()
		if calendarID := GetCalendarIDFromArgs(args); calendarID != "" {
			invocation.WithCalendar(calendarID, GetStringArg(args, "event_id"))
		}

		// Call the actual handler
		result, err := handler(ctx, request)
		duration := time.Since(start)

		// Determine status
		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
			if err != nil {
				invocation.CompleteWithError(err)
			} else {
				invocation.Complete(false, nil)
			}
		} else {
			invocation.CompleteSuccess()
		}

		// Record metrics
		if metrics != nil {
			// Record MCP tool invocation metrics
			metrics.RecordToolInvocationWithCalendar(ctx, toolName, status, invocation.CalendarHash(), duration)

			// Record the generation call behind this tool
			metrics.RecordGeneration(ctx, generation, status, duration)
		}

		// Log audit
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		logCompletion(sc, toolName, status, duration)

		return result, err
	}
}

// logCompletion emits the operational completion log for a tool call.
// Audit logging carries the identifiers; this line only carries the
// tool name, status and timing.
func logCompletion(sc *server.ServerContext, toolName, status string, duration time.Duration) {
	logger := sc.Logger()
	if logger == nil {
		return
	}
	logging.WithTool(logger, toolName).Debug("tool completed",
		logging.Status(status), slog.Duration(logging.KeyDuration, duration))
}

package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/privcal/calagent/internal/agent"
	"github.com/privcal/calagent/internal/server"
)

// RegisterAgentResources registers read-only MCP resources describing
// the running agent and the calendars it can reach.
func RegisterAgentResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	configResource := mcp.NewResource(
		"calagent://config",
		"Agent Configuration",
		mcp.WithResourceDescription("Runtime configuration of the calendar agent (sanitized, no credentials)"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(configResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAgentConfig(ctx, request, sc)
	})

	calendarsResource := mcp.NewResource(
		"calagent://calendars",
		"Available Calendars",
		mcp.WithResourceDescription("Calendars visible through the proxy, metadata only"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(calendarsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCalendarList(ctx, request, sc)
	})

	return nil
}

// handleAgentConfig returns the sanitized runtime configuration.
// Credentials and backend URLs stay out of the payload; the
// orchestrator only needs behavioral settings.
func handleAgentConfig(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()

	configData := map[string]interface{}{
		"read_only":          sc.ReadOnly(),
		"default_page_size":  cfg.PageSize,
		"bulk_concurrency":   cfg.BulkConcurrency,
		"working_start_hour": cfg.WorkingStartHour,
		"working_end_hour":   cfg.WorkingEndHour,
		"llm_model":          cfg.LLMModel,
		"llm_prompt_private": cfg.LLMPromptPrivate,
	}

	return jsonContents(request.Params.URI, configData)
}

// handleCalendarList returns the metadata-only calendar list.
func handleCalendarList(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	resp := sc.Agent().ListCalendars(ctx, agent.ListCalendarsParams{})
	if !resp.Success {
		return nil, fmt.Errorf("failed to list calendars: %s", resp.Error)
	}

	return jsonContents(request.Params.URI, resp)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/privcal/calagent/internal/agent"
	"github.com/privcal/calagent/internal/instrumentation"
	"github.com/privcal/calagent/internal/server"
	"github.com/privcal/calagent/internal/tools/common"
)

// RegisterCalendarListTools registers calendar list tools with the MCP server
func RegisterCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// List calendars tool
	listCalendarsTool := mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List all calendars accessible through the proxy"),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of calendars to return"),
		),
		mcp.WithString("page_token",
			mcp.Description("Page token from a previous response"),
		),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_list_calendars", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	// Get calendar tool
	getCalendarTool := mcp.NewTool("calendar_get_calendar",
		mcp.WithDescription("Get metadata for a specific calendar"),
		mcp.WithString("calendar_id",
			mcp.Required(),
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
	)

	s.AddTool(getCalendarTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_calendar", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetCalendar(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	resp := sc.Agent().ListCalendars(ctx, agent.ListCalendarsParams{
		MaxResults: int64(common.GetIntArg(args, "max_results")),
		PageToken:  common.GetStringArg(args, "page_token"),
	})

	return common.JSONResult(resp)
}

func handleGetCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, err := common.RequireStringArg(args, "calendar_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sc.Agent().GetCalendar(ctx, calendarID)
	return common.JSONResult(resp)
}

package calendar_tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/agent"
	"github.com/privcal/calagent/internal/instrumentation"
	"github.com/privcal/calagent/internal/server"
	"github.com/privcal/calagent/internal/tools/common"
)

// RegisterEventTools registers event tools with the MCP server. Mutating
// tools are only registered when readOnly is false.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List events tool (read-only, always available)
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List events in a calendar. Recurring events are expanded to individual instances."),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("time_min",
			mcp.Description("Start of the time range (RFC3339 format, e.g., '2026-01-01T00:00:00Z')"),
		),
		mcp.WithString("time_max",
			mcp.Description("End of the time range (RFC3339 format)"),
		),
		mcp.WithString("query",
			mcp.Description("Free text search over event fields"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort order: 'startTime' or 'updated'"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of events to return"),
		),
		mcp.WithString("page_token",
			mcp.Description("Page token from a previous response"),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_list_events", instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	// Search events tool
	searchEventsTool := mcp.NewTool("calendar_search_events",
		mcp.WithDescription("Search events in a calendar with structured filters"),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("query",
			mcp.Description("Free text search over event fields"),
		),
		mcp.WithString("time_min",
			mcp.Description("Start of the time range (RFC3339 format)"),
		),
		mcp.WithString("time_max",
			mcp.Description("End of the time range (RFC3339 format)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of events to return"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort order: 'startTime' or 'updated'"),
		),
		mcp.WithBoolean("show_deleted",
			mcp.Description("Include cancelled events"),
		),
	)

	s.AddTool(searchEventsTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_search_events", instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEvents(ctx, request, sc)
		}))

	// Get event tool
	getEventTool := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get the metadata view of a specific event"),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_event", instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	// Create event tool
	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a new calendar event"),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time (RFC3339 format, e.g., '2026-01-15T14:00:00Z')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time (RFC3339 format)"),
		),
		mcp.WithString("time_zone",
			mcp.Description("Time zone (e.g., 'Europe/Berlin')"),
		),
		mcp.WithBoolean("all_day",
			mcp.Description("Create as an all-day event (uses the date portion of start/end)"),
		),
		mcp.WithArray("attendees",
			mcp.Description("Attendee email addresses"),
		),
		mcp.WithArray("recurrence",
			mcp.Description("Recurrence rules (e.g., 'RRULE:FREQ=WEEKLY;BYDAY=MO')"),
		),
		mcp.WithString("send_updates",
			mcp.Description("Notification scope: 'all', 'externalOnly', or 'none'"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_create_event", instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	// Register update/patch/delete tools only if not in read-only mode
	if !readOnly {
		// Update event tool
		updateEventTool := mcp.NewTool("calendar_update_event",
			mcp.WithDescription("Replace an existing event in full"),
			mcp.WithString("calendar_id",
				mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
			),
			mcp.WithString("event_id",
				mcp.Required(),
				mcp.Description("The ID of the event to update"),
			),
			mcp.WithObject("body",
				mcp.Required(),
				mcp.Description("Full replacement event body (summary, start, end, ...)"),
			),
			mcp.WithString("send_updates",
				mcp.Description("Notification scope: 'all', 'externalOnly', or 'none'"),
			),
		)

		s.AddTool(updateEventTool, common.InstrumentedToolHandlerWithOperation(
			"calendar_update_event", instrumentation.OperationUpdate, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleUpdateEvent(ctx, request, sc)
			}))

		// Patch event tool
		patchEventTool := mcp.NewTool("calendar_patch_event",
			mcp.WithDescription("Partially update an existing event"),
			mcp.WithString("calendar_id",
				mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
			),
			mcp.WithString("event_id",
				mcp.Required(),
				mcp.Description("The ID of the event to patch"),
			),
			mcp.WithObject("body",
				mcp.Required(),
				mcp.Description("Fields to change (only these fields are touched)"),
			),
			mcp.WithString("send_updates",
				mcp.Description("Notification scope: 'all', 'externalOnly', or 'none'"),
			),
		)

		s.AddTool(patchEventTool, common.InstrumentedToolHandlerWithOperation(
			"calendar_patch_event", instrumentation.OperationPatch, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handlePatchEvent(ctx, request, sc)
			}))

		// Delete event tool
		deleteEventTool := mcp.NewTool("calendar_delete_event",
			mcp.WithDescription("Delete an event. The proxy may require confirmation; the refusal is passed through verbatim."),
			mcp.WithString("calendar_id",
				mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
			),
			mcp.WithString("event_id",
				mcp.Required(),
				mcp.Description("The ID of the event to delete"),
			),
			mcp.WithString("send_updates",
				mcp.Description("Notification scope: 'all', 'externalOnly', or 'none'"),
			),
		)

		s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithOperation(
			"calendar_delete_event", instrumentation.OperationDelete, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleDeleteEvent(ctx, request, sc)
			}))
	}

	return nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	timeMin, err := common.GetTimeArg(args, "time_min")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.GetTimeArg(args, "time_max")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sc.Agent().ListEvents(ctx, agent.ListEventsParams{
		CalendarID: common.GetCalendarIDFromArgs(args),
		MaxResults: int64(common.GetIntArg(args, "max_results")),
		PageToken:  common.GetStringArg(args, "page_token"),
		TimeMin:    timeMin,
		TimeMax:    timeMax,
		Query:      common.GetStringArg(args, "query"),
		OrderBy:    common.GetStringArg(args, "order_by"),
	})

	return common.JSONResult(resp)
}

func handleSearchEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	timeMin, err := common.GetTimeArg(args, "time_min")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.GetTimeArg(args, "time_max")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sc.Agent().SearchEvents(ctx, agent.SearchParams{
		CalendarID:  common.GetCalendarIDFromArgs(args),
		Query:       common.GetStringArg(args, "query"),
		TimeMin:     timeMin,
		TimeMax:     timeMax,
		MaxResults:  int64(common.GetIntArg(args, "max_results")),
		OrderBy:     common.GetStringArg(args, "order_by"),
		ShowDeleted: common.GetBoolArg(args, "show_deleted", false),
	})

	return common.JSONResult(resp)
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, err := common.RequireStringArg(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sc.Agent().GetEvent(ctx, common.GetCalendarIDFromArgs(args), eventID)
	return common.JSONResult(resp)
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	summary, err := common.RequireStringArg(args, "summary")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := common.RequireTimeArg(args, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := common.RequireTimeArg(args, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	timeZone := common.GetStringArg(args, "time_zone")

	resp := sc.Agent().CreateEvent(ctx, agent.CreateEventParams{
		CalendarID:  common.GetCalendarIDFromArgs(args),
		Summary:     summary,
		Description: common.GetStringArg(args, "description"),
		Location:    common.GetStringArg(args, "location"),
		Start:       eventDateTime(start, timeZone, common.GetBoolArg(args, "all_day", false)),
		End:         eventDateTime(end, timeZone, common.GetBoolArg(args, "all_day", false)),
		Attendees:   common.GetStringSliceArg(args, "attendees"),
		Recurrence:  common.GetStringSliceArg(args, "recurrence"),
		SendUpdates: common.GetStringArg(args, "send_updates"),
	})

	return common.JSONResult(resp)
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, err := common.RequireStringArg(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := common.GetMapArg(args, "body")
	if len(body) == 0 {
		return mcp.NewToolResultError("body is required"), nil
	}

	resp := sc.Agent().UpdateEvent(ctx, agent.MutateEventParams{
		CalendarID:  common.GetCalendarIDFromArgs(args),
		EventID:     eventID,
		Body:        body,
		SendUpdates: common.GetStringArg(args, "send_updates"),
	})

	return common.JSONResult(resp)
}

func handlePatchEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, err := common.RequireStringArg(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := common.GetMapArg(args, "body")
	if len(body) == 0 {
		return mcp.NewToolResultError("body is required"), nil
	}

	resp := sc.Agent().PatchEvent(ctx, agent.MutateEventParams{
		CalendarID:  common.GetCalendarIDFromArgs(args),
		EventID:     eventID,
		Body:        body,
		SendUpdates: common.GetStringArg(args, "send_updates"),
	})

	return common.JSONResult(resp)
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, err := common.RequireStringArg(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sc.Agent().DeleteEvent(ctx, common.GetCalendarIDFromArgs(args), eventID,
		common.GetStringArg(args, "send_updates"))
	return common.JSONResult(resp)
}

// eventDateTime builds the wire representation of an event boundary.
// All-day events carry only the date portion.
func eventDateTime(t time.Time, timeZone string, allDay bool) *calendar.EventDateTime {
	if allDay {
		return &calendar.EventDateTime{Date: t.Format("2006-01-02")}
	}
	return &calendar.EventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: timeZone}
}

package analysis_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/privcal/calagent/internal/agent"
	"github.com/privcal/calagent/internal/instrumentation"
	"github.com/privcal/calagent/internal/llm"
	"github.com/privcal/calagent/internal/server"
	"github.com/privcal/calagent/internal/tools/common"
)

// RegisterAnalysisTools registers the generation-backed tools with the
// MCP server. All of them fetch raw events for the local provider and
// return generated text only.
func RegisterAnalysisTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Summarize event tool
	summarizeTool := mcp.NewTool("calendar_summarize_event",
		mcp.WithDescription("Summarize a calendar event. The event is processed locally; only the generated summary is returned."),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID containing the event"),
		),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("Event ID to summarize"),
		),
		mcp.WithString("format",
			mcp.Description("Summary format: 'brief' or 'detailed'"),
		),
	)

	s.AddTool(summarizeTool, common.InstrumentedToolHandlerWithGeneration(
		"calendar_summarize_event", instrumentation.GenerationSummarize, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSummarizeEvent(ctx, request, sc)
		}))

	// Ask about event tool
	askTool := mcp.NewTool("calendar_ask_about_event",
		mcp.WithDescription("Ask a question about a calendar event. The event is processed locally; only the answer is returned."),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID containing the event"),
		),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("Event ID to ask about"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to ask about the event"),
		),
	)

	s.AddTool(askTool, common.InstrumentedToolHandlerWithGeneration(
		"calendar_ask_about_event", instrumentation.GenerationAsk, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAskAboutEvent(ctx, request, sc)
		}))

	// Batch summarize tool
	batchTool := mcp.NewTool("calendar_batch_summarize",
		mcp.WithDescription("Summarize multiple events in one pass, optionally classifying each by action type"),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID containing the events"),
		),
		mcp.WithArray("event_ids",
			mcp.Required(),
			mcp.Description("Event IDs to summarize"),
		),
		mcp.WithBoolean("triage",
			mcp.Description("Classify each event by action type (meeting, deadline, ...)"),
		),
	)

	s.AddTool(batchTool, common.InstrumentedToolHandlerWithGeneration(
		"calendar_batch_summarize", instrumentation.GenerationBatch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchSummarize(ctx, request, sc)
		}))

	// Find free time tool
	freeTimeTool := mcp.NewTool("calendar_find_free_time",
		mcp.WithDescription("Find free slots in a time range and get scheduling recommendations"),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID to check"),
		),
		mcp.WithString("time_min",
			mcp.Required(),
			mcp.Description("Start of the search range (RFC3339 format)"),
		),
		mcp.WithString("time_max",
			mcp.Required(),
			mcp.Description("End of the search range (RFC3339 format)"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Required(),
			mcp.Description("Required duration in minutes"),
		),
		mcp.WithBoolean("working_hours_only",
			mcp.Description("Only consider working hours (default true)"),
		),
		mcp.WithBoolean("prefer_morning",
			mcp.Description("Prefer morning slots"),
		),
		mcp.WithBoolean("prefer_afternoon",
			mcp.Description("Prefer afternoon slots"),
		),
		mcp.WithNumber("buffer_minutes",
			mcp.Description("Buffer to keep around existing meetings"),
		),
	)

	s.AddTool(freeTimeTool, common.InstrumentedToolHandlerWithGeneration(
		"calendar_find_free_time", instrumentation.GenerationSuggest, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindFreeTime(ctx, request, sc)
		}))

	// Analyze schedule tool
	analyzeTool := mcp.NewTool("calendar_analyze_schedule",
		mcp.WithDescription("Analyze schedule patterns over a time range"),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID to analyze"),
		),
		mcp.WithString("time_min",
			mcp.Required(),
			mcp.Description("Start of the analysis period (RFC3339 format)"),
		),
		mcp.WithString("time_max",
			mcp.Required(),
			mcp.Description("End of the analysis period (RFC3339 format)"),
		),
		mcp.WithString("analysis_type",
			mcp.Description("Analysis type: 'overview', 'workload', 'patterns', or 'conflicts'"),
		),
	)

	s.AddTool(analyzeTool, common.InstrumentedToolHandlerWithGeneration(
		"calendar_analyze_schedule", instrumentation.GenerationAnalyze, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAnalyzeSchedule(ctx, request, sc)
		}))

	// Prepare briefing tool
	briefingTool := mcp.NewTool("calendar_prepare_briefing",
		mcp.WithDescription("Generate a schedule briefing for the coming day or week"),
		mcp.WithString("calendar_id",
			mcp.Description("Calendar ID for the briefing"),
		),
		mcp.WithString("briefing_type",
			mcp.Description("'daily' or 'weekly' (default daily)"),
		),
		mcp.WithString("time_min",
			mcp.Description("Start of the briefing period (RFC3339, defaults to now)"),
		),
		mcp.WithString("time_max",
			mcp.Description("End of the briefing period (RFC3339, defaults based on type)"),
		),
	)

	s.AddTool(briefingTool, common.InstrumentedToolHandlerWithGeneration(
		"calendar_prepare_briefing", instrumentation.GenerationBriefing, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handlePrepareBriefing(ctx, request, sc)
		}))

	return nil
}

func handleSummarizeEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, err := common.RequireStringArg(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format := llm.FormatBrief
	switch common.GetStringArg(args, "format") {
	case "", string(llm.FormatBrief):
	case string(llm.FormatDetailed):
		format = llm.FormatDetailed
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid format %q, must be 'brief' or 'detailed'", args["format"])), nil
	}

	resp := sc.Agent().SummarizeEvent(ctx, common.GetCalendarIDFromArgs(args), eventID, format)
	return common.JSONResult(resp)
}

func handleAskAboutEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, err := common.RequireStringArg(args, "event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question, err := common.RequireStringArg(args, "question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sc.Agent().AskAboutEvent(ctx, common.GetCalendarIDFromArgs(args), eventID, question)
	return common.JSONResult(resp)
}

func handleBatchSummarize(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventIDs := common.GetStringSliceArg(args, "event_ids")
	if len(eventIDs) == 0 {
		return mcp.NewToolResultError("event_ids is required"), nil
	}

	resp := sc.Agent().BatchSummarize(ctx, common.GetCalendarIDFromArgs(args), eventIDs,
		common.GetBoolArg(args, "triage", false))
	return common.JSONResult(resp)
}

func handleFindFreeTime(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	timeMin, err := common.RequireTimeArg(args, "time_min")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.RequireTimeArg(args, "time_max")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	duration := common.GetIntArg(args, "duration_minutes")
	if duration <= 0 {
		return mcp.NewToolResultError("duration_minutes must be positive"), nil
	}

	resp := sc.Agent().FindFreeTime(ctx, agent.FindFreeTimeParams{
		CalendarID:       common.GetCalendarIDFromArgs(args),
		TimeMin:          timeMin,
		TimeMax:          timeMax,
		DurationMinutes:  duration,
		WorkingHoursOnly: common.GetBoolArg(args, "working_hours_only", true),
		PreferMorning:    common.GetBoolArg(args, "prefer_morning", false),
		PreferAfternoon:  common.GetBoolArg(args, "prefer_afternoon", false),
		BufferMinutes:    common.GetIntArg(args, "buffer_minutes"),
	})

	return common.JSONResult(resp)
}

func handleAnalyzeSchedule(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	timeMin, err := common.RequireTimeArg(args, "time_min")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.RequireTimeArg(args, "time_max")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	analysisType := common.GetStringArg(args, "analysis_type")
	if analysisType == "" {
		analysisType = "overview"
	}

	resp := sc.Agent().AnalyzeSchedule(ctx, agent.AnalyzeScheduleParams{
		CalendarID:   common.GetCalendarIDFromArgs(args),
		TimeMin:      timeMin,
		TimeMax:      timeMax,
		AnalysisType: analysisType,
	})

	return common.JSONResult(resp)
}

func handlePrepareBriefing(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	briefingType := llm.BriefingDaily
	switch common.GetStringArg(args, "briefing_type") {
	case "", string(llm.BriefingDaily):
	case string(llm.BriefingWeekly):
		briefingType = llm.BriefingWeekly
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid briefing_type %q, must be 'daily' or 'weekly'", args["briefing_type"])), nil
	}

	timeMin, err := common.GetTimeArg(args, "time_min")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := common.GetTimeArg(args, "time_max")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp := sc.Agent().PrepareBriefing(ctx, agent.PrepareBriefingParams{
		CalendarID:   common.GetCalendarIDFromArgs(args),
		BriefingType: briefingType,
		TimeMin:      timeMin,
		TimeMax:      timeMax,
	})

	return common.JSONResult(resp)
}

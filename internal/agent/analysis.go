package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/llm"
	"github.com/privcal/calagent/internal/logging"
	"github.com/privcal/calagent/internal/proxy"
	"github.com/privcal/calagent/internal/schedule"
)

// SummarizeEvent fetches an event and returns a generated summary. The
// raw event goes to the local provider only; the orchestrator gets the
// generated text.
func (a *Agent) SummarizeEvent(ctx context.Context, calendarID, eventID string, format llm.SummaryFormat) AnalysisResponse {
	logger := a.opLogger("summarize_event")

	event, err := a.proxy.GetEvent(ctx, calendarID, eventID, "")
	if err != nil {
		logger.Warn("fetching event for summary failed",
			logging.Calendar(calendarID), logging.EventID(eventID), logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	summary, err := a.llm.SummarizeEvent(ctx, event, format)
	if err != nil {
		logger.Warn("summary generation failed", logging.EventID(eventID), logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	return AnalysisResponse{
		Success: true,
		Data: map[string]any{
			"event_id": eventID,
			"summary":  summary,
			"format":   string(format),
		},
	}
}

// AskAboutEvent fetches an event and answers a question about it.
func (a *Agent) AskAboutEvent(ctx context.Context, calendarID, eventID, question string) AnalysisResponse {
	logger := a.opLogger("ask_about_event")

	event, err := a.proxy.GetEvent(ctx, calendarID, eventID, "")
	if err != nil {
		logger.Warn("fetching event for question failed",
			logging.Calendar(calendarID), logging.EventID(eventID), logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	answer, err := a.llm.AskAboutEvent(ctx, event, question)
	if err != nil {
		logger.Warn("answer generation failed", logging.EventID(eventID), logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	return AnalysisResponse{
		Success: true,
		Data: map[string]any{
			"event_id": eventID,
			"question": question,
			"answer":   answer,
		},
	}
}

// BatchSummarize fetches several events and summarizes them in one
// generation call. A failed fetch does not abort the batch; the failed
// event appears in the results with its error.
func (a *Agent) BatchSummarize(ctx context.Context, calendarID string, eventIDs []string, triage bool) AnalysisResponse {
	logger := a.opLogger("batch_summarize")

	if len(eventIDs) == 0 {
		return AnalysisResponse{Error: "at least one event id is required"}
	}

	events := make([]*calendar.Event, 0, len(eventIDs))
	var failed []llm.BatchItem
	for _, eventID := range eventIDs {
		event, err := a.proxy.GetEvent(ctx, calendarID, eventID, "")
		if err != nil {
			logger.Warn("fetching event for batch failed",
				logging.Calendar(calendarID), logging.EventID(eventID), logging.Err(err))
			failed = append(failed, llm.BatchItem{EventID: eventID, Error: formatError(err)})
			continue
		}
		events = append(events, event)
	}

	result, err := a.llm.BatchSummarize(ctx, events, triage)
	if err != nil {
		logger.Warn("batch generation failed", logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	result.Results = append(result.Results, failed...)
	result.Total = len(eventIDs)

	logger.Debug("batch summarized",
		slog.Int("requested", len(eventIDs)), slog.Int("fetched", len(events)))
	return AnalysisResponse{Success: true, Data: result}
}

// FindFreeTimeParams describe a free-slot search.
type FindFreeTimeParams struct {
	CalendarID       string
	TimeMin          time.Time
	TimeMax          time.Time
	DurationMinutes  int
	WorkingHoursOnly bool
	PreferMorning    bool
	PreferAfternoon  bool
	BufferMinutes    int
}

// FindFreeTime computes free slots deterministically from the calendar's
// busy intervals, then asks the model to recommend among them.
func (a *Agent) FindFreeTime(ctx context.Context, params FindFreeTimeParams) AnalysisResponse {
	logger := a.opLogger("find_free_time")

	events, err := a.proxy.ListEvents(ctx, params.CalendarID, proxy.ListEventsOptions{
		MaxResults:   int64(a.cfg.PageSize),
		TimeMin:      params.TimeMin,
		TimeMax:      params.TimeMax,
		OrderBy:      "startTime",
		SingleEvents: true,
	})
	if err != nil {
		logger.Warn("listing events for free-time search failed",
			logging.Calendar(params.CalendarID), logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	preference := schedule.PreferenceNone
	if params.PreferMorning {
		preference = schedule.PreferenceMorning
	} else if params.PreferAfternoon {
		preference = schedule.PreferenceAfternoon
	}

	duration := time.Duration(params.DurationMinutes) * time.Minute
	slots, err := schedule.FindFreeSlots(
		schedule.BusyIntervals(events.Items),
		schedule.TimeSlot{Start: params.TimeMin, End: params.TimeMax},
		duration,
		schedule.Options{
			WorkingHoursOnly: params.WorkingHoursOnly,
			WorkingStartHour: a.cfg.WorkingStartHour,
			WorkingEndHour:   a.cfg.WorkingEndHour,
			Preference:       preference,
		},
	)
	if err != nil {
		logger.Warn("free-slot computation failed", logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	suggestions, err := a.llm.SuggestSlots(ctx, slots, duration, llm.SlotPreferences{
		PreferMorning:   params.PreferMorning,
		PreferAfternoon: params.PreferAfternoon,
		BufferMinutes:   params.BufferMinutes,
	})
	if err != nil {
		logger.Warn("slot suggestion generation failed", logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	logger.Debug("free time found",
		logging.Calendar(params.CalendarID), slog.Int("slots", len(slots)))
	return AnalysisResponse{
		Success: true,
		Data: FreeTimeResult{
			Slots:             slots,
			AvailableSlots:    suggestions.AvailableSlots,
			Suggestions:       suggestions.Suggestions,
			DurationRequested: suggestions.DurationRequested,
		},
	}
}

// AnalyzeScheduleParams describe a schedule analysis.
type AnalyzeScheduleParams struct {
	CalendarID   string
	TimeMin      time.Time
	TimeMax      time.Time
	AnalysisType string
}

// AnalyzeSchedule fetches the events of a time range and generates
// workload insights over them.
func (a *Agent) AnalyzeSchedule(ctx context.Context, params AnalyzeScheduleParams) AnalysisResponse {
	logger := a.opLogger("analyze_schedule")

	events, err := a.proxy.ListEvents(ctx, params.CalendarID, proxy.ListEventsOptions{
		MaxResults:   int64(a.cfg.PageSize),
		TimeMin:      params.TimeMin,
		TimeMax:      params.TimeMax,
		OrderBy:      "startTime",
		SingleEvents: true,
	})
	if err != nil {
		logger.Warn("listing events for analysis failed",
			logging.Calendar(params.CalendarID), logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	timeRange := fmt.Sprintf("%s to %s",
		params.TimeMin.Format(time.RFC3339), params.TimeMax.Format(time.RFC3339))
	analysis, err := a.llm.AnalyzeSchedule(ctx, events.Items, timeRange, params.AnalysisType)
	if err != nil {
		logger.Warn("schedule analysis generation failed", logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	return AnalysisResponse{Success: true, Data: analysis}
}

// PrepareBriefingParams describe a briefing request. Zero time bounds
// default to the briefing type's natural horizon.
type PrepareBriefingParams struct {
	CalendarID   string
	BriefingType llm.BriefingType
	TimeMin      time.Time
	TimeMax      time.Time
}

// PrepareBriefing fetches the events of the briefing period and
// generates an executive briefing.
func (a *Agent) PrepareBriefing(ctx context.Context, params PrepareBriefingParams) AnalysisResponse {
	logger := a.opLogger("prepare_briefing")

	briefingType := params.BriefingType
	if briefingType == "" {
		briefingType = llm.BriefingDaily
	}

	timeMin, timeMax := params.TimeMin, params.TimeMax
	if timeMin.IsZero() || timeMax.IsZero() {
		days := 1
		if briefingType == llm.BriefingWeekly {
			days = 7
		}
		timeMin, timeMax = schedule.TimeRange(days)
	}

	events, err := a.proxy.ListEvents(ctx, params.CalendarID, proxy.ListEventsOptions{
		MaxResults:   int64(a.cfg.PageSize),
		TimeMin:      timeMin,
		TimeMax:      timeMax,
		OrderBy:      "startTime",
		SingleEvents: true,
	})
	if err != nil {
		logger.Warn("listing events for briefing failed",
			logging.Calendar(params.CalendarID), logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	briefing, err := a.llm.PrepareBriefing(ctx, events.Items, briefingType, fmt.Sprintf("%s schedule", briefingType))
	if err != nil {
		logger.Warn("briefing generation failed", logging.Err(err))
		return AnalysisResponse{Error: formatError(err)}
	}

	return AnalysisResponse{Success: true, Data: briefing}
}

package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/bulk"
	"github.com/privcal/calagent/internal/config"
	"github.com/privcal/calagent/internal/llm"
	"github.com/privcal/calagent/internal/logging"
	"github.com/privcal/calagent/internal/proxy"
)

// CalendarAPI is the slice of the proxy client the agent consumes.
type CalendarAPI interface {
	ListCalendars(ctx context.Context, opts proxy.ListCalendarsOptions) (*calendar.CalendarList, error)
	GetCalendar(ctx context.Context, calendarID string) (*calendar.Calendar, error)
	ListEvents(ctx context.Context, calendarID string, opts proxy.ListEventsOptions) (*calendar.Events, error)
	GetEvent(ctx context.Context, calendarID, eventID, timeZone string) (*calendar.Event, error)
	CreateEvent(ctx context.Context, calendarID string, event *calendar.Event, opts proxy.WriteOptions) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts proxy.WriteOptions) (*calendar.Event, error)
	PatchEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts proxy.WriteOptions) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string, opts proxy.WriteOptions) error
}

// Agent orchestrates calendar operations for the AI orchestrator. It
// owns the privacy boundary: raw events fetched from the proxy are
// reduced to metadata summaries or handed to the local analysis service;
// full event bodies never appear in any response.
type Agent struct {
	proxy    CalendarAPI
	executor *bulk.Executor
	llm      *llm.Service
	cfg      config.Config
	logger   *slog.Logger
}

// New creates an agent from its collaborators.
func New(proxyClient CalendarAPI, executor *bulk.Executor, llmService *llm.Service, cfg config.Config, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		proxy:    proxyClient,
		executor: executor,
		llm:      llmService,
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "agent"),
	}
}

// opLogger returns a logger carrying the operation name and a fresh
// correlation id.
func (a *Agent) opLogger(operation string) *slog.Logger {
	return logging.WithRequestID(logging.WithOperation(a.logger, operation), uuid.NewString())
}

// ListCalendarsParams narrow a list-calendars request.
type ListCalendarsParams struct {
	MaxResults int64
	PageToken  string
}

// ListCalendars lists the calendars visible through the proxy.
func (a *Agent) ListCalendars(ctx context.Context, params ListCalendarsParams) CalendarsResponse {
	logger := a.opLogger("list_calendars")

	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = int64(a.cfg.PageSize)
	}

	list, err := a.proxy.ListCalendars(ctx, proxy.ListCalendarsOptions{
		MaxResults: maxResults,
		PageToken:  params.PageToken,
	})
	if err != nil {
		logger.Warn("listing calendars failed", logging.Err(err))
		return CalendarsResponse{Calendars: []CalendarSummary{}, Error: formatError(err)}
	}

	calendars := make([]CalendarSummary, 0, len(list.Items))
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarSummary(entry))
	}

	logger.Debug("calendars listed", slog.Int("count", len(calendars)))
	return CalendarsResponse{Success: true, Calendars: calendars, NextPageToken: list.NextPageToken}
}

// GetCalendar retrieves metadata for one calendar.
func (a *Agent) GetCalendar(ctx context.Context, calendarID string) CalendarDetailResponse {
	logger := a.opLogger("get_calendar")

	cal, err := a.proxy.GetCalendar(ctx, calendarID)
	if err != nil {
		logger.Warn("getting calendar failed", logging.Calendar(calendarID), logging.Err(err))
		return CalendarDetailResponse{Error: formatError(err)}
	}

	return CalendarDetailResponse{
		Success: true,
		Calendar: &CalendarSummary{
			ID:          cal.Id,
			Summary:     cal.Summary,
			Description: cal.Description,
			TimeZone:    cal.TimeZone,
		},
	}
}

// ListEventsParams narrow a list-events request.
type ListEventsParams struct {
	CalendarID string
	MaxResults int64
	PageToken  string
	TimeMin    time.Time
	TimeMax    time.Time
	Query      string
	OrderBy    string
}

// ListEvents lists events in a calendar, expanded to single instances.
func (a *Agent) ListEvents(ctx context.Context, params ListEventsParams) EventsListResponse {
	logger := a.opLogger("list_events")

	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = int64(a.cfg.PageSize)
	}

	events, err := a.proxy.ListEvents(ctx, params.CalendarID, proxy.ListEventsOptions{
		MaxResults:   maxResults,
		PageToken:    params.PageToken,
		TimeMin:      params.TimeMin,
		TimeMax:      params.TimeMax,
		Query:        params.Query,
		OrderBy:      params.OrderBy,
		SingleEvents: true,
	})
	if err != nil {
		logger.Warn("listing events failed", logging.Calendar(params.CalendarID), logging.Err(err))
		return EventsListResponse{Events: []EventSummary{}, Error: formatError(err)}
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, ToEventSummary(event, params.CalendarID))
	}

	logger.Debug("events listed", logging.Calendar(params.CalendarID), slog.Int("count", len(summaries)))
	return EventsListResponse{Success: true, Events: summaries, NextPageToken: events.NextPageToken}
}

// SearchParams narrow an event search.
type SearchParams struct {
	CalendarID  string
	Query       string
	TimeMin     time.Time
	TimeMax     time.Time
	MaxResults  int64
	OrderBy     string
	ShowDeleted bool
}

// SearchEvents searches a calendar with structured filters.
func (a *Agent) SearchEvents(ctx context.Context, params SearchParams) EventsListResponse {
	logger := a.opLogger("search_events")

	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = int64(a.cfg.PageSize)
	}

	events, err := a.proxy.ListEvents(ctx, params.CalendarID, proxy.ListEventsOptions{
		MaxResults:   maxResults,
		TimeMin:      params.TimeMin,
		TimeMax:      params.TimeMax,
		Query:        params.Query,
		OrderBy:      params.OrderBy,
		ShowDeleted:  params.ShowDeleted,
		SingleEvents: true,
	})
	if err != nil {
		logger.Warn("searching events failed", logging.Calendar(params.CalendarID), logging.Err(err))
		return EventsListResponse{Events: []EventSummary{}, Error: formatError(err)}
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, ToEventSummary(event, params.CalendarID))
	}

	return EventsListResponse{Success: true, Events: summaries, NextPageToken: events.NextPageToken}
}

// GetEvent retrieves the metadata view of one event.
func (a *Agent) GetEvent(ctx context.Context, calendarID, eventID string) EventDetailResponse {
	logger := a.opLogger("get_event")

	event, err := a.proxy.GetEvent(ctx, calendarID, eventID, "")
	if err != nil {
		logger.Warn("getting event failed",
			logging.Calendar(calendarID), logging.EventID(eventID), logging.Err(err))
		return EventDetailResponse{Error: formatError(err)}
	}

	attrs := []any{logging.Calendar(calendarID), logging.EventID(eventID)}
	if event.Organizer != nil && event.Organizer.Email != "" {
		attrs = append(attrs, logging.Domain(event.Organizer.Email))
	}
	logger.Debug("event retrieved", attrs...)

	summary := ToEventSummary(event, calendarID)
	return EventDetailResponse{Success: true, Event: &summary}
}

// CreateEventParams describe a new event.
type CreateEventParams struct {
	CalendarID  string
	Summary     string
	Description string
	Location    string
	Start       *calendar.EventDateTime
	End         *calendar.EventDateTime
	Attendees   []string
	Recurrence  []string
	SendUpdates string
}

// CreateEvent creates an event and returns its metadata view.
func (a *Agent) CreateEvent(ctx context.Context, params CreateEventParams) EventDetailResponse {
	logger := a.opLogger("create_event")

	event := &calendar.Event{
		Summary:     params.Summary,
		Description: params.Description,
		Location:    params.Location,
		Start:       params.Start,
		End:         params.End,
		Recurrence:  params.Recurrence,
	}
	for _, email := range params.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := a.proxy.CreateEvent(ctx, params.CalendarID, event, proxy.WriteOptions{
		SendUpdates: params.SendUpdates,
	})
	if err != nil {
		logger.Warn("creating event failed", logging.Calendar(params.CalendarID), logging.Err(err))
		return EventDetailResponse{Error: formatError(err)}
	}

	attrs := []any{logging.Calendar(params.CalendarID), logging.EventID(created.Id)}
	if created.Organizer != nil && created.Organizer.Email != "" {
		attrs = append(attrs, logging.UserHash(created.Organizer.Email))
	}
	logger.Info("event created", attrs...)
	summary := ToEventSummary(created, params.CalendarID)
	return EventDetailResponse{Success: true, Event: &summary}
}

// MutateEventParams carry a raw replacement or patch payload for an
// existing event.
type MutateEventParams struct {
	CalendarID  string
	EventID     string
	Body        map[string]any
	SendUpdates string
}

// UpdateEvent replaces an event in full.
func (a *Agent) UpdateEvent(ctx context.Context, params MutateEventParams) EventDetailResponse {
	logger := a.opLogger("update_event")

	updated, err := a.proxy.UpdateEvent(ctx, params.CalendarID, params.EventID, params.Body, proxy.WriteOptions{
		SendUpdates: params.SendUpdates,
	})
	if err != nil {
		logger.Warn("updating event failed",
			logging.Calendar(params.CalendarID), logging.EventID(params.EventID), logging.Err(err))
		return EventDetailResponse{Error: formatError(err)}
	}

	summary := ToEventSummary(updated, params.CalendarID)
	return EventDetailResponse{Success: true, Event: &summary}
}

// PatchEvent applies a partial update to an event.
func (a *Agent) PatchEvent(ctx context.Context, params MutateEventParams) EventDetailResponse {
	logger := a.opLogger("patch_event")

	patched, err := a.proxy.PatchEvent(ctx, params.CalendarID, params.EventID, params.Body, proxy.WriteOptions{
		SendUpdates: params.SendUpdates,
	})
	if err != nil {
		logger.Warn("patching event failed",
			logging.Calendar(params.CalendarID), logging.EventID(params.EventID), logging.Err(err))
		return EventDetailResponse{Error: formatError(err)}
	}

	summary := ToEventSummary(patched, params.CalendarID)
	return EventDetailResponse{Success: true, Event: &summary}
}

// DeleteEvent deletes an event. A proxy refusal pending confirmation is
// surfaced in the envelope; the agent never confirms on its own.
func (a *Agent) DeleteEvent(ctx context.Context, calendarID, eventID, sendUpdates string) ActionResponse {
	logger := a.opLogger("delete_event")

	err := a.proxy.DeleteEvent(ctx, calendarID, eventID, proxy.WriteOptions{SendUpdates: sendUpdates})
	if err != nil {
		logger.Warn("deleting event failed",
			logging.Calendar(calendarID), logging.EventID(eventID), logging.Err(err))
		message := "Failed to delete event"
		var forbidden *proxy.ForbiddenError
		if errors.As(err, &forbidden) && forbidden.ConfirmationRequired {
			message = "Deletion requires confirmation"
		}
		return ActionResponse{Message: message, Error: formatError(err)}
	}

	logger.Info("event deleted", logging.Calendar(calendarID), logging.EventID(eventID))
	return ActionResponse{Success: true, Message: "Event deleted successfully"}
}

// BulkActions runs a batch of mutations and reports one result per
// operation, in input order.
func (a *Agent) BulkActions(ctx context.Context, ops []bulk.Operation) BulkResponse {
	requestID := uuid.NewString()
	logger := logging.WithRequestID(logging.WithOperation(a.logger, "bulk_actions"), requestID)

	if len(ops) == 0 {
		return BulkResponse{
			RequestID: requestID,
			Results:   []bulk.Result{},
			Error:     "at least one operation is required",
		}
	}

	results := a.executor.Execute(ctx, ops)
	successCount, errorCount := bulk.Counts(results)

	logger.Info("bulk actions completed",
		slog.Int("operations", len(ops)),
		slog.Int("succeeded", successCount),
		slog.Int("failed", errorCount))

	return BulkResponse{
		Success:      true,
		RequestID:    requestID,
		Results:      results,
		SuccessCount: successCount,
		ErrorCount:   errorCount,
	}
}

package calendar_tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/agent"
	"github.com/privcal/calagent/internal/bulk"
	"github.com/privcal/calagent/internal/config"
	"github.com/privcal/calagent/internal/llm"
	"github.com/privcal/calagent/internal/proxy"
	"github.com/privcal/calagent/internal/server"
)

// fakeCalendar implements agent.CalendarAPI and bulk.Mutator with canned
// responses.
type fakeCalendar struct {
	calendars  *calendar.CalendarList
	events     map[string]*calendar.Event
	listResult *calendar.Events

	createdEvents []*calendar.Event
	deleteCalls   int

	err error
}

func (f *fakeCalendar) ListCalendars(ctx context.Context, opts proxy.ListCalendarsOptions) (*calendar.CalendarList, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calendars != nil {
		return f.calendars, nil
	}
	return &calendar.CalendarList{}, nil
}

func (f *fakeCalendar) GetCalendar(ctx context.Context, calendarID string) (*calendar.Calendar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &calendar.Calendar{Id: calendarID, Summary: "Work", TimeZone: "UTC"}, nil
}

func (f *fakeCalendar) ListEvents(ctx context.Context, calendarID string, opts proxy.ListEventsOptions) (*calendar.Events, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.listResult != nil {
		return f.listResult, nil
	}
	return &calendar.Events{}, nil
}

func (f *fakeCalendar) GetEvent(ctx context.Context, calendarID, eventID, timeZone string) (*calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	event, ok := f.events[eventID]
	if !ok {
		return nil, &proxy.NotFoundError{Message: "Event not found"}
	}
	return event, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, calendarID string, event *calendar.Event, opts proxy.WriteOptions) (*calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	created := *event
	created.Id = "created-1"
	f.createdEvents = append(f.createdEvents, &created)
	return &created, nil
}

func (f *fakeCalendar) UpdateEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts proxy.WriteOptions) (*calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &calendar.Event{Id: eventID, Summary: "Updated"}, nil
}

func (f *fakeCalendar) PatchEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts proxy.WriteOptions) (*calendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &calendar.Event{Id: eventID, Summary: "Patched"}, nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string, opts proxy.WriteOptions) error {
	f.deleteCalls++
	return f.err
}

func newTestContext(t *testing.T, fake *fakeCalendar) *server.ServerContext {
	t.Helper()

	cfg := config.Config{
		PageSize:         100,
		BulkConcurrency:  1,
		WorkingStartHour: 9,
		WorkingEndHour:   17,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := agent.New(fake, bulk.NewExecutor(fake, cfg.BulkConcurrency, logger), llm.NewService(nil, logger), cfg, logger)

	sc := server.NewServerContextWithAgent(context.Background(), a, cfg, logger)
	t.Cleanup(func() {
		_ = sc.Shutdown()
	})
	return sc
}

func requestWithArgs(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "result content is not text")
	return text.Text
}

func decodeResult[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	var decoded T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
	return decoded
}

func TestRegisterCalendarTools(t *testing.T) {
	sc := newTestContext(t, &fakeCalendar{})
	s := mcpserver.NewMCPServer("test", "0.0.1")

	require.NoError(t, RegisterCalendarTools(s, sc))
}

func TestHandleListCalendars(t *testing.T) {
	fake := &fakeCalendar{calendars: &calendar.CalendarList{
		Items: []*calendar.CalendarListEntry{
			{Id: "primary", Summary: "Work", Primary: true},
			{Id: "team@example.com", Summary: "Team"},
		},
	}}
	sc := newTestContext(t, fake)

	result, err := handleListCalendars(context.Background(), requestWithArgs(nil), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	resp := decodeResult[agent.CalendarsResponse](t, result)
	require.True(t, resp.Success)
	require.Len(t, resp.Calendars, 2)
	assert.Equal(t, "primary", resp.Calendars[0].ID)
}

func TestHandleGetCalendarRequiresID(t *testing.T) {
	sc := newTestContext(t, &fakeCalendar{})

	result, err := handleGetCalendar(context.Background(), requestWithArgs(nil), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "calendar_id is required")
}

func TestHandleListEventsKeepsMetadataOnly(t *testing.T) {
	fake := &fakeCalendar{listResult: &calendar.Events{
		Items: []*calendar.Event{
			{
				Id:          "ev1",
				Summary:     "Planning",
				Description: "confidential agenda",
				Start:       &calendar.EventDateTime{DateTime: "2026-03-02T10:00:00Z"},
				End:         &calendar.EventDateTime{DateTime: "2026-03-02T11:00:00Z"},
			},
		},
	}}
	sc := newTestContext(t, fake)

	result, err := handleListEvents(context.Background(), requestWithArgs(map[string]any{
		"calendar_id": "primary",
		"time_min":    "2026-03-02T00:00:00Z",
		"time_max":    "2026-03-03T00:00:00Z",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.NotContains(t, text, "confidential agenda")

	resp := decodeResult[agent.EventsListResponse](t, result)
	require.True(t, resp.Success)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Planning", resp.Events[0].Summary)
}

func TestHandleListEventsRejectsBadTime(t *testing.T) {
	sc := newTestContext(t, &fakeCalendar{})

	result, err := handleListEvents(context.Background(), requestWithArgs(map[string]any{
		"time_min": "next tuesday",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid time_min format")
}

func TestHandleGetEvent(t *testing.T) {
	fake := &fakeCalendar{events: map[string]*calendar.Event{
		"ev1": {
			Id:          "ev1",
			Summary:     "Standup",
			Description: "do not leak",
			Start:       &calendar.EventDateTime{DateTime: "2026-03-02T10:00:00Z"},
			End:         &calendar.EventDateTime{DateTime: "2026-03-02T10:15:00Z"},
		},
	}}
	sc := newTestContext(t, fake)

	result, err := handleGetEvent(context.Background(), requestWithArgs(map[string]any{
		"event_id": "ev1",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.NotContains(t, text, "do not leak")

	resp := decodeResult[agent.EventDetailResponse](t, result)
	require.True(t, resp.Success)
	assert.Equal(t, "ev1", resp.Event.ID)
	assert.Equal(t, "primary", resp.Event.CalendarID)
}

func TestHandleGetEventNotFound(t *testing.T) {
	sc := newTestContext(t, &fakeCalendar{events: map[string]*calendar.Event{}})

	result, err := handleGetEvent(context.Background(), requestWithArgs(map[string]any{
		"event_id": "missing",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	resp := decodeResult[agent.EventDetailResponse](t, result)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Not found")
}

func TestHandleCreateEvent(t *testing.T) {
	fake := &fakeCalendar{}
	sc := newTestContext(t, fake)

	result, err := handleCreateEvent(context.Background(), requestWithArgs(map[string]any{
		"calendar_id": "primary",
		"summary":     "Design review",
		"start":       "2026-03-02T14:00:00Z",
		"end":         "2026-03-02T15:00:00Z",
		"attendees":   []any{"a@example.com", "b@example.com"},
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	resp := decodeResult[agent.EventDetailResponse](t, result)
	require.True(t, resp.Success)
	assert.Equal(t, "created-1", resp.Event.ID)
	assert.Equal(t, 2, resp.Event.AttendeeCount)

	require.Len(t, fake.createdEvents, 1)
	assert.Equal(t, "2026-03-02T14:00:00Z", fake.createdEvents[0].Start.DateTime)
}

func TestHandleCreateEventAllDay(t *testing.T) {
	fake := &fakeCalendar{}
	sc := newTestContext(t, fake)

	result, err := handleCreateEvent(context.Background(), requestWithArgs(map[string]any{
		"summary": "Offsite",
		"start":   "2026-03-02T00:00:00Z",
		"end":     "2026-03-03T00:00:00Z",
		"all_day": true,
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.Len(t, fake.createdEvents, 1)
	assert.Equal(t, "2026-03-02", fake.createdEvents[0].Start.Date)
	assert.Empty(t, fake.createdEvents[0].Start.DateTime)
}

func TestHandleCreateEventRequiresSummary(t *testing.T) {
	sc := newTestContext(t, &fakeCalendar{})

	result, err := handleCreateEvent(context.Background(), requestWithArgs(map[string]any{
		"start": "2026-03-02T14:00:00Z",
		"end":   "2026-03-02T15:00:00Z",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "summary is required")
}

func TestHandleUpdateEventRequiresBody(t *testing.T) {
	sc := newTestContext(t, &fakeCalendar{})

	result, err := handleUpdateEvent(context.Background(), requestWithArgs(map[string]any{
		"event_id": "ev1",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "body is required")
}

func TestHandlePatchEvent(t *testing.T) {
	sc := newTestContext(t, &fakeCalendar{})

	result, err := handlePatchEvent(context.Background(), requestWithArgs(map[string]any{
		"event_id": "ev1",
		"body":     map[string]any{"summary": "Renamed"},
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	resp := decodeResult[agent.EventDetailResponse](t, result)
	require.True(t, resp.Success)
	assert.Equal(t, "ev1", resp.Event.ID)
}

func TestHandleDeleteEvent(t *testing.T) {
	fake := &fakeCalendar{}
	sc := newTestContext(t, fake)

	result, err := handleDeleteEvent(context.Background(), requestWithArgs(map[string]any{
		"event_id": "ev1",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	resp := decodeResult[agent.ActionResponse](t, result)
	assert.True(t, resp.Success)
	assert.Equal(t, "Event deleted successfully", resp.Message)
	assert.Equal(t, 1, fake.deleteCalls)
}

func TestHandleDeleteEventConfirmationPassthrough(t *testing.T) {
	fake := &fakeCalendar{err: &proxy.ForbiddenError{
		Message:              "Confirmation required: re-issue with confirm=true to delete 'Standup'",
		ConfirmationRequired: true,
	}}
	sc := newTestContext(t, fake)

	result, err := handleDeleteEvent(context.Background(), requestWithArgs(map[string]any{
		"event_id": "ev1",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	resp := decodeResult[agent.ActionResponse](t, result)
	assert.False(t, resp.Success)
	assert.Equal(t, "Deletion requires confirmation", resp.Message)
	assert.True(t, strings.Contains(resp.Error, "Confirmation required"))
}

func TestEventDateTime(t *testing.T) {
	ts := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	timed := eventDateTime(ts, "Europe/Berlin", false)
	assert.Equal(t, "2026-03-02T14:00:00Z", timed.DateTime)
	assert.Equal(t, "Europe/Berlin", timed.TimeZone)

	allDay := eventDateTime(ts, "", true)
	assert.Equal(t, "2026-03-02", allDay.Date)
	assert.Empty(t, allDay.DateTime)
}

package agent

import (
	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/bulk"
	"github.com/privcal/calagent/internal/schedule"
)

// CalendarSummary is the orchestrator-visible view of a calendar.
type CalendarSummary struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	Primary     bool   `json:"primary"`
}

// EventSummary is the metadata-only view of an event. Raw descriptions
// never appear here: the orchestrator sees metadata and generated text,
// nothing else.
type EventSummary struct {
	ID            string `json:"id"`
	CalendarID    string `json:"calendar_id"`
	Summary       string `json:"summary"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Location      string `json:"location,omitempty"`
	AttendeeCount int    `json:"attendee_count"`
	IsAllDay      bool   `json:"is_all_day"`
	Status        string `json:"status,omitempty"`
	HTMLLink      string `json:"html_link,omitempty"`
}

// CalendarsResponse answers a list-calendars request.
type CalendarsResponse struct {
	Success       bool              `json:"success"`
	Calendars     []CalendarSummary `json:"calendars"`
	NextPageToken string            `json:"next_page_token,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// CalendarDetailResponse answers a get-calendar request.
type CalendarDetailResponse struct {
	Success  bool             `json:"success"`
	Calendar *CalendarSummary `json:"calendar,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// EventsListResponse answers list and search requests.
type EventsListResponse struct {
	Success       bool           `json:"success"`
	Events        []EventSummary `json:"events"`
	NextPageToken string         `json:"next_page_token,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// EventDetailResponse answers get/create/update/patch requests with the
// metadata view of the affected event.
type EventDetailResponse struct {
	Success bool          `json:"success"`
	Event   *EventSummary `json:"event,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ActionResponse answers requests whose payload is just an outcome.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// AnalysisResponse answers the generation-backed operations. Data holds
// the operation-specific payload.
type AnalysisResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BulkResponse answers a bulk-actions request. The counts are derived
// from Results and always sum to the number of submitted operations.
type BulkResponse struct {
	Success      bool          `json:"success"`
	RequestID    string        `json:"request_id"`
	Results      []bulk.Result `json:"results"`
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	Error        string        `json:"error,omitempty"`
}

// FreeTimeResult is the payload of a find-free-time request.
type FreeTimeResult struct {
	Slots             []schedule.TimeSlot `json:"slots"`
	AvailableSlots    []schedule.TimeSlot `json:"available_slots"`
	Suggestions       string              `json:"suggestions"`
	DurationRequested int                 `json:"duration_requested_minutes"`
}

// toCalendarSummary reduces a calendar-list entry to its metadata view.
func toCalendarSummary(entry *calendar.CalendarListEntry) CalendarSummary {
	return CalendarSummary{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
	}
}

// ToEventSummary reduces a raw event to its metadata view. This is the
// privacy boundary: the description is dropped here, before anything
// reaches the orchestrator.
func ToEventSummary(event *calendar.Event, calendarID string) EventSummary {
	title := event.Summary
	if title == "" {
		title = "Untitled Event"
	}
	return EventSummary{
		ID:            event.Id,
		CalendarID:    calendarID,
		Summary:       title,
		Start:         schedule.EventTime(event.Start),
		End:           schedule.EventTime(event.End),
		Location:      event.Location,
		AttendeeCount: len(event.Attendees),
		IsAllDay:      schedule.IsAllDay(event),
		Status:        event.Status,
		HTMLLink:      event.HtmlLink,
	}
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/logging"
	"github.com/privcal/calagent/internal/schedule"
)

// Token budgets per operation kind.
const (
	briefSummaryTokens    = 256
	answerTokens          = 512
	detailedSummaryTokens = 1024
	triageTokens          = 2048
)

const defaultTemperature = 0.3

// SummaryFormat selects how thorough an event summary should be.
type SummaryFormat string

const (
	FormatBrief    SummaryFormat = "brief"
	FormatDetailed SummaryFormat = "detailed"
)

// Service provides the calendar analysis operations on top of a
// generation provider. It owns prompt construction, including the
// decision of which event fields are allowed into prompts.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService creates a service backed by the given provider.
func NewService(provider Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		logger:   logging.WithComponent(logger, "llm"),
	}
}

// SummarizeEvent generates a summary of one event.
func (s *Service) SummarizeEvent(ctx context.Context, event *calendar.Event, format SummaryFormat) (string, error) {
	eventText := eventSummaryText(event, s.provider.PromptPrivate())

	var prompt string
	var maxTokens int
	if format == FormatDetailed {
		prompt = fmt.Sprintf("Please provide a detailed summary of this calendar event,\nincluding all relevant details and any preparation needed:\n\n%s", eventText)
		maxTokens = detailedSummaryTokens
	} else {
		prompt = fmt.Sprintf("Briefly summarize this calendar event in 2-3 sentences:\n\n%s", eventText)
		maxTokens = briefSummaryTokens
	}

	return s.provider.Generate(ctx, summarizeSystemPrompt, prompt, maxTokens, defaultTemperature)
}

// AskAboutEvent answers a question about one event, based only on the
// event's own content.
func (s *Service) AskAboutEvent(ctx context.Context, event *calendar.Event, question string) (string, error) {
	eventText := eventSummaryText(event, s.provider.PromptPrivate())

	prompt := fmt.Sprintf("Event information:\n%s\n\nQuestion: %s\n\nPlease answer the question based only on the event information provided.",
		eventText, question)

	return s.provider.Generate(ctx, askAboutSystemPrompt, prompt, answerTokens, defaultTemperature)
}

// BatchItem is one entry of a batch-summarize result. In triage mode
// the model fills the classification fields; otherwise only Summary is
// set.
type BatchItem struct {
	EventID    string `json:"event_id,omitempty"`
	Summary    string `json:"summary"`
	ActionType string `json:"action_type,omitempty"`
	Deadline   string `json:"deadline,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult aggregates a batch-summarize call.
type BatchResult struct {
	Results []BatchItem `json:"results"`
	Total   int         `json:"total"`
}

// jsonArrayPattern locates a JSON array within surrounding prose.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// BatchSummarize summarizes several events in one generation call.
// With triage enabled the model classifies each event and the response
// is parsed as JSON; a malformed response falls back to a single
// plain-text result instead of failing.
func (s *Service) BatchSummarize(ctx context.Context, events []*calendar.Event, triage bool) (*BatchResult, error) {
	if len(events) == 0 {
		return &BatchResult{Results: []BatchItem{}, Total: 0}, nil
	}

	includeSensitive := s.provider.PromptPrivate()
	eventTexts := make([]string, 0, len(events))
	for i, event := range events {
		eventID := event.Id
		if eventID == "" {
			eventID = fmt.Sprintf("event_%d", i+1)
		}
		eventTexts = append(eventTexts, fmt.Sprintf("Event ID: %s\n%s", eventID, eventSummaryText(event, includeSensitive)))
	}
	combined := strings.Join(eventTexts, "\n\n---\n\n")

	var systemPrompt, prompt string
	var maxTokens int
	if triage {
		systemPrompt = batchSummarizeSystemPrompt
		prompt = fmt.Sprintf("Please analyze and summarize these %d calendar events.\nFor each event, provide a brief summary and classify the action type.\n\n%s\n\nReturn your analysis as a JSON array.",
			len(events), combined)
		maxTokens = triageTokens
	} else {
		systemPrompt = summarizeSystemPrompt
		prompt = fmt.Sprintf("Please briefly summarize each of these %d calendar events:\n\n%s\n\nProvide a 1-2 sentence summary for each event.",
			len(events), combined)
		maxTokens = detailedSummaryTokens
	}

	response, err := s.provider.Generate(ctx, systemPrompt, prompt, maxTokens, defaultTemperature)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Total: len(events)}
	if triage {
		result.Results = parseTriageResponse(response)
	} else {
		result.Results = []BatchItem{{Summary: response}}
	}
	return result, nil
}

// parseTriageResponse extracts the JSON array from a triage response,
// falling back to the raw text when the model did not produce one.
func parseTriageResponse(response string) []BatchItem {
	if match := jsonArrayPattern.FindString(response); match != "" {
		var items []BatchItem
		if err := json.Unmarshal([]byte(match), &items); err == nil {
			return items
		}
	}
	return []BatchItem{{Summary: response, Error: "Could not parse structured response"}}
}

// SlotPreferences bias the scheduling suggestions.
type SlotPreferences struct {
	PreferMorning   bool
	PreferAfternoon bool
	BufferMinutes   int
}

// SlotSuggestions carries the model's scheduling recommendation next to
// the raw candidate slots.
type SlotSuggestions struct {
	AvailableSlots    []schedule.TimeSlot `json:"available_slots"`
	Suggestions       string              `json:"suggestions"`
	DurationRequested int                 `json:"duration_requested_minutes"`
}

// Caps on how many slots are shown to the model and returned to the
// caller.
const (
	maxSlotsInPrompt = 10
	maxSlotsReturned = 5
)

// SuggestSlots asks the model to recommend meeting times from a set of
// free slots. Slots shorter than the requested duration are filtered
// out before prompting.
func (s *Service) SuggestSlots(ctx context.Context, slots []schedule.TimeSlot, duration time.Duration, prefs SlotPreferences) (*SlotSuggestions, error) {
	durationMinutes := int(duration.Minutes())
	result := &SlotSuggestions{DurationRequested: durationMinutes}

	valid := make([]schedule.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Duration() >= duration {
			valid = append(valid, slot)
		}
	}

	if len(valid) == 0 {
		if len(slots) == 0 {
			result.Suggestions = "No free time slots available in the specified range."
		} else {
			result.Suggestions = fmt.Sprintf("No slots available with at least %d minutes free.", durationMinutes)
		}
		result.AvailableSlots = []schedule.TimeSlot{}
		return result, nil
	}

	shown := valid
	if len(shown) > maxSlotsInPrompt {
		shown = shown[:maxSlotsInPrompt]
	}
	lines := make([]string, 0, len(shown))
	for _, slot := range shown {
		lines = append(lines, fmt.Sprintf("- %s to %s (%d minutes free)",
			slot.Start.Format(time.RFC3339), slot.End.Format(time.RFC3339), int(slot.Duration().Minutes())))
	}

	var prefParts []string
	if prefs.PreferMorning {
		prefParts = append(prefParts, "Prefer morning meetings")
	}
	if prefs.PreferAfternoon {
		prefParts = append(prefParts, "Prefer afternoon meetings")
	}
	if prefs.BufferMinutes > 0 {
		prefParts = append(prefParts, fmt.Sprintf("Need %d minute buffer", prefs.BufferMinutes))
	}
	prefText := ""
	if len(prefParts) > 0 {
		prefText = "\nPreferences: " + strings.Join(prefParts, ", ")
	}

	prompt := fmt.Sprintf("Available free time slots:\n%s\n\nRequired duration: %d minutes%s\n\nPlease recommend the best 2-3 time slots for scheduling, with brief reasoning for each.",
		strings.Join(lines, "\n"), durationMinutes, prefText)

	response, err := s.provider.Generate(ctx, findFreeTimeSystemPrompt, prompt, answerTokens, defaultTemperature)
	if err != nil {
		return nil, err
	}

	if len(valid) > maxSlotsReturned {
		valid = valid[:maxSlotsReturned]
	}
	result.AvailableSlots = valid
	result.Suggestions = response
	return result, nil
}

// ScheduleMetrics are the derived numbers accompanying a schedule
// analysis.
type ScheduleMetrics struct {
	TotalEvents int     `json:"total_events"`
	TotalHours  float64 `json:"total_hours"`
}

// ScheduleAnalysis is the outcome of an analyze-schedule call.
type ScheduleAnalysis struct {
	TimeRange    string          `json:"time_range"`
	Metrics      ScheduleMetrics `json:"metrics"`
	AnalysisType string          `json:"analysis_type"`
	Insights     string          `json:"insights"`
}

// maxEventsInAnalysis bounds how many events are listed in an analysis
// prompt to keep context small.
const maxEventsInAnalysis = 20

// AnalyzeSchedule computes basic workload metrics over a set of events
// and asks the model for pattern insights. Event titles and times go
// into the prompt; descriptions never do.
func (s *Service) AnalyzeSchedule(ctx context.Context, events []*calendar.Event, timeRange, analysisType string) (*ScheduleAnalysis, error) {
	if analysisType == "" {
		analysisType = "overview"
	}

	analysis := &ScheduleAnalysis{
		TimeRange:    timeRange,
		AnalysisType: analysisType,
	}

	if len(events) == 0 {
		analysis.Insights = "No events found in the specified time range."
		return analysis, nil
	}

	var totalHours float64
	for _, event := range events {
		if d, ok := schedule.EventDuration(event); ok {
			totalHours += d.Hours()
		}
	}
	analysis.Metrics = ScheduleMetrics{
		TotalEvents: len(events),
		TotalHours:  math.Round(totalHours*10) / 10,
	}

	shown := events
	if len(shown) > maxEventsInAnalysis {
		shown = shown[:maxEventsInAnalysis]
	}
	lines := make([]string, 0, len(shown))
	for _, event := range shown {
		title := event.Summary
		if title == "" {
			title = "Untitled"
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", title, schedule.FormatEventTime(event.Start)))
	}

	prompt := fmt.Sprintf("Schedule analysis for: %s\n\nTotal events: %d\nEstimated total meeting hours: %.1f\n\nEvents:\n%s\n\nPlease provide a %s analysis of this schedule, including:\n1. Key observations\n2. Potential issues or concerns\n3. Actionable recommendations",
		timeRange, len(events), totalHours, strings.Join(lines, "\n"), analysisType)

	response, err := s.provider.Generate(ctx, analyzeScheduleSystemPrompt, prompt, detailedSummaryTokens, defaultTemperature)
	if err != nil {
		return nil, err
	}

	analysis.Insights = response
	return analysis, nil
}

// BriefingType selects the briefing horizon.
type BriefingType string

const (
	BriefingDaily  BriefingType = "daily"
	BriefingWeekly BriefingType = "weekly"
)

// Briefing is the outcome of a prepare-briefing call.
type Briefing struct {
	BriefingType BriefingType `json:"briefing_type"`
	Period       string       `json:"period"`
	EventCount   int          `json:"event_count"`
	Briefing     string       `json:"briefing"`
}

// maxEventsInBriefing bounds how many events a briefing prompt lists.
const maxEventsInBriefing = 30

// PrepareBriefing generates an executive briefing over the events of a
// day or week.
func (s *Service) PrepareBriefing(ctx context.Context, events []*calendar.Event, briefingType BriefingType, dateDescription string) (*Briefing, error) {
	briefing := &Briefing{
		BriefingType: briefingType,
		Period:       dateDescription,
		EventCount:   len(events),
	}

	if len(events) == 0 {
		briefing.Briefing = fmt.Sprintf("Your %s calendar is clear. No events scheduled.", briefingType)
		return briefing, nil
	}

	includeSensitive := s.provider.PromptPrivate()
	shown := events
	if len(shown) > maxEventsInBriefing {
		shown = shown[:maxEventsInBriefing]
	}
	lines := make([]string, 0, len(shown))
	for _, event := range shown {
		title := event.Summary
		if title == "" {
			title = "Untitled"
		}
		detail := fmt.Sprintf("- %s: %s", schedule.FormatEventTime(event.Start), title)
		if includeSensitive && event.Location != "" {
			detail += " @ " + event.Location
		}
		if len(event.Attendees) > 0 {
			detail += fmt.Sprintf(" (%d attendees)", len(event.Attendees))
		}
		lines = append(lines, detail)
	}

	period := dateDescription
	if period == "" {
		period = "the upcoming schedule"
	}
	prompt := fmt.Sprintf("Prepare a %s briefing for %s:\n\n%s\n\nPlease provide:\n1. An executive summary of the day/week\n2. The 3-5 most important events to be aware of\n3. Any preparation needed for key meetings\n4. Scheduling concerns or tight transitions to note",
		briefingType, period, strings.Join(lines, "\n"))

	response, err := s.provider.Generate(ctx, prepareBriefingSystemPrompt, prompt, detailedSummaryTokens, defaultTemperature)
	if err != nil {
		return nil, err
	}

	briefing.Briefing = response
	return briefing, nil
}

package schedule

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// dateOnly is the layout of all-day event boundaries.
const dateOnly = "2006-01-02"

// EventTime returns the raw time string of an event boundary, handling
// both timed (dateTime) and all-day (date) forms.
func EventTime(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	if dt.DateTime != "" {
		return dt.DateTime
	}
	return dt.Date
}

// ParseEventTime parses an event boundary into a time.Time. The second
// return value is false when the boundary is absent or unparseable.
func ParseEventTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	if dt.Date != "" {
		parsed, err := time.Parse(dateOnly, dt.Date)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

// FormatEventTime renders an event boundary for human-readable display.
func FormatEventTime(dt *calendar.EventDateTime) string {
	if dt == nil {
		return "No time specified"
	}
	if dt.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return dt.DateTime
		}
		return parsed.Format("January 2, 2006 at 3:04 PM")
	}
	if dt.Date != "" {
		parsed, err := time.Parse(dateOnly, dt.Date)
		if err != nil {
			return dt.Date
		}
		return parsed.Format("January 2, 2006 (all day)")
	}
	return "No time specified"
}

// IsAllDay reports whether an event is an all-day event.
func IsAllDay(event *calendar.Event) bool {
	return event != nil && event.Start != nil && event.Start.Date != "" && event.Start.DateTime == ""
}

// EventDuration returns the length of an event. The second return value
// is false when either boundary is missing or unparseable.
func EventDuration(event *calendar.Event) (time.Duration, bool) {
	if event == nil {
		return 0, false
	}
	start, ok := ParseEventTime(event.Start)
	if !ok {
		return 0, false
	}
	end, ok := ParseEventTime(event.End)
	if !ok {
		return 0, false
	}
	if end.Before(start) {
		return 0, false
	}
	return end.Sub(start), true
}

// BusyIntervals extracts the busy intervals from a list of events.
// Events without parseable boundaries are skipped; the result is not
// sorted or merged.
func BusyIntervals(events []*calendar.Event) []TimeSlot {
	busy := make([]TimeSlot, 0, len(events))
	for _, event := range events {
		if event == nil {
			continue
		}
		start, ok := ParseEventTime(event.Start)
		if !ok {
			continue
		}
		end, ok := ParseEventTime(event.End)
		if !ok {
			continue
		}
		if !start.Before(end) {
			continue
		}
		busy = append(busy, TimeSlot{Start: start, End: end})
	}
	return busy
}

// TimeRange returns the range from now to daysAhead days in the future,
// in UTC.
func TimeRange(daysAhead int) (time.Time, time.Time) {
	now := time.Now().UTC()
	return now, now.AddDate(0, 0, daysAhead)
}

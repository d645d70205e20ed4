package llm

import (
	"fmt"
	"strings"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/schedule"
)

// maxDescriptionRunes bounds how much of an event description is
// embedded in a prompt.
const maxDescriptionRunes = 2000

// eventSummaryText builds the text block describing one event for a
// prompt. Descriptions and locations are sensitive and only included
// when the prompt stays on the local machine; the same goes for
// attendee identities, which otherwise collapse to a count.
func eventSummaryText(event *calendar.Event, includeSensitive bool) string {
	title := event.Summary
	if title == "" {
		title = "Untitled Event"
	}

	parts := []string{
		"Title: " + title,
		fmt.Sprintf("Time: %s to %s", schedule.FormatEventTime(event.Start), schedule.FormatEventTime(event.End)),
	}

	if includeSensitive {
		if event.Location != "" {
			parts = append(parts, "Location: "+event.Location)
		}
		if event.Description != "" {
			parts = append(parts, "Description: "+truncateRunes(event.Description, maxDescriptionRunes))
		}
		if len(event.Attendees) > 0 {
			parts = append(parts, "Attendees: "+formatAttendees(event.Attendees))
		}
	} else if len(event.Attendees) > 0 {
		parts = append(parts, fmt.Sprintf("Attendees: %d", len(event.Attendees)))
	}

	return strings.Join(parts, "\n")
}

// formatAttendees renders the attendee list for display.
func formatAttendees(attendees []*calendar.EventAttendee) string {
	formatted := make([]string, 0, len(attendees))
	for _, a := range attendees {
		if a == nil {
			continue
		}
		if a.DisplayName != "" {
			formatted = append(formatted, fmt.Sprintf("%s <%s> (%s)", a.DisplayName, a.Email, a.ResponseStatus))
		} else {
			formatted = append(formatted, fmt.Sprintf("%s (%s)", a.Email, a.ResponseStatus))
		}
	}
	return strings.Join(formatted, ", ")
}

// truncateRunes trims s to at most n runes, marking the cut.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

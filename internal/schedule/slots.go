package schedule

import (
	"fmt"
	"sort"
	"time"
)

// ValidationError indicates malformed caller input to a schedule
// computation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// TimeSlot is a half-open interval [Start, End). Invariant: Start < End.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the slot.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Preference biases the ordering of found slots by time of day.
type Preference string

const (
	PreferenceNone      Preference = ""
	PreferenceMorning   Preference = "morning"
	PreferenceAfternoon Preference = "afternoon"
)

// Options tune the free-slot search beyond the minimum duration.
type Options struct {
	// WorkingHoursOnly clips candidates to the working-day sub-range
	// [WorkingStartHour, WorkingEndHour) of each day.
	WorkingHoursOnly bool
	WorkingStartHour int
	WorkingEndHour   int

	// Preference orders matching slots first; chronological start
	// remains the tiebreaker.
	Preference Preference
}

// FindFreeSlots computes the free intervals of a search window given the
// busy intervals occupying it.
//
// Busy intervals are clipped to the window, merged into maximal disjoint
// intervals, and complemented; candidates shorter than minDuration are
// dropped. An empty busy list yields the whole window as one candidate.
// A fully busy window yields an empty result, not an error.
func FindFreeSlots(busy []TimeSlot, window TimeSlot, minDuration time.Duration, opts Options) ([]TimeSlot, error) {
	if minDuration <= 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("minimum duration must be positive, got %s", minDuration)}
	}
	if !window.Start.Before(window.End) {
		return nil, &ValidationError{Message: "window start must be before window end"}
	}
	if opts.WorkingHoursOnly {
		if opts.WorkingStartHour < 0 || opts.WorkingEndHour > 24 || opts.WorkingStartHour >= opts.WorkingEndHour {
			return nil, &ValidationError{Message: fmt.Sprintf("working hours %d-%d are not a valid range", opts.WorkingStartHour, opts.WorkingEndHour)}
		}
	}

	merged := Merge(clip(busy, window))

	candidates := complement(merged, window)

	if opts.WorkingHoursOnly {
		candidates = clipToWorkingHours(candidates, opts.WorkingStartHour, opts.WorkingEndHour)
	}

	free := candidates[:0]
	for _, slot := range candidates {
		if slot.Duration() >= minDuration {
			free = append(free, slot)
		}
	}

	if opts.Preference != PreferenceNone {
		sortByPreference(free, opts.Preference)
	}

	return free, nil
}

// clip restricts busy intervals to the window, discarding intervals that
// are degenerate or fall entirely outside it.
func clip(busy []TimeSlot, window TimeSlot) []TimeSlot {
	clipped := make([]TimeSlot, 0, len(busy))
	for _, b := range busy {
		if !b.Start.Before(b.End) {
			continue
		}
		if !b.End.After(window.Start) || !b.Start.Before(window.End) {
			continue
		}
		if b.Start.Before(window.Start) {
			b.Start = window.Start
		}
		if b.End.After(window.End) {
			b.End = window.End
		}
		clipped = append(clipped, b)
	}
	return clipped
}

// Merge collapses overlapping or adjacent intervals into maximal
// disjoint intervals sorted by start time. Merging an already-merged
// set returns it unchanged. The input slice is not modified.
func Merge(slots []TimeSlot) []TimeSlot {
	if len(slots) == 0 {
		return nil
	}

	sorted := make([]TimeSlot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []TimeSlot{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		// Adjacent intervals (s.Start == last.End) merge too: there is
		// no gap between half-open neighbors.
		if !s.Start.After(last.End) {
			if s.End.After(last.End) {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// complement walks merged disjoint intervals and returns the gaps they
// leave in the window.
func complement(merged []TimeSlot, window TimeSlot) []TimeSlot {
	var gaps []TimeSlot
	cursor := window.Start

	for _, b := range merged {
		if b.Start.After(cursor) {
			gaps = append(gaps, TimeSlot{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if cursor.Before(window.End) {
		gaps = append(gaps, TimeSlot{Start: cursor, End: window.End})
	}
	return gaps
}

// clipToWorkingHours intersects each candidate with the working-day
// range of every day it spans, splitting multi-day candidates and
// discarding pieces that end up empty.
func clipToWorkingHours(candidates []TimeSlot, startHour, endHour int) []TimeSlot {
	var clipped []TimeSlot
	for _, c := range candidates {
		day := time.Date(c.Start.Year(), c.Start.Month(), c.Start.Day(), 0, 0, 0, 0, c.Start.Location())
		for day.Before(c.End) {
			workStart := day.Add(time.Duration(startHour) * time.Hour)
			workEnd := day.Add(time.Duration(endHour) * time.Hour)

			pieceStart := maxTime(c.Start, workStart)
			pieceEnd := minTime(c.End, workEnd)
			if pieceStart.Before(pieceEnd) {
				clipped = append(clipped, TimeSlot{Start: pieceStart, End: pieceEnd})
			}

			day = day.AddDate(0, 0, 1)
		}
	}
	return clipped
}

// sortByPreference stable-sorts slots with the preferred time of day as
// the primary key. Input is chronological, so stability keeps the
// earliest start first within each class.
func sortByPreference(slots []TimeSlot, pref Preference) {
	matches := func(s TimeSlot) bool {
		morning := s.Start.Hour() < 12
		if pref == PreferenceMorning {
			return morning
		}
		return !morning
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return matches(slots[i]) && !matches(slots[j])
	})
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

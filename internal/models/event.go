package models

import "time"

// CalendarEvent represents a calendar event as handed over by a calendar source.
// This is an internal representation, independent of any specific calendar provider.
type CalendarEvent struct {
	ID          string    // Identifier of the event in its source calendar
	Summary     string    // Summary or title of the event
	Start       time.Time // Start time of the event, zero if the source did not supply one
	End         time.Time // End time of the event, zero if the source did not supply one
	AllDay      bool      // Date-only event without a time of day
	Transparent bool      // Marked as not blocking time (shows as available)
	Source      string    // The source of the event (e.g., "google-primary")
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether the two half-open intervals share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// BusyInterval is an interval occupied by a calendar event.
type BusyInterval struct {
	Interval
	Summary string
	EventID string
}

// DaySegment is the free/busy partition of a single calendar day.
type DaySegment struct {
	Date time.Time
	Free []Interval
	Busy []BusyInterval
}

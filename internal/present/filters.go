// Package present turns free/busy results and meetings into text for people.
package present

import (
	"time"

	"github.com/dustin/go-humanize"
)

const (
	badDate = "(bad date)"
	badTime = "(bad time)"
)

var inputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Humanize describes a date relative to now: "Today", "Tomorrow",
// "Yesterday", or a phrase such as "3 days from now". Text that can't be
// read as a date is returned unchanged.
func Humanize(text string, now time.Time) string {
	then, ok := parseInstant(text, now.Location())
	if !ok {
		return text
	}
	switch dayDiff(then, now) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	case -1:
		return "Yesterday"
	}
	return humanize.RelTime(midnight(then), midnight(now), "ago", "from now")
}

// FormatDate renders a date as "Mon 01/02/2006", or "(bad date)".
func FormatDate(text string) string {
	t, ok := parseInstant(text, time.Local)
	if !ok {
		return badDate
	}
	return t.Format("Mon 01/02/2006")
}

// FormatTime renders the time of day as "15:04", or "(bad time)".
func FormatTime(text string) string {
	t, ok := parseInstant(text, time.Local)
	if !ok {
		if t, err := time.Parse("15:04", text); err == nil {
			return t.Format("15:04")
		}
		return badTime
	}
	return t.Format("15:04")
}

func parseInstant(text string, loc *time.Location) (time.Time, bool) {
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayDiff counts calendar days from now to then.
func dayDiff(then, now time.Time) int {
	ty, tm, td := then.Date()
	ny, nm, nd := now.Date()
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

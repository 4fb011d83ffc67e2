// Package timeparse interprets the date and time text users type when they
// describe the window they want to meet in.
package timeparse

import (
	"fmt"
	"strings"
	"time"

	"meetme/internal/models"
)

var (
	// DateFormats are the accepted date spellings, shown to users on failure.
	DateFormats = []string{"12/31/2001"}
	// TimeFormats are the accepted time of day spellings, shown to users on failure.
	TimeFormats = []string{"3pm", "3:30pm", "3:30 pm", "15:30"}

	dateLayout  = "1/2/2006"
	timeLayouts = []string{"3pm", "3:04pm", "3:04 pm", "15:04"}
)

// FormatError reports text that matched none of the accepted formats.
type FormatError struct {
	Text     string
	Accepted []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%q didn't match accepted formats %s", e.Text, strings.Join(e.Accepted, ", "))
}

// ParseDate reads a month/day/year date and returns the start of that day in loc.
func ParseDate(text string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(text), loc)
	if err != nil {
		return time.Time{}, &FormatError{Text: text, Accepted: DateFormats}
	}
	return t, nil
}

// ParseTimeOfDay reads a time of day such as "3pm", "3:30 pm" or "15:30".
func ParseTimeOfDay(text string) (models.TimeOfDay, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, normalized)
		if err == nil {
			return models.TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return models.TimeOfDay{}, &FormatError{Text: text, Accepted: TimeFormats}
}

// ParseDateRange reads "MM/DD/YYYY - MM/DD/YYYY" and returns both days in loc.
func ParseDateRange(text string, loc *time.Location) (time.Time, time.Time, error) {
	parts := strings.Fields(text)
	if len(parts) != 3 || parts[1] != "-" {
		return time.Time{}, time.Time{}, &FormatError{Text: text, Accepted: []string{"12/01/2001 - 12/31/2001"}}
	}
	start, err := ParseDate(parts[0], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseDate(parts[2], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

package availability

import (
	"fmt"

	"meetme/internal/models"
)

// InvalidWindowError is returned when a window cannot be partitioned.
type InvalidWindowError struct {
	Window models.Window
	Reason string
}

func (e *InvalidWindowError) Error() string {
	return "invalid availability window: " + e.Reason
}

// MalformedEventError describes an event that was skipped because it lacks a
// usable start or end.
type MalformedEventError struct {
	Event  models.CalendarEvent
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event %q (id %s): %s", e.Event.Summary, e.Event.ID, e.Reason)
}

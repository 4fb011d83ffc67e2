package availability

import (
	"sort"

	"meetme/internal/models"
)

// NormalizeResult is the outcome of Normalize.
type NormalizeResult struct {
	// Busy holds the timed, blocking events sorted by start.
	Busy []models.BusyInterval
	// Transparent holds the timed events marked as free. They are kept for
	// display only and never reduce free time.
	Transparent []models.BusyInterval
	// Skipped lists the events that could not be used.
	Skipped []*MalformedEventError
}

// Normalize turns raw calendar events into busy intervals ordered by start.
// All-day events are dropped, as are zero-length ones. Overlapping events are
// kept as they are; Partition copes with overlap.
func Normalize(events []models.CalendarEvent) NormalizeResult {
	var res NormalizeResult
	for _, ev := range events {
		if ev.AllDay {
			continue
		}
		switch {
		case ev.Start.IsZero():
			res.Skipped = append(res.Skipped, &MalformedEventError{Event: ev, Reason: "missing start"})
			continue
		case ev.End.IsZero():
			res.Skipped = append(res.Skipped, &MalformedEventError{Event: ev, Reason: "missing end"})
			continue
		case ev.End.Before(ev.Start):
			res.Skipped = append(res.Skipped, &MalformedEventError{Event: ev, Reason: "ends before it starts"})
			continue
		case ev.End.Equal(ev.Start):
			continue
		}

		bi := models.BusyInterval{
			Interval: models.Interval{Start: ev.Start, End: ev.End},
			Summary:  ev.Summary,
			EventID:  ev.ID,
		}
		if ev.Transparent {
			res.Transparent = append(res.Transparent, bi)
		} else {
			res.Busy = append(res.Busy, bi)
		}
	}
	sortBusy(res.Busy)
	sortBusy(res.Transparent)
	return res
}

// MergeBusy combines the busy sets of several calendars into one ordered set.
func MergeBusy(lists ...[]models.BusyInterval) []models.BusyInterval {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	merged := make([]models.BusyInterval, 0, n)
	for _, l := range lists {
		merged = append(merged, l...)
	}
	sortBusy(merged)
	return merged
}

func sortBusy(busy []models.BusyInterval) {
	sort.SliceStable(busy, func(i, j int) bool {
		if !busy[i].Start.Equal(busy[j].Start) {
			return busy[i].Start.Before(busy[j].Start)
		}
		return busy[i].End.Before(busy[j].End)
	})
}

// Package availability computes free time inside an availability window from
// the busy intervals of one or more calendars.
package availability

import (
	"sync"
	"time"

	"meetme/internal/models"
)

// Partition splits every day of w into free and busy intervals.
//
// For each day the busy intervals overlapping the daily window are clipped to
// it and swept in start order with a cursor that only moves forward. A gap
// between the cursor and the next busy start is free time; what is left after
// the last busy interval is free time as well. Overlapping busy intervals are
// each reported, but free time never overlaps any of them.
func Partition(w models.Window, busy []models.BusyInterval) ([]models.DaySegment, error) {
	if err := w.Validate(); err != nil {
		return nil, &InvalidWindowError{Window: w, Reason: err.Error()}
	}

	sorted := MergeBusy(busy)

	days := w.Days()
	segments := make([]models.DaySegment, 0, len(days))
	first := 0
	for _, day := range days {
		dayStart, dayEnd := w.DayBounds(day)
		bounds := models.Interval{Start: dayStart, End: dayEnd}

		// Intervals that ended before today's window can't matter for any
		// later day either, as long as they sit at the front of the list.
		for first < len(sorted) && !sorted[first].End.After(dayStart) {
			first++
		}

		seg := models.DaySegment{Date: day}
		cursor := dayStart
		for _, b := range sorted[first:] {
			if !b.Start.Before(dayEnd) {
				break
			}
			if !b.Overlaps(bounds) {
				continue
			}
			clipped := clip(b.Interval, bounds)
			if clipped.Start.After(cursor) {
				seg.Free = append(seg.Free, models.Interval{Start: cursor, End: clipped.Start})
			}
			if clipped.End.After(cursor) {
				cursor = clipped.End
			}
			seg.Busy = append(seg.Busy, models.BusyInterval{
				Interval: clipped,
				Summary:  b.Summary,
				EventID:  b.EventID,
			})
		}
		if cursor.Before(dayEnd) {
			seg.Free = append(seg.Free, models.Interval{Start: cursor, End: dayEnd})
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// CalendarBusy is the busy set of one calendar.
type CalendarBusy struct {
	Calendar string
	Busy     []models.BusyInterval
}

// CalendarSegments is the partition computed for one calendar.
type CalendarSegments struct {
	Calendar string
	Segments []models.DaySegment
}

// PartitionAll partitions the window for every calendar concurrently. Results
// keep the order of calendars.
func PartitionAll(w models.Window, calendars []CalendarBusy) ([]CalendarSegments, error) {
	if err := w.Validate(); err != nil {
		return nil, &InvalidWindowError{Window: w, Reason: err.Error()}
	}

	results := make([]CalendarSegments, len(calendars))
	errs := make([]error, len(calendars))

	var wg sync.WaitGroup
	for i, cal := range calendars {
		wg.Add(1)
		go func(i int, cal CalendarBusy) {
			defer wg.Done()
			segs, err := Partition(w, cal.Busy)
			results[i] = CalendarSegments{Calendar: cal.Calendar, Segments: segs}
			errs[i] = err
		}(i, cal)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Intersect keeps, day by day, only the time that is free in both a and b.
// Days are matched by date; a day missing from either side has no free time.
// Busy intervals are not carried over.
func Intersect(a, b []models.DaySegment) []models.DaySegment {
	byDate := make(map[string]models.DaySegment, len(b))
	for _, seg := range b {
		byDate[seg.Date.Format(time.DateOnly)] = seg
	}

	out := make([]models.DaySegment, 0, len(a))
	for _, seg := range a {
		other, ok := byDate[seg.Date.Format(time.DateOnly)]
		res := models.DaySegment{Date: seg.Date}
		if ok {
			res.Free = intersectIntervals(seg.Free, other.Free)
		}
		out = append(out, res)
	}
	return out
}

// intersectIntervals expects both inputs sorted and free of overlap.
func intersectIntervals(a, b []models.Interval) []models.Interval {
	var out []models.Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := later(a[i].Start, b[j].Start)
		end := earlier(a[i].End, b[j].End)
		if start.Before(end) {
			out = append(out, models.Interval{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

func clip(iv, bounds models.Interval) models.Interval {
	return models.Interval{
		Start: later(iv.Start, bounds.Start),
		End:   earlier(iv.End, bounds.End),
	}
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

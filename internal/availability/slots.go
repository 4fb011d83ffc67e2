package availability

import (
	"time"

	"meetme/internal/models"
)

// Slots returns the meeting slots of length duration that fit entirely inside
// the free time of segments, trying a start every step within each free interval.
func Slots(segments []models.DaySegment, duration, step time.Duration) []models.Interval {
	if duration <= 0 || step <= 0 {
		return nil
	}
	var slots []models.Interval
	for _, seg := range segments {
		for _, free := range seg.Free {
			for t := free.Start; !t.Add(duration).After(free.End); t = t.Add(step) {
				slots = append(slots, models.Interval{Start: t, End: t.Add(duration)})
			}
		}
	}
	return slots
}

// FirstFit returns the earliest slot of length duration inside the free time.
func FirstFit(segments []models.DaySegment, duration time.Duration) (models.Interval, bool) {
	if duration <= 0 {
		return models.Interval{}, false
	}
	for _, seg := range segments {
		for _, free := range seg.Free {
			if free.Duration() >= duration {
				return models.Interval{Start: free.Start, End: free.Start.Add(duration)}, true
			}
		}
	}
	return models.Interval{}, false
}

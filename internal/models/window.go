package models

import (
	"errors"
	"fmt"
	"time"
)

// TimeOfDay is a wall clock time that is not bound to any date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

// On combines the time of day with the calendar date of day, in loc.
func (t TimeOfDay) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Window is the availability window a user asks free time for: an inclusive
// date range and a daily time range applied identically to every day.
type Window struct {
	StartDate  time.Time // Midnight of the first day, in Location
	EndDate    time.Time // Midnight of the last day, in Location
	DailyStart TimeOfDay
	DailyEnd   TimeOfDay
	Location   *time.Location
}

// NewWindow builds a Window and checks its invariants. Dates are truncated to
// midnight in loc; a nil loc means time.Local.
func NewWindow(startDate, endDate time.Time, dailyStart, dailyEnd TimeOfDay, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	w := Window{
		StartDate:  Midnight(startDate, loc),
		EndDate:    Midnight(endDate, loc),
		DailyStart: dailyStart,
		DailyEnd:   dailyEnd,
		Location:   loc,
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate returns an error describing the first broken invariant, if any.
func (w Window) Validate() error {
	if w.Location == nil {
		return errors.New("window has no location")
	}
	if !w.DailyStart.Before(w.DailyEnd) {
		return fmt.Errorf("daily start %s is not before daily end %s", w.DailyStart, w.DailyEnd)
	}
	if w.EndDate.Before(w.StartDate) {
		return fmt.Errorf("end date %s is before start date %s",
			w.EndDate.Format(time.DateOnly), w.StartDate.Format(time.DateOnly))
	}
	return nil
}

// Days returns the midnight of every day from StartDate to EndDate inclusive.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.StartDate; !d.After(w.EndDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DayBounds returns the daily window on the given day.
func (w Window) DayBounds(day time.Time) (time.Time, time.Time) {
	return w.DailyStart.On(day, w.Location), w.DailyEnd.On(day, w.Location)
}

// Bounds returns the overall range covered by the window: the opening of the
// first day up to the closing of the last day.
func (w Window) Bounds() (time.Time, time.Time) {
	from, _ := w.DayBounds(w.StartDate)
	_, to := w.DayBounds(w.EndDate)
	return from, to
}

// Midnight returns the start of t's calendar day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

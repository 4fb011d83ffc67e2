package models

import (
	"fmt"
	"time"
)

const (
	// Layouts used in persisted records and display blocks.
	RecordDateLayout  = "2006-01-02"
	ClockLayout       = "15:04"
	DayAndStartLayout = "01/02 15:04"
)

// BlockKind tells free blocks from busy ones.
type BlockKind string

const (
	BlockFree BlockKind = "free"
	BlockBusy BlockKind = "busy"
)

// FreeLabel is the label given to every free block.
const FreeLabel = "Free time"

// DisplayBlock is one line of a free/busy listing.
type DisplayBlock struct {
	Kind        BlockKind `json:"kind"`
	Label       string    `json:"label"`
	DayAndStart string    `json:"dayAndStart"` // e.g. "06/10 09:00"
	EndTime     string    `json:"endTime"`     // e.g. "10:00"
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// TimeRange is a persisted (start, end) pair of "HH:mm" times.
type TimeRange [2]string

// MeetingRecord is the persisted shape of a meeting and its available slots.
type MeetingRecord struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	PasswordHash string        `json:"passwordHash"`
	Comments     []string      `json:"comments"`
	DateRange    [2]string     `json:"dateRange"` // ISO dates
	TimeRange    TimeRange     `json:"timeRange"`
	FreeTime     [][]TimeRange `json:"freeTime"` // one list per day of DateRange
	CreatedAt    time.Time     `json:"createdAt"`
}

// NewMeetingRecord captures the window and its per-day free time.
func NewMeetingRecord(name, passwordHash string, w Window, freeTime [][]TimeRange) *MeetingRecord {
	return &MeetingRecord{
		Name:         name,
		PasswordHash: passwordHash,
		Comments:     []string{},
		DateRange: [2]string{
			w.StartDate.Format(RecordDateLayout),
			w.EndDate.Format(RecordDateLayout),
		},
		TimeRange: TimeRange{w.DailyStart.String(), w.DailyEnd.String()},
		FreeTime:  freeTime,
	}
}

// Window rebuilds the availability window the record was created for.
func (r *MeetingRecord) Window(loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	start, err := time.ParseInLocation(RecordDateLayout, r.DateRange[0], loc)
	if err != nil {
		return Window{}, fmt.Errorf("bad start date in record: %w", err)
	}
	end, err := time.ParseInLocation(RecordDateLayout, r.DateRange[1], loc)
	if err != nil {
		return Window{}, fmt.Errorf("bad end date in record: %w", err)
	}
	dailyStart, err := parseClock(r.TimeRange[0])
	if err != nil {
		return Window{}, err
	}
	dailyEnd, err := parseClock(r.TimeRange[1])
	if err != nil {
		return Window{}, err
	}
	return NewWindow(start, end, dailyStart, dailyEnd, loc)
}

// Segments rebuilds free-only day segments from the stored free time.
func (r *MeetingRecord) Segments(loc *time.Location) ([]DaySegment, error) {
	w, err := r.Window(loc)
	if err != nil {
		return nil, err
	}
	days := w.Days()
	if len(days) != len(r.FreeTime) {
		return nil, fmt.Errorf("record covers %d days but stores free time for %d", len(days), len(r.FreeTime))
	}

	segments := make([]DaySegment, 0, len(days))
	for i, day := range days {
		seg := DaySegment{Date: day}
		for _, tr := range r.FreeTime[i] {
			from, err := parseClock(tr[0])
			if err != nil {
				return nil, err
			}
			to, err := parseClock(tr[1])
			if err != nil {
				return nil, err
			}
			seg.Free = append(seg.Free, Interval{Start: from.On(day, w.Location), End: to.On(day, w.Location)})
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseClock(text string) (TimeOfDay, error) {
	t, err := time.Parse(ClockLayout, text)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("bad time %q in record: %w", text, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

package availability

import (
	"testing"
	"time"

	"meetme/internal/models"
)

func TestSlots(t *testing.T) {
	segs := []models.DaySegment{{
		Date: at(0, 0, 0),
		Free: []models.Interval{
			iv(at(0, 9, 0), at(0, 10, 0)),
			iv(at(0, 11, 0), at(0, 11, 20)),
		},
	}}
	slots := Slots(segs, 30*time.Minute, 15*time.Minute)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if !slots[2].Start.Equal(at(0, 9, 30)) || !slots[2].End.Equal(at(0, 10, 0)) {
		t.Fatalf("expected last slot 09:30-10:00, got %s-%s",
			slots[2].Start.Format("15:04"), slots[2].End.Format("15:04"))
	}
	if Slots(segs, 0, time.Minute) != nil {
		t.Fatal("expected no slots for a zero duration")
	}
}

func TestFirstFit(t *testing.T) {
	segs := []models.DaySegment{
		{Date: at(0, 0, 0), Free: []models.Interval{iv(at(0, 9, 0), at(0, 9, 20))}},
		{Date: at(1, 0, 0), Free: []models.Interval{iv(at(1, 13, 0), at(1, 17, 0))}},
	}
	slot, ok := FirstFit(segs, time.Hour)
	if !ok {
		t.Fatal("expected a slot")
	}
	if !slot.Start.Equal(at(1, 13, 0)) || !slot.End.Equal(at(1, 14, 0)) {
		t.Fatalf("unexpected slot %s - %s", slot.Start, slot.End)
	}
	if _, ok := FirstFit(segs, 5*time.Hour); ok {
		t.Fatal("expected no slot for five hours")
	}
}

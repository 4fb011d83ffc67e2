package availability

import (
	"testing"

	"meetme/internal/models"
)

func TestAssemble_ExampleDay(t *testing.T) {
	segs, err := Partition(window(t, 1), []models.BusyInterval{busy("label", at(0, 10, 0), at(0, 11, 0))})
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	asm := Assemble(segs)

	want := []models.DisplayBlock{
		{Kind: models.BlockFree, Label: models.FreeLabel, DayAndStart: "06/10 09:00", EndTime: "10:00"},
		{Kind: models.BlockBusy, Label: "label", DayAndStart: "06/10 10:00", EndTime: "11:00"},
		{Kind: models.BlockFree, Label: models.FreeLabel, DayAndStart: "06/10 11:00", EndTime: "17:00"},
	}
	if len(asm.Blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(asm.Blocks))
	}
	for i, w := range want {
		got := asm.Blocks[i]
		if got.Kind != w.Kind || got.Label != w.Label || got.DayAndStart != w.DayAndStart || got.EndTime != w.EndTime {
			t.Fatalf("block %d: expected %+v, got %+v", i, w, got)
		}
	}

	if len(asm.FreeTime) != 1 || len(asm.FreeTime[0]) != 2 {
		t.Fatalf("unexpected free time %v", asm.FreeTime)
	}
	if asm.FreeTime[0][0] != (models.TimeRange{"09:00", "10:00"}) || asm.FreeTime[0][1] != (models.TimeRange{"11:00", "17:00"}) {
		t.Fatalf("unexpected free time %v", asm.FreeTime)
	}
}

func TestAssemble_DaysInOrder(t *testing.T) {
	segs, err := Partition(window(t, 2), []models.BusyInterval{
		busy("Late start", at(1, 8, 0), at(1, 10, 0)),
		busy("All afternoon", at(0, 12, 0), at(0, 18, 0)),
	})
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	asm := Assemble(segs)

	var order []string
	for _, b := range asm.Blocks {
		order = append(order, b.DayAndStart+" "+b.Label)
	}
	want := []string{
		"06/10 09:00 Free time",
		"06/10 12:00 All afternoon",
		"06/11 09:00 Late start",
		"06/11 10:00 Free time",
	}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if len(asm.FreeTime) != 2 {
		t.Fatalf("expected one free time list per day, got %d", len(asm.FreeTime))
	}
}

func TestAssemble_FullyBusyDayKeepsEmptyList(t *testing.T) {
	segs, err := Partition(window(t, 1), []models.BusyInterval{busy("Offsite", at(0, 0, 0), at(0, 23, 0))})
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	asm := Assemble(segs)
	if len(asm.FreeTime) != 1 || asm.FreeTime[0] == nil || len(asm.FreeTime[0]) != 0 {
		t.Fatalf("expected one empty (non-nil) day, got %#v", asm.FreeTime)
	}
}

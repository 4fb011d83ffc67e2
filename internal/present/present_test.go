package present

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"meetme/internal/models"
)

func TestHumanize(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"2024-06-10":           "Today",
		"2024-06-10T23:59:00Z": "Today",
		"2024-06-11":           "Tomorrow",
		"2024-06-09T08:00:00Z": "Yesterday",
		"2024-06-13":           "3 days from now",
		"2024-06-07T09:00:00Z": "3 days ago",
		"not a date":           "not a date",
	}
	for in, want := range cases {
		if got := Humanize(in, now); got != want {
			t.Fatalf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatFilters(t *testing.T) {
	if got := FormatDate("2024-06-10"); got != "Mon 06/10/2024" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := FormatDate("06/10/2024"); got != "(bad date)" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := FormatTime("09:30"); got != "09:30" {
		t.Fatalf("FormatTime = %q", got)
	}
	if got := FormatTime("2024-06-10T14:05:00"); got != "14:05" {
		t.Fatalf("FormatTime = %q", got)
	}
	if got := FormatTime("half past"); got != "(bad time)" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestRenderBlocks(t *testing.T) {
	var buf bytes.Buffer
	err := RenderBlocks(&buf, "primary", []models.DisplayBlock{
		{Kind: models.BlockFree, Label: models.FreeLabel, DayAndStart: "06/10 09:00", EndTime: "10:00"},
		{Kind: models.BlockBusy, Label: "Standup", DayAndStart: "06/10 10:00", EndTime: "11:00"},
	})
	if err != nil {
		t.Fatalf("RenderBlocks failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "== primary") || !strings.Contains(out, "Standup") || !strings.Contains(out, "- 10:00") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRenderMeeting(t *testing.T) {
	rec := &models.MeetingRecord{
		ID:        "abc",
		Name:      "Planning",
		Comments:  []string{"", "bring snacks"},
		DateRange: [2]string{"2024-06-10", "2024-06-11"},
		TimeRange: models.TimeRange{"09:00", "17:00"},
		FreeTime:  [][]models.TimeRange{{{"09:00", "10:00"}}, {}},
	}
	var buf bytes.Buffer
	if err := RenderMeeting(&buf, rec, time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RenderMeeting failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Planning (abc)", "Mon 06/10/2024: 09:00-10:00", "Tue 06/11/2024: no free time", "> bring snacks", "starts Tomorrow"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

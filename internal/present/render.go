package present

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"meetme/internal/availability"
	"meetme/internal/models"
)

// CalendarRow is one line of a calendar listing.
type CalendarRow struct {
	Account  string
	ID       string
	Summary  string
	Primary  bool
	Selected bool
}

// RenderCalendars prints calendars as a table.
func RenderCalendars(w io.Writer, rows []CalendarRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tCALENDAR\tID\tFLAGS")
	for _, r := range rows {
		flags := ""
		if r.Primary {
			flags += "primary "
		}
		if r.Selected {
			flags += "selected"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Account, r.Summary, r.ID, flags)
	}
	return tw.Flush()
}

// RenderBlocks prints free and busy blocks in the order given.
func RenderBlocks(w io.Writer, title string, blocks []models.DisplayBlock) error {
	if title != "" {
		fmt.Fprintf(w, "== %s\n", title)
	}
	if len(blocks) == 0 {
		_, err := fmt.Fprintln(w, "(nothing in this window)")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, b := range blocks {
		marker := " "
		if b.Kind == models.BlockFree {
			marker = "+"
		}
		fmt.Fprintf(tw, "%s\t%s\t- %s\t%s\n", marker, b.DayAndStart, b.EndTime, b.Label)
	}
	return tw.Flush()
}

// RenderNotBlocking lists transparent events that were left out of the busy time.
func RenderNotBlocking(w io.Writer, events []models.BusyInterval) error {
	if len(events) == 0 {
		return nil
	}
	fmt.Fprintln(w, "Not blocking (marked free):")
	for _, ev := range events {
		fmt.Fprintf(w, "  %s - %s  %s\n",
			ev.Start.Format(models.DayAndStartLayout), ev.End.Format(models.ClockLayout), ev.Summary)
	}
	return nil
}

// RenderSkipped prints a notice for every event left out as malformed.
func RenderSkipped(w io.Writer, skipped []*availability.MalformedEventError) error {
	if len(skipped) == 0 {
		return nil
	}
	fmt.Fprintf(w, "Skipped %d event(s) with unusable times:\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(w, "  %s\n", s.Error())
	}
	return nil
}

// RenderMeeting prints a stored meeting with its free time per day.
func RenderMeeting(w io.Writer, rec *models.MeetingRecord, now time.Time) error {
	fmt.Fprintf(w, "%s (%s)\n", rec.Name, rec.ID)
	fmt.Fprintf(w, "  Dates: %s - %s (starts %s)\n",
		FormatDate(rec.DateRange[0]), FormatDate(rec.DateRange[1]), Humanize(rec.DateRange[0], now))
	fmt.Fprintf(w, "  Hours: %s - %s\n", FormatTime(rec.TimeRange[0]), FormatTime(rec.TimeRange[1]))
	if !rec.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Created: %s\n", Humanize(rec.CreatedAt.Format(time.RFC3339), now))
	}

	start, err := time.Parse(models.RecordDateLayout, rec.DateRange[0])
	for i, day := range rec.FreeTime {
		label := fmt.Sprintf("day %d", i+1)
		if err == nil {
			label = FormatDate(start.AddDate(0, 0, i).Format(time.DateOnly))
		}
		if len(day) == 0 {
			fmt.Fprintf(w, "  %s: no free time\n", label)
			continue
		}
		fmt.Fprintf(w, "  %s:", label)
		for _, tr := range day {
			fmt.Fprintf(w, " %s-%s", tr[0], tr[1])
		}
		fmt.Fprintln(w)
	}

	for _, c := range rec.Comments {
		if c == "" {
			continue
		}
		fmt.Fprintf(w, "  > %s\n", c)
	}
	return nil
}

// RenderMeetingList prints one line per stored meeting.
func RenderMeetingList(w io.Writer, recs []*models.MeetingRecord, now time.Time) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No meetings yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDATES\tHOURS\tSTARTS")
	for _, rec := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s - %s\t%s - %s\t%s\n",
			rec.ID, rec.Name,
			rec.DateRange[0], rec.DateRange[1],
			rec.TimeRange[0], rec.TimeRange[1],
			Humanize(rec.DateRange[0], now))
	}
	return tw.Flush()
}

package availability

import (
	"meetme/internal/models"
)

// Assembly is what callers render and persist.
type Assembly struct {
	// Blocks lists free and busy blocks in chronological order across all days.
	Blocks []models.DisplayBlock
	// FreeTime holds one list of "HH:mm" pairs per day, in day order.
	FreeTime [][]models.TimeRange
}

// Assemble flattens day segments into display blocks and the per-day free
// time pairs stored with a meeting.
func Assemble(segments []models.DaySegment) Assembly {
	asm := Assembly{FreeTime: make([][]models.TimeRange, 0, len(segments))}
	for _, seg := range segments {
		day := make([]models.TimeRange, 0, len(seg.Free))
		for _, iv := range seg.Free {
			day = append(day, models.TimeRange{
				iv.Start.Format(models.ClockLayout),
				iv.End.Format(models.ClockLayout),
			})
		}
		asm.FreeTime = append(asm.FreeTime, day)

		// Both lists are already in start order, so a plain merge suffices.
		// On equal starts the busy block goes first.
		f, b := 0, 0
		for f < len(seg.Free) || b < len(seg.Busy) {
			if b < len(seg.Busy) && (f == len(seg.Free) || !seg.Free[f].Start.Before(seg.Busy[b].Start)) {
				asm.Blocks = append(asm.Blocks, block(models.BlockBusy, seg.Busy[b].Summary, seg.Busy[b].Interval))
				b++
				continue
			}
			asm.Blocks = append(asm.Blocks, block(models.BlockFree, models.FreeLabel, seg.Free[f]))
			f++
		}
	}
	return asm
}

func block(kind models.BlockKind, label string, iv models.Interval) models.DisplayBlock {
	return models.DisplayBlock{
		Kind:        kind,
		Label:       label,
		DayAndStart: iv.Start.Format(models.DayAndStartLayout),
		EndTime:     iv.End.Format(models.ClockLayout),
		Start:       iv.Start,
		End:         iv.End,
	}
}

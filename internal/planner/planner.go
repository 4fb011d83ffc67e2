package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meetme/internal/availability"
	"meetme/internal/models"
	"meetme/internal/store"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds how many calendars are queried at once.
const maxConcurrentFetches = 4

// EventSource is a calendar the planner can read events from.
type EventSource interface {
	Name() string
	Events(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)
}

// CalendarPlan is the free/busy result of a single calendar.
type CalendarPlan struct {
	Source      string
	Segments    []models.DaySegment
	Assembly    availability.Assembly
	Transparent []models.BusyInterval
	Skipped     []*availability.MalformedEventError
}

// Plan is the free/busy result of all calendars for one window.
type Plan struct {
	Window    models.Window
	Calendars []CalendarPlan
	// Combined is the partition against the busy time of every calendar at once.
	Combined []models.DaySegment
	Assembly availability.Assembly
	// Failed lists the sources that could not be read.
	Failed []string
}

// Skipped returns the malformed events of every calendar.
func (p *Plan) Skipped() []*availability.MalformedEventError {
	var out []*availability.MalformedEventError
	for _, cal := range p.Calendars {
		out = append(out, cal.Skipped...)
	}
	return out
}

// Planner computes free time over a set of calendars and manages meetings.
type Planner struct {
	logger  *slog.Logger
	sources []EventSource
	store   store.Store
}

// New creates a Planner.
func New(logger *slog.Logger, sources []EventSource, st store.Store) *Planner {
	return &Planner{
		logger:  logger,
		sources: sources,
		store:   st,
	}
}

// FreeTime fetches every source for w and partitions each of them, as well as
// all of them together.
func (p *Planner) FreeTime(ctx context.Context, w models.Window) (*Plan, error) {
	if err := w.Validate(); err != nil {
		return nil, &availability.InvalidWindowError{Window: w, Reason: err.Error()}
	}
	if len(p.sources) == 0 {
		return nil, errors.New("no calendars configured")
	}

	p.logger.Info("Computing free time.",
		"from", w.StartDate.Format(time.DateOnly), "to", w.EndDate.Format(time.DateOnly),
		"daily", w.DailyStart.String()+"-"+w.DailyEnd.String(), "calendars", len(p.sources))

	fetched, err := p.fetchAll(ctx, w)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Window: w}
	var busySets []availability.CalendarBusy
	for i, src := range p.sources {
		events := fetched[i]
		if events == nil {
			plan.Failed = append(plan.Failed, src.Name())
			continue
		}
		norm := availability.Normalize(events)
		for _, skipped := range norm.Skipped {
			p.logger.Warn("Skipping malformed event", "calendar", src.Name(), "error", skipped)
		}
		plan.Calendars = append(plan.Calendars, CalendarPlan{
			Source:      src.Name(),
			Transparent: norm.Transparent,
			Skipped:     norm.Skipped,
		})
		busySets = append(busySets, availability.CalendarBusy{Calendar: src.Name(), Busy: norm.Busy})
	}
	if len(busySets) == 0 {
		return nil, fmt.Errorf("could not read any calendar: %v", plan.Failed)
	}

	perCalendar, err := availability.PartitionAll(w, busySets)
	if err != nil {
		return nil, err
	}
	lists := make([][]models.BusyInterval, 0, len(busySets))
	for i, res := range perCalendar {
		plan.Calendars[i].Segments = res.Segments
		plan.Calendars[i].Assembly = availability.Assemble(res.Segments)
		lists = append(lists, busySets[i].Busy)
	}

	plan.Combined, err = availability.Partition(w, availability.MergeBusy(lists...))
	if err != nil {
		return nil, err
	}
	plan.Assembly = availability.Assemble(plan.Combined)

	p.logger.Info("Free time computed.", "days", len(plan.Combined), "blocks", len(plan.Assembly.Blocks),
		"skipped", len(plan.Skipped()), "failed", len(plan.Failed))
	return plan, nil
}

// fetchAll reads every source concurrently. A source that fails leaves a nil
// entry; the error is logged and the others carry on.
func (p *Planner) fetchAll(ctx context.Context, w models.Window) ([][]models.CalendarEvent, error) {
	from, to := w.Bounds()
	results := make([][]models.CalendarEvent, len(p.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, src := range p.sources {
		i, src := i, src
		g.Go(func() error {
			events, err := src.Events(gctx, from, to)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				p.logger.Error("Could not fetch events for a calendar", "calendar", src.Name(), "error", err)
				return nil
			}
			if events == nil {
				events = []models.CalendarEvent{}
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return results, nil
}

// CreateMeeting stores the combined free time of plan as a new meeting.
func (p *Planner) CreateMeeting(ctx context.Context, plan *Plan, name, password, comment string) (*models.MeetingRecord, error) {
	if name == "" {
		return nil, errors.New("a meeting needs a name")
	}
	hash, err := store.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rec := models.NewMeetingRecord(name, hash, plan.Window, plan.Assembly.FreeTime)
	if comment != "" {
		rec.Comments = append(rec.Comments, comment)
	}
	rec.CreatedAt = time.Now().UTC()

	id, err := p.store.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to store meeting: %w", err)
	}
	rec.ID = id
	p.logger.Info("Meeting created.", "id", id, "name", name)
	return rec, nil
}

// OpenMeeting returns the meeting if password opens it.
func (p *Planner) OpenMeeting(ctx context.Context, id, password string) (*models.MeetingRecord, error) {
	rec, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := store.CheckPassword(rec, password); err != nil {
		return nil, err
	}
	return rec, nil
}

// JoinMeeting narrows a meeting's free time down to what is also free in the
// joining person's calendars, and records their comment.
func (p *Planner) JoinMeeting(ctx context.Context, id, password, comment string, loc *time.Location) (*models.MeetingRecord, *Plan, error) {
	rec, err := p.OpenMeeting(ctx, id, password)
	if err != nil {
		return nil, nil, err
	}
	w, err := rec.Window(loc)
	if err != nil {
		return nil, nil, err
	}
	existing, err := rec.Segments(loc)
	if err != nil {
		return nil, nil, err
	}

	plan, err := p.FreeTime(ctx, w)
	if err != nil {
		return nil, nil, err
	}

	rec.FreeTime = availability.Assemble(availability.Intersect(existing, plan.Combined)).FreeTime
	if comment != "" {
		rec.Comments = append(rec.Comments, comment)
	}
	if err := p.store.Update(ctx, rec); err != nil {
		return nil, nil, fmt.Errorf("failed to update meeting: %w", err)
	}
	p.logger.Info("Joined meeting.", "id", id, "name", rec.Name)
	return rec, plan, nil
}

// ListMeetings returns every stored meeting.
func (p *Planner) ListMeetings(ctx context.Context) ([]*models.MeetingRecord, error) {
	return p.store.List(ctx)
}

// DeleteMeeting removes a meeting if password opens it.
func (p *Planner) DeleteMeeting(ctx context.Context, id, password string) error {
	if _, err := p.OpenMeeting(ctx, id, password); err != nil {
		return err
	}
	if err := p.store.Delete(ctx, id); err != nil {
		return err
	}
	p.logger.Info("Meeting deleted.", "id", id)
	return nil
}

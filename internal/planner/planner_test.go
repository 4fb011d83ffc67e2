package planner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"meetme/internal/availability"
	"meetme/internal/models"
	"meetme/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(dayOffset, hh, mm int) time.Time {
	return time.Date(2024, 6, 10+dayOffset, hh, mm, 0, 0, time.UTC)
}

type fakeSource struct {
	name   string
	events []models.CalendarEvent
	err    error

	from, to time.Time
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Events(_ context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	f.from, f.to = from, to
	return f.events, f.err
}

func event(id, summary string, start, end time.Time) models.CalendarEvent {
	return models.CalendarEvent{ID: id, Summary: summary, Start: start, End: end}
}

func twoDayWindow(t *testing.T) models.Window {
	t.Helper()
	w, err := models.NewWindow(at(0, 0, 0), at(1, 0, 0),
		models.TimeOfDay{Hour: 9}, models.TimeOfDay{Hour: 17}, time.UTC)
	if err != nil {
		t.Fatalf("NewWindow failed: %v", err)
	}
	return w
}

func newFileStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewFileStore(testLogger(), filepath.Join(t.TempDir(), "meetings.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFreeTime_CombinesCalendars(t *testing.T) {
	work := &fakeSource{name: "work", events: []models.CalendarEvent{
		event("w1", "Standup", at(0, 10, 0), at(0, 11, 0)),
	}}
	home := &fakeSource{name: "home", events: []models.CalendarEvent{
		event("h1", "Dentist", at(0, 10, 30), at(0, 12, 0)),
		event("h2", "Broken", at(1, 12, 0), at(1, 11, 0)),
		{ID: "h3", Summary: "Holiday", Start: at(1, 0, 0), End: at(2, 0, 0), AllDay: true},
	}}
	broken := &fakeSource{name: "broken", err: errors.New("connection refused")}

	p := New(testLogger(), []EventSource{work, home, broken}, newFileStore(t))
	plan, err := p.FreeTime(context.Background(), twoDayWindow(t))
	if err != nil {
		t.Fatalf("FreeTime failed: %v", err)
	}

	if !work.from.Equal(at(0, 9, 0)) || !work.to.Equal(at(1, 17, 0)) {
		t.Fatalf("unexpected fetch range %s - %s", work.from, work.to)
	}
	if !reflect.DeepEqual(plan.Failed, []string{"broken"}) {
		t.Fatalf("expected broken to be reported as failed, got %v", plan.Failed)
	}
	if len(plan.Calendars) != 2 || plan.Calendars[0].Source != "work" || plan.Calendars[1].Source != "home" {
		t.Fatalf("unexpected calendars %+v", plan.Calendars)
	}
	if len(plan.Skipped()) != 1 || plan.Skipped()[0].Event.ID != "h2" {
		t.Fatalf("expected h2 to be skipped, got %v", plan.Skipped())
	}

	wantWork := [][]models.TimeRange{
		{{"09:00", "10:00"}, {"11:00", "17:00"}},
		{{"09:00", "17:00"}},
	}
	if !reflect.DeepEqual(plan.Calendars[0].Assembly.FreeTime, wantWork) {
		t.Fatalf("unexpected work free time %v", plan.Calendars[0].Assembly.FreeTime)
	}

	wantCombined := [][]models.TimeRange{
		{{"09:00", "10:00"}, {"12:00", "17:00"}},
		{{"09:00", "17:00"}},
	}
	if !reflect.DeepEqual(plan.Assembly.FreeTime, wantCombined) {
		t.Fatalf("unexpected combined free time %v", plan.Assembly.FreeTime)
	}
	if len(plan.Combined[0].Busy) != 2 {
		t.Fatalf("expected both busy events on the first day, got %v", plan.Combined[0].Busy)
	}
}

func TestFreeTime_AllSourcesFail(t *testing.T) {
	src := &fakeSource{name: "only", err: errors.New("boom")}
	p := New(testLogger(), []EventSource{src}, newFileStore(t))
	if _, err := p.FreeTime(context.Background(), twoDayWindow(t)); err == nil {
		t.Fatal("expected an error when no calendar could be read")
	}
}

func TestFreeTime_InvalidWindow(t *testing.T) {
	w := twoDayWindow(t)
	w.DailyStart, w.DailyEnd = w.DailyEnd, w.DailyStart

	p := New(testLogger(), []EventSource{&fakeSource{name: "x"}}, newFileStore(t))
	_, err := p.FreeTime(context.Background(), w)
	var winErr *availability.InvalidWindowError
	if !errors.As(err, &winErr) {
		t.Fatalf("expected InvalidWindowError, got %v", err)
	}
}

func TestMeetingLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newFileStore(t)

	organizer := &fakeSource{name: "organizer", events: []models.CalendarEvent{
		event("o1", "Review", at(0, 10, 0), at(0, 12, 0)),
	}}
	p := New(testLogger(), []EventSource{organizer}, st)
	plan, err := p.FreeTime(ctx, twoDayWindow(t))
	if err != nil {
		t.Fatalf("FreeTime failed: %v", err)
	}

	if _, err := p.CreateMeeting(ctx, plan, "", "pw", ""); err == nil {
		t.Fatal("expected an error for a meeting without a name")
	}
	rec, err := p.CreateMeeting(ctx, plan, "Offsite", "secret", "mornings preferred")
	if err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if rec.ID == "" || rec.PasswordHash == "secret" {
		t.Fatalf("unexpected record %+v", rec)
	}

	if _, err := p.OpenMeeting(ctx, rec.ID, "wrong"); !errors.Is(err, store.ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}

	guest := &fakeSource{name: "guest", events: []models.CalendarEvent{
		event("g1", "Lunch", at(1, 13, 0), at(1, 14, 0)),
	}}
	joiner := New(testLogger(), []EventSource{guest}, st)
	joined, _, err := joiner.JoinMeeting(ctx, rec.ID, "secret", "afternoons work too", time.UTC)
	if err != nil {
		t.Fatalf("JoinMeeting failed: %v", err)
	}
	want := [][]models.TimeRange{
		{{"09:00", "10:00"}, {"12:00", "17:00"}},
		{{"09:00", "13:00"}, {"14:00", "17:00"}},
	}
	if !reflect.DeepEqual(joined.FreeTime, want) {
		t.Fatalf("unexpected joined free time %v", joined.FreeTime)
	}

	stored, err := p.OpenMeeting(ctx, rec.ID, "secret")
	if err != nil {
		t.Fatalf("OpenMeeting failed: %v", err)
	}
	if !reflect.DeepEqual(stored.FreeTime, want) || len(stored.Comments) != 2 {
		t.Fatalf("join was not persisted: %+v", stored)
	}

	list, err := p.ListMeetings(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one meeting, got %d (%v)", len(list), err)
	}

	if err := p.DeleteMeeting(ctx, rec.ID, "wrong"); !errors.Is(err, store.ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword on delete, got %v", err)
	}
	if err := p.DeleteMeeting(ctx, rec.ID, "secret"); err != nil {
		t.Fatalf("DeleteMeeting failed: %v", err)
	}
	if _, err := p.OpenMeeting(ctx, rec.ID, "secret"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

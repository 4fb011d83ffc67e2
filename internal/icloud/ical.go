package icloud

import (
	"fmt"
	"strings"
	"time"

	"meetme/internal/models"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

const productID = "-//meetme//EN"

// ExpandEvents converts the VEVENTs of cal into calendar events overlapping
// [from, to). Recurring events are expanded with their RRULE, honoring EXDATE
// and instances overridden through RECURRENCE-ID.
func ExpandEvents(cal *ical.Calendar, from, to time.Time, loc *time.Location) ([]models.CalendarEvent, error) {
	overridden := make(map[string]map[int64]bool)
	for _, ev := range cal.Events() {
		rid := ev.Props.Get(ical.PropRecurrenceID)
		if rid == nil {
			continue
		}
		t, err := rid.DateTime(loc)
		if err != nil {
			continue
		}
		uid, _ := ev.Props.Text(ical.PropUID)
		if overridden[uid] == nil {
			overridden[uid] = make(map[int64]bool)
		}
		overridden[uid][t.Unix()] = true
	}

	var out []models.CalendarEvent
	for _, ev := range cal.Events() {
		base := toCalendarEvent(ev, loc)

		rule, err := ev.Props.RecurrenceRule()
		if err != nil {
			return nil, fmt.Errorf("bad RRULE on %q: %w", base.Summary, err)
		}
		if rule == nil || ev.Props.Get(ical.PropRecurrenceID) != nil || base.Start.IsZero() || base.End.IsZero() {
			out = append(out, base)
			continue
		}

		dur := base.End.Sub(base.Start)
		rule.Dtstart = base.Start
		r, err := rrule.NewRRule(*rule)
		if err != nil {
			return nil, fmt.Errorf("bad RRULE on %q: %w", base.Summary, err)
		}

		skip := exceptionDates(ev, loc)
		for uxt := range overridden[base.ID] {
			skip[uxt] = true
		}
		for _, occ := range r.Between(from.Add(-dur), to, true) {
			if skip[occ.Unix()] || !occ.Add(dur).After(from) {
				continue
			}
			inst := base
			inst.ID = fmt.Sprintf("%s@%s", base.ID, occ.UTC().Format("20060102T150405Z"))
			inst.Start = occ.In(loc)
			inst.End = occ.Add(dur).In(loc)
			out = append(out, inst)
		}
	}
	return out, nil
}

func toCalendarEvent(ev ical.Event, loc *time.Location) models.CalendarEvent {
	uid, _ := ev.Props.Text(ical.PropUID)
	summary, _ := ev.Props.Text(ical.PropSummary)
	out := models.CalendarEvent{ID: uid, Summary: summary}

	if p := ev.Props.Get(ical.PropTransparency); p != nil && strings.EqualFold(p.Value, "TRANSPARENT") {
		out.Transparent = true
	}

	p := ev.Props.Get(ical.PropDateTimeStart)
	if p == nil {
		return out
	}
	if p.ValueType() == ical.ValueDate {
		out.AllDay = true
	}
	if t, err := p.DateTime(loc); err == nil {
		out.Start = t.In(loc)
	}
	if out.Start.IsZero() {
		return out
	}
	if t, err := ev.DateTimeEnd(loc); err == nil && !t.IsZero() {
		out.End = t.In(loc)
	}
	return out
}

func exceptionDates(ev ical.Event, loc *time.Location) map[int64]bool {
	skip := make(map[int64]bool)
	for _, p := range ev.Props.Values(ical.PropExceptionDates) {
		for _, v := range strings.Split(p.Value, ",") {
			single := p
			single.Value = strings.TrimSpace(v)
			if t, err := single.DateTime(loc); err == nil {
				skip[t.Unix()] = true
			}
		}
	}
	return skip
}

// MeetingCalendar encodes the free slots of a meeting as transparent events,
// one per slot, so they can be imported without blocking anyone's time.
func MeetingCalendar(rec *models.MeetingRecord, loc *time.Location) (*ical.Calendar, error) {
	segments, err := rec.Segments(loc)
	if err != nil {
		return nil, err
	}

	cal := newCalendar()
	for _, seg := range segments {
		for _, slot := range seg.Free {
			// Stable UIDs let a re-export replace earlier imports.
			uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte(rec.ID+"/"+slot.Start.UTC().Format(time.RFC3339))).String()
			ve := meetingEvent(uid, rec, slot)
			ve.Props.SetText(ical.PropSummary, rec.Name+": free")
			ve.Props.SetText(ical.PropTransparency, "TRANSPARENT")
			cal.Children = append(cal.Children, ve)
		}
	}
	return cal, nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	return cal
}

// meetingEvent builds a VEVENT for a slot of the meeting.
func meetingEvent(uid string, rec *models.MeetingRecord, slot models.Interval) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, rec.Name)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, slot.Start.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, slot.End.UTC())
	if len(rec.Comments) > 0 {
		ve.Props.SetText(ical.PropDescription, strings.Join(rec.Comments, "\n"))
	}
	return ve
}

// GenerateUID creates a new unique identifier for an event.
func GenerateUID() string {
	return uuid.New().String()
}

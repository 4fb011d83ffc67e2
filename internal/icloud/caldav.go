package icloud

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"meetme/internal/models"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

const (
	// DefaultEndpoint is the iCloud CalDAV endpoint, used when none is configured.
	DefaultEndpoint = "https://caldav.icloud.com/"
)

// customTransport handles adding Basic Auth and custom headers to requests.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "meetme/1.0")
	return t.Transport.RoundTrip(req)
}

// CalDAVClient is a client for a CalDAV calendar (iCloud by default).
type CalDAVClient struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	logger       *slog.Logger
	endpoint     string
	calendarName string
	calendarPath string
}

// NewClient creates a CalDAVClient bound to the calendar named calendarName.
func NewClient(ctx context.Context, logger *slog.Logger, endpoint, username, password, calendarName string) (*CalDAVClient, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	transport := &customTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport, Timeout: 30 * time.Second}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	webdavClient, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	c := &CalDAVClient{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		logger:       logger,
		endpoint:     endpoint,
		calendarName: calendarName,
	}

	logger.Info("Finding CalDAV calendar", "calendarName", calendarName)
	calendarPath, err := c.findCalendar(ctx, calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Found CalDAV calendar", "path", calendarPath)

	return c, nil
}

// Name identifies the calendar in logs and listings.
func (c *CalDAVClient) Name() string {
	return "caldav:" + c.calendarName
}

// Events returns the calendar's events overlapping [from, to), with recurring
// events expanded into their instances.
func (c *CalDAVClient) Events(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{Name: ical.CompEvent, AllProps: true}},
		},
		CompFilter: caldav.CompFilter{
			Name:  ical.CompCalendar,
			Comps: []caldav.CompFilter{{Name: ical.CompEvent, Start: from, End: to}},
		},
	}

	objects, err := c.caldavClient.QueryCalendar(ctx, c.calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	var events []models.CalendarEvent
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		evs, err := ExpandEvents(obj.Data, from, to, from.Location())
		if err != nil {
			c.logger.Warn("Could not read calendar object", "path", obj.Path, "error", err)
			continue
		}
		for i := range evs {
			evs[i].Source = c.Name()
		}
		events = append(events, evs...)
	}

	c.logger.Info("Fetched events from CalDAV", "count", len(events), "calendar", c.calendarName)
	return events, nil
}

// PublishMeeting writes the agreed slot of a meeting as an event in the calendar.
func (c *CalDAVClient) PublishMeeting(ctx context.Context, rec *models.MeetingRecord, slot models.Interval) (string, error) {
	uid := GenerateUID()
	c.logger.Debug("Publishing meeting to CalDAV", "meeting", rec.Name, "uid", uid)

	cal := newCalendar()
	cal.Children = append(cal.Children, meetingEvent(uid, rec, slot))

	// The event path must be relative to the endpoint for the webdav client.
	eventPath := path.Join(c.calendarPath, fmt.Sprintf("%s.ics", uid))

	writer, err := c.webdavClient.Create(ctx, eventPath)
	if err != nil {
		return "", fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}

	if err := ical.NewEncoder(writer).Encode(cal); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to upload event: %w", err)
	}

	c.logger.Info("Published meeting to CalDAV", "meeting", rec.Name, "start", slot.Start)
	return uid, nil
}

// findCalendar discovers the user's calendars and returns the path of the one with the matching name.
func (c *CalDAVClient) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if strings.EqualFold(cal.Name, name) {
			return cal.Path, nil
		}
	}

	return "", fmt.Errorf("no calendar found with name '%s'", name)
}

package google

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"meetme/internal/models"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarClient provides a client for interacting with the Google Calendar API.
type CalendarClient struct {
	service *calendar.Service
	logger  *slog.Logger
	account string
}

// Calendar is an entry of the user's calendar list.
type Calendar struct {
	ID          string
	Summary     string
	Description string
	Selected    bool // Shown in the Google Calendar web app
	Primary     bool
}

// NewClient creates a new Google Calendar client.
// It handles loading credentials and setting up an authenticated HTTP client.
// Several accounts are supported through token files named token-<account>.json in tokenDir.
func NewClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, tokenDir, accountName string) (*CalendarClient, error) {
	config, err := getOAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	token, err := tokenFromFile(TokenPath(tokenDir, accountName))
	if err != nil {
		return nil, &CredentialError{Account: accountName, Err: err}
	}

	client := config.Client(ctx, token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &CalendarClient{service: service, logger: logger, account: accountName}, nil
}

// Account returns the name of the account the client is authenticated as.
func (c *CalendarClient) Account() string {
	return c.account
}

// ListCalendars returns the account's calendars, primary first, then the
// selected ones, each group ordered by summary.
func (c *CalendarClient) ListCalendars(ctx context.Context) ([]Calendar, error) {
	var cals []Calendar
	err := c.service.CalendarList.List().Pages(ctx, func(list *calendar.CalendarList) error {
		for _, item := range list.Items {
			cals = append(cals, Calendar{
				ID:          item.Id,
				Summary:     item.Summary,
				Description: item.Description,
				Selected:    item.Selected,
				Primary:     item.Primary,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}
	SortCalendars(cals)
	c.logger.Debug("Listed Google calendars", "account", c.account, "count", len(cals))
	return cals, nil
}

// SortCalendars orders calendars primary first, then selected, then by summary.
func SortCalendars(cals []Calendar) {
	sort.SliceStable(cals, func(i, j int) bool {
		a, b := cals[i], cals[j]
		if a.Primary != b.Primary {
			return a.Primary
		}
		if a.Selected != b.Selected {
			return a.Selected
		}
		return a.Summary < b.Summary
	})
}

// ListEvents fetches every event of calendarID overlapping [from, to),
// following page tokens until the list is exhausted. Recurring events are
// expanded into single instances by the API.
func (c *CalendarClient) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]models.CalendarEvent, error) {
	c.logger.Debug("Fetching events", "calendarID", calendarID, "from", from, "to", to)

	var items []*calendar.Event
	err := c.service.Events.List(calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	c.logger.Info("Fetched events from Google Calendar", "count", len(items), "calendarID", calendarID)
	return toCalendarEvents(items, calendarID, from.Location()), nil
}

// toCalendarEvents converts Google Calendar events to the internal model.
// Missing or unreadable times are left zero so that normalization reports them.
func toCalendarEvents(items []*calendar.Event, calendarID string, loc *time.Location) []models.CalendarEvent {
	events := make([]models.CalendarEvent, 0, len(items))
	for _, item := range items {
		if item.Status == "cancelled" {
			continue
		}
		ev := models.CalendarEvent{
			ID:          item.Id,
			Summary:     item.Summary,
			Transparent: item.Transparency == "transparent",
			Source:      fmt.Sprintf("google-%s", calendarID),
		}
		if item.Start != nil && item.Start.DateTime == "" && item.Start.Date != "" {
			// Date-only events have no time of day to intersect with.
			ev.AllDay = true
		}
		ev.Start = eventTime(item.Start, loc)
		ev.End = eventTime(item.End, loc)
		events = append(events, ev)
	}
	return events
}

func eventTime(dt *calendar.EventDateTime, loc *time.Location) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}
		}
		return t.In(loc)
	}
	if dt.Date != "" {
		t, err := time.ParseInLocation(time.DateOnly, dt.Date, loc)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	return time.Time{}
}

// CalendarSource exposes one Google calendar as an event source.
type CalendarSource struct {
	client     *CalendarClient
	calendarID string
}

// Source returns an event source reading calendarID through c.
func (c *CalendarClient) Source(calendarID string) *CalendarSource {
	return &CalendarSource{client: c, calendarID: calendarID}
}

// Name identifies the source in logs and listings.
func (s *CalendarSource) Name() string {
	return fmt.Sprintf("google:%s/%s", s.client.account, s.calendarID)
}

// Events fetches the calendar's events in [from, to).
func (s *CalendarSource) Events(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	return s.client.ListEvents(ctx, s.calendarID, from, to)
}

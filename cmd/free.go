package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"meetme/internal/availability"
	"meetme/internal/google"
	"meetme/internal/icloud"
	"meetme/internal/models"
	"meetme/internal/planner"
	"meetme/internal/present"
	"meetme/internal/timeparse"

	"github.com/urfave/cli/v2"
)

// windowFlags select the availability window. Empty values fall back to the
// config, and to the week starting tomorrow for the dates.
func windowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "dates", Aliases: []string{"d"}, Usage: `Date range, e.g. "06/10/2024 - 06/14/2024".`},
		&cli.StringFlag{Name: "from", Usage: `Start of the daily window, e.g. "9am".`},
		&cli.StringFlag{Name: "to", Usage: `End of the daily window, e.g. "5:30pm".`},
		&cli.StringSliceFlag{Name: "calendar", Usage: "Google calendar ID to read. Repeat for several; defaults to the config."},
	}
}

func calendarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendars",
		Usage: "List the calendars of every authenticated Google account.",
		Action: func(c *cli.Context) error {
			env, err := loadEnv(c)
			if err != nil {
				return err
			}
			clients, err := env.googleClients(c.Context)
			if err != nil {
				return err
			}
			if len(clients) == 0 {
				return errors.New("no google accounts found. Run the 'auth' command first")
			}

			var rows []present.CalendarRow
			for _, client := range clients {
				cals, err := client.ListCalendars(c.Context)
				if err != nil {
					env.logger.Error("Could not list calendars", "account", client.Account(), "error", err)
					continue
				}
				for _, cal := range cals {
					rows = append(rows, present.CalendarRow{
						Account:  client.Account(),
						ID:       cal.ID,
						Summary:  cal.Summary,
						Primary:  cal.Primary,
						Selected: cal.Selected,
					})
				}
			}
			return present.RenderCalendars(c.App.Writer, rows)
		},
	}
}

func freeCommand() *cli.Command {
	return &cli.Command{
		Name:  "free",
		Usage: "Show free and busy time in a window, per calendar and across all of them.",
		Flags: append(windowFlags(),
			&cli.BoolFlag{Name: "combined", Usage: "Only show the result across all calendars."},
			&cli.BoolFlag{Name: "json", Usage: "Print the combined result as JSON."},
		),
		Action: func(c *cli.Context) error {
			env, err := loadEnv(c)
			if err != nil {
				return err
			}
			w, err := env.windowFromFlags(c, time.Now())
			if err != nil {
				return err
			}
			sources, err := env.sources(c.Context, c.StringSlice("calendar"))
			if err != nil {
				return err
			}

			plan, err := planner.New(env.logger, sources, nil).FreeTime(c.Context, w)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, plan.Assembly)
			}
			return renderPlan(c.App.Writer, plan, !c.Bool("combined"))
		},
	}
}

func renderPlan(out io.Writer, plan *planner.Plan, perCalendar bool) error {
	if perCalendar && len(plan.Calendars) > 1 {
		for _, cal := range plan.Calendars {
			if err := present.RenderBlocks(out, cal.Source, cal.Assembly.Blocks); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
	}
	if err := present.RenderBlocks(out, "All calendars", plan.Assembly.Blocks); err != nil {
		return err
	}
	for _, cal := range plan.Calendars {
		if err := present.RenderNotBlocking(out, cal.Transparent); err != nil {
			return err
		}
	}
	if err := present.RenderSkipped(out, plan.Skipped()); err != nil {
		return err
	}
	for _, name := range plan.Failed {
		fmt.Fprintf(out, "Could not read %s; its events are not included.\n", name)
	}
	return nil
}

func writeJSON(out io.Writer, asm availability.Assembly) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Blocks   []models.DisplayBlock `json:"blocks"`
		FreeTime [][]models.TimeRange  `json:"freeTime"`
	}{asm.Blocks, asm.FreeTime})
}

func (e *appEnv) windowFromFlags(c *cli.Context, now time.Time) (models.Window, error) {
	from, to := c.String("from"), c.String("to")
	if from == "" {
		from = e.cfg.DailyStart
	}
	if to == "" {
		to = e.cfg.DailyEnd
	}
	return buildWindow(c.String("dates"), from, to, e.loc, now)
}

// buildWindow turns user input into a window. An empty dates value means the
// seven days starting tomorrow.
func buildWindow(dates, from, to string, loc *time.Location, now time.Time) (models.Window, error) {
	var start, end time.Time
	if dates == "" {
		start = models.Midnight(now, loc).AddDate(0, 0, 1)
		end = start.AddDate(0, 0, 6)
	} else {
		var err error
		start, end, err = timeparse.ParseDateRange(dates, loc)
		if err != nil {
			return models.Window{}, err
		}
	}

	dailyStart, err := timeparse.ParseTimeOfDay(from)
	if err != nil {
		return models.Window{}, err
	}
	dailyEnd, err := timeparse.ParseTimeOfDay(to)
	if err != nil {
		return models.Window{}, err
	}

	w, err := models.NewWindow(start, end, dailyStart, dailyEnd, loc)
	if err != nil {
		return models.Window{}, &availability.InvalidWindowError{Window: w, Reason: err.Error()}
	}
	return w, nil
}

// googleClients creates a client for every account with a saved token. An
// account whose token cannot be used is logged and left out.
func (e *appEnv) googleClients(ctx context.Context) ([]*google.CalendarClient, error) {
	accounts, err := google.GetTokenAccounts(e.cfg.Google.TokenDir)
	if err != nil {
		return nil, fmt.Errorf("could not look for google accounts in %s: %w", e.cfg.Google.TokenDir, err)
	}

	var clients []*google.CalendarClient
	for _, acc := range accounts {
		client, err := google.NewClient(ctx, e.logger, e.cfg.Google.ClientID, e.cfg.Google.ClientSecret, e.cfg.Google.TokenDir, acc)
		if err != nil {
			var credErr *google.CredentialError
			if errors.As(err, &credErr) {
				e.logger.Warn("Skipping google account", "account", acc, "error", err)
				continue
			}
			return nil, fmt.Errorf("failed to create google client for account %s: %w", acc, err)
		}
		clients = append(clients, client)
	}
	e.logger.Debug("Initialized Google clients.", "count", len(clients))
	return clients, nil
}

// sources builds the event sources to read: the given Google calendars (or
// the configured ones) of every account, plus the CalDAV calendar if set up.
func (e *appEnv) sources(ctx context.Context, calendarIDs []string) ([]planner.EventSource, error) {
	if len(calendarIDs) == 0 {
		calendarIDs = e.cfg.Google.CalendarIDs
	}

	clients, err := e.googleClients(ctx)
	if err != nil && !e.cfg.CalDAV.Enabled() {
		return nil, err
	}
	if err != nil {
		e.logger.Warn("Google calendars unavailable", "error", err)
	}

	var sources []planner.EventSource
	for _, client := range clients {
		for _, id := range calendarIDs {
			sources = append(sources, client.Source(id))
		}
	}

	if e.cfg.CalDAV.Enabled() {
		client, err := e.caldavClient(ctx)
		if err != nil {
			return nil, err
		}
		sources = append(sources, client)
	}

	if len(sources) == 0 {
		return nil, errors.New("no calendars to read. Run the 'auth' command or configure a CalDAV calendar")
	}
	return sources, nil
}

func (e *appEnv) caldavClient(ctx context.Context) (*icloud.CalDAVClient, error) {
	cd := e.cfg.CalDAV
	client, err := icloud.NewClient(ctx, e.logger, cd.Endpoint, cd.Username, cd.Password, cd.CalendarName)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

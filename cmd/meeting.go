package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"meetme/internal/availability"
	"meetme/internal/icloud"
	"meetme/internal/planner"
	"meetme/internal/present"
	"meetme/internal/store"

	"github.com/emersion/go-ical"
	"github.com/urfave/cli/v2"
)

func passwordFlag() cli.Flag {
	return &cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Meeting password.", EnvVars: []string{"MEETME_PASSWORD"}}
}

func commentFlag() cli.Flag {
	return &cli.StringFlag{Name: "comment", Usage: "A note for the other participants."}
}

func durationFlag() cli.Flag {
	return &cli.DurationFlag{Name: "duration", Value: 30 * time.Minute, Usage: "Length of the meeting."}
}

func meetingCommand() *cli.Command {
	return &cli.Command{
		Name:  "meeting",
		Usage: "Share free time with others and narrow it down together.",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Save your free time in a window as a new meeting.",
				ArgsUsage: "NAME",
				Flags:     append(windowFlags(), passwordFlag(), commentFlag()),
				Action:    createMeeting,
			},
			{
				Name:   "list",
				Usage:  "List saved meetings.",
				Action: listMeetings,
			},
			{
				Name:      "show",
				Usage:     "Show the free time left in a meeting.",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{passwordFlag()},
				Action:    showMeeting,
			},
			{
				Name:      "join",
				Usage:     "Narrow a meeting down to the time you are free too.",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{passwordFlag(), commentFlag(), &cli.StringSliceFlag{Name: "calendar", Usage: "Google calendar ID to read."}},
				Action:    joinMeeting,
			},
			{
				Name:      "slots",
				Usage:     "List every start time that fits a meeting of the given length.",
				ArgsUsage: "ID",
				Flags: []cli.Flag{passwordFlag(), durationFlag(),
					&cli.DurationFlag{Name: "step", Value: 30 * time.Minute, Usage: "Distance between candidate starts."}},
				Action: meetingSlots,
			},
			{
				Name:      "export",
				Usage:     "Write the meeting's free time to an iCalendar file.",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{passwordFlag(), &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file. Defaults to stdout."}},
				Action:    exportMeeting,
			},
			{
				Name:      "publish",
				Usage:     "Book the earliest free slot on the CalDAV calendar.",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{passwordFlag(), durationFlag()},
				Action:    publishMeeting,
			},
			{
				Name:      "delete",
				Usage:     "Delete a meeting.",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{passwordFlag()},
				Action:    deleteMeeting,
			},
		},
	}
}

// withPlanner loads the config, opens the store and runs fn with a planner.
// Sources are only set up when withSources is true.
func withPlanner(c *cli.Context, withSources bool, fn func(env *appEnv, p *planner.Planner) error) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	st, err := store.Open(c.Context, env.logger, env.cfg.Store.Driver, env.cfg.Store.Path, env.cfg.Store.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open meeting store: %w", err)
	}
	defer st.Close()

	var sources []planner.EventSource
	if withSources {
		sources, err = env.sources(c.Context, c.StringSlice("calendar"))
		if err != nil {
			return err
		}
	}
	return fn(env, planner.New(env.logger, sources, st))
}

func firstArg(c *cli.Context, what string) (string, error) {
	if c.NArg() < 1 || c.Args().First() == "" {
		return "", fmt.Errorf("missing meeting %s", what)
	}
	return c.Args().First(), nil
}

func createMeeting(c *cli.Context) error {
	name, err := firstArg(c, "name")
	if err != nil {
		return err
	}
	return withPlanner(c, true, func(env *appEnv, p *planner.Planner) error {
		w, err := env.windowFromFlags(c, time.Now())
		if err != nil {
			return err
		}
		plan, err := p.FreeTime(c.Context, w)
		if err != nil {
			return err
		}
		if err := renderPlan(c.App.Writer, plan, false); err != nil {
			return err
		}
		rec, err := p.CreateMeeting(c.Context, plan, name, c.String("password"), c.String("comment"))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "\nSaved meeting %q. Share this ID: %s\n", rec.Name, rec.ID)
		return nil
	})
}

func listMeetings(c *cli.Context) error {
	return withPlanner(c, false, func(_ *appEnv, p *planner.Planner) error {
		recs, err := p.ListMeetings(c.Context)
		if err != nil {
			return err
		}
		return present.RenderMeetingList(c.App.Writer, recs, time.Now())
	})
}

func showMeeting(c *cli.Context) error {
	id, err := firstArg(c, "id")
	if err != nil {
		return err
	}
	return withPlanner(c, false, func(_ *appEnv, p *planner.Planner) error {
		rec, err := p.OpenMeeting(c.Context, id, c.String("password"))
		if err != nil {
			return err
		}
		return present.RenderMeeting(c.App.Writer, rec, time.Now())
	})
}

func joinMeeting(c *cli.Context) error {
	id, err := firstArg(c, "id")
	if err != nil {
		return err
	}
	return withPlanner(c, true, func(env *appEnv, p *planner.Planner) error {
		rec, plan, err := p.JoinMeeting(c.Context, id, c.String("password"), c.String("comment"), env.loc)
		if err != nil {
			return err
		}
		if err := present.RenderSkipped(c.App.Writer, plan.Skipped()); err != nil {
			return err
		}
		return present.RenderMeeting(c.App.Writer, rec, time.Now())
	})
}

func meetingSlots(c *cli.Context) error {
	id, err := firstArg(c, "id")
	if err != nil {
		return err
	}
	return withPlanner(c, false, func(env *appEnv, p *planner.Planner) error {
		rec, err := p.OpenMeeting(c.Context, id, c.String("password"))
		if err != nil {
			return err
		}
		segments, err := rec.Segments(env.loc)
		if err != nil {
			return err
		}
		slots := availability.Slots(segments, c.Duration("duration"), c.Duration("step"))
		if len(slots) == 0 {
			fmt.Fprintf(c.App.Writer, "No free slot of %s left in %q.\n", c.Duration("duration"), rec.Name)
			return nil
		}
		for _, s := range slots {
			fmt.Fprintf(c.App.Writer, "%s - %s\n", s.Start.Format("Mon 01/02 15:04"), s.End.Format("15:04"))
		}
		return nil
	})
}

func exportMeeting(c *cli.Context) error {
	id, err := firstArg(c, "id")
	if err != nil {
		return err
	}
	return withPlanner(c, false, func(env *appEnv, p *planner.Planner) error {
		rec, err := p.OpenMeeting(c.Context, id, c.String("password"))
		if err != nil {
			return err
		}
		cal, err := icloud.MeetingCalendar(rec, env.loc)
		if err != nil {
			return err
		}
		if len(cal.Children) == 0 {
			return errors.New("the meeting has no free time left to export")
		}

		out := c.App.Writer
		if path := c.String("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			defer f.Close()
			out = f
		}
		if err := ical.NewEncoder(out).Encode(cal); err != nil {
			return fmt.Errorf("failed to encode calendar: %w", err)
		}
		env.logger.Info("Exported meeting.", "id", rec.ID, "slots", len(cal.Children))
		return nil
	})
}

func publishMeeting(c *cli.Context) error {
	id, err := firstArg(c, "id")
	if err != nil {
		return err
	}
	return withPlanner(c, false, func(env *appEnv, p *planner.Planner) error {
		if !env.cfg.CalDAV.Enabled() {
			return errors.New("no CalDAV calendar configured to publish to")
		}
		rec, err := p.OpenMeeting(c.Context, id, c.String("password"))
		if err != nil {
			return err
		}
		segments, err := rec.Segments(env.loc)
		if err != nil {
			return err
		}
		slot, ok := availability.FirstFit(segments, c.Duration("duration"))
		if !ok {
			return fmt.Errorf("no free slot of %s left in %q", c.Duration("duration"), rec.Name)
		}

		client, err := env.caldavClient(c.Context)
		if err != nil {
			return err
		}
		uid, err := client.PublishMeeting(c.Context, rec, slot)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Booked %q on %s (%s - %s), event %s\n", rec.Name,
			present.FormatDate(slot.Start.Format(time.DateOnly)),
			slot.Start.Format("15:04"), slot.End.Format("15:04"), uid)
		return nil
	})
}

func deleteMeeting(c *cli.Context) error {
	id, err := firstArg(c, "id")
	if err != nil {
		return err
	}
	return withPlanner(c, false, func(_ *appEnv, p *planner.Planner) error {
		if err := p.DeleteMeeting(c.Context, id, c.String("password")); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Deleted meeting %s\n", id)
		return nil
	})
}

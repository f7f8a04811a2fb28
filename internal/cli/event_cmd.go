package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/yosuakev/learnful/internal/cli/formatter"
	"github.com/yosuakev/learnful/internal/domain"
)

func newEventCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"events", "e"},
		Short:   "Manage calendar events",
	}

	cmd.AddCommand(
		newEventListCmd(app),
		newEventAddCmd(app),
		newEventRemoveCmd(app),
	)

	return cmd
}

func newEventListCmd(app *App) *cobra.Command {
	var all bool
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List upcoming events by start time",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := app.now()

			var events []domain.CalendarEvent
			for _, e := range app.Gateways.Events.List(ctx, app.owner(ctx)) {
				if !all {
					if e.EndTime.Before(now) {
						continue
					}
					if days > 0 && e.StartTime.After(now.AddDate(0, 0, days)) {
						continue
					}
				}
				events = append(events, e)
			}
			sort.SliceStable(events, func(i, j int) bool {
				return events[i].StartTime.Before(events[j].StartTime)
			})

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEventList(events, now))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include past events")
	cmd.Flags().IntVar(&days, "days", 0, "Only events starting within N days")

	return cmd
}

func newEventAddCmd(app *App) *cobra.Command {
	var start, end, eventType, description, goalFlag, category string
	var duration time.Duration
	var allDay, recurring bool
	var reminders []string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a calendar event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := app.now()

			startAt, err := parseWhen(start, now)
			if err != nil {
				return err
			}
			endAt := startAt.Add(duration)
			if end != "" {
				if endAt, err = parseWhen(end, now); err != nil {
					return err
				}
			}
			if allDay {
				y, m, d := startAt.Date()
				startAt = time.Date(y, m, d, 0, 0, 0, 0, startAt.Location())
				if !endAt.After(startAt) {
					endAt = startAt.AddDate(0, 0, 1)
				}
			}

			in := domain.CalendarEventInput{
				Title:       args[0],
				Description: description,
				StartTime:   startAt,
				EndTime:     endAt,
				AllDay:      allDay,
				EventType:   eventType,
				Reminders:   reminders,
				Recurring:   recurring,
			}
			if goalFlag != "" {
				goal, err := resolveGoal(ctx, app, goalFlag)
				if err != nil {
					return err
				}
				in.GoalID = &goal.ID
			}
			if category != "" {
				id, err := resolveCategoryID(ctx, app, category)
				if err != nil {
					return err
				}
				in.CategoryID = &id
			}

			e, err := app.Gateways.Events.Create(ctx, in, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created event %s %s %s\n",
				formatter.Bold(e.Title), formatter.EventWhen(e, now), formatter.Dim(e.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start time, e.g. \"tomorrow 3pm\"")
	cmd.Flags().StringVar(&end, "end", "", "End time (overrides --duration)")
	cmd.Flags().DurationVar(&duration, "duration", time.Hour, "Length of the event")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day event")
	cmd.Flags().StringVar(&eventType, "type", "", "Event type (default personal)")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "Description")
	cmd.Flags().StringSliceVar(&reminders, "remind", nil, "Reminder offsets, e.g. 15m,1h")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "Mark as recurring")
	cmd.Flags().StringVar(&goalFlag, "goal", "", "Link to a learning goal")
	cmd.Flags().StringVar(&category, "category", "", "Category name or ID")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newEventRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a calendar event",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveEventID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirmDestructive(fmt.Sprintf("Delete event %s?", id), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Gateways.Events.Delete(ctx, id, app.owner(ctx)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

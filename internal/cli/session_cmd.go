package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yosuakev/learnful/internal/cli/formatter"
	"github.com/yosuakev/learnful/internal/domain"
)

func newSessionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"sessions", "s"},
		Short:   "Manage study sessions",
	}

	cmd.AddCommand(
		newSessionLogCmd(app),
		newSessionListCmd(app),
		newSessionRemoveCmd(app),
	)

	return cmd
}

func newSessionLogCmd(app *App) *cobra.Command {
	var goalFlag, date, notes string
	var minutes, efficiency int
	var credit bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a study session by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			goal, err := resolveGoal(ctx, app, goalFlag)
			if err != nil {
				return err
			}
			in := domain.StudySessionInput{
				GoalID:     goal.ID,
				Duration:   minutes,
				Efficiency: efficiency,
				Notes:      notes,
			}
			if date != "" {
				if in.SessionDate, err = parseWhen(date, app.now()); err != nil {
					return err
				}
			}

			s, err := app.Gateways.Sessions.Create(ctx, in, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s for %s %s\n",
				formatter.FormatMinutes(s.Duration), formatter.Bold(goal.Title), formatter.Dim(s.ID))

			if credit {
				updated, err := app.Gateways.Goals.AddProgress(ctx, goal.ID, s.Duration, app.owner(ctx))
				if err != nil {
					return &domain.PartialCompletionError{GoalID: goal.ID, Minutes: s.Duration, SessionLogged: true, Err: err}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  Goal progress now %s\n", formatter.FormatMinutes(updated.CurrentProgress))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&goalFlag, "goal", "", "Goal title or ID")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Session duration in minutes")
	cmd.Flags().IntVar(&efficiency, "efficiency", 100, "Self-rated efficiency, 0-100")
	cmd.Flags().StringVar(&date, "date", "", "When the session happened (default now)")
	cmd.Flags().StringVar(&notes, "notes", "", "Session notes")
	cmd.Flags().BoolVar(&credit, "credit", true, "Also add the minutes to the goal's progress")
	_ = cmd.MarkFlagRequired("goal")
	_ = cmd.MarkFlagRequired("minutes")

	return cmd
}

func newSessionListCmd(app *App) *cobra.Command {
	var goalFlag string
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List study sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := app.now()

			var sessions []domain.StudySession
			if goalFlag != "" {
				goal, err := resolveGoal(ctx, app, goalFlag)
				if err != nil {
					return err
				}
				sessions = app.Gateways.Sessions.ListByGoal(ctx, goal.ID, app.owner(ctx))
			} else {
				sessions = app.Gateways.Sessions.List(ctx, app.owner(ctx))
				sort.SliceStable(sessions, func(i, j int) bool {
					return sessions[i].SessionDate.After(sessions[j].SessionDate)
				})
			}

			if days > 0 {
				since := now.AddDate(0, 0, -days)
				kept := sessions[:0]
				for _, s := range sessions {
					if !s.SessionDate.Before(since) {
						kept = append(kept, s)
					}
				}
				sessions = kept
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionList(sessions, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&goalFlag, "goal", "", "Filter by goal title or ID")
	cmd.Flags().IntVar(&days, "days", 0, "Only sessions from the last N days")

	return cmd
}

func newSessionRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a study session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSessionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirmDestructive(fmt.Sprintf("Delete session %s?", id), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Gateways.Sessions.Delete(ctx, id, app.owner(ctx)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yosuakev/learnful/internal/cli/formatter"
	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/timer"
)

func newTimerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Time study sessions per goal",
		Long: "Timers survive restarts: elapsed time is derived from the stored start\n" +
			"time, so a timer keeps counting while learnful is not running.",
	}

	cmd.AddCommand(
		newTimerStartCmd(app),
		newTimerPauseCmd(app),
		newTimerResumeCmd(app),
		newTimerCompleteCmd(app),
		newTimerCloseCmd(app),
		newTimerStatusCmd(app),
		newTimerWatchCmd(app),
	)

	return cmd
}

func newTimerStartCmd(app *App) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "start <goal>",
		Short: "Start or resume a goal's timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			goal, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			rec, err := app.Timers.Start(ctx, goal.ID)
			if err != nil {
				return err
			}
			if watch && app.interactive() {
				return runWatch(ctx, app, goal)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.TimerLine(goal.Title, rec, rec.ElapsedAt(app.now())))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Show a live timer after starting")
	return cmd
}

func newTimerPauseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pause <goal>",
		Short: "Pause a running timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			goal, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			rec, err := app.Timers.Pause(ctx, goal.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.TimerLine(goal.Title, rec, rec.Elapsed))
			return nil
		},
	}
}

func newTimerResumeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <goal>",
		Short: "Resume a paused timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			goal, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			rec, err := app.Timers.Resume(ctx, goal.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.TimerLine(goal.Title, rec, rec.ElapsedAt(app.now())))
			return nil
		},
	}
}

func newTimerCompleteCmd(app *App) *cobra.Command {
	var efficiency int
	var notes string

	cmd := &cobra.Command{
		Use:     "complete <goal>",
		Aliases: []string{"done", "stop"},
		Short:   "Log the elapsed time as a session and credit the goal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if efficiency < 0 || efficiency > 100 {
				return fmt.Errorf("efficiency must be between 0 and 100, got %d", efficiency)
			}
			ctx := cmd.Context()
			goal, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			opts := timer.CompleteOptions{OwnerID: app.owner(ctx), Notes: notes}
			if cmd.Flags().Changed("efficiency") {
				opts.Efficiency = &efficiency
			}
			c, err := app.Timers.Complete(ctx, goal.ID, opts)
			if err != nil && !errors.Is(err, domain.ErrPartialCompletion) {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCompletion(goal.Title, c))
			return err
		},
	}

	cmd.Flags().IntVar(&efficiency, "efficiency", 0, "Self-rated efficiency, 0-100 (default from config)")
	cmd.Flags().StringVar(&notes, "notes", "", "Session notes")
	return cmd
}

func newTimerCloseCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "close <goal>",
		Aliases: []string{"discard"},
		Short:   "Discard a timer without logging anything",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			goal, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			rec, ok := app.Timers.Record(goal.ID)
			if !ok {
				return fmt.Errorf("closing %s: %w", goal.Title, domain.ErrNoActiveTimer)
			}
			elapsed := formatter.FormatElapsed(rec.ElapsedAt(app.now()))
			ok, err = app.confirmDestructive(fmt.Sprintf("Discard %s of study time for %s?", elapsed, goal.Title), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Timers.Close(ctx, goal.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discarded timer for %s\n", goal.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newTimerStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"list", "ls"},
		Short:   "Show every goal with a timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			active := app.Timers.Active()
			if len(active) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No timers running."))
				return nil
			}
			titles := make(map[string]string)
			for _, g := range app.Gateways.Goals.List(ctx, app.owner(ctx)) {
				titles[g.ID] = g.Title
			}
			now := app.now()
			for _, id := range active {
				rec, ok := app.Timers.Record(id)
				if !ok {
					continue
				}
				title := titles[id]
				if title == "" {
					title = id
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.TimerLine(title, rec, rec.ElapsedAt(now)))
			}
			return nil
		},
	}
}

func newTimerWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <goal>",
		Short: "Show a live timer with pause and complete keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !app.interactive() {
				return fmt.Errorf("timer watch needs an interactive terminal")
			}
			goal, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			if _, ok := app.Timers.Record(goal.ID); !ok {
				if _, err := app.Timers.Start(ctx, goal.ID); err != nil {
					return err
				}
			}
			return runWatch(ctx, app, goal)
		},
	}
}

func runWatch(ctx context.Context, app *App, goal domain.LearningGoal) error {
	final, err := tea.NewProgram(newWatchModel(ctx, app, goal)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(*watchModel); ok && m.err != nil {
		return m.err
	}
	return nil
}

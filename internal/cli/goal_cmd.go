package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/yosuakev/learnful/internal/cli/formatter"
	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/progress"
)

const recentSessionLimit = 5

func newGoalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal",
		Aliases: []string{"goals", "g"},
		Short:   "Manage learning goals",
	}

	cmd.AddCommand(
		newGoalListCmd(app),
		newGoalAddCmd(app),
		newGoalShowCmd(app),
		newGoalUpdateCmd(app),
		newGoalProgressCmd(app),
		newGoalRemoveCmd(app),
	)

	return cmd
}

func newGoalListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learning goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGoalList(app.Gateways.Goals.List(ctx, app.owner(ctx))))
			return nil
		},
	}
}

type goalFlags struct {
	description string
	target      float64
	color       string
}

func (f *goalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "Description")
	cmd.Flags().Float64Var(&f.target, "target", 0, "Target hours per week")
	cmd.Flags().StringVar(&f.color, "color", "", "Display color")
}

func (f *goalFlags) apply(cmd *cobra.Command, in *domain.GoalInput) {
	if cmd.Flags().Changed("desc") {
		in.Description = f.description
	}
	if cmd.Flags().Changed("target") {
		in.TargetHoursPerWeek = f.target
	}
	if cmd.Flags().Changed("color") {
		in.Color = f.color
	}
}

func newGoalAddCmd(app *App) *cobra.Command {
	var f goalFlags

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a learning goal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var in domain.GoalInput
			if len(args) == 1 {
				in.Title = args[0]
			} else {
				if !app.interactive() {
					return fmt.Errorf("a title is required")
				}
				if err := goalForm(&in); err != nil {
					return err
				}
			}
			f.apply(cmd, &in)

			goal, err := app.Gateways.Goals.Create(ctx, in, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created goal %s %s\n", formatter.Bold(goal.Title), formatter.Dim(goal.ID))
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func goalForm(in *domain.GoalInput) error {
	var title, target string
	err := runForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&title).
				Validate(validateRequired),
			huh.NewInput().
				Title("Target hours per week").
				Placeholder("5").
				Value(&target).
				Validate(validateNonNegativeNumber),
		),
	)
	if err != nil {
		return err
	}
	in.Title = title
	if strings.TrimSpace(target) != "" {
		in.TargetHoursPerWeek, _ = strconv.ParseFloat(strings.TrimSpace(target), 64)
	}
	return nil
}

func newGoalShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <goal>",
		Short: "Show a goal with its statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			goal, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			now := app.now()
			sessions := app.Gateways.Sessions.ListByGoal(ctx, goal.ID, app.owner(ctx))
			summary := progress.Summarize(goal, sessions, now)
			recent := sessions
			if len(recent) > recentSessionLimit {
				recent = recent[:recentSessionLimit]
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGoalDetail(goal, summary, recent, now))
			return nil
		},
	}
}

func newGoalUpdateCmd(app *App) *cobra.Command {
	var f goalFlags
	var title string
	var progressMinutes int

	cmd := &cobra.Command{
		Use:   "update <goal>",
		Short: "Edit a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			in := domain.GoalInput{
				Title:              current.Title,
				Description:        current.Description,
				TargetHoursPerWeek: current.TargetHoursPerWeek,
				Color:              current.Color,
			}
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("progress") {
				in.CurrentProgress = &progressMinutes
			}
			f.apply(cmd, &in)

			goal, err := app.Gateways.Goals.Update(ctx, current.ID, in, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated goal %s\n", formatter.Bold(goal.Title))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().IntVar(&progressMinutes, "progress", 0, "Overwrite accumulated minutes")
	f.register(cmd)
	return cmd
}

func newGoalProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <goal> <minutes>",
		Short: "Credit minutes to a goal without logging a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			goal, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			minutes, err := strconv.Atoi(args[1])
			if err != nil || minutes <= 0 {
				return fmt.Errorf("minutes must be a positive whole number")
			}
			updated, err := app.Gateways.Goals.AddProgress(ctx, goal.ID, minutes, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now at %s %s\n",
				formatter.Bold(updated.Title),
				formatter.FormatMinutes(updated.CurrentProgress),
				formatter.RenderPercent(progress.ProgressPercent(updated), 10))
			return nil
		},
	}
}

func newGoalRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <goal>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a goal and its sessions",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			goal, err := resolveGoal(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirmDestructive(fmt.Sprintf("Delete goal %q and all its sessions?", goal.Title), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Gateways.Goals.Delete(ctx, goal.ID, app.owner(ctx)); err != nil {
				return err
			}
			if _, ok := app.Timers.Record(goal.ID); ok {
				if err := app.Timers.Close(ctx, goal.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted goal %s\n", goal.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

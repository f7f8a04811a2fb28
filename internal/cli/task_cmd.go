package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/yosuakev/learnful/internal/cli/formatter"
	"github.com/yosuakev/learnful/internal/domain"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Manage tasks",
	}

	cmd.AddCommand(
		newTaskListCmd(app),
		newTaskAddCmd(app),
		newTaskShowCmd(app),
		newTaskUpdateCmd(app),
		newTaskDoneCmd(app),
		newTaskRemoveCmd(app),
		newSubtaskCmd(app),
	)

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var status, priority, category string
	var overdue bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := app.now()

			categoryID := ""
			if category != "" {
				id, err := resolveCategoryID(ctx, app, category)
				if err != nil {
					return err
				}
				categoryID = id
			}

			var tasks []domain.Task
			for _, t := range app.Gateways.Tasks.List(ctx, app.owner(ctx)) {
				if status != "" && string(t.Status) != status {
					continue
				}
				if priority != "" && string(t.Priority) != priority {
					continue
				}
				if categoryID != "" && (t.CategoryID == nil || *t.CategoryID != categoryID) {
					continue
				}
				if overdue && (t.Status == domain.TaskDone || t.DueDate == nil || !t.DueDate.Before(now)) {
					continue
				}
				tasks = append(tasks, t)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskList(tasks, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (todo, in_progress, done)")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority (low, medium, high)")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category name or ID")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "Only open tasks past their due date")

	return cmd
}

// taskFlags are the editable task fields shared by add and update.
type taskFlags struct {
	description string
	priority    string
	status      string
	category    string
	due         string
	estimate    int
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Priority (low, medium, high)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (todo, in_progress, done)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category name or ID (\"none\" clears)")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date, e.g. 2025-06-30 or \"friday 5pm\" (\"none\" clears)")
	cmd.Flags().IntVar(&f.estimate, "estimate", 0, "Estimated minutes")
}

// apply copies every flag the user set onto in.
func (f *taskFlags) apply(cmd *cobra.Command, app *App, in *domain.TaskInput) error {
	ctx := cmd.Context()
	flags := cmd.Flags()
	if flags.Changed("desc") {
		in.Description = f.description
	}
	if flags.Changed("priority") {
		in.Priority = domain.Priority(strings.ToLower(f.priority))
	}
	if flags.Changed("status") {
		in.Status = domain.TaskStatus(strings.ToLower(f.status))
	}
	if flags.Changed("category") {
		if strings.EqualFold(f.category, "none") {
			in.CategoryID = nil
		} else {
			id, err := resolveCategoryID(ctx, app, f.category)
			if err != nil {
				return err
			}
			in.CategoryID = &id
		}
	}
	if flags.Changed("due") {
		if strings.EqualFold(f.due, "none") {
			in.DueDate = nil
		} else {
			due, err := parseWhen(f.due, app.now())
			if err != nil {
				return err
			}
			in.DueDate = &due
		}
	}
	if flags.Changed("estimate") {
		in.EstimatedDuration = f.estimate
	}
	return nil
}

func newTaskAddCmd(app *App) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var in domain.TaskInput
			if len(args) == 1 {
				in.Title = args[0]
			} else {
				if !app.interactive() {
					return fmt.Errorf("a title is required")
				}
				if err := taskForm(app, &in); err != nil {
					return err
				}
			}
			if err := f.apply(cmd, app, &in); err != nil {
				return err
			}

			task, err := app.Gateways.Tasks.Create(ctx, in, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s %s\n", formatter.Bold(task.Title), formatter.Dim(task.ID))
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

// taskForm collects a task's title, priority and due date interactively.
func taskForm(app *App, in *domain.TaskInput) error {
	var title, due string
	priority := string(domain.PriorityMedium)
	err := runForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&title).
				Validate(validateRequired),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("Low", string(domain.PriorityLow)),
					huh.NewOption("Medium", string(domain.PriorityMedium)),
					huh.NewOption("High", string(domain.PriorityHigh)),
				).
				Value(&priority),
			huh.NewInput().
				Title("Due (blank for none)").
				Placeholder("friday 5pm").
				Value(&due).
				Validate(validateOptionalWhen(app.now)),
		),
	)
	if err != nil {
		return err
	}
	in.Title = title
	in.Priority = domain.Priority(priority)
	if strings.TrimSpace(due) != "" {
		t, err := parseWhen(due, app.now())
		if err != nil {
			return err
		}
		in.DueDate = &t
	}
	return nil
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			task, err := app.Gateways.Tasks.GetByID(ctx, id, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTaskDetail(task, app.now()))
			return nil
		},
	}
}

func newTaskUpdateCmd(app *App) *cobra.Command {
	var f taskFlags
	var title string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			current, err := app.Gateways.Tasks.GetByID(ctx, id, app.owner(ctx))
			if err != nil {
				return err
			}

			in := domain.InputFromTask(current)
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if err := f.apply(cmd, app, &in); err != nil {
				return err
			}

			task, err := app.Gateways.Tasks.Update(ctx, id, in, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s %s\n", formatter.Bold(task.Title), formatter.TaskStatusPill(task.Status))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	f.register(cmd)
	return cmd
}

func newTaskDoneCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			current, err := app.Gateways.Tasks.GetByID(ctx, id, app.owner(ctx))
			if err != nil {
				return err
			}
			in := domain.InputFromTask(current)
			in.Status = domain.TaskDone
			if undo {
				in.Status = domain.TaskTodo
			}
			task, err := app.Gateways.Tasks.Update(ctx, id, in, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.TaskStatusPill(task.Status), task.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Reopen the task instead")
	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirmDestructive(fmt.Sprintf("Delete task %s?", id), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Gateways.Tasks.Delete(ctx, id, app.owner(ctx)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newSubtaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage a task's checklist",
	}

	add := &cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Append a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			task, err := app.Gateways.Tasks.AddSubtask(ctx, id, args[1], app.owner(ctx))
			if err != nil {
				return err
			}
			st := task.Subtasks[len(task.Subtasks)-1]
			fmt.Fprintf(cmd.OutOrStdout(), "Added subtask %s %s to %s\n", st.Title, formatter.Dim(st.ID), task.Title)
			return nil
		},
	}

	var undo bool
	done := &cobra.Command{
		Use:   "done <task-id> <subtask-id>",
		Short: "Tick off a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			current, err := app.Gateways.Tasks.GetByID(ctx, id, app.owner(ctx))
			if err != nil {
				return err
			}
			subtaskID, err := resolveSubtaskID(current, args[1])
			if err != nil {
				return err
			}
			task, err := app.Gateways.Tasks.SetSubtaskCompleted(ctx, id, subtaskID, !undo, app.owner(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d%% of subtasks done\n", task.Title, task.Progress())
			return nil
		},
	}
	done.Flags().BoolVar(&undo, "undo", false, "Mark the subtask incomplete instead")

	cmd.AddCommand(add, done)
	return cmd
}

// resolveSubtaskID accepts a subtask id, id prefix or 1-based position.
func resolveSubtaskID(t domain.Task, input string) (string, error) {
	if pos, err := strconv.Atoi(input); err == nil && pos >= 1 && pos <= len(t.Subtasks) {
		return t.Subtasks[pos-1].ID, nil
	}
	var match string
	for _, st := range t.Subtasks {
		if st.ID == input {
			return st.ID, nil
		}
		if strings.HasPrefix(st.ID, input) {
			if match != "" {
				return "", fmt.Errorf("ambiguous subtask id %q", input)
			}
			match = st.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("subtask %q: %w", input, domain.ErrNotFound)
	}
	return match, nil
}

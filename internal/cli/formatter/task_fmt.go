package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
)

const taskProgressBarWidth = 8

// FormatTaskList renders tasks as a table. Subtask progress is shown only for
// tasks that have subtasks.
func FormatTaskList(tasks []domain.Task, now time.Time) string {
	if len(tasks) == 0 {
		return Dim("No tasks found.") + "\n"
	}
	headers := []string{"ID", "TITLE", "PRIORITY", "STATUS", "CATEGORY", "DUE", "PROGRESS"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		progress := Dim("--")
		if len(t.Subtasks) > 0 {
			progress = RenderPercent(t.Progress(), taskProgressBarWidth)
		}
		title := Bold(Truncate(t.Title, 40))
		if t.Status == domain.TaskDone {
			title = Dim(Truncate(t.Title, 40))
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			title,
			PriorityPill(t.Priority),
			TaskStatusPill(t.Status),
			categoryLabel(t),
			DueDateStyled(t.DueDate, t.Status == domain.TaskDone, now),
			progress,
		})
	}
	return RenderTable(headers, rows)
}

// FormatTaskDetail renders one task with its subtasks.
func FormatTaskDetail(t domain.Task, now time.Time) string {
	var b strings.Builder
	completed := ""
	if t.CompletedAt != nil {
		completed = HumanTimestampFrom(*t.CompletedAt, now)
	}
	due := ""
	if t.DueDate != nil {
		due = DueDateStyled(t.DueDate, t.Status == domain.TaskDone, now) +
			Dim(" ("+t.DueDate.In(now.Location()).Format("Mon Jan 2 15:04")+")")
	}
	b.WriteString(RenderFields([][2]string{
		{"ID", t.ID},
		{"Title", Bold(t.Title)},
		{"Description", t.Description},
		{"Priority", PriorityPill(t.Priority)},
		{"Status", TaskStatusPill(t.Status)},
		{"Category", categoryLabel(t)},
		{"Due", due},
		{"Estimate", FormatMinutes(t.EstimatedDuration)},
		{"Created", HumanTimestampFrom(t.CreatedAt, now)},
		{"Completed", completed},
		{"Storage", storageLabel(t.LocalOnly)},
	}))

	if len(t.Subtasks) > 0 {
		b.WriteString("\n")
		b.WriteString(Header(fmt.Sprintf("Subtasks %d%%", t.Progress())))
		b.WriteString("\n")
		for _, st := range t.Subtasks {
			mark := StyleBlue.Render("○")
			title := st.Title
			if st.IsCompleted {
				mark = StyleGreen.Render("✔")
				title = Dim(title)
			}
			fmt.Fprintf(&b, "  %s %s %s\n", mark, title, Dim(st.ID))
		}
	}
	return RenderBox("Task", b.String())
}

func categoryLabel(t domain.Task) string {
	switch {
	case t.Category != nil:
		return StylePurple.Render(t.Category.Name)
	case t.CategoryID != nil:
		return Dim(*t.CategoryID)
	default:
		return Dim("--")
	}
}

func storageLabel(localOnly bool) string {
	if localOnly {
		return StyleYellow.Render("this device")
	}
	return StyleGreen.Render("account")
}

// FormatCategoryList renders categories with a color swatch.
func FormatCategoryList(categories []domain.Category) string {
	if len(categories) == 0 {
		return Dim("No categories found.") + "\n"
	}
	headers := []string{"ID", "NAME", "COLOR"}
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{TruncID(c.ID), Bold(c.Name), Swatch(c.Color)})
	}
	return RenderTable(headers, rows)
}

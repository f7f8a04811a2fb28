package formatter

import (
	"fmt"
	"strings"

	"github.com/yosuakev/learnful/internal/app"
)

const statusProgressBarWidth = 10

// FormatStatus formats a StatusResponse into a styled dashboard.
func FormatStatus(resp *app.StatusResponse) string {
	var b strings.Builder
	now := resp.GeneratedAt

	b.WriteString(ModeBadge(resp.Mode))
	b.WriteString("\n\n")

	tc := resp.Tasks
	b.WriteString(Header("Tasks"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s  %s",
		StyleBlue.Render(fmt.Sprintf("%d todo", tc.Todo)),
		StyleGreen.Render(fmt.Sprintf("%d in progress", tc.InProgress)),
		Dim(fmt.Sprintf("%d done", tc.Done)))
	if tc.Overdue > 0 {
		fmt.Fprintf(&b, "  %s", StyleRed.Render(fmt.Sprintf("%d overdue", tc.Overdue)))
	}
	b.WriteString("\n\n")

	b.WriteString(Header("Goals"))
	b.WriteString("\n")
	if len(resp.Goals) == 0 {
		b.WriteString(Dim("No learning goals yet."))
		b.WriteString("\n")
	} else {
		headers := []string{"GOAL", "PROGRESS", "THIS WEEK", "STREAK"}
		rows := make([][]string, 0, len(resp.Goals))
		for _, g := range resp.Goals {
			week := FormatMinutes(g.LastWeekMinutes)
			if g.TargetMinutes > 0 {
				week += Dim(" / " + FormatMinutes(int(g.TargetMinutes)))
			}
			rows = append(rows, []string{
				Bold(Truncate(g.Title, 30)),
				RenderPercent(g.ProgressPercent, statusProgressBarWidth),
				week,
				streakLabel(g.CurrentStreak),
			})
		}
		b.WriteString(RenderTable(headers, rows))
	}
	fmt.Fprintf(&b, "%s %s  %s %s\n",
		Dim("This week"), Bold(FormatMinutes(resp.WeekMinutes)),
		Dim("All time"), Bold(FormatMinutes(resp.TotalMinutes)))

	if len(resp.Timers) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Timers"))
		b.WriteString("\n")
		for _, tv := range resp.Timers {
			title := tv.GoalTitle
			if title == "" {
				title = tv.GoalID
			}
			state := StyleYellow.Render("paused")
			if tv.Running {
				state = StyleGreen.Render("running")
			}
			fmt.Fprintf(&b, "  %s  %s %s\n", Bold(title), FormatElapsed(tv.ElapsedSeconds), state)
		}
	}

	if len(resp.UpcomingEvents) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Coming up"))
		b.WriteString("\n")
		for _, e := range resp.UpcomingEvents {
			fmt.Fprintf(&b, "  %s  %s\n", EventWhen(e, now), e.Title)
		}
	}

	if len(resp.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range resp.Warnings {
			fmt.Fprintf(&b, "%s %s\n", StyleYellow.Render("!"), w)
		}
	}
	return RenderBox("Learnful", b.String())
}

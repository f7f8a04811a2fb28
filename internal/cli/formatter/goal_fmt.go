package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/progress"
)

const goalProgressBarWidth = 12

func FormatGoalList(goals []domain.LearningGoal) string {
	if len(goals) == 0 {
		return Dim("No learning goals found.") + "\n"
	}
	headers := []string{"ID", "TITLE", "TARGET", "LOGGED", "PROGRESS"}
	rows := make([][]string, 0, len(goals))
	for _, g := range goals {
		rows = append(rows, []string{
			TruncID(g.ID),
			Bold(Truncate(g.Title, 40)),
			fmt.Sprintf("%gh/wk", g.TargetHoursPerWeek),
			FormatMinutes(g.CurrentProgress),
			RenderPercent(progress.ProgressPercent(g), goalProgressBarWidth),
		})
	}
	return RenderTable(headers, rows)
}

// FormatGoalDetail renders a goal, its derived statistics and the most
// recent sessions.
func FormatGoalDetail(g domain.LearningGoal, s progress.GoalSummary, recent []domain.StudySession, now time.Time) string {
	var b strings.Builder
	pace := StyleYellow.Render("behind")
	if s.OnPace() {
		pace = StyleGreen.Render("on pace")
	}
	if s.TargetMinutes <= 0 {
		pace = Dim("no target")
	}
	b.WriteString(RenderFields([][2]string{
		{"ID", g.ID},
		{"Title", Bold(g.Title)},
		{"Description", g.Description},
		{"Color", Swatch(g.Color)},
		{"Target", fmt.Sprintf("%gh per week", g.TargetHoursPerWeek)},
		{"Progress", RenderPercent(s.ProgressPercent, goalProgressBarWidth) + Dim("  "+FormatMinutes(g.CurrentProgress))},
		{"Last 7 days", FormatMinutes(s.LastWeekMinutes) + "  " + pace},
		{"Sessions", fmt.Sprintf("%d, avg %s", s.SessionCount, FormatMinutes(int(s.AverageDuration+0.5)))},
		{"Total", FormatMinutes(s.TotalMinutes)},
		{"Streak", streakLabel(s.CurrentStreak)},
		{"Storage", storageLabel(g.LocalOnly)},
	}))
	if len(recent) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Recent sessions"))
		b.WriteString("\n")
		b.WriteString(FormatSessionList(recent, now))
	}
	return RenderBox("Goal", b.String())
}

func streakLabel(days int) string {
	switch days {
	case 0:
		return Dim("none")
	case 1:
		return StyleGreen.Render("1 day")
	default:
		return StyleGreen.Render(fmt.Sprintf("%d days", days))
	}
}

// FormatSessionList renders study sessions newest first as given.
func FormatSessionList(sessions []domain.StudySession, now time.Time) string {
	if len(sessions) == 0 {
		return Dim("No sessions found.") + "\n"
	}
	headers := []string{"ID", "GOAL", "DATE", "DURATION", "EFFICIENCY", "NOTES"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			TruncID(s.ID),
			TruncID(s.GoalID),
			HumanTimestampFrom(s.SessionDate, now),
			FormatMinutes(s.Duration),
			efficiencyLabel(s.Efficiency),
			Dim(Truncate(s.Notes, 40)),
		})
	}
	return RenderTable(headers, rows)
}

func efficiencyLabel(e int) string {
	text := fmt.Sprintf("%d%%", e)
	switch {
	case e >= 80:
		return StyleGreen.Render(text)
	case e >= 50:
		return StyleYellow.Render(text)
	default:
		return StyleRed.Render(text)
	}
}

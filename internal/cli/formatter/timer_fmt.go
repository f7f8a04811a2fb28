package formatter

import (
	"fmt"
	"strings"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/timer"
)

// TimerLine renders one goal's timer as "● Go  12:04 running".
func TimerLine(title string, rec domain.ActiveTimerRecord, elapsed int64) string {
	state := StyleYellow.Render("‖ paused")
	mark := StyleYellow.Render("‖")
	if rec.IsRunning {
		state = StyleGreen.Render("running")
		mark = StyleGreen.Render("●")
	}
	return fmt.Sprintf("%s %s  %s %s", mark, Bold(title), StyleFg.Render(FormatElapsed(elapsed)), state)
}

// FormatCompletion summarises a completed timer.
func FormatCompletion(title string, c timer.Completion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Logged %s for %s", StyleGreen.Render("✔"), Bold(FormatMinutes(c.Minutes)), Bold(title))
	if c.Session != nil {
		fmt.Fprintf(&b, " %s", Dim(fmt.Sprintf("(session %s, %d%% efficiency)", c.Session.ID, c.Session.Efficiency)))
	}
	b.WriteString("\n")
	if c.Goal != nil {
		fmt.Fprintf(&b, "  Goal progress now %s\n", FormatMinutes(c.Goal.CurrentProgress))
	}
	return b.String()
}

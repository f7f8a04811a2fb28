package formatter

import (
	"strings"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
)

// FormatEventList renders calendar events in the order given.
func FormatEventList(events []domain.CalendarEvent, now time.Time) string {
	if len(events) == 0 {
		return Dim("No events found.") + "\n"
	}
	headers := []string{"ID", "TITLE", "WHEN", "TYPE", "REMINDERS"}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		title := Bold(Truncate(e.Title, 40))
		if e.Recurring {
			title += StylePurple.Render(" ↻")
		}
		rows = append(rows, []string{
			TruncID(e.ID),
			title,
			EventWhen(e, now),
			StyleBlue.Render(e.EventType),
			Dim(strings.Join(e.Reminders, ", ")),
		})
	}
	return RenderTable(headers, rows)
}

// EventWhen renders an event's time span in now's location.
func EventWhen(e domain.CalendarEvent, now time.Time) string {
	loc := now.Location()
	start := e.StartTime.In(loc)
	end := e.EndTime.In(loc)
	day := RelativeDateFrom(start, now)
	if e.AllDay {
		return day + Dim(" all day")
	}
	span := start.Format("15:04") + "-" + end.Format("15:04")
	if start.Format("2006-01-02") != end.Format("2006-01-02") {
		span = start.Format("15:04") + " to " + end.Format("Jan 2 15:04")
	}
	return day + " " + Dim(span)
}

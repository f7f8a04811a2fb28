// Package progress derives study statistics from a goal and its sessions.
// Every function is pure: the caller supplies the clock.
package progress

import (
	"math"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
)

// TotalMinutes sums the duration of every session.
func TotalMinutes(sessions []domain.StudySession) int {
	total := 0
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

func SessionCount(sessions []domain.StudySession) int {
	return len(sessions)
}

// AverageDuration is the mean session length in minutes, 0 for no sessions.
func AverageDuration(sessions []domain.StudySession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	return float64(TotalMinutes(sessions)) / float64(len(sessions))
}

// ProgressPercent compares the goal's accumulated minutes against one week's
// target, capped at 100. A goal without a target reports 0.
func ProgressPercent(goal domain.LearningGoal) int {
	target := goal.TargetMinutes()
	if target <= 0 {
		return 0
	}
	pct := math.Round(float64(goal.CurrentProgress) / target * 100)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}

// CurrentStreak counts consecutive calendar days ending today with at least
// one session. Dates are taken in now's location. No session today means no
// streak, even if yesterday had one.
func CurrentStreak(sessions []domain.StudySession, now time.Time) int {
	loc := now.Location()
	days := make(map[civilDate]struct{}, len(sessions))
	for _, s := range sessions {
		days[dateOf(s.SessionDate.In(loc))] = struct{}{}
	}

	// Step from noon so daylight saving shifts never skip or repeat a date.
	y, m, d := now.Date()
	streak := 0
	for day := time.Date(y, m, d, 12, 0, 0, 0, loc); ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[dateOf(day)]; !ok {
			return streak
		}
		streak++
	}
}

// MinutesSince sums sessions dated at or after since.
func MinutesSince(sessions []domain.StudySession, since time.Time) int {
	total := 0
	for _, s := range sessions {
		if !s.SessionDate.Before(since) {
			total += s.Duration
		}
	}
	return total
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

// GoalSummary is the derived view of one goal.
type GoalSummary struct {
	GoalID          string
	Title           string
	TotalMinutes    int
	SessionCount    int
	AverageDuration float64
	ProgressPercent int
	CurrentStreak   int
	// LastWeekMinutes covers the seven days ending now.
	LastWeekMinutes int
	TargetMinutes   float64
}

// OnPace reports whether the last seven days met the weekly target.
func (s GoalSummary) OnPace() bool {
	return s.TargetMinutes > 0 && float64(s.LastWeekMinutes) >= s.TargetMinutes
}

func Summarize(goal domain.LearningGoal, sessions []domain.StudySession, now time.Time) GoalSummary {
	return GoalSummary{
		GoalID:          goal.ID,
		Title:           goal.Title,
		TotalMinutes:    TotalMinutes(sessions),
		SessionCount:    SessionCount(sessions),
		AverageDuration: AverageDuration(sessions),
		ProgressPercent: ProgressPercent(goal),
		CurrentStreak:   CurrentStreak(sessions, now),
		LastWeekMinutes: MinutesSince(sessions, now.AddDate(0, 0, -7)),
		TargetMinutes:   goal.TargetMinutes(),
	}
}

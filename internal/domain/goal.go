package domain

import (
	"strings"
	"time"
)

// LearningGoal tracks weekly study targets. CurrentProgress is in minutes and
// only grows through completed sessions unless edited explicitly.
type LearningGoal struct {
	Record
	Title              string  `json:"title"`
	Description        string  `json:"description,omitempty"`
	TargetHoursPerWeek float64 `json:"target_hours_per_week"`
	Color              string  `json:"color"`
	CurrentProgress    int     `json:"current_progress"`
}

// GoalInput is the payload for creating or editing a goal. A nil
// CurrentProgress leaves the stored progress untouched on update.
type GoalInput struct {
	Title              string  `json:"title" validate:"required,max=255"`
	Description        string  `json:"description" validate:"max=2000"`
	TargetHoursPerWeek float64 `json:"target_hours_per_week" validate:"min=0"`
	Color              string  `json:"color"`
	CurrentProgress    *int    `json:"current_progress" validate:"omitempty,min=0"`
}

func (in *GoalInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Color = strings.TrimSpace(in.Color)
	if in.Color == "" {
		in.Color = DefaultGoalColor
	}
}

func NewLocalGoal(id string, in GoalInput, now time.Time) LearningGoal {
	g := LearningGoal{Record: NewLocalRecord(id, now)}
	g.Apply(in, now)
	return g
}

func (g *LearningGoal) Apply(in GoalInput, _ time.Time) {
	g.Title = in.Title
	g.Description = in.Description
	g.TargetHoursPerWeek = in.TargetHoursPerWeek
	g.Color = in.Color
	if in.CurrentProgress != nil {
		g.CurrentProgress = *in.CurrentProgress
	}
}

// AddProgress increases CurrentProgress by minutes. Negative values are ignored.
func (g *LearningGoal) AddProgress(minutes int) {
	if minutes > 0 {
		g.CurrentProgress += minutes
	}
}

// TargetMinutes returns the weekly target expressed in minutes.
func (g LearningGoal) TargetMinutes() float64 {
	return g.TargetHoursPerWeek * 60
}

package testutil

import (
	"time"

	"github.com/yosuakev/learnful/internal/domain"
)

// Task options
type TaskOption func(*domain.TaskInput)

func WithPriority(p domain.Priority) TaskOption {
	return func(in *domain.TaskInput) {
		in.Priority = p
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(in *domain.TaskInput) {
		in.Status = s
	}
}

func WithCategory(id string) TaskOption {
	return func(in *domain.TaskInput) {
		in.CategoryID = &id
	}
}

func WithDueDate(d time.Time) TaskOption {
	return func(in *domain.TaskInput) {
		in.DueDate = &d
	}
}

func WithEstimate(min int) TaskOption {
	return func(in *domain.TaskInput) {
		in.EstimatedDuration = min
	}
}

func NewTaskInput(title string, opts ...TaskOption) domain.TaskInput {
	in := domain.TaskInput{
		Title:       title,
		Description: "test task",
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// Goal options
type GoalOption func(*domain.GoalInput)

func WithTargetHours(h float64) GoalOption {
	return func(in *domain.GoalInput) {
		in.TargetHoursPerWeek = h
	}
}

func WithProgress(minutes int) GoalOption {
	return func(in *domain.GoalInput) {
		in.CurrentProgress = &minutes
	}
}

func WithGoalColor(c string) GoalOption {
	return func(in *domain.GoalInput) {
		in.Color = c
	}
}

func NewGoalInput(title string, opts ...GoalOption) domain.GoalInput {
	in := domain.GoalInput{
		Title:              title,
		TargetHoursPerWeek: 5,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// Study session options
type SessionOption func(*domain.StudySessionInput)

func WithEfficiency(e int) SessionOption {
	return func(in *domain.StudySessionInput) {
		in.Efficiency = e
	}
}

func WithSessionDate(t time.Time) SessionOption {
	return func(in *domain.StudySessionInput) {
		in.SessionDate = t
	}
}

func WithNotes(n string) SessionOption {
	return func(in *domain.StudySessionInput) {
		in.Notes = n
	}
}

func NewSessionInput(goalID string, minutes int, opts ...SessionOption) domain.StudySessionInput {
	in := domain.StudySessionInput{
		GoalID:     goalID,
		Duration:   minutes,
		Efficiency: 100,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// Calendar event options
type EventOption func(*domain.CalendarEventInput)

func WithEventGoal(id string) EventOption {
	return func(in *domain.CalendarEventInput) {
		in.GoalID = &id
	}
}

func WithEventType(t string) EventOption {
	return func(in *domain.CalendarEventInput) {
		in.EventType = t
	}
}

func WithReminders(r ...string) EventOption {
	return func(in *domain.CalendarEventInput) {
		in.Reminders = r
	}
}

func NewEventInput(title string, start time.Time, d time.Duration, opts ...EventOption) domain.CalendarEventInput {
	in := domain.CalendarEventInput{
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(d),
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

func NewCategoryInput(name, color string) domain.CategoryInput {
	return domain.CategoryInput{Name: name, Color: color}
}

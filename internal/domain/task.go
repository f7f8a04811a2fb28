package domain

import (
	"strings"
	"time"
)

type Subtask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

type Task struct {
	Record
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	CategoryID        *string    `json:"category_id,omitempty"`
	Category          *Category  `json:"categories,omitempty"`
	Priority          Priority   `json:"priority"`
	Status            TaskStatus `json:"status"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	EstimatedDuration int        `json:"estimated_duration"`
	CompletedAt       *time.Time `json:"completed_at"`
	Subtasks          []Subtask  `json:"subtasks"`
}

// ApplyStatus enforces the completion invariant: CompletedAt is set if and
// only if the task is done. An already-set completion time is kept.
func (t *Task) ApplyStatus(now time.Time) {
	if t.Status != TaskDone {
		t.CompletedAt = nil
		return
	}
	if t.CompletedAt == nil {
		ts := now.UTC()
		t.CompletedAt = &ts
	}
}

// Progress returns the share of completed subtasks as a whole percentage.
func (t *Task) Progress() int {
	if len(t.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, st := range t.Subtasks {
		if st.IsCompleted {
			done++
		}
	}
	return int(float64(done)/float64(len(t.Subtasks))*100 + 0.5)
}

// TaskInput is the caller-supplied payload for creating or replacing a task.
type TaskInput struct {
	Title             string     `json:"title" validate:"required,max=255"`
	Description       string     `json:"description" validate:"max=2000"`
	CategoryID        *string    `json:"category_id"`
	Priority          Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status            TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	DueDate           *time.Time `json:"due_date"`
	EstimatedDuration int        `json:"estimated_duration" validate:"min=0"`
}

// Normalize trims text fields and fills defaults. It is applied before
// validation so whitespace-only titles are rejected.
func (in *TaskInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) == "" {
		in.CategoryID = nil
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = TaskTodo
	}
	if in.EstimatedDuration == 0 {
		in.EstimatedDuration = DefaultEstimatedDuration
	}
}

// NewLocalTask builds a task from input for the local path.
func NewLocalTask(id string, in TaskInput, now time.Time) Task {
	t := Task{Record: NewLocalRecord(id, now), Subtasks: []Subtask{}}
	t.Apply(in, now)
	return t
}

// Apply replaces the caller-editable fields and re-derives CompletedAt.
func (t *Task) Apply(in TaskInput, now time.Time) {
	t.Title = in.Title
	t.Description = in.Description
	t.CategoryID = in.CategoryID
	if in.CategoryID == nil || (t.Category != nil && t.Category.ID != *in.CategoryID) {
		t.Category = nil
	}
	t.Priority = in.Priority
	t.Status = in.Status
	t.DueDate = in.DueDate
	t.EstimatedDuration = in.EstimatedDuration
	t.ApplyStatus(now)
}

// InputFromTask returns the payload that would reproduce t's editable fields.
func InputFromTask(t Task) TaskInput {
	return TaskInput{
		Title:             t.Title,
		Description:       t.Description,
		CategoryID:        t.CategoryID,
		Priority:          t.Priority,
		Status:            t.Status,
		DueDate:           t.DueDate,
		EstimatedDuration: t.EstimatedDuration,
	}
}

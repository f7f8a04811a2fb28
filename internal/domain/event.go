package domain

import (
	"strings"
	"time"
)

type CalendarEvent struct {
	Record
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	AllDay      bool      `json:"all_day"`
	EventType   string    `json:"event_type"`
	Reminders   []string  `json:"reminders"`
	Recurring   bool      `json:"recurring"`
	CategoryID  *string   `json:"category_id,omitempty"`
	GoalID      *string   `json:"goal_id,omitempty"`
}

type CalendarEventInput struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=2000"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtefield=StartTime"`
	AllDay      bool      `json:"all_day"`
	EventType   string    `json:"event_type" validate:"max=50"`
	Reminders   []string  `json:"reminders"`
	Recurring   bool      `json:"recurring"`
	CategoryID  *string   `json:"category_id"`
	GoalID      *string   `json:"goal_id"`
}

func (in *CalendarEventInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.EventType = strings.TrimSpace(in.EventType)
	if in.EventType == "" {
		in.EventType = DefaultEventType
	}
	if in.Reminders == nil {
		in.Reminders = []string{}
	}
}

func NewLocalCalendarEvent(id string, in CalendarEventInput, now time.Time) CalendarEvent {
	e := CalendarEvent{Record: NewLocalRecord(id, now)}
	e.Apply(in, now)
	return e
}

func (e *CalendarEvent) Apply(in CalendarEventInput, _ time.Time) {
	e.Title = in.Title
	e.Description = in.Description
	e.StartTime = in.StartTime.UTC()
	e.EndTime = in.EndTime.UTC()
	e.AllDay = in.AllDay
	e.EventType = in.EventType
	e.Reminders = append([]string(nil), in.Reminders...)
	if e.Reminders == nil {
		e.Reminders = []string{}
	}
	e.Recurring = in.Recurring
	e.CategoryID = in.CategoryID
	e.GoalID = in.GoalID
}

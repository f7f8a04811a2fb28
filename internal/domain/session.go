package domain

import (
	"strings"
	"time"
)

type StudySession struct {
	Record
	GoalID      string    `json:"goal_id"`
	Duration    int       `json:"duration"`
	Efficiency  int       `json:"efficiency"`
	SessionDate time.Time `json:"session_date"`
	Notes       string    `json:"notes,omitempty"`
}

type StudySessionInput struct {
	GoalID      string    `json:"goal_id" validate:"required"`
	Duration    int       `json:"duration" validate:"min=1"`
	Efficiency  int       `json:"efficiency" validate:"min=0,max=100"`
	SessionDate time.Time `json:"session_date"`
	Notes       string    `json:"notes" validate:"max=2000"`
}

func (in *StudySessionInput) Normalize() {
	in.GoalID = strings.TrimSpace(in.GoalID)
	in.Notes = strings.TrimSpace(in.Notes)
}

func NewLocalStudySession(id string, in StudySessionInput, now time.Time) StudySession {
	s := StudySession{Record: NewLocalRecord(id, now)}
	s.Apply(in, now)
	return s
}

// Apply copies the payload onto s. A zero SessionDate means "now".
func (s *StudySession) Apply(in StudySessionInput, now time.Time) {
	s.GoalID = in.GoalID
	s.Duration = in.Duration
	s.Efficiency = in.Efficiency
	s.SessionDate = in.SessionDate.UTC()
	if in.SessionDate.IsZero() {
		s.SessionDate = now.UTC()
	}
	s.Notes = in.Notes
}

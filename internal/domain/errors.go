package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates that id/owner scoping matched no record.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden indicates the record exists but belongs to another owner,
	// or the caller-supplied owner does not match the current session.
	ErrForbidden = errors.New("record owned by another user")

	// ErrRemoteUnavailable wraps network or backend failures on the remote path.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrPartialCompletion marks a timer completion where exactly one of the
	// session write and the progress increment succeeded.
	ErrPartialCompletion = errors.New("partial session completion")

	// ErrNoActiveTimer is returned when resuming a goal with no timer record.
	ErrNoActiveTimer = errors.New("no active timer for goal")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field string
	Rule  string
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s (%s)", f.Field, f.Rule)
}

// ValidationError is returned before any I/O when a payload is rejected.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, ", "))
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(entity, field, rule string) *ValidationError {
	return &ValidationError{Entity: entity, Fields: []FieldError{{Field: field, Rule: rule}}}
}

// PartialCompletionError reports which half of a timer completion failed.
// SessionLogged tells the caller whether study time reached the session log.
type PartialCompletionError struct {
	GoalID        string
	Minutes       int
	SessionLogged bool
	Err           error
}

func (e *PartialCompletionError) Error() string {
	if e.SessionLogged {
		return fmt.Sprintf("session of %d min logged for goal %s but progress not updated: %v", e.Minutes, e.GoalID, e.Err)
	}
	return fmt.Sprintf("progress of %d min added to goal %s but session not logged: %v", e.Minutes, e.GoalID, e.Err)
}

func (e *PartialCompletionError) Unwrap() error { return e.Err }

func (e *PartialCompletionError) Is(target error) bool {
	return target == ErrPartialCompletion
}

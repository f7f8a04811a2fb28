package domain

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks payload struct tags and converts failures into a
// *ValidationError naming every rejected field.
func Validate(entity string, payload any) error {
	err := validatorInstance().Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Entity: entity}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return ve
}

// ValidateTask normalizes and validates a task payload in place.
func ValidateTask(in *TaskInput) error {
	in.Normalize()
	return Validate("task", in)
}

func ValidateCategory(in *CategoryInput) error {
	in.Normalize()
	return Validate("category", in)
}

func ValidateGoal(in *GoalInput) error {
	in.Normalize()
	return Validate("learning goal", in)
}

func ValidateStudySession(in *StudySessionInput) error {
	in.Normalize()
	return Validate("study session", in)
}

func ValidateCalendarEvent(in *CalendarEventInput) error {
	in.Normalize()
	return Validate("calendar event", in)
}

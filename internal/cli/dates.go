package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var dateLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

var naturalDates = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseWhen reads an absolute or natural-language time such as
// "2025-06-30", "tomorrow 5pm" or "next friday" relative to now. Dates
// without a time of day resolve to midnight in now's location.
func parseWhen(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, input, now.Location()); err == nil {
			return t, nil
		}
	}
	r, err := naturalDates.Parse(input, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q (try 2025-06-30 or \"tomorrow 5pm\")", input)
	}
	return r.Time, nil
}

// validateOptionalWhen is a huh validator for an optional date field.
func validateOptionalWhen(now func() time.Time) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		_, err := parseWhen(s, now())
		return err
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/yosuakev/learnful/internal/domain"
)

// DescribeError turns gateway and timer errors into a message with a hint.
func DescribeError(err error) string {
	var ve *domain.ValidationError
	var pe *domain.PartialCompletionError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &pe):
		if pe.SessionLogged {
			return fmt.Sprintf("%v\nThe session was saved; add the minutes with: learnful goal progress %s %d", err, pe.GoalID, pe.Minutes)
		}
		return fmt.Sprintf("%v\nThe goal was credited; the session log is missing this entry.", err)
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return fmt.Sprintf("%v\nThe remote store could not be reached. Try again, or run 'learnful logout' to work locally.", err)
	case errors.Is(err, domain.ErrForbidden):
		return fmt.Sprintf("%v\nYou are signed in as a different user than the one that owns this record.", err)
	case errors.Is(err, domain.ErrNoActiveTimer):
		return fmt.Sprintf("%v\nStart one with: learnful timer start <goal>", err)
	default:
		return err.Error()
	}
}

package app

import (
	"context"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/timer"
)

type StatusUseCase interface {
	Status(ctx context.Context, req StatusRequest) (*StatusResponse, error)
}

// TimerUseCase is the slice of the timer manager the CLI drives.
type TimerUseCase interface {
	Start(ctx context.Context, goalID string) (domain.ActiveTimerRecord, error)
	Resume(ctx context.Context, goalID string) (domain.ActiveTimerRecord, error)
	Pause(ctx context.Context, goalID string) (domain.ActiveTimerRecord, error)
	Complete(ctx context.Context, goalID string, opts timer.CompleteOptions) (timer.Completion, error)
	Close(ctx context.Context, goalID string) error
	Record(goalID string) (domain.ActiveTimerRecord, bool)
	Active() []string
}

var (
	_ StatusUseCase = (*Runtime)(nil)
	_ TimerUseCase  = (*timer.Manager)(nil)
)

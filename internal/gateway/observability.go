package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/logging"
)

const (
	PathRemote = "remote"
	PathLocal  = "local"
)

// OpEvent captures one gateway call.
type OpEvent struct {
	Entity   string
	Op       string
	Path     string
	Duration time.Duration
	Err      error
	// Fallback is set when a failed read was degraded to an empty result.
	Fallback bool
}

// Observer receives gateway operation events.
type Observer interface {
	ObserveOp(ctx context.Context, event OpEvent)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) ObserveOp(context.Context, OpEvent) {}

type logObserver struct {
	logger *logging.Logger
}

// NewLogObserver writes gateway events to logger at debug level. Failures not
// caused by the caller's input are logged at error level.
func NewLogObserver(logger *logging.Logger) Observer {
	if logger == nil {
		return NoopObserver{}
	}
	return &logObserver{logger: logger.WithComponent("gateway")}
}

func (o *logObserver) ObserveOp(_ context.Context, event OpEvent) {
	l := o.logger.WithFields(
		"entity", event.Entity,
		"op", event.Op,
		"path", event.Path,
		"duration_ms", event.Duration.Milliseconds(),
	)
	switch {
	case event.Err == nil:
		l.Debugw("gateway_op")
	case event.Fallback || expected(event.Err):
		l.WithError(event.Err).Debugw("gateway_op")
	default:
		l.WithError(event.Err).Errorw("gateway_op")
	}
}

// Observers fans one event out to several observers.
type Observers []Observer

func (m Observers) ObserveOp(ctx context.Context, event OpEvent) {
	for _, o := range m {
		if o != nil {
			o.ObserveOp(ctx, event)
		}
	}
}

func expected(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden)
}

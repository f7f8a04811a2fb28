// Package app assembles the stores, gateways and timer into a Runtime and
// exposes the cross-gateway use cases the CLI needs.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/yosuakev/learnful/internal/auth"
	"github.com/yosuakev/learnful/internal/config"
	"github.com/yosuakev/learnful/internal/gateway"
	"github.com/yosuakev/learnful/internal/localstore"
	"github.com/yosuakev/learnful/internal/logging"
	"github.com/yosuakev/learnful/internal/metrics"
	"github.com/yosuakev/learnful/internal/remote"
	"github.com/yosuakev/learnful/internal/timer"
)

// Runtime owns every long-lived collaborator of one process.
type Runtime struct {
	Config   config.Config
	Logger   *logging.Logger
	Local    *localstore.SQLiteStore
	Remote   *remote.DB
	Session  *auth.TokenSession
	Metrics  *metrics.Metrics
	Gateways *gateway.Set
	Timers   *timer.Manager
	Now      func() time.Time
}

// Build opens the local store, connects the remote store when one is
// configured, and wires the gateways and timer. An unreachable remote store
// is logged and the runtime continues local-only.
func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	rt := &Runtime{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		Now:     time.Now,
	}

	local, err := localstore.Open(cfg.Local.Path)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}
	rt.Local = local

	var tables *gateway.Tables
	if cfg.Remote.Configured() {
		rdb, err := remote.Open(ctx, cfg.Remote)
		if err != nil {
			logger.WithError(err).Warnw("remote store unavailable, continuing local-only",
				"driver", cfg.Remote.Driver)
		} else {
			rt.Remote = rdb
			tables = RemoteTables(rdb)
		}
	}

	rt.Session = auth.NewTokenSession(cfg.Session, rt.Remote != nil, logger)
	rt.Gateways = gateway.NewSet(gateway.Deps{
		Sessions: rt.Session,
		Local:    local,
		Logger:   logger,
		Observer: gateway.Observers{
			gateway.NewLogObserver(logger),
			rt.Metrics,
		},
		Now:          func() time.Time { return rt.Now() },
		ReadTimeout:  cfg.Remote.ReadTimeout,
		WriteTimeout: cfg.Remote.WriteTimeout,
	}, tables)

	rt.Timers = timer.NewManager(local, rt.Gateways.Sessions, rt.Gateways.Goals, timer.Options{
		Observer:          rt.Metrics,
		Logger:            logger,
		Now:               func() time.Time { return rt.Now() },
		DefaultEfficiency: cfg.Timer.DefaultEfficiency,
	})
	if err := rt.Timers.Load(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("loading timers: %w", err)
	}
	return rt, nil
}

// RemoteTables wraps db in the table set the gateways route to.
func RemoteTables(db *remote.DB) *gateway.Tables {
	return &gateway.Tables{
		Tasks:      remote.NewTaskTable(db),
		Categories: remote.NewCategoryTable(db),
		Goals:      remote.NewGoalTable(db),
		Sessions:   remote.NewSessionTable(db),
		Events:     remote.NewEventTable(db),
	}
}

// Owner returns the signed-in user id, or "" when the local path serves.
func (rt *Runtime) Owner(ctx context.Context) string {
	if sess := rt.Session.CurrentSession(ctx); sess != nil {
		return sess.UserID
	}
	return ""
}

// Mode describes which store serves gateway calls right now.
func (rt *Runtime) Mode(ctx context.Context) string {
	switch {
	case rt.Remote == nil:
		return gateway.PathLocal
	case rt.Session.CurrentSession(ctx) == nil:
		return gateway.PathLocal + " (signed out)"
	default:
		return gateway.PathRemote
	}
}

// Close releases the stores and writes the metrics textfile when configured.
func (rt *Runtime) Close() error {
	var firstErr error
	if path := rt.Config.Metrics.Textfile; path != "" && rt.Metrics != nil {
		if err := rt.Metrics.WriteTextfile(path); err != nil {
			rt.Logger.WithError(err).Warnw("writing metrics textfile failed", "path", path)
		}
	}
	if rt.Remote != nil {
		if err := rt.Remote.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if rt.Local != nil {
		if err := rt.Local.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

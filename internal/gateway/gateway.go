// Package gateway routes entity reads and writes to the remote store when a
// remote session exists, and to the local store otherwise. Callers get the
// same shapes back from both paths.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/localstore"
)

var tracer = otel.Tracer("github.com/yosuakev/learnful/internal/gateway")

// Shape tells the generic gateway how to handle one entity type.
type Shape[E any, P any] struct {
	// Entity names the type in logs, metrics and errors.
	Entity string
	// Key is the local-store collection key.
	Key      string
	ID       func(E) string
	Validate func(*P) error
	New      func(id string, in P, now time.Time) E
	Apply    func(e *E, in P, now time.Time)
	// BeforeLocalDelete runs inside the local delete transaction, before the
	// record itself is removed.
	BeforeLocalDelete func(ctx context.Context, s localstore.Store, id string) error
	// BeforeLocalWrite runs inside the local create and update transactions,
	// before the record is stored.
	BeforeLocalWrite func(ctx context.Context, s localstore.Store, in P) error
}

// Gateway implements list/get/create/update/delete for one entity type.
type Gateway[E any, P any] struct {
	shape  Shape[E, P]
	remote RemoteTable[E, P]
	deps   Deps
	coll   localstore.Collection[E]
}

// New builds a gateway. remote may be nil when no remote store is configured.
func New[E any, P any](shape Shape[E, P], remote RemoteTable[E, P], deps Deps) *Gateway[E, P] {
	return &Gateway[E, P]{
		shape:  shape,
		remote: remote,
		deps:   deps.withDefaults(),
		coll:   localstore.NewCollection[E](shape.Key),
	}
}

// route reports whether the remote path serves this call. On the remote path
// the caller-supplied owner must be the signed-in user.
func (g *Gateway[E, P]) route(ctx context.Context, ownerID string) (bool, error) {
	if g.remote == nil || g.deps.Sessions == nil || !g.deps.Sessions.RemoteConfigured() {
		return false, nil
	}
	sess := g.deps.Sessions.CurrentSession(ctx)
	if sess == nil {
		return false, nil
	}
	if ownerID != sess.UserID {
		return true, fmt.Errorf("%s owner %q is not the signed-in user: %w", g.shape.Entity, ownerID, domain.ErrForbidden)
	}
	return true, nil
}

// List returns every record visible to ownerID. It never fails: a remote
// failure is logged and yields an empty list.
func (g *Gateway[E, P]) List(ctx context.Context, ownerID string) []E {
	items, _ := g.list(ctx, ownerID, "list", func(ctx context.Context) ([]E, error) {
		return g.remote.List(ctx, ownerID)
	}, nil)
	return items
}

// list runs a read that returns many records. local filters the local
// collection; nil keeps every record. The bool result reports whether the
// remote path served the call.
func (g *Gateway[E, P]) list(ctx context.Context, ownerID, op string,
	remoteFn func(context.Context) ([]E, error), local func(E) bool) ([]E, bool) {
	start := time.Now()
	isRemote, err := g.route(ctx, ownerID)
	if isRemote {
		var items []E
		if err == nil {
			err = g.callRemote(ctx, op, false, func(ctx context.Context) error {
				var rerr error
				items, rerr = remoteFn(ctx)
				return rerr
			})
		}
		if err != nil {
			g.readFallback(ctx, op, start, err)
			return []E{}, true
		}
		g.observe(ctx, op, PathRemote, start, nil)
		return nonNil(items), true
	}

	items, err := g.coll.Load(ctx, g.deps.Local)
	if err != nil {
		g.deps.Logger.WithComponent("gateway").WithError(err).
			Warnw("local read failed", "entity", g.shape.Entity, "op", op)
		g.observeFallback(ctx, op, PathLocal, start, err)
		return []E{}, false
	}
	if local != nil {
		kept := items[:0]
		for _, it := range items {
			if local(it) {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	g.observe(ctx, op, PathLocal, start, nil)
	return items, false
}

// GetByID returns the record or an error wrapping domain.ErrNotFound. Remote
// failures degrade to not-found with the cause logged.
func (g *Gateway[E, P]) GetByID(ctx context.Context, id, ownerID string) (E, error) {
	var zero E
	start := time.Now()
	isRemote, err := g.route(ctx, ownerID)
	if isRemote {
		var item E
		if err == nil {
			err = g.callRemote(ctx, "get", false, func(ctx context.Context) error {
				var rerr error
				item, rerr = g.remote.Get(ctx, id, ownerID)
				return rerr
			})
		}
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				g.readFallback(ctx, "get", start, err)
			} else {
				g.observe(ctx, "get", PathRemote, start, err)
			}
			return zero, g.notFound(id)
		}
		g.observe(ctx, "get", PathRemote, start, nil)
		return item, nil
	}

	items, err := g.coll.Load(ctx, g.deps.Local)
	if err != nil {
		g.deps.Logger.WithComponent("gateway").WithError(err).
			Warnw("local read failed", "entity", g.shape.Entity, "op", "get", "id", id)
		g.observeFallback(ctx, "get", PathLocal, start, err)
		return zero, g.notFound(id)
	}
	for _, it := range items {
		if g.shape.ID(it) == id {
			g.observe(ctx, "get", PathLocal, start, nil)
			return it, nil
		}
	}
	err = g.notFound(id)
	g.observe(ctx, "get", PathLocal, start, err)
	return zero, err
}

// Create validates in before any I/O, then inserts remotely or prepends a
// local-only record.
func (g *Gateway[E, P]) Create(ctx context.Context, in P, ownerID string) (E, error) {
	var zero E
	if err := g.shape.Validate(&in); err != nil {
		return zero, err
	}
	return g.writeChecked(ctx, "create", ownerID, g.localCheck(in),
		func(ctx context.Context) (E, error) {
			return g.remote.Insert(ctx, in, ownerID)
		},
		func(items []E, now time.Time) ([]E, E, error) {
			rec := g.shape.New(g.deps.IDs.Next(now), in, now)
			return append([]E{rec}, items...), rec, nil
		})
}

// Update replaces the editable fields of the record owned by ownerID.
func (g *Gateway[E, P]) Update(ctx context.Context, id string, in P, ownerID string) (E, error) {
	var zero E
	if err := g.shape.Validate(&in); err != nil {
		return zero, err
	}
	return g.writeChecked(ctx, "update", ownerID, g.localCheck(in),
		func(ctx context.Context) (E, error) {
			return g.remote.Update(ctx, id, in, ownerID)
		},
		g.modifyLocal(id, func(e *E, now time.Time) error {
			g.shape.Apply(e, in, now)
			return nil
		}))
}

// Delete removes the record owned by ownerID.
func (g *Gateway[E, P]) Delete(ctx context.Context, id, ownerID string) error {
	start := time.Now()
	isRemote, err := g.route(ctx, ownerID)
	if isRemote {
		if err == nil {
			err = g.callRemote(ctx, "delete", true, func(ctx context.Context) error {
				return g.remote.Delete(ctx, id, ownerID)
			})
		}
		g.observe(ctx, "delete", PathRemote, start, err)
		return err
	}

	err = g.deps.Local.WithinTx(ctx, func(ctx context.Context, s localstore.Store) error {
		items, err := g.coll.Load(ctx, s)
		if err != nil {
			return err
		}
		idx := g.indexOf(items, id)
		if idx < 0 {
			return g.notFound(id)
		}
		if g.shape.BeforeLocalDelete != nil {
			if err := g.shape.BeforeLocalDelete(ctx, s, id); err != nil {
				return err
			}
		}
		kept := append(items[:idx:idx], items[idx+1:]...)
		return g.coll.Save(ctx, s, kept)
	})
	g.observe(ctx, "delete", PathLocal, start, err)
	return err
}

// write runs a mutation returning one record on whichever path applies.
// local receives the current collection and returns the collection to store.
func (g *Gateway[E, P]) write(ctx context.Context, op, ownerID string,
	remoteFn func(context.Context) (E, error),
	local func(items []E, now time.Time) ([]E, E, error)) (E, error) {
	return g.writeChecked(ctx, op, ownerID, nil, remoteFn, local)
}

// writeChecked is write with a check that runs first inside the local
// transaction.
func (g *Gateway[E, P]) writeChecked(ctx context.Context, op, ownerID string,
	check func(ctx context.Context, s localstore.Store) error,
	remoteFn func(context.Context) (E, error),
	local func(items []E, now time.Time) ([]E, E, error)) (E, error) {
	var zero E
	start := time.Now()
	isRemote, err := g.route(ctx, ownerID)
	if isRemote {
		var rec E
		if err == nil {
			err = g.callRemote(ctx, op, true, func(ctx context.Context) error {
				var rerr error
				rec, rerr = remoteFn(ctx)
				return rerr
			})
		}
		g.observe(ctx, op, PathRemote, start, err)
		if err != nil {
			return zero, err
		}
		return rec, nil
	}

	var rec E
	now := g.deps.Now()
	err = g.deps.Local.WithinTx(ctx, func(ctx context.Context, s localstore.Store) error {
		if check != nil {
			if err := check(ctx, s); err != nil {
				return err
			}
		}
		items, err := g.coll.Load(ctx, s)
		if err != nil {
			return err
		}
		next, r, err := local(items, now)
		if err != nil {
			return err
		}
		rec = r
		return g.coll.Save(ctx, s, next)
	})
	g.observe(ctx, op, PathLocal, start, err)
	if err != nil {
		return zero, err
	}
	return rec, nil
}

func (g *Gateway[E, P]) localCheck(in P) func(context.Context, localstore.Store) error {
	if g.shape.BeforeLocalWrite == nil {
		return nil
	}
	return func(ctx context.Context, s localstore.Store) error {
		return g.shape.BeforeLocalWrite(ctx, s, in)
	}
}

// requireLocal returns an error wrapping domain.ErrNotFound unless the local
// collection under key holds id.
func requireLocal[T interface{ RecordID() string }](ctx context.Context, s localstore.Store, key, entity, id string) error {
	items, err := localstore.NewCollection[T](key).Load(ctx, s)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.RecordID() == id {
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
}

// modifyLocal returns a local mutation that edits the record with id in place.
func (g *Gateway[E, P]) modifyLocal(id string, edit func(e *E, now time.Time) error) func([]E, time.Time) ([]E, E, error) {
	return func(items []E, now time.Time) ([]E, E, error) {
		var zero E
		idx := g.indexOf(items, id)
		if idx < 0 {
			return nil, zero, g.notFound(id)
		}
		if err := edit(&items[idx], now); err != nil {
			return nil, zero, err
		}
		return items, items[idx], nil
	}
}

func (g *Gateway[E, P]) indexOf(items []E, id string) int {
	for i, it := range items {
		if g.shape.ID(it) == id {
			return i
		}
	}
	return -1
}

// callRemote bounds fn by the read or write timeout, traces it and maps
// backend failures onto domain.ErrRemoteUnavailable.
func (g *Gateway[E, P]) callRemote(ctx context.Context, op string, write bool, fn func(context.Context) error) error {
	timeout := g.deps.ReadTimeout
	if write {
		timeout = g.deps.WriteTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "remote."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("learnful.entity", g.shape.Entity),
			attribute.String("learnful.op", op),
		))
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return classify(err)
}

func classify(err error) error {
	if err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
}

func (g *Gateway[E, P]) notFound(id string) error {
	return fmt.Errorf("%s %s: %w", g.shape.Entity, id, domain.ErrNotFound)
}

func (g *Gateway[E, P]) readFallback(ctx context.Context, op string, start time.Time, err error) {
	g.deps.Logger.WithComponent("gateway").WithError(err).
		Warnw("remote read failed, returning empty result", "entity", g.shape.Entity, "op", op)
	g.observeFallback(ctx, op, PathRemote, start, err)
}

func (g *Gateway[E, P]) observe(ctx context.Context, op, path string, start time.Time, err error) {
	g.deps.Observer.ObserveOp(ctx, OpEvent{
		Entity:   g.shape.Entity,
		Op:       op,
		Path:     path,
		Duration: time.Since(start),
		Err:      err,
	})
}

func (g *Gateway[E, P]) observeFallback(ctx context.Context, op, path string, start time.Time, err error) {
	g.deps.Observer.ObserveOp(ctx, OpEvent{
		Entity:   g.shape.Entity,
		Op:       op,
		Path:     path,
		Duration: time.Since(start),
		Err:      err,
		Fallback: true,
	})
}

func nonNil[E any](items []E) []E {
	if items == nil {
		return []E{}
	}
	return items
}

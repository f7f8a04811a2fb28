// Package remote is the authoritative relational store. Every query is scoped
// by user_id. Queries are written with ? placeholders and rebound for the
// driver in use, so the same tables run on PostgreSQL and SQLite.
package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/yosuakev/learnful/internal/config"
	"github.com/yosuakev/learnful/internal/domain"
)

// DB wraps sqlx.DB with the clock used for server-side timestamps.
type DB struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open connects, verifies the connection and applies the schema.
func Open(ctx context.Context, cfg config.RemoteConfig) (*DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	if cfg.Driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := New(db)
	if err := d.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an existing connection. The schema is not applied.
func New(db *sqlx.DB) *DB {
	return &DB{db: db, now: time.Now}
}

// SetClock replaces the clock used for created_at and completed_at.
func (d *DB) SetClock(now func() time.Time) {
	d.now = now
}

func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Ping reports whether the store answers within ctx.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate creates missing tables and indexes.
func (d *DB) Migrate(ctx context.Context) error {
	if d.db.DriverName() == "sqlite" {
		if _, err := d.db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			return fmt.Errorf("enabling foreign keys: %w", err)
		}
	}
	for i, stmt := range schema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("remote migration %d: %w", i, err)
		}
	}
	return nil
}

// WithTransaction executes fn within a transaction.
func (d *DB) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (d *DB) timestamp() string {
	return formatTime(d.now())
}

// exec runs a rebound statement and returns the affected row count.
func exec(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func get(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func selectRows(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

// missing explains why an owner-scoped write matched zero rows: the id is
// either unknown or owned by someone else.
func missing(ctx context.Context, q sqlx.ExtContext, table, id string) error {
	var owner string
	err := get(ctx, q, &owner, `SELECT user_id FROM `+table+` WHERE id = ?`, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrNotFound
	case err != nil:
		return err
	default:
		return domain.ErrForbidden
	}
}

// checkOwner returns nil when id exists in table and belongs to ownerID.
func checkOwner(ctx context.Context, q sqlx.ExtContext, table, id, ownerID string) error {
	var owner string
	if err := get(ctx, q, &owner, `SELECT user_id FROM `+table+` WHERE id = ?`, id); err != nil {
		return err
	}
	if owner != ownerID {
		return domain.ErrForbidden
	}
	return nil
}

// ref names a foreign key column and the id a write is about to store in it.
type ref struct {
	column string
	table  string
	id     *string
}

// checkRefs verifies that every non-nil reference exists and belongs to
// ownerID, so a row can never point at another user's record.
func checkRefs(ctx context.Context, q sqlx.ExtContext, ownerID string, refs ...ref) error {
	for _, r := range refs {
		if r.id == nil {
			continue
		}
		if err := checkOwner(ctx, q, r.table, *r.id, ownerID); err != nil {
			return fmt.Errorf("%s %s: %w", r.column, *r.id, err)
		}
	}
	return nil
}

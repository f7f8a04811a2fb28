// Package localstore is the durable on-device key-value fallback used when no
// remote session is available. Values are JSON documents keyed by collection
// name or by active timer.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yosuakev/learnful/internal/db"
)

// Store is the string-keyed surface the gateways and the timer depend on.
// Every call completes its write before returning.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// TxStore is a Store that can apply several writes atomically.
type TxStore interface {
	Store
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// SQLiteStore implements TxStore on the local_kv table.
type SQLiteStore struct {
	database *sql.DB
	conn     db.DBTX
	uow      db.UnitOfWork
	now      func() time.Time
}

var _ TxStore = (*SQLiteStore)(nil)

func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		database: database,
		conn:     database,
		uow:      db.NewSQLiteUnitOfWork(database),
		now:      time.Now,
	}
}

// NewSQLiteStoreWithUoW is NewSQLiteStore with a caller-supplied transaction
// runner, used to inject failures into multi-write operations.
func NewSQLiteStoreWithUoW(database *sql.DB, uow db.UnitOfWork) *SQLiteStore {
	s := NewSQLiteStore(database)
	s.uow = uow
	return s
}

// Open opens (or creates) the store file at path.
func Open(path string) (*SQLiteStore, error) {
	database, err := db.OpenDB(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(database), nil
}

func (s *SQLiteStore) Close() error {
	return s.database.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM local_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO local_kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM local_kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Keys lists keys starting with prefix in lexical order.
func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT key FROM local_kv WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// WithinTx runs fn against a store bound to a single transaction. Nothing
// fn writes is visible unless it returns nil.
func (s *SQLiteStore) WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &SQLiteStore{database: s.database, conn: tx, uow: s.uow, now: s.now})
	})
}

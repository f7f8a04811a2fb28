package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/yosuakev/learnful/internal/db"
	"github.com/yosuakev/learnful/internal/localstore"
)

// FailOnNthExecUoW is a test UoW that injects an error on the Nth ExecContext
// call within a transaction. This enables rollback tests by simulating
// failures at precise points in multi-write operations such as a goal delete
// that also rewrites the study session collection.
//
// ExecContext calls are counted starting at 1. Reads pass through normally.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthExec{DBTX: tx, failOn: u.FailOn, err: u.Err}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnNthExec struct {
	db.DBTX
	count  atomic.Int32
	failOn int32
	err    error
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.count.Add(1)
	if n == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// NewFailingTxStore returns a store whose transactions fail on the Nth write.
// Writes outside a transaction are unaffected.
func NewFailingTxStore(database *sql.DB, failOn int32, err error) *localstore.SQLiteStore {
	return localstore.NewSQLiteStoreWithUoW(database, &FailOnNthExecUoW{DB: database, FailOn: failOn, Err: err})
}

// FailingStore wraps a Store and fails selected operations.
type FailingStore struct {
	localstore.Store
	GetErr    error
	SetErr    error
	RemoveErr error
}

func (f *FailingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	return f.Store.Get(ctx, key)
}

func (f *FailingStore) Set(ctx context.Context, key, value string) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	return f.Store.Set(ctx, key, value)
}

func (f *FailingStore) Remove(ctx context.Context, key string) error {
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	return f.Store.Remove(ctx, key)
}

package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/yosuakev/learnful/internal/db"
	"github.com/yosuakev/learnful/internal/localstore"
	"github.com/yosuakev/learnful/internal/remote"
)

// NewTestDB creates an in-memory SQLite database with the local schema
// applied. The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestStore returns a local store over a fresh in-memory database.
func NewTestStore(t *testing.T) *localstore.SQLiteStore {
	t.Helper()
	return localstore.NewSQLiteStore(NewTestDB(t))
}

// NewTestRemote returns a migrated remote store backed by in-memory SQLite.
// The clock is fixed to clock.Now so timestamps are predictable.
func NewTestRemote(t *testing.T, clock *Clock) *remote.DB {
	t.Helper()
	conn, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open remote test database: %v", err)
	}
	// One connection keeps every statement on the same in-memory database.
	conn.SetMaxOpenConns(1)
	rdb := remote.New(conn)
	if clock != nil {
		rdb.SetClock(clock.Now)
	}
	if err := rdb.Migrate(context.Background()); err != nil {
		conn.Close()
		t.Fatalf("failed to migrate remote test database: %v", err)
	}
	t.Cleanup(func() {
		rdb.Close()
	})
	return rdb
}

package remote

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yosuakev/learnful/internal/domain"
)

type SessionTable struct {
	db *DB
}

func NewSessionTable(db *DB) *SessionTable {
	return &SessionTable{db: db}
}

type sessionRow struct {
	ID          string `db:"id"`
	UserID      string `db:"user_id"`
	GoalID      string `db:"goal_id"`
	Duration    int    `db:"duration"`
	Efficiency  int    `db:"efficiency"`
	SessionDate string `db:"session_date"`
	Notes       string `db:"notes"`
	CreatedAt   string `db:"created_at"`
}

const sessionColumns = `id, user_id, goal_id, duration, efficiency, session_date, notes, created_at`

func populateSession(r sessionRow) domain.StudySession {
	return domain.StudySession{
		Record:      domain.Record{ID: r.ID, UserID: r.UserID, CreatedAt: parseTime(r.CreatedAt)},
		GoalID:      r.GoalID,
		Duration:    r.Duration,
		Efficiency:  r.Efficiency,
		SessionDate: parseTime(r.SessionDate),
		Notes:       r.Notes,
	}
}

func (r *SessionTable) List(ctx context.Context, ownerID string) ([]domain.StudySession, error) {
	return r.query(ctx, `WHERE user_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
}

// ListByGoal returns one goal's sessions, most recent session_date first.
func (r *SessionTable) ListByGoal(ctx context.Context, goalID, ownerID string) ([]domain.StudySession, error) {
	return r.query(ctx, `WHERE goal_id = ? AND user_id = ? ORDER BY session_date DESC, id DESC`, goalID, ownerID)
}

func (r *SessionTable) query(ctx context.Context, where string, args ...any) ([]domain.StudySession, error) {
	var rows []sessionRow
	if err := selectRows(ctx, r.db.db, &rows, `SELECT `+sessionColumns+` FROM study_sessions `+where, args...); err != nil {
		return nil, fmt.Errorf("listing study sessions: %w", err)
	}
	out := make([]domain.StudySession, len(rows))
	for i, row := range rows {
		out[i] = populateSession(row)
	}
	return out, nil
}

func (r *SessionTable) Get(ctx context.Context, id, ownerID string) (domain.StudySession, error) {
	var row sessionRow
	if err := get(ctx, r.db.db, &row,
		`SELECT `+sessionColumns+` FROM study_sessions WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return domain.StudySession{}, fmt.Errorf("getting study session %s: %w", id, err)
	}
	return populateSession(row), nil
}

// Insert logs a session against a goal the owner holds.
func (r *SessionTable) Insert(ctx context.Context, in domain.StudySessionInput, ownerID string) (domain.StudySession, error) {
	id := uuid.New().String()
	now := r.db.now()
	date := now
	if !in.SessionDate.IsZero() {
		date = in.SessionDate
	}
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "learning_goals", in.GoalID, ownerID); err != nil {
			return fmt.Errorf("goal %s: %w", in.GoalID, err)
		}
		_, err := exec(ctx, tx,
			`INSERT INTO study_sessions (id, user_id, goal_id, duration, efficiency, session_date, notes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ownerID, in.GoalID, in.Duration, in.Efficiency, formatTime(date), in.Notes, formatTime(now))
		return err
	})
	if err != nil {
		return domain.StudySession{}, fmt.Errorf("inserting study session: %w", err)
	}
	return r.Get(ctx, id, ownerID)
}

func (r *SessionTable) Update(ctx context.Context, id string, in domain.StudySessionInput, ownerID string) (domain.StudySession, error) {
	date := in.SessionDate
	if date.IsZero() {
		date = r.db.now()
	}
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "study_sessions", id, ownerID); err != nil {
			return err
		}
		if err := checkRefs(ctx, tx, ownerID, ref{"goal_id", "learning_goals", &in.GoalID}); err != nil {
			return err
		}
		_, err := exec(ctx, tx,
			`UPDATE study_sessions SET goal_id = ?, duration = ?, efficiency = ?, session_date = ?, notes = ?
			 WHERE id = ? AND user_id = ?`,
			in.GoalID, in.Duration, in.Efficiency, formatTime(date), in.Notes, id, ownerID)
		return err
	})
	if err != nil {
		return domain.StudySession{}, fmt.Errorf("updating study session %s: %w", id, err)
	}
	return r.Get(ctx, id, ownerID)
}

func (r *SessionTable) Delete(ctx context.Context, id, ownerID string) error {
	n, err := exec(ctx, r.db.db, `DELETE FROM study_sessions WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting study session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting study session %s: %w", id, missing(ctx, r.db.db, "study_sessions", id))
	}
	return nil
}

package remote

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yosuakev/learnful/internal/domain"
)

type GoalTable struct {
	db *DB
}

func NewGoalTable(db *DB) *GoalTable {
	return &GoalTable{db: db}
}

type goalRow struct {
	ID                 string  `db:"id"`
	UserID             string  `db:"user_id"`
	Title              string  `db:"title"`
	Description        string  `db:"description"`
	TargetHoursPerWeek float64 `db:"target_hours_per_week"`
	Color              string  `db:"color"`
	CurrentProgress    int     `db:"current_progress"`
	CreatedAt          string  `db:"created_at"`
}

const goalColumns = `id, user_id, title, description, target_hours_per_week, color, current_progress, created_at`

func populateGoal(r goalRow) domain.LearningGoal {
	return domain.LearningGoal{
		Record:             domain.Record{ID: r.ID, UserID: r.UserID, CreatedAt: parseTime(r.CreatedAt)},
		Title:              r.Title,
		Description:        r.Description,
		TargetHoursPerWeek: r.TargetHoursPerWeek,
		Color:              r.Color,
		CurrentProgress:    r.CurrentProgress,
	}
}

func (r *GoalTable) List(ctx context.Context, ownerID string) ([]domain.LearningGoal, error) {
	var rows []goalRow
	if err := selectRows(ctx, r.db.db, &rows,
		`SELECT `+goalColumns+` FROM learning_goals WHERE user_id = ? ORDER BY created_at DESC, id DESC`, ownerID); err != nil {
		return nil, fmt.Errorf("listing learning goals: %w", err)
	}
	out := make([]domain.LearningGoal, len(rows))
	for i, row := range rows {
		out[i] = populateGoal(row)
	}
	return out, nil
}

func (r *GoalTable) Get(ctx context.Context, id, ownerID string) (domain.LearningGoal, error) {
	var row goalRow
	if err := get(ctx, r.db.db, &row,
		`SELECT `+goalColumns+` FROM learning_goals WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return domain.LearningGoal{}, fmt.Errorf("getting learning goal %s: %w", id, err)
	}
	return populateGoal(row), nil
}

func (r *GoalTable) Insert(ctx context.Context, in domain.GoalInput, ownerID string) (domain.LearningGoal, error) {
	id := uuid.New().String()
	progress := 0
	if in.CurrentProgress != nil {
		progress = *in.CurrentProgress
	}
	if _, err := exec(ctx, r.db.db,
		`INSERT INTO learning_goals (id, user_id, title, description, target_hours_per_week, color, current_progress, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, in.Title, in.Description, in.TargetHoursPerWeek, in.Color, progress, r.db.timestamp()); err != nil {
		return domain.LearningGoal{}, fmt.Errorf("inserting learning goal: %w", err)
	}
	return r.Get(ctx, id, ownerID)
}

// Update replaces the editable fields. current_progress changes only when the
// payload carries it.
func (r *GoalTable) Update(ctx context.Context, id string, in domain.GoalInput, ownerID string) (domain.LearningGoal, error) {
	var progress interface{}
	if in.CurrentProgress != nil {
		progress = *in.CurrentProgress
	}
	n, err := exec(ctx, r.db.db,
		`UPDATE learning_goals SET title = ?, description = ?, target_hours_per_week = ?, color = ?,
			current_progress = COALESCE(?, current_progress)
		 WHERE id = ? AND user_id = ?`,
		in.Title, in.Description, in.TargetHoursPerWeek, in.Color, progress, id, ownerID)
	if err != nil {
		return domain.LearningGoal{}, fmt.Errorf("updating learning goal %s: %w", id, err)
	}
	if n == 0 {
		return domain.LearningGoal{}, fmt.Errorf("updating learning goal %s: %w", id, missing(ctx, r.db.db, "learning_goals", id))
	}
	return r.Get(ctx, id, ownerID)
}

// Delete removes the goal's study sessions and then the goal, atomically.
func (r *GoalTable) Delete(ctx context.Context, id, ownerID string) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := exec(ctx, tx,
			`DELETE FROM study_sessions WHERE goal_id = ? AND user_id = ?`, id, ownerID); err != nil {
			return fmt.Errorf("deleting sessions of learning goal %s: %w", id, err)
		}
		n, err := exec(ctx, tx, `DELETE FROM learning_goals WHERE id = ? AND user_id = ?`, id, ownerID)
		if err != nil {
			return fmt.Errorf("deleting learning goal %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("deleting learning goal %s: %w", id, missing(ctx, tx, "learning_goals", id))
		}
		return nil
	})
}

// AddProgress increments current_progress in a single statement so
// concurrent completions never lose minutes.
func (r *GoalTable) AddProgress(ctx context.Context, id string, minutes int, ownerID string) (domain.LearningGoal, error) {
	n, err := exec(ctx, r.db.db,
		`UPDATE learning_goals SET current_progress = current_progress + ? WHERE id = ? AND user_id = ?`,
		minutes, id, ownerID)
	if err != nil {
		return domain.LearningGoal{}, fmt.Errorf("adding progress to learning goal %s: %w", id, err)
	}
	if n == 0 {
		return domain.LearningGoal{}, fmt.Errorf("adding progress to learning goal %s: %w", id, missing(ctx, r.db.db, "learning_goals", id))
	}
	return r.Get(ctx, id, ownerID)
}

package remote

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yosuakev/learnful/internal/domain"
)

// TaskTable reads and writes tasks with their category and subtasks joined.
type TaskTable struct {
	db *DB
}

func NewTaskTable(db *DB) *TaskTable {
	return &TaskTable{db: db}
}

type taskRow struct {
	ID                string         `db:"id"`
	UserID            string         `db:"user_id"`
	Title             string         `db:"title"`
	Description       string         `db:"description"`
	CategoryID        sql.NullString `db:"category_id"`
	Priority          string         `db:"priority"`
	Status            string         `db:"status"`
	DueDate           sql.NullString `db:"due_date"`
	EstimatedDuration int            `db:"estimated_duration"`
	CompletedAt       sql.NullString `db:"completed_at"`
	CreatedAt         string         `db:"created_at"`
	CategoryUserID    sql.NullString `db:"category_user_id"`
	CategoryName      sql.NullString `db:"category_name"`
	CategoryColor     sql.NullString `db:"category_color"`
	CategoryCreatedAt sql.NullString `db:"category_created_at"`
}

type subtaskRow struct {
	ID          string `db:"id"`
	TaskID      string `db:"task_id"`
	Title       string `db:"title"`
	IsCompleted int    `db:"is_completed"`
	CreatedAt   string `db:"created_at"`
}

const taskColumns = `t.id, t.user_id, t.title, t.description, t.category_id, t.priority, t.status,
	t.due_date, t.estimated_duration, t.completed_at, t.created_at,
	c.user_id AS category_user_id, c.name AS category_name, c.color AS category_color,
	c.created_at AS category_created_at`

const taskFrom = ` FROM tasks t LEFT JOIN categories c ON c.id = t.category_id AND c.user_id = t.user_id`

func populateTask(r taskRow) domain.Task {
	t := domain.Task{
		Record: domain.Record{
			ID:        r.ID,
			UserID:    r.UserID,
			CreatedAt: parseTime(r.CreatedAt),
		},
		Title:             r.Title,
		Description:       r.Description,
		CategoryID:        stringPtr(r.CategoryID),
		Priority:          domain.Priority(r.Priority),
		Status:            domain.TaskStatus(r.Status),
		DueDate:           parseNullableTime(r.DueDate),
		EstimatedDuration: r.EstimatedDuration,
		CompletedAt:       parseNullableTime(r.CompletedAt),
		Subtasks:          []domain.Subtask{},
	}
	if r.CategoryID.Valid && r.CategoryName.Valid {
		t.Category = &domain.Category{
			Record: domain.Record{
				ID:        r.CategoryID.String,
				UserID:    r.CategoryUserID.String,
				CreatedAt: parseTime(r.CategoryCreatedAt.String),
			},
			Name:  r.CategoryName.String,
			Color: r.CategoryColor.String,
		}
	}
	return t
}

func (r *TaskTable) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return r.list(ctx, r.db.db, ownerID)
}

func (r *TaskTable) list(ctx context.Context, q sqlx.ExtContext, ownerID string) ([]domain.Task, error) {
	var rows []taskRow
	err := selectRows(ctx, q, &rows,
		`SELECT `+taskColumns+taskFrom+` WHERE t.user_id = ? ORDER BY t.created_at DESC, t.id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	tasks := make([]domain.Task, len(rows))
	for i, row := range rows {
		tasks[i] = populateTask(row)
	}
	if err := r.attachSubtasks(ctx, q, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskTable) Get(ctx context.Context, id, ownerID string) (domain.Task, error) {
	return r.get(ctx, r.db.db, id, ownerID)
}

func (r *TaskTable) get(ctx context.Context, q sqlx.ExtContext, id, ownerID string) (domain.Task, error) {
	var row taskRow
	if err := get(ctx, q, &row, `SELECT `+taskColumns+taskFrom+` WHERE t.id = ? AND t.user_id = ?`, id, ownerID); err != nil {
		return domain.Task{}, fmt.Errorf("getting task %s: %w", id, err)
	}
	tasks := []domain.Task{populateTask(row)}
	if err := r.attachSubtasks(ctx, q, tasks); err != nil {
		return domain.Task{}, err
	}
	return tasks[0], nil
}

// attachSubtasks loads subtasks for all tasks in one query, in position order.
func (r *TaskTable) attachSubtasks(ctx context.Context, q sqlx.ExtContext, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, len(tasks))
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		index[t.ID] = i
	}
	query, args, err := sqlx.In(
		`SELECT id, task_id, title, is_completed, created_at FROM subtasks
		 WHERE task_id IN (?) ORDER BY position, created_at, id`, ids)
	if err != nil {
		return fmt.Errorf("building subtask query: %w", err)
	}
	var rows []subtaskRow
	if err := selectRows(ctx, q, &rows, query, args...); err != nil {
		return fmt.Errorf("listing subtasks: %w", err)
	}
	for _, row := range rows {
		i := index[row.TaskID]
		tasks[i].Subtasks = append(tasks[i].Subtasks, domain.Subtask{
			ID:          row.ID,
			Title:       row.Title,
			IsCompleted: intToBool(row.IsCompleted),
			CreatedAt:   parseTime(row.CreatedAt),
		})
	}
	return nil
}

// Insert creates a task owned by ownerID and returns the stored row.
func (r *TaskTable) Insert(ctx context.Context, in domain.TaskInput, ownerID string) (domain.Task, error) {
	id := uuid.New().String()
	now := r.db.timestamp()
	var completedAt interface{}
	if in.Status == domain.TaskDone {
		completedAt = now
	}
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := checkRefs(ctx, tx, ownerID, ref{"category_id", "categories", in.CategoryID}); err != nil {
			return err
		}
		_, err := exec(ctx, tx,
			`INSERT INTO tasks (id, user_id, title, description, category_id, priority, status,
				due_date, estimated_duration, completed_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ownerID, in.Title, in.Description, nullableString(in.CategoryID), string(in.Priority),
			string(in.Status), nullableTimeToString(in.DueDate), in.EstimatedDuration, completedAt, now)
		return err
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("inserting task: %w", err)
	}
	return r.Get(ctx, id, ownerID)
}

// Update replaces the editable fields. completed_at is recomputed on every
// call and an existing completion time survives a repeated "done".
func (r *TaskTable) Update(ctx context.Context, id string, in domain.TaskInput, ownerID string) (domain.Task, error) {
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "tasks", id, ownerID); err != nil {
			return err
		}
		if err := checkRefs(ctx, tx, ownerID, ref{"category_id", "categories", in.CategoryID}); err != nil {
			return err
		}
		_, err := exec(ctx, tx,
			`UPDATE tasks SET title = ?, description = ?, category_id = ?, priority = ?, status = ?,
				due_date = ?, estimated_duration = ?,
				completed_at = CASE WHEN ? = 'done' THEN COALESCE(completed_at, ?) ELSE NULL END
			 WHERE id = ? AND user_id = ?`,
			in.Title, in.Description, nullableString(in.CategoryID), string(in.Priority), string(in.Status),
			nullableTimeToString(in.DueDate), in.EstimatedDuration,
			string(in.Status), r.db.timestamp(),
			id, ownerID)
		return err
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("updating task %s: %w", id, err)
	}
	return r.Get(ctx, id, ownerID)
}

func (r *TaskTable) Delete(ctx context.Context, id, ownerID string) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := exec(ctx, tx,
			`DELETE FROM subtasks WHERE task_id IN (SELECT id FROM tasks WHERE id = ? AND user_id = ?)`,
			id, ownerID); err != nil {
			return fmt.Errorf("deleting subtasks of task %s: %w", id, err)
		}
		n, err := exec(ctx, tx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
		if err != nil {
			return fmt.Errorf("deleting task %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("deleting task %s: %w", id, missing(ctx, tx, "tasks", id))
		}
		return nil
	})
}

// AddSubtask appends a subtask to an owned task and returns the task.
func (r *TaskTable) AddSubtask(ctx context.Context, taskID, title, ownerID string) (domain.Task, error) {
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "tasks", taskID, ownerID); err != nil {
			return err
		}
		var next int
		if err := get(ctx, tx, &next,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM subtasks WHERE task_id = ?`, taskID); err != nil {
			return err
		}
		_, err := exec(ctx, tx,
			`INSERT INTO subtasks (id, task_id, title, is_completed, position, created_at) VALUES (?, ?, ?, 0, ?, ?)`,
			uuid.New().String(), taskID, title, next, r.db.timestamp())
		return err
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("adding subtask to task %s: %w", taskID, err)
	}
	return r.Get(ctx, taskID, ownerID)
}

// SetSubtaskCompleted toggles one subtask of an owned task.
func (r *TaskTable) SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, done bool, ownerID string) (domain.Task, error) {
	if err := checkOwner(ctx, r.db.db, "tasks", taskID, ownerID); err != nil {
		return domain.Task{}, fmt.Errorf("updating subtask %s: %w", subtaskID, err)
	}
	n, err := exec(ctx, r.db.db,
		`UPDATE subtasks SET is_completed = ? WHERE id = ? AND task_id = ?`,
		boolToInt(done), subtaskID, taskID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("updating subtask %s: %w", subtaskID, err)
	}
	if n == 0 {
		return domain.Task{}, fmt.Errorf("updating subtask %s: %w", subtaskID, domain.ErrNotFound)
	}
	return r.Get(ctx, taskID, ownerID)
}

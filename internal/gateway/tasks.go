package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yosuakev/learnful/internal/domain"
)

// TaskGateway adds subtask operations to the generic task gateway.
type TaskGateway struct {
	*Gateway[domain.Task, domain.TaskInput]
	table TaskTable
}

func NewTaskGateway(table TaskTable, deps Deps) *TaskGateway {
	shape := Shape[domain.Task, domain.TaskInput]{
		Entity:   "task",
		Key:      domain.KeyTasks,
		ID:       func(t domain.Task) string { return t.ID },
		Validate: domain.ValidateTask,
		New:      domain.NewLocalTask,
		Apply:    func(t *domain.Task, in domain.TaskInput, now time.Time) { t.Apply(in, now) },
	}
	var remote RemoteTable[domain.Task, domain.TaskInput]
	if table != nil {
		remote = table
	}
	return &TaskGateway{Gateway: New(shape, remote, deps), table: table}
}

// AddSubtask appends an incomplete subtask and returns the updated task.
func (g *TaskGateway) AddSubtask(ctx context.Context, taskID, title, ownerID string) (domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Task{}, domain.NewValidationError("subtask", "title", "required")
	}
	return g.write(ctx, "add_subtask", ownerID,
		func(ctx context.Context) (domain.Task, error) {
			return g.table.AddSubtask(ctx, taskID, title, ownerID)
		},
		g.modifyLocal(taskID, func(t *domain.Task, now time.Time) error {
			t.Subtasks = append(t.Subtasks, domain.Subtask{
				ID:        uuid.New().String(),
				Title:     title,
				CreatedAt: now.UTC(),
			})
			return nil
		}))
}

// SetSubtaskCompleted marks one subtask done or not done.
func (g *TaskGateway) SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, done bool, ownerID string) (domain.Task, error) {
	return g.write(ctx, "set_subtask", ownerID,
		func(ctx context.Context) (domain.Task, error) {
			return g.table.SetSubtaskCompleted(ctx, taskID, subtaskID, done, ownerID)
		},
		g.modifyLocal(taskID, func(t *domain.Task, _ time.Time) error {
			for i := range t.Subtasks {
				if t.Subtasks[i].ID == subtaskID {
					t.Subtasks[i].IsCompleted = done
					return nil
				}
			}
			return g.notFound(taskID + "/" + subtaskID)
		}))
}

package gateway

import (
	"context"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/localstore"
)

// GoalGateway deletes a goal's study sessions along with it and exposes an
// atomic progress increment.
type GoalGateway struct {
	*Gateway[domain.LearningGoal, domain.GoalInput]
	table GoalTable
}

func NewGoalGateway(table GoalTable, deps Deps) *GoalGateway {
	sessions := localstore.NewCollection[domain.StudySession](domain.KeyStudySessions)
	shape := Shape[domain.LearningGoal, domain.GoalInput]{
		Entity:   "learning_goal",
		Key:      domain.KeyLearningGoals,
		ID:       func(g domain.LearningGoal) string { return g.ID },
		Validate: domain.ValidateGoal,
		New:      domain.NewLocalGoal,
		Apply:    func(g *domain.LearningGoal, in domain.GoalInput, now time.Time) { g.Apply(in, now) },
		// Sessions go first so a reload never shows orphans.
		BeforeLocalDelete: func(ctx context.Context, s localstore.Store, id string) error {
			items, err := sessions.Load(ctx, s)
			if err != nil {
				return err
			}
			kept := make([]domain.StudySession, 0, len(items))
			for _, it := range items {
				if it.GoalID != id {
					kept = append(kept, it)
				}
			}
			return sessions.Save(ctx, s, kept)
		},
	}
	var remote RemoteTable[domain.LearningGoal, domain.GoalInput]
	if table != nil {
		remote = table
	}
	return &GoalGateway{Gateway: New(shape, remote, deps), table: table}
}

// AddProgress adds minutes to the goal's current progress and returns the
// updated goal.
func (g *GoalGateway) AddProgress(ctx context.Context, goalID string, minutes int, ownerID string) (domain.LearningGoal, error) {
	if minutes <= 0 {
		return domain.LearningGoal{}, domain.NewValidationError("learning goal", "minutes", "gt=0")
	}
	return g.write(ctx, "add_progress", ownerID,
		func(ctx context.Context) (domain.LearningGoal, error) {
			return g.table.AddProgress(ctx, goalID, minutes, ownerID)
		},
		g.modifyLocal(goalID, func(goal *domain.LearningGoal, _ time.Time) error {
			goal.AddProgress(minutes)
			return nil
		}))
}

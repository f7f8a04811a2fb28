package gateway

import (
	"context"
	"sort"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/localstore"
)

type SessionGateway struct {
	*Gateway[domain.StudySession, domain.StudySessionInput]
	table SessionTable
}

func NewSessionGateway(table SessionTable, deps Deps) *SessionGateway {
	shape := Shape[domain.StudySession, domain.StudySessionInput]{
		Entity:   "study_session",
		Key:      domain.KeyStudySessions,
		ID:       func(s domain.StudySession) string { return s.ID },
		Validate: domain.ValidateStudySession,
		New:      domain.NewLocalStudySession,
		Apply:    func(s *domain.StudySession, in domain.StudySessionInput, now time.Time) { s.Apply(in, now) },
		BeforeLocalWrite: func(ctx context.Context, s localstore.Store, in domain.StudySessionInput) error {
			return requireLocal[domain.LearningGoal](ctx, s, domain.KeyLearningGoals, "learning goal", in.GoalID)
		},
	}
	var remote RemoteTable[domain.StudySession, domain.StudySessionInput]
	if table != nil {
		remote = table
	}
	return &SessionGateway{Gateway: New(shape, remote, deps), table: table}
}

// ListByGoal returns one goal's sessions, most recent first. Like List it
// never fails.
func (g *SessionGateway) ListByGoal(ctx context.Context, goalID, ownerID string) []domain.StudySession {
	items, isRemote := g.list(ctx, ownerID, "list_by_goal", func(ctx context.Context) ([]domain.StudySession, error) {
		return g.table.ListByGoal(ctx, goalID, ownerID)
	}, func(s domain.StudySession) bool {
		return s.GoalID == goalID
	})
	if !isRemote {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SessionDate.After(items[j].SessionDate)
		})
	}
	return items
}

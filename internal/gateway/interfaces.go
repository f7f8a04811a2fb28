package gateway

import (
	"context"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/localstore"
	"github.com/yosuakev/learnful/internal/logging"
)

// SessionSource is queried before every gateway call to choose a path.
type SessionSource interface {
	RemoteConfigured() bool
	// CurrentSession returns nil when nobody is signed in.
	CurrentSession(ctx context.Context) *domain.UserSession
}

// RemoteTable is the owner-scoped contract every remote entity table meets.
type RemoteTable[E any, P any] interface {
	List(ctx context.Context, ownerID string) ([]E, error)
	Get(ctx context.Context, id, ownerID string) (E, error)
	Insert(ctx context.Context, in P, ownerID string) (E, error)
	Update(ctx context.Context, id string, in P, ownerID string) (E, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type TaskTable interface {
	RemoteTable[domain.Task, domain.TaskInput]
	AddSubtask(ctx context.Context, taskID, title, ownerID string) (domain.Task, error)
	SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, done bool, ownerID string) (domain.Task, error)
}

type CategoryTable interface {
	RemoteTable[domain.Category, domain.CategoryInput]
	SeedDefaults(ctx context.Context, ownerID string) ([]domain.Category, error)
}

type GoalTable interface {
	RemoteTable[domain.LearningGoal, domain.GoalInput]
	AddProgress(ctx context.Context, id string, minutes int, ownerID string) (domain.LearningGoal, error)
}

type SessionTable interface {
	RemoteTable[domain.StudySession, domain.StudySessionInput]
	ListByGoal(ctx context.Context, goalID, ownerID string) ([]domain.StudySession, error)
}

type EventTable interface {
	RemoteTable[domain.CalendarEvent, domain.CalendarEventInput]
}

// Tables bundles the remote tables. A nil *Tables means no remote store.
type Tables struct {
	Tasks      TaskTable
	Categories CategoryTable
	Goals      GoalTable
	Sessions   SessionTable
	Events     EventTable
}

// Deps are the collaborators shared by every gateway.
type Deps struct {
	Sessions     SessionSource
	Local        localstore.TxStore
	Logger       *logging.Logger
	Observer     Observer
	Now          func() time.Time
	IDs          *IDGenerator
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Observer == nil {
		d.Observer = NoopObserver{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.IDs == nil {
		d.IDs = NewIDGenerator()
	}
	return d
}

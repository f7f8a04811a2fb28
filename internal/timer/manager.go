// Package timer tracks elapsed study time per learning goal. Elapsed time is
// derived from wall-clock timestamps, so it survives suspended processes,
// restarts and crashes. Every transition is persisted before it returns.
package timer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/localstore"
	"github.com/yosuakev/learnful/internal/logging"
)

// SessionLogger records a completed study session.
type SessionLogger interface {
	Create(ctx context.Context, in domain.StudySessionInput, ownerID string) (domain.StudySession, error)
}

// ProgressUpdater adds completed minutes to a goal.
type ProgressUpdater interface {
	AddProgress(ctx context.Context, goalID string, minutes int, ownerID string) (domain.LearningGoal, error)
}

// Observer is notified after each persisted transition.
type Observer interface {
	ObserveTransition(goalID, transition string)
}

type noopObserver struct{}

func (noopObserver) ObserveTransition(string, string) {}

const (
	TransitionStart     = "start"
	TransitionReconcile = "reconcile"
	TransitionResume    = "resume"
	TransitionPause     = "pause"
	TransitionComplete  = "complete"
	TransitionClose     = "close"
)

// CompleteOptions carries the caller's choices for a completed session.
type CompleteOptions struct {
	OwnerID string
	// Efficiency defaults to the manager's default when nil.
	Efficiency *int
	Notes      string
}

// Completion describes a fully or partially recorded session.
type Completion struct {
	GoalID         string
	ElapsedSeconds int64
	Minutes        int
	Session        *domain.StudySession
	Goal           *domain.LearningGoal
}

// Manager owns the active timer record of every goal.
type Manager struct {
	mu       sync.Mutex
	records  map[string]*domain.ActiveTimerRecord
	store    localstore.Store
	sessions SessionLogger
	progress ProgressUpdater
	observer Observer
	logger   *logging.Logger

	// Now is the clock; tests replace it.
	Now               func() time.Time
	DefaultEfficiency int
}

// Options configure a Manager. Zero values select defaults.
type Options struct {
	Observer          Observer
	Logger            *logging.Logger
	Now               func() time.Time
	DefaultEfficiency int
}

func NewManager(store localstore.Store, sessions SessionLogger, progress ProgressUpdater, opts Options) *Manager {
	m := &Manager{
		records:           make(map[string]*domain.ActiveTimerRecord),
		store:             store,
		sessions:          sessions,
		progress:          progress,
		observer:          opts.Observer,
		logger:            opts.Logger,
		Now:               opts.Now,
		DefaultEfficiency: opts.DefaultEfficiency,
	}
	if m.observer == nil {
		m.observer = noopObserver{}
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	m.logger = m.logger.WithComponent("timer")
	if m.Now == nil {
		m.Now = time.Now
	}
	if m.DefaultEfficiency == 0 {
		m.DefaultEfficiency = 100
	}
	return m
}

// Load reads every persisted record into memory, replacing what is held.
// Call it once at startup; records written by earlier processes then behave
// exactly as if this process had created them.
func (m *Manager) Load(ctx context.Context) error {
	keys, err := m.store.Keys(ctx, domain.ActiveTimerKeyPrefix)
	if err != nil {
		return fmt.Errorf("listing timer records: %w", err)
	}
	loaded := make(map[string]*domain.ActiveTimerRecord, len(keys))
	for _, key := range keys {
		goalID := strings.TrimPrefix(key, domain.ActiveTimerKeyPrefix)
		rec, err := m.read(ctx, goalID)
		if err != nil {
			m.logger.WithError(err).Warnw("skipping unreadable timer record", "goal_id", goalID)
			continue
		}
		if rec != nil {
			loaded[goalID] = rec
		}
	}
	m.mu.Lock()
	m.records = loaded
	m.mu.Unlock()
	return nil
}

// Start begins or resumes timing goalID. A paused record resumes with its
// elapsed time intact; a record still marked running (left over from a
// previous process) banks the time since its start and restarts the clock.
func (m *Manager) Start(ctx context.Context, goalID string) (domain.ActiveTimerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(ctx, goalID)
	if err != nil {
		return domain.ActiveTimerRecord{}, err
	}
	transition := TransitionResume
	if rec == nil {
		transition = TransitionStart
		rec = &domain.ActiveTimerRecord{}
	} else if rec.IsRunning {
		transition = TransitionReconcile
	}
	return m.run(ctx, goalID, rec, transition)
}

// Resume is Start restricted to an existing record.
func (m *Manager) Resume(ctx context.Context, goalID string) (domain.ActiveTimerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(ctx, goalID)
	if err != nil {
		return domain.ActiveTimerRecord{}, err
	}
	if rec == nil {
		return domain.ActiveTimerRecord{}, fmt.Errorf("resuming goal %s: %w", goalID, domain.ErrNoActiveTimer)
	}
	transition := TransitionResume
	if rec.IsRunning {
		transition = TransitionReconcile
	}
	return m.run(ctx, goalID, rec, transition)
}

// run moves rec into the running state at now and persists it. Caller holds mu.
func (m *Manager) run(ctx context.Context, goalID string, rec *domain.ActiveTimerRecord, transition string) (domain.ActiveTimerRecord, error) {
	// Stored with millisecond precision; hold the same value in memory.
	now := m.Now().UTC().Truncate(time.Millisecond)
	next := domain.ActiveTimerRecord{
		Elapsed:   rec.ElapsedAt(now),
		StartAt:   &now,
		IsRunning: true,
	}
	if err := m.persist(ctx, goalID, &next); err != nil {
		return domain.ActiveTimerRecord{}, err
	}
	m.observer.ObserveTransition(goalID, transition)
	return next, nil
}

// Pause banks the running time and stops the clock. Pausing a paused timer
// is a no-op; pausing a goal with no record returns ErrNoActiveTimer.
func (m *Manager) Pause(ctx context.Context, goalID string) (domain.ActiveTimerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(ctx, goalID)
	if err != nil {
		return domain.ActiveTimerRecord{}, err
	}
	if rec == nil {
		return domain.ActiveTimerRecord{}, fmt.Errorf("pausing goal %s: %w", goalID, domain.ErrNoActiveTimer)
	}
	if !rec.IsRunning {
		return *rec, nil
	}
	next := domain.ActiveTimerRecord{Elapsed: rec.ElapsedAt(m.Now())}
	if err := m.persist(ctx, goalID, &next); err != nil {
		return domain.ActiveTimerRecord{}, err
	}
	m.observer.ObserveTransition(goalID, TransitionPause)
	return next, nil
}

// ElapsedSeconds returns the true elapsed time for goalID from the in-memory
// record. It never touches the store and is safe to call on every render tick.
func (m *Manager) ElapsedSeconds(goalID string) int64 {
	m.mu.Lock()
	rec, ok := m.records[goalID]
	var snapshot domain.ActiveTimerRecord
	if ok {
		snapshot = *rec
	}
	m.mu.Unlock()
	if !ok {
		return 0
	}
	return snapshot.ElapsedAt(m.Now())
}

// Record returns a copy of goalID's record, if one is held.
func (m *Manager) Record(goalID string) (domain.ActiveTimerRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[goalID]
	if !ok {
		return domain.ActiveTimerRecord{}, false
	}
	return *rec, true
}

// Active lists the goals with a timer record, sorted by goal id.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Complete records the session and its progress, then drops the record.
//
// The session write and the progress increment are both attempted. If only
// one succeeds the record is still dropped and a *domain.PartialCompletionError
// is returned. If both fail the record is kept so no study time is lost.
func (m *Manager) Complete(ctx context.Context, goalID string, opts CompleteOptions) (Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(ctx, goalID)
	if err != nil {
		return Completion{}, err
	}
	if rec == nil {
		return Completion{}, fmt.Errorf("completing goal %s: %w", goalID, domain.ErrNoActiveTimer)
	}

	now := m.Now()
	elapsed := rec.ElapsedAt(now)
	minutes := domain.MinutesFromSeconds(elapsed)
	if minutes == 0 {
		return Completion{}, domain.NewValidationError("study session", "elapsed", "gt=0")
	}
	efficiency := m.DefaultEfficiency
	if opts.Efficiency != nil {
		efficiency = *opts.Efficiency
	}

	result := Completion{GoalID: goalID, ElapsedSeconds: elapsed, Minutes: minutes}

	session, sessionErr := m.sessions.Create(ctx, domain.StudySessionInput{
		GoalID:      goalID,
		Duration:    minutes,
		Efficiency:  efficiency,
		SessionDate: now.UTC(),
		Notes:       opts.Notes,
	}, opts.OwnerID)
	if sessionErr == nil {
		result.Session = &session
	}

	// A validation failure means nothing can be recorded; keep the timer.
	var ve *domain.ValidationError
	if errors.As(sessionErr, &ve) {
		return result, sessionErr
	}
	// The goal is gone, so the time has nowhere to go.
	if errors.Is(sessionErr, domain.ErrNotFound) {
		m.drop(ctx, goalID, TransitionClose)
		return result, fmt.Errorf("completing goal %s: %w", goalID, sessionErr)
	}

	goal, progressErr := m.progress.AddProgress(ctx, goalID, minutes, opts.OwnerID)
	if progressErr == nil {
		result.Goal = &goal
	}

	switch {
	case sessionErr != nil && progressErr != nil:
		return result, errors.Join(
			fmt.Errorf("logging session: %w", sessionErr),
			fmt.Errorf("adding progress: %w", progressErr),
		)
	case sessionErr != nil:
		m.drop(ctx, goalID, TransitionComplete)
		return result, &domain.PartialCompletionError{GoalID: goalID, Minutes: minutes, SessionLogged: false, Err: sessionErr}
	case progressErr != nil:
		m.drop(ctx, goalID, TransitionComplete)
		return result, &domain.PartialCompletionError{GoalID: goalID, Minutes: minutes, SessionLogged: true, Err: progressErr}
	}

	if err := m.remove(ctx, goalID); err != nil {
		return result, fmt.Errorf("session recorded but timer record not cleared: %w", err)
	}
	m.observer.ObserveTransition(goalID, TransitionComplete)
	return result, nil
}

// Close abandons goalID's timer without recording anything.
func (m *Manager) Close(ctx context.Context, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.lookup(ctx, goalID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("closing goal %s: %w", goalID, domain.ErrNoActiveTimer)
	}
	if err := m.remove(ctx, goalID); err != nil {
		return err
	}
	m.observer.ObserveTransition(goalID, TransitionClose)
	return nil
}

// drop removes the record after a partial completion. A failure here is only
// logged: the caller already receives the more important partial error.
func (m *Manager) drop(ctx context.Context, goalID, transition string) {
	if err := m.remove(ctx, goalID); err != nil {
		m.logger.WithError(err).Errorw("clearing timer record failed", "goal_id", goalID)
		return
	}
	m.observer.ObserveTransition(goalID, transition)
}

// lookup returns the held record, falling back to the store for records
// written by another process. Caller holds mu.
func (m *Manager) lookup(ctx context.Context, goalID string) (*domain.ActiveTimerRecord, error) {
	if rec, ok := m.records[goalID]; ok {
		return rec, nil
	}
	rec, err := m.read(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		m.records[goalID] = rec
	}
	return rec, nil
}

func (m *Manager) read(ctx context.Context, goalID string) (*domain.ActiveTimerRecord, error) {
	raw, ok, err := m.store.Get(ctx, domain.ActiveTimerKey(goalID))
	if err != nil {
		return nil, fmt.Errorf("reading timer for goal %s: %w", goalID, err)
	}
	if !ok {
		return nil, nil
	}
	var rec domain.ActiveTimerRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decoding timer for goal %s: %w", goalID, err)
	}
	return &rec, nil
}

// persist writes rec and only then publishes it in memory. Caller holds mu.
func (m *Manager) persist(ctx context.Context, goalID string, rec *domain.ActiveTimerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding timer for goal %s: %w", goalID, err)
	}
	if err := m.store.Set(ctx, domain.ActiveTimerKey(goalID), string(data)); err != nil {
		return fmt.Errorf("saving timer for goal %s: %w", goalID, err)
	}
	m.records[goalID] = rec
	return nil
}

func (m *Manager) remove(ctx context.Context, goalID string) error {
	if err := m.store.Remove(ctx, domain.ActiveTimerKey(goalID)); err != nil {
		return fmt.Errorf("removing timer for goal %s: %w", goalID, err)
	}
	delete(m.records, goalID)
	return nil
}

package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
)

// Epoch is the default start of every test clock.
var Epoch = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// Clock is a manually advanced clock safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// StaticSession is a fixed session source for gateway tests.
type StaticSession struct {
	Configured bool
	Session    *domain.UserSession
}

// SignedIn returns a source reporting a configured remote and userID signed in.
func SignedIn(userID string) *StaticSession {
	return &StaticSession{
		Configured: true,
		Session:    &domain.UserSession{UserID: userID, ExpiresAt: Epoch.Add(24 * time.Hour)},
	}
}

func (s *StaticSession) RemoteConfigured() bool { return s.Configured }

func (s *StaticSession) CurrentSession(context.Context) *domain.UserSession {
	return s.Session
}

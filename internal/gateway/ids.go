package gateway

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator issues local-only ids derived from the clock in milliseconds.
// Ids are strictly increasing even when several are issued in one millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := now.UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return strconv.FormatInt(n, 10)
}

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveTimerRecord_JSONRoundTrip(t *testing.T) {
	start := time.UnixMilli(1749981600123).UTC()
	rec := ActiveTimerRecord{StartAt: &start, Elapsed: 30, IsRunning: true}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"startAt":1749981600123,"elapsed":30,"isRunning":true}`, string(data))

	var back ActiveTimerRecord
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.StartAt)
	assert.True(t, start.Equal(*back.StartAt))
	assert.Equal(t, int64(30), back.Elapsed)
}

func TestActiveTimerRecord_PausedHasNullStart(t *testing.T) {
	data, err := json.Marshal(ActiveTimerRecord{Elapsed: 42})
	require.NoError(t, err)
	assert.JSONEq(t, `{"startAt":null,"elapsed":42,"isRunning":false}`, string(data))
}

func TestActiveTimerRecord_RepairsBrokenPairing(t *testing.T) {
	var rec ActiveTimerRecord
	require.NoError(t, json.Unmarshal([]byte(`{"startAt":null,"elapsed":10,"isRunning":true}`), &rec))
	assert.False(t, rec.IsRunning)

	require.NoError(t, json.Unmarshal([]byte(`{"startAt":1000,"elapsed":10,"isRunning":false}`), &rec))
	assert.Nil(t, rec.StartAt)
}

func TestElapsedAt_ReloadFormula(t *testing.T) {
	t0 := testNow
	rec := ActiveTimerRecord{StartAt: &t0, Elapsed: 30, IsRunning: true}
	assert.Equal(t, int64(120), rec.ElapsedAt(t0.Add(90*time.Second)))

	paused := ActiveTimerRecord{Elapsed: 30}
	assert.Equal(t, int64(30), paused.ElapsedAt(t0.Add(time.Hour)))

	assert.Equal(t, int64(30), rec.ElapsedAt(t0.Add(-time.Minute)), "clock skew adds nothing")
}

func TestElapsedAt_FloorsPartialSeconds(t *testing.T) {
	t0 := testNow
	rec := ActiveTimerRecord{StartAt: &t0, IsRunning: true}
	assert.Equal(t, int64(1), rec.ElapsedAt(t0.Add(1999*time.Millisecond)))
	assert.Equal(t, int64(0), rec.ElapsedAt(t0.Add(999*time.Millisecond)))
}

func TestMinutesFromSeconds(t *testing.T) {
	cases := []struct {
		sec  int64
		want int
	}{
		{0, 0},
		{1, 1},
		{10, 1},
		{89, 1},
		{90, 2},
		{120, 2},
		{3600, 60},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MinutesFromSeconds(tc.sec), "sec=%d", tc.sec)
	}
}

func TestActiveTimerKey(t *testing.T) {
	assert.Equal(t, "active_session_g-1", ActiveTimerKey("g-1"))
}

func TestPartialCompletionError_Is(t *testing.T) {
	cause := errors.New("boom")
	var err error = &PartialCompletionError{GoalID: "g", Minutes: 3, SessionLogged: true, Err: cause}
	wrapped := fmt.Errorf("completing: %w", err)

	assert.True(t, errors.Is(wrapped, ErrPartialCompletion))
	assert.True(t, errors.Is(wrapped, cause))

	var pce *PartialCompletionError
	require.True(t, errors.As(wrapped, &pce))
	assert.True(t, pce.SessionLogged)
	assert.Contains(t, err.Error(), "progress not updated")
}

package domain

import (
	"encoding/json"
	"time"
)

// ActiveTimerKeyPrefix prefixes the local-store key of every timer record.
const ActiveTimerKeyPrefix = "active_session_"

func ActiveTimerKey(goalID string) string {
	return ActiveTimerKeyPrefix + goalID
}

// ActiveTimerRecord is the persisted state of one goal's in-progress session.
// StartAt is non-nil iff IsRunning. Elapsed holds whole seconds banked by
// earlier pauses and reconciliations.
type ActiveTimerRecord struct {
	StartAt   *time.Time
	Elapsed   int64
	IsRunning bool
}

type timerRecordJSON struct {
	StartAt   *int64 `json:"startAt"`
	Elapsed   int64  `json:"elapsed"`
	IsRunning bool   `json:"isRunning"`
}

// MarshalJSON writes startAt as epoch milliseconds or null.
func (r ActiveTimerRecord) MarshalJSON() ([]byte, error) {
	out := timerRecordJSON{Elapsed: r.Elapsed, IsRunning: r.IsRunning}
	if r.StartAt != nil {
		ms := r.StartAt.UnixMilli()
		out.StartAt = &ms
	}
	return json.Marshal(out)
}

func (r *ActiveTimerRecord) UnmarshalJSON(data []byte) error {
	var in timerRecordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Elapsed = in.Elapsed
	r.IsRunning = in.IsRunning
	r.StartAt = nil
	if in.StartAt != nil {
		t := time.UnixMilli(*in.StartAt).UTC()
		r.StartAt = &t
	}
	// A record written by a crashed process may violate the pairing; treat a
	// running record without a start as paused.
	if r.IsRunning && r.StartAt == nil {
		r.IsRunning = false
	}
	if !r.IsRunning {
		r.StartAt = nil
	}
	return nil
}

// ElapsedAt returns elapsed + (now - startAt) when running. Clock skew that
// puts now before startAt contributes nothing.
func (r ActiveTimerRecord) ElapsedAt(now time.Time) int64 {
	total := r.Elapsed
	if r.IsRunning && r.StartAt != nil {
		if d := now.Sub(*r.StartAt); d > 0 {
			// Floored to whole seconds; each pause folds the fraction away.
			total += int64(d / time.Second)
		}
	}
	return total
}

// MinutesFromSeconds converts elapsed seconds to whole minutes, rounding to
// nearest with a floor of one minute for any positive duration.
func MinutesFromSeconds(sec int64) int {
	if sec <= 0 {
		return 0
	}
	m := int((sec + 30) / 60)
	if m < 1 {
		m = 1
	}
	return m
}

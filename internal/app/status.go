package app

import (
	"context"
	"sort"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/progress"
)

type StatusRequest struct {
	Now     *time.Time
	OwnerID string
	// GoalScope limits goal summaries to these ids. Empty means every goal.
	GoalScope []string
}

// TaskCounts tallies tasks by status. Overdue counts open tasks whose due
// date has passed.
type TaskCounts struct {
	Total      int
	Todo       int
	InProgress int
	Done       int
	Overdue    int
}

// TimerView is one goal's in-progress session as shown on the dashboard.
type TimerView struct {
	GoalID         string
	GoalTitle      string
	Running        bool
	ElapsedSeconds int64
}

type StatusResponse struct {
	GeneratedAt    time.Time
	Mode           string
	Tasks          TaskCounts
	Goals          []progress.GoalSummary
	Timers         []TimerView
	UpcomingEvents []domain.CalendarEvent
	TotalMinutes   int
	WeekMinutes    int
	Warnings       []string
}

type StatusErrorCode string

const (
	StatusErrInvalidScope StatusErrorCode = "INVALID_SCOPE"
)

type StatusError struct {
	Code    StatusErrorCode
	Message string
}

func (e *StatusError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// upcomingWindow bounds the events listed on the dashboard.
const upcomingWindow = 7 * 24 * time.Hour

// Status aggregates tasks, goal progress, running timers and the coming
// week's events for one owner.
func (rt *Runtime) Status(ctx context.Context, req StatusRequest) (*StatusResponse, error) {
	now := rt.Now()
	if req.Now != nil {
		now = *req.Now
	}
	resp := &StatusResponse{GeneratedAt: now, Mode: rt.Mode(ctx)}

	for _, t := range rt.Gateways.Tasks.List(ctx, req.OwnerID) {
		resp.Tasks.Total++
		switch t.Status {
		case domain.TaskTodo:
			resp.Tasks.Todo++
		case domain.TaskInProgress:
			resp.Tasks.InProgress++
		case domain.TaskDone:
			resp.Tasks.Done++
		}
		if t.Status != domain.TaskDone && t.DueDate != nil && t.DueDate.Before(now) {
			resp.Tasks.Overdue++
		}
	}

	goals := rt.Gateways.Goals.List(ctx, req.OwnerID)
	byID := make(map[string]domain.LearningGoal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}
	scoped := goals
	if len(req.GoalScope) > 0 {
		scoped = make([]domain.LearningGoal, 0, len(req.GoalScope))
		for _, id := range req.GoalScope {
			g, ok := byID[id]
			if !ok {
				return nil, &StatusError{Code: StatusErrInvalidScope, Message: "unknown goal " + id}
			}
			scoped = append(scoped, g)
		}
	}

	for _, g := range scoped {
		sessions := rt.Gateways.Sessions.ListByGoal(ctx, g.ID, req.OwnerID)
		summary := progress.Summarize(g, sessions, now)
		resp.Goals = append(resp.Goals, summary)
		resp.TotalMinutes += summary.TotalMinutes
		resp.WeekMinutes += summary.LastWeekMinutes
		if summary.TargetMinutes > 0 && !summary.OnPace() && summary.SessionCount > 0 {
			resp.Warnings = append(resp.Warnings, g.Title+" is behind its weekly target")
		}
	}

	for _, goalID := range rt.Timers.Active() {
		rec, ok := rt.Timers.Record(goalID)
		if !ok {
			continue
		}
		view := TimerView{
			GoalID:         goalID,
			Running:        rec.IsRunning,
			ElapsedSeconds: rec.ElapsedAt(now),
		}
		if g, ok := byID[goalID]; ok {
			view.GoalTitle = g.Title
		} else {
			resp.Warnings = append(resp.Warnings, "timer running for unknown goal "+goalID)
		}
		resp.Timers = append(resp.Timers, view)
	}

	for _, e := range rt.Gateways.Events.List(ctx, req.OwnerID) {
		if !e.EndTime.Before(now) && e.StartTime.Before(now.Add(upcomingWindow)) {
			resp.UpcomingEvents = append(resp.UpcomingEvents, e)
		}
	}
	sort.SliceStable(resp.UpcomingEvents, func(i, j int) bool {
		return resp.UpcomingEvents[i].StartTime.Before(resp.UpcomingEvents[j].StartTime)
	})
	return resp, nil
}

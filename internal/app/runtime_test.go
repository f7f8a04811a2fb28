package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yosuakev/learnful/internal/app"
	"github.com/yosuakev/learnful/internal/config"
	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/gateway"
	"github.com/yosuakev/learnful/internal/testutil"
	"github.com/yosuakev/learnful/internal/timer"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig(t.TempDir())
	cfg.Session.Secret = "test-secret"
	return cfg
}

func buildRuntime(t *testing.T, cfg config.Config) (*app.Runtime, *testutil.Clock) {
	t.Helper()
	rt, err := app.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	clock := testutil.NewClock(testutil.Epoch)
	rt.Now = clock.Now
	return rt, clock
}

func TestBuild_LocalOnly(t *testing.T) {
	cfg := testConfig(t)
	rt, _ := buildRuntime(t, cfg)
	ctx := context.Background()

	assert.Nil(t, rt.Remote)
	assert.Equal(t, gateway.PathLocal, rt.Mode(ctx))
	assert.Empty(t, rt.Owner(ctx))

	goal, err := rt.Gateways.Goals.Create(ctx, testutil.NewGoalInput("Go"), rt.Owner(ctx))
	require.NoError(t, err)
	assert.True(t, goal.LocalOnly)

	_, err = os.Stat(cfg.Local.Path)
	assert.NoError(t, err, "local store file should exist")
}

func TestBuild_UnreachableRemoteFallsBackToLocal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Remote.DSN = "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"
	cfg.Remote.ConnectTimeout = time.Second

	rt, _ := buildRuntime(t, cfg)
	assert.Nil(t, rt.Remote)
	assert.False(t, rt.Session.RemoteConfigured())
	assert.Equal(t, gateway.PathLocal, rt.Mode(context.Background()))
}

func TestBuild_RemoteRoutesAfterLogin(t *testing.T) {
	cfg := testConfig(t)
	cfg.Remote.Driver = "sqlite"
	cfg.Remote.DSN = filepath.Join(cfg.DataDir, "remote.db")

	rt, _ := buildRuntime(t, cfg)
	ctx := context.Background()
	require.NotNil(t, rt.Remote)
	assert.Contains(t, rt.Mode(ctx), "signed out")

	_, err := rt.Session.Login("user-1")
	require.NoError(t, err)
	assert.Equal(t, gateway.PathRemote, rt.Mode(ctx))
	assert.Equal(t, "user-1", rt.Owner(ctx))

	task, err := rt.Gateways.Tasks.Create(ctx, testutil.NewTaskInput("Remote task"), rt.Owner(ctx))
	require.NoError(t, err)
	assert.False(t, task.LocalOnly)
	assert.Len(t, task.ID, 36)

	local, ok, err := rt.Local.Get(ctx, domain.KeyTasks)
	require.NoError(t, err)
	assert.False(t, ok, "remote writes must not touch the local store: %s", local)

	require.NoError(t, rt.Session.Logout())
	assert.Empty(t, rt.Gateways.Tasks.List(ctx, ""), "signed-out reads use the empty local store")
}

func TestBuild_ReloadsTimers(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	rt, err := app.Build(ctx, cfg, nil)
	require.NoError(t, err)
	clock := testutil.NewClock(testutil.Epoch)
	rt.Now = clock.Now
	goal, err := rt.Gateways.Goals.Create(ctx, testutil.NewGoalInput("Go"), "")
	require.NoError(t, err)
	_, err = rt.Timers.Start(ctx, goal.ID)
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	_, err = rt.Timers.Pause(ctx, goal.ID)
	require.NoError(t, err)
	require.NoError(t, rt.Close())

	again, _ := buildRuntime(t, cfg)
	assert.Equal(t, []string{goal.ID}, again.Timers.Active())
	assert.Equal(t, int64(45), again.Timers.ElapsedSeconds(goal.ID))
}

func TestClose_WritesMetricsTextfile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Textfile = filepath.Join(cfg.DataDir, "learnful.prom")

	rt, err := app.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	rt.Gateways.Tasks.List(context.Background(), "")
	require.NoError(t, rt.Close())

	raw, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "learnful_gateway_operations_total")
}

func TestStatus_AggregatesEverything(t *testing.T) {
	rt, clock := buildRuntime(t, testConfig(t))
	ctx := context.Background()
	now := clock.Now()

	_, err := rt.Gateways.Tasks.Create(ctx, testutil.NewTaskInput("todo"), "")
	require.NoError(t, err)
	_, err = rt.Gateways.Tasks.Create(ctx, testutil.NewTaskInput("late",
		testutil.WithDueDate(now.Add(-time.Hour))), "")
	require.NoError(t, err)
	_, err = rt.Gateways.Tasks.Create(ctx, testutil.NewTaskInput("done",
		testutil.WithTaskStatus(domain.TaskDone), testutil.WithDueDate(now.Add(-time.Hour))), "")
	require.NoError(t, err)

	goal, err := rt.Gateways.Goals.Create(ctx, testutil.NewGoalInput("Go", testutil.WithTargetHours(2)), "")
	require.NoError(t, err)
	_, err = rt.Gateways.Sessions.Create(ctx, testutil.NewSessionInput(goal.ID, 30,
		testutil.WithSessionDate(now)), "")
	require.NoError(t, err)
	_, err = rt.Gateways.Sessions.Create(ctx, testutil.NewSessionInput(goal.ID, 15,
		testutil.WithSessionDate(now.AddDate(0, 0, -10))), "")
	require.NoError(t, err)

	_, err = rt.Gateways.Events.Create(ctx, testutil.NewEventInput("soon", now.Add(24*time.Hour), time.Hour), "")
	require.NoError(t, err)
	_, err = rt.Gateways.Events.Create(ctx, testutil.NewEventInput("later", now.Add(30*24*time.Hour), time.Hour), "")
	require.NoError(t, err)

	_, err = rt.Timers.Start(ctx, goal.ID)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	resp, err := rt.Status(ctx, app.StatusRequest{})
	require.NoError(t, err)

	assert.Equal(t, app.TaskCounts{Total: 3, Todo: 2, Done: 1, Overdue: 1}, resp.Tasks)
	require.Len(t, resp.Goals, 1)
	assert.Equal(t, 45, resp.Goals[0].TotalMinutes)
	assert.Equal(t, 30, resp.Goals[0].LastWeekMinutes)
	assert.Equal(t, 1, resp.Goals[0].CurrentStreak)
	assert.Equal(t, 45, resp.TotalMinutes)
	assert.Equal(t, 30, resp.WeekMinutes)
	assert.Contains(t, resp.Warnings, "Go is behind its weekly target")

	require.Len(t, resp.Timers, 1)
	assert.Equal(t, "Go", resp.Timers[0].GoalTitle)
	assert.True(t, resp.Timers[0].Running)
	assert.Equal(t, int64(120), resp.Timers[0].ElapsedSeconds)

	require.Len(t, resp.UpcomingEvents, 1)
	assert.Equal(t, "soon", resp.UpcomingEvents[0].Title)
}

func TestStatus_UnknownGoalScope(t *testing.T) {
	rt, _ := buildRuntime(t, testConfig(t))

	_, err := rt.Status(context.Background(), app.StatusRequest{GoalScope: []string{"missing"}})
	var se *app.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, app.StatusErrInvalidScope, se.Code)
}

func TestStatus_CompletedTimerDisappears(t *testing.T) {
	rt, clock := buildRuntime(t, testConfig(t))
	ctx := context.Background()

	goal, err := rt.Gateways.Goals.Create(ctx, testutil.NewGoalInput("Go"), "")
	require.NoError(t, err)
	_, err = rt.Timers.Start(ctx, goal.ID)
	require.NoError(t, err)
	clock.Advance(90 * time.Second)

	done, err := rt.Timers.Complete(ctx, goal.ID, timer.CompleteOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, done.Minutes)

	resp, err := rt.Status(ctx, app.StatusRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Timers)
	require.Len(t, resp.Goals, 1)
	assert.Equal(t, 2, resp.Goals[0].TotalMinutes)
}

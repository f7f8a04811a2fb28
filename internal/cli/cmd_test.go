package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsvc "github.com/yosuakev/learnful/internal/app"
	"github.com/yosuakev/learnful/internal/config"
	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/testutil"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// testApp wires a full App over a fresh local store with a manual clock.
func testApp(t *testing.T) (*App, *testutil.Clock) {
	t.Helper()
	cfg := config.DefaultConfig(t.TempDir())
	rt, err := appsvc.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	clock := testutil.NewClock(testutil.Epoch)
	rt.Now = clock.Now
	return &App{
		Gateways:      rt.Gateways,
		Timers:        rt.Timers,
		Status:        rt,
		Session:       rt.Session,
		Now:           clock.Now,
		IsInteractive: func() bool { return false },
	}, clock
}

// executeCmd runs a cobra command and captures its output without styling.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return ansiPattern.ReplaceAllString(buf.String(), ""), err
}

func mustExec(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, "learnful %v: %s", args, out)
	return out
}

func onlyTask(t *testing.T, app *App) domain.Task {
	t.Helper()
	tasks := app.Gateways.Tasks.List(context.Background(), "")
	require.Len(t, tasks, 1)
	return tasks[0]
}

// --- tasks ---

func TestTaskAddAndList(t *testing.T) {
	app, _ := testApp(t)

	out := mustExec(t, app, "task", "add", "Read chapter 3", "--priority", "high", "--due", "2025-06-16", "--estimate", "45")
	assert.Contains(t, out, "Created task Read chapter 3")

	task := onlyTask(t, app)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, 45, task.EstimatedDuration)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), task.DueDate.UTC())

	out = mustExec(t, app, "task", "list")
	assert.Contains(t, out, "Read chapter 3")
	assert.Contains(t, out, "▲ High")
	assert.Contains(t, out, "Tomorrow")
}

func TestTaskAdd_RequiresTitleWithoutTerminal(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "task", "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
}

func TestTaskAdd_ValidationErrorBeforeWrite(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "task", "add", "   ")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, app.Gateways.Tasks.List(context.Background(), ""))
}

func TestTaskList_Filters(t *testing.T) {
	app, clock := testApp(t)
	mustExec(t, app, "task", "add", "Open", "--due", "2025-06-14")
	clock.Advance(time.Second)
	mustExec(t, app, "task", "add", "Finished", "--status", "done")

	out := mustExec(t, app, "task", "list", "--status", "done")
	assert.Contains(t, out, "Finished")
	assert.NotContains(t, out, "Open")

	out = mustExec(t, app, "task", "list", "--overdue")
	assert.Contains(t, out, "Open")
	assert.NotContains(t, out, "Finished")

	out = mustExec(t, app, "task", "list", "--priority", "high")
	assert.Contains(t, out, "No tasks found.")
}

func TestTaskList_CategoryFilterByName(t *testing.T) {
	app, clock := testApp(t)
	mustExec(t, app, "task", "add", "Budget", "--category", "finance")
	clock.Advance(time.Second)
	mustExec(t, app, "task", "add", "Jog")

	out := mustExec(t, app, "task", "list", "--category", "Finance")
	assert.Contains(t, out, "Budget")
	assert.NotContains(t, out, "Jog")
}

func TestTaskDoneSetsAndClearsCompletion(t *testing.T) {
	app, clock := testApp(t)
	mustExec(t, app, "task", "add", "Ship")
	id := onlyTask(t, app).ID

	clock.Advance(time.Hour)
	out := mustExec(t, app, "task", "done", id)
	assert.Contains(t, out, "✔ Done")
	task := onlyTask(t, app)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, testutil.Epoch.Add(time.Hour), task.CompletedAt.UTC())

	mustExec(t, app, "task", "done", id, "--undo")
	assert.Nil(t, onlyTask(t, app).CompletedAt)
}

func TestTaskUpdate_OnlyChangedFields(t *testing.T) {
	app, _ := testApp(t)
	mustExec(t, app, "task", "add", "Draft", "--desc", "keep me", "--priority", "low")
	id := onlyTask(t, app).ID

	mustExec(t, app, "task", "update", id, "--title", "Final", "--due", "none")
	task := onlyTask(t, app)
	assert.Equal(t, "Final", task.Title)
	assert.Equal(t, "keep me", task.Description)
	assert.Equal(t, domain.PriorityLow, task.Priority)
}

func TestSubtasks(t *testing.T) {
	app, _ := testApp(t)
	mustExec(t, app, "task", "add", "Essay")
	id := onlyTask(t, app).ID

	mustExec(t, app, "task", "subtask", "add", id, "outline")
	mustExec(t, app, "task", "subtask", "add", id, "draft")
	out := mustExec(t, app, "task", "subtask", "done", id, "2")
	assert.Contains(t, out, "Essay 50% of subtasks done")

	task := onlyTask(t, app)
	assert.False(t, task.Subtasks[0].IsCompleted)
	assert.True(t, task.Subtasks[1].IsCompleted)

	out = mustExec(t, app, "task", "show", id)
	assert.Contains(t, out, "SUBTASKS 50%")
	assert.Contains(t, out, "○ outline")
}

func TestTaskRemove_RequiresConfirmation(t *testing.T) {
	app, _ := testApp(t)
	mustExec(t, app, "task", "add", "Temp")
	id := onlyTask(t, app).ID

	_, err := executeCmd(t, app, "task", "rm", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	app.IsInteractive = func() bool { return true }
	app.Confirm = func(string) (bool, error) { return false, nil }
	mustExec(t, app, "task", "rm", id)
	assert.Len(t, app.Gateways.Tasks.List(context.Background(), ""), 1, "declined prompt keeps the task")

	out := mustExec(t, app, "task", "rm", id, "--yes")
	assert.Contains(t, out, "Deleted task")
	assert.Empty(t, app.Gateways.Tasks.List(context.Background(), ""))
}

func TestTaskShow_UnknownID(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "task", "show", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- categories ---

func TestCategoryListSeedsDefaults(t *testing.T) {
	app, _ := testApp(t)

	out := mustExec(t, app, "category", "list")
	for _, c := range domain.DefaultCategories {
		assert.Contains(t, out, c.Name)
	}

	mustExec(t, app, "category", "add", "Reading", "--color", "#112233")
	out = mustExec(t, app, "category", "list")
	assert.Contains(t, out, "Reading")
	assert.Contains(t, out, "#112233")
}

// --- goals, sessions, timers ---

func TestGoalTimerRoundTrip(t *testing.T) {
	app, clock := testApp(t)
	mustExec(t, app, "goal", "add", "Go", "--target", "2")

	out := mustExec(t, app, "timer", "start", "go")
	assert.Contains(t, out, "● Go  00:00 running")

	clock.Advance(25 * time.Minute)
	out = mustExec(t, app, "timer", "status")
	assert.Contains(t, out, "Go  25:00 running")

	out = mustExec(t, app, "timer", "complete", "Go", "--efficiency", "80", "--notes", "chapter 4")
	assert.Contains(t, out, "Logged 25m for Go")
	assert.Contains(t, out, "80% efficiency")
	assert.Contains(t, out, "Goal progress now 25m")

	out = mustExec(t, app, "goal", "show", "Go")
	assert.Contains(t, out, "1, avg 25m")
	assert.Contains(t, out, "21%")
	assert.Contains(t, out, "chapter 4")

	out = mustExec(t, app, "timer", "status")
	assert.Contains(t, out, "No timers running.")
}

func TestTimerPauseResume(t *testing.T) {
	app, clock := testApp(t)
	mustExec(t, app, "goal", "add", "Go")

	mustExec(t, app, "timer", "start", "Go")
	clock.Advance(90 * time.Second)
	out := mustExec(t, app, "timer", "pause", "Go")
	assert.Contains(t, out, "01:30 ‖ paused")

	clock.Advance(time.Hour)
	out = mustExec(t, app, "timer", "resume", "Go")
	assert.Contains(t, out, "01:30 running")
}

func TestTimerComplete_NoTimer(t *testing.T) {
	app, _ := testApp(t)
	mustExec(t, app, "goal", "add", "Go")

	_, err := executeCmd(t, app, "timer", "complete", "Go")
	require.ErrorIs(t, err, domain.ErrNoActiveTimer)
	assert.Contains(t, DescribeError(err), "learnful timer start")
}

func TestTimerComplete_EfficiencyOutOfRange(t *testing.T) {
	app, clock := testApp(t)
	mustExec(t, app, "goal", "add", "Go")
	mustExec(t, app, "timer", "start", "Go")
	clock.Advance(10 * time.Minute)

	for _, value := range []string{"150", "-1"} {
		_, err := executeCmd(t, app, "timer", "complete", "Go", "--efficiency="+value)
		require.Error(t, err, value)
		assert.Contains(t, err.Error(), "between 0 and 100")
	}
	assert.Len(t, app.Timers.Active(), 1, "timer survives a rejected completion")
	assert.Empty(t, app.Gateways.Sessions.List(context.Background(), ""))

	out := mustExec(t, app, "timer", "complete", "Go", "--efficiency", "80")
	assert.Contains(t, out, "80% efficiency")
}

func TestTimerClose_DiscardsWithoutLogging(t *testing.T) {
	app, clock := testApp(t)
	mustExec(t, app, "goal", "add", "Go")
	mustExec(t, app, "timer", "start", "Go")
	clock.Advance(10 * time.Minute)

	out := mustExec(t, app, "timer", "close", "Go", "--yes")
	assert.Contains(t, out, "Discarded timer for Go")
	assert.Empty(t, app.Timers.Active())
	assert.Empty(t, app.Gateways.Sessions.List(context.Background(), ""))
}

func TestSessionLogCreditsGoal(t *testing.T) {
	app, _ := testApp(t)
	mustExec(t, app, "goal", "add", "Go")

	out := mustExec(t, app, "session", "log", "--goal", "Go", "--minutes", "30", "--date", "2025-06-14", "--notes", "ch 1")
	assert.Contains(t, out, "Logged 30m for Go")
	assert.Contains(t, out, "Goal progress now 30m")

	out = mustExec(t, app, "session", "list", "--goal", "Go")
	assert.Contains(t, out, "30m")
	assert.Contains(t, out, "ch 1")

	out = mustExec(t, app, "session", "list", "--days", "0")
	assert.Contains(t, out, "30m")
}

func TestSessionLog_NoCredit(t *testing.T) {
	app, _ := testApp(t)
	mustExec(t, app, "goal", "add", "Go")

	mustExec(t, app, "session", "log", "--goal", "Go", "--minutes", "30", "--credit=false")
	goals := app.Gateways.Goals.List(context.Background(), "")
	require.Len(t, goals, 1)
	assert.Zero(t, goals[0].CurrentProgress)
}

func TestGoalRemove_ClosesTimer(t *testing.T) {
	app, _ := testApp(t)
	mustExec(t, app, "goal", "add", "Go")
	mustExec(t, app, "timer", "start", "Go")

	mustExec(t, app, "goal", "rm", "Go", "--yes")
	assert.Empty(t, app.Gateways.Goals.List(context.Background(), ""))
	assert.Empty(t, app.Timers.Active())
}

func TestGoalProgress(t *testing.T) {
	app, _ := testApp(t)
	mustExec(t, app, "goal", "add", "Go", "--target", "1")

	out := mustExec(t, app, "goal", "progress", "Go", "30")
	assert.Contains(t, out, "Go now at 30m")
	assert.Contains(t, out, " 50%")

	_, err := executeCmd(t, app, "goal", "progress", "Go", "-5")
	assert.Error(t, err)
}

// --- events ---

func TestEventAddAndList(t *testing.T) {
	app, clock := testApp(t)
	mustExec(t, app, "event", "add", "Exam", "--start", "2025-06-16 14:00", "--duration", "2h", "--remind", "1h,1d", "--type", "study")
	clock.Advance(time.Second)
	mustExec(t, app, "event", "add", "Past", "--start", "2025-06-01 09:00")

	out := mustExec(t, app, "event", "list")
	assert.Contains(t, out, "Exam")
	assert.Contains(t, out, "Tomorrow 14:00-16:00")
	assert.Contains(t, out, "1h, 1d")
	assert.NotContains(t, out, "Past")

	out = mustExec(t, app, "event", "list", "--all")
	assert.Contains(t, out, "Past")
}

func TestEventAdd_EndBeforeStartRejected(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "event", "add", "Oops", "--start", "2025-06-16 14:00", "--end", "2025-06-16 13:00")
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestEventAdd_AllDay(t *testing.T) {
	app, _ := testApp(t)
	mustExec(t, app, "event", "add", "Holiday", "--start", "2025-06-16 14:00", "--all-day")

	events := app.Gateways.Events.List(context.Background(), "")
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), events[0].StartTime.UTC())
	assert.Equal(t, time.Date(2025, 6, 16, 15, 0, 0, 0, time.UTC), events[0].EndTime.UTC())
}

// --- status and auth ---

func TestStatusDashboard(t *testing.T) {
	app, clock := testApp(t)
	mustExec(t, app, "task", "add", "Read")
	mustExec(t, app, "goal", "add", "Go", "--target", "1")
	mustExec(t, app, "timer", "start", "Go")
	clock.Advance(3 * time.Minute)

	out := mustExec(t, app, "status")
	assert.Contains(t, out, "○ LOCAL")
	assert.Contains(t, out, "1 todo")
	assert.Contains(t, out, "Go")
	assert.Contains(t, out, "03:00 running")

	_, err := executeCmd(t, app, "status", "--goal", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogin_WithoutRemote(t *testing.T) {
	app, _ := testApp(t)

	_, err := executeCmd(t, app, "login", "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no remote store")

	out := mustExec(t, app, "whoami")
	assert.Contains(t, out, "○ LOCAL")
	mustExec(t, app, "logout")
}

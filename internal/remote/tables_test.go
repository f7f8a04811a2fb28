package remote_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/remote"
	"github.com/yosuakev/learnful/internal/testutil"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

func normalizedTask(title string, opts ...testutil.TaskOption) domain.TaskInput {
	in := testutil.NewTaskInput(title, opts...)
	in.Normalize()
	return in
}

func normalizedGoal(title string, opts ...testutil.GoalOption) domain.GoalInput {
	in := testutil.NewGoalInput(title, opts...)
	in.Normalize()
	return in
}

func TestTaskTable_InsertAndList(t *testing.T) {
	clock := testutil.NewClock(testutil.Epoch)
	rdb := testutil.NewTestRemote(t, clock)
	cats := remote.NewCategoryTable(rdb)
	tasks := remote.NewTaskTable(rdb)
	ctx := context.Background()

	work, err := cats.Insert(ctx, testutil.NewCategoryInput("Work", "#3B82F6"), alice)
	require.NoError(t, err)

	first, err := tasks.Insert(ctx, normalizedTask("Read", testutil.WithCategory(work.ID)), alice)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.LocalOnly)
	assert.Equal(t, alice, first.UserID)
	assert.Equal(t, domain.PriorityMedium, first.Priority)
	assert.Equal(t, domain.DefaultEstimatedDuration, first.EstimatedDuration)
	require.NotNil(t, first.Category)
	assert.Equal(t, "Work", first.Category.Name)
	assert.NotNil(t, first.Subtasks)
	assert.True(t, testutil.Epoch.Equal(first.CreatedAt))

	clock.Advance(time.Minute)
	_, err = tasks.Insert(ctx, normalizedTask("Write"), alice)
	require.NoError(t, err)
	_, err = tasks.Insert(ctx, normalizedTask("Bob's"), bob)
	require.NoError(t, err)

	list, err := tasks.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Write", list[0].Title, "newest first")
	assert.Equal(t, "Read", list[1].Title)
}

func TestTaskTable_CompletedAt(t *testing.T) {
	clock := testutil.NewClock(testutil.Epoch)
	rdb := testutil.NewTestRemote(t, clock)
	tasks := remote.NewTaskTable(rdb)
	ctx := context.Background()

	task, err := tasks.Insert(ctx, normalizedTask("Read"), alice)
	require.NoError(t, err)
	assert.Nil(t, task.CompletedAt)

	clock.Advance(time.Hour)
	done := normalizedTask("Read", testutil.WithTaskStatus(domain.TaskDone))
	task, err = tasks.Update(ctx, task.ID, done, alice)
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	completedAt := *task.CompletedAt
	assert.True(t, testutil.Epoch.Add(time.Hour).Equal(completedAt))

	clock.Advance(time.Hour)
	task, err = tasks.Update(ctx, task.ID, done, alice)
	require.NoError(t, err)
	assert.True(t, completedAt.Equal(*task.CompletedAt), "repeated done keeps the first completion time")

	task, err = tasks.Update(ctx, task.ID, normalizedTask("Read", testutil.WithTaskStatus(domain.TaskInProgress)), alice)
	require.NoError(t, err)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskTable_InsertDoneSetsCompletedAt(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	tasks := remote.NewTaskTable(rdb)

	task, err := tasks.Insert(context.Background(), normalizedTask("Done already", testutil.WithTaskStatus(domain.TaskDone)), alice)
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
}

func TestTaskTable_OwnerScoping(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	tasks := remote.NewTaskTable(rdb)
	ctx := context.Background()

	task, err := tasks.Insert(ctx, normalizedTask("Alice only"), alice)
	require.NoError(t, err)

	_, err = tasks.Get(ctx, task.ID, bob)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tasks.Update(ctx, task.ID, normalizedTask("Hijack"), bob)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.ErrorIs(t, tasks.Delete(ctx, task.ID, bob), domain.ErrForbidden)
	assert.ErrorIs(t, tasks.Delete(ctx, "missing", alice), domain.ErrNotFound)

	_, err = tasks.AddSubtask(ctx, task.ID, "step", bob)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := tasks.Get(ctx, task.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice only", got.Title)
}

func TestTaskTable_Subtasks(t *testing.T) {
	clock := testutil.NewClock(testutil.Epoch)
	rdb := testutil.NewTestRemote(t, clock)
	tasks := remote.NewTaskTable(rdb)
	ctx := context.Background()

	task, err := tasks.Insert(ctx, normalizedTask("Course"), alice)
	require.NoError(t, err)

	for _, title := range []string{"one", "two", "three"} {
		task, err = tasks.AddSubtask(ctx, task.ID, title, alice)
		require.NoError(t, err)
	}
	require.Len(t, task.Subtasks, 3)
	assert.Equal(t, "one", task.Subtasks[0].Title)
	assert.Equal(t, "three", task.Subtasks[2].Title)

	task, err = tasks.SetSubtaskCompleted(ctx, task.ID, task.Subtasks[1].ID, true, alice)
	require.NoError(t, err)
	assert.True(t, task.Subtasks[1].IsCompleted)
	assert.Equal(t, 33, task.Progress())

	_, err = tasks.SetSubtaskCompleted(ctx, task.ID, "missing", true, alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, tasks.Delete(ctx, task.ID, alice))
	_, err = tasks.Get(ctx, task.ID, alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryTable_SeedDefaultsInOrder(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	cats := remote.NewCategoryTable(rdb)

	seeded, err := cats.SeedDefaults(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, seeded, len(domain.DefaultCategories))
	for i, want := range domain.DefaultCategories {
		assert.Equal(t, want.Name, seeded[i].Name)
		assert.Equal(t, want.Color, seeded[i].Color)
		assert.Equal(t, alice, seeded[i].UserID)
	}

	others, err := cats.List(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestGoalTable_ProgressAndCascade(t *testing.T) {
	clock := testutil.NewClock(testutil.Epoch)
	rdb := testutil.NewTestRemote(t, clock)
	goals := remote.NewGoalTable(rdb)
	sessions := remote.NewSessionTable(rdb)
	ctx := context.Background()

	goal, err := goals.Insert(ctx, normalizedGoal("Go", testutil.WithTargetHours(2)), alice)
	require.NoError(t, err)
	assert.Equal(t, 0, goal.CurrentProgress)
	assert.Equal(t, domain.DefaultGoalColor, goal.Color)

	goal, err = goals.AddProgress(ctx, goal.ID, 25, alice)
	require.NoError(t, err)
	goal, err = goals.AddProgress(ctx, goal.ID, 5, alice)
	require.NoError(t, err)
	assert.Equal(t, 30, goal.CurrentProgress)

	// Omitted progress is preserved by an edit.
	goal, err = goals.Update(ctx, goal.ID, normalizedGoal("Go deeper"), alice)
	require.NoError(t, err)
	assert.Equal(t, "Go deeper", goal.Title)
	assert.Equal(t, 30, goal.CurrentProgress)

	_, err = goals.AddProgress(ctx, goal.ID, 5, bob)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = sessions.Insert(ctx, testutil.NewSessionInput(goal.ID, 25), alice)
	require.NoError(t, err)

	require.NoError(t, goals.Delete(ctx, goal.ID, alice))
	remaining, err := sessions.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSessionTable_ListByGoalNewestFirst(t *testing.T) {
	clock := testutil.NewClock(testutil.Epoch)
	rdb := testutil.NewTestRemote(t, clock)
	goals := remote.NewGoalTable(rdb)
	sessions := remote.NewSessionTable(rdb)
	ctx := context.Background()

	goal, err := goals.Insert(ctx, normalizedGoal("Go"), alice)
	require.NoError(t, err)
	other, err := goals.Insert(ctx, normalizedGoal("Rust"), alice)
	require.NoError(t, err)

	older := testutil.Epoch.AddDate(0, 0, -2)
	_, err = sessions.Insert(ctx, testutil.NewSessionInput(goal.ID, 10, testutil.WithSessionDate(older)), alice)
	require.NoError(t, err)
	latest, err := sessions.Insert(ctx, testutil.NewSessionInput(goal.ID, 20), alice)
	require.NoError(t, err)
	assert.True(t, testutil.Epoch.Equal(latest.SessionDate), "zero date defaults to now")
	_, err = sessions.Insert(ctx, testutil.NewSessionInput(other.ID, 30), alice)
	require.NoError(t, err)

	byGoal, err := sessions.ListByGoal(ctx, goal.ID, alice)
	require.NoError(t, err)
	require.Len(t, byGoal, 2)
	assert.Equal(t, 20, byGoal[0].Duration)
	assert.Equal(t, 10, byGoal[1].Duration)
}

func TestSessionTable_RejectsForeignGoal(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	goals := remote.NewGoalTable(rdb)
	sessions := remote.NewSessionTable(rdb)
	ctx := context.Background()

	goal, err := goals.Insert(ctx, normalizedGoal("Go"), alice)
	require.NoError(t, err)

	_, err = sessions.Insert(ctx, testutil.NewSessionInput(goal.ID, 10), bob)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = sessions.Insert(ctx, testutil.NewSessionInput("missing", 10), alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventTable_RoundTrip(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	goals := remote.NewGoalTable(rdb)
	events := remote.NewEventTable(rdb)
	ctx := context.Background()

	goal, err := goals.Insert(ctx, normalizedGoal("Go"), alice)
	require.NoError(t, err)

	start := time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)
	in := testutil.NewEventInput("Exam", start, 2*time.Hour,
		testutil.WithEventGoal(goal.ID), testutil.WithReminders("1d", "1h"))
	in.Normalize()

	ev, err := events.Insert(ctx, in, alice)
	require.NoError(t, err)
	assert.True(t, start.Equal(ev.StartTime))
	assert.True(t, start.Add(2*time.Hour).Equal(ev.EndTime))
	assert.Equal(t, []string{"1d", "1h"}, ev.Reminders)
	assert.Equal(t, domain.DefaultEventType, ev.EventType)
	require.NotNil(t, ev.GoalID)
	assert.Equal(t, goal.ID, *ev.GoalID)

	in.Title = "Final exam"
	in.Reminders = []string{}
	ev, err = events.Update(ctx, ev.ID, in, alice)
	require.NoError(t, err)
	assert.Equal(t, "Final exam", ev.Title)
	assert.Empty(t, ev.Reminders)

	require.NoError(t, goals.Delete(ctx, goal.ID, alice))
	ev, err = events.Get(ctx, ev.ID, alice)
	require.NoError(t, err)
	assert.Nil(t, ev.GoalID, "deleting the goal unlinks the event")

	require.NoError(t, events.Delete(ctx, ev.ID, alice))
	list, err := events.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDB_ClosedConnectionFails(t *testing.T) {
	rdb := testutil.NewTestRemote(t, nil)
	require.NoError(t, rdb.Close())

	_, err := remote.NewTaskTable(rdb).List(context.Background(), alice)
	assert.Error(t, err)
	assert.Error(t, rdb.Ping(context.Background()))
}

func TestTaskTable_ForeignCategoryRejected(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	cats := remote.NewCategoryTable(rdb)
	tasks := remote.NewTaskTable(rdb)
	ctx := context.Background()

	bobs, err := cats.Insert(ctx, testutil.NewCategoryInput("BobSecret", "#111111"), bob)
	require.NoError(t, err)
	mine, err := cats.Insert(ctx, testutil.NewCategoryInput("Work", "#3B82F6"), alice)
	require.NoError(t, err)

	_, err = tasks.Insert(ctx, normalizedTask("Read", testutil.WithCategory(bobs.ID)), alice)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = tasks.Insert(ctx, normalizedTask("Read", testutil.WithCategory("missing")), alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	task, err := tasks.Insert(ctx, normalizedTask("Read", testutil.WithCategory(mine.ID)), alice)
	require.NoError(t, err)
	_, err = tasks.Update(ctx, task.ID, normalizedTask("Read", testutil.WithCategory(bobs.ID)), alice)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := tasks.Get(ctx, task.ID, alice)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Work", got.Category.Name, "rejected update leaves the task untouched")

	list, err := tasks.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 1, "rejected inserts write nothing")
}

func TestTaskTable_UpdateOthersTask(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	tasks := remote.NewTaskTable(rdb)
	ctx := context.Background()

	task, err := tasks.Insert(ctx, normalizedTask("Read"), alice)
	require.NoError(t, err)

	_, err = tasks.Update(ctx, task.ID, normalizedTask("Mine now"), bob)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = tasks.Update(ctx, "missing", normalizedTask("Nope"), alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventTable_ForeignReferencesRejected(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	cats := remote.NewCategoryTable(rdb)
	goals := remote.NewGoalTable(rdb)
	events := remote.NewEventTable(rdb)
	ctx := context.Background()

	bobsGoal, err := goals.Insert(ctx, normalizedGoal("Bob's goal"), bob)
	require.NoError(t, err)
	bobsCat, err := cats.Insert(ctx, testutil.NewCategoryInput("BobSecret", "#111111"), bob)
	require.NoError(t, err)

	start := time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		opt  testutil.EventOption
		want error
	}{
		{"foreign goal", testutil.WithEventGoal(bobsGoal.ID), domain.ErrForbidden},
		{"missing goal", testutil.WithEventGoal("missing"), domain.ErrNotFound},
		{"foreign category", func(in *domain.CalendarEventInput) { in.CategoryID = &bobsCat.ID }, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testutil.NewEventInput("Exam", start, time.Hour, tt.opt)
			in.Normalize()
			_, err := events.Insert(ctx, in, alice)
			assert.ErrorIs(t, err, tt.want)

			plain := testutil.NewEventInput("Exam", start, time.Hour)
			plain.Normalize()
			ev, err := events.Insert(ctx, plain, alice)
			require.NoError(t, err)
			_, err = events.Update(ctx, ev.ID, in, alice)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSessionTable_UpdateCannotMoveToForeignGoal(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	goals := remote.NewGoalTable(rdb)
	sessions := remote.NewSessionTable(rdb)
	ctx := context.Background()

	mine, err := goals.Insert(ctx, normalizedGoal("Go"), alice)
	require.NoError(t, err)
	bobs, err := goals.Insert(ctx, normalizedGoal("Rust"), bob)
	require.NoError(t, err)

	session, err := sessions.Insert(ctx, testutil.NewSessionInput(mine.ID, 25), alice)
	require.NoError(t, err)

	_, err = sessions.Update(ctx, session.ID, testutil.NewSessionInput(bobs.ID, 25), alice)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = sessions.Update(ctx, session.ID, testutil.NewSessionInput("missing", 25), alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = sessions.Update(ctx, session.ID, testutil.NewSessionInput(mine.ID, 40), bob)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Bob deleting his goal must not cascade into Alice's session.
	require.NoError(t, goals.Delete(ctx, bobs.ID, bob))
	got, err := sessions.Get(ctx, session.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.GoalID)
	assert.Equal(t, 25, got.Duration)
}

func TestEventTable_CorruptRemindersSurface(t *testing.T) {
	rdb := testutil.NewTestRemote(t, testutil.NewClock(testutil.Epoch))
	events := remote.NewEventTable(rdb)
	ctx := context.Background()

	in := testutil.NewEventInput("Exam", testutil.Epoch, time.Hour, testutil.WithReminders("1h"))
	in.Normalize()
	ev, err := events.Insert(ctx, in, alice)
	require.NoError(t, err)

	require.NoError(t, rdb.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE calendar_events SET reminders = '{not json' WHERE id = ?`, ev.ID)
		return err
	}))

	_, err = events.Get(ctx, ev.ID, alice)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reminders")
	_, err = events.List(ctx, alice)
	assert.Error(t, err)
}

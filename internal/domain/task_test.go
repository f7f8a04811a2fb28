package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestApplyStatus_SetsCompletedAtWhenDone(t *testing.T) {
	task := &Task{Status: TaskDone}
	task.ApplyStatus(testNow)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, testNow, *task.CompletedAt)
}

func TestApplyStatus_KeepsExistingCompletedAt(t *testing.T) {
	earlier := testNow.Add(-time.Hour)
	task := &Task{Status: TaskDone, CompletedAt: &earlier}
	task.ApplyStatus(testNow)
	assert.Equal(t, earlier, *task.CompletedAt, "should not overwrite existing CompletedAt")
}

func TestApplyStatus_ClearsCompletedAtWhenNotDone(t *testing.T) {
	for _, status := range []TaskStatus{TaskTodo, TaskInProgress} {
		earlier := testNow.Add(-time.Hour)
		task := &Task{Status: status, CompletedAt: &earlier}
		task.ApplyStatus(testNow)
		assert.Nil(t, task.CompletedAt, "status=%s", status)
	}
}

func TestTaskInputNormalize_Defaults(t *testing.T) {
	in := TaskInput{Title: "  Read  "}
	in.Normalize()
	assert.Equal(t, "Read", in.Title)
	assert.Equal(t, PriorityMedium, in.Priority)
	assert.Equal(t, TaskTodo, in.Status)
	assert.Equal(t, DefaultEstimatedDuration, in.EstimatedDuration)
}

func TestNewLocalTask_MarksLocalOnly(t *testing.T) {
	in := TaskInput{Title: "Read"}
	in.Normalize()
	task := NewLocalTask("1749981600000", in, testNow)

	assert.Equal(t, "1749981600000", task.ID)
	assert.True(t, task.LocalOnly)
	assert.Equal(t, testNow, task.CreatedAt)
	assert.Empty(t, task.UserID)
	assert.NotNil(t, task.Subtasks)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskApply_DropsStaleCategory(t *testing.T) {
	work := "cat-work"
	other := "cat-other"
	task := Task{
		CategoryID: &work,
		Category:   &Category{Record: Record{ID: work}, Name: "Work"},
	}
	task.Apply(TaskInput{Title: "x", CategoryID: &work, Status: TaskTodo}, testNow)
	assert.NotNil(t, task.Category, "same category keeps the joined relation")

	task.Apply(TaskInput{Title: "x", CategoryID: &other, Status: TaskTodo}, testNow)
	assert.Nil(t, task.Category)
	assert.Equal(t, other, *task.CategoryID)
}

func TestTaskProgress(t *testing.T) {
	task := Task{}
	assert.Equal(t, 0, task.Progress())

	task.Subtasks = []Subtask{{IsCompleted: true}, {IsCompleted: false}, {IsCompleted: false}}
	assert.Equal(t, 33, task.Progress())

	task.Subtasks[1].IsCompleted = true
	assert.Equal(t, 67, task.Progress())
}

func TestValidateTask_RejectsBlankTitle(t *testing.T) {
	in := TaskInput{Title: "   "}
	err := ValidateTask(&in)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "task", ve.Entity)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "title", ve.Fields[0].Field)
	assert.Equal(t, "required", ve.Fields[0].Rule)
}

func TestValidateTask_RejectsUnknownPriority(t *testing.T) {
	in := TaskInput{Title: "Read", Priority: "urgent"}
	err := ValidateTask(&in)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "priority", ve.Fields[0].Field)
}

func TestValidateGoal(t *testing.T) {
	in := GoalInput{Title: "Go", TargetHoursPerWeek: 5}
	require.NoError(t, ValidateGoal(&in))
	assert.Equal(t, DefaultGoalColor, in.Color)

	neg := -1.0
	bad := GoalInput{Title: "Go", TargetHoursPerWeek: neg}
	assert.Error(t, ValidateGoal(&bad))
}

func TestValidateCategory_HexColor(t *testing.T) {
	ok := CategoryInput{Name: "Work", Color: "#3B82F6"}
	assert.NoError(t, ValidateCategory(&ok))

	bad := CategoryInput{Name: "Work", Color: "blue"}
	assert.Error(t, ValidateCategory(&bad))
}

func TestValidateStudySession(t *testing.T) {
	in := StudySessionInput{GoalID: "g1", Duration: 25, Efficiency: 80}
	assert.NoError(t, ValidateStudySession(&in))

	zero := StudySessionInput{GoalID: "g1", Duration: 0, Efficiency: 80}
	assert.Error(t, ValidateStudySession(&zero))

	over := StudySessionInput{GoalID: "g1", Duration: 5, Efficiency: 101}
	assert.Error(t, ValidateStudySession(&over))

	orphan := StudySessionInput{Duration: 5}
	assert.Error(t, ValidateStudySession(&orphan))
}

func TestValidateCalendarEvent(t *testing.T) {
	in := CalendarEventInput{Title: "Exam", StartTime: testNow, EndTime: testNow.Add(time.Hour)}
	require.NoError(t, ValidateCalendarEvent(&in))
	assert.Equal(t, DefaultEventType, in.EventType)
	assert.NotNil(t, in.Reminders)

	backwards := CalendarEventInput{Title: "Exam", StartTime: testNow, EndTime: testNow.Add(-time.Hour)}
	err := ValidateCalendarEvent(&backwards)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "end_time", ve.Fields[0].Field)
}

func TestGoalApply_KeepsProgressWhenOmitted(t *testing.T) {
	g := LearningGoal{CurrentProgress: 90}
	g.Apply(GoalInput{Title: "Go"}, testNow)
	assert.Equal(t, 90, g.CurrentProgress)

	reset := 0
	g.Apply(GoalInput{Title: "Go", CurrentProgress: &reset}, testNow)
	assert.Equal(t, 0, g.CurrentProgress)

	g.AddProgress(-5)
	assert.Equal(t, 0, g.CurrentProgress)
	g.AddProgress(25)
	assert.Equal(t, 25, g.CurrentProgress)
}

func TestStudySessionApply_DefaultsDateToNow(t *testing.T) {
	s := NewLocalStudySession("1", StudySessionInput{GoalID: "g", Duration: 10}, testNow)
	assert.Equal(t, testNow, s.SessionDate)
}

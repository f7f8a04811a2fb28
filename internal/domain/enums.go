package domain

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[string]bool{
	"low": true, "medium": true, "high": true,
}

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[string]bool{
	"todo": true, "in_progress": true, "done": true,
}

const (
	DefaultEstimatedDuration = 120
	DefaultEventType         = "personal"
	DefaultGoalColor         = "indigo"
)

// Collection keys used by the local store. Each holds a JSON array.
const (
	KeyTasks          = "tasks"
	KeyCategories     = "categories"
	KeyLearningGoals  = "learning_goals"
	KeyStudySessions  = "study_sessions"
	KeyCalendarEvents = "calendar_events"
)

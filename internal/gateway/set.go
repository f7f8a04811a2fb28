package gateway

// Set holds one gateway per entity type, sharing dependencies.
type Set struct {
	Tasks      *TaskGateway
	Categories *CategoryGateway
	Goals      *GoalGateway
	Sessions   *SessionGateway
	Events     *EventGateway
}

// NewSet builds every gateway. tables may be nil for a local-only deployment.
func NewSet(deps Deps, tables *Tables) *Set {
	if tables == nil {
		tables = &Tables{}
	}
	deps = deps.withDefaults()
	return &Set{
		Tasks:      NewTaskGateway(tables.Tasks, deps),
		Categories: NewCategoryGateway(tables.Categories, deps),
		Goals:      NewGoalGateway(tables.Goals, deps),
		Sessions:   NewSessionGateway(tables.Sessions, deps),
		Events:     NewEventGateway(tables.Events, deps),
	}
}

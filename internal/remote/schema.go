package remote

// Timestamps are stored as fixed-width UTC text so lexical order matches
// time order on every driver. Booleans are stored as 0/1 integers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL,
		title              TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		category_id        TEXT REFERENCES categories(id) ON DELETE SET NULL,
		priority           TEXT NOT NULL DEFAULT 'medium'
		                   CHECK(priority IN ('low','medium','high')),
		status             TEXT NOT NULL DEFAULT 'todo'
		                   CHECK(status IN ('todo','in_progress','done')),
		due_date           TEXT,
		estimated_duration INTEGER NOT NULL DEFAULT 120,
		completed_at       TEXT,
		created_at         TEXT NOT NULL,
		CHECK((status = 'done') = (completed_at IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS subtasks (
		id           TEXT PRIMARY KEY,
		task_id      TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		position     INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subtasks_task ON subtasks(task_id, position)`,

	`CREATE TABLE IF NOT EXISTS learning_goals (
		id                    TEXT PRIMARY KEY,
		user_id               TEXT NOT NULL,
		title                 TEXT NOT NULL,
		description           TEXT NOT NULL DEFAULT '',
		target_hours_per_week REAL NOT NULL DEFAULT 0 CHECK(target_hours_per_week >= 0),
		color                 TEXT NOT NULL DEFAULT 'indigo',
		current_progress      INTEGER NOT NULL DEFAULT 0 CHECK(current_progress >= 0),
		created_at            TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_learning_goals_user ON learning_goals(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS study_sessions (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		goal_id      TEXT NOT NULL REFERENCES learning_goals(id) ON DELETE CASCADE,
		duration     INTEGER NOT NULL CHECK(duration > 0),
		efficiency   INTEGER NOT NULL CHECK(efficiency BETWEEN 0 AND 100),
		session_date TEXT NOT NULL,
		notes        TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_study_sessions_goal ON study_sessions(goal_id, session_date)`,
	`CREATE INDEX IF NOT EXISTS idx_study_sessions_user ON study_sessions(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS calendar_events (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		all_day     INTEGER NOT NULL DEFAULT 0,
		event_type  TEXT NOT NULL DEFAULT 'personal',
		reminders   TEXT NOT NULL DEFAULT '[]',
		recurring   INTEGER NOT NULL DEFAULT 0,
		category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
		goal_id     TEXT REFERENCES learning_goals(id) ON DELETE SET NULL,
		created_at  TEXT NOT NULL,
		CHECK(end_time >= start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calendar_events_user ON calendar_events(user_id, created_at)`,
}

package remote

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yosuakev/learnful/internal/domain"
)

type EventTable struct {
	db *DB
}

func NewEventTable(db *DB) *EventTable {
	return &EventTable{db: db}
}

type eventRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	StartTime   string         `db:"start_time"`
	EndTime     string         `db:"end_time"`
	AllDay      int            `db:"all_day"`
	EventType   string         `db:"event_type"`
	Reminders   string         `db:"reminders"`
	Recurring   int            `db:"recurring"`
	CategoryID  sql.NullString `db:"category_id"`
	GoalID      sql.NullString `db:"goal_id"`
	CreatedAt   string         `db:"created_at"`
}

const eventColumns = `id, user_id, title, description, start_time, end_time, all_day, event_type,
	reminders, recurring, category_id, goal_id, created_at`

func populateEvent(r eventRow) (domain.CalendarEvent, error) {
	reminders, err := decodeStrings(r.Reminders)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("decoding reminders of calendar event %s: %w", r.ID, err)
	}
	return domain.CalendarEvent{
		Record:      domain.Record{ID: r.ID, UserID: r.UserID, CreatedAt: parseTime(r.CreatedAt)},
		Title:       r.Title,
		Description: r.Description,
		StartTime:   parseTime(r.StartTime),
		EndTime:     parseTime(r.EndTime),
		AllDay:      intToBool(r.AllDay),
		EventType:   r.EventType,
		Reminders:   reminders,
		Recurring:   intToBool(r.Recurring),
		CategoryID:  stringPtr(r.CategoryID),
		GoalID:      stringPtr(r.GoalID),
	}, nil
}

func eventRefs(in domain.CalendarEventInput) []ref {
	return []ref{
		{"category_id", "categories", in.CategoryID},
		{"goal_id", "learning_goals", in.GoalID},
	}
}

func (r *EventTable) List(ctx context.Context, ownerID string) ([]domain.CalendarEvent, error) {
	var rows []eventRow
	if err := selectRows(ctx, r.db.db, &rows,
		`SELECT `+eventColumns+` FROM calendar_events WHERE user_id = ? ORDER BY created_at DESC, id DESC`, ownerID); err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}
	out := make([]domain.CalendarEvent, len(rows))
	for i, row := range rows {
		e, err := populateEvent(row)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (r *EventTable) Get(ctx context.Context, id, ownerID string) (domain.CalendarEvent, error) {
	var row eventRow
	if err := get(ctx, r.db.db, &row,
		`SELECT `+eventColumns+` FROM calendar_events WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("getting calendar event %s: %w", id, err)
	}
	return populateEvent(row)
}

func (r *EventTable) Insert(ctx context.Context, in domain.CalendarEventInput, ownerID string) (domain.CalendarEvent, error) {
	id := uuid.New().String()
	reminders, err := encodeStrings(in.Reminders)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("inserting calendar event: %w", err)
	}
	err = r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := checkRefs(ctx, tx, ownerID, eventRefs(in)...); err != nil {
			return err
		}
		_, err := exec(ctx, tx,
			`INSERT INTO calendar_events (id, user_id, title, description, start_time, end_time, all_day,
				event_type, reminders, recurring, category_id, goal_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ownerID, in.Title, in.Description, formatTime(in.StartTime), formatTime(in.EndTime),
			boolToInt(in.AllDay), in.EventType, reminders, boolToInt(in.Recurring),
			nullableString(in.CategoryID), nullableString(in.GoalID), r.db.timestamp())
		return err
	})
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("inserting calendar event: %w", err)
	}
	return r.Get(ctx, id, ownerID)
}

func (r *EventTable) Update(ctx context.Context, id string, in domain.CalendarEventInput, ownerID string) (domain.CalendarEvent, error) {
	reminders, err := encodeStrings(in.Reminders)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("updating calendar event %s: %w", id, err)
	}
	err = r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := checkOwner(ctx, tx, "calendar_events", id, ownerID); err != nil {
			return err
		}
		if err := checkRefs(ctx, tx, ownerID, eventRefs(in)...); err != nil {
			return err
		}
		_, err := exec(ctx, tx,
			`UPDATE calendar_events SET title = ?, description = ?, start_time = ?, end_time = ?, all_day = ?,
				event_type = ?, reminders = ?, recurring = ?, category_id = ?, goal_id = ?
			 WHERE id = ? AND user_id = ?`,
			in.Title, in.Description, formatTime(in.StartTime), formatTime(in.EndTime), boolToInt(in.AllDay),
			in.EventType, reminders, boolToInt(in.Recurring),
			nullableString(in.CategoryID), nullableString(in.GoalID), id, ownerID)
		return err
	})
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("updating calendar event %s: %w", id, err)
	}
	return r.Get(ctx, id, ownerID)
}

func (r *EventTable) Delete(ctx context.Context, id, ownerID string) error {
	n, err := exec(ctx, r.db.db, `DELETE FROM calendar_events WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting calendar event %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting calendar event %s: %w", id, missing(ctx, r.db.db, "calendar_events", id))
	}
	return nil
}

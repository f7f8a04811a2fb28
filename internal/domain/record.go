package domain

import "time"

// Record holds the fields every persisted entity shares, regardless of which
// store served it. LocalOnly is set only on records synthesised by the local
// path; remote rows never carry it.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	LocalOnly bool      `json:"_localOnly,omitempty"`
}

// RecordID returns the record's identifier.
func (r Record) RecordID() string { return r.ID }

// NewLocalRecord returns the common fields for a record created without a
// remote store.
func NewLocalRecord(id string, now time.Time) Record {
	return Record{
		ID:        id,
		CreatedAt: now.UTC(),
		LocalOnly: true,
	}
}

// UserSession identifies the signed-in user when a remote session exists.
type UserSession struct {
	UserID    string
	ExpiresAt time.Time
}

package gateway

import (
	"time"

	"github.com/yosuakev/learnful/internal/domain"
)

type EventGateway struct {
	*Gateway[domain.CalendarEvent, domain.CalendarEventInput]
}

func NewEventGateway(table EventTable, deps Deps) *EventGateway {
	shape := Shape[domain.CalendarEvent, domain.CalendarEventInput]{
		Entity:   "calendar_event",
		Key:      domain.KeyCalendarEvents,
		ID:       func(e domain.CalendarEvent) string { return e.ID },
		Validate: domain.ValidateCalendarEvent,
		New:      domain.NewLocalCalendarEvent,
		Apply:    func(e *domain.CalendarEvent, in domain.CalendarEventInput, now time.Time) { e.Apply(in, now) },
	}
	var remote RemoteTable[domain.CalendarEvent, domain.CalendarEventInput]
	if table != nil {
		remote = table
	}
	return &EventGateway{Gateway: New(shape, remote, deps)}
}

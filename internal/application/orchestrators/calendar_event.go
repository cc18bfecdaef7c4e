package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"opsboard/internal/domain/calendar"
)

// EventStoreForOrchestrator defines the store interface needed by the calendar event orchestrators.
type EventStoreForOrchestrator interface {
	Save(ctx context.Context, e calendar.Event) error
	Delete(ctx context.Context, id string) error
}

// CreateEventInput carries input for creating a calendar event. Dates use calendar.DateLayout.
type CreateEventInput struct {
	Title       string
	Type        string
	Description string
	Location    string
	StartDate   string
	EndDate     string // optional
	CreatedBy   string
}

// CreateEventDeps holds dependencies for CreateEvent.
type CreateEventDeps struct {
	EventStore EventStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateEvent parses, validates and stores a calendar event.
// POST: event persisted; malformed dates return calendar.ErrInvalidDate
func ExecuteCreateEvent(ctx context.Context, input CreateEventInput, deps CreateEventDeps) (calendar.Event, error) {
	e := calendar.Event{
		ID:          generateID(deps.GenerateID),
		Title:       strings.TrimSpace(input.Title),
		Type:        input.Type,
		Description: input.Description,
		Location:    strings.TrimSpace(input.Location),
		CreatedBy:   input.CreatedBy,
		CreatedAt:   clock(deps.Now),
	}
	if e.Type == "" {
		e.Type = calendar.TypeEvent
	}
	var err error
	if e.StartDate, err = parseEventDate(input.StartDate); err != nil {
		return calendar.Event{}, err
	}
	if e.EndDate, err = parseEventDate(input.EndDate); err != nil {
		return calendar.Event{}, err
	}
	if err := e.Validate(); err != nil {
		return calendar.Event{}, err
	}
	if err := deps.EventStore.Save(ctx, e); err != nil {
		return calendar.Event{}, err
	}
	slog.Info("calendar_event", "event", "event_created", "event_id", e.ID, "start", input.StartDate)
	return e, nil
}

// DeleteEventDeps holds dependencies for DeleteEvent.
type DeleteEventDeps struct {
	EventStore EventStoreForOrchestrator
}

// ExecuteDeleteEvent removes a calendar event.
func ExecuteDeleteEvent(ctx context.Context, id string, deps DeleteEventDeps) error {
	if err := deps.EventStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("calendar_event", "event", "event_deleted", "event_id", id)
	return nil
}

func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(calendar.DateLayout, s)
	if err != nil {
		return time.Time{}, calendar.ErrInvalidDate
	}
	return t, nil
}

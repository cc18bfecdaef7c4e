package calendar

import (
	"context"
	"errors"

	domain "opsboard/internal/domain/calendar"
)

// ErrNotFound is returned when no event has the requested ID.
var ErrNotFound = errors.New("calendar event not found")

// Store persists calendar events.
type Store interface {
	Save(ctx context.Context, e domain.Event) error
	GetByID(ctx context.Context, id string) (domain.Event, error)
	ListByDateRange(ctx context.Context, from, to string) ([]domain.Event, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

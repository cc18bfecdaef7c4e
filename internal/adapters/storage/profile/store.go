package profile

import (
	"context"
	"errors"

	domain "opsboard/internal/domain/profile"
)

// ErrNotFound is returned when no profile has the requested ID.
var ErrNotFound = errors.New("profile not found")

// Store persists staff profiles.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error)
	Save(ctx context.Context, p domain.Profile) error
	List(ctx context.Context) ([]domain.Profile, error)
}

package lead

import (
	"context"
	"errors"

	domain "opsboard/internal/domain/lead"
)

// ErrNotFound is returned when no lead has the requested ID.
var ErrNotFound = errors.New("lead not found")

// Store persists sales leads.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Lead, error)
	Save(ctx context.Context, l domain.Lead) error
	UpdateStage(ctx context.Context, id, stage string) error
	List(ctx context.Context) ([]domain.Lead, error)
	CountByStage(ctx context.Context) (map[string]int, error)
}

package project

import (
	"context"
	"errors"

	domain "opsboard/internal/domain/project"
)

// ErrNotFound is returned when no project or feature has the requested ID.
var ErrNotFound = errors.New("project not found")

// Store persists projects with their major and minor features.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Project, error)
	Save(ctx context.Context, p domain.Project) error
	List(ctx context.Context) ([]domain.Project, error)
	Count(ctx context.Context) (int, error)
	CreateMajorFeature(ctx context.Context, f domain.MajorFeature, minors []domain.MinorFeature) error
	ListMajorFeatures(ctx context.Context, projectID string) ([]domain.MajorFeature, error)
	ListMinorFeatures(ctx context.Context, majorFeatureID string) ([]domain.MinorFeature, error)
}

package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"opsboard/internal/domain/profile"
)

// ProfileStoreForCreate defines the store interface needed by CreateProfile.
type ProfileStoreForCreate interface {
	Save(ctx context.Context, p profile.Profile) error
}

// CreateProfileInput carries input for creating a staff profile.
type CreateProfileInput struct {
	Name        string
	Role        string
	Email       string
	PicturePath string
}

// CreateProfileDeps holds dependencies for CreateProfile.
type CreateProfileDeps struct {
	ProfileStore ProfileStoreForCreate
	GenerateID   func() string
}

// ExecuteCreateProfile validates and stores a profile.
// POST: profile persisted with a fresh ID
func ExecuteCreateProfile(ctx context.Context, input CreateProfileInput, deps CreateProfileDeps) (profile.Profile, error) {
	p := profile.Profile{
		ID:          generateID(deps.GenerateID),
		Name:        strings.TrimSpace(input.Name),
		Role:        strings.TrimSpace(input.Role),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		PicturePath: strings.TrimSpace(input.PicturePath),
	}
	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}
	if err := deps.ProfileStore.Save(ctx, p); err != nil {
		return profile.Profile{}, err
	}
	slog.Info("profile_event", "event", "profile_created", "profile_id", p.ID)
	return p, nil
}

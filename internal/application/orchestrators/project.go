package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"opsboard/internal/adapters/email"
	"opsboard/internal/domain/profile"
	"opsboard/internal/domain/project"
)

// ProjectStoreForOrchestrator defines the store interface needed by the project orchestrators.
type ProjectStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (project.Project, error)
	Save(ctx context.Context, p project.Project) error
	CreateMajorFeature(ctx context.Context, f project.MajorFeature, minors []project.MinorFeature) error
}

// ProfileLookup resolves profile IDs.
type ProfileLookup interface {
	GetByIDs(ctx context.Context, ids []string) ([]profile.Profile, error)
}

var ErrUnknownProfile = errors.New("one or more selected people do not have a profile")

// CreateProjectInput carries input for creating a project.
type CreateProjectInput struct {
	Name           string
	Description    string
	PeopleInvolved []string
}

// CreateProjectDeps holds dependencies for CreateProject.
type CreateProjectDeps struct {
	ProjectStore ProjectStoreForOrchestrator
	Profiles     ProfileLookup
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateProject validates and stores a project.
// PRE: none
// POST: project persisted; every person involved has a profile
func ExecuteCreateProject(ctx context.Context, input CreateProjectInput, deps CreateProjectDeps) (project.Project, error) {
	p := project.Project{
		ID:             generateID(deps.GenerateID),
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		PeopleInvolved: dedupe(input.PeopleInvolved),
		CreatedAt:      clock(deps.Now),
	}
	if err := p.Validate(); err != nil {
		return project.Project{}, err
	}
	if len(p.PeopleInvolved) > 0 {
		found, err := deps.Profiles.GetByIDs(ctx, p.PeopleInvolved)
		if err != nil {
			return project.Project{}, err
		}
		if len(found) != len(p.PeopleInvolved) {
			return project.Project{}, ErrUnknownProfile
		}
	}
	if err := deps.ProjectStore.Save(ctx, p); err != nil {
		return project.Project{}, err
	}
	slog.Info("project_event", "event", "project_created", "project_id", p.ID, "people", len(p.PeopleInvolved))
	return p, nil
}

// MinorFeatureInput is one row of the "Add Minor Feature" list.
type MinorFeatureInput struct {
	Name          string
	Description   string
	StaffInvolved []string // nil inherits the major feature's people
}

// CreateMajorFeatureInput carries input for the major-feature form.
type CreateMajorFeatureInput struct {
	ProjectID      string
	Name           string
	Description    string
	Objective      string
	PeopleInvolved []string
	MinorFeatures  []MinorFeatureInput
}

// CreateMajorFeatureDeps holds dependencies for CreateMajorFeature.
type CreateMajorFeatureDeps struct {
	ProjectStore ProjectStoreForOrchestrator
	Profiles     ProfileLookup
	Sender       email.Sender // nil disables notifications
	GenerateID   func() string
	Now          func() time.Time
}

// CreateMajorFeatureResult reports the stored feature and who was notified.
type CreateMajorFeatureResult struct {
	Feature  project.MajorFeature
	Minors   []project.MinorFeature
	Notified []string // emails
}

// ExecuteCreateMajorFeature stores a major feature with its minor features in one
// transaction, then emails every person selected on the major feature.
// PRE: none
// POST: feature and minors persisted atomically; notification failures are logged only
// INVARIANT: every selected person is involved in the project
func ExecuteCreateMajorFeature(ctx context.Context, input CreateMajorFeatureInput, deps CreateMajorFeatureDeps) (CreateMajorFeatureResult, error) {
	p, err := deps.ProjectStore.GetByID(ctx, input.ProjectID)
	if err != nil {
		return CreateMajorFeatureResult{}, err
	}

	f := project.MajorFeature{
		ID:             generateID(deps.GenerateID),
		ProjectID:      p.ID,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Objective:      input.Objective,
		PeopleInvolved: dedupe(input.PeopleInvolved),
		CreatedAt:      clock(deps.Now),
	}
	if err := f.Validate(p); err != nil {
		return CreateMajorFeatureResult{}, err
	}
	if len(input.MinorFeatures) > project.MaxMinorFeatures {
		return CreateMajorFeatureResult{}, project.ErrTooManyMinor
	}

	minors := make([]project.MinorFeature, 0, len(input.MinorFeatures))
	for i, in := range input.MinorFeatures {
		m := project.NewMinorFeature(f)
		m.ID = generateID(deps.GenerateID)
		m.Name = strings.TrimSpace(in.Name)
		m.Description = in.Description
		if in.StaffInvolved != nil {
			m.StaffInvolved = dedupe(in.StaffInvolved)
		}
		if err := m.Validate(); err != nil {
			return CreateMajorFeatureResult{}, fmt.Errorf("minor feature %d: %w", i+1, err)
		}
		for _, id := range m.StaffInvolved {
			if !p.Involves(id) {
				return CreateMajorFeatureResult{}, fmt.Errorf("minor feature %d: %w", i+1, project.ErrStaffNotInProject)
			}
		}
		minors = append(minors, m)
	}

	if err := deps.ProjectStore.CreateMajorFeature(ctx, f, minors); err != nil {
		return CreateMajorFeatureResult{}, err
	}
	slog.Info("project_event", "event", "major_feature_created", "project_id", p.ID, "feature_id", f.ID, "minor_features", len(minors))

	result := CreateMajorFeatureResult{Feature: f, Minors: minors}
	if deps.Sender != nil && len(f.PeopleInvolved) > 0 {
		result.Notified = notifyFeatureStaff(ctx, p, f, deps)
	}
	return result, nil
}

func notifyFeatureStaff(ctx context.Context, p project.Project, f project.MajorFeature, deps CreateMajorFeatureDeps) []string {
	people, err := deps.Profiles.GetByIDs(ctx, f.PeopleInvolved)
	if err != nil {
		slog.Warn("project_event", "event", "feature_notify_lookup_failed", "feature_id", f.ID, "error", err)
		return nil
	}
	var msgs []email.Message
	var to []string
	for _, person := range people {
		body := fmt.Sprintf("Hi %s,\n\nYou have been added to **%s** on *%s*.\n\n%s",
			person.Name, f.Name, p.Name, f.Objective)
		msg, err := email.Compose([]string{person.Email}, "New feature: "+f.Name, body)
		if err != nil {
			slog.Warn("project_event", "event", "feature_notify_render_failed", "profile_id", person.ID, "error", err)
			continue
		}
		msgs = append(msgs, msg)
		to = append(to, person.Email)
	}
	if len(msgs) == 0 {
		return nil
	}
	if _, err := deps.Sender.SendBatch(ctx, msgs); err != nil {
		slog.Warn("project_event", "event", "feature_notify_failed", "feature_id", f.ID, "error", err)
		return nil
	}
	return to
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

package projections

import (
	"context"

	"opsboard/internal/domain/profile"
	"opsboard/internal/domain/project"
)

// ProjectReader defines the project store interface needed by the project projections.
type ProjectReader interface {
	GetByID(ctx context.Context, id string) (project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
	ListMajorFeatures(ctx context.Context, projectID string) ([]project.MajorFeature, error)
	ListMinorFeatures(ctx context.Context, majorFeatureID string) ([]project.MinorFeature, error)
}

// ProfileReader defines the profile store interface needed by the project projections.
type ProfileReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]profile.Profile, error)
	List(ctx context.Context) ([]profile.Profile, error)
}

// PersonCard is a profile with its picture resolved.
type PersonCard struct {
	ID         string
	Name       string
	Role       string
	Email      string
	PictureURL string
	Selected   bool
}

// ProjectSummary is one row of the project list.
type ProjectSummary struct {
	ID          string
	Name        string
	Description string
	People      int
}

// GetProjectListDeps holds dependencies for GetProjectList.
type GetProjectListDeps struct {
	ProjectStore ProjectReader
	ProfileStore ProfileReader
	Resolver     URLResolver
}

// ProjectListResult carries the projects page, including the people available for a new project.
type ProjectListResult struct {
	Projects []ProjectSummary
	People   []PersonCard
}

// GetProjectList lists projects and every profile.
func GetProjectList(ctx context.Context, deps GetProjectListDeps) (ProjectListResult, error) {
	projects, err := deps.ProjectStore.List(ctx)
	if err != nil {
		return ProjectListResult{}, err
	}
	people, err := deps.ProfileStore.List(ctx)
	if err != nil {
		return ProjectListResult{}, err
	}
	var result ProjectListResult
	for _, p := range projects {
		result.Projects = append(result.Projects, ProjectSummary{
			ID: p.ID, Name: p.Name, Description: p.Description, People: len(p.PeopleInvolved),
		})
	}
	result.People = personCards(people, nil, deps.Resolver)
	return result, nil
}

// FeatureDetail is a major feature with its minor features.
type FeatureDetail struct {
	Feature project.MajorFeature
	People  []PersonCard
	Minors  []project.MinorFeature
}

// ProjectDetailResult carries the project page.
type ProjectDetailResult struct {
	Project  project.Project
	People   []PersonCard
	Features []FeatureDetail
}

// GetProjectDetail loads a project, its people and its features.
func GetProjectDetail(ctx context.Context, id string, deps GetProjectListDeps) (ProjectDetailResult, error) {
	p, err := deps.ProjectStore.GetByID(ctx, id)
	if err != nil {
		return ProjectDetailResult{}, err
	}
	people, err := deps.ProfileStore.GetByIDs(ctx, p.PeopleInvolved)
	if err != nil {
		return ProjectDetailResult{}, err
	}
	byID := make(map[string]profile.Profile, len(people))
	for _, person := range people {
		byID[person.ID] = person
	}

	result := ProjectDetailResult{Project: p, People: personCards(people, nil, deps.Resolver)}
	majors, err := deps.ProjectStore.ListMajorFeatures(ctx, p.ID)
	if err != nil {
		return ProjectDetailResult{}, err
	}
	for _, f := range majors {
		minors, err := deps.ProjectStore.ListMinorFeatures(ctx, f.ID)
		if err != nil {
			return ProjectDetailResult{}, err
		}
		var assigned []profile.Profile
		for _, id := range f.PeopleInvolved {
			if person, ok := byID[id]; ok {
				assigned = append(assigned, person)
			}
		}
		result.Features = append(result.Features, FeatureDetail{
			Feature: f, People: personCards(assigned, nil, deps.Resolver), Minors: minors,
		})
	}
	return result, nil
}

// MajorFeatureFormResult carries the new-major-feature page.
type MajorFeatureFormResult struct {
	ProjectID   string
	ProjectName string
	Staff       []PersonCard
}

// GetMajorFeatureForm loads the project and the profiles of the people involved in it,
// marking the ones already selected.
func GetMajorFeatureForm(ctx context.Context, projectID string, selected []string, deps GetProjectListDeps) (MajorFeatureFormResult, error) {
	p, err := deps.ProjectStore.GetByID(ctx, projectID)
	if err != nil {
		return MajorFeatureFormResult{}, err
	}
	staff, err := deps.ProfileStore.GetByIDs(ctx, p.PeopleInvolved)
	if err != nil {
		return MajorFeatureFormResult{}, err
	}
	return MajorFeatureFormResult{
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Staff:       personCards(staff, selected, deps.Resolver),
	}, nil
}

func personCards(people []profile.Profile, selected []string, resolver URLResolver) []PersonCard {
	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}
	cards := make([]PersonCard, 0, len(people))
	for _, p := range people {
		c := PersonCard{ID: p.ID, Name: p.Name, Role: p.Role, Email: p.Email, Selected: chosen[p.ID]}
		if resolver != nil {
			c.PictureURL = resolver.PublicURL(profile.PictureBucket, p.PicturePath)
		}
		cards = append(cards, c)
	}
	return cards
}

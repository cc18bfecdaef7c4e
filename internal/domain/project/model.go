package project

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// Max length constants.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 5000
	MaxObjectiveLength   = 5000
	MaxMinorFeatures     = 50
)

var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrNameTooLong       = errors.New("name cannot exceed 200 characters")
	ErrDescTooLong       = errors.New("description cannot exceed 5000 characters")
	ErrObjectiveTooLong  = errors.New("objective cannot exceed 5000 characters")
	ErrMissingProject    = errors.New("major feature must belong to a project")
	ErrStaffNotInProject = errors.New("staff member is not involved in this project")
	ErrTooManyMinor      = errors.New("a major feature can have at most 50 minor features")
)

// Project groups features and the people working on them.
type Project struct {
	ID             string
	Name           string
	Description    string
	PeopleInvolved []string // profile IDs
	CreatedAt      time.Time
}

// Validate checks the project's invariants.
func (p *Project) Validate() error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if len(p.Description) > MaxDescriptionLength {
		return ErrDescTooLong
	}
	return nil
}

// Involves reports whether a profile works on the project.
func (p *Project) Involves(profileID string) bool {
	return slices.Contains(p.PeopleInvolved, profileID)
}

// MajorFeature is a deliverable of a project.
type MajorFeature struct {
	ID             string
	ProjectID      string
	Name           string
	Description    string
	Objective      string
	PeopleInvolved []string // profile IDs
	CreatedAt      time.Time
}

// Validate checks the feature against its project.
// PRE: p is the project identified by f.ProjectID
// POST: returns nil if valid, the first violation otherwise
func (f *MajorFeature) Validate(p Project) error {
	if f.ProjectID == "" || f.ProjectID != p.ID {
		return ErrMissingProject
	}
	if err := validateName(f.Name); err != nil {
		return err
	}
	if len(f.Description) > MaxDescriptionLength {
		return ErrDescTooLong
	}
	if len(f.Objective) > MaxObjectiveLength {
		return ErrObjectiveTooLong
	}
	for _, id := range f.PeopleInvolved {
		if !p.Involves(id) {
			return ErrStaffNotInProject
		}
	}
	return nil
}

// MinorFeature is an isolated component required to make a major feature work.
type MinorFeature struct {
	ID             string
	MajorFeatureID string
	Name           string
	Description    string
	StaffInvolved  []string // profile IDs
}

// Validate checks the minor feature.
func (m *MinorFeature) Validate() error {
	if err := validateName(m.Name); err != nil {
		return err
	}
	if len(m.Description) > MaxDescriptionLength {
		return ErrDescTooLong
	}
	return nil
}

// NewMinorFeature starts a minor feature for f; its staff defaults to the
// major feature's people.
func NewMinorFeature(f MajorFeature) MinorFeature {
	return MinorFeature{
		MajorFeatureID: f.ID,
		StaffInvolved:  slices.Clone(f.PeopleInvolved),
	}
}

// ToggleStaff selects id if absent and deselects it if present.
// POST: returns a new slice; selected is not modified
func ToggleStaff(selected []string, id string) []string {
	if slices.Contains(selected, id) {
		out := make([]string, 0, len(selected))
		for _, s := range selected {
			if s != id {
				out = append(out, s)
			}
		}
		return out
	}
	return append(slices.Clone(selected), id)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

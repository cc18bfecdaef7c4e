package profile

import (
	"errors"
	"strings"
)

// PictureBucket is the object storage bucket holding profile pictures.
const PictureBucket = "profile.pictures"

var (
	ErrEmptyName    = errors.New("profile name cannot be empty")
	ErrInvalidEmail = errors.New("profile email must contain '@'")
)

// Profile is a staff member who can be assigned to projects and features.
type Profile struct {
	ID          string
	Name        string
	Role        string // job title shown under the picture
	Email       string
	PicturePath string // object key inside PictureBucket
}

// Validate checks the profile.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

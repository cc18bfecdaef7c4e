package orchestrators

import (
	"errors"

	"opsboard/internal/domain/account"
	"opsboard/internal/domain/calendar"
	"opsboard/internal/domain/lead"
	"opsboard/internal/domain/profile"
	"opsboard/internal/domain/project"
)

// validationErrors are the failures a user can fix by changing their input.
var validationErrors = []error{
	account.ErrInvalidEmail, account.ErrEmptyEmail, account.ErrEmailTooLong, account.ErrInvalidRole,
	account.ErrEmptyPassword, account.ErrPasswordTooShort, ErrEmailAlreadyExists,
	calendar.ErrEmptyTitle, calendar.ErrInvalidType, calendar.ErrMissingStart,
	calendar.ErrEndBeforeStart, calendar.ErrInvalidDate,
	lead.ErrEmptyName, lead.ErrNameTooLong, lead.ErrDescTooLong, lead.ErrInvalidStage, lead.ErrTooManyTags,
	profile.ErrEmptyName, profile.ErrInvalidEmail,
	project.ErrEmptyName, project.ErrNameTooLong, project.ErrDescTooLong, project.ErrObjectiveTooLong,
	project.ErrMissingProject, project.ErrStaffNotInProject, project.ErrTooManyMinor,
	ErrUnknownProfile,
	ErrCurrentPasswordWrong, ErrNewPasswordSame, ErrPasswordMismatch,
}

// IsValidationError reports whether err wraps a domain validation failure.
// Handlers answer these with 400 and the error text.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

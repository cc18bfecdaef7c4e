package calendar

import (
	"errors"
	"time"
)

// Event type constants.
const (
	TypeEvent    = "event"    // general business event (launch, offsite, office closure)
	TypeMeeting  = "meeting"  // client or internal meeting
	TypeDeadline = "deadline" // delivery or contract deadline
)

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxLocationLength    = 200
)

// DateLayout is the storage and API format for event dates.
const DateLayout = "2006-01-02"

// Event represents an entry shown in a day's popover.
// PRE: Title is non-empty. StartDate is set. Type is one of the Type constants.
// INVARIANT: EndDate >= StartDate when EndDate is set.
type Event struct {
	ID          string
	Title       string
	Type        string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time // zero value means single-day event
	CreatedBy   string    // account ID
	CreatedAt   time.Time
}

var (
	ErrEmptyTitle     = errors.New("event title cannot be empty")
	ErrInvalidType    = errors.New("event type must be 'event', 'meeting' or 'deadline'")
	ErrMissingStart   = errors.New("event start date is required")
	ErrEndBeforeStart = errors.New("event end date cannot be before start date")
	ErrInvalidDate    = errors.New("event dates must use YYYY-MM-DD")
)

// Validate checks the event's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > MaxTitleLength {
		return errors.New("event title cannot exceed 200 characters")
	}
	if e.Type != TypeEvent && e.Type != TypeMeeting && e.Type != TypeDeadline {
		return ErrInvalidType
	}
	if e.StartDate.IsZero() {
		return ErrMissingStart
	}
	if !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		return ErrEndBeforeStart
	}
	if len(e.Description) > MaxDescriptionLength {
		return errors.New("event description cannot exceed 2000 characters")
	}
	if len(e.Location) > MaxLocationLength {
		return errors.New("event location cannot exceed 200 characters")
	}
	return nil
}

// IsMultiDay returns true if the event spans more than one day.
func (e *Event) IsMultiDay() bool {
	if e.EndDate.IsZero() {
		return false
	}
	return e.EndDate.After(e.StartDate) &&
		e.EndDate.Format(DateLayout) != e.StartDate.Format(DateLayout)
}

// Covers reports whether the event takes place on the given calendar date.
func (e *Event) Covers(date time.Time) bool {
	d := date.Format(DateLayout)
	start := e.StartDate.Format(DateLayout)
	if e.EndDate.IsZero() {
		return d == start
	}
	return d >= start && d <= e.EndDate.Format(DateLayout)
}

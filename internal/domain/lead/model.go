package lead

import (
	"errors"
	"strings"
	"time"
)

// Stage constants, in board order.
const (
	StageFirstContact   = "first_contact"
	StagePossible       = "possible"
	StageProbable       = "probable"
	StageContractSigned = "contract_signed"
)

// StageUnknown is shown for leads without a recognised stage.
const StageUnknown = "Unknown"

// Stages lists the board columns left to right.
var Stages = []string{StageFirstContact, StagePossible, StageProbable, StageContractSigned}

// stageLabels maps stages to their column headings.
var stageLabels = map[string]string{
	StageFirstContact:   "Preparing for Contact / First Contact",
	StagePossible:       "Possible Lead",
	StageProbable:       "Probable Lead",
	StageContractSigned: "Contract Signed",
}

// Max length constants.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 5000
	MaxAssociations      = 20
)

// PreviewBucket is the object storage bucket holding lead preview images.
const PreviewBucket = "leads.previews"

var (
	ErrEmptyName    = errors.New("lead name cannot be empty")
	ErrNameTooLong  = errors.New("lead name cannot exceed 200 characters")
	ErrDescTooLong  = errors.New("lead description cannot exceed 5000 characters")
	ErrInvalidStage = errors.New("lead stage must be one of: first_contact, possible, probable, contract_signed")
	ErrTooManyTags  = errors.New("a lead can have at most 20 associations")
)

// Lead is a sales prospect tracked on the board.
type Lead struct {
	ID               string
	Name             string
	Description      string // markdown
	PreviewImagePath string // object key inside PreviewBucket
	Associations     []string
	Stage            string // empty until triaged
	CreatedAt        time.Time
}

// Validate checks the lead's invariants.
// PRE: none
// POST: returns nil if valid, the first violation otherwise
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	if len(l.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(l.Description) > MaxDescriptionLength {
		return ErrDescTooLong
	}
	if l.Stage != "" && !IsValidStage(l.Stage) {
		return ErrInvalidStage
	}
	if len(l.Associations) > MaxAssociations {
		return ErrTooManyTags
	}
	return nil
}

// IsValidStage reports whether s is a board stage.
func IsValidStage(s string) bool {
	_, ok := stageLabels[s]
	return ok
}

// StageLabel returns the column heading for a stage, or StageUnknown.
func StageLabel(s string) string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return StageUnknown
}

// AssociationsText joins associations the way the manage list shows them.
func (l *Lead) AssociationsText() string {
	return strings.Join(l.Associations, " ")
}

// ParseAssociations splits free text on commas and whitespace, dropping empties.
func ParseAssociations(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

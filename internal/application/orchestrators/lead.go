package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"opsboard/internal/adapters/email"
	"opsboard/internal/domain/lead"
)

// LeadStoreForOrchestrator defines the store interface needed by the lead orchestrators.
type LeadStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (lead.Lead, error)
	Save(ctx context.Context, l lead.Lead) error
	UpdateStage(ctx context.Context, id, stage string) error
}

// CreateLeadInput carries input for creating a lead.
type CreateLeadInput struct {
	Name             string
	Description      string
	PreviewImagePath string
	Associations     string // free text, split on commas and whitespace
	Stage            string
}

// CreateLeadDeps holds dependencies for CreateLead.
type CreateLeadDeps struct {
	LeadStore  LeadStoreForOrchestrator
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateLead validates and stores a new lead.
// PRE: none
// POST: lead persisted with a fresh ID; returns the stored lead
func ExecuteCreateLead(ctx context.Context, input CreateLeadInput, deps CreateLeadDeps) (lead.Lead, error) {
	l := lead.Lead{
		ID:               generateID(deps.GenerateID),
		Name:             input.Name,
		Description:      input.Description,
		PreviewImagePath: input.PreviewImagePath,
		Associations:     lead.ParseAssociations(input.Associations),
		Stage:            input.Stage,
		CreatedAt:        clock(deps.Now),
	}
	if err := l.Validate(); err != nil {
		return lead.Lead{}, err
	}
	if err := deps.LeadStore.Save(ctx, l); err != nil {
		return lead.Lead{}, err
	}
	slog.Info("lead_event", "event", "lead_created", "lead_id", l.ID, "stage", l.Stage)
	return l, nil
}

// ChangeLeadStageInput carries input for moving a lead between columns.
type ChangeLeadStageInput struct {
	LeadID  string
	Stage   string
	ActorID string
}

// ChangeLeadStageDeps holds dependencies for ChangeLeadStage.
type ChangeLeadStageDeps struct {
	LeadStore  LeadStoreForOrchestrator
	Sender     email.Sender // nil disables notifications
	SalesInbox string       // empty disables notifications
}

// ChangeLeadStageResult reports what happened.
type ChangeLeadStageResult struct {
	Lead     lead.Lead
	Notified bool
}

// ExecuteChangeLeadStage moves a lead to another stage. Moving into contract_signed
// from any other stage notifies the sales inbox. A failed notification is logged
// and does not undo the stage change.
// PRE: none
// POST: lead stage persisted
func ExecuteChangeLeadStage(ctx context.Context, input ChangeLeadStageInput, deps ChangeLeadStageDeps) (ChangeLeadStageResult, error) {
	if !lead.IsValidStage(input.Stage) {
		return ChangeLeadStageResult{}, lead.ErrInvalidStage
	}
	l, err := deps.LeadStore.GetByID(ctx, input.LeadID)
	if err != nil {
		return ChangeLeadStageResult{}, err
	}
	previous := l.Stage
	if previous == input.Stage {
		return ChangeLeadStageResult{Lead: l}, nil
	}
	if err := deps.LeadStore.UpdateStage(ctx, l.ID, input.Stage); err != nil {
		return ChangeLeadStageResult{}, err
	}
	l.Stage = input.Stage
	slog.Info("lead_event", "event", "lead_stage_changed", "lead_id", l.ID, "from", previous, "to", l.Stage, "actor_id", input.ActorID)

	result := ChangeLeadStageResult{Lead: l}
	if l.Stage != lead.StageContractSigned || deps.Sender == nil || deps.SalesInbox == "" {
		return result, nil
	}
	if err := notifyContractSigned(ctx, l, previous, deps); err != nil {
		slog.Warn("lead_event", "event", "contract_signed_notify_failed", "lead_id", l.ID, "error", err)
		return result, nil
	}
	result.Notified = true
	return result, nil
}

func notifyContractSigned(ctx context.Context, l lead.Lead, previous string, deps ChangeLeadStageDeps) error {
	body := fmt.Sprintf("**%s** moved from *%s* to *%s*.\n\n%s",
		l.Name, lead.StageLabel(previous), lead.StageLabel(l.Stage), l.Description)
	msg, err := email.Compose([]string{deps.SalesInbox}, "Contract signed: "+l.Name, body)
	if err != nil {
		return err
	}
	_, err = deps.Sender.Send(ctx, msg)
	return err
}

func generateID(fn func() string) string {
	if fn == nil {
		return uuid.NewString()
	}
	return fn()
}

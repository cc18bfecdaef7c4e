package web

import (
	"net/http"

	"opsboard/internal/adapters/http/middleware"
	"opsboard/internal/application/orchestrators"
	"opsboard/internal/application/projections"
	"opsboard/internal/domain/lead"
)

// handleLeads renders the stage columns and the manage list.
func handleLeads(w http.ResponseWriter, r *http.Request) {
	board, err := projections.GetLeadsBoard(r.Context(), projections.GetLeadsBoardDeps{
		LeadStore: stores.LeadStore,
		Resolver:  resolver,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "leads.html", map[string]any{
		"Board":  board,
		"Stages": stageOptions(),
	})
}

type stageOption struct {
	Value, Label string
}

func stageOptions() []stageOption {
	opts := make([]stageOption, 0, len(lead.Stages))
	for _, s := range lead.Stages {
		opts = append(opts, stageOption{Value: s, Label: lead.StageLabel(s)})
	}
	return opts
}

// handleNewLead handles GET (form) and POST (create) for /leads/new.
func handleNewLead(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, r, "lead_form.html", map[string]any{"Stages": stageOptions()})
	case http.MethodPost:
		if !sess.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input := orchestrators.CreateLeadInput{
			Name:             r.FormValue("name"),
			Description:      r.FormValue("description"),
			PreviewImagePath: r.FormValue("preview_image_path"),
			Associations:     r.FormValue("associations"),
			Stage:            r.FormValue("stage"),
		}
		_, err := orchestrators.ExecuteCreateLead(r.Context(), input, orchestrators.CreateLeadDeps{
			LeadStore:  stores.LeadStore,
			GenerateID: generateID,
			Now:        timeNow,
		})
		if orchestrators.IsValidationError(err) {
			renderTemplateStatus(w, r, http.StatusBadRequest, "lead_form.html", map[string]any{
				"Stages": stageOptions(),
				"Input":  input,
				"Error":  err.Error(),
			})
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}
		http.Redirect(w, r, "/leads", http.StatusSeeOther)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleChangeLeadStage handles POST /leads/{id}/stage.
func handleChangeLeadStage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	_, err := orchestrators.ExecuteChangeLeadStage(r.Context(), orchestrators.ChangeLeadStageInput{
		LeadID:  r.PathValue("id"),
		Stage:   r.FormValue("stage"),
		ActorID: sess.AccountID,
	}, orchestrators.ChangeLeadStageDeps{
		LeadStore:  stores.LeadStore,
		Sender:     emailSender,
		SalesInbox: salesInbox,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, "/leads", http.StatusSeeOther)
}

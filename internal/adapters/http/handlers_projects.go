package web

import (
	"net/http"

	"opsboard/internal/adapters/http/middleware"
	"opsboard/internal/application/orchestrators"
	"opsboard/internal/application/projections"
	"opsboard/internal/domain/project"
)

func projectDeps() projections.GetProjectListDeps {
	return projections.GetProjectListDeps{
		ProjectStore: stores.ProjectStore,
		ProfileStore: stores.ProfileStore,
		Resolver:     resolver,
	}
}

// handleProjects handles GET (list) and POST (create) for /projects.
func handleProjects(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		list, err := projections.GetProjectList(r.Context(), projectDeps())
		if err != nil {
			internalError(w, err)
			return
		}
		renderTemplate(w, r, "projects.html", map[string]any{"List": list})
	case http.MethodPost:
		if !sess.CanEdit() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		p, err := orchestrators.ExecuteCreateProject(r.Context(), orchestrators.CreateProjectInput{
			Name:           r.FormValue("name"),
			Description:    r.FormValue("description"),
			PeopleInvolved: r.Form["people"],
		}, orchestrators.CreateProjectDeps{
			ProjectStore: stores.ProjectStore,
			Profiles:     stores.ProfileStore,
			GenerateID:   generateID,
			Now:          timeNow,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, "/projects/"+p.ID, http.StatusSeeOther)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleProjectDetail renders a project with its features.
func handleProjectDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := projections.GetProjectDetail(r.Context(), r.PathValue("id"), projectDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	renderTemplate(w, r, "project.html", detail)
}

// minorRow is one "Add Minor Feature" row carried between form posts.
type minorRow struct {
	Name        string
	Description string
}

// majorFeaturePage is the template data for the major-feature form.
type majorFeaturePage struct {
	projections.MajorFeatureFormResult
	Name        string
	Description string
	Objective   string
	Minors      []minorRow
	Error       string
}

// handleNewMajorFeature drives the major-feature form. Each POST is one of:
// toggle=<profile id> flips that person's selection, action=add_minor appends
// a minor feature row, action=create stores everything.
func handleNewMajorFeature(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	projectID := r.PathValue("id")

	if r.Method == http.MethodGet {
		renderMajorFeatureForm(w, r, http.StatusOK, projectID, nil, majorFeaturePage{})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !sess.CanEdit() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	selected := r.Form["staff"]
	page := majorFeaturePage{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Objective:   r.FormValue("objective"),
	}
	names, descs := r.Form["minor_name"], r.Form["minor_description"]
	for i, n := range names {
		row := minorRow{Name: n}
		if i < len(descs) {
			row.Description = descs[i]
		}
		page.Minors = append(page.Minors, row)
	}

	switch {
	case r.FormValue("toggle") != "":
		selected = project.ToggleStaff(selected, r.FormValue("toggle"))
		renderMajorFeatureForm(w, r, http.StatusOK, projectID, selected, page)
	case r.FormValue("action") == "add_minor":
		if len(page.Minors) < project.MaxMinorFeatures {
			page.Minors = append(page.Minors, minorRow{})
		}
		renderMajorFeatureForm(w, r, http.StatusOK, projectID, selected, page)
	case r.FormValue("action") == "create":
		input := orchestrators.CreateMajorFeatureInput{
			ProjectID:      projectID,
			Name:           page.Name,
			Description:    page.Description,
			Objective:      page.Objective,
			PeopleInvolved: selected,
		}
		for _, m := range page.Minors {
			input.MinorFeatures = append(input.MinorFeatures, orchestrators.MinorFeatureInput{
				Name: m.Name, Description: m.Description,
			})
		}
		_, err := orchestrators.ExecuteCreateMajorFeature(r.Context(), input, orchestrators.CreateMajorFeatureDeps{
			ProjectStore: stores.ProjectStore,
			Profiles:     stores.ProfileStore,
			Sender:       emailSender,
			GenerateID:   generateID,
			Now:          timeNow,
		})
		if orchestrators.IsValidationError(err) {
			page.Error = err.Error()
			renderMajorFeatureForm(w, r, http.StatusBadRequest, projectID, selected, page)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, "/projects/"+projectID, http.StatusSeeOther)
	default:
		http.Error(w, "unknown form action", http.StatusBadRequest)
	}
}

// renderMajorFeatureForm loads the project's people and renders the form.
// Only project people are rendered, so selections of anyone else are dropped
// on the next post.
func renderMajorFeatureForm(w http.ResponseWriter, r *http.Request, status int, projectID string, selected []string, page majorFeaturePage) {
	form, err := projections.GetMajorFeatureForm(r.Context(), projectID, selected, projectDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	page.MajorFeatureFormResult = form
	renderTemplateStatus(w, r, status, "major_feature_form.html", page)
}

package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"opsboard/internal/adapters/http/middleware"
	accountStore "opsboard/internal/adapters/storage/account"
	calendarStore "opsboard/internal/adapters/storage/calendar"
	leadStore "opsboard/internal/adapters/storage/lead"
	profileStore "opsboard/internal/adapters/storage/profile"
	projectStore "opsboard/internal/adapters/storage/project"
	"opsboard/internal/application/orchestrators"
	"opsboard/internal/domain/account"
)

//go:embed templates static
var assets embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer escapes raw HTML in markdown input (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeError maps orchestrator and store errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case orchestrators.IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case isNotFound(err):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		internalError(w, err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, accountStore.ErrNotFound) ||
		errors.Is(err, leadStore.ErrNotFound) ||
		errors.Is(err, projectStore.ErrNotFound) ||
		errors.Is(err, profileStore.ErrNotFound) ||
		errors.Is(err, calendarStore.ErrNotFound)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err)
	}
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// renderTemplate executes templates/<name> inside the shared layout.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, name, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	sess, loggedIn := middleware.SessionFromContext(r.Context())
	funcMap := template.FuncMap{
		"currentRole":    func() string { return sess.Role },
		"currentEmail":   func() string { return sess.Email },
		"isLoggedIn":     func() bool { return loggedIn },
		"canEdit":        func() bool { return loggedIn && sess.CanEdit() },
		"isPreviewing":   func() bool { return sess.IsPreviewing() },
		"isRealAdmin":    func() bool { return middleware.IsRealAdmin(r.Context()) },
		"roles":          func() []string { return account.ValidRoles },
		"csrfToken":      func() string { return csrf.Token(r) },
		"renderMarkdown": renderMarkdown,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(assets, "templates/layout.html", "templates/"+name)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// handleRoot sends visitors to the dashboard.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

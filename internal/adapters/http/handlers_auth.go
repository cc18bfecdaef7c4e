package web

import (
	"errors"
	"log/slog"
	"net/http"

	"opsboard/internal/adapters/http/middleware"
	"opsboard/internal/application/orchestrators"
)

// handleLogin handles GET (form) and POST (authenticate) for /login and /sign-in.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := middleware.SessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{"Action": r.URL.Path, "Email": ""})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}, orchestrators.LoginDeps{AccountStore: stores.AccountStore, Now: timeNow})
		if err != nil {
			if !errors.Is(err, orchestrators.ErrInvalidCredentials) && !errors.Is(err, orchestrators.ErrAccountLocked) {
				internalError(w, err)
				return
			}
			renderTemplateStatus(w, r, http.StatusUnauthorized, "login.html", map[string]any{
				"Action": r.URL.Path,
				"Email":  r.FormValue("Email"),
				"Error":  err.Error(),
			})
			return
		}

		token, err := sessions.Create(result.AccountID, result.Email, result.Role)
		if err != nil {
			internalError(w, err)
			return
		}
		middleware.SetSessionCookie(w, token, secureCookies)
		dest := "/dashboard"
		if result.PasswordChangeRequired {
			dest = "/account/password"
		}
		http.Redirect(w, r, dest, http.StatusSeeOther)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleLogout ends the session and releases its calendar board.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
		boards.Forget(token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleUnauthorized renders the page anonymous visitors of guarded pages land on.
func handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	renderTemplateStatus(w, r, http.StatusUnauthorized, "unauthorized.html", nil)
}

// handlePreviewRole lets an admin look at the app as another role.
func handlePreviewRole(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	if !middleware.IsRealAdmin(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}
	result, err := orchestrators.ExecutePreviewRole(orchestrators.PreviewRoleInput{
		TargetRole:  r.FormValue("role"),
		CurrentRole: sess.Role,
		RealRole:    sess.RealRole,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Role, sess.RealRole = result.Role, result.RealRole
	sessions.Update(sess)
	slog.Info("preview_event", "event", "preview_role", "account_id", sess.AccountID, "role", result.Role)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleEndPreview restores the admin role.
func handleEndPreview(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	result, err := orchestrators.ExecuteEndPreview(sess.RealRole)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Role, sess.RealRole = result.Role, ""
	sessions.Update(sess)
	slog.Info("preview_event", "event", "preview_end", "account_id", sess.AccountID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleChangePassword handles GET (form) and POST (change) for /account/password.
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		renderTemplate(w, r, "change_password.html", nil)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
			AccountID:       sess.AccountID,
			CurrentPassword: r.FormValue("current"),
			NewPassword:     r.FormValue("new"),
			Confirm:         r.FormValue("confirm"),
		}, orchestrators.ChangePasswordDeps{AccountStore: stores.AccountStore})
		if orchestrators.IsValidationError(err) {
			renderTemplateStatus(w, r, http.StatusBadRequest, "change_password.html", map[string]any{"Error": err.Error()})
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

package web

import (
	"net/http"

	"opsboard/internal/application/orchestrators"
	"opsboard/internal/domain/account"
	"opsboard/internal/domain/profile"
)

type profilePayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Email      string `json:"email"`
	PictureURL string `json:"picture_url,omitempty"`
}

func toProfilePayload(p profile.Profile) profilePayload {
	return profilePayload{
		ID:         p.ID,
		Name:       p.Name,
		Role:       p.Role,
		Email:      p.Email,
		PictureURL: resolver.PublicURL(profile.PictureBucket, p.PicturePath),
	}
}

// handleListProfiles handles GET /api/profiles.
func handleListProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := stores.ProfileStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]profilePayload, 0, len(list))
	for _, p := range list {
		out = append(out, toProfilePayload(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateProfile handles POST /api/profiles (admin only).
func handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Role        string `json:"role"`
		Email       string `json:"email"`
		PicturePath string `json:"picture_path"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	p, err := orchestrators.ExecuteCreateProfile(r.Context(), orchestrators.CreateProfileInput{
		Name:        req.Name,
		Role:        req.Role,
		Email:       req.Email,
		PicturePath: req.PicturePath,
	}, orchestrators.CreateProfileDeps{ProfileStore: stores.ProfileStore, GenerateID: generateID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfilePayload(p))
}

// handleCreateAccount handles POST /api/accounts (admin only). New accounts
// must change their password on first login.
func handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = account.RoleViewer
	}
	id, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:                  req.Email,
		Password:               req.Password,
		Role:                   req.Role,
		PasswordChangeRequired: true,
	}, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"opsboard/internal/domain/account"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionTTL is how long a login lasts.
const SessionTTL = 24 * time.Hour

const sessionCookieName = "opsboard_session"

// Session is an authenticated browser session.
// Token doubles as the key of the session's calendar board.
type Session struct {
	Token     string
	AccountID string
	Email     string
	Role      string
	CreatedAt time.Time

	// RealRole is set while an admin previews the app as another role.
	RealRole string
}

// IsPreviewing reports whether an admin is currently previewing another role.
func (s Session) IsPreviewing() bool {
	return s.RealRole != ""
}

// CanEdit reports whether the effective role may change leads, projects and events.
func (s Session) CanEdit() bool {
	return s.Role == account.RoleAdmin || s.Role == account.RoleStaff
}

// SessionStore keeps sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session), now: time.Now}
}

// Create starts a session and returns its token.
// PRE: accountID, email, role are non-empty
func (ss *SessionStore) Create(accountID, email, role string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{
		Token:     token,
		AccountID: accountID,
		Email:     email,
		Role:      role,
		CreatedAt: ss.now(),
	}
	return token, nil
}

// Get returns the session for token unless it is unknown or expired.
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	s, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok || ss.now().Sub(s.CreatedAt) > SessionTTL {
		return Session{}, false
	}
	return s, true
}

// Update replaces an existing session. It reports false for unknown tokens.
func (ss *SessionStore) Update(s Session) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if _, ok := ss.sessions[s.Token]; !ok {
		return false
	}
	ss.sessions[s.Token] = s
	return true
}

// Delete ends a session.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// Sweep drops expired sessions and returns their tokens so dependent state
// (calendar boards) can be released too.
func (ss *SessionStore) Sweep() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	var expired []string
	now := ss.now()
	for token, s := range ss.sessions {
		if now.Sub(s.CreatedAt) > SessionTTL {
			delete(ss.sessions, token)
			expired = append(expired, token)
		}
	}
	return expired
}

// Auth loads the session named by the cookie into the request context.
// Anonymous requests pass through; guard routes with RequireSession or RequireRole.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				if s, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession redirects anonymous page requests to redirectTo with 303 See Other.
// Different pages send visitors to different places ("/login", "/sign-in", "/401").
func RequireSession(redirectTo string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := SessionFromContext(r.Context()); !ok {
				http.Redirect(w, r, redirectTo, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPISession answers anonymous API requests with 401.
func RequireAPISession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 403 unless the effective role is one of roles.
// Anonymous requests get 401.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !allowed[s.Role] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the request's session, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(Session)
	return s, ok
}

// ContextWithSession attaches s to ctx.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// IsRealAdmin reports whether the person behind the session is an admin,
// even while previewing another role.
func IsRealAdmin(ctx context.Context) bool {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return false
	}
	if s.IsPreviewing() {
		return s.RealRole == account.RoleAdmin
	}
	return s.Role == account.RoleAdmin
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// SessionToken returns the raw cookie value, for requests that reached a
// handler without a valid session.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"opsboard/internal/adapters/email"
	"opsboard/internal/adapters/http/middleware"
	"opsboard/internal/adapters/http/perf"
	"opsboard/internal/adapters/objectstore"
	accountStore "opsboard/internal/adapters/storage/account"
	calendarStore "opsboard/internal/adapters/storage/calendar"
	leadStore "opsboard/internal/adapters/storage/lead"
	profileStore "opsboard/internal/adapters/storage/profile"
	projectStore "opsboard/internal/adapters/storage/project"
	"opsboard/internal/application/calendarview"
	"opsboard/internal/domain/account"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore       accountStore.Store
	ProfileStore       profileStore.Store
	LeadStore          leadStore.Store
	ProjectStore       projectStore.Store
	CalendarEventStore calendarStore.Store
}

// Config carries everything NewMux needs besides the stores.
type Config struct {
	Production bool
	CSRFKey    []byte // 32 bytes; nil generates a random key outside production
	Collector  *perf.Collector
	Sender     email.Sender // nil disables notifications
	SalesInbox string
	Resolver   objectstore.Resolver
	// ObjectsDir, when set, is served under /objects/ for StaticResolver URLs.
	ObjectsDir string
	Boards     *calendarview.Registry // nil creates one with the default idle TTL
	// ImageOrigins are extra img-src origins for the content security policy.
	ImageOrigins []string
	// TrustedOrigins are hosts allowed to post forms, e.g. "localhost:8080".
	TrustedOrigins []string
}

// LoadCSRFKey decodes a hex-encoded 32-byte key. An empty value is an error in
// production; elsewhere a random per-process key is generated.
func LoadCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("CSRF key must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, fmt.Errorf("CSRF key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_random", "hint", "sessions will not survive a restart; set OPSBOARD_CSRF_KEY")
	return key, nil
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Per-session calendar boards
var boards *calendarview.Registry

var (
	perfCollector *perf.Collector
	emailSender   email.Sender
	salesInbox    string
	resolver      objectstore.Resolver = objectstore.StaticResolver{Prefix: "/objects"}
	secureCookies bool
)

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set
func NewMux(s *Stores, cfg Config) (http.Handler, error) {
	csrfKey := cfg.CSRFKey
	if csrfKey == nil {
		var err error
		if csrfKey, err = LoadCSRFKey("", cfg.Production); err != nil {
			return nil, err
		}
	}
	configure(s, cfg)

	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	if cfg.ObjectsDir != "" {
		mux.Handle("GET /objects/", http.StripPrefix("/objects/", http.FileServerFS(os.DirFS(cfg.ObjectsDir))))
	}
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)
	return middleware.Chain(mux,
		middleware.Auth(sessions),
		middleware.CSRF(csrfKey, cfg.Production, cfg.TrustedOrigins...),
		middleware.SecurityHeaders(cfg.ImageOrigins...),
		middleware.RateLimit(limiter),
		middleware.Timing(cfg.Collector),
	), nil
}

// configure sets the package state handlers read.
func configure(s *Stores, cfg Config) {
	stores = s
	sessions = middleware.NewSessionStore()
	boards = cfg.Boards
	if boards == nil {
		boards = calendarview.NewRegistry(calendarview.DefaultIdleTTL)
	}
	perfCollector = cfg.Collector
	emailSender = cfg.Sender
	salesInbox = cfg.SalesInbox
	if cfg.Resolver != nil {
		resolver = cfg.Resolver
	}
	secureCookies = cfg.Production
}

// registerRoutes maps every page and API endpoint.
func registerRoutes(mux *http.ServeMux) {
	page := func(redirect string, h http.HandlerFunc) http.Handler {
		return middleware.RequireSession(redirect)(h)
	}
	api := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAPISession(h)
	}
	editors := middleware.RequireRole(account.RoleAdmin, account.RoleStaff)

	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/sign-in", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.HandleFunc("GET /401", handleUnauthorized)
	mux.Handle("/account/password", page("/login", handleChangePassword))
	mux.Handle("POST /preview", page("/login", handlePreviewRole))
	mux.Handle("POST /preview/end", page("/login", handleEndPreview))

	mux.Handle("GET /dashboard", page("/login", handleDashboard))

	mux.Handle("GET /calendar", page("/login", handleCalendar))
	mux.Handle("POST /calendar/interact", page("/login", handleCalendarInteract))
	mux.Handle("POST /api/calendar/interact", api(handleCalendarInteractAPI))
	mux.Handle("GET /api/calendar/events", api(handleListEvents))
	mux.Handle("POST /api/calendar/events", editors(http.HandlerFunc(handleCreateEvent)))
	mux.Handle("DELETE /api/calendar/events", editors(http.HandlerFunc(handleDeleteEvent)))
	mux.Handle("GET /calendar.ics", page("/login", handleCalendarExport))

	mux.Handle("GET /leads", page("/401", handleLeads))
	mux.Handle("/leads/new", page("/401", handleNewLead))
	mux.Handle("POST /leads/{id}/stage", editors(http.HandlerFunc(handleChangeLeadStage)))

	mux.Handle("/projects", page("/login", handleProjects))
	mux.Handle("GET /projects/{id}", page("/login", handleProjectDetail))
	mux.Handle("/projects/{id}/features/major/new", page("/sign-in", handleNewMajorFeature))

	mux.Handle("GET /api/profiles", api(handleListProfiles))
	mux.Handle("POST /api/profiles", middleware.RequireRole(account.RoleAdmin)(http.HandlerFunc(handleCreateProfile)))
	mux.Handle("POST /api/accounts", middleware.RequireRole(account.RoleAdmin)(http.HandlerFunc(handleCreateAccount)))
}

// Sweep drops expired sessions with their calendar boards, then idle boards.
// The server calls it periodically.
func Sweep() (expiredSessions, idleBoards int) {
	for _, token := range sessions.Sweep() {
		boards.Forget(token)
		expiredSessions++
	}
	return expiredSessions, boards.Sweep()
}

package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
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
	"opsboard/internal/adapters/storage/storagetest"
	"opsboard/internal/application/calendarview"
	"opsboard/internal/domain/account"
)

var fixedNow = time.Date(2026, 6, 10, 9, 30, 0, 0, time.UTC)

type testApp struct {
	handler http.Handler
	stores  *Stores
	sender  *email.NoopSender
}

func counterMount() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("m%d", n)
	}
}

// newTestApp wires the routes over a migrated in-memory database.
// CSRF is left out so form posts can be made directly; TestNewMux covers it.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := storagetest.Open(t)
	s := &Stores{
		AccountStore:       accountStore.NewSQLiteStore(db),
		ProfileStore:       profileStore.NewSQLiteStore(db),
		LeadStore:          leadStore.NewSQLiteStore(db),
		ProjectStore:       projectStore.NewSQLiteStore(db),
		CalendarEventStore: calendarStore.NewSQLiteStore(db),
	}
	sender := email.NewNoopSender()
	configure(s, Config{
		Collector:  perf.NewCollector(100),
		Sender:     sender,
		SalesInbox: "sales@opsboard.test",
		Resolver:   objectstore.StaticResolver{Prefix: "/objects"},
		Boards:     calendarview.NewRegistry(time.Hour, calendarview.WithMountSource(counterMount())),
	})

	prev := timeNow
	timeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { timeNow = prev })

	mux := http.NewServeMux()
	registerRoutes(mux)
	return &testApp{handler: middleware.Auth(sessions)(mux), stores: s, sender: sender}
}

// signIn creates a session for role and returns its cookie.
func signIn(t *testing.T, role string) *http.Cookie {
	t.Helper()
	token, err := sessions.Create("acct-"+role, role+"@opsboard.test", role)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	rr := httptest.NewRecorder()
	middleware.SetSessionCookie(rr, token, false)
	return rr.Result().Cookies()[0]
}

func (a *testApp) do(method, target string, body string, contentType string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) get(target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, target, "", "", cookie)
}

func (a *testApp) postForm(target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, target, form.Encode(), "application/x-www-form-urlencoded", cookie)
}

func (a *testApp) sendJSON(method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return a.do(method, target, body, "application/json", cookie)
}

func assertRedirect(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body %q)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Location"); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

// TestLogin tests the credential check and session cookie.
func TestLogin(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	acct := account.Account{ID: "a1", Email: "ana@opsboard.test", Role: account.RoleStaff, CreatedAt: fixedNow}
	if err := acct.SetPassword("correct horse battery"); err != nil {
		t.Fatal(err)
	}
	if err := app.stores.AccountStore.Save(ctx, acct); err != nil {
		t.Fatal(err)
	}

	rr := app.get("/sign-in", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `action="/sign-in"`) {
		t.Fatalf("sign-in form = %d", rr.Code)
	}

	rr = app.postForm("/login", url.Values{"Email": {"ana@opsboard.test"}, "Password": {"wrong"}}, nil)
	if rr.Code != http.StatusUnauthorized || !strings.Contains(rr.Body.String(), "invalid email or password") {
		t.Fatalf("wrong password = %d", rr.Code)
	}

	rr = app.postForm("/login", url.Values{"Email": {"ana@opsboard.test"}, "Password": {"correct horse battery"}}, nil)
	assertRedirect(t, rr, "/dashboard")
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "" {
		t.Fatalf("cookies = %v", cookies)
	}
	if rr := app.get("/dashboard", cookies[0]); rr.Code != http.StatusOK {
		t.Fatalf("dashboard with new session = %d", rr.Code)
	}

	rr = app.postForm("/logout", nil, cookies[0])
	assertRedirect(t, rr, "/login")
	assertRedirect(t, app.get("/dashboard", cookies[0]), "/login")
}

// TestForcedPasswordChange tests that accounts created by an admin change their password first.
func TestForcedPasswordChange(t *testing.T) {
	app := newTestApp(t)
	acct := account.Account{ID: "a2", Email: "new@opsboard.test", Role: account.RoleViewer, CreatedAt: fixedNow, PasswordChangeRequired: true}
	if err := acct.SetPassword("temporary password"); err != nil {
		t.Fatal(err)
	}
	if err := app.stores.AccountStore.Save(context.Background(), acct); err != nil {
		t.Fatal(err)
	}

	rr := app.postForm("/login", url.Values{"Email": {acct.Email}, "Password": {"temporary password"}}, nil)
	assertRedirect(t, rr, "/account/password")
	cookie := rr.Result().Cookies()[0]

	rr = app.postForm("/account/password", url.Values{"current": {"temporary password"}, "new": {"my own passphrase"}, "confirm": {"typo"}}, cookie)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "do not match") {
		t.Fatalf("mismatch = %d", rr.Code)
	}
	form := url.Values{"current": {"temporary password"}, "new": {"my own passphrase"}, "confirm": {"my own passphrase"}}
	assertRedirect(t, app.postForm("/account/password", form, cookie), "/dashboard")

	rr = app.postForm("/login", url.Values{"Email": {acct.Email}, "Password": {"my own passphrase"}}, nil)
	assertRedirect(t, rr, "/dashboard")
}

// TestRouteGuards tests where anonymous visitors are sent.
func TestRouteGuards(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		target string
		want   string
	}{
		{"/dashboard", "/login"},
		{"/calendar", "/login"},
		{"/leads", "/401"},
		{"/leads/new", "/401"},
		{"/projects", "/login"},
		{"/projects/p1/features/major/new", "/sign-in"},
	}
	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			assertRedirect(t, app.get(tc.target, nil), tc.want)
		})
	}

	if rr := app.get("/api/profiles", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous API status = %d, want 401", rr.Code)
	}
	if rr := app.get("/401", nil); rr.Code != http.StatusUnauthorized || !strings.Contains(rr.Body.String(), "Not authorised") {
		t.Fatalf("/401 = %d", rr.Code)
	}
}

// TestPreviewRole tests an admin previewing the viewer role and ending it.
func TestPreviewRole(t *testing.T) {
	app := newTestApp(t)
	admin := signIn(t, account.RoleAdmin)

	assertRedirect(t, app.postForm("/preview", url.Values{"role": {account.RoleViewer}}, admin), "/dashboard")
	if rr := app.postForm("/leads/new", url.Values{"name": {"Acme"}}, admin); rr.Code != http.StatusForbidden {
		t.Fatalf("previewing viewer created a lead: %d", rr.Code)
	}
	assertRedirect(t, app.postForm("/preview/end", nil, admin), "/dashboard")
	assertRedirect(t, app.postForm("/leads/new", url.Values{"name": {"Acme"}}, admin), "/leads")

	if rr := app.postForm("/preview", url.Values{"role": {account.RoleViewer}}, signIn(t, account.RoleStaff)); rr.Code != http.StatusForbidden {
		t.Fatalf("staff preview status = %d, want 403", rr.Code)
	}
}

// TestDashboard tests counts and the admin-only perf section.
func TestDashboard(t *testing.T) {
	app := newTestApp(t)
	perfCollector.Record(perf.Entry{Kind: perf.KindRequest, Path: "GET /calendar", DurationMs: 3, Timestamp: fixedNow})

	rr := app.get("/dashboard", signIn(t, account.RoleAdmin))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Performance") {
		t.Fatalf("admin dashboard = %d", rr.Code)
	}
	rr = app.get("/dashboard", signIn(t, account.RoleViewer))
	if rr.Code != http.StatusOK || strings.Contains(rr.Body.String(), "Performance") {
		t.Fatalf("viewer dashboard should not show perf stats")
	}
}

// TestLogoutReleasesBoard tests that ending a session drops its calendar board.
func TestLogoutReleasesBoard(t *testing.T) {
	app := newTestApp(t)
	cookie := signIn(t, account.RoleViewer)
	if rr := app.get("/calendar", cookie); rr.Code != http.StatusOK {
		t.Fatalf("calendar = %d", rr.Code)
	}
	if boards.Len() != 1 {
		t.Fatalf("boards = %d, want 1", boards.Len())
	}
	assertRedirect(t, app.postForm("/logout", nil, cookie), "/login")
	if boards.Len() != 0 {
		t.Fatalf("boards after logout = %d, want 0", boards.Len())
	}
	if expired, idle := Sweep(); expired != 0 || idle != 0 {
		t.Fatalf("Sweep() = %d, %d, want nothing left to sweep", expired, idle)
	}
}

// TestNewMux tests the full middleware chain: CSRF on forms, JSON exemption and static files.
func TestNewMux(t *testing.T) {
	app := newTestApp(t)
	h, err := NewMux(app.stores, Config{CSRFKey: make([]byte, 32), TrustedOrigins: []string{"example.com"}})
	if err != nil {
		t.Fatalf("NewMux: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("Email=a%40b.c&Password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("form post without CSRF token = %d, want 403", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/calendar/interact", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous JSON post = %d, want 401 (not a CSRF failure)", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/calendar.js", nil))
	if rr.Code != http.StatusOK || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("static asset = %d", rr.Code)
	}

	if _, err := LoadCSRFKey("abcd", false); err == nil {
		t.Fatal("short CSRF key should be rejected")
	}
	if _, err := LoadCSRFKey("", true); err == nil {
		t.Fatal("missing CSRF key should be rejected in production")
	}
}

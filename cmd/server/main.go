package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "opsboard/internal/adapters/email"
	web "opsboard/internal/adapters/http"
	"opsboard/internal/adapters/http/perf"
	"opsboard/internal/adapters/objectstore"
	"opsboard/internal/adapters/storage"
	accountStore "opsboard/internal/adapters/storage/account"
	calendarStore "opsboard/internal/adapters/storage/calendar"
	leadStore "opsboard/internal/adapters/storage/lead"
	profileStore "opsboard/internal/adapters/storage/profile"
	projectStore "opsboard/internal/adapters/storage/project"
	"opsboard/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// sweepInterval is how often expired sessions and idle calendar boards are dropped.
const sweepInterval = 10 * time.Minute

func main() {
	production := os.Getenv("OPSBOARD_ENV") == "production"

	// WAL mode, foreign keys and busy timeout on every connection
	dbPath := envOrDefault("OPSBOARD_DB", "opsboard.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)
	defer timedDB.Close()

	raw := timedDB.RawDB()
	raw.SetMaxOpenConns(25)
	raw.SetMaxIdleConns(25)

	if err := timedDB.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(raw, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	stores := &web.Stores{
		AccountStore:       accountStore.NewSQLiteStore(timedDB),
		ProfileStore:       profileStore.NewSQLiteStore(timedDB),
		LeadStore:          leadStore.NewSQLiteStore(timedDB),
		ProjectStore:       projectStore.NewSQLiteStore(timedDB),
		CalendarEventStore: calendarStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()
	adminEmail := envOrDefault("OPSBOARD_ADMIN_EMAIL", "admin@opsboard.local")
	adminPassword := os.Getenv("OPSBOARD_ADMIN_PASSWORD")
	if adminPassword == "" {
		if production {
			log.Fatal("OPSBOARD_ADMIN_PASSWORD is required in production")
		}
		adminPassword = "change me on first login"
	}
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	if !production {
		demoDeps := orchestrators.DemoSeedDeps{
			AccountStore: stores.AccountStore,
			ProfileStore: stores.ProfileStore,
			LeadStore:    stores.LeadStore,
			ProjectStore: stores.ProjectStore,
			EventStore:   stores.CalendarEventStore,
		}
		if err := orchestrators.ExecuteSeedDemo(ctx, demoDeps); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	var sender emailPkg.Sender
	if key := os.Getenv("OPSBOARD_RESEND_KEY"); key != "" {
		sender = emailPkg.NewResendSender(key, envOrDefault("OPSBOARD_RESEND_FROM", "Opsboard <noreply@opsboard.local>"))
		slog.Info("email_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if production {
			slog.Warn("email_disabled", "hint", "set OPSBOARD_RESEND_KEY for real delivery")
		}
	}

	var resolver objectstore.Resolver = objectstore.StaticResolver{Prefix: "/objects"}
	var objectsDir string
	var imageOrigins []string
	if base := os.Getenv("OPSBOARD_STORAGE_URL"); base != "" {
		public, err := objectstore.NewPublicResolver(base)
		if err != nil {
			log.Fatalf("invalid OPSBOARD_STORAGE_URL: %v", err)
		}
		resolver = public
		imageOrigins = append(imageOrigins, public.Origin())
	} else {
		objectsDir = envOrDefault("OPSBOARD_OBJECTS_DIR", "objects")
	}

	csrfKey, err := web.LoadCSRFKey(os.Getenv("OPSBOARD_CSRF_KEY"), production)
	if err != nil {
		log.Fatalf("csrf: %v", err)
	}

	addr := envOrDefault("OPSBOARD_ADDR", ":8080")
	var trusted []string
	if v := os.Getenv("OPSBOARD_TRUSTED_ORIGINS"); v != "" {
		trusted = strings.Split(v, ",")
	}
	handler, err := web.NewMux(stores, web.Config{
		Production:     production,
		CSRFKey:        csrfKey,
		Collector:      collector,
		Sender:         sender,
		SalesInbox:     os.Getenv("OPSBOARD_SALES_INBOX"),
		Resolver:       resolver,
		ObjectsDir:     objectsDir,
		ImageOrigins:   imageOrigins,
		TrustedOrigins: trusted,
	})
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions, boards := web.Sweep()
				slog.Debug("sweep", "expired_sessions", sessions, "idle_boards", boards)
			}
		}
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Opsboard %s starting on %s (production=%t, schema=%d)", version, addr, production, storage.LatestSchemaVersion())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

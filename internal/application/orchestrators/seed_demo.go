package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"opsboard/internal/domain/account"
	"opsboard/internal/domain/calendar"
	"opsboard/internal/domain/lead"
	"opsboard/internal/domain/profile"
	"opsboard/internal/domain/project"
)

// DemoSeedDeps holds the stores filled by the development seed.
type DemoSeedDeps struct {
	AccountStore interface {
		GetByEmail(ctx context.Context, email string) (account.Account, error)
		Save(ctx context.Context, a account.Account) error
	}
	ProfileStore interface {
		Save(ctx context.Context, p profile.Profile) error
	}
	LeadStore interface {
		Save(ctx context.Context, l lead.Lead) error
		List(ctx context.Context) ([]lead.Lead, error)
	}
	ProjectStore interface {
		Save(ctx context.Context, p project.Project) error
		Count(ctx context.Context) (int, error)
	}
	EventStore interface {
		Save(ctx context.Context, e calendar.Event) error
		Count(ctx context.Context) (int, error)
	}
	Now func() time.Time
}

type demoAccount struct {
	email, password, role, name, title string
}

func demoAccounts() []demoAccount {
	return []demoAccount{
		{"staff@opsboard.test", "opsboard-staff!", account.RoleStaff, "Sam Staff", "Engineer"},
		{"viewer@opsboard.test", "opsboard-viewer!", account.RoleViewer, "Val Viewer", "Account manager"},
	}
}

// ExecuteSeedDemo fills an empty development database with one account per
// non-admin role, their profiles, a project, leads in every stage and this
// month's events. Each part is skipped when data of that kind already exists.
// PRE: database migrated; admin seeded
// POST: demo data present
func ExecuteSeedDemo(ctx context.Context, deps DemoSeedDeps) error {
	now := clock(deps.Now)

	var people []string
	for _, def := range demoAccounts() {
		if _, err := deps.AccountStore.GetByEmail(ctx, def.email); err == nil {
			continue
		}
		acct := account.Account{ID: uuid.NewString(), Email: def.email, Role: def.role, CreatedAt: now}
		if err := acct.SetPassword(def.password); err != nil {
			return fmt.Errorf("seed account %s: %w", def.email, err)
		}
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return fmt.Errorf("seed account %s: %w", def.email, err)
		}
		p := profile.Profile{ID: acct.ID, Name: def.name, Role: def.title, Email: def.email}
		if err := deps.ProfileStore.Save(ctx, p); err != nil {
			return fmt.Errorf("seed profile %s: %w", def.name, err)
		}
		people = append(people, p.ID)
		slog.Info("seed_event", "event", "demo_account_created", "email", def.email, "role", def.role)
	}

	if n, err := deps.ProjectStore.Count(ctx); err != nil {
		return err
	} else if n == 0 {
		p := project.Project{
			ID: uuid.NewString(), Name: "Customer portal", Description: "Self-service ordering for trade customers.",
			PeopleInvolved: people, CreatedAt: now,
		}
		if err := deps.ProjectStore.Save(ctx, p); err != nil {
			return fmt.Errorf("seed project: %w", err)
		}
	}

	if existing, err := deps.LeadStore.List(ctx); err != nil {
		return err
	} else if len(existing) == 0 {
		for i, stage := range append([]string{""}, lead.Stages...) {
			l := lead.Lead{
				ID:           uuid.NewString(),
				Name:         fmt.Sprintf("Demo lead %d", i+1),
				Description:  "Met at the **regional trade show**.",
				Associations: []string{"demo"},
				Stage:        stage,
				CreatedAt:    now.Add(-time.Duration(i) * 24 * time.Hour),
			}
			if err := deps.LeadStore.Save(ctx, l); err != nil {
				return fmt.Errorf("seed lead: %w", err)
			}
		}
	}

	if n, err := deps.EventStore.Count(ctx); err != nil {
		return err
	} else if n == 0 {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		events := []calendar.Event{
			{Title: "Sprint review", Type: calendar.TypeMeeting, StartDate: today},
			{Title: "Proposal due", Type: calendar.TypeDeadline, StartDate: today.AddDate(0, 0, 3)},
			{Title: "Team offsite", Type: calendar.TypeEvent, StartDate: today.AddDate(0, 0, 7), EndDate: today.AddDate(0, 0, 8)},
		}
		for _, e := range events {
			e.ID = uuid.NewString()
			e.CreatedBy = "seed"
			e.CreatedAt = now
			if err := deps.EventStore.Save(ctx, e); err != nil {
				return fmt.Errorf("seed event %q: %w", e.Title, err)
			}
		}
	}

	slog.Info("seed_event", "event", "demo_seeded")
	return nil
}

package projections

import (
	"context"
	"fmt"
	"time"

	"opsboard/internal/adapters/http/perf"
	"opsboard/internal/domain/account"
	"opsboard/internal/domain/calendar"
	"opsboard/internal/domain/lead"
)

// DashboardLeadStore defines the lead store interface needed by the dashboard.
type DashboardLeadStore interface {
	CountByStage(ctx context.Context) (map[string]int, error)
}

// DashboardProjectStore defines the project store interface needed by the dashboard.
type DashboardProjectStore interface {
	Count(ctx context.Context) (int, error)
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Role string
	Now  time.Time
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	LeadStore    DashboardLeadStore
	ProjectStore DashboardProjectStore
	EventStore   CalendarEventStore
	Perf         *perf.Collector // optional: admins see timing stats when set
}

// StageCount is one stage's lead total.
type StageCount struct {
	Label string
	Count int
}

// DashboardResult carries the dashboard page.
type DashboardResult struct {
	Role           string
	CanEdit        bool
	LeadsByStage   []StageCount
	TotalLeads     int
	Projects       int
	EventsThisWeek int
	Perf           *perf.Snapshot // admin only
}

// GetDashboard counts leads per stage, projects and the events in the coming seven days.
func GetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	result := DashboardResult{
		Role:    query.Role,
		CanEdit: query.Role == account.RoleAdmin || query.Role == account.RoleStaff,
	}

	counts, err := deps.LeadStore.CountByStage(ctx)
	if err != nil {
		return DashboardResult{}, fmt.Errorf("count leads: %w", err)
	}
	known := 0
	for _, s := range lead.Stages {
		result.LeadsByStage = append(result.LeadsByStage, StageCount{Label: lead.StageLabel(s), Count: counts[s]})
		known += counts[s]
	}
	for _, n := range counts {
		result.TotalLeads += n
	}
	if other := result.TotalLeads - known; other > 0 {
		result.LeadsByStage = append(result.LeadsByStage, StageCount{Label: lead.StageUnknown, Count: other})
	}

	if result.Projects, err = deps.ProjectStore.Count(ctx); err != nil {
		return DashboardResult{}, fmt.Errorf("count projects: %w", err)
	}

	from := query.Now.Format(calendar.DateLayout)
	to := query.Now.AddDate(0, 0, 6).Format(calendar.DateLayout)
	events, err := deps.EventStore.ListByDateRange(ctx, from, to)
	if err != nil {
		return DashboardResult{}, fmt.Errorf("list events: %w", err)
	}
	result.EventsThisWeek = len(events)

	if deps.Perf != nil && query.Role == account.RoleAdmin {
		snap := deps.Perf.Snapshot(query.Now.Add(-time.Hour), 5)
		result.Perf = &snap
	}
	return result, nil
}

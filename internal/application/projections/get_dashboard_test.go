package projections

import (
	"context"
	"testing"
	"time"

	"opsboard/internal/adapters/http/perf"
	"opsboard/internal/domain/account"
	"opsboard/internal/domain/calendar"
	"opsboard/internal/domain/lead"
	"opsboard/internal/domain/project"
)

// TestGetDashboard tests the counts shown on the dashboard.
func TestGetDashboard(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	collector := perf.NewCollector(10)
	collector.Record(perf.Entry{Kind: perf.KindRequest, Path: "GET /calendar", DurationMs: 4, Timestamp: now})
	deps := GetDashboardDeps{
		LeadStore: &mockLeadStore{leads: []lead.Lead{
			{Stage: lead.StagePossible}, {Stage: lead.StagePossible}, {Stage: lead.StageContractSigned}, {},
		}},
		ProjectStore: &mockProjectStore{projects: map[string]project.Project{"p1": {}, "p2": {}}},
		EventStore: &mockEventStore{events: []calendar.Event{
			{StartDate: day("2026-10-16")}, {StartDate: day("2026-10-22")}, {StartDate: day("2026-10-23")},
		}},
		Perf: collector,
	}

	got, err := GetDashboard(context.Background(), GetDashboardQuery{Role: account.RoleAdmin, Now: now}, deps)
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if got.TotalLeads != 4 || got.Projects != 2 || got.EventsThisWeek != 2 || !got.CanEdit {
		t.Fatalf("dashboard = %+v", got)
	}
	if len(got.LeadsByStage) != 5 || got.LeadsByStage[1].Count != 2 || got.LeadsByStage[4].Label != lead.StageUnknown {
		t.Fatalf("LeadsByStage = %+v", got.LeadsByStage)
	}
	if got.Perf == nil || len(got.Perf.SlowestPaths) != 1 {
		t.Fatalf("admin should see perf stats, got %+v", got.Perf)
	}

	viewer, err := GetDashboard(context.Background(), GetDashboardQuery{Role: account.RoleViewer, Now: now}, deps)
	if err != nil {
		t.Fatalf("GetDashboard viewer: %v", err)
	}
	if viewer.CanEdit || viewer.Perf != nil {
		t.Fatalf("viewer dashboard = %+v", viewer)
	}
}

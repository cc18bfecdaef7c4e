package web

import (
	"net/http"

	"opsboard/internal/adapters/http/middleware"
	"opsboard/internal/application/projections"
)

// handleDashboard renders links and counts for the signed-in role.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	result, err := projections.GetDashboard(r.Context(),
		projections.GetDashboardQuery{Role: sess.Role, Now: timeNow()},
		projections.GetDashboardDeps{
			LeadStore:    stores.LeadStore,
			ProjectStore: stores.ProjectStore,
			EventStore:   stores.CalendarEventStore,
			Perf:         perfCollector,
		})
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "dashboard.html", result)
}

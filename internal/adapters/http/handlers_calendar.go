package web

import (
	"fmt"
	"net/http"
	"strconv"

	"opsboard/internal/adapters/http/middleware"
	"opsboard/internal/application/orchestrators"
	"opsboard/internal/application/projections"
	"opsboard/internal/domain/calendar"
)

// calendarPage is the template data for the year page.
type calendarPage struct {
	projections.CalendarYearResult
	Focus int // month index the page scrolls to
}

// handleCalendar renders the session's board. The open popover, if any,
// is rendered server-side.
func handleCalendar(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	now := timeNow()

	var (
		result projections.CalendarYearResult
		err    error
	)
	boards.With(sess.Token, func(b *calendar.Board) {
		result, err = projections.GetCalendarYear(r.Context(), b, now, projections.GetCalendarYearDeps{
			EventStore: stores.CalendarEventStore,
		})
	})
	if err != nil {
		internalError(w, err)
		return
	}

	focus := int(now.Month()) - 1
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil {
		if _, ok := calendar.DescribeMonth(m); ok {
			focus = m
		}
	}
	renderTemplate(w, r, "calendar.html", calendarPage{CalendarYearResult: result, Focus: focus})
}

// openDay is the popover state read back after an interaction.
type openDay struct {
	ID         calendar.DayIdentity
	Month, Day int
}

// interaction applies one physical input to the session's board and reports
// which day, if any, is open afterwards.
func interaction(sess middleware.Session, t calendar.Target) (open openDay, ok bool) {
	boards.With(sess.Token, func(b *calendar.Board) {
		b.Interact(t)
		d, found := b.Open()
		if !found {
			return
		}
		open.ID = d.ID()
		open.Month, open.Day, ok = d.Popover()
	})
	return open, ok
}

// handleCalendarInteract handles the form post of a day button (target set,
// activate=1) or of a click outside every day (target empty).
func handleCalendarInteract(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	interaction(sess, calendar.Target{
		Day:      calendar.DayIdentity(r.FormValue("target")),
		Activate: r.FormValue("activate") == "1",
	})

	dest := "/calendar"
	if m, err := strconv.Atoi(r.FormValue("month")); err == nil {
		if _, ok := calendar.DescribeMonth(m); ok {
			dest = fmt.Sprintf("/calendar?month=%d#month-%d", m, m)
		}
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

type interactRequest struct {
	Target   string `json:"target"`
	Activate bool   `json:"activate"`
}

type interactResponse struct {
	Open   bool           `json:"open"`
	DayID  string         `json:"day_id,omitempty"`
	Month  int            `json:"month"`
	Day    int            `json:"day"`
	Events []eventPayload `json:"events,omitempty"`
}

// handleCalendarInteractAPI is the JSON form of handleCalendarInteract.
// The response carries the popover's (month, day) and events while a day is open.
func handleCalendarInteractAPI(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	var req interactRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	open, ok := interaction(sess, calendar.Target{Day: calendar.DayIdentity(req.Target), Activate: req.Activate})

	resp := interactResponse{Month: -1, Day: -1}
	if ok {
		resp = interactResponse{Open: true, DayID: string(open.ID), Month: open.Month, Day: open.Day}
		events, err := projections.GetDayEvents(r.Context(), open.Month, open.Day, projections.GetDayEventsDeps{
			EventStore: stores.CalendarEventStore,
			Now:        timeNow,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		for _, e := range events {
			resp.Events = append(resp.Events, toEventPayload(e))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type eventPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
}

func toEventPayload(e calendar.Event) eventPayload {
	p := eventPayload{
		ID:          e.ID,
		Title:       e.Title,
		Type:        e.Type,
		Description: e.Description,
		Location:    e.Location,
		StartDate:   e.StartDate.Format(calendar.DateLayout),
	}
	if !e.EndDate.IsZero() {
		p.EndDate = e.EndDate.Format(calendar.DateLayout)
	}
	return p
}

// handleListEvents handles GET /api/calendar/events?from=YYYY-MM-DD&to=YYYY-MM-DD.
// Both bounds default to the current year.
func handleListEvents(w http.ResponseWriter, r *http.Request) {
	year := timeNow().Year()
	from := r.URL.Query().Get("from")
	if from == "" {
		from = fmt.Sprintf("%04d-01-01", year)
	}
	to := r.URL.Query().Get("to")
	if to == "" {
		to = fmt.Sprintf("%04d-12-31", year)
	}
	events, err := stores.CalendarEventStore.ListByDateRange(r.Context(), from, to)
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]eventPayload, 0, len(events))
	for _, e := range events {
		out = append(out, toEventPayload(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateEvent handles POST /api/calendar/events.
func handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	var req struct {
		Title       string `json:"title"`
		Type        string `json:"type"`
		Description string `json:"description"`
		Location    string `json:"location"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	e, err := orchestrators.ExecuteCreateEvent(r.Context(), orchestrators.CreateEventInput{
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   sess.AccountID,
	}, orchestrators.CreateEventDeps{EventStore: stores.CalendarEventStore, GenerateID: generateID, Now: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventPayload(e))
}

// handleDeleteEvent handles DELETE /api/calendar/events with body {"id": "..."}.
func handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := strictDecode(r, &req); err != nil || req.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteDeleteEvent(r.Context(), req.ID, orchestrators.DeleteEventDeps{
		EventStore: stores.CalendarEventStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCalendarExport serves the current year as an iCalendar file.
func handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	body, err := projections.ExportCalendar(r.Context(), projections.ExportCalendarDeps{
		EventStore: stores.CalendarEventStore,
		Now:        timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="opsboard.ics"`)
	w.Write(body)
}

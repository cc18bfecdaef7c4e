package projections

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

)

// ExportCalendarDeps holds dependencies for the iCalendar export.
type ExportCalendarDeps struct {
	EventStore CalendarEventStore
	Now        func() time.Time
}

// ExportCalendar encodes the current year's events as an iCalendar document.
// Events are all-day; multi-day events use an exclusive DTEND as RFC 5545 requires.
func ExportCalendar(ctx context.Context, deps ExportCalendarDeps) ([]byte, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	year := now.Year()
	events, err := deps.EventStore.ListByDateRange(ctx,
		fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//opsboard//calendar//EN")
	cal.Props.SetText("X-WR-CALNAME", fmt.Sprintf("Operations %d", year))

	for _, e := range events {
		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, e.ID+"@opsboard")
		ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
		ev.Props.SetText(ical.PropSummary, e.Title)
		ev.Props.SetText(ical.PropCategories, e.Type)
		if e.Description != "" {
			ev.Props.SetText(ical.PropDescription, e.Description)
		}
		if e.Location != "" {
			ev.Props.SetText(ical.PropLocation, e.Location)
		}
		ev.Props.SetDate(ical.PropDateTimeStart, e.StartDate)
		end := e.StartDate
		if !e.EndDate.IsZero() {
			end = e.EndDate
		}
		ev.Props.SetDate(ical.PropDateTimeEnd, end.AddDate(0, 0, 1))
		cal.Children = append(cal.Children, ev.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

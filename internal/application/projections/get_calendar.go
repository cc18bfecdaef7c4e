package projections

import (
	"context"
	"fmt"
	"time"

	"opsboard/internal/domain/calendar"
)

// CalendarEventStore defines the event store interface needed by the calendar projections.
type CalendarEventStore interface {
	ListByDateRange(ctx context.Context, from, to string) ([]calendar.Event, error)
}

// DayCell is one day control on the year page.
type DayCell struct {
	ID        calendar.DayIdentity
	Day       int
	Today     bool
	Open      bool
	HasEvents bool
}

// MonthPanel is one month block on the year page.
type MonthPanel struct {
	Index int
	Name  string
	Days  []DayCell
}

// PopoverView is the open day's event popover.
type PopoverView struct {
	DayID     calendar.DayIdentity
	MonthName string
	Day       int
	Date      string // empty when (month, day) is not a real date this year
	Events    []calendar.Event
}

// CalendarYearResult carries the year page.
type CalendarYearResult struct {
	Year    int
	Months  []MonthPanel
	Popover *PopoverView // nil while every day is closed
}

// GetCalendarYearDeps holds dependencies for the year page.
type GetCalendarYearDeps struct {
	EventStore CalendarEventStore
}

// GetCalendarYear renders every month of board and builds the year page.
// The popover is filled only for the open day.
// PRE: caller holds exclusive access to board
// POST: board has a fresh render pass for every month
func GetCalendarYear(ctx context.Context, board *calendar.Board, now time.Time, deps GetCalendarYearDeps) (CalendarYearResult, error) {
	year := now.Year()
	events, err := deps.EventStore.ListByDateRange(ctx,
		fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
	if err != nil {
		return CalendarYearResult{}, err
	}

	result := CalendarYearResult{Year: year}
	for _, v := range board.Months() {
		desc := v.Descriptor()
		mv := MonthPanel{Index: desc.Index, Name: desc.DisplayName, Days: make([]DayCell, 0, desc.DayCount)}
		for d := range v.Render() {
			day := DayCell{ID: d.ID(), Day: d.Day(), Today: d.IsToday(now), Open: d.IsOpen()}
			if date, ok := CalendarDate(year, d.Month(), d.Day()); ok {
				day.HasEvents = len(eventsOn(events, date)) > 0
			}
			mv.Days = append(mv.Days, day)

			if month, dayIdx, open := d.Popover(); open {
				result.Popover = &PopoverView{DayID: d.ID(), MonthName: desc.DisplayName, Day: dayIdx}
				if date, ok := CalendarDate(year, month, dayIdx); ok {
					result.Popover.Date = date.Format(calendar.DateLayout)
					result.Popover.Events = eventsOn(events, date)
				}
			}
		}
		result.Months = append(result.Months, mv)
	}
	return result, nil
}

// GetDayEventsDeps holds dependencies for GetDayEvents.
type GetDayEventsDeps struct {
	EventStore CalendarEventStore
	Now        func() time.Time
}

// GetDayEvents lists the events for a (month index, day) pair of the current year,
// as the event popover shows them. Pairs that are not a real date yield no events.
func GetDayEvents(ctx context.Context, month, day int, deps GetDayEventsDeps) ([]calendar.Event, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	date, ok := CalendarDate(now.Year(), month, day)
	if !ok {
		return nil, nil
	}
	key := date.Format(calendar.DateLayout)
	events, err := deps.EventStore.ListByDateRange(ctx, key, key)
	if err != nil {
		return nil, err
	}
	return eventsOn(events, date), nil
}

// CalendarDate converts a month index and day number into a date.
// ok is false for day 0 and for days past the end of the month (the day
// controls include both).
func CalendarDate(year, month, day int) (time.Time, bool) {
	if month < 0 || month > 11 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != month+1 || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func eventsOn(events []calendar.Event, date time.Time) []calendar.Event {
	var out []calendar.Event
	for _, e := range events {
		if e.Covers(date) {
			out = append(out, e)
		}
	}
	return out
}

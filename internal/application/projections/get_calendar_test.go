package projections

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"opsboard/internal/domain/calendar"
)

func testBoard() *calendar.Board {
	n := 0
	return calendar.NewBoard(func() string {
		n++
		return fmt.Sprintf("m%d", n)
	})
}

// TestGetCalendarYear tests month layout, today flags and the popover.
func TestGetCalendarYear(t *testing.T) {
	now := time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC)
	store := &mockEventStore{events: []calendar.Event{
		{ID: "e1", Title: "Launch", Type: calendar.TypeEvent, StartDate: day("2026-06-10")},
		{ID: "e2", Title: "Offsite", Type: calendar.TypeEvent, StartDate: day("2026-06-09"), EndDate: day("2026-06-11")},
		{ID: "e3", Title: "Audit", Type: calendar.TypeDeadline, StartDate: day("2026-09-01")},
	}}
	board := testBoard()
	deps := GetCalendarYearDeps{EventStore: store}
	ctx := context.Background()

	year, err := GetCalendarYear(ctx, board, now, deps)
	if err != nil {
		t.Fatalf("GetCalendarYear: %v", err)
	}
	if year.Year != 2026 || len(year.Months) != 12 || year.Popover != nil {
		t.Fatalf("year = %d, months = %d, popover = %v", year.Year, len(year.Months), year.Popover)
	}
	june := year.Months[5]
	if june.Name != "June" || len(june.Days) != 31 {
		t.Fatalf("june = %s with %d days", june.Name, len(june.Days))
	}
	today := 0
	for _, m := range year.Months {
		for _, d := range m.Days {
			if d.Today {
				today++
			}
		}
	}
	if today != 1 || !june.Days[10].Today {
		t.Fatalf("expected exactly June 10 to be today, got %d today cells", today)
	}
	if !june.Days[9].HasEvents || !june.Days[11].HasEvents || june.Days[12].HasEvents || !year.Months[8].Days[1].HasEvents {
		t.Fatal("HasEvents flags do not match the stored events")
	}

	board.Interact(calendar.Target{Day: june.Days[10].ID, Activate: true})
	year, err = GetCalendarYear(ctx, board, now, deps)
	if err != nil {
		t.Fatalf("GetCalendarYear: %v", err)
	}
	if year.Popover == nil || year.Popover.Date != "2026-06-10" || year.Popover.MonthName != "June" {
		t.Fatalf("popover = %+v", year.Popover)
	}
	var titles []string
	for _, e := range year.Popover.Events {
		titles = append(titles, e.Title)
	}
	if strings.Join(titles, ",") != "Launch,Offsite" {
		t.Fatalf("popover events = %v", titles)
	}
	if !year.Months[5].Days[10].Open {
		t.Fatal("the open day should be flagged")
	}
	if board.Interactions().Active() != 1 {
		t.Fatalf("re-render should keep exactly one listener, got %d", board.Interactions().Active())
	}
}

// TestGetCalendarYear_ImpossibleDate tests the popover for the table's extra days.
func TestGetCalendarYear_ImpossibleDate(t *testing.T) {
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	board := testBoard()
	deps := GetCalendarYearDeps{EventStore: &mockEventStore{}}
	year, _ := GetCalendarYear(context.Background(), board, now, deps)

	board.Interact(calendar.Target{Day: year.Months[0].Days[0].ID, Activate: true})
	year, err := GetCalendarYear(context.Background(), board, now, deps)
	if err != nil {
		t.Fatalf("GetCalendarYear: %v", err)
	}
	if year.Popover == nil || year.Popover.Day != 0 || year.Popover.Date != "" || len(year.Popover.Events) != 0 {
		t.Fatalf("popover = %+v", year.Popover)
	}
}

// TestCalendarDate tests conversion of (month index, day) pairs.
func TestCalendarDate(t *testing.T) {
	tests := []struct {
		year, month, day int
		want             string
	}{
		{2026, 0, 31, "2026-01-31"},
		{2026, 1, 28, "2026-02-28"},
		{2026, 1, 29, ""},
		{2028, 1, 29, "2028-02-29"},
		{2026, 3, 30, "2026-04-30"},
		{2026, 3, 31, ""},
		{2026, 0, 0, ""},
		{2026, 12, 1, ""},
		{2026, -1, 1, ""},
	}
	for _, tc := range tests {
		got, ok := CalendarDate(tc.year, tc.month, tc.day)
		var s string
		if ok {
			s = got.Format(calendar.DateLayout)
		}
		if s != tc.want {
			t.Errorf("CalendarDate(%d, %d, %d) = %q, want %q", tc.year, tc.month, tc.day, s, tc.want)
		}
	}
}

// TestGetDayEvents tests the popover query for a single day.
func TestGetDayEvents(t *testing.T) {
	store := &mockEventStore{events: []calendar.Event{
		{ID: "e1", Title: "Review", Type: calendar.TypeMeeting, StartDate: day("2026-03-04")},
	}}
	deps := GetDayEventsDeps{EventStore: store, Now: func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }}

	got, err := GetDayEvents(context.Background(), 2, 4, deps)
	if err != nil || len(got) != 1 {
		t.Fatalf("GetDayEvents = %v, %v", got, err)
	}
	calls := store.calls
	got, err = GetDayEvents(context.Background(), 1, 30, deps)
	if err != nil || got != nil {
		t.Fatalf("impossible date: %v, %v", got, err)
	}
	if store.calls != calls {
		t.Fatal("impossible dates should not query the store")
	}
}

package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"opsboard/internal/adapters/storage"
	domain "opsboard/internal/domain/calendar"
)

const eventColumns = `id, title, type, description, location, start_date, end_date, created_by, created_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db is a valid, open database connection with migrations applied
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts or updates a calendar event.
// PRE: e has been validated
// POST: event is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	endDate := ""
	if !e.EndDate.IsZero() {
		endDate = e.EndDate.Format(domain.DateLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calendar_event (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, type=excluded.type, description=excluded.description,
		   location=excluded.location, start_date=excluded.start_date, end_date=excluded.end_date`,
		e.ID, e.Title, e.Type, e.Description, e.Location,
		e.StartDate.Format(domain.DateLayout), endDate,
		e.CreatedBy, e.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetByID retrieves a calendar event.
// POST: returns ErrNotFound when no row matches
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM calendar_event WHERE id = ?`, id)
	e, err := scanEvent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// ListByDateRange returns events overlapping [from, to].
// PRE: from and to use domain.DateLayout
// POST: events are sorted by start date, then title
func (s *SQLiteStore) ListByDateRange(ctx context.Context, from, to string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM calendar_event
		 WHERE start_date <= ? AND (end_date >= ? OR (end_date = '' AND start_date >= ?))
		 ORDER BY start_date ASC, title ASC`, to, from, from,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Delete removes a calendar event.
// POST: returns ErrNotFound when no row matched
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM calendar_event WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Count returns the number of stored events.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM calendar_event`).Scan(&n)
	return n, err
}

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var e domain.Event
	var start, end, created string
	if err := scan(&e.ID, &e.Title, &e.Type, &e.Description, &e.Location,
		&start, &end, &e.CreatedBy, &created); err != nil {
		return domain.Event{}, err
	}
	e.StartDate = parseDate(start)
	e.EndDate = parseDate(end)
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return e, nil
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

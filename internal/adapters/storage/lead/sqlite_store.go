package lead

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"opsboard/internal/adapters/storage"
	domain "opsboard/internal/domain/lead"
)

const leadColumns = `id, name, description, preview_image_path, associations, stage, created_at`

// SQLiteStore implements Store using SQLite.
// Associations are stored as a JSON array in a single column.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a lead.
// POST: returns ErrNotFound when no row matches
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM lead WHERE id = ?`, id)
	l, err := scanLead(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lead{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l, err
}

// Save inserts or updates a lead.
// PRE: l has been validated
func (s *SQLiteStore) Save(ctx context.Context, l domain.Lead) error {
	assoc, err := json.Marshal(nonNil(l.Associations))
	if err != nil {
		return fmt.Errorf("encode associations: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lead (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description,
		   preview_image_path=excluded.preview_image_path,
		   associations=excluded.associations, stage=excluded.stage`,
		l.ID, l.Name, l.Description, l.PreviewImagePath, string(assoc), l.Stage,
		l.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// UpdateStage moves a lead to another board column.
// PRE: stage is valid or empty
// POST: returns ErrNotFound when no row matched
func (s *SQLiteStore) UpdateStage(ctx context.Context, id, stage string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE lead SET stage = ? WHERE id = ?`, stage, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns every lead, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+leadColumns+` FROM lead ORDER BY created_at DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows.Scan)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// CountByStage returns the number of leads per stage. Untriaged leads count under "".
func (s *SQLiteStore) CountByStage(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stage, COUNT(*) FROM lead GROUP BY stage`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var stage string
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}

func scanLead(scan func(dest ...any) error) (domain.Lead, error) {
	var l domain.Lead
	var assoc, created string
	if err := scan(&l.ID, &l.Name, &l.Description, &l.PreviewImagePath, &assoc, &l.Stage, &created); err != nil {
		return domain.Lead{}, err
	}
	if assoc != "" {
		if err := json.Unmarshal([]byte(assoc), &l.Associations); err != nil {
			return domain.Lead{}, fmt.Errorf("decode associations for lead %s: %w", l.ID, err)
		}
	}
	if len(l.Associations) == 0 {
		l.Associations = nil
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return l, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

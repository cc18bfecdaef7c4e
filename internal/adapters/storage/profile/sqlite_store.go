package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"opsboard/internal/adapters/storage"
	domain "opsboard/internal/domain/profile"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a profile.
// POST: returns ErrNotFound when no row matches
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	var p domain.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, email, picture_path FROM profile WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Role, &p.Email, &p.PicturePath)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// GetByIDs returns the profiles whose IDs are listed, ordered by name.
// Unknown IDs are skipped.
func (s *SQLiteStore) GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT id, name, role, email, picture_path FROM profile WHERE id IN (` +
		strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + `) ORDER BY name ASC`
	return s.query(ctx, query, args...)
}

// Save inserts or updates a profile.
// PRE: p has been validated
func (s *SQLiteStore) Save(ctx context.Context, p domain.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile (id, name, role, email, picture_path) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, role=excluded.role, email=excluded.email, picture_path=excluded.picture_path`,
		p.ID, p.Name, p.Role, p.Email, p.PicturePath,
	)
	return err
}

// List returns every profile ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Profile, error) {
	return s.query(ctx, `SELECT id, name, role, email, picture_path FROM profile ORDER BY name ASC`)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Role, &p.Email, &p.PicturePath); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

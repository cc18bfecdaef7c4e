package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"opsboard/internal/adapters/storage"
	domain "opsboard/internal/domain/project"
)

// SQLiteStore implements Store using SQLite.
// Project membership lives in project_person; feature staff lists are JSON columns.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a project with its people.
// POST: returns ErrNotFound when no row matches
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM project WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.Project{}, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	p.PeopleInvolved, err = s.people(ctx, id)
	return p, err
}

// Save inserts or updates a project and replaces its people.
// PRE: p has been validated; every person is a stored profile
func (s *SQLiteStore) Save(ctx context.Context, p domain.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO project (id, name, description, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, description=excluded.description`,
		p.ID, p.Name, p.Description, p.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_person WHERE project_id = ?`, p.ID); err != nil {
		return err
	}
	for _, person := range p.PeopleInvolved {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_person (project_id, profile_id) VALUES (?, ?)`, p.ID, person,
		); err != nil {
			return fmt.Errorf("add %s to project: %w", person, err)
		}
	}
	return tx.Commit()
}

// List returns every project ordered by name. People are loaded for each.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM project ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		var created string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &created); err != nil {
			rows.Close()
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		projects = append(projects, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].PeopleInvolved, err = s.people(ctx, projects[i].ID); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// Count returns the number of projects.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM project`).Scan(&n)
	return n, err
}

// CreateMajorFeature stores a major feature and its minor features atomically.
// PRE: f and every minor feature have been validated
// POST: either all rows are written or none are
func (s *SQLiteStore) CreateMajorFeature(ctx context.Context, f domain.MajorFeature, minors []domain.MinorFeature) error {
	people, err := encodeIDs(f.PeopleInvolved)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO major_feature (id, project_id, name, description, objective, people_involved, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ProjectID, f.Name, f.Description, f.Objective, people,
		f.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert major feature: %w", err)
	}
	for _, m := range minors {
		staff, err := encodeIDs(m.StaffInvolved)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO minor_feature (id, major_feature_id, name, description, staff_involved)
			 VALUES (?, ?, ?, ?, ?)`,
			m.ID, f.ID, m.Name, m.Description, staff,
		); err != nil {
			return fmt.Errorf("insert minor feature %q: %w", m.Name, err)
		}
	}
	return tx.Commit()
}

// ListMajorFeatures returns a project's major features, oldest first.
func (s *SQLiteStore) ListMajorFeatures(ctx context.Context, projectID string) ([]domain.MajorFeature, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, description, objective, people_involved, created_at
		 FROM major_feature WHERE project_id = ? ORDER BY created_at ASC, name ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MajorFeature
	for rows.Next() {
		var f domain.MajorFeature
		var people, created string
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Description, &f.Objective, &people, &created); err != nil {
			return nil, err
		}
		if f.PeopleInvolved, err = decodeIDs(people); err != nil {
			return nil, err
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListMinorFeatures returns the minor features of one major feature in insertion order.
func (s *SQLiteStore) ListMinorFeatures(ctx context.Context, majorFeatureID string) ([]domain.MinorFeature, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, major_feature_id, name, description, staff_involved
		 FROM minor_feature WHERE major_feature_id = ? ORDER BY rowid ASC`, majorFeatureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MinorFeature
	for rows.Next() {
		var m domain.MinorFeature
		var staff string
		if err := rows.Scan(&m.ID, &m.MajorFeatureID, &m.Name, &m.Description, &staff); err != nil {
			return nil, err
		}
		if m.StaffInvolved, err = decodeIDs(staff); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) people(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile_id FROM project_person WHERE project_id = ? ORDER BY rowid ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode profile ids: %w", err)
	}
	return string(b), nil
}

func decodeIDs(s string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("decode profile ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

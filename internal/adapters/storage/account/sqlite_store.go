package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsboard/internal/adapters/storage"
	domain "opsboard/internal/domain/account"
)

const accountColumns = `id, email, password_hash, role, created_at, failed_logins, locked_until, password_change_required`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an account.
// POST: returns ErrNotFound when no row matches
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return s.getOne(ctx, `SELECT `+accountColumns+` FROM account WHERE id = ?`, id)
}

// GetByEmail retrieves an account by login email, ignoring case.
// POST: returns ErrNotFound when no row matches
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return s.getOne(ctx, `SELECT `+accountColumns+` FROM account WHERE email = ?`, normalizeEmail(email))
}

// Save inserts or updates an account. Emails are stored lower-cased.
// PRE: a has been validated
func (s *SQLiteStore) Save(ctx context.Context, a domain.Account) error {
	var lockedUntil any
	if !a.LockedUntil.IsZero() {
		lockedUntil = a.LockedUntil.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, password_hash=excluded.password_hash, role=excluded.role,
		   failed_logins=excluded.failed_logins, locked_until=excluded.locked_until,
		   password_change_required=excluded.password_change_required`,
		a.ID, normalizeEmail(a.Email), a.PasswordHash, a.Role,
		a.CreatedAt.UTC().Format(time.RFC3339Nano),
		a.FailedLogins, lockedUntil, a.PasswordChangeRequired,
	)
	return err
}

// Count returns the number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) getOne(ctx context.Context, query, arg string) (domain.Account, error) {
	var a domain.Account
	var created string
	var lockedUntil sql.NullString
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Role, &created,
		&a.FailedLogins, &lockedUntil, &a.PasswordChangeRequired,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("%w: %s", ErrNotFound, arg)
	}
	if err != nil {
		return domain.Account{}, err
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if lockedUntil.Valid && lockedUntil.String != "" {
		a.LockedUntil, _ = time.Parse(time.RFC3339Nano, lockedUntil.String)
	}
	return a, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

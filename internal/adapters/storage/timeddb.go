package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"opsboard/internal/adapters/http/perf"
)

// SQLDB is the database interface every store is built on.
// *sql.DB and *TimedDB both satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQueryMs is the slow query threshold used when OPSBOARD_SLOW_QUERY_MS is unset.
const DefaultSlowQueryMs = 50

var slowQueryThreshold = sync.OnceValue(func() float64 {
	if v := os.Getenv("OPSBOARD_SLOW_QUERY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return float64(n)
		}
	}
	return DefaultSlowQueryMs
})

// TimedDB wraps a *sql.DB, logging slow statements and recording every
// statement's duration to a perf collector under a "VERB table" label.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold float64
}

// NewTimedDB wraps db. collector may be nil.
// PRE: db is a valid database connection
// POST: statements run through the wrapper are timed
func NewTimedDB(db *sql.DB, collector *perf.Collector) *TimedDB {
	return &TimedDB{db: db, collector: collector, threshold: slowQueryThreshold()}
}

// RawDB returns the wrapped connection for migrations and pool tuning.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Close closes the wrapped connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Ping verifies the wrapped connection.
func (t *TimedDB) Ping() error {
	return t.db.Ping()
}

// ExecContext runs a statement and records its duration.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer t.observe(StatementLabel(query), time.Now())
	return t.db.ExecContext(ctx, query, args...)
}

// QueryContext runs a query and records its duration.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer t.observe(StatementLabel(query), time.Now())
	return t.db.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query and records its duration.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer t.observe(StatementLabel(query), time.Now())
	return t.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction and records how long acquiring it took.
// Statements run on the returned *sql.Tx are not timed.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	defer t.observe("BEGIN", time.Now())
	return t.db.BeginTx(ctx, opts)
}

func (t *TimedDB) observe(label string, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	if durationMs >= t.threshold {
		slog.Warn("slow_query", "statement", label, "duration_ms", durationMs)
	} else {
		slog.Debug("query", "statement", label, "duration_ms", durationMs)
	}
	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// StatementLabel reduces a SQL statement to its verb and primary table,
// e.g. "SELECT lead" or "INSERT calendar_event". Arguments never appear in the label.
func StatementLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "EMPTY"
	}
	verb := strings.ToUpper(fields[0])
	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return verb + " " + cleanTable(fields[1])
		}
		return verb
	default:
		return verb
	}
	for i, f := range fields {
		if strings.EqualFold(f, marker) && i+1 < len(fields) {
			return verb + " " + cleanTable(fields[i+1])
		}
	}
	return verb
}

func cleanTable(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, "`\";,")
}

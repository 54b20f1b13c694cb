package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"
	"time"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
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

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// QueryStats is a snapshot of TimedDB counters.
type QueryStats struct {
	Queries     int64 `json:"queries"`
	SlowQueries int64 `json:"slow_queries"`
}

// TimedDB wraps a *sql.DB and logs slow statements.
type TimedDB struct {
	db        *sql.DB
	threshold time.Duration
	queries   atomic.Int64
	slow      atomic.Int64
}

// NewTimedDB wraps db. A non-positive threshold selects DefaultSlowQuery.
// PRE: db is a valid database connection
// POST: Returns a TimedDB that logs statements slower than threshold at WARN
func NewTimedDB(db *sql.DB, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, threshold: threshold}
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Stats returns the statement counters recorded so far.
func (t *TimedDB) Stats() QueryStats {
	return QueryStats{Queries: t.queries.Load(), SlowQueries: t.slow.Load()}
}

func (t *TimedDB) observe(op, query string, start time.Time) {
	elapsed := time.Since(start)
	t.queries.Add(1)
	if elapsed >= t.threshold {
		t.slow.Add(1)
		slog.Warn("slow_query", "op", op, "query", query, "duration_ms", elapsed.Milliseconds())
		return
	}
	slog.Debug("query", "op", op, "duration_ms", float64(elapsed.Microseconds())/1000.0)
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe("exec", query, start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe("query", query, start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe("query_row", query, start)
	return row
}

// BeginTx wraps sql.DB.BeginTx with timing. Statements inside the tx are not timed.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("begin", "BEGIN", start)
	return tx, err
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

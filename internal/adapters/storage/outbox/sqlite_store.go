package outbox

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/outbox"
)

const selectEntry = `SELECT id, category, payload, status, attempts, max_attempts, last_attempted_at, next_attempt_at, created_at, message_id, error_message FROM mail_outbox`

// SQLiteStore implements the outbox Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an outbox entry by its ID.
// PRE: id is non-empty
// POST: Returns the entry or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntry+` WHERE id = ?`, id)
	if err != nil {
		return domain.Entry{}, err
	}
	defer rows.Close()
	entries, err := scanEntries(rows)
	if err != nil {
		return domain.Entry{}, err
	}
	if len(entries) == 0 {
		return domain.Entry{}, storage.ErrNotFound
	}
	return entries[0], nil
}

// Save persists an outbox entry to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mail_outbox (id, category, payload, status, attempts, max_attempts, last_attempted_at, next_attempt_at, created_at, message_id, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   last_attempted_at=excluded.last_attempted_at, next_attempt_at=excluded.next_attempt_at,
		   message_id=excluded.message_id, error_message=excluded.error_message`,
		e.ID, e.Category, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		storage.NullTime(e.LastAttemptedAt), storage.FormatTime(e.NextAttemptAt), storage.FormatTime(e.CreatedAt),
		e.MessageID, e.ErrorMessage)
	return err
}

// ListDue returns pending entries ready for another attempt.
// PRE: limit > 0
// POST: Returns up to limit entries ordered by next_attempt_at
func (s *SQLiteStore) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		selectEntry+` WHERE status = ? AND next_attempt_at <= ? ORDER BY next_attempt_at, id LIMIT ?`,
		domain.StatusPending, storage.FormatTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListByStatus returns entries for the admin queue view.
// PRE: limit > 0
// POST: Returns up to limit entries ordered by created_at desc
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.QueryContext(ctx, selectEntry+` ORDER BY created_at DESC, id LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, selectEntry+` WHERE status = ? ORDER BY created_at DESC, id LIMIT ?`, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// scanEntries scans multiple rows into a slice of Entries.
func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	entries := []domain.Entry{}
	for rows.Next() {
		var e domain.Entry
		var lastAttemptedAt sql.NullString
		var nextAttemptAt, createdAt string
		err := rows.Scan(&e.ID, &e.Category, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
			&lastAttemptedAt, &nextAttemptAt, &createdAt, &e.MessageID, &e.ErrorMessage)
		if err != nil {
			return nil, err
		}
		e.LastAttemptedAt = storage.ParseNullTime(lastAttemptedAt)
		if e.NextAttemptAt, err = storage.ParseTime(nextAttemptAt); err != nil {
			return nil, errors.Join(err, errors.New("mail_outbox.next_attempt_at"))
		}
		e.CreatedAt, _ = storage.ParseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/session"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save inserts a freshly issued session.
// PRE: value.Token is unique
func (s *SQLiteStore) Save(ctx context.Context, value domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_session (token, account_id, email, issued_at, expires_at, revoked_at) VALUES (?, ?, ?, ?, ?, ?)`,
		value.Token,
		value.AccountID,
		value.Email,
		storage.FormatTime(value.IssuedAt),
		storage.FormatTime(value.ExpiresAt),
		storage.NullTime(value.RevokedAt),
	)
	return err
}

// Get returns the session for token, active or not.
// POST: Returns storage.ErrNotFound for unknown tokens
func (s *SQLiteStore) Get(ctx context.Context, token string) (domain.Session, error) {
	var sess domain.Session
	var issued, expires string
	var revoked sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT token, account_id, email, issued_at, expires_at, revoked_at FROM admin_session WHERE token = ?`, token,
	).Scan(&sess.Token, &sess.AccountID, &sess.Email, &issued, &expires, &revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("session: %w", storage.ErrNotFound)
	}
	if err != nil {
		return domain.Session{}, err
	}
	sess.IssuedAt, _ = storage.ParseTime(issued)
	sess.ExpiresAt, _ = storage.ParseTime(expires)
	sess.RevokedAt = storage.ParseNullTime(revoked)
	return sess, nil
}

// Revoke marks one session as revoked. Unknown or already revoked tokens are not an error.
func (s *SQLiteStore) Revoke(ctx context.Context, token string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE admin_session SET revoked_at = ? WHERE token = ? AND revoked_at IS NULL`,
		storage.FormatTime(at), token)
	return err
}

// RevokeAccount revokes every live session of an account.
func (s *SQLiteStore) RevokeAccount(ctx context.Context, accountID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE admin_session SET revoked_at = ? WHERE account_id = ? AND revoked_at IS NULL`,
		storage.FormatTime(at), accountID)
	return err
}

// DeleteExpired purges sessions past expiry or revoked before now.
// POST: Returns the number of rows removed
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ts := storage.FormatTime(now)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM admin_session WHERE expires_at <= ? OR (revoked_at IS NOT NULL AND revoked_at <= ?)`, ts, ts)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/admin"
)

const selectColumns = "SELECT id, email, name, question, answer_hash, pin_hash, role, permissions, created_at, failed_verifies, locked_until FROM admin_account"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new admin account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return notFound(scanAccount(row.Scan))
}

// GetByEmail retrieves an Account by email, ignoring case.
// PRE: email is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE email = ?", domain.NormalizeEmail(email))
	return notFound(scanAccount(row.Scan))
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	fields := []string{"id", "email", "name", "question", "answer_hash", "pin_hash", "role", "permissions", "created_at", "failed_verifies", "locked_until"}
	placeholders := strings.Repeat("?, ", len(fields)-1) + "?"
	updates := []string{
		"email=excluded.email",
		"name=excluded.name",
		"question=excluded.question",
		"answer_hash=excluded.answer_hash",
		"pin_hash=excluded.pin_hash",
		"role=excluded.role",
		"permissions=excluded.permissions",
		"failed_verifies=excluded.failed_verifies",
		"locked_until=excluded.locked_until",
	}
	query := fmt.Sprintf(
		"INSERT INTO admin_account (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		placeholders,
		strings.Join(updates, ", "),
	)

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		domain.NormalizeEmail(entity.Email),
		entity.Name,
		entity.Question,
		entity.AnswerHash,
		entity.PINHash,
		entity.Role,
		domain.JoinPermissions(entity.Permissions),
		storage.FormatTime(entity.CreatedAt),
		entity.FailedVerifies,
		storage.NullTime(entity.LockedUntil),
	)
	return err
}

// RecordFailedVerify counts one failed verify in a single statement, so concurrent
// failures each count. At threshold the counter restarts and a lock begins, as in
// Account.RecordFailedVerify.
// PRE: threshold >= 1
// POST: Returns the stored counter and lock end, or storage.ErrNotFound
func (s *SQLiteStore) RecordFailedVerify(ctx context.Context, id string, now time.Time, threshold int, lockout time.Duration) (int, time.Time, error) {
	const query = `UPDATE admin_account SET
		failed_verifies = CASE WHEN failed_verifies + 1 >= ? THEN 0 ELSE failed_verifies + 1 END,
		locked_until = CASE WHEN failed_verifies + 1 >= ? THEN ? ELSE locked_until END
		WHERE id = ?
		RETURNING failed_verifies, locked_until`

	var failed int
	var lockedUntil sql.NullString
	err := s.db.QueryRowContext(ctx, query, threshold, threshold, storage.FormatTime(now.Add(lockout)), id).
		Scan(&failed, &lockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, fmt.Errorf("admin account: %w", storage.ErrNotFound)
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("record failed verify: %w", err)
	}
	return failed, storage.ParseNullTime(lockedUntil), nil
}

// Delete removes an Account and, by cascade, its sessions.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM admin_account WHERE id = ?", id)
	return err
}

// List retrieves every Account ordered by email.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_account").Scan(&count)
	return count, err
}

func notFound(a domain.Account, err error) (domain.Account, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("admin account: %w", storage.ErrNotFound)
	}
	return a, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt, permissions string
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.Name,
		&entity.Question,
		&entity.AnswerHash,
		&entity.PINHash,
		&entity.Role,
		&permissions,
		&createdAt,
		&entity.FailedVerifies,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.Permissions, err = domain.ParsePermissions(permissions)
	if err != nil {
		return domain.Account{}, fmt.Errorf("admin account %s: %w", entity.ID, err)
	}
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	entity.LockedUntil = storage.ParseNullTime(lockedUntil)
	return entity, nil
}

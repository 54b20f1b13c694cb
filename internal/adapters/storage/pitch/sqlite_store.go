package pitch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/pitch"
)

const selectColumns = "SELECT id, startup, founder, email, stage, deck_url, summary, status, review_notes, reviewed_by, reviewed_at, created_at FROM pitch"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new pitch store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Pitch by its ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Pitch, error) {
	entity, err := scanPitch(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Pitch{}, fmt.Errorf("pitch %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a Pitch to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); submission fields are never overwritten
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Pitch) error {
	fields := []string{"id", "startup", "founder", "email", "stage", "deck_url", "summary", "status", "review_notes", "reviewed_by", "reviewed_at", "created_at"}
	updates := []string{
		"status=excluded.status",
		"review_notes=excluded.review_notes",
		"reviewed_by=excluded.reviewed_by",
		"reviewed_at=excluded.reviewed_at",
	}
	query := fmt.Sprintf(
		"INSERT INTO pitch (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Repeat("?, ", len(fields)-1)+"?",
		strings.Join(updates, ", "),
	)
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Startup,
		entity.Founder,
		entity.Email,
		entity.Stage,
		entity.DeckURL,
		entity.Summary,
		entity.Status,
		entity.ReviewNotes,
		entity.ReviewedBy,
		storage.NullTime(entity.ReviewedAt),
		storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// List retrieves pitches, oldest first so reviewers work the queue in order.
// PRE: filter has valid parameters; Limit <= 0 means no limit
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Pitch, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString(selectColumns)
	if filter.Status != "" {
		queryBuilder.WriteString(" WHERE status = ?")
		args = append(args, filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	queryBuilder.WriteString(" ORDER BY created_at, id LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Pitch{}
	for rows.Next() {
		entity, err := scanPitch(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanPitch extracts a Pitch from a row scanner function.
func scanPitch(scan func(dest ...any) error) (domain.Pitch, error) {
	var entity domain.Pitch
	var reviewedAt sql.NullString
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Startup,
		&entity.Founder,
		&entity.Email,
		&entity.Stage,
		&entity.DeckURL,
		&entity.Summary,
		&entity.Status,
		&entity.ReviewNotes,
		&entity.ReviewedBy,
		&reviewedAt,
		&createdAt,
	)
	if err != nil {
		return domain.Pitch{}, err
	}
	entity.ReviewedAt = storage.ParseNullTime(reviewedAt)
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	return entity, nil
}

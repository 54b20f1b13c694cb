package speaker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/speaker"
)

const selectColumns = "SELECT id, name, title, company, bio, photo_url, sort_order, featured FROM speaker"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new speaker store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Speaker by its ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Speaker, error) {
	entity, err := scanSpeaker(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Speaker{}, fmt.Errorf("speaker %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// List returns speakers in display order: featured first, then sort order, then name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Speaker, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY featured DESC, sort_order, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Speaker{}
	for rows.Next() {
		entity, err := scanSpeaker(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Save persists a Speaker to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Speaker) error {
	fields := []string{"id", "name", "title", "company", "bio", "photo_url", "sort_order", "featured"}
	updates := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		updates = append(updates, f+"=excluded."+f)
	}
	query := fmt.Sprintf(
		"INSERT INTO speaker (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Repeat("?, ", len(fields)-1)+"?",
		strings.Join(updates, ", "),
	)
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Title,
		entity.Company,
		entity.Bio,
		entity.PhotoURL,
		entity.SortOrder,
		entity.Featured,
	)
	return err
}

// Delete removes a Speaker. Agenda sessions keep their slot with no speaker.
// POST: storage.ErrNotFound if the id is unknown
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM speaker WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("speaker %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// scanSpeaker extracts a Speaker from a row scanner function.
func scanSpeaker(scan func(dest ...any) error) (domain.Speaker, error) {
	var entity domain.Speaker
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Title,
		&entity.Company,
		&entity.Bio,
		&entity.PhotoURL,
		&entity.SortOrder,
		&entity.Featured,
	)
	return entity, err
}

package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/schedule"
)

const selectColumns = "SELECT id, title, abstract, kind, speaker_id, track, room, starts_at, ends_at FROM schedule_session"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new agenda store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Session by its ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	entity, err := scanSession(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("schedule session %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// List retrieves sessions ordered by start time.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Session, error) {
	var queryBuilder strings.Builder
	var conditions []string
	var args []any

	queryBuilder.WriteString(selectColumns)
	if filter.Track != "" {
		conditions = append(conditions, "track = ?")
		args = append(args, filter.Track)
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "starts_at >= ?")
		args = append(args, storage.FormatTime(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "starts_at < ?")
		args = append(args, storage.FormatTime(filter.To))
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY starts_at, room")

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Session{}
	for rows.Next() {
		entity, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Save persists a Session to the database.
// PRE: entity has been validated; SpeakerID, when set, names an existing speaker
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Session) error {
	fields := []string{"id", "title", "abstract", "kind", "speaker_id", "track", "room", "starts_at", "ends_at"}
	updates := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		updates = append(updates, f+"=excluded."+f)
	}
	query := fmt.Sprintf(
		"INSERT INTO schedule_session (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(fields, ", "),
		strings.Repeat("?, ", len(fields)-1)+"?",
		strings.Join(updates, ", "),
	)

	var speakerID any
	if entity.SpeakerID != "" {
		speakerID = entity.SpeakerID
	}
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Title,
		entity.Abstract,
		entity.Kind,
		speakerID,
		entity.Track,
		entity.Room,
		storage.FormatTime(entity.StartsAt),
		storage.FormatTime(entity.EndsAt),
	)
	return err
}

// Delete removes a Session.
// POST: storage.ErrNotFound if the id is unknown
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM schedule_session WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("schedule session %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// scanSession extracts a Session from a row scanner function.
func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var entity domain.Session
	var speakerID sql.NullString
	var startsAt, endsAt string
	err := scan(
		&entity.ID,
		&entity.Title,
		&entity.Abstract,
		&entity.Kind,
		&speakerID,
		&entity.Track,
		&entity.Room,
		&startsAt,
		&endsAt,
	)
	if err != nil {
		return domain.Session{}, err
	}
	entity.SpeakerID = speakerID.String
	entity.StartsAt, _ = storage.ParseTime(startsAt)
	entity.EndsAt, _ = storage.ParseTime(endsAt)
	return entity, nil
}

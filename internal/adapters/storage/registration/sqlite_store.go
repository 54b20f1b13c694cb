package registration

import (
	"context"
	"strings"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/registration"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new registration store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a registration.
// PRE: value has been normalised and validated
// POST: domain.ErrDuplicate when the email is already registered (any case)
func (s *SQLiteStore) Create(ctx context.Context, value domain.Registration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO registration (id, name, email, company, job_title, ticket, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		value.ID,
		value.Name,
		value.Email,
		value.Company,
		value.JobTitle,
		value.Ticket,
		storage.FormatTime(value.CreatedAt),
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

// List retrieves registrations, newest first.
// PRE: filter has valid parameters; Limit <= 0 means no limit
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Registration, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString("SELECT id, name, email, company, job_title, ticket, created_at FROM registration")
	if filter.Ticket != "" {
		queryBuilder.WriteString(" WHERE ticket = ?")
		args = append(args, filter.Ticket)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Registration{}
	for rows.Next() {
		var entity domain.Registration
		var createdAt string
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Email, &entity.Company, &entity.JobTitle, &entity.Ticket, &createdAt); err != nil {
			return nil, err
		}
		entity.CreatedAt, _ = storage.ParseTime(createdAt)
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of registrations matching the ticket filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	query := "SELECT COUNT(*) FROM registration"
	var args []any
	if filter.Ticket != "" {
		query += " WHERE ticket = ?"
		args = append(args, filter.Ticket)
	}
	var count int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

package audit

import (
	"context"
	"strings"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/audit"
)

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
// PRE: event is valid
// POST: Event is persisted
func (s *SQLiteStore) Save(ctx context.Context, event domain.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, category, action, severity, actor_email, resource_type, resource_id, description, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, storage.FormatTime(event.Timestamp), string(event.Category), string(event.Action),
		string(event.Severity), event.ActorEmail, event.ResourceType, event.ResourceID,
		event.Description, event.IPAddress, event.UserAgent)
	return err
}

// List returns audit events with optional filtering.
// PRE: limit > 0
// POST: Returns events ordered by timestamp desc
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	var where []string
	var args []any
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.Action != "" {
		where = append(where, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.ActorEmail != "" {
		where = append(where, "actor_email = ?")
		args = append(args, strings.ToLower(filter.ActorEmail))
	}
	if !filter.Since.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, storage.FormatTime(filter.Since))
	}

	query := `SELECT id, timestamp, category, action, severity, actor_email, resource_type, resource_id, description, ip_address, user_agent FROM audit_event`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.Severity, &e.ActorEmail,
			&e.ResourceType, &e.ResourceID, &e.Description, &e.IPAddress, &e.UserAgent); err != nil {
			return nil, err
		}
		e.Timestamp, _ = storage.ParseTime(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

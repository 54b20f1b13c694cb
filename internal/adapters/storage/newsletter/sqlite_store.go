package newsletter

import (
	"context"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/newsletter"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new subscriber store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Subscribe adds value unless the email is already subscribed in any case.
// POST: Returns the stored subscriber and whether it was newly created
func (s *SQLiteStore) Subscribe(ctx context.Context, value domain.Subscriber) (domain.Subscriber, bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO newsletter_subscriber (id, email, source, subscribed_at) VALUES (?, ?, ?, ?) ON CONFLICT(email) DO NOTHING`,
		value.ID, value.Email, value.Source, storage.FormatTime(value.SubscribedAt))
	if err != nil {
		return domain.Subscriber{}, false, err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return value, true, nil
	}

	var existing domain.Subscriber
	var subscribedAt string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, email, source, subscribed_at FROM newsletter_subscriber WHERE email = ?`, value.Email,
	).Scan(&existing.ID, &existing.Email, &existing.Source, &subscribedAt)
	if err != nil {
		return domain.Subscriber{}, false, err
	}
	existing.SubscribedAt, _ = storage.ParseTime(subscribedAt)
	return existing, false, nil
}

// List returns every subscriber, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, source, subscribed_at FROM newsletter_subscriber ORDER BY subscribed_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Subscriber{}
	for rows.Next() {
		var entity domain.Subscriber
		var subscribedAt string
		if err := rows.Scan(&entity.ID, &entity.Email, &entity.Source, &subscribedAt); err != nil {
			return nil, err
		}
		entity.SubscribedAt, _ = storage.ParseTime(subscribedAt)
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of subscribers.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM newsletter_subscriber").Scan(&count)
	return count, err
}

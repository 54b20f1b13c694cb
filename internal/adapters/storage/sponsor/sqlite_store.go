package sponsor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"techday/internal/adapters/storage"
	domain "techday/internal/domain/sponsor"
)

const selectColumns = "SELECT id, name, logo_url, website_url, tier, position, created_at FROM sponsor"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new sponsor store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Sponsor by its ID.
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Sponsor, error) {
	return getByID(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getByID(ctx context.Context, q queryRower, id string) (domain.Sponsor, error) {
	entity, err := scanSponsor(q.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sponsor{}, fmt.Errorf("sponsor %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// List returns every sponsor ordered by tier name then position.
// Callers wanting display order use domain.Group.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Sponsor, error) {
	return querySponsors(ctx, s.db, selectColumns+" ORDER BY tier, position")
}

// ListByTier returns one tier's sponsors in position order.
func (s *SQLiteStore) ListByTier(ctx context.Context, tier domain.Tier) ([]domain.Sponsor, error) {
	return querySponsors(ctx, s.db, selectColumns+" WHERE tier = ? ORDER BY position", string(tier))
}

// Versions returns the order version of every tier. Tiers never written report 0.
func (s *SQLiteStore) Versions(ctx context.Context) (map[domain.Tier]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT tier, version FROM sponsor_tier_version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Tier]int64, len(domain.Tiers))
	for _, t := range domain.Tiers {
		out[t] = 0
	}
	for rows.Next() {
		var tier string
		var v int64
		if err := rows.Scan(&tier, &v); err != nil {
			return nil, err
		}
		out[domain.Tier(tier)] = v
	}
	return out, rows.Err()
}

// Create appends a sponsor to the end of its tier.
// PRE: value has been validated; value.ID is unique
// POST: value.Position is the tier's previous size; the tier version is bumped
func (s *SQLiteStore) Create(ctx context.Context, value domain.Sponsor) (domain.Sponsor, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Sponsor{}, err
	}
	defer tx.Rollback()

	// Write first so the transaction holds the write lock before it reads.
	if err := bumpVersion(ctx, tx, value.Tier); err != nil {
		return domain.Sponsor{}, err
	}
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM sponsor WHERE tier = ?", string(value.Tier)).Scan(&value.Position); err != nil {
		return domain.Sponsor{}, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sponsor (id, name, logo_url, website_url, tier, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		value.ID, value.Name, value.LogoURL, value.WebsiteURL, string(value.Tier), value.Position, storage.FormatTime(value.CreatedAt),
	)
	if err != nil {
		return domain.Sponsor{}, err
	}
	return value, tx.Commit()
}

// Update changes a sponsor's details. A tier change moves it to the end of the new tier
// and compacts the old one.
// PRE: value has been validated
// POST: Returns the stored entity; storage.ErrNotFound if the id is unknown
func (s *SQLiteStore) Update(ctx context.Context, value domain.Sponsor) (domain.Sponsor, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Sponsor{}, err
	}
	defer tx.Rollback()

	if err := bumpVersion(ctx, tx, value.Tier); err != nil {
		return domain.Sponsor{}, err
	}
	current, err := getByID(ctx, tx, value.ID)
	if err != nil {
		return domain.Sponsor{}, err
	}
	value.CreatedAt = current.CreatedAt
	value.Position = current.Position

	if value.Tier != current.Tier {
		if err := bumpVersion(ctx, tx, current.Tier); err != nil {
			return domain.Sponsor{}, err
		}
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM sponsor WHERE tier = ?", string(value.Tier)).Scan(&value.Position); err != nil {
			return domain.Sponsor{}, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sponsor SET name = ?, logo_url = ?, website_url = ?, tier = ?, position = ? WHERE id = ?`,
		value.Name, value.LogoURL, value.WebsiteURL, string(value.Tier), value.Position, value.ID,
	)
	if err != nil {
		return domain.Sponsor{}, err
	}
	if value.Tier != current.Tier {
		if err := compactTier(ctx, tx, current.Tier); err != nil {
			return domain.Sponsor{}, err
		}
	}
	return value, tx.Commit()
}

// Delete removes a sponsor and closes the gap in its tier.
// POST: storage.ErrNotFound if the id is unknown; remaining positions are 0..N-2
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var tier string
	err = tx.QueryRowContext(ctx, "DELETE FROM sponsor WHERE id = ? RETURNING tier", id).Scan(&tier)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sponsor %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := bumpVersion(ctx, tx, domain.Tier(tier)); err != nil {
		return err
	}
	if err := compactTier(ctx, tx, domain.Tier(tier)); err != nil {
		return err
	}
	return tx.Commit()
}

// Reorder replaces the order of one tier with ids, in a single transaction.
// PRE: ids is the full ordered membership of tier
// POST: positions follow ids as 0..N-1 and the new version is returned.
// Returns storage.ErrConflict when version is stale and domain.ErrOrderMismatch when
// ids is not a permutation of the tier. Nothing is written on error.
func (s *SQLiteStore) Reorder(ctx context.Context, tier domain.Tier, version int64, ids []string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO sponsor_tier_version (tier, version) VALUES (?, 0)", string(tier)); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE sponsor_tier_version SET version = version + 1 WHERE tier = ? AND version = ?", string(tier), version)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, fmt.Errorf("tier %s at version %d: %w", tier, version, storage.ErrConflict)
	}

	current, err := querySponsors(ctx, tx, selectColumns+" WHERE tier = ? ORDER BY position", string(tier))
	if err != nil {
		return 0, err
	}
	ordered, err := domain.ApplyOrder(current, ids)
	if err != nil {
		return 0, err
	}
	if err := writePositions(ctx, tx, ordered); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return version + 1, nil
}

func bumpVersion(ctx context.Context, tx *sql.Tx, tier domain.Tier) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO sponsor_tier_version (tier, version) VALUES (?, 1) ON CONFLICT(tier) DO UPDATE SET version = version + 1", string(tier))
	return err
}

func compactTier(ctx context.Context, tx *sql.Tx, tier domain.Tier) error {
	seq, err := querySponsors(ctx, tx, selectColumns+" WHERE tier = ? ORDER BY position, created_at", string(tier))
	if err != nil {
		return err
	}
	domain.Renumber(seq)
	return writePositions(ctx, tx, seq)
}

func writePositions(ctx context.Context, tx *sql.Tx, seq []domain.Sponsor) error {
	stmt, err := tx.PrepareContext(ctx, "UPDATE sponsor SET position = ? WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, sp := range seq {
		if _, err := stmt.ExecContext(ctx, sp.Position, sp.ID); err != nil {
			return err
		}
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func querySponsors(ctx context.Context, q querier, query string, args ...any) ([]domain.Sponsor, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Sponsor{}
	for rows.Next() {
		entity, err := scanSponsor(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanSponsor extracts a Sponsor from a row scanner function.
func scanSponsor(scan func(dest ...any) error) (domain.Sponsor, error) {
	var entity domain.Sponsor
	var tier, createdAt string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.LogoURL,
		&entity.WebsiteURL,
		&tier,
		&entity.Position,
		&createdAt,
	)
	if err != nil {
		return domain.Sponsor{}, err
	}
	entity.Tier = domain.Tier(tier)
	entity.CreatedAt, _ = storage.ParseTime(createdAt)
	return entity, nil
}

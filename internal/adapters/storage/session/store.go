package session

import (
	"context"
	"time"

	domain "techday/internal/domain/session"
)

// Store persists admin sessions.
type Store interface {
	Save(ctx context.Context, value domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, error)
	Revoke(ctx context.Context, token string, at time.Time) error
	RevokeAccount(ctx context.Context, accountID string, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

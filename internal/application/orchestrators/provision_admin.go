package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"techday/internal/adapters/storage"
	"techday/internal/domain/admin"
)

// AdminStoreForProvision defines the store interface needed by ProvisionAdmin.
type AdminStoreForProvision interface {
	GetByEmail(ctx context.Context, email string) (admin.Account, error)
	Save(ctx context.Context, a admin.Account) error
}

// SessionRevoker revokes every session of an account.
type SessionRevoker interface {
	RevokeAccount(ctx context.Context, accountID string, at time.Time) error
}

// ProvisionAdminInput carries input for provisioning an admin account.
type ProvisionAdminInput struct {
	Email       string
	Name        string
	Question    string
	Answer      string
	PIN         string
	Permissions []admin.Permission
}

// ProvisionAdminDeps holds dependencies for ProvisionAdmin.
type ProvisionAdminDeps struct {
	AdminStore     AdminStoreForProvision
	SessionRevoker SessionRevoker
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteProvisionAdmin creates an admin account, or rotates the credentials of an
// existing one and signs it out everywhere.
// PRE: PIN is 4-6 digits; at least one permission
// POST: Account persisted with hashed answer and PIN; returns whether it was created
func ExecuteProvisionAdmin(ctx context.Context, input ProvisionAdminInput, deps ProvisionAdminDeps) (admin.Account, bool, error) {
	email := admin.NormalizeEmail(input.Email)
	now := deps.Now()

	acct, err := deps.AdminStore.GetByEmail(ctx, email)
	created := errors.Is(err, storage.ErrNotFound)
	if err != nil && !created {
		return admin.Account{}, false, err
	}
	if created {
		acct = admin.Account{
			ID:        deps.GenerateID(),
			Email:     email,
			Role:      admin.RoleAdmin,
			CreatedAt: now,
		}
	}

	acct.Name = strings.TrimSpace(input.Name)
	acct.Question = strings.TrimSpace(input.Question)
	acct.Permissions = input.Permissions
	acct.ResetFailedVerifies()
	if err := acct.Validate(); err != nil {
		return admin.Account{}, false, err
	}
	if err := acct.SetAnswer(input.Answer); err != nil {
		return admin.Account{}, false, err
	}
	if err := acct.SetPIN(input.PIN); err != nil {
		return admin.Account{}, false, err
	}
	if err := deps.AdminStore.Save(ctx, acct); err != nil {
		return admin.Account{}, false, err
	}

	if !created && deps.SessionRevoker != nil {
		if err := deps.SessionRevoker.RevokeAccount(ctx, acct.ID, now); err != nil {
			return admin.Account{}, false, err
		}
	}

	slog.Info("auth_event", "event", "admin_provisioned", "email", email, "created", created,
		"permissions", admin.JoinPermissions(acct.Permissions))
	return acct, created, nil
}

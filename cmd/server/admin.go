package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	adminStore "techday/internal/adapters/storage/admin"
	sessionStore "techday/internal/adapters/storage/session"
	"techday/internal/application/orchestrators"
	"techday/internal/domain/admin"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newAdminProvisionCmd())
	return cmd
}

func newAdminProvisionCmd() *cobra.Command {
	var in orchestrators.ProvisionAdminInput
	var perms string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create an admin or rotate its question, answer and PIN",
		Long: `provision creates an admin account, or replaces the credentials of an existing
one and signs it out of every session.

  techday admin provision --email ops@techday.example --name Ops \
    --question "Name of the first office dog?" --answer Rex --pin 4821 \
    --permissions sponsors,speakers,schedule`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if perms == "all" {
				in.Permissions = admin.AllPermissions
			} else if in.Permissions, err = admin.ParsePermissions(perms); err != nil {
				return err
			}

			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			acct, created, err := orchestrators.ExecuteProvisionAdmin(cmd.Context(), in, orchestrators.ProvisionAdminDeps{
				AdminStore:     adminStore.NewSQLiteStore(db),
				SessionRevoker: sessionStore.NewSQLiteStore(db),
				GenerateID:     uuid.NewString,
				Now:            time.Now,
			})
			if err != nil {
				return err
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s admin %s (%s)\n", verb, acct.Email, admin.JoinPermissions(acct.Permissions))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "admin email (required)")
	f.StringVar(&in.Name, "name", "", "display name (required)")
	f.StringVar(&in.Question, "question", "", "security question shown at sign-in (required)")
	f.StringVar(&in.Answer, "answer", "", "answer to the security question (required)")
	f.StringVar(&in.PIN, "pin", "", "4-6 digit PIN (required)")
	f.StringVar(&perms, "permissions", "all", `comma-separated areas, or "all"`)
	for _, name := range []string{"email", "name", "question", "answer", "pin"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

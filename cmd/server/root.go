package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"techday/internal/adapters/storage"
	"techday/internal/config"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "techday",
		Short: "Tech Day conference site and admin back office",
		Long: `techday serves the Tech Day public site API and the admin back office.

Settings come from an optional config file (--config) and TECHDAY_* environment
variables, e.g. TECHDAY_ADDR, TECHDAY_DB_PATH, TECHDAY_CSRF_KEY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// loadConfig reads settings and installs the slog handler they describe.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(newLogHandler(cfg)))
	return cfg, nil
}

func newLogHandler(cfg *config.Config) slog.Handler {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// openDB opens and migrates the configured database.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateDB(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			v, err := storage.SchemaVersion(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "techday %s (schema %d)\n", version, storage.LatestSchemaVersion())
		},
	}
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// migrations are applied in order; index+1 is the schema version.
// Never edit a released migration, append a new one.
var migrations = []string{
	// 1: admin accounts and sessions
	`
	CREATE TABLE IF NOT EXISTS admin_account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		name TEXT NOT NULL,
		question TEXT NOT NULL,
		answer_hash TEXT NOT NULL,
		pin_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'admin',
		permissions TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		failed_verifies INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS admin_session (
		token TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		email TEXT NOT NULL,
		issued_at TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		revoked_at TEXT,
		FOREIGN KEY (account_id) REFERENCES admin_account(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_admin_session_account ON admin_session(account_id);
	`,
	// 2: sponsors with per-tier order versions
	`
	CREATE TABLE IF NOT EXISTS sponsor (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		logo_url TEXT NOT NULL DEFAULT '',
		website_url TEXT NOT NULL DEFAULT '',
		tier TEXT NOT NULL,
		position INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sponsor_tier ON sponsor(tier, position);

	CREATE TABLE IF NOT EXISTS sponsor_tier_version (
		tier TEXT PRIMARY KEY,
		version INTEGER NOT NULL DEFAULT 0
	);
	`,
	// 3: speakers and agenda
	`
	CREATE TABLE IF NOT EXISTS speaker (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		featured INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS schedule_session (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		abstract TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		speaker_id TEXT,
		track TEXT NOT NULL DEFAULT '',
		room TEXT NOT NULL DEFAULT '',
		starts_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		FOREIGN KEY (speaker_id) REFERENCES speaker(id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedule_session_start ON schedule_session(starts_at);
	`,
	// 4: public submissions
	`
	CREATE TABLE IF NOT EXISTS registration (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		company TEXT NOT NULL DEFAULT '',
		job_title TEXT NOT NULL DEFAULT '',
		ticket TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pitch (
		id TEXT PRIMARY KEY,
		startup TEXT NOT NULL,
		founder TEXT NOT NULL,
		email TEXT NOT NULL,
		stage TEXT NOT NULL,
		deck_url TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL,
		status TEXT NOT NULL,
		review_notes TEXT NOT NULL DEFAULT '',
		reviewed_by TEXT NOT NULL DEFAULT '',
		reviewed_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS newsletter_subscriber (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		source TEXT NOT NULL DEFAULT '',
		subscribed_at TEXT NOT NULL
	);
	`,
	// 5: admin audit trail and mail retry queue
	`
	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL,
		actor_email TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_audit_event_time ON audit_event(timestamp);

	CREATE TABLE IF NOT EXISTS mail_outbox (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL,
		last_attempted_at TEXT,
		next_attempt_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		message_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_mail_outbox_due ON mail_outbox(status, next_attempt_at);
	`,
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return len(migrations)
}

// Open opens the SQLite database at path with WAL, busy timeout and foreign keys.
// PRE: path is a file path or ":memory:"
// POST: returns a pinged connection pool
func Open(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// MigrateDB brings the schema up to LatestSchemaVersion.
// PRE: db is a valid database connection
// POST: every pending migration is applied in its own transaction
func MigrateDB(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	for i := current; i < len(migrations); i++ {
		if err := applyMigration(ctx, db, i+1, migrations[i]); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", i+1)
	}
	return nil
}

// SchemaVersion returns the currently applied version (0 for a fresh database).
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

func applyMigration(ctx context.Context, db *sql.DB, version int, stmt string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("migration %d: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
		return fmt.Errorf("migration %d: record version: %w", version, err)
	}
	return tx.Commit()
}

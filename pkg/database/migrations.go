package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration represents a versioned schema change
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies pending migrations in order, each in its own transaction
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

// migrations is the ordered schema history. Append only; never edit an
// applied migration.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			CREATE TABLE tasks (
				id TEXT PRIMARY KEY,
				task_number TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				description TEXT,
				status TEXT NOT NULL,
				approval_status TEXT NOT NULL DEFAULT 'none',
				current_approval_stage INTEGER NOT NULL DEFAULT 0,
				rejection_reason TEXT,
				task_category TEXT NOT NULL,
				batch_id TEXT,
				assignee TEXT,
				created_by TEXT NOT NULL,
				name_key TEXT,
				period_key TEXT,
				due_date DATETIME,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX idx_tasks_batch ON tasks(batch_id);
			CREATE INDEX idx_tasks_status ON tasks(status);

			CREATE TABLE checklist_items (
				id TEXT PRIMARY KEY,
				task_id TEXT NOT NULL REFERENCES tasks(id),
				position INTEGER NOT NULL,
				label TEXT NOT NULL,
				completed INTEGER NOT NULL DEFAULT 0,
				response_value TEXT,
				notes TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX idx_checklist_items_task ON checklist_items(task_id, position);

			CREATE TABLE approval_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				task_id TEXT NOT NULL REFERENCES tasks(id),
				stage INTEGER NOT NULL,
				action TEXT NOT NULL,
				actor_id TEXT NOT NULL,
				reason TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX idx_approval_history_task ON approval_history(task_id, id);

			CREATE TABLE batches (
				id TEXT PRIMARY KEY,
				batch_number TEXT NOT NULL UNIQUE,
				created_by TEXT,
				current_stage TEXT NOT NULL,
				status TEXT NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE user_roles (
				user_id TEXT NOT NULL,
				role TEXT NOT NULL,
				PRIMARY KEY (user_id, role)
			);
		`,
	},
	{
		Version: 2,
		Name:    "task_number_sequence",
		SQL: `
			CREATE TABLE task_number_seq (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 3,
		Name:    "generator_dedup_constraint",
		SQL: `
			CREATE UNIQUE INDEX idx_tasks_dedup
				ON tasks(batch_id, name_key, period_key)
				WHERE batch_id IS NOT NULL AND name_key IS NOT NULL AND period_key IS NOT NULL;
		`,
	},
}

// Run applies all pending migrations
func (m *Migrator) Run() error {
	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			m.logger.Debug("Skipping applied migration",
				zap.Int("version", migration.Version),
				zap.String("name", migration.Name))
			continue
		}

		m.logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))

		if err := m.apply(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	m.logger.Info("Database migrations completed")
	return nil
}

func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(query)
	return err
}

func (m *Migrator) appliedVersions() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(migration Migration) error {
	return m.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}

		_, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}

		return nil
	})
}

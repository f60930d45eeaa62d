package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSqliteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createOverridesQuery := `
	CREATE TABLE IF NOT EXISTS visit_overrides (
		manager_id TEXT NOT NULL,
		day TEXT NOT NULL,
		area TEXT NOT NULL,
		stop_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		PRIMARY KEY (manager_id, day, area, stop_id)
	);
	`

	createOperationalQuery := `
	CREATE TABLE IF NOT EXISTS operational_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		manager_id TEXT NOT NULL,
		day TEXT NOT NULL,
		area TEXT NOT NULL,
		title TEXT NOT NULL,
		location TEXT NOT NULL,
		start_at TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_operational_items_route
    ON operational_items(manager_id, day, area);
	`

	statements := []string{
		createOverridesQuery,
		createOperationalQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

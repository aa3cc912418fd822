package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS schedule_runs (
		id             TEXT PRIMARY KEY,
		created_at     TEXT NOT NULL,
		timezone       TEXT NOT NULL,
		task_count     INTEGER NOT NULL DEFAULT 0 CHECK(task_count >= 0),
		placed_count   INTEGER NOT NULL DEFAULT 0 CHECK(placed_count >= 0),
		unplaced_count INTEGER NOT NULL DEFAULT 0 CHECK(unplaced_count >= 0),
		break_count    INTEGER NOT NULL DEFAULT 0 CHECK(break_count >= 0),
		request_json   TEXT NOT NULL,
		response_json  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_schedule_runs_created ON schedule_runs(created_at)`,

	`CREATE TABLE IF NOT EXISTS run_warnings (
		run_id   TEXT NOT NULL REFERENCES schedule_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		message  TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,

	`ALTER TABLE schedule_runs ADD COLUMN split_count INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE schedule_runs ADD COLUMN fallback INTEGER NOT NULL DEFAULT 0`,
}

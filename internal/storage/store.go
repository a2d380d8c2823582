// Package storage persists tasks, family members, and completions in SQLite.
//
// Task writes that touch the child collection run inside a single
// transaction so readers never observe a partially replaced child set.
// Completions carry their own account_id because they outlive the tasks
// they reference: deleting a task keeps its completion history.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store handles SQLite persistence for the task engine
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at dbPath and migrates the
// schema.
func New(dbPath string) (*Store, error) {
	// Expand ~ in path
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// migrate creates the necessary tables
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS family_members (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			name TEXT NOT NULL,
			color_tag TEXT,
			is_default INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			recurrence TEXT NOT NULL,
			custom_recurrence_expr TEXT,
			start_date DATETIME NOT NULL,
			end_date DATETIME,
			estimated_minutes INTEGER NOT NULL DEFAULT 0,
			priority INTEGER,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS assignments (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			family_member_id TEXT NOT NULL,
			UNIQUE (task_id, family_member_id),
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS routine_steps (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			description TEXT NOT NULL,
			estimated_minutes INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);

		-- No foreign keys: completions are retained history and must
		-- survive deletion of the task or member they reference.
		CREATE TABLE IF NOT EXISTS completions (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			family_member_id TEXT NOT NULL,
			completed_at DATETIME NOT NULL,
			notes TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_members_account ON family_members(account_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_account ON tasks(account_id);
		CREATE INDEX IF NOT EXISTS idx_assignments_task ON assignments(task_id);
		CREATE INDEX IF NOT EXISTS idx_steps_task ON routine_steps(task_id);
		CREATE INDEX IF NOT EXISTS idx_completions_task ON completions(task_id, completed_at);
		CREATE INDEX IF NOT EXISTS idx_completions_account ON completions(account_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// inTx runs fn in a transaction, rolling back on any error
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

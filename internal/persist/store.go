// Package persist owns durable state: a SQLite-backed snapshot store and the
// debounced save scheduling in front of it.
package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Snapshot names. Each is one wholesale JSON payload, loaded at startup and
// rewritten on every debounced save.
const (
	SnapshotMessages      = "messages"
	SnapshotConversations = "conversations"
)

// Store holds named snapshot payloads in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenStore(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, logger: logger}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		name       TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Save rewrites the named snapshot wholesale.
func (s *Store) Save(name string, payload []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO snapshots (name, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		name, string(payload))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	return nil
}

// Load returns the named snapshot payload. A missing snapshot is (nil, false,
// nil), not an error.
func (s *Store) Load(name string) ([]byte, bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM snapshots WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	return []byte(payload), true, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

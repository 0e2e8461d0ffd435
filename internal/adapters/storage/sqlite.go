package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements ports.EntryStore on an embedded SQLite database.
// Rows keep insertion order through their autoincrement id, so Load returns
// the same sequence the JSON document would. Append is a single INSERT
// instead of a full rewrite.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "./storage.db"
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &entities.StorageError{Op: "mkdir", Path: path, Err: err}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, &entities.StorageError{Op: "open", Path: path, Err: err}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, &entities.StorageError{Op: "migrate", Path: path, Err: err}
	}

	return store, nil
}

// initSchema creates the necessary tables.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		screenshot TEXT NOT NULL,
		mode TEXT NOT NULL,
		response TEXT NOT NULL DEFAULT '',
		problem_description TEXT NOT NULL DEFAULT '',
		solution TEXT NOT NULL DEFAULT '',
		vision_model TEXT NOT NULL DEFAULT '',
		coding_model TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_entries_timestamp ON entries(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Init is satisfied by NewSQLiteStore.
func (s *SQLiteStore) Init(ctx context.Context) error { return nil }

// Load returns every entry in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, screenshot, mode, response, problem_description, solution, vision_model, coding_model
		FROM entries
		ORDER BY id
	`)
	if err != nil {
		return nil, &entities.StorageError{Op: "query", Path: s.path, Err: err}
	}
	defer rows.Close()

	entries := []entities.Entry{}
	for rows.Next() {
		var e entities.Entry
		var mode string
		err := rows.Scan(&e.Timestamp, &e.Screenshot, &mode, &e.Response, &e.ProblemDescription, &e.Solution, &e.VisionModel, &e.CodingModel)
		if err != nil {
			return nil, &entities.ParseError{Path: s.path, Err: fmt.Errorf("scanning row: %w", err)}
		}
		e.Mode = entities.Mode(mode)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &entities.StorageError{Op: "query", Path: s.path, Err: err}
	}

	return entries, nil
}

// Save replaces all rows with entries in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, entries []entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &entities.StorageError{Op: "begin", Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return &entities.StorageError{Op: "clear", Path: s.path, Err: err}
	}

	stmt, err := tx.PrepareContext(ctx, insertEntry)
	if err != nil {
		return &entities.StorageError{Op: "prepare", Path: s.path, Err: err}
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, entryArgs(e)...); err != nil {
			return &entities.StorageError{Op: "insert", Path: s.path, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &entities.StorageError{Op: "commit", Path: s.path, Err: err}
	}
	return nil
}

// Append inserts one row.
func (s *SQLiteStore) Append(ctx context.Context, entry entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, insertEntry, entryArgs(entry)...); err != nil {
		return &entities.StorageError{Op: "insert", Path: s.path, Err: err}
	}
	return nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const insertEntry = `
	INSERT INTO entries (timestamp, screenshot, mode, response, problem_description, solution, vision_model, coding_model)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func entryArgs(e entities.Entry) []any {
	return []any{
		e.Timestamp,
		e.Screenshot,
		string(e.Mode),
		e.Response,
		e.ProblemDescription,
		e.Solution,
		e.VisionModel,
		e.CodingModel,
	}
}

// Package storage provides entry store adapters.
// Each adapter implements ports.EntryStore; the JSON document is the default.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

// JSONFileStore keeps every entry in one JSON array document.
// Each write rewrites the whole document through a temp file and rename,
// so readers see either the previous or the next complete document.
type JSONFileStore struct {
	mu   sync.RWMutex
	path string
}

// NewJSONFileStore creates a store for the document at path.
func NewJSONFileStore(path string) *JSONFileStore {
	if path == "" {
		path = "./storage.json"
	}
	return &JSONFileStore{path: path}
}

// Init creates the document as an empty list if it does not exist yet.
func (s *JSONFileStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &entities.StorageError{Op: "stat", Path: s.path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &entities.StorageError{Op: "mkdir", Path: s.path, Err: err}
	}
	return s.write([]byte("[]"))
}

// Load reads and decodes the document.
func (s *JSONFileStore) Load(ctx context.Context) ([]entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *JSONFileStore) load() ([]entities.Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &entities.StorageError{Op: "read", Path: s.path, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []entities.Entry{}, nil
	}

	var entries []entities.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &entities.ParseError{Path: s.path, Err: err}
	}
	if entries == nil {
		// "null" is valid JSON but not a list.
		return nil, &entities.ParseError{Path: s.path, Err: errors.New("document is not a JSON array")}
	}
	return entries, nil
}

// Save overwrites the document with entries.
func (s *JSONFileStore) Save(ctx context.Context, entries []entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(entries)
}

func (s *JSONFileStore) save(entries []entities.Entry) error {
	if entries == nil {
		entries = []entities.Entry{}
	}
	// Model answers are full of code; keep < > & readable.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return &entities.StorageError{Op: "encode", Path: s.path, Err: err}
	}
	return s.write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// Append loads the document, adds entry at the end and saves it back.
func (s *JSONFileStore) Append(ctx context.Context, entry entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(entries, entry))
}

// Path returns the document location.
func (s *JSONFileStore) Path() string { return s.path }

// Close is a no-op; the document is not held open.
func (s *JSONFileStore) Close() error { return nil }

// write replaces the document atomically on POSIX filesystems.
func (s *JSONFileStore) write(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &entities.StorageError{Op: "write", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &entities.StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &entities.StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &entities.StorageError{Op: "chmod", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &entities.StorageError{Op: "rename", Path: s.path, Err: fmt.Errorf("replacing document: %w", err)}
	}
	return nil
}

package storage

import (
	"context"
	"fmt"

	"github.com/0xcro3dile/snapsolve/internal/domain/ports"
)

// Driver names accepted by Open.
const (
	DriverJSONFile = "jsonfile"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Open builds the store for driver and makes sure its document exists.
func Open(ctx context.Context, driver, path string) (ports.EntryStore, error) {
	var store ports.EntryStore
	switch driver {
	case "", DriverJSONFile:
		store = NewJSONFileStore(path)
	case DriverSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		store = s
	case DriverMemory:
		store = NewInMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}

	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing %s store: %w", driver, err)
	}
	return store, nil
}

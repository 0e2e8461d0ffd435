package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

func TestSQLiteStore_AppendAndLoad(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "entries.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	store.Append(ctx, entities.Entry{Timestamp: 20, Screenshot: "b.png", Mode: entities.ModeSingle, Response: "second"})
	store.Append(ctx, entities.Entry{Timestamp: 10, Screenshot: "a.png", Mode: entities.ModeTwoStage, ProblemDescription: "p", Solution: "s", CodingModel: "coder"})

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Timestamp != 20 {
		t.Error("rows should come back in insertion order, not timestamp order")
	}
	if entries[1].Mode != entities.ModeTwoStage || entries[1].Solution != "s" || entries[1].CodingModel != "coder" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	store, _ := NewSQLiteStore(filepath.Join(t.TempDir(), "entries.db"))
	defer store.Close()

	ctx := context.Background()
	store.Append(ctx, entities.Entry{Timestamp: 1, Mode: entities.ModeSingle})
	store.Append(ctx, entities.Entry{Timestamp: 2, Mode: entities.ModeSingle})

	if err := store.Save(ctx, []entities.Entry{{Timestamp: 3, Mode: entities.ModeSingle}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	entries, _ := store.Load(ctx)
	if len(entries) != 1 || entries[0].Timestamp != 3 {
		t.Errorf("expected only the saved entry, got %+v", entries)
	}
}

func TestSQLiteStore_EmptyLoad(t *testing.T) {
	store, _ := NewSQLiteStore(filepath.Join(t.TempDir(), "entries.db"))
	defer store.Close()

	entries, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty list, got %#v", entries)
	}
}

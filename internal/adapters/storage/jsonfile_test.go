package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
)

func newTestStore(t *testing.T) *JSONFileStore {
	t.Helper()
	store := NewJSONFileStore(filepath.Join(t.TempDir(), "data", "storage.json"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return store
}

func TestJSONFileStore_InitCreatesEmptyList(t *testing.T) {
	store := newTestStore(t)

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("document not created: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("unexpected initial content: %q", data)
	}

	entries, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func TestJSONFileStore_InitKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	os.WriteFile(path, []byte(`[{"timestamp":1,"screenshot":"a.png","response":"x"}]`), 0644)

	store := NewJSONFileStore(path)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	entries, _ := store.Load(context.Background())
	if len(entries) != 1 {
		t.Errorf("init should not truncate, got %d entries", len(entries))
	}
}

func TestJSONFileStore_EmptyFileLoadsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	os.WriteFile(path, nil, 0644)

	entries, err := NewJSONFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty list, got %#v", entries)
	}
}

func TestJSONFileStore_InvalidJSONIsParseError(t *testing.T) {
	for _, content := range []string{"{not json", `{"timestamp":1}`, "null"} {
		path := filepath.Join(t.TempDir(), "storage.json")
		os.WriteFile(path, []byte(content), 0644)

		_, err := NewJSONFileStore(path).Load(context.Background())
		var perr *entities.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%q: expected ParseError, got %v", content, err)
		}
	}
}

func TestJSONFileStore_MissingFileIsStorageError(t *testing.T) {
	store := NewJSONFileStore(filepath.Join(t.TempDir(), "nope.json"))
	_, err := store.Load(context.Background())

	var serr *entities.StorageError
	if !errors.As(err, &serr) {
		t.Errorf("expected StorageError, got %v", err)
	}
}

func TestJSONFileStore_AppendGrowsByOne(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := store.Append(ctx, entities.Entry{
			Timestamp:  int64(i),
			Screenshot: fmt.Sprintf("screenshot-%d.png", i),
			Mode:       entities.ModeSingle,
			Response:   "answer",
		})
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}

		entries, _ := store.Load(ctx)
		if len(entries) != i {
			t.Fatalf("expected %d entries, got %d", i, len(entries))
		}
		if entries[i-1].Timestamp != int64(i) {
			t.Errorf("append did not go to the end")
		}
	}
}

func TestJSONFileStore_SaveLoadIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Save(ctx, []entities.Entry{
		{Timestamp: 2, Screenshot: "b.png", Mode: entities.ModeSingle, Response: "line1\nline2"},
		{Timestamp: 1, Screenshot: "a.png", Mode: entities.ModeTwoStage, ProblemDescription: "p", Solution: "s <b>"},
	})
	before, _ := os.ReadFile(store.Path())

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := store.Save(ctx, entries); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	after, _ := os.ReadFile(store.Path())

	if string(before) != string(after) {
		t.Errorf("save(load()) changed the document:\n%s\n---\n%s", before, after)
	}
	if entries[0].Timestamp != 2 {
		t.Error("order should be preserved")
	}
}

func TestJSONFileStore_KeepsCodeReadable(t *testing.T) {
	store := newTestStore(t)
	store.Append(context.Background(), entities.Entry{
		Timestamp: 1,
		Mode:      entities.ModeSingle,
		Response:  "if a < b && c > d {",
	})

	data, _ := os.ReadFile(store.Path())
	if !strings.Contains(string(data), `"if a < b && c > d {"`) {
		t.Errorf("operators should be stored unescaped:\n%s", data)
	}
	if strings.HasSuffix(string(data), "\n") {
		t.Error("document should not end with a newline")
	}
}

func TestJSONFileStore_NoTempFilesLeft(t *testing.T) {
	store := newTestStore(t)
	store.Append(context.Background(), entities.Entry{Timestamp: 1, Mode: entities.ModeSingle})

	files, _ := os.ReadDir(filepath.Dir(store.Path()))
	if len(files) != 1 {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name()
		}
		t.Errorf("expected only the document, found %v", names)
	}
}

func TestJSONFileStore_ConcurrentReadersSeeCompleteDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if err := store.Append(ctx, entities.Entry{Timestamp: int64(i), Mode: entities.ModeSingle, Response: "r"}); err != nil {
				errs <- err
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				// Fresh store on the same path: no shared lock, only the rename.
				if _, err := NewJSONFileStore(store.Path()).Load(ctx); err != nil {
					errs <- err
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent access failed: %v", err)
	}

	entries, _ := store.Load(ctx)
	if len(entries) != 20 {
		t.Errorf("expected 20 entries, got %d", len(entries))
	}
}

package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/0xcro3dile/snapsolve/internal/domain/entities"
	"github.com/0xcro3dile/snapsolve/internal/domain/ports"
)

// EntriesUseCase answers read-side questions about stored entries.
// Every call re-reads the store; there is no cache.
type EntriesUseCase struct {
	store ports.EntryStore
}

// NewEntriesUseCase creates an EntriesUseCase.
func NewEntriesUseCase(store ports.EntryStore) *EntriesUseCase {
	return &EntriesUseCase{store: store}
}

// All returns the stored entries exactly as persisted.
func (uc *EntriesUseCase) All(ctx context.Context) ([]entities.Entry, error) {
	entries, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []entities.Entry{}
	}
	return entries, nil
}

// Newest returns entries newest first.
func (uc *EntriesUseCase) Newest(ctx context.Context) ([]entities.Entry, error) {
	entries, err := uc.All(ctx)
	if err != nil {
		return nil, err
	}
	return NewestFirst(entries), nil
}

// Find returns the first entry with the given timestamp. When screenshot is
// non-empty it must match too, which disambiguates same-millisecond entries.
func (uc *EntriesUseCase) Find(ctx context.Context, timestamp int64, screenshot string) (entities.Entry, bool, error) {
	entries, err := uc.All(ctx)
	if err != nil {
		return entities.Entry{}, false, err
	}
	for _, e := range entries {
		if e.Timestamp != timestamp {
			continue
		}
		if screenshot != "" && e.Screenshot != screenshot {
			continue
		}
		return e, true, nil
	}
	return entities.Entry{}, false, nil
}

// NewestFirst returns a copy of entries ordered by timestamp descending.
// Equal timestamps keep reverse insertion order, so for a chronologically
// appended document this is the same as reversing it.
func NewestFirst(entries []entities.Entry) []entities.Entry {
	out := make([]entities.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// Preview truncates text for list views.
func Preview(text string, limit int) string {
	if text == "" {
		return "No description available"
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return fmt.Sprintf("%s...", string(runes[:limit]))
}

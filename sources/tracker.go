package sources

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
)

// Tracker is the set of sources whose pipeline completed at least once.
type Tracker struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	store Storage
}

func NewTracker(store Storage) *Tracker {
	return &Tracker{
		ids:   make(map[string]struct{}),
		store: store,
	}
}

// Load merges the persisted set into memory.
func (t *Tracker) Load(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, ok, err := t.store.Get(ctx, processedKey)
	if err != nil {
		slog.Warn("could not load processed sources", "err", err)
		return
	}
	if !ok {
		return
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		slog.Warn("ignoring malformed processed sources", "err", err)
		return
	}
	for _, id := range ids {
		t.ids[id] = struct{}{}
	}
}

func (t *Tracker) HasProcessed(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.ids[id]
	return ok
}

func (t *Tracker) MarkProcessed(ctx context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.ids[id]; ok {
		return
	}
	t.ids[id] = struct{}{}
	t.persist(ctx)
}

func (t *Tracker) Unmark(ctx context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.ids[id]; !ok {
		return
	}
	delete(t.ids, id)
	t.persist(ctx)
}

func (t *Tracker) persist(ctx context.Context) {
	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		slog.Warn("could not encode processed sources", "err", err)
		return
	}
	if err := t.store.Set(ctx, processedKey, string(data)); err != nil {
		slog.Warn("could not persist processed sources", "err", err)
	}
}

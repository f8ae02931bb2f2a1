package sources

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Persisted key layout.
const (
	transcriptPrefix  = "source_transcript_"
	summaryPrefix     = "source_summary_"
	textContentPrefix = "source_textContent_"
	processedKey      = "processedSources"
)

func TranscriptKey(id string) string { return transcriptPrefix + id }
func SummaryKey(id string) string { return summaryPrefix + id }
func TextContentKey(id string) string { return textContentPrefix + id }

// Cache holds the derived artifacts of every source in memory and mirrors
// successful artifacts into a Storage. Storage failures are logged and never
// surface to callers; memory stays authoritative for the session.
type Cache struct {
	mu      sync.Mutex
	entries map[string]CacheEntry
	store   Storage
}

func NewCache(store Storage) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		store:   store,
	}
}

// Load seeds memory from storage. Entries already in memory win over the
// stored values.
func (c *Cache) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	load := func(prefix string, set func(e *CacheEntry, a *Artifact)) {
		kvs, err := c.store.Scan(ctx, prefix)
		if err != nil {
			slog.Warn("could not load cache from storage", "prefix", prefix, "err", err)
			return
		}
		for k, v := range kvs {
			id := strings.TrimPrefix(k, prefix)
			if id == "" {
				continue
			}
			e := c.entries[id]
			e.SourceID = id
			set(&e, Ok(v))
			c.entries[id] = e
		}
	}

	load(transcriptPrefix, func(e *CacheEntry, a *Artifact) {
		if e.Transcript == nil {
			e.Transcript = a
		}
	})
	load(summaryPrefix, func(e *CacheEntry, a *Artifact) {
		if e.Summary == nil {
			e.Summary = a
		}
	})
	load(textContentPrefix, func(e *CacheEntry, a *Artifact) {
		if e.ExtractedText == nil {
			e.ExtractedText = a
		}
	})
}

func (c *Cache) Get(id string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	return e, ok
}

// Upsert merges the non-nil fields of f into the entry for id and persists
// them. A failed artifact never replaces a successful one.
func (c *Cache) Upsert(ctx context.Context, id string, f Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[id]
	e.SourceID = id

	var applied bool
	e.Transcript, applied = merge(e.Transcript, f.Transcript)
	if applied {
		c.persist(ctx, TranscriptKey(id), e.Transcript)
	}
	e.Summary, applied = merge(e.Summary, f.Summary)
	if applied {
		c.persist(ctx, SummaryKey(id), e.Summary)
	}
	e.ExtractedText, applied = merge(e.ExtractedText, f.ExtractedText)
	if applied {
		c.persist(ctx, TextContentKey(id), e.ExtractedText)
	}

	c.entries[id] = e
}

// Evict removes the entry for id from memory and storage.
func (c *Cache) Evict(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
	if err := c.store.Delete(ctx, TranscriptKey(id), SummaryKey(id), TextContentKey(id)); err != nil {
		slog.Warn("could not remove cached artifacts from storage", "source", id, "err", err)
	}
}

func merge(cur, next *Artifact) (*Artifact, bool) {
	if next == nil {
		return cur, false
	}
	if cur.OK() && !next.OK() {
		return cur, false
	}
	a := *next
	return &a, true
}

// persist writes successful artifacts only; failures are session state.
func (c *Cache) persist(ctx context.Context, key string, a *Artifact) {
	if !a.OK() {
		return
	}
	if err := c.store.Set(ctx, key, a.Text); err != nil {
		slog.Warn("could not persist artifact", "key", key, "err", err)
	}
}

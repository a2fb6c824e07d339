// Package memory implements the in-memory cache backend: a container/list
// LRU with lazy TTL expiry plus a per-calendar tracking index that makes
// pattern deletion O(tracked) instead of O(|LRU|) whenever the pattern's
// calendar id can be extracted.
package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"calendar-backend/internal/cache"
	"github.com/google/uuid"
)

type cacheItem struct {
	key        string
	value      []byte
	expiresAt  time.Time
	hasTTL     bool
	lruElement *list.Element
}

// Backend is the in-memory Cache implementation. Two locks are held: one
// over the LRU (items + list), one over the tracking index; the LRU lock is
// always acquired after the tracking lock to avoid deadlock under
// DeletePattern, the only operation that touches both.
type Backend struct {
	mu       sync.Mutex
	items    map[string]*cacheItem
	lru      *list.List
	maxItems int

	trackMu  sync.Mutex
	tracking map[uuid.UUID]map[string]struct{}

	logger *zap.Logger

	hits, misses, evictions int64
}

// New constructs a Backend with capacity maxEntries. Panics if maxEntries
// is not positive.
func New(maxEntries int, logger *zap.Logger) *Backend {
	if maxEntries <= 0 {
		panic("cache/memory: maxEntries must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		items:    make(map[string]*cacheItem),
		lru:      list.New(),
		maxItems: maxEntries,
		tracking: make(map[uuid.UUID]map[string]struct{}),
		logger:   logger,
	}
}

var _ cache.Cache = (*Backend)(nil)

// Get returns a miss without removing the entry if it has expired (lazy
// expiry; eviction by capacity removes the least recently used entry
// whether or not it has expired).
func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[key]
	if !ok {
		b.misses++
		return nil, false, nil
	}
	if item.hasTTL && time.Now().After(item.expiresAt) {
		b.misses++
		return nil, false, nil
	}
	b.lru.MoveToFront(item.lruElement)
	b.hits++

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, true, nil
}

// Set overwrites key and, if key classifies as a calendar entry range key,
// registers it in that calendar's tracking set.
func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	if existing, ok := b.items[key]; ok {
		b.removeLocked(existing)
	}
	for b.lru.Len() >= b.maxItems {
		oldest := b.lru.Back()
		if oldest == nil {
			break
		}
		b.removeLocked(oldest.Value.(*cacheItem))
		b.evictions++
	}
	item := &cacheItem{key: key, value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.hasTTL = true
		item.expiresAt = time.Now().Add(ttl)
	}
	item.lruElement = b.lru.PushFront(item)
	b.items[key] = item
	b.mu.Unlock()

	if cid, ok := cache.ExtractCalendarIDFromKey(key); ok && cache.IsCalendarEntryKey(key) {
		b.track(cid, key)
	}
	return nil
}

// Delete applies the key-class-driven deletion policy.
func (b *Backend) Delete(ctx context.Context, key string) error {
	switch cache.Classify(key) {
	case cache.ClassCalendarMetadata:
		cid, _ := cache.ExtractCalendarIDFromKey(key)
		for _, k := range b.trackedKeys(cid) {
			b.deletePlain(k)
		}
		b.clearTracking(cid)
		b.deletePlain(key)
	case cache.ClassCalendarEntryRange:
		cid, _ := cache.ExtractCalendarIDFromKey(key)
		b.deletePlain(key)
		b.untrack(cid, key)
	default:
		b.deletePlain(key)
	}
	return nil
}

// DeletePattern restricts iteration to one calendar's tracking set when the
// pattern carries an extractable calendar id (O(|tracking set|)); otherwise
// it falls back to a full LRU scan (O(|LRU|)). This backend is the only
// one that performs that fallback.
func (b *Backend) DeletePattern(ctx context.Context, pattern string) error {
	if cid, ok := cache.ExtractCalendarIDFromPattern(pattern); ok {
		for _, k := range b.trackedKeys(cid) {
			if cache.MatchGlob(k, pattern) {
				b.deletePlain(k)
				b.untrack(cid, k)
			}
		}
		return nil
	}

	b.mu.Lock()
	var toDelete []*cacheItem
	for k, item := range b.items {
		if cache.MatchGlob(k, pattern) {
			toDelete = append(toDelete, item)
		}
	}
	for _, item := range toDelete {
		b.removeLocked(item)
	}
	b.mu.Unlock()

	b.logger.Debug("memory cache: pattern delete fallback scan", zap.String("pattern", pattern), zap.Int("removed", len(toDelete)))
	return nil
}

func (b *Backend) deletePlain(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if item, ok := b.items[key]; ok {
		b.removeLocked(item)
	}
}

// removeLocked must be called with b.mu held.
func (b *Backend) removeLocked(item *cacheItem) {
	if item.lruElement != nil {
		b.lru.Remove(item.lruElement)
	}
	delete(b.items, item.key)
}

func (b *Backend) track(cid uuid.UUID, key string) {
	b.trackMu.Lock()
	defer b.trackMu.Unlock()
	set, ok := b.tracking[cid]
	if !ok {
		set = make(map[string]struct{})
		b.tracking[cid] = set
	}
	set[key] = struct{}{}
}

func (b *Backend) untrack(cid uuid.UUID, key string) {
	b.trackMu.Lock()
	defer b.trackMu.Unlock()
	set, ok := b.tracking[cid]
	if !ok {
		return
	}
	delete(set, key)
	if len(set) == 0 {
		delete(b.tracking, cid)
	}
}

func (b *Backend) clearTracking(cid uuid.UUID) {
	b.trackMu.Lock()
	defer b.trackMu.Unlock()
	delete(b.tracking, cid)
}

func (b *Backend) trackedKeys(cid uuid.UUID) []string {
	b.trackMu.Lock()
	defer b.trackMu.Unlock()
	set := b.tracking[cid]
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return keys
}

// Stats reports running counters for observability wiring.
type Stats struct {
	Hits, Misses, Evictions int64
	Items                   int
}

func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{Hits: b.hits, Misses: b.misses, Evictions: b.evictions, Items: len(b.items)}
}

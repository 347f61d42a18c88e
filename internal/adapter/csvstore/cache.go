package csvstore

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wildfire-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-dashboard/internal/observability"
)

// Source is what CachedStore decorates: a loader that can also tell whether
// a source changed since it was last read.
type Source interface {
	Load(ctx context.Context, key string) (*domain.Table, error)
	Fingerprint(key string) (string, error)
}

// CachedStore wraps a Source with an in-memory LRU cache. A cached table is
// returned as long as its source fingerprint is unchanged and, when a TTL is
// set, the entry is younger than the TTL. Concurrent misses on the same key
// may both load; loads are idempotent so the last one wins.
type CachedStore struct {
	inner   Source
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// Option configures a CachedStore.
type Option func(*CachedStore)

// WithTTL expires entries after d. Zero keeps entries until evicted.
func WithTTL(d time.Duration) Option {
	return func(c *CachedStore) { c.ttl = d }
}

// WithClock sets the time source for TTL checks.
func WithClock(clock clockwork.Clock) Option {
	return func(c *CachedStore) { c.clock = clock }
}

// NewCachedStore creates a cache decorator around a source.
func NewCachedStore(inner Source, maxEntries int, metrics *observability.Metrics, opts ...Option) *CachedStore {
	c := &CachedStore{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the table for key, parsing it only on a miss.
func (c *CachedStore) Load(ctx context.Context, key string) (*domain.Table, error) {
	fp, err := c.inner.Fingerprint(key)
	if err != nil {
		return nil, err
	}
	now := c.clock.Now()
	if t, ok := c.cache.get(key, fp, c.ttl, now); ok {
		c.metrics.TableCache.WithLabelValues("hit").Inc()
		return t, nil
	}
	c.metrics.TableCache.WithLabelValues("miss").Inc()

	t, err := c.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, cached{table: t, fingerprint: fp, loadedAt: now})
	return t, nil
}

// Invalidate drops the cached copy of key.
func (c *CachedStore) Invalidate(key string) { c.cache.delete(key) }

// InvalidateAll empties the cache.
func (c *CachedStore) InvalidateAll() { c.cache.clear() }

// Len returns the number of cached tables.
func (c *CachedStore) Len() int { return c.cache.len() }

type cached struct {
	table       *domain.Table
	fingerprint string
	loadedAt    time.Time
}

// lruCache holds loaded tables, most recently used at the front of order.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
}

type entry struct {
	key   string
	value cached
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// get returns the table for key when it matches fp and has not expired.
// Stale entries are dropped.
func (c *lruCache) get(key, fp string, ttl time.Duration, now time.Time) (*domain.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	v := el.Value.(*entry).value
	if v.fingerprint != fp || (ttl > 0 && now.Sub(v.loadedAt) >= ttl) {
		c.drop(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return v.table, true
}

func (c *lruCache) put(key string, value cached) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&entry{key: key, value: value})
	for c.order.Len() > c.maxEntries {
		c.drop(c.order.Back())
	}
}

func (c *lruCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.drop(el)
	}
}

func (c *lruCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.order.Init()
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// drop removes el from both the index and the recency list. Callers hold mu.
func (c *lruCache) drop(el *list.Element) {
	delete(c.entries, el.Value.(*entry).key)
	c.order.Remove(el)
}

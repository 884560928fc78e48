package render

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Store persists rendered artifacts by key.
// Get reports ok=false on a miss; a miss is not an error.
type Store interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes renders of the same key, typically across processes sharing a Store.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// CacheMetrics counts cache lookups.
type CacheMetrics struct {
	lookups *prometheus.CounterVec
}

// NewCacheMetrics registers the cache counters on reg.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdgraph_render_cache_lookups_total",
				Help: "Render cache lookups by result (hit, miss, error).",
			},
			[]string{"result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.lookups)
	}
	return m
}

func (m *CacheMetrics) observe(result string) {
	if m != nil {
		m.lookups.WithLabelValues(result).Inc()
	}
}

// Cache wraps a Renderer and keeps rendered bytes in a Store.
// Keys are the sha256 of the DOT text combined with the format. Errors are never cached.
type Cache struct {
	next    Renderer
	store   Store
	ttl     time.Duration
	metrics *CacheMetrics

	locker  Locker
	lockTTL time.Duration
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStore replaces the default MemoryStore.
func WithStore(s Store) CacheOption {
	return func(c *Cache) {
		if s != nil {
			c.store = s
		}
	}
}

// WithMetrics records lookups on m.
func WithMetrics(m *CacheMetrics) CacheOption {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithLocker makes concurrent misses on the same key wait for a single render.
// ttl bounds how long a crashed holder can block others.
func WithLocker(l Locker, ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.locker = l
		c.lockTTL = ttl
	}
}

// NewCache creates a cache in front of next. A non-positive ttl keeps entries forever.
func NewCache(next Renderer, ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		next:  next,
		store: NewMemoryStore(),
		ttl:   ttl,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RenderDOT returns the cached artifact when present, rendering and storing it otherwise.
// A failing store degrades to rendering without caching.
func (c *Cache) RenderDOT(ctx context.Context, dot string, format string) ([]byte, error) {
	key := CacheKey(dot, format)

	data, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.metrics.observe("error")
	case ok:
		c.metrics.observe("hit")
		return data, nil
	default:
		c.metrics.observe("miss")
	}

	if c.locker != nil {
		unlock, err := c.locker.Lock(ctx, key, c.lockTTL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		} else {
			defer func() { _ = unlock(context.WithoutCancel(ctx)) }()
			// Another holder may have rendered while we waited.
			if data, ok, err := c.store.Get(ctx, key); err == nil && ok {
				return data, nil
			}
		}
	}

	data, err = c.next.RenderDOT(ctx, dot, format)
	if err != nil {
		return nil, err
	}
	_ = c.store.Set(ctx, key, data, c.ttl)
	return data, nil
}

// CacheKey derives the store key of a render request.
func CacheKey(dot string, format string) string {
	return fmt.Sprintf("%x:%s", sha256.Sum256([]byte(dot)), format)
}

// memorySweepInterval bounds how often Set scans for expired entries.
const memorySweepInterval = time.Minute

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is an in-process Store with per-entry expiry. Expired entries are
// dropped when read and swept periodically on write.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Store. Expired entries are reported as misses and removed.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expired(s.now()) {
		return e.data, true, nil
	}

	s.mu.Lock()
	// A concurrent Set may have refreshed the key in between.
	if cur, ok := s.entries[key]; ok && cur.expired(s.now()) {
		delete(s.entries, key)
	}
	s.mu.Unlock()
	return nil, false, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	now := s.now()
	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	s.mu.Lock()
	if now.Sub(s.lastSweep) >= memorySweepInterval {
		s.sweepLocked(now)
	}
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
	s.lastSweep = now
}

// Len returns the number of stored entries. Expired entries not yet swept are counted.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes every entry.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
}

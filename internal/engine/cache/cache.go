// Package cache implements the bounded, least-recently-used mesh cache.
package cache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// entry is the cached value for one key. The shape is kept so lookups can
// tell a genuine hit from a hash collision.
type entry struct {
	shape domain.ShapeVector
	mesh  *domain.Mesh
}

// Option configures a BoundedCache.
type Option func(*BoundedCache)

// WithEvictionCallback registers fn to be called with the key of every entry
// dropped to honor the capacity bound. It is not called by InvalidateAll.
// fn runs while the cache lock is held and must not call back into the cache.
func WithEvictionCallback(fn func(domain.ShapeKey)) Option {
	return func(c *BoundedCache) {
		c.onEvict = fn
	}
}

// BoundedCache maps shape keys to meshes with strict LRU eviction.
// All operations are serialized by a single mutex.
type BoundedCache struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[domain.ShapeKey, entry]
	capacity int
	onEvict  func(domain.ShapeKey)
	purging  bool

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding at most capacity meshes.
func New(capacity int, opts ...Option) (*BoundedCache, error) {
	if capacity <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "cache capacity must be positive"), "capacity", capacity)
	}

	c := &BoundedCache{capacity: capacity}
	for _, opt := range opts {
		opt(c)
	}

	l, err := simplelru.NewLRU[domain.ShapeKey, entry](capacity, c.evicted)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create lru")
	}
	c.lru = l
	return c, nil
}

// evicted runs under c.mu from inside the lru.
func (c *BoundedCache) evicted(key domain.ShapeKey, _ entry) {
	if c.purging {
		return
	}
	c.evictions++
	if c.onEvict != nil {
		c.onEvict(key)
	}
}

// Get returns the mesh cached for shape and marks it most recently used.
// A miss has no side effect other than the miss counter.
func (c *BoundedCache) Get(key domain.ShapeKey, shape domain.ShapeVector) (*domain.Mesh, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Peek(key)
	if !ok {
		c.misses++
		return nil, false, nil
	}
	if !e.shape.Equal(shape) {
		return nil, false, collision(key)
	}

	c.lru.Get(key)
	c.hits++
	return e.mesh, true, nil
}

// Contains reports whether shape is cached without touching recency or counters.
func (c *BoundedCache) Contains(key domain.ShapeKey, shape domain.ShapeVector) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Peek(key)
	return ok && e.shape.Equal(shape)
}

// Put inserts mesh for shape, evicting the least recently used entry when full.
// An existing entry for the same shape is overwritten.
func (c *BoundedCache) Put(key domain.ShapeKey, shape domain.ShapeVector, mesh *domain.Mesh) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lru.Peek(key); ok && !e.shape.Equal(shape) {
		return collision(key)
	}

	c.lru.Add(key, entry{shape: shape, mesh: mesh})
	return nil
}

// InvalidateAll drops every entry. Counters are kept.
func (c *BoundedCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purging = true
	c.lru.Purge()
	c.purging = false
}

// Len returns the number of cached meshes.
func (c *BoundedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Capacity returns the maximum number of cached meshes.
func (c *BoundedCache) Capacity() int {
	return c.capacity
}

// Keys returns the cached keys from least to most recently used.
func (c *BoundedCache) Keys() []domain.ShapeKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}

// Stats returns a snapshot of the cache counters.
func (c *BoundedCache) Stats() domain.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return domain.CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Len:       c.lru.Len(),
		Capacity:  c.capacity,
	}
}

func collision(key domain.ShapeKey) error {
	return zerr.With(zerr.Wrap(domain.ErrKeyCollision, "different shape cached under key"), "key", key.String())
}

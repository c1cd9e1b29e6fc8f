// Package scheduler tracks per-shape mesh work and runs it on a pool of workers.
package scheduler

import (
	"sync"

	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/meshcache/internal/engine/cache"
	"go.trai.ch/zerr"
)

// record is the work record of one shape. Fields other than done are guarded by
// Coordinator.mu until done is closed; after that mesh and err are read-only.
type record struct {
	key        domain.ShapeKey
	shape      domain.ShapeVector
	state      domain.WorkState
	generation uint64
	done       chan struct{}
	mesh       *domain.Mesh
	err        error
}

// Ticket is the handle returned by Submit. Done closes once the record reaches a
// terminal state, after which Result reports the outcome.
type Ticket struct {
	Key    domain.ShapeKey
	Status domain.SubmitStatus
	rec    *record
}

// Done returns a channel that is closed when the work finishes.
func (t Ticket) Done() <-chan struct{} {
	return t.rec.done
}

// Result returns the mesh or the failure. It must only be called after Done is closed.
func (t Ticket) Result() (*domain.Mesh, error) {
	return t.rec.mesh, t.rec.err
}

// WorkItem is a claimed unit of work.
type WorkItem struct {
	Key   domain.ShapeKey
	Shape domain.ShapeVector
	// Generation is the configuration generation current when the item was claimed.
	Generation uint64
	rec        *record
}

// Coordinator owns the work records. At most one record exists per key, and a
// record is claimed by at most one worker, so no shape is ever computed twice concurrently.
//
// Lock order is Coordinator.mu then the cache's own lock.
type Coordinator struct {
	cache *cache.BoundedCache

	mu         sync.Mutex
	cond       *sync.Cond
	records    map[domain.ShapeKey]*record
	pending    []*record
	inProgress int
	generation uint64
	discarded  uint64
	closed     bool
}

// NewCoordinator creates a Coordinator that publishes completed meshes into c.
func NewCoordinator(c *cache.BoundedCache) *Coordinator {
	co := &Coordinator{
		cache:   c,
		records: make(map[domain.ShapeKey]*record),
	}
	co.cond = sync.NewCond(&co.mu)
	return co
}

// Submit registers work for shape unless it is cached or already tracked.
// A cache hit refreshes the entry's recency.
func (c *Coordinator) Submit(key domain.ShapeKey, shape domain.ShapeVector) (Ticket, error) {
	return c.submit(key, shape, false)
}

// Prefetch is Submit without touching a cached entry's recency or the hit counters.
func (c *Coordinator) Prefetch(key domain.ShapeKey, shape domain.ShapeVector) (Ticket, error) {
	return c.submit(key, shape, true)
}

func (c *Coordinator) submit(key domain.ShapeKey, shape domain.ShapeVector, peek bool) (Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Ticket{}, domain.ErrManagerStopped
	}

	if rec, ok := c.records[key]; ok {
		if !rec.shape.Equal(shape) {
			return Ticket{}, zerr.With(zerr.Wrap(domain.ErrKeyCollision, "different shape queued under key"), "key", key.String())
		}
		return Ticket{Key: key, Status: domain.SubmitAlreadyPending, rec: rec}, nil
	}

	if peek {
		if c.cache.Contains(key, shape) {
			return cachedTicket(key, nil), nil
		}
	} else {
		m, ok, err := c.cache.Get(key, shape)
		if err != nil {
			return Ticket{}, err
		}
		if ok {
			return cachedTicket(key, m), nil
		}
	}

	rec := &record{
		key:   key,
		shape: shape,
		state: domain.WorkStatePending,
		done:  make(chan struct{}),
	}
	c.records[key] = rec
	c.pending = append(c.pending, rec)
	c.cond.Signal()

	return Ticket{Key: key, Status: domain.SubmitNewlyStarted, rec: rec}, nil
}

func cachedTicket(key domain.ShapeKey, m *domain.Mesh) Ticket {
	rec := &record{key: key, state: domain.WorkStateDone, done: make(chan struct{}), mesh: m}
	close(rec.done)
	return Ticket{Key: key, Status: domain.SubmitAlreadyCached, rec: rec}
}

// Claim blocks until a pending record exists and moves the oldest one to InProgress.
// It returns false once the coordinator is closed.
func (c *Coordinator) Claim() (WorkItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.pending) == 0 && !c.closed {
		c.cond.Wait()
	}
	if c.closed {
		return WorkItem{}, false
	}

	rec := c.pending[0]
	c.pending[0] = nil
	c.pending = c.pending[1:]

	rec.state = domain.WorkStateInProgress
	rec.generation = c.generation
	c.inProgress++

	return WorkItem{
		Key:        rec.key,
		Shape:      rec.shape,
		Generation: rec.generation,
		rec:        rec,
	}, true
}

// Complete publishes mesh for a claimed item and releases every waiter.
// The mesh is only cached when the configuration has not changed since the claim
// and the coordinator is still open. Waiters receive the mesh either way.
// The returned bool reports whether the mesh was cached. Reporting an item
// that already finished is a no-op.
func (c *Coordinator) Complete(item WorkItem, mesh *domain.Mesh) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := item.rec
	if rec.state.IsTerminal() {
		return false, nil
	}
	c.release(rec)

	var (
		published bool
		err       error
	)
	if item.Generation == c.generation && !c.closed {
		err = c.cache.Put(rec.key, rec.shape, mesh)
		published = err == nil
	} else {
		c.discarded++
	}

	rec.state = domain.WorkStateDone
	rec.mesh = mesh
	close(rec.done)

	return published, err
}

// Fail drops a claimed item without caching and releases every waiter with err.
// The next request for the shape starts from scratch. Reporting an item that
// already finished is a no-op.
func (c *Coordinator) Fail(item WorkItem, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := item.rec
	if rec.state.IsTerminal() {
		return
	}
	c.release(rec)

	rec.state = domain.WorkStateFailed
	rec.err = err
	close(rec.done)
}

// release removes an in-progress record. Callers hold c.mu.
func (c *Coordinator) release(rec *record) {
	if cur, ok := c.records[rec.key]; ok && cur == rec {
		delete(c.records, rec.key)
	}
	c.inProgress--
}

// Invalidate starts a new configuration generation and empties the cache.
// In-flight work keeps running; its results reach their waiters but are not cached.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.cache.InvalidateAll()
}

// State reports where shape is in its lifecycle.
func (c *Coordinator) State(key domain.ShapeKey, shape domain.ShapeVector) domain.ShapeState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.records[key]; ok && rec.shape.Equal(shape) {
		if rec.state == domain.WorkStateInProgress {
			return domain.ShapeInProgress
		}
		return domain.ShapePending
	}
	if c.cache.Contains(key, shape) {
		return domain.ShapeCached
	}
	return domain.ShapeUncached
}

// Counts returns the number of pending and in-progress records and the number of
// results discarded because the configuration changed.
func (c *Coordinator) Counts() (pending, inProgress int, discarded uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending), c.inProgress, c.discarded
}

// Close stops handing out work. Pending records fail with ErrManagerStopped and
// blocked Claim calls return false. In-progress records still complete.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	for _, rec := range c.pending {
		delete(c.records, rec.key)
		rec.state = domain.WorkStateFailed
		rec.err = domain.ErrManagerStopped
		close(rec.done)
	}
	c.pending = nil
	c.cond.Broadcast()
}

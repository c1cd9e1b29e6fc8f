// Package manager provides the MeshManager facade: a blocking, deduplicated,
// cached front door to mesh reconstruction backed by a pool of workers.
package manager

import (
	"context"
	"sync"
	"sync/atomic"

	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/meshcache/internal/core/ports"
	"go.trai.ch/meshcache/internal/engine/cache"
	"go.trai.ch/meshcache/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// Options sizes a Manager.
type Options struct {
	// Capacity is the maximum number of cached meshes.
	Capacity int
	// Workers is the number of concurrent pipeline instances.
	Workers int
}

// OptionsFromSettings derives Options from loaded settings.
func OptionsFromSettings(s domain.Settings) Options {
	return Options{
		Capacity: s.CacheCapacity,
		Workers:  s.WorkerCount(),
	}
}

// Manager is safe for concurrent use by any number of callers.
type Manager struct {
	cache  *cache.BoundedCache
	coord  *scheduler.Coordinator
	pool   *scheduler.Pool
	logger ports.Logger

	// lifecycle orders Start against Shutdown.
	lifecycle sync.Mutex
	started   atomic.Bool
	stopped   chan struct{}
	stopOnce  sync.Once
	stopErr   error
}

// New creates a Manager. Work may be queued with Warm right away, but nothing
// is computed until Start.
func New(
	opts Options,
	factory ports.PipelineFactory,
	source ports.ConfigSource,
	logger ports.Logger,
	tracer ports.Tracer,
) (*Manager, error) {
	if opts.Workers <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "worker count must be positive"), "workers", opts.Workers)
	}

	c, err := cache.New(opts.Capacity, cache.WithEvictionCallback(func(key domain.ShapeKey) {
		logger.Debug("evicted mesh", "shape", key.String())
	}))
	if err != nil {
		return nil, err
	}

	coord := scheduler.NewCoordinator(c)
	return &Manager{
		cache:   c,
		coord:   coord,
		pool:    scheduler.NewPool(coord, factory, source, logger, tracer, opts.Workers),
		logger:  logger,
		stopped: make(chan struct{}),
	}, nil
}

// Start launches the worker pool.
func (m *Manager) Start(ctx context.Context) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.isStopped() {
		return domain.ErrManagerStopped
	}
	if err := m.pool.Start(ctx); err != nil {
		return err
	}
	m.started.Store(true)
	m.logger.Info("mesh manager started", "workers", m.pool.Size(), "capacity", m.cache.Capacity())
	return nil
}

// GetMesh returns the mesh for shape, computing it if needed. Concurrent calls
// for the same shape share a single pipeline run.
//
// Cancelling ctx abandons the wait only. The computation continues and its
// result is cached for later callers.
func (m *Manager) GetMesh(ctx context.Context, shape domain.ShapeVector) (*domain.Mesh, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if m.isStopped() {
		return nil, domain.ErrManagerStopped
	}
	if !m.started.Load() {
		return nil, domain.ErrManagerNotStarted
	}

	key := domain.NewShapeKey(shape)
	ticket, err := m.coord.Submit(key, shape.Clone())
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.SubmitAlreadyCached {
		return ticket.Result()
	}

	select {
	case <-ticket.Done():
		return ticket.Result()
	case <-m.stopped:
		return nil, domain.ErrManagerStopped
	case <-ctx.Done():
		return nil, zerr.With(zerr.Wrap(ctx.Err(), "gave up waiting for mesh"), "shape", key.String())
	}
}

// Warm queues shape for computation and returns immediately.
// It does nothing for a shape that is cached or already queued.
func (m *Manager) Warm(shape domain.ShapeVector) error {
	if err := shape.Validate(); err != nil {
		return err
	}
	if m.isStopped() {
		return domain.ErrManagerStopped
	}

	key := domain.NewShapeKey(shape)
	ticket, err := m.coord.Prefetch(key, shape.Clone())
	if err != nil {
		return err
	}
	if ticket.Status == domain.SubmitNewlyStarted {
		m.logger.Debug("warming shape", "shape", key.String())
	}
	return nil
}

// OnConfigChanged drops every cached mesh. Runs already in progress finish
// with the configuration they started with and are not cached.
func (m *Manager) OnConfigChanged() {
	if m.isStopped() {
		return
	}
	m.coord.Invalidate()
	m.logger.Info("pipeline configuration changed, mesh cache invalidated")
}

// Status reports where shape is in its lifecycle.
func (m *Manager) Status(shape domain.ShapeVector) (domain.ShapeState, error) {
	if err := shape.Validate(); err != nil {
		return domain.ShapeUncached, err
	}
	return m.coord.State(domain.NewShapeKey(shape), shape), nil
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager) Stats() domain.Stats {
	pending, inProgress, discarded := m.coord.Counts()
	return domain.Stats{
		Cache:        m.cache.Stats(),
		PipelineRuns: m.pool.Runs(),
		Failures:     m.pool.Failures(),
		Discarded:    discarded,
		Pending:      pending,
		InProgress:   inProgress,
		Workers:      m.pool.Size(),
	}
}

// Shutdown stops the workers and releases every blocked caller with
// ErrManagerStopped. It waits for running pipelines to return until ctx is done.
// Calling it again returns the first result.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.stopOnce.Do(func() {
		m.lifecycle.Lock()
		close(m.stopped)
		m.coord.Close()
		m.lifecycle.Unlock()

		if err := m.pool.Wait(ctx); err != nil {
			m.stopErr = err
			m.logger.Warn("mesh manager stopped before workers finished")
			return
		}
		m.logger.Info("mesh manager stopped")
	})
	return m.stopErr
}

func (m *Manager) isStopped() bool {
	select {
	case <-m.stopped:
		return true
	default:
		return false
	}
}

package scheduler

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/meshcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Pool runs a fixed number of workers. Each worker owns a private pipeline
// instance and loops claiming work from the Coordinator until it is closed.
type Pool struct {
	coord   *Coordinator
	factory ports.PipelineFactory
	source  ports.ConfigSource
	logger  ports.Logger
	tracer  ports.Tracer
	workers int

	wg       sync.WaitGroup
	started  atomic.Bool
	runs     atomic.Uint64
	failures atomic.Uint64
}

// NewPool creates a pool of workers that has not been started yet.
func NewPool(
	coord *Coordinator,
	factory ports.PipelineFactory,
	source ports.ConfigSource,
	logger ports.Logger,
	tracer ports.Tracer,
	workers int,
) *Pool {
	return &Pool{
		coord:   coord,
		factory: factory,
		source:  source,
		logger:  logger,
		tracer:  tracer,
		workers: workers,
	}
}

// Start creates one pipeline per worker and launches the workers.
// If any pipeline cannot be created no worker is started and the pipelines
// built so far are released.
func (p *Pool) Start(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return domain.ErrManagerAlreadyStarted
	}

	pipelines := make([]ports.ReconstructionPipeline, p.workers)
	for i := range pipelines {
		pl, err := p.factory.NewPipeline()
		if err != nil {
			for j, built := range pipelines[:i] {
				p.release(j, built)
			}
			p.started.Store(false)
			return zerr.With(zerr.Wrap(err, "failed to create pipeline"), "worker", i)
		}
		pipelines[i] = pl
	}

	for i, pl := range pipelines {
		p.wg.Add(1)
		go p.work(ctx, i, pl)
	}
	return nil
}

// Wait blocks until every worker has exited or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return zerr.Wrap(ctx.Err(), "workers did not stop in time")
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.workers
}

// Runs returns the number of pipeline invocations so far.
func (p *Pool) Runs() uint64 {
	return p.runs.Load()
}

// Failures returns the number of pipeline invocations that failed.
func (p *Pool) Failures() uint64 {
	return p.failures.Load()
}

func (p *Pool) work(ctx context.Context, id int, pl ports.ReconstructionPipeline) {
	defer p.wg.Done()

	for {
		item, ok := p.coord.Claim()
		if !ok {
			p.release(id, pl)
			p.logger.Debug("worker stopped", "worker", id)
			return
		}
		pl = p.process(ctx, id, pl, item)
	}
}

// process runs one item and reports the outcome. It returns the pipeline the
// worker should keep using, which is replaced after a panic.
func (p *Pool) process(ctx context.Context, id int, pl ports.ReconstructionPipeline, item WorkItem) ports.ReconstructionPipeline {
	cfg := p.source.Snapshot()
	p.logger.Debug("claimed shape", "worker", id, "shape", item.Key.String(), "points", item.Shape.NumPoints())

	mesh, panicked, err := p.run(ctx, pl, item, cfg)
	p.runs.Add(1)

	if err == nil && mesh.IsEmpty() {
		err = zerr.Wrap(domain.ErrEmptySurface, "pipeline returned no mesh")
	}
	if err != nil {
		p.failures.Add(1)
		pErr := domain.NewPipelineError(item.Key, err)
		p.logger.Warn("mesh reconstruction failed", "worker", id, "shape", item.Key.String(), "error", err.Error())
		p.coord.Fail(item, pErr)
		if panicked {
			return p.replace(id, pl)
		}
		return pl
	}

	published, err := p.coord.Complete(item, mesh)
	if err != nil {
		p.logger.Error(zerr.With(zerr.Wrap(err, "failed to cache mesh"), "shape", item.Key.String()))
	}
	p.logger.Debug("completed shape",
		"worker", id,
		"shape", item.Key.String(),
		"triangles", mesh.TriangleCount(),
		"cached", published,
	)
	return pl
}

// run invokes the pipeline, converting a panic into an error. The pipeline never
// sees caller cancellation: once claimed, work runs to completion.
func (p *Pool) run(
	ctx context.Context,
	pl ports.ReconstructionPipeline,
	item WorkItem,
	cfg domain.PipelineConfig,
) (mesh *domain.Mesh, panicked bool, err error) {
	ctx, span := p.tracer.Start(context.WithoutCancel(ctx), "reconstruct",
		ports.WithAttribute("shape", item.Key.String()),
		ports.WithAttribute("points", item.Shape.NumPoints()),
	)
	defer span.End()

	defer zerr.Defer(func(perr error) {
		mesh = nil
		err = zerr.Wrap(perr, "pipeline panicked")
		panicked = true
		span.RecordError(err)
	})

	mesh, err = pl.Run(ctx, item.Shape, cfg)
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	if mesh != nil {
		span.SetAttribute("triangles", mesh.TriangleCount())
	}
	return mesh, false, nil
}

// replace swaps a pipeline whose internal state may be corrupt after a panic.
func (p *Pool) replace(id int, old ports.ReconstructionPipeline) ports.ReconstructionPipeline {
	pl, err := p.factory.NewPipeline()
	if err != nil {
		p.logger.Error(zerr.With(zerr.Wrap(err, "failed to replace pipeline after panic"), "worker", id))
		return old
	}
	p.release(id, old)
	return pl
}

// release closes a pipeline that implements io.Closer.
func (p *Pool) release(id int, pl ports.ReconstructionPipeline) {
	c, ok := pl.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		p.logger.Warn("failed to close pipeline", "worker", id, "error", err.Error())
	}
}

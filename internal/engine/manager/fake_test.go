package manager_test

import (
	"context"
	"sync"
	"sync/atomic"

	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/meshcache/internal/core/ports"
)

// countingFactory hands out pipelines that share one invocation log.
type countingFactory struct {
	mu    sync.Mutex
	runs  map[domain.ShapeKey]int
	total atomic.Int32
	// gate, when set, blocks every run until it is closed.
	gate chan struct{}
	// fail, when set, decides per call whether the run fails.
	fail func(domain.ShapeVector, int) error
	// seen records the configuration of every run.
	seen []domain.PipelineConfig
}

func newCountingFactory() *countingFactory {
	return &countingFactory{runs: make(map[domain.ShapeKey]int)}
}

func (f *countingFactory) NewPipeline() (ports.ReconstructionPipeline, error) {
	return &countingPipeline{f: f}, nil
}

func (f *countingFactory) runsFor(shape domain.ShapeVector) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs[domain.NewShapeKey(shape)]
}

func (f *countingFactory) configs() []domain.PipelineConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PipelineConfig(nil), f.seen...)
}

type countingPipeline struct {
	f *countingFactory
}

func (p *countingPipeline) Run(_ context.Context, shape domain.ShapeVector, cfg domain.PipelineConfig) (*domain.Mesh, error) {
	f := p.f
	f.total.Add(1)

	f.mu.Lock()
	key := domain.NewShapeKey(shape)
	f.runs[key]++
	n := f.runs[key]
	f.seen = append(f.seen, cfg)
	gate, fail := f.gate, f.fail
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail != nil {
		if err := fail(shape, n); err != nil {
			return nil, err
		}
	}

	p0 := shape.Point(0)
	return domain.NewMesh(
		[][3]float64{p0, {p0[0] + 1, p0[1], p0[2]}, {p0[0], p0[1] + 1, p0[2]}},
		[][3]float64{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		[][3]int{{0, 1, 2}},
	), nil
}

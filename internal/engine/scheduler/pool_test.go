package scheduler_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/meshcache/internal/adapters/logger"
	"go.trai.ch/meshcache/internal/adapters/telemetry"
	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/meshcache/internal/core/ports"
	"go.trai.ch/meshcache/internal/core/ports/mocks"
	"go.trai.ch/meshcache/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

func quietLogger() ports.Logger {
	l := logger.New()
	l.SetOutput(io.Discard)
	return l
}

func fixedSource(ctrl *gomock.Controller, cfg domain.PipelineConfig) *mocks.MockConfigSource {
	src := mocks.NewMockConfigSource(ctrl)
	src.EXPECT().Snapshot().Return(cfg).AnyTimes()
	return src
}

func stopPool(t *testing.T, co *scheduler.Coordinator, pool *scheduler.Pool) {
	t.Helper()
	co.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Wait(ctx))
}

func TestPool_Start_FactoryErrorStartsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	co, _ := newCoordinator(t, 4)

	factory := mocks.NewMockPipelineFactory(ctrl)
	gomock.InOrder(
		factory.EXPECT().NewPipeline().Return(mocks.NewMockReconstructionPipeline(ctrl), nil),
		factory.EXPECT().NewPipeline().Return(nil, errors.New("no solver")),
	)

	pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
		quietLogger(), telemetry.NewNoOpTracer(), 3)

	err := pool.Start(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no solver")

	require.NoError(t, pool.Wait(t.Context()))
}

// closingPipeline counts how often the pool closes it.
type closingPipeline struct {
	*mocks.MockReconstructionPipeline
	closed atomic.Int32
}

func (c *closingPipeline) Close() error {
	c.closed.Add(1)
	return nil
}

func TestPool_Start_FactoryErrorClosesBuiltPipelines(t *testing.T) {
	ctrl := gomock.NewController(t)
	co, _ := newCoordinator(t, 4)

	built := &closingPipeline{MockReconstructionPipeline: mocks.NewMockReconstructionPipeline(ctrl)}
	factory := mocks.NewMockPipelineFactory(ctrl)
	gomock.InOrder(
		factory.EXPECT().NewPipeline().Return(built, nil),
		factory.EXPECT().NewPipeline().Return(nil, errors.New("no solver")),
	)

	pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
		quietLogger(), telemetry.NewNoOpTracer(), 2)

	require.Error(t, pool.Start(t.Context()))
	assert.Equal(t, int32(1), built.closed.Load())
}

func TestPool_Start_Twice(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		co, _ := newCoordinator(t, 4)

		factory := mocks.NewMockPipelineFactory(ctrl)
		factory.EXPECT().NewPipeline().Return(mocks.NewMockReconstructionPipeline(ctrl), nil).Times(2)

		pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
			quietLogger(), telemetry.NewNoOpTracer(), 2)

		require.NoError(t, pool.Start(t.Context()))
		require.ErrorIs(t, pool.Start(t.Context()), domain.ErrManagerAlreadyStarted)
		assert.Equal(t, 2, pool.Size())

		stopPool(t, co, pool)
	})
}

func TestPool_ComputesEachShapeOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		co, c := newCoordinator(t, 4)
		k, s := shape(1)
		cfg := domain.DefaultPipelineConfig()
		cfg.SmoothingIterations = 3

		release := make(chan struct{})
		var calls atomic.Int32
		m := triangle()

		pl := mocks.NewMockReconstructionPipeline(ctrl)
		pl.EXPECT().Run(gomock.Any(), s, cfg).DoAndReturn(
			func(context.Context, domain.ShapeVector, domain.PipelineConfig) (*domain.Mesh, error) {
				calls.Add(1)
				<-release
				return m, nil
			}).Times(1)

		factory := mocks.NewMockPipelineFactory(ctrl)
		factory.EXPECT().NewPipeline().Return(pl, nil).Times(1)

		pool := scheduler.NewPool(co, factory, fixedSource(ctrl, cfg), quietLogger(), telemetry.NewNoOpTracer(), 1)
		require.NoError(t, pool.Start(t.Context()))

		tickets := make([]scheduler.Ticket, 0, 8)
		for range 8 {
			ticket, err := co.Submit(k, s)
			require.NoError(t, err)
			tickets = append(tickets, ticket)
		}
		synctest.Wait()
		assert.Equal(t, domain.ShapeInProgress, co.State(k, s))

		close(release)
		for _, ticket := range tickets {
			<-ticket.Done()
			got, err := ticket.Result()
			require.NoError(t, err)
			assert.Same(t, m, got)
		}

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, uint64(1), pool.Runs())
		assert.Equal(t, 1, c.Len())

		stopPool(t, co, pool)
	})
}

func TestPool_DistinctShapesRunInParallel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		co, c := newCoordinator(t, 4)

		var active, peak atomic.Int32
		release := make(chan struct{})
		newPipeline := func() ports.ReconstructionPipeline {
			pl := mocks.NewMockReconstructionPipeline(ctrl)
			pl.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(context.Context, domain.ShapeVector, domain.PipelineConfig) (*domain.Mesh, error) {
					n := active.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					<-release
					active.Add(-1)
					return triangle(), nil
				}).AnyTimes()
			return pl
		}

		factory := mocks.NewMockPipelineFactory(ctrl)
		factory.EXPECT().NewPipeline().DoAndReturn(func() (ports.ReconstructionPipeline, error) {
			return newPipeline(), nil
		}).Times(3)

		pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
			quietLogger(), telemetry.NewNoOpTracer(), 3)
		require.NoError(t, pool.Start(t.Context()))

		tickets := make([]scheduler.Ticket, 0, 3)
		for i := range 3 {
			k, s := shape(float64(i + 1))
			ticket, err := co.Submit(k, s)
			require.NoError(t, err)
			tickets = append(tickets, ticket)
		}

		synctest.Wait()
		assert.Equal(t, int32(3), peak.Load())

		close(release)
		for _, ticket := range tickets {
			<-ticket.Done()
		}
		assert.Equal(t, 3, c.Len())

		stopPool(t, co, pool)
	})
}

func TestPool_FailureIsReportedAndNotCached(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		co, c := newCoordinator(t, 4)
		k, s := shape(1)

		pl := mocks.NewMockReconstructionPipeline(ctrl)
		gomock.InOrder(
			pl.EXPECT().Run(gomock.Any(), s, gomock.Any()).Return(nil, domain.ErrDegenerateShape),
			pl.EXPECT().Run(gomock.Any(), s, gomock.Any()).Return(triangle(), nil),
		)
		factory := mocks.NewMockPipelineFactory(ctrl)
		factory.EXPECT().NewPipeline().Return(pl, nil)

		pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
			quietLogger(), telemetry.NewNoOpTracer(), 1)
		require.NoError(t, pool.Start(t.Context()))

		ticket, err := co.Submit(k, s)
		require.NoError(t, err)
		<-ticket.Done()
		_, err = ticket.Result()
		require.ErrorIs(t, err, domain.ErrPipelineFailed)
		require.ErrorIs(t, err, domain.ErrDegenerateShape)

		var pErr *domain.PipelineError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, k, pErr.Key)
		assert.Zero(t, c.Len())

		retry, err := co.Submit(k, s)
		require.NoError(t, err)
		assert.Equal(t, domain.SubmitNewlyStarted, retry.Status)
		<-retry.Done()
		_, err = retry.Result()
		require.NoError(t, err)

		assert.Equal(t, uint64(2), pool.Runs())
		assert.Equal(t, uint64(1), pool.Failures())

		stopPool(t, co, pool)
	})
}

func TestPool_EmptyMeshIsAFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		co, c := newCoordinator(t, 4)
		k, s := shape(1)

		pl := mocks.NewMockReconstructionPipeline(ctrl)
		pl.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.NewMesh(nil, nil, nil), nil)
		factory := mocks.NewMockPipelineFactory(ctrl)
		factory.EXPECT().NewPipeline().Return(pl, nil)

		pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
			quietLogger(), telemetry.NewNoOpTracer(), 1)
		require.NoError(t, pool.Start(t.Context()))

		ticket, err := co.Submit(k, s)
		require.NoError(t, err)
		<-ticket.Done()
		_, err = ticket.Result()
		require.ErrorIs(t, err, domain.ErrEmptySurface)
		require.ErrorIs(t, err, domain.ErrPipelineFailed)
		assert.Zero(t, c.Len())

		stopPool(t, co, pool)
	})
}

func TestPool_PanicReplacesPipeline(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		co, _ := newCoordinator(t, 4)
		k1, s1 := shape(1)
		k2, s2 := shape(2)

		broken := mocks.NewMockReconstructionPipeline(ctrl)
		broken.EXPECT().Run(gomock.Any(), s1, gomock.Any()).DoAndReturn(
			func(context.Context, domain.ShapeVector, domain.PipelineConfig) (*domain.Mesh, error) {
				panic("index out of range")
			})
		fresh := mocks.NewMockReconstructionPipeline(ctrl)
		fresh.EXPECT().Run(gomock.Any(), s2, gomock.Any()).Return(triangle(), nil)

		factory := mocks.NewMockPipelineFactory(ctrl)
		gomock.InOrder(
			factory.EXPECT().NewPipeline().Return(broken, nil),
			factory.EXPECT().NewPipeline().Return(fresh, nil),
		)

		pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
			quietLogger(), telemetry.NewNoOpTracer(), 1)
		require.NoError(t, pool.Start(t.Context()))

		first, err := co.Submit(k1, s1)
		require.NoError(t, err)
		<-first.Done()
		_, err = first.Result()
		require.ErrorIs(t, err, domain.ErrPipelineFailed)
		assert.Contains(t, err.Error(), "index out of range")

		second, err := co.Submit(k2, s2)
		require.NoError(t, err)
		<-second.Done()
		_, err = second.Result()
		require.NoError(t, err)

		stopPool(t, co, pool)
	})
}

func TestPool_ClaimedWorkIgnoresCallerCancellation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		co, c := newCoordinator(t, 4)
		k, s := shape(1)
		ctx, cancel := context.WithCancel(t.Context())

		pl := mocks.NewMockReconstructionPipeline(ctrl)
		pl.EXPECT().Run(gomock.Any(), s, gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ domain.ShapeVector, _ domain.PipelineConfig) (*domain.Mesh, error) {
				cancel()
				assert.NoError(t, ctx.Err())
				return triangle(), nil
			})
		factory := mocks.NewMockPipelineFactory(ctrl)
		factory.EXPECT().NewPipeline().Return(pl, nil)

		pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
			quietLogger(), telemetry.NewNoOpTracer(), 1)
		require.NoError(t, pool.Start(ctx))

		ticket, err := co.Submit(k, s)
		require.NoError(t, err)
		<-ticket.Done()
		_, err = ticket.Result()
		require.NoError(t, err)
		assert.Equal(t, 1, c.Len())

		stopPool(t, co, pool)
	})
}

func TestPool_WaitTimesOut(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		co, _ := newCoordinator(t, 4)
		k, s := shape(1)

		release := make(chan struct{})
		pl := mocks.NewMockReconstructionPipeline(ctrl)
		pl.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, domain.ShapeVector, domain.PipelineConfig) (*domain.Mesh, error) {
				<-release
				return triangle(), nil
			})
		factory := mocks.NewMockPipelineFactory(ctrl)
		factory.EXPECT().NewPipeline().Return(pl, nil)

		pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
			quietLogger(), telemetry.NewNoOpTracer(), 1)
		require.NoError(t, pool.Start(t.Context()))

		_, err := co.Submit(k, s)
		require.NoError(t, err)
		synctest.Wait()

		co.Close()
		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, pool.Wait(ctx), context.DeadlineExceeded)

		close(release)
		require.NoError(t, pool.Wait(t.Context()))
	})
}

func TestPool_ClosesReplacedAndStoppedPipelines(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		co, _ := newCoordinator(t, 4)
		k1, s1 := shape(1)

		broken := &closingPipeline{MockReconstructionPipeline: mocks.NewMockReconstructionPipeline(ctrl)}
		broken.EXPECT().Run(gomock.Any(), s1, gomock.Any()).DoAndReturn(
			func(context.Context, domain.ShapeVector, domain.PipelineConfig) (*domain.Mesh, error) {
				panic("nil solver state")
			})
		fresh := &closingPipeline{MockReconstructionPipeline: mocks.NewMockReconstructionPipeline(ctrl)}

		factory := mocks.NewMockPipelineFactory(ctrl)
		gomock.InOrder(
			factory.EXPECT().NewPipeline().Return(broken, nil),
			factory.EXPECT().NewPipeline().Return(fresh, nil),
		)

		pool := scheduler.NewPool(co, factory, fixedSource(ctrl, domain.DefaultPipelineConfig()),
			quietLogger(), telemetry.NewNoOpTracer(), 1)
		require.NoError(t, pool.Start(t.Context()))

		ticket, err := co.Submit(k1, s1)
		require.NoError(t, err)
		<-ticket.Done()

		stopPool(t, co, pool)
		assert.Equal(t, int32(1), broken.closed.Load())
		assert.Equal(t, int32(1), fresh.closed.Load())
	})
}

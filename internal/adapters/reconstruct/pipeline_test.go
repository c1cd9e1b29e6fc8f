package reconstruct_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/meshcache/internal/adapters/reconstruct"
	"go.trai.ch/meshcache/internal/core/domain"
)

// sphere samples n points evenly over a sphere of the given radius.
func sphere(n int, radius float64) domain.ShapeVector {
	golden := math.Pi * (3 - math.Sqrt(5))
	out := make(domain.ShapeVector, 0, 3*n)
	for i := range n {
		y := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - y*y)
		theta := golden * float64(i)
		out = append(out, radius*r*math.Cos(theta), radius*y, radius*r*math.Sin(theta))
	}
	return out
}

func radii(m *domain.Mesh) (lo, hi, avg float64) {
	lo = math.Inf(1)
	for i := range m.VertexCount() {
		v := m.Vertex(i)
		r := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
		avg += r
	}
	return lo, hi, avg / float64(m.VertexCount())
}

func TestPipeline_Run_Sphere(t *testing.T) {
	p := reconstruct.New()
	mesh, err := p.Run(t.Context(), sphere(300, 10), domain.DefaultPipelineConfig())
	require.NoError(t, err)
	require.False(t, mesh.IsEmpty())

	lo, hi, avg := radii(mesh)
	assert.Greater(t, lo, 6.0)
	assert.Less(t, hi, 14.0)
	assert.InDelta(t, 10, avg, 1.5)

	require.Equal(t, mesh.VertexCount(), len(mesh.Normals()))
	outward := 0
	for i := range mesh.VertexCount() {
		v, n := mesh.Vertex(i), mesh.Normal(i)
		assert.InDelta(t, 1, math.Sqrt(n[0]*n[0]+n[1]*n[1]+n[2]*n[2]), 1e-9)
		if v[0]*n[0]+v[1]*n[1]+v[2]*n[2] > 0 {
			outward++
		}
	}
	assert.Greater(t, float64(outward)/float64(mesh.VertexCount()), 0.95)

	for i := range mesh.TriangleCount() {
		for _, idx := range mesh.Triangle(i) {
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, mesh.VertexCount())
		}
	}
}

func TestPipeline_Run_Deterministic(t *testing.T) {
	tests := []struct {
		name       string
		smoothing  int
		decimation float64
	}{
		{name: "contour only"},
		{name: "smoothing", smoothing: 10},
		{name: "decimation", decimation: 0.5},
		{name: "smoothing and decimation", smoothing: 3, decimation: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := sphere(150, 5)
			cfg := domain.DefaultPipelineConfig()
			cfg.SampleSpacing = 0.75
			cfg.SmoothingIterations = tt.smoothing
			cfg.DecimationFraction = tt.decimation

			first, err := reconstruct.New().Run(t.Context(), shape, cfg)
			require.NoError(t, err)

			for range 5 {
				again, err := reconstruct.New().Run(t.Context(), shape, cfg)
				require.NoError(t, err)
				assert.Equal(t, first.Vertices(), again.Vertices())
				assert.Equal(t, first.Normals(), again.Normals())
				assert.Equal(t, first.Triangles(), again.Triangles())
			}

			p := reconstruct.New()
			_, err = p.Run(t.Context(), sphere(80, 3), cfg)
			require.NoError(t, err)
			reused, err := p.Run(t.Context(), shape, cfg)
			require.NoError(t, err)
			assert.Equal(t, first.Vertices(), reused.Vertices())
			assert.Equal(t, first.Triangles(), reused.Triangles())
		})
	}
}

func TestPipeline_Run_AlternateReconstructor(t *testing.T) {
	cfg := domain.DefaultPipelineConfig()
	cfg.UseAlternateReconstructor = true
	cfg.SmoothingIterations = 0

	mesh, err := reconstruct.New().Run(t.Context(), sphere(200, 8), cfg)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())

	_, hi, _ := radii(mesh)
	assert.Greater(t, hi, 8.0)
}

func TestPipeline_Run_Decimation(t *testing.T) {
	cfg := domain.DefaultPipelineConfig()
	cfg.SampleSpacing = 0.5
	cfg.SmoothingIterations = 0

	full, err := reconstruct.New().Run(t.Context(), sphere(300, 6), cfg)
	require.NoError(t, err)

	cfg.DecimationFraction = 0.5
	reduced, err := reconstruct.New().Run(t.Context(), sphere(300, 6), cfg)
	require.NoError(t, err)

	assert.Less(t, reduced.TriangleCount(), full.TriangleCount())
}

func TestPipeline_Run_Errors(t *testing.T) {
	tests := []struct {
		name   string
		shape  domain.ShapeVector
		mutate func(*domain.PipelineConfig)
		want   error
	}{
		{
			name:  "too few points",
			shape: domain.ShapeVector{0, 0, 0, 1, 0, 0, 0, 1, 0},
			want:  domain.ErrTooFewPoints,
		},
		{
			name:  "coincident points",
			shape: domain.ShapeVector{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			want:  domain.ErrDegenerateShape,
		},
		{
			name:  "coplanar points",
			shape: domain.ShapeVector{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0, 2, 3, 0},
			want:  domain.ErrDegenerateShape,
		},
		{
			name:   "grid too large",
			shape:  sphere(50, 1000),
			mutate: func(c *domain.PipelineConfig) { c.SampleSpacing = 0.01 },
			want:   domain.ErrGridTooLarge,
		},
		{
			name:  "invalid shape",
			shape: domain.ShapeVector{0, 0},
			want:  domain.ErrInvalidInput,
		},
		{
			name:   "invalid config",
			shape:  sphere(50, 1),
			mutate: func(c *domain.PipelineConfig) { c.NeighborhoodSize = 0 },
			want:   domain.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultPipelineConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			_, err := reconstruct.New().Run(t.Context(), tt.shape, cfg)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPipeline_Run_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := reconstruct.New().Run(ctx, sphere(50, 5), domain.DefaultPipelineConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestFactory_NewPipelineReturnsDistinctInstances(t *testing.T) {
	f := reconstruct.NewFactory()
	a, err := f.NewPipeline()
	require.NoError(t, err)
	b, err := f.NewPipeline()
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

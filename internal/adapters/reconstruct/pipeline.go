// Package reconstruct turns a correspondence point cloud into a closed surface mesh.
//
// The default reconstructor contours the signed distance to per-point tangent
// planes. The alternate reconstructor contours a union of balls centred on the
// points.
package reconstruct

import (
	"context"
	"math"

	"github.com/unixpickle/model3d/model3d"
	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/zerr"
	"gonum.org/v1/gonum/spatial/kdtree"
)

const (
	// MinPoints is the fewest points a surface can be fitted to.
	MinPoints = 4

	// MaxGridCells bounds the contouring grid.
	MaxGridCells = 1 << 22

	// searchIterations refines each marching-cubes vertex along its edge.
	searchIterations = 8

	// ballRadiusFactor scales the mean neighbour spacing into a ball radius.
	ballRadiusFactor = 1.5
)

// Pipeline is a ReconstructionPipeline. It keeps scratch buffers between runs
// and must not be used from more than one goroutine.
type Pipeline struct {
	points        [][3]float64
	neighbourhood [][3]float64
	planes        []tangentPlane
	tree          *kdtree.Tree
	spacing       float64
}

// New creates a Pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Run reconstructs the mesh for shape under cfg.
func (p *Pipeline) Run(ctx context.Context, shape domain.ShapeVector, cfg domain.PipelineConfig) (*domain.Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumPoints() < MinPoints {
		return nil, zerr.With(zerr.Wrap(domain.ErrTooFewPoints, "cannot fit a surface"), "points", shape.NumPoints())
	}

	p.load(shape)
	if err := checkExtent(p.points); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.fitPlanes(cfg.NeighborhoodSize); err != nil {
		return nil, err
	}

	lo, hi := p.bounds(cfg)
	if err := checkGrid(lo, hi, cfg.SampleSpacing); err != nil {
		return nil, err
	}

	inside := p.insideSurface
	if cfg.UseAlternateReconstructor {
		inside = p.insideBalls(ballRadiusFactor * p.spacing)
	}
	solid := model3d.CheckedFuncSolid(toCoord(lo), toCoord(hi), inside)
	mesh := model3d.MarchingCubesSearch(solid, cfg.SampleSpacing, searchIterations)
	if mesh.NumTriangles() == 0 {
		return nil, zerr.Wrap(domain.ErrEmptySurface, "contouring found no surface")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	surf := indexSurface(mesh)
	if cfg.SmoothingIterations > 0 {
		surf.smooth(cfg.SmoothingIterations)
	}
	if cfg.DecimationFraction > 0 {
		surf.decimate(decimationCell(cfg.SampleSpacing, cfg.DecimationFraction))
	}

	out := surf.toDomainMesh()
	if out.IsEmpty() {
		return nil, zerr.Wrap(domain.ErrEmptySurface, "post-processing removed every triangle")
	}
	return out, nil
}

// load copies shape into the point buffer and rebuilds the kd-tree.
func (p *Pipeline) load(shape domain.ShapeVector) {
	n := shape.NumPoints()
	p.points = p.points[:0]
	pts := make(samples, n)
	for i := range n {
		pt := shape.Point(i)
		p.points = append(p.points, pt)
		pts[i] = sample{pos: pt, idx: i}
	}
	p.tree = kdtree.New(pts, false)
}

// bounds returns the contouring box: the cloud bounds padded so the surface closes.
func (p *Pipeline) bounds(cfg domain.PipelineConfig) (lo, hi [3]float64) {
	lo, hi = p.points[0], p.points[0]
	for _, pt := range p.points[1:] {
		for i := range 3 {
			lo[i] = math.Min(lo[i], pt[i])
			hi[i] = math.Max(hi[i], pt[i])
		}
	}

	pad := 2 * cfg.SampleSpacing
	if cfg.UseAlternateReconstructor {
		pad += ballRadiusFactor * p.spacing
	}
	for i := range 3 {
		lo[i] -= pad
		hi[i] += pad
	}
	return lo, hi
}

func checkGrid(lo, hi [3]float64, spacing float64) error {
	cells := 1.0
	for i := range 3 {
		cells *= math.Ceil((hi[i] - lo[i]) / spacing)
	}
	if cells > MaxGridCells {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrGridTooLarge, "increase the sample spacing"),
			"cells", int64(cells)), "spacing", spacing)
	}
	return nil
}

// insideSurface reports whether c lies behind the tangent plane of its nearest point.
func (p *Pipeline) insideSurface(c model3d.Coord3D) bool {
	q := c.Array()
	got, _ := p.tree.Nearest(sample{pos: q, idx: -1})
	tp := p.planes[got.(sample).idx]
	return dot(sub(q, tp.center), tp.normal) < 0
}

func (p *Pipeline) insideBalls(radius float64) func(model3d.Coord3D) bool {
	r2 := radius * radius
	return func(c model3d.Coord3D) bool {
		_, d2 := p.tree.Nearest(sample{pos: c.Array(), idx: -1})
		return d2 < r2
	}
}

func toCoord(a [3]float64) model3d.Coord3D {
	return model3d.XYZ(a[0], a[1], a[2])
}

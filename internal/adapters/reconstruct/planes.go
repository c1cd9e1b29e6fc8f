package reconstruct

import (
	"math"

	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/zerr"
	"gonum.org/v1/gonum/mat"
)

// degenerateRatio is the smallest/largest principal variance below which a
// cloud is treated as flat or collinear.
const degenerateRatio = 1e-10

// tangentPlane is a point with an outward unit normal.
type tangentPlane struct {
	center [3]float64
	normal [3]float64
}

// fitPlanes estimates one tangent plane per point from its k nearest
// neighbours. Normals are oriented away from the centroid of the cloud.
func (p *Pipeline) fitPlanes(k int) error {
	n := len(p.points)
	k = min(k, n)
	centroid := mean(p.points)

	if cap(p.planes) < n {
		p.planes = make([]tangentPlane, n)
	}
	p.planes = p.planes[:n]

	var spacing float64
	for i, pt := range p.points {
		found, dists := nearest(p.tree, pt, k)
		if len(dists) > 1 {
			spacing += math.Sqrt(dists[1])
		}

		nb := p.neighbourhood[:0]
		for _, s := range found {
			nb = append(nb, s.pos)
		}
		p.neighbourhood = nb

		normal, ok := smallestAxis(covariance(nb))
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrDegenerateShape, "tangent plane fit failed"), "point", i)
		}
		if dot(sub(pt, centroid), normal) < 0 {
			normal = scale(normal, -1)
		}
		p.planes[i] = tangentPlane{center: mean(nb), normal: normal}
	}
	p.spacing = spacing / float64(n)
	return nil
}

// checkExtent rejects clouds whose points are coincident, collinear or coplanar.
func checkExtent(points [][3]float64) error {
	var eig mat.EigenSym
	if !eig.Factorize(covariance(points), false) {
		return zerr.Wrap(domain.ErrDegenerateShape, "covariance factorization failed")
	}
	values := eig.Values(nil)
	largest := values[len(values)-1]
	if largest <= 0 || values[0]/largest < degenerateRatio {
		return zerr.With(zerr.Wrap(domain.ErrDegenerateShape, "points do not span a volume"), "variance", values)
	}
	return nil
}

func covariance(points [][3]float64) *mat.SymDense {
	c := mean(points)
	cov := mat.NewSymDense(3, nil)
	for _, pt := range points {
		d := sub(pt, c)
		for i := range 3 {
			for j := i; j < 3; j++ {
				cov.SetSym(i, j, cov.At(i, j)+d[i]*d[j])
			}
		}
	}
	cov.ScaleSym(1/float64(len(points)), cov)
	return cov
}

// smallestAxis returns the eigenvector of the smallest eigenvalue.
func smallestAxis(cov *mat.SymDense) ([3]float64, bool) {
	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return [3]float64{}, false
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	v := [3]float64{vectors.At(0, 0), vectors.At(1, 0), vectors.At(2, 0)}
	norm := length(v)
	if norm == 0 {
		return [3]float64{}, false
	}
	return scale(v, 1/norm), true
}

func mean(points [][3]float64) [3]float64 {
	var c [3]float64
	for _, pt := range points {
		c = add(c, pt)
	}
	return scale(c, 1/float64(len(points)))
}

func add(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func dot(a, b [3]float64) float64    { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func length(a [3]float64) float64    { return math.Sqrt(dot(a, a)) }

func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

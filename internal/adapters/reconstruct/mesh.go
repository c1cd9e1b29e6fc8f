package reconstruct

import (
	"cmp"
	"math"
	"slices"

	"github.com/unixpickle/model3d/model3d"
	"go.trai.ch/meshcache/internal/core/domain"
)

// Taubin smoothing factors. The negative pass undoes the shrinkage of the positive one.
const (
	taubinLambda = 0.5
	taubinMu     = -0.53
)

// surface is an indexed triangle mesh. Vertex ids follow the sorted triangle
// order and every pass visits vertices and faces by index, so the result
// depends only on the input geometry.
type surface struct {
	vertices [][3]float64
	faces    [][3]int
}

// indexSurface sorts the triangles of m and numbers their corners in first-use order.
func indexSurface(m *model3d.Mesh) *surface {
	tris := m.TriangleSlice()
	slices.SortFunc(tris, compareTriangles)

	index := make(map[model3d.Coord3D]int, len(tris)/2)
	s := &surface{faces: make([][3]int, 0, len(tris))}
	for _, t := range tris {
		var face [3]int
		for j, c := range t {
			id, ok := index[c]
			if !ok {
				id = len(s.vertices)
				index[c] = id
				s.vertices = append(s.vertices, c.Array())
			}
			face[j] = id
		}
		s.faces = append(s.faces, face)
	}
	return s
}

// neighbours returns the sorted, distinct edge neighbours of every vertex.
func (s *surface) neighbours() [][]int {
	adj := make([][]int, len(s.vertices))
	for _, f := range s.faces {
		for j := range 3 {
			a, b := f[j], f[(j+1)%3]
			adj[a] = append(adj[a], b)
			adj[b] = append(adj[b], a)
		}
	}
	for i := range adj {
		slices.Sort(adj[i])
		adj[i] = slices.Compact(adj[i])
	}
	return adj
}

// smooth applies iterations of Taubin smoothing.
func (s *surface) smooth(iterations int) {
	adj := s.neighbours()
	next := make([][3]float64, len(s.vertices))
	for range iterations {
		s.relax(adj, taubinLambda, next)
		s.relax(adj, taubinMu, next)
	}
}

// relax moves every vertex by factor towards the centroid of its neighbours.
func (s *surface) relax(adj [][]int, factor float64, next [][3]float64) {
	for i, v := range s.vertices {
		if len(adj[i]) == 0 {
			next[i] = v
			continue
		}
		var c [3]float64
		for _, j := range adj[i] {
			c = add(c, s.vertices[j])
		}
		c = scale(c, 1/float64(len(adj[i])))
		next[i] = add(v, scale(sub(c, v), factor))
	}
	copy(s.vertices, next)
}

// decimationCell returns the clustering cell size that keeps roughly
// 1-fraction of the vertices of a surface sampled every spacing units.
func decimationCell(spacing, fraction float64) float64 {
	return spacing / math.Sqrt(1-fraction)
}

// decimate merges all vertices inside each cube of side cell into their mean
// and drops the triangles that collapse or repeat.
func (s *surface) decimate(cell float64) {
	if len(s.vertices) == 0 {
		return
	}

	lo := s.vertices[0]
	for _, v := range s.vertices[1:] {
		for a := range 3 {
			lo[a] = math.Min(lo[a], v[a])
		}
	}

	clusters := make(map[[3]int64]int)
	remap := make([]int, len(s.vertices))
	var (
		sums   [][3]float64
		counts []int
	)
	for i, v := range s.vertices {
		var key [3]int64
		for a := range 3 {
			key[a] = int64(math.Floor((v[a] - lo[a]) / cell))
		}
		id, ok := clusters[key]
		if !ok {
			id = len(sums)
			clusters[key] = id
			sums = append(sums, [3]float64{})
			counts = append(counts, 0)
		}
		sums[id] = add(sums[id], v)
		counts[id]++
		remap[i] = id
	}

	vertices := make([][3]float64, len(sums))
	for i, sum := range sums {
		vertices[i] = scale(sum, 1/float64(counts[i]))
	}

	seen := make(map[[3]int]struct{}, len(s.faces))
	faces := s.faces[:0]
	for _, f := range s.faces {
		g := [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
		if g[0] == g[1] || g[1] == g[2] || g[0] == g[2] {
			continue
		}
		key := g
		slices.Sort(key[:])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		faces = append(faces, g)
	}

	s.vertices, s.faces = vertices, faces
	s.compact()
}

// compact drops vertices no face references, keeping the remaining order.
func (s *surface) compact() {
	ids := make([]int, len(s.vertices))
	for i := range ids {
		ids[i] = -1
	}
	for _, f := range s.faces {
		for _, v := range f {
			ids[v] = 0
		}
	}

	kept := s.vertices[:0]
	for i, v := range s.vertices {
		if ids[i] < 0 {
			continue
		}
		ids[i] = len(kept)
		kept = append(kept, v)
	}
	for i, f := range s.faces {
		s.faces[i] = [3]int{ids[f[0]], ids[f[1]], ids[f[2]]}
	}
	s.vertices = kept
}

// toDomainMesh estimates area-weighted vertex normals and freezes the surface.
func (s *surface) toDomainMesh() *domain.Mesh {
	sums := make([][3]float64, len(s.vertices))
	for _, f := range s.faces {
		a, b, c := s.vertices[f[0]], s.vertices[f[1]], s.vertices[f[2]]
		// Twice the area-weighted face normal; the factor cancels on normalization.
		weighted := cross(sub(b, a), sub(c, a))
		for _, v := range f {
			sums[v] = add(sums[v], weighted)
		}
	}

	normals := make([][3]float64, len(sums))
	for i, sum := range sums {
		if l := length(sum); l > 0 {
			normals[i] = scale(sum, 1/l)
		}
	}
	return domain.NewMesh(s.vertices, normals, s.faces)
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func compareTriangles(a, b *model3d.Triangle) int {
	for i := range 3 {
		if c := compareCoords(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareCoords(a, b model3d.Coord3D) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.Z, b.Z)
}

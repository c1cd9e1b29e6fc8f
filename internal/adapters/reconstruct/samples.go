package reconstruct

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// sample is one input point stored in the kd-tree. idx links it back to its
// tangent plane.
type sample struct {
	pos [3]float64
	idx int
}

var _ kdtree.Comparable = sample{}

func (s sample) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return s.pos[d] - c.(sample).pos[d]
}

func (s sample) Dims() int { return 3 }

// Distance returns the squared Euclidean distance.
func (s sample) Distance(c kdtree.Comparable) float64 {
	o := c.(sample)
	var sum float64
	for i := range 3 {
		d := s.pos[i] - o.pos[i]
		sum += d * d
	}
	return sum
}

type samples []sample

var _ kdtree.Interface = samples(nil)

func (s samples) Index(i int) kdtree.Comparable { return s[i] }
func (s samples) Len() int                      { return len(s) }
func (s samples) Slice(start, end int) kdtree.Interface {
	return s[start:end]
}

func (s samples) Pivot(d kdtree.Dim) int {
	return plane{samples: s, Dim: d}.Pivot()
}

// plane sorts samples along one dimension for median selection.
type plane struct {
	kdtree.Dim
	samples
}

func (p plane) Less(i, j int) bool {
	return p.samples[i].pos[p.Dim] < p.samples[j].pos[p.Dim]
}

func (p plane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.samples = p.samples[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.samples[i], p.samples[j] = p.samples[j], p.samples[i]
}

// nearest returns up to k samples closest to q, ordered by distance, with
// their squared distances.
func nearest(tree *kdtree.Tree, q [3]float64, k int) ([]sample, []float64) {
	keeper := kdtree.NewNKeeper(k)
	tree.NearestSet(keeper, sample{pos: q, idx: -1})

	found := make([]sample, 0, k)
	dists := make([]float64, 0, k)
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		found = append(found, cd.Comparable.(sample))
		dists = append(dists, cd.Dist)
	}
	sortByDistance(found, dists)
	return found, dists
}

func sortByDistance(found []sample, dists []float64) {
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && dists[j] < dists[j-1]; j-- {
			dists[j], dists[j-1] = dists[j-1], dists[j]
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
}

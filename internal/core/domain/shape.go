package domain

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// ShapeVector is a flattened list of 3D correspondence-point coordinates.
// Its length is always a non-zero multiple of three.
type ShapeVector []float64

// NewShapeVector validates coords and returns them as a ShapeVector.
// The input slice is copied so later mutation by the caller cannot alter a key.
func NewShapeVector(coords []float64) (ShapeVector, error) {
	if len(coords) == 0 {
		return nil, zerr.Wrap(ErrInvalidInput, "empty shape vector")
	}
	if len(coords)%3 != 0 {
		return nil, zerr.With(zerr.Wrap(ErrInvalidInput, "length not divisible by 3"), "length", len(coords))
	}
	for i, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, zerr.With(zerr.Wrap(ErrInvalidInput, "non-finite coordinate"), "index", i)
		}
	}
	out := make(ShapeVector, len(coords))
	copy(out, coords)
	return out, nil
}

// Validate reports whether the vector satisfies the ShapeVector invariants.
func (s ShapeVector) Validate() error {
	_, err := NewShapeVector(s)
	return err
}

// NumPoints returns the number of correspondence points.
func (s ShapeVector) NumPoints() int {
	return len(s) / 3
}

// Point returns the i-th correspondence point.
func (s ShapeVector) Point(i int) [3]float64 {
	return [3]float64{s[3*i], s[3*i+1], s[3*i+2]}
}

// Equal reports element-wise exact equality. There is no tolerance.
func (s ShapeVector) Equal(other ShapeVector) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the vector.
func (s ShapeVector) Clone() ShapeVector {
	if s == nil {
		return nil
	}
	out := make(ShapeVector, len(s))
	copy(out, s)
	return out
}

// ShapeKey is the hashed identity of a ShapeVector.
// Components that index by ShapeKey also keep the vector and compare it with Equal,
// since distinct vectors may in principle share a key.
type ShapeKey uint64

// NewShapeKey hashes the canonical bit pattern of every coordinate.
// Negative zero is folded to positive zero so that vectors equal under Equal hash equally.
func NewShapeKey(s ShapeVector) ShapeKey {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	_, _ = d.Write(buf[:])
	for _, c := range s {
		if c == 0 {
			c = 0
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c))
		_, _ = d.Write(buf[:])
	}
	return ShapeKey(d.Sum64())
}

// String returns the key as fixed-width hex.
func (k ShapeKey) String() string {
	s := strconv.FormatUint(uint64(k), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}

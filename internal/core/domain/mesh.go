package domain

import "slices"

// Mesh is an indexed triangle mesh with one normal per vertex.
//
// A Mesh is immutable once built: the cache holds the canonical instance and every
// caller shares it read-only. Accessors that expose slices return copies.
type Mesh struct {
	vertices [][3]float64
	normals  [][3]float64
	faces    [][3]int
}

// NewMesh builds a Mesh from vertices, per-vertex normals and triangle indices.
// The slices are owned by the Mesh afterwards; callers must not retain them.
func NewMesh(vertices, normals [][3]float64, faces [][3]int) *Mesh {
	return &Mesh{
		vertices: vertices,
		normals:  normals,
		faces:    faces,
	}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.faces)
}

// IsEmpty returns true if the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.faces) == 0
}

// Vertex returns the i-th vertex position.
func (m *Mesh) Vertex(i int) [3]float64 {
	return m.vertices[i]
}

// Normal returns the unit normal of the i-th vertex.
func (m *Mesh) Normal(i int) [3]float64 {
	return m.normals[i]
}

// Triangle returns the vertex indices of the i-th triangle.
func (m *Mesh) Triangle(i int) [3]int {
	return m.faces[i]
}

// Vertices returns a copy of all vertex positions.
func (m *Mesh) Vertices() [][3]float64 {
	return slices.Clone(m.vertices)
}

// Normals returns a copy of all vertex normals.
func (m *Mesh) Normals() [][3]float64 {
	return slices.Clone(m.normals)
}

// Triangles returns a copy of all triangle index triples.
func (m *Mesh) Triangles() [][3]int {
	return slices.Clone(m.faces)
}

// Bounds returns the axis-aligned bounding box of the vertices.
// An empty mesh returns zero vectors.
func (m *Mesh) Bounds() (lo, hi [3]float64) {
	if len(m.vertices) == 0 {
		return lo, hi
	}
	lo, hi = m.vertices[0], m.vertices[0]
	for _, v := range m.vertices[1:] {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], v[a])
			hi[a] = max(hi[a], v[a])
		}
	}
	return lo, hi
}

package ports

import "go.trai.ch/meshcache/internal/core/domain"

//go:generate mockgen -source=shapeio.go -destination=mocks/mock_shapeio.go -package=mocks

// ShapeReader loads shape vectors from disk.
type ShapeReader interface {
	// Read parses the shape file at path.
	Read(path string) (domain.ShapeVector, error)
}

// MeshWriter stores meshes on disk.
type MeshWriter interface {
	// Write encodes mesh to path, replacing any existing file.
	Write(path string, mesh *domain.Mesh) error
}

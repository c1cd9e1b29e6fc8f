package ports

import (
	"context"

	"go.trai.ch/meshcache/internal/core/domain"
)

//go:generate mockgen -source=pipeline.go -destination=mocks/mock_pipeline.go -package=mocks

// ReconstructionPipeline turns a shape vector into a surface mesh.
// An instance holds mutable scratch state and must not be shared between goroutines.
// Instances that also implement io.Closer are closed once their worker drops them.
type ReconstructionPipeline interface {
	// Run reconstructs the mesh for shape under cfg. The same inputs always yield the same mesh.
	Run(ctx context.Context, shape domain.ShapeVector, cfg domain.PipelineConfig) (*domain.Mesh, error)
}

// PipelineFactory creates private pipeline instances, one per worker.
type PipelineFactory interface {
	// NewPipeline returns a fresh pipeline instance.
	NewPipeline() (ReconstructionPipeline, error)
}

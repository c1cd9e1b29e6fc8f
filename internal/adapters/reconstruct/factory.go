package reconstruct

import "go.trai.ch/meshcache/internal/core/ports"

// Factory creates one Pipeline per worker.
type Factory struct{}

// NewFactory creates a Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewPipeline returns a fresh Pipeline.
func (f *Factory) NewPipeline() (ports.ReconstructionPipeline, error) {
	return New(), nil
}

package shapeio

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/meshcache/internal/core/ports"
)

// NodeID is the unique identifier for the shape reader Graft node.
const NodeID graft.ID = "adapter.shape_reader"

func init() {
	graft.Register(graft.Node[ports.ShapeReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ShapeReader, error) {
			return NewParticleReader(), nil
		},
	})
}

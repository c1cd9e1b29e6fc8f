package meshio

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/meshcache/internal/core/ports"
)

// NodeID is the unique identifier for the mesh writer Graft node.
const NodeID graft.ID = "adapter.mesh_writer"

func init() {
	graft.Register(graft.Node[ports.MeshWriter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.MeshWriter, error) {
			return NewSTLWriter(), nil
		},
	})
}

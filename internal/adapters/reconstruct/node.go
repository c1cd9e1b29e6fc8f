package reconstruct

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/meshcache/internal/core/ports"
)

// NodeID is the unique identifier for the pipeline factory Graft node.
const NodeID graft.ID = "adapter.reconstruct"

func init() {
	graft.Register(graft.Node[ports.PipelineFactory]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PipelineFactory, error) {
			return NewFactory(), nil
		},
	})
}

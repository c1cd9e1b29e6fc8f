package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/meshcache/internal/adapters/logger"
	"go.trai.ch/meshcache/internal/core/ports"
)

// NodeID is the unique identifier for the settings watcher Graft node.
const NodeID graft.ID = "adapter.watcher"

func init() {
	graft.Register(graft.Node[ports.Watcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Watcher, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWatcher(log, DefaultDebounceWindow), nil
		},
	})
}

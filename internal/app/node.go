package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/meshcache/internal/adapters/config"      //nolint:depguard // Wired in app layer
	"go.trai.ch/meshcache/internal/adapters/logger"      //nolint:depguard // Wired in app layer
	"go.trai.ch/meshcache/internal/adapters/meshio"      //nolint:depguard // Wired in app layer
	"go.trai.ch/meshcache/internal/adapters/reconstruct" //nolint:depguard // Wired in app layer
	"go.trai.ch/meshcache/internal/adapters/shapeio"     //nolint:depguard // Wired in app layer
	"go.trai.ch/meshcache/internal/adapters/telemetry"   //nolint:depguard // Wired in app layer
	"go.trai.ch/meshcache/internal/adapters/watcher"     //nolint:depguard // Wired in app layer
	"go.trai.ch/meshcache/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			reconstruct.NodeID,
			shapeio.NodeID,
			meshio.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	factory, err := graft.Dep[ports.PipelineFactory](ctx)
	if err != nil {
		return nil, err
	}

	reader, err := graft.Dep[ports.ShapeReader](ctx)
	if err != nil {
		return nil, err
	}

	writer, err := graft.Dep[ports.MeshWriter](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, factory, reader, writer, log, tracer, w), nil
}

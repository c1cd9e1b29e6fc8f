// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/meshcache/internal/adapters/config"
	_ "go.trai.ch/meshcache/internal/adapters/logger"
	_ "go.trai.ch/meshcache/internal/adapters/meshio"
	_ "go.trai.ch/meshcache/internal/adapters/reconstruct"
	_ "go.trai.ch/meshcache/internal/adapters/shapeio"
	_ "go.trai.ch/meshcache/internal/adapters/telemetry"
	_ "go.trai.ch/meshcache/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/meshcache/internal/app"
)

package ports

import "go.trai.ch/meshcache/internal/core/domain"

//go:generate mockgen -source=config.go -destination=mocks/mock_config.go -package=mocks

// ConfigSource provides the live pipeline configuration.
type ConfigSource interface {
	// Snapshot returns the current configuration by value.
	Snapshot() domain.PipelineConfig
}

// ConfigLoader reads application settings.
type ConfigLoader interface {
	// Load reads the settings file at path. A missing file yields the defaults.
	Load(path string) (domain.Settings, error)
}

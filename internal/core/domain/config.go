package domain

import (
	"runtime"

	"go.trai.ch/zerr"
)

const (
	// DefaultSmoothingIterations is the number of smoothing passes applied when none is configured.
	DefaultSmoothingIterations = 10
	// DefaultNeighborhoodSize is the number of neighbours used to fit each tangent plane.
	DefaultNeighborhoodSize = 8
	// DefaultSampleSpacing is the contouring grid spacing in shape units.
	DefaultSampleSpacing = 1.0
	// DefaultCacheCapacity is the number of meshes held by the cache.
	DefaultCacheCapacity = 64
)

// PipelineConfig holds every parameter that affects reconstruction output.
// A mesh built under one PipelineConfig is not valid under another.
type PipelineConfig struct {
	UseAlternateReconstructor bool
	SmoothingIterations       int
	NeighborhoodSize          int
	SampleSpacing             float64
	DecimationFraction        float64
}

// DefaultPipelineConfig returns the configuration used when no settings file is present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		SmoothingIterations: DefaultSmoothingIterations,
		NeighborhoodSize:    DefaultNeighborhoodSize,
		SampleSpacing:       DefaultSampleSpacing,
	}
}

// Validate checks the parameter ranges and names the offending field on failure.
func (c PipelineConfig) Validate() error {
	switch {
	case c.SmoothingIterations < 0:
		return invalidField("smoothingIterations", c.SmoothingIterations)
	case c.NeighborhoodSize <= 0:
		return invalidField("neighborhoodSize", c.NeighborhoodSize)
	case !(c.SampleSpacing > 0):
		return invalidField("sampleSpacing", c.SampleSpacing)
	case !(c.DecimationFraction >= 0 && c.DecimationFraction < 1):
		return invalidField("decimationFraction", c.DecimationFraction)
	}
	return nil
}

// Settings is the full application configuration read from the settings file.
type Settings struct {
	Pipeline PipelineConfig
	// CacheCapacity bounds the number of cached meshes.
	CacheCapacity int
	// Workers is the size of the worker pool. Zero selects runtime.NumCPU.
	Workers  int
	LogJSON  bool
	LogLevel LogLevel
}

// DefaultSettings returns the settings used when no settings file is present.
func DefaultSettings() Settings {
	return Settings{
		Pipeline:      DefaultPipelineConfig(),
		CacheCapacity: DefaultCacheCapacity,
		LogLevel:      LogLevelInfo,
	}
}

// WorkerCount resolves the configured worker count, mapping zero to the number of CPUs.
func (s Settings) WorkerCount() int {
	if s.Workers == 0 {
		return runtime.NumCPU()
	}
	return s.Workers
}

// Validate checks every section of the settings.
func (s Settings) Validate() error {
	if err := s.Pipeline.Validate(); err != nil {
		return err
	}
	if s.CacheCapacity <= 0 {
		return invalidField("cache.capacity", s.CacheCapacity)
	}
	if s.Workers < 0 {
		return invalidField("workers.count", s.Workers)
	}
	return nil
}

func invalidField(field string, value any) error {
	err := zerr.Wrap(ErrInvalidConfig, "value out of range")
	err = zerr.With(err, "field", field)
	return zerr.With(err, "value", value)
}

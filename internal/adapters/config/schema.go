package config

// SettingsFile represents the structure of the meshcache.yaml settings file.
// Pointer fields distinguish an omitted value from an explicit zero.
type SettingsFile struct {
	Version  string      `yaml:"version"`
	Pipeline PipelineDTO `yaml:"pipeline"`
	Cache    CacheDTO    `yaml:"cache"`
	Workers  WorkersDTO  `yaml:"workers"`
	Log      LogDTO      `yaml:"log"`
}

// PipelineDTO represents the reconstruction parameters.
type PipelineDTO struct {
	AlternateReconstructor *bool    `yaml:"alternateReconstructor"`
	SmoothingIterations    *int     `yaml:"smoothingIterations"`
	NeighborhoodSize       *int     `yaml:"neighborhoodSize"`
	SampleSpacing          *float64 `yaml:"sampleSpacing"`
	DecimationFraction     *float64 `yaml:"decimationFraction"`
}

// CacheDTO represents the cache section.
type CacheDTO struct {
	Capacity *int `yaml:"capacity"`
}

// WorkersDTO represents the worker pool section.
type WorkersDTO struct {
	Count *int `yaml:"count"`
}

// LogDTO represents the logging section.
type LogDTO struct {
	JSON  *bool  `yaml:"json"`
	Level string `yaml:"level"`
}

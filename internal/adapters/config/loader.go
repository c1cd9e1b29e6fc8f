// Package config loads meshcache settings and holds the live pipeline preferences.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"

	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the settings file looked up when none is given.
const DefaultFilename = "meshcache.yaml"

// supportedVersion is the only settings schema version understood.
const supportedVersion = "1"

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct{}

// NewFileConfigLoader creates a FileConfigLoader.
func NewFileConfigLoader() *FileConfigLoader {
	return &FileConfigLoader{}
}

// Load reads the settings file at path.
func (l *FileConfigLoader) Load(path string) (domain.Settings, error) {
	return Load(path)
}

// Load reads a settings file and returns validated settings.
// A missing or empty file yields domain.DefaultSettings.
func Load(path string) (domain.Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", path)
	}
	return Parse(data)
}

// Parse decodes settings from YAML. Unknown keys are rejected.
func Parse(data []byte) (domain.Settings, error) {
	var file SettingsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return domain.Settings{}, errors.Join(domain.ErrConfigParseFailed, err)
	}

	settings, err := file.toDomain()
	if err != nil {
		return domain.Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func (f *SettingsFile) toDomain() (domain.Settings, error) {
	if f.Version != "" && f.Version != supportedVersion {
		err := zerr.Wrap(domain.ErrInvalidConfig, "unsupported settings version")
		return domain.Settings{}, zerr.With(zerr.With(err, "field", "version"), "value", f.Version)
	}

	s := domain.DefaultSettings()

	p := f.Pipeline
	setIf(&s.Pipeline.UseAlternateReconstructor, p.AlternateReconstructor)
	setIf(&s.Pipeline.SmoothingIterations, p.SmoothingIterations)
	setIf(&s.Pipeline.NeighborhoodSize, p.NeighborhoodSize)
	setIf(&s.Pipeline.SampleSpacing, p.SampleSpacing)
	setIf(&s.Pipeline.DecimationFraction, p.DecimationFraction)

	setIf(&s.CacheCapacity, f.Cache.Capacity)
	setIf(&s.Workers, f.Workers.Count)
	setIf(&s.LogJSON, f.Log.JSON)

	level, ok := domain.ParseLogLevel(f.Log.Level)
	if !ok {
		err := zerr.Wrap(domain.ErrInvalidConfig, "unknown log level")
		return domain.Settings{}, zerr.With(zerr.With(err, "field", "log.level"), "value", f.Log.Level)
	}
	s.LogLevel = level

	return s, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

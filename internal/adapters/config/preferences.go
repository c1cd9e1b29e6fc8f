package config

import (
	"sync"

	"go.trai.ch/meshcache/internal/core/domain"
)

// Preferences is the single writer of the live pipeline configuration.
// It implements ports.ConfigSource.
type Preferences struct {
	mu   sync.RWMutex
	cfg  domain.PipelineConfig
	subs []func(domain.PipelineConfig)
}

// NewPreferences creates a store holding cfg.
func NewPreferences(cfg domain.PipelineConfig) *Preferences {
	return &Preferences{cfg: cfg}
}

// Snapshot returns the current configuration by value.
func (p *Preferences) Snapshot() domain.PipelineConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Update validates cfg and replaces the current configuration. Subscribers are
// notified, in subscription order and after the new value is visible, only when
// the value actually changed.
func (p *Preferences) Update(cfg domain.PipelineConfig) (bool, error) {
	if err := cfg.Validate(); err != nil {
		return false, err
	}

	p.mu.Lock()
	if p.cfg == cfg {
		p.mu.Unlock()
		return false, nil
	}
	p.cfg = cfg
	subs := make([]func(domain.PipelineConfig), len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(cfg)
	}
	return true, nil
}

// Subscribe registers fn to be called after every effective change.
func (p *Preferences) Subscribe(fn func(domain.PipelineConfig)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs = append(p.subs, fn)
}

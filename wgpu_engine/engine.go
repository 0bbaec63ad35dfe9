package wgpu_engine

import (
	"fmt"

	"honnef.co/go/wgpu"

	"github.com/girder-gfx/girder/gpu"
)

// Engine bundles everything the pipelines need on top of a live wgpu device:
// the wrapped context, the staging belt pool and the runtime configuration.
// Instance, adapter, device and queue acquisition stays with the caller, who
// knows the windowing system and the platform.
type Engine struct {
	Context *gpu.Context
	Belts   *gpu.Manager
	Config  *Config
}

// New wraps the given wgpu objects according to cfg. A nil cfg means
// defaults.
func New(cfg *Config, inst *wgpu.Instance, adp *wgpu.Adapter, dev *wgpu.Device, q *wgpu.Queue) (*Engine, error) {
	if cfg == nil {
		cfg = defaults()
	}
	log, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &Engine{
		Context: NewContext(inst, adp, dev, q, log),
		Belts:   gpu.NewManager(log.Named("belts")),
		Config:  cfg,
	}, nil
}

// ChunkSize returns the configured default staging belt chunk size.
func (e *Engine) ChunkSize() uint64 {
	return e.Config.Staging.ChunkSize
}

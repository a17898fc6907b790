// control/adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ControlAdapter composes ConfigStore, MetricsRegistry and DebugProbes
// behind the single api.Control surface fdcore/core.go hands out.

package control

import "github.com/momentics/hioload-fdcore/api"

// ControlAdapter implements api.Control.
type ControlAdapter struct {
	Config  *ConfigStore
	Metrics *MetricsRegistry
	Debug   *DebugProbes
}

var _ api.Control = (*ControlAdapter)(nil)

// NewControlAdapter wires a fresh ConfigStore/MetricsRegistry/DebugProbes
// triple together.
func NewControlAdapter() *ControlAdapter {
	return &ControlAdapter{
		Config:  NewConfigStore(),
		Metrics: NewMetricsRegistry(),
		Debug:   NewDebugProbes(),
	}
}

func (a *ControlAdapter) GetConfig() map[string]any { return a.Config.GetSnapshot() }

func (a *ControlAdapter) SetConfig(cfg map[string]any) error {
	a.Config.SetConfig(cfg)
	return nil
}

func (a *ControlAdapter) Stats() map[string]any { return a.Metrics.GetSnapshot() }

func (a *ControlAdapter) OnReload(fn func()) { a.Config.OnReload(fn) }

func (a *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	a.Debug.RegisterProbe(name, fn)
}

// File: reactor/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Registry holds backend factories in registration order and drives
// init_pollers/deinit_pollers/fork recovery (spec.md §6, §8 scenario 6).
// Ordering matters: the first backend whose Init succeeds wins, and a
// ForkRecover failure disables the active backend and falls back to
// the next one — exactly the FIFO-with-replay shape github.com/eapache/queue
// was built for, so it holds the factory list here instead of sitting
// in go.mod unused.

package reactor

import (
	"fmt"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/pool"
)

// Factory constructs a fresh, unopened backend instance.
type Factory func() api.Backend

// disabledHistoryCap bounds how many backend names Disable remembers for
// introspection (SPEC_FULL.md §10's list_pollers/disable_poller).
const disabledHistoryCap = 16

// Registry orders candidate backends and manages which one is active.
type Registry struct {
	order    *queue.Queue // of Factory, FIFO registration order
	names    []string
	disabled map[string]bool
	history  *pool.RingBuffer[string] // names passed to Disable, oldest first
	active   api.Backend
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		order:    queue.New(),
		disabled: make(map[string]bool),
		history:  pool.NewRingBuffer[string](disabledHistoryCap),
	}
}

// Register appends a candidate backend factory. Call in preference
// order: most specific/efficient first (epoll/kqueue), most portable
// last (poll).
func (r *Registry) Register(f Factory) {
	r.order.Add(f)
}

// Names lists every backend Init has successfully produced a name for,
// in the order they were tried (SPEC_FULL.md §10's list_pollers feature).
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Active returns the currently selected backend, or nil if none has
// been initialized yet.
func (r *Registry) Active() api.Backend { return r.active }

// Disable marks name as unusable so InitPollers/ForkPoller skip it on
// future attempts even if it's re-registered. The name is also appended
// to the bounded disabled-backend history (oldest entry dropped once
// disabledHistoryCap is exceeded) for operational visibility.
func (r *Registry) Disable(name string) {
	r.disabled[name] = true
	if !r.history.Enqueue(name) {
		r.history.Dequeue()
		r.history.Enqueue(name)
	}
}

// DisabledHistory drains and returns every backend name passed to
// Disable so far, oldest first. Destructive: a name returned here is
// removed from the ring (it remains disabled regardless — this is a
// log, not the set of truth).
func (r *Registry) DisabledHistory() []string {
	var out []string
	for {
		name, ok := r.history.Dequeue()
		if !ok {
			break
		}
		out = append(out, name)
	}
	return out
}

// InitPollers tries each registered factory in order, skipping disabled
// ones, and adopts the first whose Init succeeds.
func (r *Registry) InitPollers() error {
	n := r.order.Length()
	for i := 0; i < n; i++ {
		f := r.order.Remove().(Factory)
		r.order.Add(f) // keep the original ordering available for future ForkPoller calls

		b := f()
		if r.disabled[b.Name()] {
			continue
		}
		if err := b.Init(); err != nil {
			continue
		}
		r.active = b
		r.names = append(r.names, b.Name())
		return nil
	}
	return api.ErrNoBackendAvailable
}

// DeinitPollers tears down the active backend.
func (r *Registry) DeinitPollers() error {
	if r.active == nil {
		return nil
	}
	err := r.active.Term()
	r.active = nil
	return err
}

// ForkPoller recovers the active backend after fork(). On failure it
// disables that backend and falls back to InitPollers, which tries the
// next candidate in registration order (spec.md §8 scenario 6).
//
// polled_mask on every fd is force-cleared by the caller (fdcore.Table
// has no notion of "backend identity", so this lives at the Core
// wiring layer — see fdcore/core.go) before the new backend's first
// Wait, per DESIGN.md's Open Question resolution.
func (r *Registry) ForkPoller() error {
	if r.active == nil {
		return r.InitPollers()
	}
	if err := r.active.ForkRecover(); err == nil {
		return nil
	}
	r.Disable(r.active.Name())
	_ = r.active.Term()
	r.active = nil
	if err := r.InitPollers(); err != nil {
		return fmt.Errorf("fork recovery: no backend available: %w", err)
	}
	return nil
}

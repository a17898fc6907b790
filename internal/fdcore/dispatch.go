// File: internal/fdcore/dispatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The per-thread dispatch loop: spec.md §4.5's five steps, wired to a
// single api.Backend. One Dispatcher exists per worker thread; Core
// (fdcore/core.go) owns NumThreads of them.

package fdcore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/momentics/hioload-fdcore/api"
)

// Dispatcher runs the event loop for one worker thread.
type Dispatcher struct {
	table   *Table
	tid     int
	backend api.Backend

	// NextExpire returns the next externally-scheduled timer deadline
	// (spec.md §4.5 step 1: "externally provided"). fdcore owns no
	// timer wheel of its own — see internal/concurrency's scheduler for
	// that half of the ambient stack.
	NextExpire func() time.Time

	// metrics, when set via SetMetrics, receives per-tick counters
	// (worker tick count, cumulative cache admissions/evictions, update
	// list high-water mark) after every Tick. Nil means metrics
	// publishing is disabled — the counters are still tracked on Table,
	// just never pushed anywhere.
	metrics api.MetricsSink
	ticks   uint64
}

// NewDispatcher builds a Dispatcher for worker tid against table,
// driven by backend.
func NewDispatcher(table *Table, tid int, backend api.Backend, nextExpire func() time.Time) *Dispatcher {
	return &Dispatcher{table: table, tid: tid, backend: backend, NextExpire: nextExpire}
}

// SetMetrics installs sink as the destination for this dispatcher's
// per-tick counters. Passing nil disables publishing.
func (d *Dispatcher) SetMetrics(sink api.MetricsSink) { d.metrics = sink }

// Tick runs one iteration of the five-step loop.
func (d *Dispatcher) Tick() error {
	expire := d.NextExpire()

	for _, err := range d.table.DrainUpdates(d.tid, d.backend.Sync) {
		log.Printf("fdcore: thread %d: backend sync error: %v", d.tid, err)
	}

	bit := uint64(1) << uint(d.tid)
	if d.table.CacheMask()&bit != 0 {
		expire = time.Now() // already-past deadline: poll without blocking, work is already known to be waiting
	}

	if err := d.backend.Wait(expire, func(fd int, evts api.EventFlags) {
		d.table.UpdateEvents(fd, evts)
	}); err != nil {
		return err
	}

	d.serviceBatch(d.table.DrainLocal(d.tid))
	d.serviceBatch(d.table.DrainGlobalFor(d.tid))

	d.ticks++
	if d.metrics != nil {
		d.publishMetrics()
	}
	return nil
}

// publishMetrics pushes this tick's counters into the installed sink:
// this worker's cumulative tick count, plus the table-wide cache
// admission/eviction totals and update-list high-water mark (SPEC_FULL.md
// §7's metrics bullet).
func (d *Dispatcher) publishMetrics() {
	d.metrics.Set(fmt.Sprintf("fdcore.worker.%d.ticks", d.tid), d.ticks)
	admits, evicts, highWater := d.table.CacheMetrics()
	d.metrics.Set("fdcore.cache.admissions", admits)
	d.metrics.Set("fdcore.cache.evictions", evicts)
	d.metrics.Set("fdcore.update.high_water", highWater)
}

// serviceBatch invokes iocb for each fd still live. A zeroed state means
// the fd was deleted concurrently after being drained out of a cache —
// spec.md §8 scenario 5 requires skipping it silently.
func (d *Dispatcher) serviceBatch(fds []int32) {
	for _, packed := range fds {
		fd := int(packed)
		r := d.table.rec(fd)
		if r.State() == 0 {
			continue
		}
		iocb := r.iocbSnapshot()
		if iocb != nil {
			iocb(fd)
		}
	}
}

// Run drives Tick in a loop until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := d.Tick(); err != nil {
			return err
		}
	}
}

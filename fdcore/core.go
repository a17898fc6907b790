// File: fdcore/core.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Core is the facade aggregating the FD table, the backend registry,
// one dispatch loop per worker, and the ambient control/scheduler
// surfaces behind a single type — the Go-native stand-in for
// original_source/include/proto/fd.h's process-wide init_pollers /
// run_poller / deinit_pollers / fork_poller globals (spec.md §9 "Global
// mutable state"). Modeled on the teacher's facade/hioload.go
// aggregation style: immutable Config, a started flag guarded by a
// mutex, Start/Shutdown pair.

package fdcore

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/control"
	"github.com/momentics/hioload-fdcore/internal/concurrency"
	core "github.com/momentics/hioload-fdcore/internal/fdcore"
	"github.com/momentics/hioload-fdcore/reactor"
)

// Core wires together everything spec.md describes as the fd event
// core, minus the concrete poller backend's kernel calls (reactor) and
// everything spec.md §1 names out of scope.
type Core struct {
	config *Config

	table    *core.Table
	registry *reactor.Registry
	closer   *core.DeferredCloseQueue

	control   *control.ControlAdapter
	scheduler *concurrency.Scheduler

	affinities []api.Affinity // one per worker, index == tid
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	mu      sync.RWMutex
	started bool
}

var _ api.GracefulShutdown = (*Core)(nil)

// New constructs a Core from cfg (DefaultConfig() if nil). It allocates
// the FD table and registers every platform poller backend candidate,
// but does not call Init on any of them — that happens in Start.
func New(cfg *Config) (*Core, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.NumWorkers <= 0 || cfg.NumWorkers > 64 {
		return nil, fmt.Errorf("fdcore: NumWorkers must be in [1,64], got %d", cfg.NumWorkers)
	}

	c := &Core{
		config:    cfg,
		table:     core.NewTable(cfg.FDCapacity, cfg.NumWorkers),
		registry:  reactor.NewRegistry(),
		closer:    core.NewDeferredCloseQueue(cfg.CloseQueueDepth),
		control:   control.NewControlAdapter(),
		scheduler: concurrency.NewScheduler(),
	}
	c.table.SetDeferredClose(c.closer)
	registerPlatformBackends(c.registry, cfg.FDCapacity)

	c.control.SetConfig(map[string]any{
		"fd.capacity":       cfg.FDCapacity,
		"dispatch.workers":  cfg.NumWorkers,
		"poll.timeout_ms":   cfg.PollTimeout.Milliseconds(),
		"dispatch.affinity": cfg.CPUAffinity,
	})
	if cfg.EnableDebug {
		control.RegisterPlatformProbes(c.control.Debug)
		c.registerDebugProbes()
	}

	c.affinities = make([]api.Affinity, cfg.NumWorkers)
	for i := range c.affinities {
		c.affinities[i] = concurrency.NewThreadAffinity()
	}

	return c, nil
}

// Table exposes the underlying fd event core for Insert/Delete and the
// state-transition primitives (spec.md §4.1). Callers that only need
// lifecycle management should prefer Core.Insert/Delete/Remove.
func (c *Core) Table() *core.Table { return c.table }

// Registry exposes the backend registry for introspection
// (reactor.Registry.Names/DisabledHistory).
func (c *Core) Registry() *reactor.Registry { return c.registry }

// Control returns the dynamic config/metrics/debug surface.
func (c *Core) Control() api.Control { return c.control }

// Scheduler returns the ambient timer queue. The dispatch loops do not
// consult it: each worker's NextExpire is now plus Config.PollTimeout.
func (c *Core) Scheduler() api.Scheduler { return c.scheduler }

// Insert binds fd to owner/iocb, authorized to run on every tid set in
// threadMask. The calling thread recorded against the update list is
// threadMask's lowest set bit, matching the convention that insertion
// happens on an FD's primary/accepting thread (spec.md §5).
func (c *Core) Insert(fd int, owner any, iocb api.IOCB, threadMask uint64) error {
	tid := lowestBit(threadMask)
	if tid < 0 {
		return api.ErrInvalidArgument
	}
	return c.table.Insert(fd, tid, owner, iocb, threadMask)
}

// Delete unbinds fd and closes it (asynchronously, via the deferred
// close queue).
func (c *Core) Delete(fd int) error {
	tid := lowestBit(c.table.Record(fd).ThreadMask())
	if tid < 0 {
		tid = 0
	}
	return c.table.Delete(fd, tid)
}

// Remove unbinds fd without closing it.
func (c *Core) Remove(fd int) error {
	tid := lowestBit(c.table.Record(fd).ThreadMask())
	if tid < 0 {
		tid = 0
	}
	return c.table.Remove(fd, tid)
}

func lowestBit(mask uint64) int {
	for i := 0; i < 64; i++ {
		if mask&(uint64(1)<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

// Start initializes the first poller backend whose Init succeeds and
// launches one dispatch-loop goroutine per worker. Calling Start twice
// is a no-op.
func (c *Core) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}

	if err := c.registry.InitPollers(); err != nil {
		return fmt.Errorf("fdcore: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	for tid := 0; tid < c.config.NumWorkers; tid++ {
		c.wg.Add(1)
		go c.runWorker(runCtx, tid)
	}

	c.started = true
	return nil
}

func (c *Core) runWorker(ctx context.Context, tid int) {
	defer c.wg.Done()

	if c.config.CPUAffinity {
		if err := c.affinities[tid].Pin(tid, -1); err != nil {
			log.Printf("fdcore: worker %d: affinity pin failed: %v", tid, err)
		} else {
			defer c.affinities[tid].Unpin()
		}
	}

	disp := core.NewDispatcher(c.table, tid, c.registry.Active(), func() time.Time {
		return time.Now().Add(c.config.PollTimeout)
	})
	if c.config.EnableMetrics {
		disp.SetMetrics(c.control.Metrics)
	}

	if err := disp.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("fdcore: worker %d: dispatch loop exited: %v", tid, err)
	}
}

// HandleFork must be called by the owning process immediately after
// fork() returns in the child, before any dispatcher goroutine resumes
// touching the table. It recovers (or replaces) the active backend and
// force-clears every fd's polled_mask (spec.md §8 scenario 6).
func (c *Core) HandleFork() error {
	if err := c.registry.ForkPoller(); err != nil {
		return err
	}
	c.table.ForkResync()
	return nil
}

// Shutdown cancels every dispatch loop, waits up to ShutdownTimeout for
// them to exit, tears down the active backend, and drains the deferred
// close queue. Implements api.GracefulShutdown.
func (c *Core) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(c.config.ShutdownTimeout):
		log.Printf("fdcore: shutdown timed out after %s waiting for workers", c.config.ShutdownTimeout)
	}

	c.closer.Stop()
	_ = c.scheduler.Close()
	err := c.registry.DeinitPollers()
	c.started = false
	return err
}

func (c *Core) registerDebugProbes() {
	c.control.RegisterDebugProbe("fdcore.capacity", func() any { return c.table.Capacity() })
	c.control.RegisterDebugProbe("fdcore.workers", func() any { return c.table.NumThreads() })
	c.control.RegisterDebugProbe("fdcore.cache_mask", func() any { return c.table.CacheMask() })
	c.control.RegisterDebugProbe("fdcore.backends", func() any { return c.registry.Names() })
	c.control.RegisterDebugProbe("fdcore.disabled_backends", func() any { return c.registry.DisabledHistory() })
}

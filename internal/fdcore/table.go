// File: internal/fdcore/table.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Table owns the fixed-size FD record array plus the two-tier ready
// cache (spec.md §4.2) and the per-thread update lists (spec.md §4.3).
// Grounded on original_source/include/proto/fd.h's fdtab[]/fd_cache/
// fd_updt globals, reshaped from package-level arrays into one owned
// struct the way the teacher's reactor.go wraps platform state.

package fdcore

import (
	"sync"
	"sync/atomic"
)

// Table is the fixed-capacity FD event core. Callers size it once at
// startup to the platform's open-file-descriptor limit; it never grows.
type Table struct {
	records    []Record
	numThreads int

	// Per-thread update lists: updt[tid] holds, in order, the FDs queued
	// since the last DrainUpdates(tid). Fixed capacity, one slot
	// reservation per entry (spec.md §4.3, fd.h's updt_fd_polling).
	updt      [][]int32
	updtCount []int32mu

	// Per-thread ready cache: localHead[tid] is the FD at the front of
	// thread tid's private list, or cacheNone. Mutated only while
	// holding localMu[tid] (spec.md §9: "no thread may touch another
	// thread's per-thread cache" — the mutex exists for the rare case
	// where insertion happens from a different goroutine than the one
	// that will later dispatch the fd, e.g. an accept loop handing a
	// connection to a worker; it is never contended by the owning
	// dispatcher itself).
	localHead  []int
	localCount []int
	localMu    []sync.Mutex

	// Global ready cache: fan-in list for FDs whose thread_mask spans
	// more than one worker. globalUnionMask is the OR of every member's
	// thread_mask and is reset to 0 only when the list drains to empty.
	// Nothing reads it to compute fdCacheMask: admission ORs the member's
	// thread_mask into fdCacheMask directly.
	globalHead      int
	globalCount     int
	globalUnionMask uint64
	globalMu        sync.RWMutex

	// fdCacheMask: bit tid is set when an fd is admitted to thread tid's
	// local cache or to the global cache with tid in its thread_mask. It
	// is cleared when thread tid's local cache empties or is drained, even
	// if the global cache still holds entries for tid, so a clear bit does
	// not prove the global cache has nothing for that thread. A stale set
	// bit only costs a redundant non-blocking scan.
	fdCacheMask atomicMask

	// closer, when set, receives fds from Delete for asynchronous
	// teardown (closequeue.go). A nil closer means Delete closes inline
	// — the default for a Table built outside the fdcore facade.
	closer *DeferredCloseQueue

	// Cumulative counters feeding Dispatcher's per-tick metrics publish
	// (SPEC_FULL.md §7's metrics bullet: cache admission/eviction
	// counts, update-list high-water mark). Plain atomics, no sink
	// dependency here — Table has no notion of Control/metrics wiring,
	// that lives at the Dispatcher/Core layer.
	cacheAdmits     atomic.Uint64
	cacheEvicts     atomic.Uint64
	updateHighWater atomic.Uint32
}

// SetDeferredClose installs q as the destination for every future
// Delete's syscall.Close. Passing nil restores inline closing.
func (t *Table) SetDeferredClose(q *DeferredCloseQueue) { t.closer = q }

type int32mu struct {
	mu  sync.Mutex
	n   int32
}

// NewTable allocates a Table sized for fdCapacity distinct descriptors,
// serviced by numThreads workers (numThreads must be <= 64; see
// DESIGN.md's Open Question resolution on the 64-bit thread masks).
func NewTable(fdCapacity, numThreads int) *Table {
	t := &Table{
		records:    make([]Record, fdCapacity),
		numThreads: numThreads,
		updt:       make([][]int32, numThreads),
		updtCount:  make([]int32mu, numThreads),
		localHead:  make([]int, numThreads),
		localCount: make([]int, numThreads),
		localMu:    make([]sync.Mutex, numThreads),
		globalHead: cacheNone,
	}
	for i := range t.records {
		t.records[i] = *newRecord()
	}
	for i := 0; i < numThreads; i++ {
		t.updt[i] = make([]int32, fdCapacity)
		t.localHead[i] = cacheNone
	}
	return t
}

// Capacity returns the fixed number of FD slots this table manages.
func (t *Table) Capacity() int { return len(t.records) }

// NumThreads returns the number of worker threads this table was sized for.
func (t *Table) NumThreads() int { return t.numThreads }

func (t *Table) rec(fd int) *Record { return &t.records[fd] }

// Record exposes the read-only view of an FD's record for diagnostics
// (spec.md §10's debug probes) and tests.
func (t *Table) Record(fd int) *Record { return &t.records[fd] }

// CacheMetrics returns the cumulative ready-cache admission/eviction
// counts and the high-water mark ever observed across any single
// thread's update list, for Dispatcher to publish through Control.Stats.
func (t *Table) CacheMetrics() (admits, evicts uint64, updateHighWater uint32) {
	return t.cacheAdmits.Load(), t.cacheEvicts.Load(), t.updateHighWater.Load()
}

// bumpUpdateHighWater records n as the new high-water mark if it
// exceeds the previous one. Called with the queued count for a single
// thread's update list after a successful reservation.
func (t *Table) bumpUpdateHighWater(n uint32) {
	for {
		old := t.updateHighWater.Load()
		if n <= old {
			return
		}
		if t.updateHighWater.CompareAndSwap(old, n) {
			return
		}
	}
}

// File: internal/fdcore/record.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The per-FD record: spec.md §3 Data Model.

package fdcore

import (
	"sync"

	"github.com/momentics/hioload-fdcore/api"
)

// cacheNone marks a record as not linked into any ready cache.
const cacheNone = -1

// Record is the fixed-index per-FD state block. One exists for every
// possible file descriptor in the table. owner is a non-owning
// back-reference (spec.md §9 "Cyclic references") — the table never
// dereferences it.
type Record struct {
	state stateWord // atomic; CAS/OR only, never guarded by lock

	// lock guards ev, owner, iocb and threadMask. It also serializes
	// every transition's call into updateCacheLocked. The cache-linkage
	// fields below are guarded by the owning cache's mutex only: the
	// drain paths (DrainLocal/DrainGlobalFor) and unbind's cache eviction
	// modify them without holding this lock.
	lock sync.Mutex

	ev api.EventFlags // latest poll-event snapshot; sticky bits survive across pollings

	owner any      // opaque registrant handle, set by Insert, cleared by Delete/Remove
	iocb  api.IOCB // callback invoked with the fd number on dispatch

	threadMask uint64 // bitmask of worker threads allowed to service this fd

	updateMask atomicMask // threads that queued this fd since the last drain
	polledMask atomicMask // threads whose backend currently has this fd armed

	lingerRisk bool
	cloned     bool

	// Intrusive ready-cache linkage (spec.md §9 "Intrusive lists"):
	// prev/next are FD numbers, cacheNone means "not a cache member".
	// isLinked is the explicit membership flag: prev/next alone can't
	// tell a list head/tail apart from a detached record, since both
	// use cacheNone for a missing neighbour. Guarded by the owning
	// cache's mutex (localMu[tid] or globalMu in table.go), not by lock.
	prev, next int
	isLinked   bool
	inGlobal   bool // true if linked into the global cache, false for a per-thread one
	cacheOwner int  // thread index owning the per-thread cache this fd is linked into
}

func (r *Record) linked() bool { return r.isLinked }
func (r *Record) markLinked()  { r.isLinked = true }
func (r *Record) clearLinked() { r.isLinked = false }

func (r *Record) updateMaskBits() *atomicMask { return &r.updateMask }
func (r *Record) clearUpdateBit(tid int)      { r.updateMask.clear(tid) }
func (r *Record) polledMaskBits() *atomicMask { return &r.polledMask }

// iocbSnapshot returns the callback currently bound to this record.
func (r *Record) iocbSnapshot() api.IOCB {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.iocb
}

func newRecord() *Record {
	return &Record{prev: cacheNone, next: cacheNone, cacheOwner: -1}
}

// State returns the current state word. Safe for concurrent use.
func (r *Record) State() api.State { return r.state.load() }

// Owner returns the registrant handle set by Insert, or nil if the FD is
// not currently registered.
func (r *Record) Owner() any {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.owner
}

// Events returns the latest poll-event snapshot.
func (r *Record) Events() api.EventFlags {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.ev
}

// ThreadMask returns the bitmask of threads allowed to service this fd.
func (r *Record) ThreadMask() uint64 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.threadMask
}

// singleThreaded reports whether exactly one bit is set in threadMask.
// Caller must hold r.lock.
func (r *Record) singleThreaded() bool {
	tm := r.threadMask
	return tm != 0 && tm&(tm-1) == 0
}

func lowestSetBit(mask uint64) int {
	for i := 0; i < 64; i++ {
		if mask&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

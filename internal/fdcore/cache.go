// File: internal/fdcore/cache.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The two-tier ready cache admission/eviction and drain logic. Grounded
// on original_source/include/proto/fd.h's fd_update_cache and the
// fd_cache/fd_cache_local intrusive lists it documents.

package fdcore

import "github.com/momentics/hioload-fdcore/api"

// updateCacheLocked re-evaluates fd's cache membership. Caller must
// already hold t.rec(fd).lock (transitions.go's convention — the same
// lock that protects Record.threadMask, which admission depends on).
func (t *Table) updateCacheLocked(fd int) {
	r := t.rec(fd)
	st := r.state.load()
	admit := st&(api.ActiveR|api.ReadyR) == (api.ActiveR|api.ReadyR) ||
		st&(api.ActiveW|api.ReadyW) == (api.ActiveW|api.ReadyW)
	if admit {
		t.allocCacheEntry(fd, r)
	} else {
		t.releaseCacheEntry(fd, r)
	}
}

// allocCacheEntry links fd into the appropriate cache. Idempotent: a
// already-linked fd is left untouched, matching fd_update_cache being
// safe to call on every transition regardless of prior membership.
func (t *Table) allocCacheEntry(fd int, r *Record) {
	if r.linked() {
		return
	}
	if r.singleThreaded() {
		tid := lowestSetBit(r.threadMask)
		t.localMu[tid].Lock()
		r.prev = cacheNone
		r.next = t.localHead[tid]
		if r.next != cacheNone {
			t.rec(r.next).prev = fd
		}
		t.localHead[tid] = fd
		r.inGlobal = false
		r.cacheOwner = tid
		r.markLinked()
		t.localCount[tid]++
		if t.localCount[tid] == 1 {
			t.fdCacheMask.set(tid)
		}
		t.localMu[tid].Unlock()
		t.cacheAdmits.Add(1)
		return
	}

	t.globalMu.Lock()
	r.prev = cacheNone
	r.next = t.globalHead
	if r.next != cacheNone {
		t.rec(r.next).prev = fd
	}
	t.globalHead = fd
	r.inGlobal = true
	r.cacheOwner = -1
	r.markLinked()
	t.globalCount++
	t.globalUnionMask |= r.threadMask
	t.fdCacheMask.or(r.threadMask)
	t.globalMu.Unlock()
	t.cacheAdmits.Add(1)
}

// releaseCacheEntry unlinks fd from whichever cache currently holds it.
// A no-op if fd is not a member (mirrors HAProxy's removal being safe to
// call unconditionally from fd_update_cache and fd_delete alike).
func (t *Table) releaseCacheEntry(fd int, r *Record) {
	if !r.linked() {
		return
	}
	if r.inGlobal {
		t.globalMu.Lock()
		t.unlinkLocked(&t.globalHead, fd, r)
		t.globalCount--
		if t.globalCount == 0 {
			t.globalUnionMask = 0
		}
		t.globalMu.Unlock()
	} else {
		tid := r.cacheOwner
		t.localMu[tid].Lock()
		t.unlinkLocked(&t.localHead[tid], fd, r)
		t.localCount[tid]--
		if t.localCount[tid] == 0 {
			t.fdCacheMask.clear(tid)
		}
		t.localMu[tid].Unlock()
	}
	r.clearLinked()
	r.prev, r.next = cacheNone, cacheNone
	r.cacheOwner = -1
	t.cacheEvicts.Add(1)
}

// unlinkLocked splices fd out of the list rooted at *head. Caller holds
// the list's mutex (local or global).
func (t *Table) unlinkLocked(head *int, fd int, r *Record) {
	if r.prev != cacheNone {
		t.rec(r.prev).next = r.next
	} else {
		*head = r.next
	}
	if r.next != cacheNone {
		t.rec(r.next).prev = r.prev
	}
}

// DrainLocal detaches thread tid's entire local cache and returns the
// member FDs in front-to-back order. The list is empty again once this
// returns: any fd re-admitted mid-processing lands in a fresh list and
// is serviced on the next tick (spec.md §4.5's single-pass-per-tick rule).
func (t *Table) DrainLocal(tid int) []int32 {
	t.localMu[tid].Lock()
	defer t.localMu[tid].Unlock()

	var out []int32
	fd := t.localHead[tid]
	for fd != cacheNone {
		r := t.rec(fd)
		next := r.next
		r.clearLinked()
		r.prev, r.next = cacheNone, cacheNone
		r.cacheOwner = -1
		out = append(out, int32(fd))
		fd = next
	}
	t.localHead[tid] = cacheNone
	t.localCount[tid] = 0
	t.fdCacheMask.clear(tid)
	return out
}

// DrainGlobalFor scans the global cache for entries whose thread_mask
// includes tid, removes exactly those, and returns them. It is a
// try-lock: if another thread is already scanning, it returns nil
// immediately rather than blocking (spec.md §4.5 "try-lock the global
// cache"); the skipped entries are still there for next tick.
func (t *Table) DrainGlobalFor(tid int) []int32 {
	if !t.globalMu.TryLock() {
		return nil
	}
	defer t.globalMu.Unlock()

	bit := uint64(1) << uint(tid)
	var out []int32
	fd := t.globalHead
	for fd != cacheNone {
		r := t.rec(fd)
		next := r.next
		if r.threadMask&bit != 0 {
			t.unlinkLocked(&t.globalHead, fd, r)
			r.clearLinked()
			r.prev, r.next = cacheNone, cacheNone
			r.cacheOwner = -1
			t.globalCount--
			out = append(out, int32(fd))
		}
		fd = next
	}
	if t.globalCount == 0 {
		t.globalUnionMask = 0
	}
	return out
}

// CacheMask returns the current fd_cache_mask snapshot (spec.md §4.2):
// bit tid set is a hint, never a guarantee, that thread tid has ready
// work waiting.
func (t *Table) CacheMask() uint64 { return t.fdCacheMask.load() }

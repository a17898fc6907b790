// File: internal/fdcore/lifecycle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Insert/Delete/Remove: binding and unbinding a slot in the table.
// Grounded on original_source/include/proto/fd.h's fd_insert/fd_delete
// and fd_remove (spec.md §4.4).

package fdcore

import (
	"syscall"

	"github.com/momentics/hioload-fdcore/api"
)

// Insert binds fd to owner/iocb/threadMask. The caller's own thread bit
// in update_mask is cleared so a stale queue entry from a previous
// incarnation of this fd number doesn't get mistaken for a fresh one;
// polled_mask is deliberately left untouched — a prior incarnation may
// still be registered with some backend, and that backend reconciles on
// the next update cycle rather than being told to de-register blind.
func (t *Table) Insert(fd, tid int, owner any, iocb api.IOCB, threadMask uint64) error {
	if fd < 0 || fd >= len(t.records) {
		return api.ErrInvalidArgument
	}
	r := t.rec(fd)

	r.lock.Lock()
	if r.owner != nil {
		r.lock.Unlock()
		return api.ErrAlreadyRegistered
	}
	r.owner = owner
	r.iocb = iocb
	r.threadMask = threadMask
	r.ev = 0
	r.lingerRisk = false
	r.cloned = false
	r.lock.Unlock()

	r.clearUpdateBit(tid)
	return nil
}

// Delete unbinds fd and closes the underlying descriptor. It atomically
// zeroes the state word first so any dispatcher that already pulled fd
// out of the ready cache observes a zeroed state and skips invoking
// iocb (spec.md §8 scenario 5), then evicts the cache entry, queues a
// de-registration update, and finally closes — asynchronously via the
// table's DeferredCloseQueue if one is installed, inline otherwise.
func (t *Table) Delete(fd, tid int) error {
	if err := t.unbind(fd, tid); err != nil {
		return err
	}
	if t.closer != nil {
		return t.closer.Enqueue(fd)
	}
	return syscall.Close(fd)
}

// Remove is identical to Delete but never closes the descriptor —
// for callers that manage the fd's lifetime themselves (e.g. it was
// never opened by this process).
func (t *Table) Remove(fd, tid int) error {
	return t.unbind(fd, tid)
}

func (t *Table) unbind(fd, tid int) error {
	if fd < 0 || fd >= len(t.records) {
		return api.ErrInvalidArgument
	}
	r := t.rec(fd)
	r.state.v.Store(0)

	r.lock.Lock()
	if r.owner == nil {
		r.lock.Unlock()
		return api.ErrNotRegistered
	}
	r.owner = nil
	r.iocb = nil
	r.threadMask = 0
	r.lock.Unlock()

	t.releaseCacheEntry(fd, r)
	t.queueUpdate(fd, tid)
	return nil
}

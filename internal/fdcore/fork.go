// File: internal/fdcore/fork.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ForkResync implements spec.md §8 scenario 6: after a fork-recovery
// backend swap, no fd's polled_mask can be trusted (it described
// registrations in a kernel object that may no longer be the one in
// use), so every fd is force-cleared and every still-ACTIVE one is
// requeued for re-registration with the new backend.
//
// This is also where the Open Question on polled_mask's precise
// cross-backend semantics (spec.md §9) is resolved: rather than try to
// reconcile per-backend bookkeeping, we always start the new backend
// from a blank slate and pay for redundant EpollCtl/Kevent/Poll calls
// on the next drain — never trust a disabled backend's idea of what
// was armed.

package fdcore

import "github.com/momentics/hioload-fdcore/api"

// ForkResync clears polled_mask for every fd in the table and requeues
// every still-ACTIVE fd onto the update list of each thread it is
// authorized to run on.
func (t *Table) ForkResync() {
	for fd := range t.records {
		r := &t.records[fd]
		r.polledMaskBits().clearAll()

		st := r.state.load()
		if st&api.ActiveRW == 0 {
			continue
		}

		r.lock.Lock()
		tm := r.threadMask
		r.lock.Unlock()

		for tid := 0; tid < t.numThreads; tid++ {
			if tm&(uint64(1)<<uint(tid)) != 0 {
				t.queueUpdate(fd, tid)
			}
		}
	}
}

// File: internal/fdcore/updatelist.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The per-thread update list. Grounded on original_source's
// updt_fd_polling: a bit-test-and-set on update_mask makes queuing
// idempotent, then a single atomically-reserved slot appends the FD
// exactly once per thread per drain cycle (spec.md §4.3, invariant I3).

package fdcore

import "github.com/momentics/hioload-fdcore/api"

// queueUpdate appends fd to thread tid's update list, unless it is
// already queued there since the last drain.
func (t *Table) queueUpdate(fd, tid int) {
	r := t.rec(fd)
	if r.updateMaskBits().testAndSet(tid) {
		return
	}
	c := &t.updtCount[tid]
	c.mu.Lock()
	idx := c.n
	c.n++
	t.updt[tid][idx] = int32(fd)
	n := c.n
	c.mu.Unlock()
	t.bumpUpdateHighWater(uint32(n))
}

// DrainUpdates detaches thread tid's queued FDs, clears their
// update_mask bit for tid, and invokes sync for each with the
// EventFlags the backend should now arm (api.EventIn/api.EventOut,
// taken straight from the live POLLED_R/POLLED_W bits — spec.md §4.4's
// Sync contract). sync's error, if any, is collected but does not stop
// the drain: a single misbehaving fd must not starve the rest of the
// batch.
func (t *Table) DrainUpdates(tid int, sync func(fd int, want api.EventFlags) error) []error {
	c := &t.updtCount[tid]
	c.mu.Lock()
	n := c.n
	c.n = 0
	c.mu.Unlock()

	var errs []error
	for i := int32(0); i < n; i++ {
		fd := int(t.updt[tid][i])
		r := t.rec(fd)

		st := r.state.load()
		var want api.EventFlags
		if st&api.PolledR != 0 {
			want |= api.EventIn
		}
		if st&api.PolledW != 0 {
			want |= api.EventOut
		}
		if want != 0 {
			r.polledMaskBits().set(tid)
		} else {
			r.polledMaskBits().clear(tid)
		}

		if err := sync(fd, want); err != nil {
			errs = append(errs, err)
		}
		r.clearUpdateBit(tid)
	}
	return errs
}

// File: internal/fdcore/events.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// UpdateEvents folds a fresh poll(2)/epoll/kqueue event mask into an
// fd's sticky snapshot, then promotes readiness. Split into a locked
// merge and an unlocked promotion step per spec.md §4.4, since MayRecv/
// MaySend already take the lock themselves for the cache update.

package fdcore

import "github.com/momentics/hioload-fdcore/api"

// UpdateEvents merges evts into fd's event snapshot (api.StickyMask bits
// — HUP and error — survive across calls until the next Insert on this
// fd resets the snapshot) and promotes MayRecv/MaySend accordingly.
func (t *Table) UpdateEvents(fd int, evts api.EventFlags) {
	r := t.rec(fd)

	r.lock.Lock()
	r.ev = (r.ev & api.StickyMask) | evts
	snapshot := r.ev
	r.lock.Unlock()

	if snapshot&(api.EventIn|api.EventHUP|api.EventErr) != 0 {
		t.MayRecv(fd)
	}
	if snapshot&(api.EventOut|api.EventErr) != 0 {
		t.MaySend(fd)
	}
}

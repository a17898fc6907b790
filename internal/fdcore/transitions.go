// File: internal/fdcore/transitions.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The per-direction state transitions. Each is transcribed from the
// corresponding fd_want_recv/fd_stop_recv/... function declared in
// original_source/include/proto/fd.h, generalized from recv/send to a
// single api.Direction parameter (spec.md §4.1's transition table).
//
// Every transition takes an explicit tid: Go has no implicit
// thread-local "current worker index" the way HAProxy's tid global
// does, so the caller — the dispatcher goroutine servicing that FD —
// passes its own index in. For a single-thread-affined FD this must be
// the FD's one authorized thread; callers that get it wrong only cost
// themselves a missed wakeup, never a crash, since admission keys off
// Record.threadMask, not off tid.
//
// Every successful transition (one that did not short-circuit on its
// no-op precondition) takes the per-FD lock and calls updateCacheLocked
// (spec.md §4.2); a transition additionally enqueues on the update list
// only when the POLLED bit actually changed (spec.md §4.3).

package fdcore

import "github.com/momentics/hioload-fdcore/api"

// WantRecv arms interest in read-readiness for fd on behalf of tid.
func (t *Table) WantRecv(fd, tid int) { t.want(fd, tid, api.DirRecv) }

// WantSend arms interest in write-readiness for fd on behalf of tid.
func (t *Table) WantSend(fd, tid int) { t.want(fd, tid, api.DirSend) }

func (t *Table) want(fd, tid int, dir api.Direction) {
	m := masksFor(dir)
	r := t.rec(fd)
	var polledChanged bool
	for {
		old := r.state.load()
		if old&m.active != 0 {
			return // already ACTIVE: no-op, per the transition table
		}
		neu := old | m.active
		if old&m.ready == 0 {
			neu |= m.polled
		}
		if r.state.cas(old, neu) {
			polledChanged = old&m.polled != neu&m.polled
			break
		}
	}
	if polledChanged {
		t.queueUpdate(fd, tid)
	}
	t.reconcileCache(fd)
}

// StopRecv clears interest in read-readiness for fd.
func (t *Table) StopRecv(fd, tid int) { t.stop(fd, tid, api.DirRecv) }

// StopSend clears interest in write-readiness for fd.
func (t *Table) StopSend(fd, tid int) { t.stop(fd, tid, api.DirSend) }

func (t *Table) stop(fd, tid int, dir api.Direction) {
	m := masksFor(dir)
	r := t.rec(fd)
	var polledChanged bool
	for {
		old := r.state.load()
		if old&m.active == 0 {
			return // already inactive: no-op
		}
		neu := old &^ (m.active | m.polled)
		if r.state.cas(old, neu) {
			polledChanged = old&m.polled != neu&m.polled
			break
		}
	}
	if polledChanged {
		t.queueUpdate(fd, tid)
	}
	t.reconcileCache(fd)
}

// StopBoth clears interest in both directions in a single CAS, the way
// fd_stop_both avoids two separate retry storms on close.
func (t *Table) StopBoth(fd, tid int) {
	r := t.rec(fd)
	var polledChanged bool
	for {
		old := r.state.load()
		if old&api.ActiveRW == 0 {
			return
		}
		neu := old &^ (api.ActiveRW | api.PolledRW)
		if r.state.cas(old, neu) {
			polledChanged = old&api.PolledRW != neu&api.PolledRW
			break
		}
	}
	if polledChanged {
		t.queueUpdate(fd, tid)
	}
	t.reconcileCache(fd)
}

// CantRecv reports that a recv() attempt returned EAGAIN: readiness was
// a false positive. Cleared without touching ACTIVE, so the next real
// event still arms the backend.
func (t *Table) CantRecv(fd, tid int) { t.cant(fd, tid, api.DirRecv) }

// CantSend reports that a send() attempt returned EAGAIN.
func (t *Table) CantSend(fd, tid int) { t.cant(fd, tid, api.DirSend) }

func (t *Table) cant(fd, tid int, dir api.Direction) {
	m := masksFor(dir)
	r := t.rec(fd)
	var polledChanged bool
	for {
		old := r.state.load()
		if old&m.ready == 0 {
			return // not actually ready: no-op
		}
		neu := old &^ m.ready
		if old&m.active != 0 {
			neu |= m.polled
		}
		if r.state.cas(old, neu) {
			polledChanged = old&m.polled != neu&m.polled
			break
		}
	}
	if polledChanged {
		t.queueUpdate(fd, tid)
	}
	t.reconcileCache(fd)
}

// MayRecv marks fd as read-ready, from either a real poll event or a
// speculative retry. No precondition: applying it twice is harmless.
func (t *Table) MayRecv(fd int) { t.may(fd, api.DirRecv) }

// MaySend marks fd as write-ready.
func (t *Table) MaySend(fd int) { t.may(fd, api.DirSend) }

func (t *Table) may(fd int, dir api.Direction) {
	m := masksFor(dir)
	t.rec(fd).state.or(m.ready)
	t.reconcileCache(fd)
}

// DoneRecv acknowledges that the caller has fully drained recv-readiness
// (read until EAGAIN). Only applies when the fd was both POLLED and
// READY; otherwise it is a no-op.
func (t *Table) DoneRecv(fd, tid int) { t.done(fd, tid, api.DirRecv) }

// DoneSend acknowledges that the caller has fully drained send-readiness.
func (t *Table) DoneSend(fd, tid int) { t.done(fd, tid, api.DirSend) }

func (t *Table) done(fd, tid int, dir api.Direction) {
	m := masksFor(dir)
	r := t.rec(fd)
	var polledChanged bool
	for {
		old := r.state.load()
		if old&(m.polled|m.ready) != (m.polled | m.ready) {
			return
		}
		neu := old &^ m.ready
		if old&m.active != 0 {
			neu |= m.polled
		}
		if r.state.cas(old, neu) {
			polledChanged = old&m.polled != neu&m.polled
			break
		}
	}
	if polledChanged {
		t.queueUpdate(fd, tid)
	}
	t.reconcileCache(fd)
}

// reconcileCache takes fd's per-FD lock and re-evaluates ready-cache
// membership, per spec.md §4.2's "called after every successful state
// transition holding the per-FD spinlock".
func (t *Table) reconcileCache(fd int) {
	r := t.rec(fd)
	r.lock.Lock()
	t.updateCacheLocked(fd)
	r.lock.Unlock()
}

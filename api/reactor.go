// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the narrow poller-backend contract the fd event core drives.
// A backend owns exactly one kernel readiness notifier (epoll, kqueue,
// poll) and must behave as level-triggered regardless of the underlying
// mechanism; the core never arms edge-triggered semantics.

package api

import "time"

// Backend is the contract a poller implementation must satisfy. Backends
// register themselves with a registry at startup; the core picks the
// first one whose Init succeeds and falls back to the next one if
// ForkRecover fails after a fork().
type Backend interface {
	// Init allocates the kernel object and any per-FD bookkeeping.
	Init() error

	// Term tears down the kernel object.
	Term() error

	// ForkRecover reinitializes kernel state after fork(). On failure the
	// caller disables this backend and falls back to the next registered
	// one.
	ForkRecover() error

	// Sync applies a single registration delta (arm/disarm a direction)
	// for fd. Called once per update-list entry before Wait blocks.
	Sync(fd int, want EventFlags) error

	// Wait blocks until expireAbsolute, or indefinitely if it is the
	// zero time.Time. A deadline already in the past (e.g. time.Now())
	// means poll without blocking. Readiness is reported through update
	// for every FD that became ready.
	Wait(expireAbsolute time.Time, update func(fd int, evts EventFlags)) error

	// Name identifies the backend for introspection and logging.
	Name() string
}

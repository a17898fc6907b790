//go:build unix

// File: reactor/poll_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable poll(2) fallback, registered last so it only runs on a unix
// variant epoll/kqueue don't cover, or when the epoll/kqueue backend's
// Init fails (SPEC_FULL.md §10 names this as
// a supplemented feature: the original's select()-era fallback path).
// O(watched fds) per Wait call by construction — acceptable as a last
// resort, never as the primary backend.

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/internal/fdcore"
)

// PollBackend drives poll(2) as an api.Backend.
type PollBackend struct {
	mu      sync.Mutex
	want    map[int]api.EventFlags
	watched *fdcore.BitSet
}

var _ api.Backend = (*PollBackend)(nil)

// NewPollBackend returns an unopened PollBackend sized for fdCapacity
// distinct descriptors.
func NewPollBackend(fdCapacity int) *PollBackend {
	return &PollBackend{watched: fdcore.NewBitSet(fdCapacity)}
}

func (b *PollBackend) Name() string { return "poll" }

func (b *PollBackend) Init() error {
	b.want = make(map[int]api.EventFlags)
	return nil
}

func (b *PollBackend) Term() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.want = nil
	return nil
}

// ForkRecover drops every tracked registration: the parent's fd table
// may have shrunk across fork(), and poll(2) carries no kernel-side
// registration to invalidate anyway, so this just clears bookkeeping.
func (b *PollBackend) ForkRecover() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.want = make(map[int]api.EventFlags)
	return nil
}

func (b *PollBackend) Sync(fd int, want api.EventFlags) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if want == 0 {
		delete(b.want, fd)
		b.watched.Clear(fd)
		return nil
	}
	b.want[fd] = want
	b.watched.Set(fd)
	return nil
}

func (b *PollBackend) Wait(expireAbsolute time.Time, update func(fd int, evts api.EventFlags)) error {
	b.mu.Lock()
	fds := make([]unix.PollFd, 0, len(b.want))
	for fd, want := range b.want {
		var ev int16
		if want&api.EventIn != 0 {
			ev |= unix.POLLIN
		}
		if want&api.EventOut != 0 {
			ev |= unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: ev})
	}
	b.mu.Unlock()

	if len(fds) == 0 {
		timeout := waitTimeoutMS(expireAbsolute)
		if timeout < 0 {
			timeout = 1000 // no registered fds and no deadline: don't block forever on nothing
		}
		time.Sleep(time.Duration(timeout) * time.Millisecond)
		return nil
	}

	n, err := unix.Poll(fds, waitTimeoutMS(expireAbsolute))
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	if n == 0 {
		return nil
	}
	for _, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}
		var flags api.EventFlags
		if pfd.Revents&unix.POLLIN != 0 {
			flags |= api.EventIn
		}
		if pfd.Revents&unix.POLLOUT != 0 {
			flags |= api.EventOut
		}
		if pfd.Revents&unix.POLLHUP != 0 {
			flags |= api.EventHUP
		}
		if pfd.Revents&unix.POLLERR != 0 {
			flags |= api.EventErr
		}
		if pfd.Revents&unix.POLLPRI != 0 {
			flags |= api.EventPri
		}
		update(int(pfd.Fd), flags)
	}
	return nil
}

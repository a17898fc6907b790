//go:build linux

// File: reactor/epoll_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll(7) backend, level-triggered only — the teacher's
// reactor_linux.go armed EPOLLET (edge-triggered); that bit is
// deliberately never set here (see DESIGN.md and spec.md §2's
// level-triggered-only requirement).

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/internal/fdcore"
	"github.com/momentics/hioload-fdcore/pool"
)

// EpollBackend drives Linux's epoll(7) as an api.Backend. A single
// instance is shared by every dispatch-loop goroutine (spec.md §5: the
// kernel epoll object is process-wide, not per-thread), so Sync's
// bookkeeping needs its own lock distinct from any per-FD spinlock in
// internal/fdcore — epoll_wait itself is safe to call concurrently from
// multiple threads on one epfd without help.
type EpollBackend struct {
	epfd       int
	mu         sync.Mutex
	registered *fdcore.BitSet
	fdCapacity int
	eventBuf   *pool.SyncPool[[]unix.EpollEvent] // reused across Wait calls
}

var _ api.Backend = (*EpollBackend)(nil)

// NewEpollBackend returns an unopened EpollBackend sized for fdCapacity
// distinct descriptors.
func NewEpollBackend(fdCapacity int) *EpollBackend {
	return &EpollBackend{
		epfd:       -1,
		fdCapacity: fdCapacity,
		eventBuf: pool.NewSyncPool(func() []unix.EpollEvent {
			return make([]unix.EpollEvent, defaultEventBatch)
		}),
	}
}

func (b *EpollBackend) Name() string { return "epoll" }

func (b *EpollBackend) Init() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	b.epfd = epfd
	b.registered = fdcore.NewBitSet(b.fdCapacity)
	return nil
}

func (b *EpollBackend) Term() error {
	if b.epfd < 0 {
		return nil
	}
	err := unix.Close(b.epfd)
	b.epfd = -1
	return err
}

// ForkRecover closes the inherited epoll instance (epoll fds do not
// survive fork() usefully — event masks but not ownership carry over
// incorrectly) and opens a fresh one. Every fd is now unregistered from
// the new instance's point of view; Sync re-arms them as the update
// list replays (spec.md §8 scenario 6).
func (b *EpollBackend) ForkRecover() error {
	_ = b.Term()
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	b.epfd = epfd
	b.registered = fdcore.NewBitSet(b.fdCapacity)
	return nil
}

func (b *EpollBackend) Sync(fd int, want api.EventFlags) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if want == 0 {
		if b.registered.IsSet(fd) {
			b.registered.Clear(fd)
			err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, fd, nil)
			if err != nil && err != unix.ENOENT {
				return err
			}
		}
		return nil
	}

	ev := &unix.EpollEvent{Fd: int32(fd), Events: translateWant(want)}
	op := unix.EPOLL_CTL_MOD
	if !b.registered.IsSet(fd) {
		op = unix.EPOLL_CTL_ADD
	}
	err := unix.EpollCtl(b.epfd, op, fd, ev)
	if err != nil && op == unix.EPOLL_CTL_MOD && err == unix.ENOENT {
		err = unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, fd, ev)
	}
	if err != nil {
		return err
	}
	b.registered.Set(fd)
	return nil
}

func translateWant(want api.EventFlags) uint32 {
	var ev uint32
	if want&api.EventIn != 0 {
		ev |= unix.EPOLLIN
	}
	if want&api.EventOut != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (b *EpollBackend) Wait(expireAbsolute time.Time, update func(fd int, evts api.EventFlags)) error {
	timeoutMS := waitTimeoutMS(expireAbsolute)

	events := b.eventBuf.Get()
	defer b.eventBuf.Put(events)

	n, err := unix.EpollWait(b.epfd, events, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	for i := 0; i < n; i++ {
		var flags api.EventFlags
		e := events[i].Events
		if e&unix.EPOLLIN != 0 {
			flags |= api.EventIn
		}
		if e&unix.EPOLLOUT != 0 {
			flags |= api.EventOut
		}
		if e&unix.EPOLLHUP != 0 || e&unix.EPOLLRDHUP != 0 {
			flags |= api.EventHUP
		}
		if e&unix.EPOLLERR != 0 {
			flags |= api.EventErr
		}
		if e&unix.EPOLLPRI != 0 {
			flags |= api.EventPri
		}
		update(int(events[i].Fd), flags)
	}
	return nil
}

//go:build darwin || freebsd || netbsd || openbsd || dragonfly

// File: reactor/kqueue_bsd.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// kqueue(2) backend for BSD/Darwin. Grounded on the teacher's
// reactor_linux.go shape (one kernel fd, Register/Wait/Close) but
// transcribed to kqueue's EV_SET/kevent calls — the teacher has no
// kqueue code of its own, so this is new code learned from the pack's
// use of golang.org/x/sys/unix rather than adapted from a teacher file
// (SPEC_FULL.md §6).
//
// EV_CLEAR is never passed: kqueue is level-triggered by default as
// long as that flag is absent, matching spec.md's level-triggered-only
// requirement the same way epoll_linux.go avoids EPOLLET.

package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/internal/fdcore"
	"github.com/momentics/hioload-fdcore/pool"
)

// KqueueBackend drives kqueue(2) as an api.Backend. Shared by every
// dispatch-loop goroutine the same way EpollBackend is; mu guards
// watchR/watchW the way EpollBackend.mu guards registered.
type KqueueBackend struct {
	kq         int
	mu         sync.Mutex
	watchR     *fdcore.BitSet // tracks which directions are currently filtered, per fd
	watchW     *fdcore.BitSet
	fdCapacity int
	eventBuf   *pool.SyncPool[[]unix.Kevent_t] // reused across Wait calls
}

var _ api.Backend = (*KqueueBackend)(nil)

// NewKqueueBackend returns an unopened KqueueBackend sized for
// fdCapacity distinct descriptors.
func NewKqueueBackend(fdCapacity int) *KqueueBackend {
	return &KqueueBackend{
		kq:         -1,
		fdCapacity: fdCapacity,
		eventBuf: pool.NewSyncPool(func() []unix.Kevent_t {
			return make([]unix.Kevent_t, defaultEventBatch)
		}),
	}
}

func (b *KqueueBackend) Name() string { return "kqueue" }

func (b *KqueueBackend) Init() error {
	kq, err := unix.Kqueue()
	if err != nil {
		return err
	}
	b.kq = kq
	b.watchR = fdcore.NewBitSet(b.fdCapacity)
	b.watchW = fdcore.NewBitSet(b.fdCapacity)
	return nil
}

func (b *KqueueBackend) Term() error {
	if b.kq < 0 {
		return nil
	}
	err := unix.Close(b.kq)
	b.kq = -1
	return err
}

// ForkRecover opens a fresh kqueue: like epoll, a kqueue descriptor's
// registrations are not meaningfully inherited across fork().
func (b *KqueueBackend) ForkRecover() error {
	_ = b.Term()
	kq, err := unix.Kqueue()
	if err != nil {
		return err
	}
	b.kq = kq
	b.watchR = fdcore.NewBitSet(b.fdCapacity)
	b.watchW = fdcore.NewBitSet(b.fdCapacity)
	return nil
}

func (b *KqueueBackend) Sync(fd int, want api.EventFlags) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var changes []unix.Kevent_t

	wantR := want&api.EventIn != 0
	wantW := want&api.EventOut != 0

	if wantR != b.watchR.IsSet(fd) {
		flag := uint16(unix.EV_ADD | unix.EV_ENABLE)
		if !wantR {
			flag = unix.EV_DELETE
		}
		changes = append(changes, makeKevent(fd, unix.EVFILT_READ, flag))
		if wantR {
			b.watchR.Set(fd)
		} else {
			b.watchR.Clear(fd)
		}
	}
	if wantW != b.watchW.IsSet(fd) {
		flag := uint16(unix.EV_ADD | unix.EV_ENABLE)
		if !wantW {
			flag = unix.EV_DELETE
		}
		changes = append(changes, makeKevent(fd, unix.EVFILT_WRITE, flag))
		if wantW {
			b.watchW.Set(fd)
		} else {
			b.watchW.Clear(fd)
		}
	}
	if len(changes) == 0 {
		return nil
	}
	_, err := unix.Kevent(b.kq, changes, nil, nil)
	if err != nil && err != unix.ENOENT {
		return err
	}
	return nil
}

func makeKevent(fd int, filter int16, flags uint16) unix.Kevent_t {
	return unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: filter,
		Flags:  flags,
	}
}

func (b *KqueueBackend) Wait(expireAbsolute time.Time, update func(fd int, evts api.EventFlags)) error {
	var ts *unix.Timespec
	ms := waitTimeoutMS(expireAbsolute)
	if ms >= 0 {
		d := time.Duration(ms) * time.Millisecond
		sec := unix.NsecToTimespec(d.Nanoseconds())
		ts = &sec
	}

	events := b.eventBuf.Get()
	defer b.eventBuf.Put(events)

	n, err := unix.Kevent(b.kq, nil, events, ts)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	for i := 0; i < n; i++ {
		var flags api.EventFlags
		switch events[i].Filter {
		case unix.EVFILT_READ:
			flags |= api.EventIn
		case unix.EVFILT_WRITE:
			flags |= api.EventOut
		}
		if events[i].Flags&unix.EV_EOF != 0 {
			flags |= api.EventHUP
		}
		if events[i].Flags&unix.EV_ERROR != 0 {
			flags |= api.EventErr
		}
		update(int(events[i].Ident), flags)
	}
	return nil
}

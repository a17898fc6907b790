//go:build linux

// File: reactor/epoll_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-fdcore/api"
)

func TestEpollBackendReportsReadableFD(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	b := NewEpollBackend(64)
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Term()

	rfd := int(r.Fd())
	if err := b.Sync(rfd, api.EventIn); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var gotFD int
	var gotFlags api.EventFlags
	err = b.Wait(time.Now().Add(time.Second), func(fd int, evts api.EventFlags) {
		gotFD, gotFlags = fd, evts
	})
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if gotFD != rfd {
		t.Errorf("Wait reported fd %d, want %d", gotFD, rfd)
	}
	if gotFlags&api.EventIn == 0 {
		t.Errorf("Wait did not report EventIn, got %#x", gotFlags)
	}
}

func TestEpollBackendSyncModThenDel(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	b := NewEpollBackend(64)
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Term()

	rfd := int(r.Fd())
	if err := b.Sync(rfd, api.EventIn); err != nil {
		t.Fatalf("initial add: %v", err)
	}
	if err := b.Sync(rfd, api.EventIn|api.EventOut); err != nil {
		t.Fatalf("mod: %v", err)
	}
	if err := b.Sync(rfd, 0); err != nil {
		t.Fatalf("del: %v", err)
	}
	if b.registered.IsSet(rfd) {
		t.Errorf("fd still marked registered after Sync(fd, 0)")
	}
}

func TestEpollBackendForkRecoverOpensFreshInstance(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	b := NewEpollBackend(64)
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Term()

	rfd := int(r.Fd())
	if err := b.Sync(rfd, api.EventIn); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if err := b.ForkRecover(); err != nil {
		t.Fatalf("ForkRecover: %v", err)
	}
	// ForkRecover closes the old instance before opening the new one, so
	// the kernel may hand back the same descriptor number. Freshness is
	// checked by registration instead: the new instance has never seen rfd.
	if err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, rfd, nil); err != unix.ENOENT {
		t.Errorf("ForkRecover did not open a new epoll instance: EPOLL_CTL_DEL on the previously armed fd = %v, want ENOENT", err)
	}
	if b.epfd < 0 {
		t.Errorf("epfd invalid after ForkRecover: %d", b.epfd)
	}
}

// File: internal/concurrency/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cross-platform CPU pinning for worker goroutines driving an
// fdcore.Dispatcher. One ThreadAffinity wraps exactly one OS thread
// (via runtime.LockOSThread); platform-specific pin/unpin live in
// affinity_linux.go / affinity_windows.go / affinity_other.go.

package concurrency

import (
	"runtime"
	"sync"

	"github.com/momentics/hioload-fdcore/api"
)

// ThreadAffinity implements api.Affinity for the goroutine that calls Pin.
type ThreadAffinity struct {
	mu     sync.Mutex
	cpuID  int
	numaID int
	pinned bool
}

var _ api.Affinity = (*ThreadAffinity)(nil)

// NewThreadAffinity returns an unpinned ThreadAffinity.
func NewThreadAffinity() *ThreadAffinity {
	return &ThreadAffinity{cpuID: -1, numaID: -1}
}

// Pin locks the calling goroutine to its OS thread and binds that thread
// to cpuID. numaID is recorded for Get() but otherwise advisory: Go's
// allocator gives callers no NUMA-local allocation control, so we rely
// on CPU pinning alone for locality.
func (a *ThreadAffinity) Pin(cpuID, numaID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	runtime.LockOSThread()
	if err := platformPin(cpuID); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	a.cpuID, a.numaID, a.pinned = cpuID, numaID, true
	return nil
}

// Unpin releases the CPU binding and the underlying OS thread lock.
func (a *ThreadAffinity) Unpin() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.pinned {
		return nil
	}
	err := platformUnpin()
	runtime.UnlockOSThread()
	a.pinned = false
	a.cpuID, a.numaID = -1, -1
	return err
}

// Get returns the currently pinned CPU/NUMA node, or (-1, -1) if unpinned.
func (a *ThreadAffinity) Get() (cpuID, numaID int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cpuID, a.numaID, nil
}

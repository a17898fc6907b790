// File: internal/fdcore/closequeue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Delete() must not call syscall.Close while holding any per-FD state:
// a slow close (e.g. a lingering TCP socket flushing its send buffer)
// would otherwise stall whichever dispatcher goroutine happened to own
// the fd being torn down. DeferredCloseQueue hands the fd off to a
// background goroutine instead, backed by the lock-free ring buffer in
// internal/concurrency (grounded on the teacher's Vyukov MPMC ring).

package fdcore

import (
	"sync"
	"syscall"

	"github.com/momentics/hioload-fdcore/internal/concurrency"
)

// DeferredCloseQueue decouples fd teardown from the caller of Delete.
// A full ring falls back to closing inline rather than blocking the
// caller or dropping the fd.
type DeferredCloseQueue struct {
	ring *concurrency.RingBuffer[int32]
	wake chan struct{}
	stop chan struct{}
	once sync.Once
}

// NewDeferredCloseQueue allocates a queue with room for capacity pending
// closes (rounded up to the next power of two) and starts its drain
// goroutine.
func NewDeferredCloseQueue(capacity uint64) *DeferredCloseQueue {
	size := uint64(1)
	for size < capacity {
		size <<= 1
	}
	if size == 0 {
		size = 1
	}
	q := &DeferredCloseQueue{
		ring: concurrency.NewRingBuffer[int32](size),
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue schedules fd for an asynchronous close. If the ring is
// momentarily full it closes fd inline rather than lose the descriptor.
func (q *DeferredCloseQueue) Enqueue(fd int) error {
	if q.ring.Enqueue(int32(fd)) {
		select {
		case q.wake <- struct{}{}:
		default:
		}
		return nil
	}
	return syscall.Close(fd)
}

// Stop halts the drain goroutine. Any fd still queued is closed
// synchronously so no descriptor leaks past shutdown.
func (q *DeferredCloseQueue) Stop() {
	q.once.Do(func() { close(q.stop) })
	for {
		fd, ok := q.ring.Dequeue()
		if !ok {
			return
		}
		_ = syscall.Close(int(fd))
	}
}

func (q *DeferredCloseQueue) run() {
	for {
		for {
			fd, ok := q.ring.Dequeue()
			if !ok {
				break
			}
			_ = syscall.Close(int(fd))
		}
		select {
		case <-q.wake:
		case <-q.stop:
			return
		}
	}
}

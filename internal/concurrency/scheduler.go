// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// High-precision timer scheduler exposed through fdcore's
// Core.Scheduler. Dispatcher.NextExpire does not read from it.

package concurrency

import (
	"container/heap"
	"sync"
	"time"

	"github.com/momentics/hioload-fdcore/api"
)

// timerTask is one scheduled callback.
type timerTask struct {
	deadline time.Time
	fn       func()
	index    int // heap.Interface bookkeeping

	mu       sync.Mutex
	canceled bool
	done      chan struct{}
}

func (t *timerTask) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled {
		return nil
	}
	t.canceled = true
	close(t.done)
	return nil
}

func (t *timerTask) Done() <-chan struct{} { return t.done }

func (t *timerTask) Err() error {
	select {
	case <-t.done:
		return nil
	default:
		return api.ErrInvalidArgument
	}
}

var _ api.Cancelable = (*timerTask)(nil)

// taskHeap is a container/heap min-heap ordered by deadline.
type taskHeap []*timerTask

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *taskHeap) Push(x any) {
	task := x.(*timerTask)
	task.index = len(*h)
	*h = append(*h, task)
}
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*h = old[:n-1]
	return task
}

// Scheduler is a goroutine-driven min-heap timer queue. One Schedule
// call allocates one goroutine-free heap entry; a single background
// goroutine (started by NewScheduler) pops and fires due entries.
type Scheduler struct {
	mu     sync.Mutex
	timerQ taskHeap
	notify chan struct{}
	stop   chan struct{}
	start  time.Time
}

var _ api.Scheduler = (*Scheduler)(nil)

// NewScheduler constructs a Scheduler and starts its run loop.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		notify: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		start:  time.Now(),
	}
	heap.Init(&s.timerQ)
	go s.run()
	return s
}

// Schedule runs fn once, after delayNanos from now.
func (s *Scheduler) Schedule(delayNanos int64, fn func()) (api.Cancelable, error) {
	if fn == nil {
		return nil, api.ErrInvalidArgument
	}
	task := &timerTask{
		deadline: time.Now().Add(time.Duration(delayNanos)),
		fn:       fn,
		done:     make(chan struct{}),
	}
	s.mu.Lock()
	heap.Push(&s.timerQ, task)
	s.mu.Unlock()
	s.wake()
	return task, nil
}

// Cancel aborts a previously scheduled callback, if it hasn't fired yet.
func (s *Scheduler) Cancel(c api.Cancelable) error {
	task, ok := c.(*timerTask)
	if !ok {
		return api.ErrInvalidArgument
	}
	if err := task.Cancel(); err != nil {
		return err
	}
	s.mu.Lock()
	if task.index >= 0 && task.index < len(s.timerQ) && s.timerQ[task.index] == task {
		heap.Remove(&s.timerQ, task.index)
	}
	s.mu.Unlock()
	return nil
}

// Now returns monotonic nanoseconds since the scheduler was created.
func (s *Scheduler) Now() int64 { return int64(time.Since(s.start)) }

// Close stops the run loop. Pending, unfired tasks are dropped.
func (s *Scheduler) Close() error {
	close(s.stop)
	return nil
}

func (s *Scheduler) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.mu.Lock()
		if s.timerQ.Len() == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.stop:
				return
			}
		}

		next := s.timerQ[0]
		wait := time.Until(next.deadline)
		s.mu.Unlock()

		if wait <= 0 {
			s.fireDue()
			continue
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-timer.C:
			s.fireDue()
		case <-s.notify:
		case <-s.stop:
			return
		}
	}
}

// fireDue pops and runs every task whose deadline has passed.
func (s *Scheduler) fireDue() {
	now := time.Now()
	for {
		s.mu.Lock()
		if s.timerQ.Len() == 0 || s.timerQ[0].deadline.After(now) {
			s.mu.Unlock()
			return
		}
		task := heap.Pop(&s.timerQ).(*timerTask)
		s.mu.Unlock()

		task.mu.Lock()
		canceled := task.canceled
		if !canceled {
			task.canceled = true
			close(task.done)
		}
		task.mu.Unlock()
		if !canceled {
			task.fn()
		}
	}
}

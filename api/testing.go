// Package api
// Author: momentics
//
// Mock/testing utilities for all core contracts; extendable for new interfaces.

package api

import "time"

// MockBackend is a test and mock-friendly implementation of Backend.
type MockBackend struct {
	InitFunc        func() error
	TermFunc        func() error
	ForkRecoverFunc func() error
	SyncFunc        func(fd int, want EventFlags) error
	WaitFunc        func(expire time.Time, update func(fd int, evts EventFlags)) error
	NameFunc        func() string
}

func (m *MockBackend) Init() error        { return call(m.InitFunc) }
func (m *MockBackend) Term() error        { return call(m.TermFunc) }
func (m *MockBackend) ForkRecover() error { return call(m.ForkRecoverFunc) }

func (m *MockBackend) Sync(fd int, want EventFlags) error {
	if m.SyncFunc == nil {
		return nil
	}
	return m.SyncFunc(fd, want)
}

func (m *MockBackend) Wait(expire time.Time, update func(fd int, evts EventFlags)) error {
	if m.WaitFunc == nil {
		return nil
	}
	return m.WaitFunc(expire, update)
}

func (m *MockBackend) Name() string {
	if m.NameFunc == nil {
		return "mock"
	}
	return m.NameFunc()
}

func call(fn func() error) error {
	if fn == nil {
		return nil
	}
	return fn()
}

// Extend with mocks for all additional core contracts as architecture evolves.

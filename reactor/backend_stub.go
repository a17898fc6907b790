//go:build !unix && !windows

// File: reactor/backend_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub backend for platforms with no poll/epoll/kqueue/IOCP binding
// (e.g. js/wasm). Registry simply has nothing usable to fall back to.

package reactor

import (
	"time"

	"github.com/momentics/hioload-fdcore/api"
)

// StubBackend always fails Init.
type StubBackend struct{}

var _ api.Backend = (*StubBackend)(nil)

func NewStubBackend() *StubBackend { return &StubBackend{} }

func (b *StubBackend) Name() string                                    { return "stub-unsupported" }
func (b *StubBackend) Init() error                                     { return api.ErrNotSupported }
func (b *StubBackend) Term() error                                     { return nil }
func (b *StubBackend) ForkRecover() error                              { return api.ErrNotSupported }
func (b *StubBackend) Sync(fd int, want api.EventFlags) error          { return api.ErrNotSupported }
func (b *StubBackend) Wait(expireAbsolute time.Time, update func(fd int, evts api.EventFlags)) error {
	return api.ErrNotSupported
}

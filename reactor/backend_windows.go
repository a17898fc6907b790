//go:build windows

// File: reactor/backend_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows has no level-triggered readiness notifier comparable to
// epoll/kqueue/poll: IOCP is fundamentally a completion port for
// already-issued overlapped I/O, not a "tell me when fd N is
// readable" primitive, so it cannot honor the Backend contract's
// repeated-until-drained semantics without layering a second state
// machine on top (see DESIGN.md). Rather than fake level-triggering
// over IOCP, this backend reports itself unusable and lets Registry
// fall through; a real Windows deployment of this event core would
// need a dedicated IOCP-native dispatch path, out of scope here.

package reactor

import (
	"time"

	"github.com/momentics/hioload-fdcore/api"
)

// WindowsBackend always fails Init, so Registry skips straight past it.
type WindowsBackend struct{}

var _ api.Backend = (*WindowsBackend)(nil)

func NewWindowsBackend() *WindowsBackend { return &WindowsBackend{} }

func (b *WindowsBackend) Name() string { return "windows-iocp-unsupported" }

func (b *WindowsBackend) Init() error { return api.ErrNotSupported }

func (b *WindowsBackend) Term() error { return nil }

func (b *WindowsBackend) ForkRecover() error { return api.ErrNotSupported }

func (b *WindowsBackend) Sync(fd int, want api.EventFlags) error { return api.ErrNotSupported }

func (b *WindowsBackend) Wait(expireAbsolute time.Time, update func(fd int, evts api.EventFlags)) error {
	return api.ErrNotSupported
}

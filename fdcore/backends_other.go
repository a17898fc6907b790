//go:build !unix && !windows

// File: fdcore/backends_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platforms with no poll/epoll/kqueue/IOCP binding (js/wasm, plan9, …)
// register only the stub backend, so InitPollers fails predictably with
// api.ErrNoBackendAvailable instead of compiling out the notion of a
// backend entirely.

package fdcore

import (
	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/reactor"
)

func registerPlatformBackends(reg *reactor.Registry, fdCapacity int) {
	reg.Register(func() api.Backend { return reactor.NewStubBackend() })
}

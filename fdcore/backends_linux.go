//go:build linux

// File: fdcore/backends_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux backend preference order: epoll first (most efficient), poll(2)
// as the portable fallback if epoll's Init somehow fails (e.g. a
// restrictive seccomp filter denying epoll_create1).

package fdcore

import (
	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/reactor"
)

func registerPlatformBackends(reg *reactor.Registry, fdCapacity int) {
	reg.Register(func() api.Backend { return reactor.NewEpollBackend(fdCapacity) })
	reg.Register(func() api.Backend { return reactor.NewPollBackend(fdCapacity) })
}

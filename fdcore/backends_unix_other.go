//go:build unix && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

// File: fdcore/backends_unix_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unix variants with neither epoll nor kqueue (Solaris, AIX, Illumos, …)
// fall straight to the portable poll(2) backend.

package fdcore

import (
	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/reactor"
)

func registerPlatformBackends(reg *reactor.Registry, fdCapacity int) {
	reg.Register(func() api.Backend { return reactor.NewPollBackend(fdCapacity) })
}

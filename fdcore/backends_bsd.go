//go:build darwin || freebsd || netbsd || openbsd || dragonfly

// File: fdcore/backends_bsd.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fdcore

import (
	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/reactor"
)

func registerPlatformBackends(reg *reactor.Registry, fdCapacity int) {
	reg.Register(func() api.Backend { return reactor.NewKqueueBackend(fdCapacity) })
	reg.Register(func() api.Backend { return reactor.NewPollBackend(fdCapacity) })
}

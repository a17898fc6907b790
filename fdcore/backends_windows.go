//go:build windows

// File: fdcore/backends_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows has no backend that can honor the level-triggered Backend
// contract (see reactor/backend_windows.go) — registering it anyway
// means InitPollers fails with api.ErrNoBackendAvailable rather than
// silently succeeding on a backend that can't actually poll.

package fdcore

import (
	"github.com/momentics/hioload-fdcore/api"
	"github.com/momentics/hioload-fdcore/reactor"
)

func registerPlatformBackends(reg *reactor.Registry, fdCapacity int) {
	reg.Register(func() api.Backend { return reactor.NewWindowsBackend() })
}

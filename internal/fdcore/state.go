// File: internal/fdcore/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The 8-bit per-FD state word and the CAS primitive every transition is
// built from. Transcribed from original_source/include/proto/fd.h's
// FD_EV_* encoding (see api.State for the public bit layout).

package fdcore

import (
	"sync/atomic"

	"github.com/momentics/hioload-fdcore/api"
)

// stateWord is the lock-free 8-bit state word. It is the only Record
// field ever written without holding Record.lock.
type stateWord struct {
	v atomic.Uint32
}

func (s *stateWord) load() api.State {
	return api.State(s.v.Load())
}

func (s *stateWord) cas(old, neu api.State) bool {
	return s.v.CompareAndSwap(uint32(old), uint32(neu))
}

// or performs an unconditional atomic OR, used by MayRecv/MaySend: marking
// readiness never changes the polled bit, so there is no precondition to
// check; the loop only retries when a concurrent CAS wins the race.
func (s *stateWord) or(bits api.State) {
	for {
		old := s.v.Load()
		neu := old | uint32(bits)
		if neu == old || s.v.CompareAndSwap(old, neu) {
			return
		}
	}
}

// dirMasks bundles the (active, ready, polled) triple for one direction.
type dirMasks struct {
	active, ready, polled api.State
}

var recvMasks = dirMasks{api.ActiveR, api.ReadyR, api.PolledR}
var sendMasks = dirMasks{api.ActiveW, api.ReadyW, api.PolledW}

func masksFor(d api.Direction) dirMasks {
	if d == api.DirSend {
		return sendMasks
	}
	return recvMasks
}

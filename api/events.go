// File: api/events.go
// Package api defines the observable state-word encoding and poll-event
// flags shared between the fd event core and poller backends.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// EventFlags mirrors the poll-event snapshot a backend reports: a subset
// of {IN, OUT, HUP, ERR, PRI}. HUP and ERR are sticky: once observed for
// an FD they persist in the core's snapshot until the FD is torn down.
type EventFlags uint32

const (
	EventIn  EventFlags = 1 << iota // data available to read
	EventOut                        // socket writable
	EventHUP                        // peer closed (sticky)
	EventErr                        // hard error (sticky)
	EventPri                        // out-of-band/priority data
)

// StickyMask is the set of EventFlags bits that survive across pollings
// instead of being replaced by the next snapshot.
const StickyMask = EventHUP | EventErr

// State is the 8-bit per-direction-pair state word: two 4-bit nibbles,
// bits 0-2 of each holding {ACTIVE, READY, POLLED}. The low nibble is the
// read direction, the high nibble (shifted left by 4) is the write
// direction. This is an in-process contract, not persisted.
type State uint8

const (
	ActiveR State = 0x01
	ReadyR  State = 0x02
	PolledR State = 0x04

	ActiveW State = ActiveR << 4
	ReadyW  State = ReadyR << 4
	PolledW State = PolledR << 4

	StatusMask   State = 0x07
	ActiveRW     State = ActiveR | ActiveW
	ReadyRW      State = ReadyR | ReadyW
	PolledRW     State = PolledR | PolledW
	DirShiftSend       = 4
)

// Direction identifies the read or write half of an FD's state.
type Direction int

const (
	DirRecv Direction = iota
	DirSend
)

package ocrrun

import "strconv"

// State is the supervisor lifecycle state. It is an explicit enum
// rather than an implicit nil-handle convention so that fail-fast
// behavior is directly observable in tests.
//
// The initializing phase is not represented: New returns an Engine
// only after a successful readiness handshake, so a live Engine starts
// in StateReady.
type State int32

const (
	// StateReady means the engine accepts requests.
	StateReady State = iota

	// StateFailed means a transport failure poisoned the session.
	// Send fails fast without touching the child's pipes.
	StateFailed

	// StateClosed means Close was called. Closed wins over a racing
	// failure.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

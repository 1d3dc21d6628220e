package ocrrun

import (
	"errors"
	"strconv"
)

// Sentinel errors for engine lifecycle and transport failures.
var (
	// ErrUnavailable indicates the engine binary could not be spawned
	// (not found, not executable, or pipe creation failed).
	ErrUnavailable = errors.New("ocrrun: engine unavailable")

	// ErrNotReady indicates the engine never printed its readiness
	// marker within the startup line limit or handshake timeout.
	ErrNotReady = errors.New("ocrrun: engine not ready")

	// ErrEngineDown indicates the child process exited or its pipes
	// closed, detected via a write failure or end of stream on read.
	// The Engine is terminal; reconstruct it with New.
	ErrEngineDown = errors.New("ocrrun: engine down")

	// ErrDesync indicates a response line that does not parse as the
	// expected shape — likely an engine diagnostic where a response was
	// due. Request/response pairing can no longer be trusted, so the
	// Engine is terminal.
	ErrDesync = errors.New("ocrrun: protocol desync")

	// ErrTerminated indicates the session was closed by the caller.
	ErrTerminated = errors.New("ocrrun: session terminated")
)

// ExitError reports that the engine process exited with a non-zero
// status. It wraps the underlying error to preserve the chain —
// consumers can errors.As to *exec.ExitError for OS-level detail.
//
// Code semantics: positive = exit status, negative (-1) = signal-killed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "ocrrun: engine exit status " + strconv.Itoa(e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode extracts the engine's exit code from an error chain
// containing *ExitError. Returns (0, false) if the chain has none.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

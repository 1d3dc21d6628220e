package ocrrun

import (
	"io"
	"log/slog"
	"time"
)

// Default engine configuration values. Marker and success code follow
// PaddleOCR-json v1.2 conventions.
const (
	defaultReadyMarker      = "OCR init completed."
	defaultStartupLineLimit = 50
	defaultGracePeriod      = 5 * time.Second
	defaultHandshakeTimeout = 30 * time.Second
)

// SpawnFunc launches the engine child process. The default spawns the
// binary via os/exec with piped stdin/stdout; tests substitute a
// scripted Proc (see the enginetest package).
type SpawnFunc func(binary string, args []string) (Proc, error)

// EngineOptions holds resolved construction-time configuration for an
// Engine. Use New with Option functions to customize these values.
type EngineOptions struct {
	// ConfigPath is the optional engine model/language configuration
	// file, passed to the engine as --config_path=<path>.
	ConfigPath string

	// Args are extra arguments appended to the engine command line
	// (e.g. --det_model_dir=... model overrides).
	Args []string

	// ReadyMarker is the substring that identifies the engine's
	// readiness line during the startup handshake.
	ReadyMarker string

	// StartupLineLimit bounds how many startup lines the handshake
	// consumes before giving up with ErrNotReady.
	StartupLineLimit int

	// SuccessCode is the engine's status code for successful
	// recognition, used by the structured parse in OCRFile and friends.
	SuccessCode int

	// HandshakeTimeout is the deadline for the readiness handshake
	// during New.
	HandshakeTimeout time.Duration

	// RequestTimeout, when non-zero, bounds each Send. On expiry the
	// child is terminated — there is no other way to abandon a
	// blocking pipe read — and the Engine fails.
	RequestTimeout time.Duration

	// GracePeriod is how long Terminate waits after closing the
	// engine's stdin before killing the process.
	GracePeriod time.Duration

	// Stderr receives the engine's stderr output. Nil discards it.
	Stderr io.Writer

	// Logger receives lifecycle and handshake diagnostics. Nil
	// discards them.
	Logger *slog.Logger

	// Spawn launches the child process. Nil uses the os/exec spawner.
	Spawn SpawnFunc
}

// Option configures an Engine at construction time.
type Option func(*EngineOptions)

// WithConfigPath sets the engine model/language configuration file,
// passed as --config_path=<path>. Empty values are ignored.
func WithConfigPath(path string) Option {
	return func(o *EngineOptions) {
		if path != "" {
			o.ConfigPath = path
		}
	}
}

// WithArgs appends extra arguments to the engine command line.
func WithArgs(args ...string) Option {
	return func(o *EngineOptions) {
		o.Args = append(o.Args, args...)
	}
}

// WithReadyMarker sets the readiness-line substring for the startup
// handshake. Empty values are ignored.
func WithReadyMarker(marker string) Option {
	return func(o *EngineOptions) {
		if marker != "" {
			o.ReadyMarker = marker
		}
	}
}

// WithStartupLineLimit sets how many startup lines the handshake may
// consume before failing. Values <= 0 are ignored.
func WithStartupLineLimit(n int) Option {
	return func(o *EngineOptions) {
		if n > 0 {
			o.StartupLineLimit = n
		}
	}
}

// WithSuccessCode sets the engine's success status code for the
// structured parse.
func WithSuccessCode(code int) Option {
	return func(o *EngineOptions) {
		o.SuccessCode = code
	}
}

// WithHandshakeTimeout sets the deadline for the readiness handshake.
// Values <= 0 are ignored.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *EngineOptions) {
		if d > 0 {
			o.HandshakeTimeout = d
		}
	}
}

// WithRequestTimeout bounds each Send. Values <= 0 are ignored.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *EngineOptions) {
		if d > 0 {
			o.RequestTimeout = d
		}
	}
}

// WithGracePeriod sets how long termination waits after closing stdin
// before killing the engine. Values <= 0 are ignored.
func WithGracePeriod(d time.Duration) Option {
	return func(o *EngineOptions) {
		if d > 0 {
			o.GracePeriod = d
		}
	}
}

// WithStderr redirects the engine's stderr to w.
func WithStderr(w io.Writer) Option {
	return func(o *EngineOptions) {
		o.Stderr = w
	}
}

// WithLogger sets the logger for lifecycle and handshake diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *EngineOptions) {
		o.Logger = l
	}
}

// WithSpawnFunc overrides how the child process is launched. Intended
// for tests substituting a scripted Proc.
func WithSpawnFunc(fn SpawnFunc) Option {
	return func(o *EngineOptions) {
		o.Spawn = fn
	}
}

func resolveOptions(opts ...Option) EngineOptions {
	o := EngineOptions{
		ReadyMarker:      defaultReadyMarker,
		StartupLineLimit: defaultStartupLineLimit,
		SuccessCode:      CodeOK,
		HandshakeTimeout: defaultHandshakeTimeout,
		GracePeriod:      defaultGracePeriod,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

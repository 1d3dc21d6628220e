package ocrrun

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmora/ocrrun/internal/wire"
)

// Engine supervises one OCR engine child process and serves strictly
// serialized request/response exchanges over its stdin/stdout.
//
// The child's pipes are exclusively owned by the Engine. Send holds
// the session lock for the entire write+read exchange, so concurrent
// callers can never pair one caller's request with another's response.
// There is no pipelining: the Nth response line answers the Nth
// request line, and the engine itself processes requests serially.
type Engine struct {
	opts EngineOptions
	log  *slog.Logger
	proc Proc

	state atomic.Int32 // State; StateClosed is sticky

	mu      sync.Mutex // serializes Send; guards failErr
	failErr error      // terminal failure, set alongside StateFailed

	closeOnce sync.Once
}

// New spawns the engine binary and blocks until its readiness marker
// appears on stdout. The engine prints model-loading diagnostics
// before it accepts requests; a request written earlier would be
// silently lost or would desynchronize framing, so New consumes and
// discards startup lines until the marker (or gives up).
//
// Returns ErrUnavailable when the binary cannot be spawned, and
// ErrNotReady when the marker is not observed within the startup line
// limit or the handshake timeout. On any failure the child is
// terminated before New returns.
func New(binary string, opts ...Option) (*Engine, error) {
	o := resolveOptions(opts...)

	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	spawn := o.Spawn
	if spawn == nil {
		spawn = osSpawn(o)
	}

	proc, err := spawn(binary, buildArgs(o))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, binary, err)
	}

	e := &Engine{opts: o, log: logger, proc: proc}
	e.log.Debug("engine spawned", "binary", binary, "pid", proc.Pid())

	if err := e.handshake(); err != nil {
		_ = proc.Terminate()
		return nil, err
	}
	e.log.Debug("engine ready", "pid", proc.Pid())
	return e, nil
}

// buildArgs assembles the engine command line from resolved options.
func buildArgs(o EngineOptions) []string {
	args := make([]string, 0, len(o.Args)+1)
	if o.ConfigPath != "" {
		args = append(args, "--config_path="+o.ConfigPath)
	}
	return append(args, o.Args...)
}

// handshake consumes startup lines until the readiness marker is seen.
func (e *Engine) handshake() error {
	ctx := context.Background()
	if e.opts.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.HandshakeTimeout)
		defer cancel()
	}

	for i := 0; i < e.opts.StartupLineLimit; i++ {
		line, err := e.readLine(ctx)
		if err != nil {
			return fmt.Errorf("%w: reading startup line %d: %w", ErrNotReady, i+1, err)
		}
		if strings.Contains(line, e.opts.ReadyMarker) {
			return nil
		}
		e.log.Debug("startup line discarded", "line", line)
	}
	return fmt.Errorf("%w: marker %q not seen in %d startup lines",
		ErrNotReady, e.opts.ReadyMarker, e.opts.StartupLineLimit)
}

// Send encodes req, writes it as one line to the engine, and blocks
// for exactly one response line.
//
// Transport failures are terminal: ErrEngineDown when the child died
// (write failure or end of stream), ErrDesync when the response line
// does not parse. After either, the child is terminated and subsequent
// Sends fail fast with the stored error, performing no I/O.
// Engine-reported failure codes are not errors — they come back as a
// normal RawResponse for the caller (or Parse) to interpret.
//
// Cancelling ctx (or exceeding WithRequestTimeout) during the blocking
// read terminates the child and fails the Engine: an in-flight pipe
// read cannot be abandoned any other way.
func (e *Engine) Send(ctx context.Context, req Request) (RawResponse, error) {
	if err := req.validate(); err != nil {
		return RawResponse{}, err
	}
	line, err := wire.Encode(req.ImagePath, req.ImageData, req.Options)
	if err != nil {
		return RawResponse{}, fmt.Errorf("ocrrun: encode request: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch State(e.state.Load()) {
	case StateClosed:
		return RawResponse{}, ErrTerminated
	case StateFailed:
		return RawResponse{}, e.failErr
	}
	if err := ctx.Err(); err != nil {
		return RawResponse{}, err
	}
	if e.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.RequestTimeout)
		defer cancel()
	}

	if err := e.proc.WriteLine(line); err != nil {
		return RawResponse{}, e.fail(fmt.Errorf("%w: %w", ErrEngineDown, err))
	}

	resp, err := e.readLine(ctx)
	if err != nil {
		return RawResponse{}, e.fail(fmt.Errorf("%w: %w", ErrEngineDown, err))
	}

	code, data, err := wire.Decode([]byte(resp))
	if err != nil {
		return RawResponse{}, e.fail(fmt.Errorf("%w: %w", ErrDesync, err))
	}
	return RawResponse{Code: code, Data: data}, nil
}

// OCRFile recognizes the image at path and parses the response into a
// structured Result.
func (e *Engine) OCRFile(ctx context.Context, path string) (Result, error) {
	return e.do(ctx, Request{ImagePath: path})
}

// OCRBytes recognizes an in-memory image. The bytes travel
// base64-encoded inside the request line.
func (e *Engine) OCRBytes(ctx context.Context, data []byte) (Result, error) {
	return e.do(ctx, Request{ImageData: data})
}

// OCRClipboard asks the engine to read the system clipboard itself;
// the request line carries no image field.
func (e *Engine) OCRClipboard(ctx context.Context) (Result, error) {
	return e.do(ctx, Request{})
}

func (e *Engine) do(ctx context.Context, req Request) (Result, error) {
	raw, err := e.Send(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return raw.Parse(e.opts.SuccessCode), nil
}

// Close terminates the child process and releases its pipes. Safe to
// call multiple times, and safe to race an in-flight Send: terminating
// the child closes the pipes, which unblocks the pending read.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.state.Store(int32(StateClosed))
		_ = e.proc.Terminate()
		e.log.Debug("engine closed", "pid", e.proc.Pid())
	})
	return nil
}

// State reports the supervisor state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// fail transitions to StateFailed, terminates the child, and returns
// the terminal error that subsequent Sends will fail fast with.
// Callers hold e.mu. Close may have won the race — Closed is sticky.
func (e *Engine) fail(err error) error {
	if term := e.proc.Terminate(); term != nil {
		err = fmt.Errorf("%w: %w", err, term)
	}
	e.state.CompareAndSwap(int32(StateReady), int32(StateFailed))
	e.failErr = err
	e.log.Warn("engine failed", "err", err)
	return err
}

// readLine performs one blocking ReadLine, honoring ctx. A blocking
// pipe read cannot be abandoned, so on expiry the child is terminated —
// the closing pipes unblock the reader goroutine, which then exits.
func (e *Engine) readLine(ctx context.Context) (string, error) {
	type readResult struct {
		line string
		err  error
	}
	ch := make(chan readResult, 1)
	go func() {
		line, err := e.proc.ReadLine()
		ch <- readResult{line, err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		_ = e.proc.Terminate()
		<-ch
		return "", ctx.Err()
	}
}

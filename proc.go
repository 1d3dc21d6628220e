package ocrrun

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Proc is the child-process seam: byte-level line writes in, blocking
// line reads out, idempotent termination. The Engine owns exactly one
// Proc and is its only caller — the interface exists so tests can
// script a fake engine without launching a binary (see enginetest).
//
// ReadLine returns io.EOF — and only io.EOF — when the stream closed
// before a full line arrived. The Engine relies on that distinction:
// EOF means the child died and the request must not be retried.
type Proc interface {
	// WriteLine writes b plus a single newline terminator and flushes,
	// so the child observes the full line before the caller starts
	// reading the response.
	WriteLine(b []byte) error

	// ReadLine blocks until a full newline-terminated line arrives,
	// returning it without the terminator. Returns io.EOF when the
	// stream closes first.
	ReadLine() (string, error)

	// Terminate requests child termination and releases the pipes.
	// Idempotent; safe on an already-dead child. Returns the child's
	// wait error, wrapped as *ExitError for non-zero exits.
	Terminate() error

	// Pid returns the OS process ID, or 0 when not applicable.
	Pid() int
}

// osSpawn returns the default SpawnFunc: os/exec with piped
// stdin/stdout and stderr per options.
func osSpawn(o EngineOptions) SpawnFunc {
	return func(binary string, args []string) (Proc, error) {
		resolved, err := exec.LookPath(binary)
		if err != nil {
			return nil, err
		}
		resolved, err = filepath.Abs(resolved)
		if err != nil {
			return nil, err
		}

		cmd := exec.Command(resolved, args...)
		// The engine resolves its model files relative to its own
		// directory, so run it from there.
		cmd.Dir = filepath.Dir(resolved)
		cmd.Stderr = o.Stderr

		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %w", err)
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("stdout pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return nil, err
		}

		p := &osProc{
			cmd:      cmd,
			stdin:    stdin,
			out:      bufio.NewReader(stdout),
			grace:    o.GracePeriod,
			waitDone: make(chan struct{}),
		}
		// Reaper: when the child exits, Wait closes the stdout pipe,
		// which unblocks any in-flight ReadLine.
		go func() {
			p.waitErr = cmd.Wait()
			close(p.waitDone)
		}()
		return p, nil
	}
}

// osProc is the os/exec implementation of Proc.
type osProc struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   *bufio.Reader
	grace time.Duration

	waitErr  error // valid after waitDone closes
	waitDone chan struct{}

	termOnce sync.Once
	termErr  error
}

func (p *osProc) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *osProc) WriteLine(b []byte) error {
	line := make([]byte, 0, len(b)+1)
	line = append(line, b...)
	line = append(line, '\n')
	// Pipe writes are unbuffered; one write delivers the full line.
	if _, err := p.stdin.Write(line); err != nil {
		return fmt.Errorf("write stdin: %w", err)
	}
	return nil
}

func (p *osProc) ReadLine() (string, error) {
	line, err := p.out.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, fs.ErrClosed) {
			return "", io.EOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Terminate closes stdin so the engine exits on its own — it reads
// requests in a stdin loop and treats EOF as shutdown — then waits out
// the grace period and kills.
func (p *osProc) Terminate() error {
	p.termOnce.Do(func() {
		_ = p.stdin.Close() // best-effort: pipe may already be closed

		select {
		case <-p.waitDone:
		case <-time.After(p.grace):
			_ = killProcess(p.cmd.Process)
			<-p.waitDone
		}
		p.termErr = wrapExitError(p.waitErr)
	})
	return p.termErr
}

// killProcess kills proc, returning nil if it has already exited.
func killProcess(proc *os.Process) error {
	if proc == nil {
		return nil
	}
	err := proc.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// wrapExitError converts a non-zero *exec.ExitError to *ExitError.
// nil → nil, non-ExitError → passthrough, code 0 → nil (clean exit).
// Preserves the error chain via ExitError.Unwrap.
func wrapExitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return err
	}
	code := ee.ExitCode()
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

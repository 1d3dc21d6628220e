// Package enginetest provides a scripted, in-memory stand-in for the
// OCR engine child process.
//
// A Script fakes the engine's observable behavior — startup lines,
// then one response per request — without spawning a binary. Wire it
// into an Engine with ocrrun.WithSpawnFunc:
//
//	proc := enginetest.New(enginetest.Script{
//	    Startup: []string{"loading models...", "OCR init completed."},
//	    Respond: func(string) (string, bool) {
//	        return `{"code":100,"data":[]}`, true
//	    },
//	})
//	eng, err := ocrrun.New("fake", ocrrun.WithSpawnFunc(proc.Spawner()))
package enginetest

import (
	"io"
	"os"
	"sync"

	"github.com/dmora/ocrrun"
)

// Script describes the fake engine's behavior.
type Script struct {
	// Startup lines are emitted before any request is answered,
	// mimicking the engine's model-loading diagnostics. Include the
	// readiness marker line for a handshake to succeed.
	Startup []string

	// Respond produces the response line for each request line, in
	// arrival order. Returning ok == false closes the output stream
	// instead, simulating a crash mid-request. A nil Respond swallows
	// requests without answering.
	Respond func(request string) (response string, ok bool)

	// CloseAfterStartup closes the output stream once the startup
	// lines are drained, simulating an engine that exits right after
	// (or instead of) becoming ready.
	CloseAfterStartup bool
}

// Proc is a scripted ocrrun.Proc. It records every line written to it
// so tests can assert that a failed engine performs no further I/O.
type Proc struct {
	script Script

	mu         sync.Mutex
	written    []string
	binary     string
	args       []string
	terminated bool

	out     chan string
	eof     chan struct{}
	eofOnce sync.Once
}

var _ ocrrun.Proc = (*Proc)(nil)

// New creates a scripted Proc with the startup lines already queued.
func New(script Script) *Proc {
	p := &Proc{
		script: script,
		out:    make(chan string, 256),
		eof:    make(chan struct{}),
	}
	for _, line := range script.Startup {
		p.out <- line
	}
	if script.CloseAfterStartup {
		p.closeOutput()
	}
	return p
}

// Spawner returns a SpawnFunc handing out p, recording the binary and
// args the Engine asked to spawn (see SpawnArgs).
func (p *Proc) Spawner() ocrrun.SpawnFunc {
	return func(binary string, args []string) (ocrrun.Proc, error) {
		p.mu.Lock()
		p.binary = binary
		p.args = append([]string(nil), args...)
		p.mu.Unlock()
		return p, nil
	}
}

// WriteLine records the request and queues the scripted response.
func (p *Proc) WriteLine(b []byte) error {
	p.mu.Lock()
	if p.terminated {
		p.mu.Unlock()
		return os.ErrClosed
	}
	p.written = append(p.written, string(b))
	p.mu.Unlock()

	if p.script.Respond == nil {
		return nil
	}
	resp, ok := p.script.Respond(string(b))
	if !ok {
		p.closeOutput()
		return nil
	}
	p.out <- resp
	return nil
}

// ReadLine pops the next queued output line, blocking like a real
// pipe. Queued lines drain before a pending EOF is reported.
func (p *Proc) ReadLine() (string, error) {
	select {
	case line := <-p.out:
		return line, nil
	default:
	}
	select {
	case line := <-p.out:
		return line, nil
	case <-p.eof:
		// A line may have been queued between the two selects.
		select {
		case line := <-p.out:
			return line, nil
		default:
		}
		return "", io.EOF
	}
}

// Terminate marks the proc dead and closes the output stream,
// unblocking any pending ReadLine. Idempotent.
func (p *Proc) Terminate() error {
	p.mu.Lock()
	p.terminated = true
	p.mu.Unlock()
	p.closeOutput()
	return nil
}

// Pid returns 0: there is no OS process behind a scripted Proc.
func (p *Proc) Pid() int { return 0 }

// Written returns a copy of every request line received so far.
func (p *Proc) Written() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.written...)
}

// SpawnArgs returns the binary and args the Engine spawned with.
func (p *Proc) SpawnArgs() (string, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.binary, append([]string(nil), p.args...)
}

// Terminated reports whether Terminate has been called.
func (p *Proc) Terminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

func (p *Proc) closeOutput() {
	p.eofOnce.Do(func() { close(p.eof) })
}

// Package testutil provides testing utilities for buildview tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/buildview/internal/build/process"
)

// SetupWorkDir creates a temporary directory holding files. The files map
// contains relative paths to file contents. The directory is removed when
// the test completes.
func SetupWorkDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		WriteFile(t, dir, path, content)
	}
	return dir
}

// WriteFile creates or replaces a file below dir.
func WriteFile(t *testing.T, dir, path, content string) {
	t.Helper()

	fullPath := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a FakeClock set to a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ScriptedProcess is a process.Process that replays nothing by itself.
// Tests drive it with Emit, EmitStderr and Exit, which call the handlers
// passed to Start on the calling goroutine.
type ScriptedProcess struct {
	mu       sync.Mutex
	handlers process.Handlers
	started  bool
	kills    int
	exited   bool
	startErr error
	pid      int
}

var _ process.Process = (*ScriptedProcess)(nil)

// NewScriptedProcess returns an unstarted ScriptedProcess.
func NewScriptedProcess() *ScriptedProcess {
	return &ScriptedProcess{pid: 4242}
}

// FailStart makes the next Start return err.
func (p *ScriptedProcess) FailStart(err error) *ScriptedProcess {
	p.mu.Lock()
	p.startErr = err
	p.mu.Unlock()
	return p
}

// Start implements process.Process.
func (p *ScriptedProcess) Start(_ context.Context, h process.Handlers) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startErr != nil {
		return p.startErr
	}
	if p.started {
		return process.ErrAlreadyStarted
	}
	p.handlers = h
	p.started = true
	return nil
}

// Kill implements process.Process. It only records the request.
func (p *ScriptedProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return process.ErrNotStarted
	}
	p.kills++
	return nil
}

// PID implements process.Process.
func (p *ScriptedProcess) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return 0
	}
	return p.pid
}

// Kills returns how many times Kill was called.
func (p *ScriptedProcess) Kills() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kills
}

// Started reports whether Start succeeded.
func (p *ScriptedProcess) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Emit delivers chunks to OnData, one call per chunk.
func (p *ScriptedProcess) Emit(chunks ...string) {
	h := p.current()
	for _, c := range chunks {
		if h.OnData != nil {
			h.OnData([]byte(c))
		}
	}
}

// EmitStderr delivers chunks to OnStderr.
func (p *ScriptedProcess) EmitStderr(chunks ...string) {
	h := p.current()
	for _, c := range chunks {
		if h.OnStderr != nil {
			h.OnStderr([]byte(c))
		}
	}
}

// Exit delivers the exit code. Only the first call has an effect.
func (p *ScriptedProcess) Exit(code int) {
	p.mu.Lock()
	if p.exited {
		p.mu.Unlock()
		return
	}
	p.exited = true
	h := p.handlers
	p.mu.Unlock()
	if h.OnExit != nil {
		h.OnExit(code)
	}
}

func (p *ScriptedProcess) current() process.Handlers {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handlers
}

// ProcessFactory hands out ScriptedProcesses and remembers them, for code
// that creates one process per build.
type ProcessFactory struct {
	mu    sync.Mutex
	procs []*ScriptedProcess
	cfgs  []process.Config
}

// New implements the factory signature used by view.Runner.
func (f *ProcessFactory) New(cfg process.Config) (process.Process, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := NewScriptedProcess()
	f.procs = append(f.procs, p)
	f.cfgs = append(f.cfgs, cfg)
	return p, nil
}

// Last returns the most recently created process, or nil.
func (f *ProcessFactory) Last() *ScriptedProcess {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.procs) == 0 {
		return nil
	}
	return f.procs[len(f.procs)-1]
}

// Count returns how many processes were created.
func (f *ProcessFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.procs)
}

// LastConfig returns the config of the most recent process.
func (f *ProcessFactory) LastConfig() process.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.cfgs) == 0 {
		return process.Config{}
	}
	return f.cfgs[len(f.cfgs)-1]
}

// WaitFor polls cond until it holds or the timeout passes.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

package process

import (
	"context"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"

	"github.com/Iron-Ham/buildview/internal/errors"
)

// PTYProcess runs a command on a pseudo-terminal. Standard output and
// standard error arrive interleaved through OnData.
type PTYProcess struct {
	config Config

	mu      sync.Mutex
	cmd     *exec.Cmd
	tty     *os.File
	started bool
}

// NewPTYProcess creates a PTYProcess. It is started with Start.
func NewPTYProcess(cfg Config) *PTYProcess {
	return &PTYProcess{config: cfg}
}

// Start implements Process.
func (p *PTYProcess) Start(ctx context.Context, h Handlers) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	if err := p.config.Validate(); err != nil {
		return err
	}

	cmd := command(ctx, p.config)
	// pty.Start sets its own session; a process group would conflict.
	cmd.SysProcAttr = nil
	cmd.Cancel = func() error { return cmd.Process.Kill() }

	tty, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(p.config.Width),
		Rows: uint16(p.config.Height),
	})
	if err != nil {
		return startError(p.config, err)
	}
	p.cmd = cmd
	p.tty = tty
	p.started = true

	go func() {
		// Reading stops with EIO once the child side closes.
		pump(tty, h.data)
		code := exitCode(cmd.Wait())
		_ = tty.Close()
		h.exit(code)
	}()
	return nil
}

// Resize changes the terminal dimensions.
func (p *PTYProcess) Resize(width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return ErrNotStarted
	}
	return pty.Setsize(p.tty, &pty.Winsize{Cols: uint16(width), Rows: uint16(height)})
}

// Kill implements Process.
func (p *PTYProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return ErrNotStarted
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.NewProcessError("kill failed", errors.Join(errors.ErrProcessKill, err)).
			WithCommand(p.config.CommandLine()).
			WithPID(p.cmd.Process.Pid)
	}
	return nil
}

// PID implements Process.
func (p *PTYProcess) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

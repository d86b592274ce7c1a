package process

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/buildview/internal/errors"
)

const readBufferSize = 32 * 1024

// ExecProcess runs a command with separate stdout and stderr pipes.
type ExecProcess struct {
	config Config

	mu      sync.Mutex
	cmd     *exec.Cmd
	started bool
}

// NewExecProcess creates an ExecProcess. It is started with Start.
func NewExecProcess(cfg Config) *ExecProcess {
	return &ExecProcess{config: cfg}
}

func command(ctx context.Context, cfg Config) *exec.Cmd {
	name, args := cfg.argv()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killTree(cmd) }
	return cmd
}

// Start implements Process.
func (p *ExecProcess) Start(ctx context.Context, h Handlers) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	if err := p.config.Validate(); err != nil {
		return err
	}

	cmd := command(ctx, p.config)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return startError(p.config, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return startError(p.config, err)
	}
	if err := cmd.Start(); err != nil {
		return startError(p.config, err)
	}
	p.cmd = cmd
	p.started = true

	go func() {
		var wg conc.WaitGroup
		wg.Go(func() { pump(stdout, h.data) })
		wg.Go(func() { pump(stderr, h.stderr) })
		wg.Wait()
		h.exit(exitCode(cmd.Wait()))
	}()
	return nil
}

// Kill implements Process.
func (p *ExecProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return ErrNotStarted
	}
	if err := killTree(p.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.NewProcessError("kill failed", errors.Join(errors.ErrProcessKill, err)).
			WithCommand(p.config.CommandLine()).
			WithPID(p.cmd.Process.Pid)
	}
	return nil
}

// PID implements Process.
func (p *ExecProcess) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// pump copies r to fn in chunks until EOF or a read error. Each chunk is a
// fresh slice owned by fn.
func pump(r io.Reader, fn func([]byte)) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			fn(chunk)
		}
		if err != nil {
			return
		}
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func startError(cfg Config, err error) error {
	return errors.NewProcessError("failed to start", errors.Join(errors.ErrProcessStart, err)).
		WithCommand(cfg.CommandLine())
}

package process

import (
	"context"
	"strings"

	"github.com/Iron-Ham/buildview/internal/errors"
)

// Common errors returned by Process implementations.
var (
	// ErrAlreadyStarted is returned when Start is called twice on one process.
	ErrAlreadyStarted = errors.New("process already started")

	// ErrNotStarted is returned by Kill before Start.
	ErrNotStarted = errors.New("process not started")
)

// Config holds the configuration for creating a new process.
type Config struct {
	// Command is the program to run. With Shell set it is a shell command line.
	Command string

	// Args are passed to Command.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string

	// Shell, when set, runs Command and Args through "Shell -c".
	Shell string

	// PTY runs the command on a pseudo-terminal instead of pipes.
	PTY bool

	// Width is the terminal width in columns (PTY only).
	Width int

	// Height is the terminal height in rows (PTY only).
	Height int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Width:  120,
		Height: 40,
	}
}

// Validate checks that the Config has all required fields set.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Command) == "" {
		return errors.NewValidationError("command is required").
			WithField("command").
			WithCause(errors.ErrNoCommand)
	}
	if c.PTY && (c.Width <= 0 || c.Height <= 0) {
		return errors.NewValidationError("terminal size must be positive").
			WithField("width/height").
			WithValue([2]int{c.Width, c.Height})
	}
	return nil
}

// CommandLine returns the command as it is shown to the user.
func (c Config) CommandLine() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Command)
	for _, a := range c.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

// argv returns the program and arguments to exec.
func (c Config) argv() (string, []string) {
	if c.Shell != "" {
		return c.Shell, []string{"-c", c.CommandLine()}
	}
	return c.Command, c.Args
}

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`&|;<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Handlers receive the output and exit of a process.
// Nil handlers are skipped.
type Handlers struct {
	// OnData receives chunks of standard output (or the whole PTY stream).
	OnData func(chunk []byte)

	// OnStderr receives chunks of standard error.
	OnStderr func(chunk []byte)

	// OnExit receives the exit code once all output has been delivered.
	// A process killed by a signal reports -1.
	OnExit func(code int)
}

func (h Handlers) data(b []byte) {
	if h.OnData != nil {
		h.OnData(b)
	}
}

func (h Handlers) stderr(b []byte) {
	if h.OnStderr != nil {
		h.OnStderr(b)
		return
	}
	h.data(b)
}

func (h Handlers) exit(code int) {
	if h.OnExit != nil {
		h.OnExit(code)
	}
}

// Process is a build command that can be started once and killed.
type Process interface {
	// Start spawns the command and returns once it is running. Output and
	// exit are reported through h from other goroutines. Cancelling ctx
	// kills the command.
	Start(ctx context.Context, h Handlers) error

	// Kill requests termination. It does not wait; the exit is still
	// reported through OnExit.
	Kill() error

	// PID returns the operating system process ID, or 0 before Start.
	PID() int
}

// New returns the backend selected by cfg.
func New(cfg Config) (Process, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.PTY {
		return NewPTYProcess(cfg), nil
	}
	return NewExecProcess(cfg), nil
}

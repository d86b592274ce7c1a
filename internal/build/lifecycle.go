package build

import (
	"time"

	"github.com/Iron-Ham/buildview/internal/errors"
)

// State represents the lifecycle state of a build.
type State int

const (
	// StateIdle indicates no build has been started yet.
	StateIdle State = iota

	// StateRunning indicates the build process is running.
	StateRunning

	// StateSuccess indicates the process exited with code 0.
	StateSuccess

	// StateError indicates the process exited with a nonzero code.
	StateError

	// StateStopped indicates the build was cancelled by the user.
	StateStopped
)

// String returns a human-readable string for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s is one of the end states of a run.
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateError || s == StateStopped
}

// Clock is the time source of a Lifecycle.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Lifecycle is the state machine of one build view. It is reused across
// runs; each Start begins a new run.
type Lifecycle struct {
	clock    Clock
	state    State
	started  time.Time
	elapsed  time.Duration
	exitCode int
}

// NewLifecycle creates an idle Lifecycle. A nil clock uses SystemClock.
func NewLifecycle(clock Clock) *Lifecycle {
	if clock == nil {
		clock = SystemClock()
	}
	return &Lifecycle{clock: clock}
}

// Start begins a new run. It is accepted from any state, including
// Running, in which case the previous run is abandoned.
func (l *Lifecycle) Start() {
	l.state = StateRunning
	l.started = l.clock.Now()
	l.elapsed = 0
	l.exitCode = 0
}

// Exit records the process exit code. It returns the resulting terminal
// state, or ErrBuildNotRunning when the build was not running, in which
// case nothing changes.
func (l *Lifecycle) Exit(code int) (State, error) {
	if l.state != StateRunning {
		return l.state, errors.ErrBuildNotRunning
	}
	l.freeze()
	l.exitCode = code
	if code == 0 {
		l.state = StateSuccess
	} else {
		l.state = StateError
	}
	return l.state, nil
}

// Stop cancels a running build. It reports whether the state changed;
// stopping a build that is not running is a no-op.
func (l *Lifecycle) Stop() bool {
	if l.state != StateRunning {
		return false
	}
	l.freeze()
	l.state = StateStopped
	return true
}

func (l *Lifecycle) freeze() {
	l.elapsed = l.clock.Now().Sub(l.started)
	if l.elapsed < 0 {
		l.elapsed = 0
	}
}

// State returns the current state.
func (l *Lifecycle) State() State { return l.state }

// Running reports whether the build is running.
func (l *Lifecycle) Running() bool { return l.state == StateRunning }

// ExitCode returns the exit code of the last finished run.
func (l *Lifecycle) ExitCode() int { return l.exitCode }

// StartedAt returns when the current or last run began.
func (l *Lifecycle) StartedAt() time.Time { return l.started }

// Elapsed returns the run time: live while running, frozen afterwards,
// zero before the first run.
func (l *Lifecycle) Elapsed() time.Duration {
	if l.state == StateRunning {
		d := l.clock.Now().Sub(l.started)
		if d < 0 {
			return 0
		}
		return d
	}
	return l.elapsed
}

// Timer returns Elapsed formatted for display.
func (l *Lifecycle) Timer() string {
	return FormatElapsed(l.Elapsed())
}

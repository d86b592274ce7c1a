package view

import (
	"context"
	"time"

	"github.com/Iron-Ham/buildview/internal/build"
	"github.com/Iron-Ham/buildview/internal/build/process"
	"github.com/Iron-Ham/buildview/internal/errors"
	"github.com/Iron-Ham/buildview/internal/links"
	"github.com/Iron-Ham/buildview/internal/logging"
	"github.com/Iron-Ham/buildview/internal/panel"
)

// ErrRunnerClosed is returned by calls made after Run returned.
var ErrRunnerClosed = errors.New("runner closed")

// Snapshot is a copy of the visible state of a session.
type Snapshot struct {
	BuildID   string   `json:"build_id"`
	Command   string   `json:"command"`
	State     string   `json:"state"`
	Status    string   `json:"status"`
	Timer     string   `json:"timer"`
	Placement string   `json:"placement"`
	Visible   bool     `json:"visible"`
	Lines     []string `json:"lines"`
	Dropped   int      `json:"dropped"`
	HTML      string   `json:"html"`

	// TranscriptBytes is the raw output kept; TranscriptDropped counts the
	// oldest bytes evicted to stay within the transcript size.
	TranscriptBytes   int   `json:"transcript_bytes"`
	TranscriptDropped int64 `json:"transcript_dropped"`
}

// Runner owns a Session and runs its event loop on one goroutine. Its
// exported methods are safe for concurrent use.
type Runner struct {
	ctl      *Controller
	queue    chan func()
	done     chan struct{}
	started  chan struct{}
	interval time.Duration
	ctx      context.Context
}

// NewRunner creates a Runner. Run must be called for anything to happen.
func NewRunner(s *Session, cfg process.Config, factory Factory, logger *logging.Logger) *Runner {
	r := &Runner{
		queue:    make(chan func(), 256),
		done:     make(chan struct{}),
		started:  make(chan struct{}),
		interval: build.TickInterval,
	}
	r.ctl = NewController(s, cfg, factory, r.post, logger)
	return r
}

// Run processes callbacks, commands and timer ticks until ctx is done.
// The running build is stopped on return.
func (r *Runner) Run(ctx context.Context) error {
	r.ctx = ctx
	close(r.started)
	defer close(r.done)
	defer r.ctl.Close()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-r.queue:
			fn()
		case <-ticker.C:
			r.ctl.session.Tick()
		}
	}
}

func (r *Runner) post(fn func()) {
	select {
	case r.queue <- fn:
	case <-r.done:
	}
}

// call runs fn on the loop and waits for it.
func (r *Runner) call(fn func()) error {
	select {
	case <-r.started:
	case <-r.done:
		return ErrRunnerClosed
	}
	finished := make(chan struct{})
	select {
	case r.queue <- func() { fn(); close(finished) }:
	case <-r.done:
		return ErrRunnerClosed
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrRunnerClosed
	}
}

// Trigger starts a new build and returns its ID.
func (r *Runner) Trigger() (string, error) {
	var id string
	var err error
	if cerr := r.call(func() { id, err = r.ctl.Trigger(r.ctx) }); cerr != nil {
		return "", cerr
	}
	return id, err
}

// Stop stops the running build. It reports false when nothing was running.
func (r *Runner) Stop() bool {
	var stopped bool
	_ = r.call(func() { stopped = r.ctl.Stop() })
	return stopped
}

// Activate resolves a link of the current build.
func (r *Runner) Activate(id string) (links.Activation, error) {
	var act links.Activation
	var err error
	if cerr := r.call(func() { act, err = r.ctl.session.Activate(id) }); cerr != nil {
		return links.Activation{}, cerr
	}
	return act, err
}

// SetPatterns replaces the error-match patterns from the next build on.
func (r *Runner) SetPatterns(patterns []string) []error {
	var errs []error
	if err := r.call(func() { errs = r.ctl.session.SetPatterns(patterns) }); err != nil {
		return []error{err}
	}
	return errs
}

// SetPlacement changes the panel slot from the next build on.
func (r *Runner) SetPlacement(p panel.Placement) {
	_ = r.call(func() { r.ctl.session.SetPlacement(p) })
}

// SetConfig replaces the build command from the next build on.
func (r *Runner) SetConfig(cfg process.Config) {
	_ = r.call(func() { r.ctl.SetConfig(cfg) })
}

// Transcript returns the raw output of the current build.
func (r *Runner) Transcript() []byte {
	var out []byte
	_ = r.call(func() { out = r.ctl.session.Transcript() })
	return out
}

// Snapshot copies the session state.
func (r *Runner) Snapshot() Snapshot {
	var snap Snapshot
	_ = r.call(func() { snap = TakeSnapshot(r.ctl.session) })
	return snap
}

// TakeSnapshot copies the state of s. It must run on the session's loop.
func TakeSnapshot(s *Session) Snapshot {
	title := s.Title()
	snap := Snapshot{
		BuildID:   s.BuildID(),
		Command:   s.Command(),
		State:     title.Class,
		Status:    title.Status,
		Timer:     title.Timer,
		Placement: s.Placement().Slug(),
		Dropped:   s.Dropped(),
		HTML:      s.HTML(),

		TranscriptBytes:   s.transcript.Len(),
		TranscriptDropped: s.transcript.Dropped(),
	}
	if p := s.Panel(); p != nil {
		snap.Placement = p.Placement().Slug()
		snap.Visible = p.Visible()
	}
	for _, l := range s.Lines() {
		snap.Lines = append(snap.Lines, l.HTML)
	}
	return snap
}

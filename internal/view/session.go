// Package view is the build view: it feeds process output through the
// line buffer, ANSI decoder, link annotator and HTML renderer, tracks the
// build lifecycle, and owns the single output panel.
//
// A Session is driven by exactly one event loop. Process callbacks, timer
// ticks and user commands must all be delivered on that loop; Runner
// provides one, and the TUI uses bubbletea's.
package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/buildview/internal/build"
	"github.com/Iron-Ham/buildview/internal/capture"
	"github.com/Iron-Ham/buildview/internal/errors"
	"github.com/Iron-Ham/buildview/internal/event"
	"github.com/Iron-Ham/buildview/internal/links"
	"github.com/Iron-Ham/buildview/internal/logging"
	"github.com/Iron-Ham/buildview/internal/panel"
	"github.com/Iron-Ham/buildview/internal/render"
	"github.com/Iron-Ham/buildview/internal/sgr"
)

// Options configure a Session.
type Options struct {
	// Patterns are the error-match patterns, highest priority first.
	Patterns []string

	Placement  panel.Placement
	Visibility panel.Visibility

	// StealFocus focuses the panel when a build succeeds or fails.
	StealFocus bool

	// MaxLines caps the kept output lines; the oldest are dropped. Zero
	// keeps everything.
	MaxLines int

	// TranscriptSize is the capacity of the raw output transcript.
	TranscriptSize int

	Clock     build.Clock
	Bus       *event.Bus
	Logger    *logging.Logger
	Workspace *panel.Workspace
}

// Line is one finished output line.
type Line struct {
	Index   int
	Text    string
	Runs    []sgr.StyledRun
	Matches []links.Match
	HTML    string
}

// LinkIDs returns the distinct link IDs on the line, in order.
func (l Line) LinkIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	for _, m := range l.Matches {
		if !seen[m.ID] {
			seen[m.ID] = true
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Title is the state shown in the panel title.
type Title struct {
	State  build.State
	Class  string
	Status string
	Timer  string
}

// Session is the build view of one workspace. It is not safe for
// concurrent use.
type Session struct {
	opts      Options
	bus       *event.Bus
	logger    *logging.Logger
	lifecycle *build.Lifecycle
	buffer    *capture.LineBuffer
	state     sgr.State
	annotator *links.Annotator
	pending   *links.Annotator
	handle    *panel.Handle
	ws        *panel.Workspace
	html      render.HTML

	transcript *capture.Transcript
	lines      []Line
	first      int // lines[:first] are dropped and await compaction
	nextIndex  int
	dropped    int

	buildID string
	command string
	kill    func()
}

// NewSession creates an idle Session. Patterns that do not compile are
// returned, logged and published once; the valid ones are used.
func NewSession(opts Options) (*Session, []error) {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Workspace == nil {
		opts.Workspace = panel.NewWorkspace()
	}
	if opts.TranscriptSize <= 0 {
		opts.TranscriptSize = capture.DefaultTranscriptSize
	}

	s := &Session{
		opts:       opts,
		bus:        opts.Bus,
		logger:     opts.Logger,
		lifecycle:  build.NewLifecycle(opts.Clock),
		buffer:     capture.NewLineBuffer(),
		ws:         opts.Workspace,
		handle:     panel.NewHandle(opts.Workspace),
		transcript: capture.NewTranscript(opts.TranscriptSize),
	}

	if s.ws.OnChange == nil {
		s.ws.OnChange = s.panelChanged
	}

	annotator, errs := s.compile(opts.Patterns)
	s.annotator = annotator
	return s, errs
}

func (s *Session) compile(patterns []string) (*links.Annotator, []error) {
	annotator, errs := links.Compile(patterns)
	for _, err := range errs {
		var pe *errors.PatternError
		if errors.As(err, &pe) {
			s.logger.LogError("ignoring error-match pattern", err, "index", pe.Index, "pattern", pe.Pattern)
			s.publish(event.NewPatternErrorEvent(pe.Index, pe.Pattern, err.Error()))
		}
	}
	return annotator, errs
}

// SetPatterns replaces the error-match patterns from the next build on.
func (s *Session) SetPatterns(patterns []string) []error {
	annotator, errs := s.compile(patterns)
	s.opts.Patterns = patterns
	if s.lifecycle.Running() {
		s.pending = annotator
	} else {
		s.annotator = annotator
	}
	return errs
}

// SetPlacement changes the slot used from the next build on.
func (s *Session) SetPlacement(p panel.Placement) { s.opts.Placement = p }

// SetVisibility changes the panel visibility policy.
func (s *Session) SetVisibility(v panel.Visibility) { s.opts.Visibility = v }

// SetStealFocus changes whether finished builds focus the panel.
func (s *Session) SetStealFocus(b bool) { s.opts.StealFocus = b }

// Trigger starts a new build of command and returns its ID. A running
// build is stopped first. kill is called, at most once, when the new
// build is stopped; it must not block.
func (s *Session) Trigger(command string, kill func()) string {
	if s.lifecycle.Running() {
		s.Stop()
	}
	if s.pending != nil {
		s.annotator, s.pending = s.pending, nil
	}

	s.buildID = uuid.NewString()
	s.command = command
	s.kill = kill
	s.buffer.Reset()
	s.state = sgr.State{}
	s.annotator.Reset()
	s.transcript.Reset()
	s.lines = nil
	s.first = 0
	s.nextIndex = 0
	s.dropped = 0

	p := s.handle.Acquire(s.opts.Placement)
	s.lifecycle.Start()
	s.logger.WithBuild(s.buildID).Info("build started", "cmd", command, "placement", s.opts.Placement.String())
	s.publish(event.NewBuildStartedEvent(s.buildID, command, s.opts.Placement.Slug()))
	if s.opts.Visibility.ShowOnStart() {
		p.Show()
	}

	runs, _ := sgr.Decode("Executing: "+command, sgr.State{})
	s.appendRuns(runs)
	return s.buildID
}

// OnData handles a chunk of standard output. It reports whether the chunk
// was accepted; chunks are dropped unless the build is running.
func (s *Session) OnData(chunk []byte) bool {
	if !s.lifecycle.Running() {
		return false
	}
	_, _ = s.transcript.Write(chunk)
	for _, line := range s.buffer.Append(string(chunk)) {
		s.emit(line)
	}
	return true
}

// OnStderr handles a chunk of standard error. It is rendered exactly like
// standard output and shares its line buffer.
func (s *Session) OnStderr(chunk []byte) bool {
	return s.OnData(chunk)
}

// OnExit finishes a running build with the process exit code. The
// trailing partial line is flushed first. It reports whether the exit was
// accepted.
func (s *Session) OnExit(code int) bool {
	if !s.lifecycle.Running() {
		return false
	}
	s.flush()

	state, err := s.lifecycle.Exit(code)
	if err != nil {
		return false
	}
	s.kill = nil

	if p := s.handle.Current(); p != nil {
		switch s.opts.Visibility.OnFinish(state == build.StateSuccess) {
		case panel.Show:
			p.Show()
		case panel.Hide:
			p.Hide()
		}
		if s.opts.StealFocus && p.Visible() {
			p.Focus()
		}
	}

	s.logger.WithBuild(s.buildID).Info("build finished",
		"state", state.String(), "exit_code", code, "elapsed_ms", s.lifecycle.Elapsed().Milliseconds())
	s.publish(event.NewBuildFinishedEvent(s.buildID, state.String(), code, s.lifecycle.Elapsed(), s.lifecycle.Timer()))
	return true
}

// StartFailed finishes a triggered build whose process never started. The
// error is shown as an output line and the build ends in Error.
func (s *Session) StartFailed(err error) {
	if !s.lifecycle.Running() {
		return
	}
	runs, _ := sgr.Decode(err.Error(), sgr.State{})
	s.appendRuns(runs)
	s.OnExit(-1)
}

// Stop cancels the running build. Output received so far, including a
// partial line, is kept; later chunks are dropped. The process is asked to
// terminate without waiting. Stopping a build that is not running is a
// no-op and reports false.
func (s *Session) Stop() bool {
	if !s.lifecycle.Running() {
		return false
	}
	s.flush()
	s.lifecycle.Stop()

	if kill := s.kill; kill != nil {
		s.kill = nil
		kill()
	}
	s.logger.WithBuild(s.buildID).Info("build stopped", "elapsed_ms", s.lifecycle.Elapsed().Milliseconds())
	s.publish(event.NewBuildStoppedEvent(s.buildID, s.lifecycle.Elapsed(), s.lifecycle.Timer()))
	return true
}

// Tick publishes the timer of a running build and returns it.
func (s *Session) Tick() string {
	timer := s.lifecycle.Timer()
	if s.lifecycle.Running() {
		s.publish(event.NewTimerEvent(s.buildID, s.lifecycle.Elapsed(), timer))
	}
	return timer
}

// Activate resolves a link ID of the current build.
func (s *Session) Activate(id string) (links.Activation, error) {
	act, ok := s.annotator.Activate(id)
	if !ok {
		return links.Activation{}, errors.NewNotFoundError("link", id).WithCause(errors.ErrUnknownLink)
	}
	s.logger.WithBuild(s.buildID).Debug("link activated", "link", id, "location", act.Location())
	s.publish(event.NewLinkActivatedEvent(s.buildID, id, act.Pattern, act.Groups))
	return act, nil
}

// TogglePanel flips the visibility of the build panel.
func (s *Session) TogglePanel() bool {
	return s.handle.Toggle()
}

// MovePanel sets the placement and moves the current panel to it. The old
// panel is destroyed before the new one is added; the new one keeps the
// visibility and focus of the old. It reports whether a panel was moved.
func (s *Session) MovePanel(p panel.Placement) bool {
	s.opts.Placement = p
	old := s.handle.Current()
	if old == nil || old.Placement() == p {
		return false
	}
	visible, focused := old.Visible(), old.Focused()
	moved := s.handle.Acquire(p)
	switch {
	case focused:
		moved.Focus()
	case visible:
		moved.Show()
	}
	return true
}

func (s *Session) flush() {
	if line, ok := s.buffer.Flush(); ok {
		s.emit(line)
	}
}

func (s *Session) emit(raw string) {
	var runs []sgr.StyledRun
	runs, s.state = sgr.Decode(raw, s.state)
	s.appendRuns(runs)
}

func (s *Session) appendRuns(runs []sgr.StyledRun) {
	text := sgr.Plain(runs)
	matches := s.annotator.Find(text)
	line := Line{
		Index:   s.nextIndex,
		Text:    text,
		Runs:    runs,
		Matches: matches,
		HTML:    s.html.RenderLine(runs, matches),
	}
	s.nextIndex++
	s.lines = append(s.lines, line)
	s.trim()
	s.publish(event.NewOutputEvent(s.buildID, line.Index, line.Text, line.HTML, line.LinkIDs()))
}

// trim drops the oldest lines past MaxLines. Dropped lines are only
// skipped; the kept ones are copied to a fresh array once the dropped
// prefix reaches the limit, so each line is copied at most once.
func (s *Session) trim() {
	limit := s.opts.MaxLines
	if limit <= 0 {
		return
	}
	if n := len(s.lines) - s.first - limit; n > 0 {
		s.first += n
		s.dropped += n
	}
	if s.first >= limit {
		kept := make([]Line, len(s.lines)-s.first, 2*limit)
		copy(kept, s.lines[s.first:])
		s.lines = kept
		s.first = 0
	}
}

func (s *Session) panelChanged(p *panel.Panel) {
	s.publish(event.NewPanelChangedEvent(p.ID(), p.Placement().Slug(), p.Visible(), p.Focused(), p.Destroyed()))
}

func (s *Session) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// BuildID returns the ID of the current or last build.
func (s *Session) BuildID() string { return s.buildID }

// Command returns the command of the current or last build.
func (s *Session) Command() string { return s.command }

// State returns the lifecycle state.
func (s *Session) State() build.State { return s.lifecycle.State() }

// Running reports whether a build is running.
func (s *Session) Running() bool { return s.lifecycle.Running() }

// Elapsed returns the build time.
func (s *Session) Elapsed() time.Duration { return s.lifecycle.Elapsed() }

// ExitCode returns the exit code of the last finished build.
func (s *Session) ExitCode() int { return s.lifecycle.ExitCode() }

// Lines returns the kept output lines.
func (s *Session) Lines() []Line { return s.lines[s.first:] }

// Dropped returns how many old lines were discarded by MaxLines.
func (s *Session) Dropped() int { return s.dropped }

// Pending returns the unterminated tail of the output.
func (s *Session) Pending() string { return s.buffer.Pending() }

// Transcript returns the raw output of the current build.
func (s *Session) Transcript() []byte { return s.transcript.Bytes() }

// Panel returns the build panel, or nil before the first build.
func (s *Session) Panel() *panel.Panel { return s.handle.Current() }

// Workspace returns the workspace the panel lives in.
func (s *Session) Workspace() *panel.Workspace { return s.ws }

// Placement returns the configured placement.
func (s *Session) Placement() panel.Placement { return s.opts.Placement }

// Title returns the panel title state.
func (s *Session) Title() Title {
	state := s.lifecycle.State()
	return Title{
		State:  state,
		Class:  state.String(),
		Status: s.status(state),
		Timer:  s.lifecycle.Timer(),
	}
}

func (s *Session) status(state build.State) string {
	switch state {
	case build.StateRunning:
		return "Running"
	case build.StateSuccess:
		return "Success"
	case build.StateError:
		return "Error (exit " + strconv.Itoa(s.lifecycle.ExitCode()) + ")"
	case build.StateStopped:
		return "Stopped"
	default:
		return "Idle"
	}
}

// Text returns the visible text of the output, one line per row.
func (s *Session) Text() string {
	var b strings.Builder
	for _, l := range s.Lines() {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// HTML renders the whole panel.
func (s *Session) HTML() string {
	title := s.Title()
	kept := s.Lines()
	lines := make([]string, len(kept))
	for i, l := range kept {
		lines[i] = l.HTML
	}
	placement := ""
	if p := s.handle.Current(); p != nil {
		placement = p.Placement().Slug()
	}
	return render.Panel(render.PanelData{
		BuildID:   s.buildID,
		Placement: placement,
		Class:     title.Class,
		Status:    title.Status,
		Timer:     title.Timer,
		Lines:     lines,
	})
}

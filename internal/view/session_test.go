package view

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/buildview/internal/build"
	"github.com/Iron-Ham/buildview/internal/errors"
	"github.com/Iron-Ham/buildview/internal/event"
	"github.com/Iron-Ham/buildview/internal/panel"
	"github.com/Iron-Ham/buildview/internal/testutil"
)

func newSession(t *testing.T, opts Options) (*Session, *testutil.FakeClock) {
	t.Helper()
	clock := testutil.NewFakeClock()
	opts.Clock = clock
	s, errs := NewSession(opts)
	if len(errs) > 0 {
		t.Fatalf("NewSession() errors = %v", errs)
	}
	return s, clock
}

func TestSession_ColorsOutput(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.Trigger(`printf "\033[31mHello\e[0m World"`, nil)
	s.OnData([]byte("\x1b[31mHello\x1b[0m World"))
	s.OnExit(0)

	if s.Title().Class != "success" {
		t.Fatalf("title class = %q", s.Title().Class)
	}
	out := s.HTML()
	if !strings.Contains(out, `<span style="color: rgb(187, 0, 0)">Hello</span> World`) {
		t.Errorf("red span missing:\n%s", out)
	}
	if first := s.Lines()[0].Text; first != `Executing: printf "\033[31mHello\e[0m World"` {
		t.Errorf("first line = %q", first)
	}
}

func TestSession_ChunkedDeliveryEquivalence(t *testing.T) {
	whole, _ := newSession(t, Options{})
	whole.Trigger("printf", nil)
	whole.OnData([]byte("data without linebreak"))
	whole.OnExit(0)

	splits := [][]string{
		{"data ", "without ", "linebreak"},
		{"d", "ata without linebrea", "k"},
		{"", "data without linebreak", ""},
	}
	for _, chunks := range splits {
		s, _ := newSession(t, Options{})
		s.Trigger("printf", nil)
		for _, c := range chunks {
			s.OnData([]byte(c))
		}
		s.OnExit(0)
		if s.Text() != whole.Text() {
			t.Errorf("chunks %q: text = %q, want %q", chunks, s.Text(), whole.Text())
		}
	}
	if !strings.Contains(whole.Text(), "data without linebreak") {
		t.Errorf("flushed text missing: %q", whole.Text())
	}
}

func TestSession_SplitEscapeAcrossChunks(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.Trigger("x", nil)
	s.OnData([]byte("\x1b[3"))
	s.OnData([]byte("1mred\x1b["))
	s.OnData([]byte("0m\n"))
	s.OnExit(0)

	if got := s.Lines()[1].HTML; got != `<span style="color: rgb(187, 0, 0)">red</span>` {
		t.Errorf("line HTML = %q", got)
	}
}

func TestSession_NewlineFidelity(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.Trigger("node", nil)
	s.OnData([]byte("same"))
	if len(s.Lines()) != 1 {
		t.Fatalf("partial line must not be emitted, got %d lines", len(s.Lines()))
	}
	if s.Pending() != "same" {
		t.Errorf("Pending() = %q", s.Pending())
	}
	s.OnData([]byte(" line\n"))
	s.OnExit(0)

	rows := strings.Split(s.Text(), "\n")
	if len(rows) != 3 || rows[1] != "same line" {
		t.Errorf("rows = %q, want [Executing..., same line, \"\"]", rows)
	}
}

func TestSession_EscapesHTML(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.Trigger("echo", nil)
	s.OnData([]byte(`<script type="text/javascript">alert('XSS!')</script>` + "\n"))
	s.OnExit(0)

	out := s.HTML()
	if strings.Contains(out, "<script") {
		t.Fatalf("script element leaked:\n%s", out)
	}
	if !strings.Contains(out, `&lt;script type=&#34;text/javascript&#34;&gt;alert(&#39;XSS!&#39;)&lt;/script&gt;`) {
		t.Errorf("escaped text missing:\n%s", out)
	}
}

func TestSession_OneLinkPerText(t *testing.T) {
	s, _ := newSession(t, Options{Patterns: []string{"match1"}})
	s.Trigger("echo match1 match1 match1 && exit 1", nil)
	s.OnData([]byte("match1 match1 match1\n"))
	s.OnExit(1)

	if s.Title().Class != "error" {
		t.Fatalf("title class = %q", s.Title().Class)
	}
	out := s.HTML()
	anchors := regexp.MustCompile(`<a class="error-match" id="([^"]+)"`).FindAllStringSubmatch(out, -1)
	if len(anchors) != 6 {
		t.Fatalf("got %d anchors, want 6 (3 in the command line, 3 in the output)", len(anchors))
	}
	for _, a := range anchors {
		if a[1] != "error-match-0-0" {
			t.Errorf("anchor id = %q", a[1])
		}
	}
}

func TestSession_Timer(t *testing.T) {
	s, clock := newSession(t, Options{})
	s.Trigger(`echo "Building..." && sleep 30`, nil)
	clock.Advance(1200 * time.Millisecond)

	if !regexp.MustCompile(`1.\d`).MatchString(s.Title().Timer) {
		t.Errorf("timer = %q, want 1.x", s.Title().Timer)
	}
	if !strings.Contains(s.HTML(), `<span class="build-timer">1.2 s</span>`) {
		t.Errorf("timer element missing:\n%s", s.HTML())
	}
}

func TestSession_StopTwice(t *testing.T) {
	s, clock := newSession(t, Options{})
	kills := 0
	s.Trigger("sleep 30", func() { kills++ })
	s.OnData([]byte("partial"))
	clock.Advance(time.Second)

	if !s.Stop() {
		t.Fatal("first Stop() should stop the build")
	}
	if s.Stop() {
		t.Error("second Stop() should be a no-op")
	}
	if kills != 1 {
		t.Errorf("kill called %d times, want 1", kills)
	}
	if s.State() != build.StateStopped {
		t.Errorf("State() = %v", s.State())
	}

	lines := len(s.Lines())
	if s.OnData([]byte("late\n")) {
		t.Error("chunks after stop must be dropped")
	}
	if s.OnExit(0) {
		t.Error("exit after stop must be ignored")
	}
	if len(s.Lines()) != lines || s.State() != build.StateStopped {
		t.Error("stopped build changed after stop")
	}
	if s.Lines()[len(s.Lines())-1].Text != "partial" {
		t.Error("partial line received before stop should be kept")
	}

	clock.Advance(time.Second)
	if s.Title().Timer != "1.0 s" {
		t.Errorf("timer should freeze, got %q", s.Title().Timer)
	}
}

func TestSession_StopWhileIdle(t *testing.T) {
	s, _ := newSession(t, Options{})
	if s.Stop() {
		t.Error("Stop() while idle should be a no-op")
	}
	if s.OnData([]byte("x\n")) {
		t.Error("OnData() while idle should be dropped")
	}
}

func TestSession_NonzeroExitWithoutOutput(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.Trigger("false", nil)
	s.OnExit(1)

	if s.State() != build.StateError {
		t.Errorf("State() = %v", s.State())
	}
	if len(s.Lines()) != 1 {
		t.Errorf("only the command line expected, got %d lines", len(s.Lines()))
	}
	if s.Title().Status != "Error (exit 1)" {
		t.Errorf("Status = %q", s.Title().Status)
	}
}

func TestSession_OnePanelAcrossPlacements(t *testing.T) {
	ws := panel.NewWorkspace()
	s, _ := newSession(t, Options{Workspace: ws})

	for _, p := range panel.Placements {
		s.SetPlacement(p)
		s.Trigger("echo this will fail && exit 1", nil)
		s.OnData([]byte("this will fail\n"))
		s.OnExit(1)

		if got := ws.Panels(p); len(got) != 1 {
			t.Errorf("%v: %d panels in slot, want 1", p, len(got))
		}
		if got := ws.Visible(); len(got) != 1 {
			t.Errorf("%v: %d visible panels, want 1", p, len(got))
		}
		if !strings.Contains(s.HTML(), "panel-"+p.Slug()) {
			t.Errorf("%v: markup lacks placement class", p)
		}
	}
}

func TestSession_Visibility(t *testing.T) {
	tests := []struct {
		name       string
		visibility panel.Visibility
		steal      bool
		code       int
		visible    bool
		focused    bool
	}{
		{"toggle success", panel.Toggle, false, 0, true, false},
		{"toggle steal focus", panel.Toggle, true, 1, true, true},
		{"show on error, success", panel.ShowOnError, true, 0, false, false},
		{"show on error, failure", panel.ShowOnError, true, 2, true, true},
		{"hidden", panel.Hidden, true, 1, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t, Options{Visibility: tt.visibility, StealFocus: tt.steal})
			s.Trigger("make", nil)
			s.OnExit(tt.code)
			p := s.Panel()
			if p.Visible() != tt.visible || p.Focused() != tt.focused {
				t.Errorf("visible=%v focused=%v, want %v %v", p.Visible(), p.Focused(), tt.visible, tt.focused)
			}
		})
	}
}

func TestSession_StopDoesNotStealFocus(t *testing.T) {
	s, _ := newSession(t, Options{StealFocus: true})
	s.Trigger("make", nil)
	s.Stop()
	if s.Panel().Focused() {
		t.Error("a stopped build must not take focus")
	}
}

func TestSession_TriggerResetsBuild(t *testing.T) {
	s, _ := newSession(t, Options{Patterns: []string{`\w+\.go`}})
	first := s.Trigger("a", nil)
	s.OnData([]byte("\x1b[31mx.go y.go"))
	s.OnExit(1)

	kills := 0
	second := s.Trigger("b", func() { kills++ })
	if first == second {
		t.Error("each build needs a new ID")
	}
	s.OnData([]byte("y.go\n"))

	lines := s.Lines()
	if len(lines) != 2 || lines[0].Text != "Executing: b" {
		t.Fatalf("old output should be discarded: %+v", lines)
	}
	if lines[1].Matches[0].ID != "error-match-0-0" {
		t.Errorf("link IDs restart per build, got %q", lines[1].Matches[0].ID)
	}
	if lines[1].HTML != `<a class="error-match" id="error-match-0-0" data-pattern="0">y.go</a>` {
		t.Errorf("decoder style should reset per build: %q", lines[1].HTML)
	}
	if string(s.Transcript()) != "y.go\n" {
		t.Errorf("Transcript() = %q", s.Transcript())
	}

	s.Trigger("c", nil)
	if kills != 1 {
		t.Error("triggering while running should stop the running build")
	}
}

func TestSession_Activate(t *testing.T) {
	bus := event.NewBus(nil)
	var got event.LinkActivatedEvent
	bus.Subscribe(event.TypeLinkActivated, func(e event.Event) { got = e.(event.LinkActivatedEvent) })

	s, _ := newSession(t, Options{
		Bus:      bus,
		Patterns: []string{`(?<file>[\w.]+):(?<line>\d+)`},
	})
	s.Trigger("go build", nil)
	s.OnData([]byte("main.go:7: undefined\n"))

	act, err := s.Activate("error-match-0-0")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if act.Location() != "main.go:7" {
		t.Errorf("Location() = %q", act.Location())
	}
	if got.LinkID != "error-match-0-0" || got.Groups["file"] != "main.go" {
		t.Errorf("event = %+v", got)
	}

	if _, err := s.Activate("error-match-3-3"); !errors.Is(err, errors.ErrUnknownLink) {
		t.Errorf("unknown link error = %v", err)
	}
}

func TestSession_Events(t *testing.T) {
	bus := event.NewBus(nil)
	var types []string
	bus.SubscribeAll(func(e event.Event) { types = append(types, e.EventType()) })

	s, clock := newSession(t, Options{Bus: bus})
	s.Trigger("make", nil)
	clock.Advance(200 * time.Millisecond)
	s.Tick()
	s.OnData([]byte("ok\n"))
	s.OnExit(0)
	s.Tick()

	joined := strings.Join(types, ",")
	for _, w := range []string{
		event.TypeBuildStarted, event.TypePanelChanged, event.TypeBuildOutput,
		event.TypeBuildTimer, event.TypeBuildFinished,
	} {
		if !strings.Contains(joined, w) {
			t.Errorf("missing %s in %s", w, joined)
		}
	}
	if strings.Count(joined, event.TypeBuildTimer) != 1 {
		t.Errorf("timer events only while running: %s", joined)
	}
	if strings.Index(joined, event.TypeBuildStarted) > strings.Index(joined, event.TypeBuildOutput) {
		t.Errorf("started must precede output: %s", joined)
	}
}

func TestSession_PatternErrorsReportedOnce(t *testing.T) {
	bus := event.NewBus(nil)
	count := 0
	bus.Subscribe(event.TypePatternError, func(event.Event) { count++ })

	s, errs := NewSession(Options{Bus: bus, Patterns: []string{"(bad", "good"}})
	if len(errs) != 1 {
		t.Fatalf("got %d errors", len(errs))
	}
	for i := 0; i < 3; i++ {
		s.Trigger("make", nil)
		s.OnData([]byte("good (bad\n"))
		s.OnExit(0)
	}
	if count != 1 {
		t.Errorf("pattern error published %d times, want 1", count)
	}
	if ids := s.Lines()[1].LinkIDs(); len(ids) != 1 || ids[0] != "error-match-1-0" {
		t.Errorf("LinkIDs() = %v", ids)
	}
}

func TestSession_SetPatternsWhileRunning(t *testing.T) {
	s, _ := newSession(t, Options{Patterns: []string{"old"}})
	s.Trigger("make", nil)
	s.SetPatterns([]string{"new"})
	s.OnData([]byte("old new\n"))
	if got := s.Lines()[1].Matches; len(got) != 1 || got[0].Text != "old" {
		t.Errorf("running build keeps its patterns, got %+v", got)
	}
	s.OnExit(0)

	s.Trigger("make", nil)
	s.OnData([]byte("old new\n"))
	if got := s.Lines()[1].Matches; len(got) != 1 || got[0].Text != "new" {
		t.Errorf("next build uses new patterns, got %+v", got)
	}
}

func TestSession_MaxLines(t *testing.T) {
	s, _ := newSession(t, Options{MaxLines: 3})
	s.Trigger("seq", nil)
	s.OnData([]byte("1\n2\n3\n4\n"))

	lines := s.Lines()
	if len(lines) != 3 || lines[0].Text != "2" || lines[2].Index != 4 {
		t.Errorf("Lines() = %+v", lines)
	}
	if s.Dropped() != 2 {
		t.Errorf("Dropped() = %d", s.Dropped())
	}
}

func TestSession_MaxLinesCompactsRarely(t *testing.T) {
	const limit = 100
	s, _ := newSession(t, Options{MaxLines: limit})
	s.Trigger("seq", nil)

	// Every copy of the kept lines moves them to a new array; counting
	// arrays bounds the copying work.
	arrays := map[*Line]bool{}
	const total = 50 * limit
	for i := 0; i < total; i++ {
		s.OnData([]byte("line\n"))
		arrays[&s.lines[0]] = true
	}

	// One array per compaction plus the growth before the first one.
	if got, max := len(arrays), total/limit+16; got > max {
		t.Errorf("kept lines moved to %d arrays, want at most %d", got, max)
	}
	if cap(s.lines) > 2*limit {
		t.Errorf("cap(lines) = %d, want at most %d", cap(s.lines), 2*limit)
	}
	lines := s.Lines()
	if len(lines) != limit {
		t.Fatalf("len(Lines()) = %d, want %d", len(lines), limit)
	}
	if lines[0].Index != total+1-limit || lines[limit-1].Index != total {
		t.Errorf("kept indexes %d..%d", lines[0].Index, lines[limit-1].Index)
	}
	if s.Dropped() != total+1-limit {
		t.Errorf("Dropped() = %d, want %d", s.Dropped(), total+1-limit)
	}
	if got := strings.Count(s.Text(), "\n"); got != limit {
		t.Errorf("Text() has %d rows, want %d", got, limit)
	}
}

func TestSession_StderrRenderedLikeStdout(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.Trigger("cc", nil)
	s.OnStderr([]byte("\x1b[1mwarning\x1b[0m\n"))
	if got := s.Lines()[1].HTML; got != `<span style="font-weight: bold">warning</span>` {
		t.Errorf("stderr line = %q", got)
	}
}

func TestSession_StartFailed(t *testing.T) {
	s, _ := newSession(t, Options{})
	s.Trigger("missing", nil)
	s.StartFailed(errors.New("exec: \"missing\": not found"))

	if s.State() != build.StateError {
		t.Errorf("State() = %v", s.State())
	}
	if last := s.Lines()[len(s.Lines())-1].Text; !strings.Contains(last, "not found") {
		t.Errorf("last line = %q", last)
	}
}

func TestSession_MovePanel(t *testing.T) {
	ws := panel.NewWorkspace()
	s, _ := newSession(t, Options{Workspace: ws})

	if s.MovePanel(panel.Left) {
		t.Error("MovePanel() without a panel = true, want false")
	}
	if s.Placement() != panel.Left {
		t.Errorf("Placement() = %v, want Left", s.Placement())
	}

	s.Trigger("make", nil)
	s.Panel().Focus()
	if !s.MovePanel(panel.Right) {
		t.Fatal("MovePanel() = false, want true")
	}
	if ws.Count() != 1 {
		t.Errorf("Count() = %d, want 1", ws.Count())
	}
	p := s.Panel()
	if p.Placement() != panel.Right || !p.Visible() || !p.Focused() {
		t.Errorf("moved panel = %v visible=%v focused=%v", p.Placement(), p.Visible(), p.Focused())
	}
	if s.MovePanel(panel.Right) {
		t.Error("MovePanel() to the same slot = true, want false")
	}
}

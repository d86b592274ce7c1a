package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/Iron-Ham/buildview/internal/build/process"
	"github.com/Iron-Ham/buildview/internal/config"
	"github.com/Iron-Ham/buildview/internal/links"
	"github.com/Iron-Ham/buildview/internal/logging"
	"github.com/Iron-Ham/buildview/internal/render"
	"github.com/Iron-Ham/buildview/internal/tui/keymap"
	"github.com/Iron-Ham/buildview/internal/tui/msg"
	"github.com/Iron-Ham/buildview/internal/tui/search"
	"github.com/Iron-Ham/buildview/internal/tui/styles"
	"github.com/Iron-Ham/buildview/internal/view"
)

// Options configure the terminal UI.
type Options struct {
	Session *view.Session
	Process process.Config

	// Factory creates build processes; nil uses process.New.
	Factory view.Factory

	Logger *logging.Logger
	Keymap *keymap.Keymap

	// Mouse enables clicking links.
	Mouse bool

	// BuildOnStart triggers a build as soon as the UI starts.
	BuildOnStart bool

	// Copy writes to the clipboard; nil uses the system clipboard.
	Copy func(string) error

	// Width and Height are the initial terminal size, if known.
	Width  int
	Height int
}

// Model is the Bubbletea model of the build view. Every method runs on the
// Bubbletea event loop, which is also the loop of the view session.
type Model struct {
	ctx     context.Context
	session *view.Session
	ctl     *view.Controller
	logger  *logging.Logger
	keys    *keymap.Keymap
	zones   *zone.Manager
	term    *render.Terminal
	copy    func(string) error

	output  viewport.Model
	spinner spinner.Model

	width  int
	height int
	mouse  bool

	// follow keeps the output scrolled to the newest line.
	follow bool

	// cache holds rendered output lines by line index.
	cache    map[int]string
	cachedID string
	links    []string
	selected int

	// search state; searchedTo is the index after the last searched line
	search     *search.Engine
	input      textinput.Model
	searching  bool
	searchedTo int

	lastActivation *links.Activation
	buildOnStart   bool
	showHelp       bool
	status         string
	statusErr      bool
	quitting       bool
}

// NewModel creates the model. post must deliver its function to the
// running program as a msg.LoopMsg.
func NewModel(ctx context.Context, opts Options, post func(func())) Model {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Keymap == nil {
		opts.Keymap = keymap.DefaultKeymap()
	}
	zones := zone.New()
	term := render.NewTerminal(zones)
	term.Link = styles.Link
	term.Selected = styles.LinkSelected

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "search, r: for regex"
	input.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Primary

	m := Model{
		ctx:          ctx,
		session:      opts.Session,
		ctl:          view.NewController(opts.Session, opts.Process, opts.Factory, post, opts.Logger),
		logger:       opts.Logger.WithPhase("tui"),
		keys:         opts.Keymap,
		zones:        zones,
		term:         term,
		copy:         opts.Copy,
		output:       viewport.New(0, 0),
		spinner:      sp,
		search:       search.NewEngine(),
		input:        input,
		mouse:        opts.Mouse,
		follow:       true,
		cache:        make(map[int]string),
		selected:     -1,
		buildOnStart: opts.BuildOnStart,
	}
	if opts.Width > 0 && opts.Height > 0 {
		m.resize(opts.Width, opts.Height)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{msg.Tick(), m.spinner.Tick}
	if m.buildOnStart {
		cmds = append(cmds, func() tea.Msg { return buildMsg{} })
	}
	return tea.Batch(cmds...)
}

// buildMsg asks the model to start a build.
type buildMsg struct{}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return m.handleKeypress(message)

	case tea.MouseMsg:
		return m.handleMouse(message)

	case tea.WindowSizeMsg:
		m.resize(message.Width, message.Height)
		m.refresh()
		return m, nil

	case msg.TickMsg:
		m.session.Tick()
		m.refresh()
		return m, msg.Tick()

	case msg.LoopMsg:
		message.Fn()
		m.refresh()
		return m, nil

	case buildMsg:
		m.build("start")
		return m, nil

	case msg.FilesChangedMsg:
		m.build(strings.Join(message.Paths, ", ") + " saved")
		return m, nil

	case msg.ConfigReloadedMsg:
		m.applyConfig(message.Config, message.Err)
		return m, nil

	case msg.CopiedMsg:
		if message.Err != nil {
			m.setError("copy failed: " + message.Err.Error())
		} else {
			m.setStatus("copied " + message.What)
		}
		return m, nil

	case msg.ErrMsg:
		m.setError(message.Err.Error())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd
	}
	return m, nil
}

// build starts a build; reason is logged and shown.
func (m *Model) build(reason string) {
	id, err := m.ctl.Trigger(m.ctx)
	if err != nil {
		m.setError(err.Error())
		m.refresh()
		return
	}
	m.logger.WithBuild(id).Debug("build triggered", "reason", reason)
	m.follow = true
	m.lastActivation = nil
	m.setStatus("")
	m.refresh()
}

// applyConfig takes over a reloaded configuration from the next build on.
func (m *Model) applyConfig(cfg *config.Config, err error) {
	if err != nil {
		m.setError("config not reloaded: " + err.Error())
		return
	}
	m.ctl.SetConfig(cfg.Build.Process())
	m.session.SetPlacement(cfg.Panel.Placement())
	m.session.SetVisibility(cfg.Panel.VisibilityPolicy())
	m.session.SetStealFocus(cfg.Panel.StealFocus)
	if errs := m.session.SetPatterns(cfg.Build.ErrorMatch); len(errs) > 0 {
		m.setError(errs[0].Error())
		return
	}
	m.setStatus("config reloaded")
}

// Close stops the running build. It is called when the program exits.
func (m Model) Close() {
	m.ctl.Close()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// layout returns the current screen layout.
func (m Model) layout() Layout {
	p := m.session.Panel()
	if p == nil {
		return ComputeLayout(m.width, m.height, m.session.Placement(), false)
	}
	return ComputeLayout(m.width, m.height, p.Placement(), p.Visible())
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
}

// refresh renders new output lines into the viewport.
func (m *Model) refresh() {
	if id := m.session.BuildID(); id != m.cachedID {
		m.cachedID = id
		clear(m.cache)
		m.selected = -1
		m.term.SelectedID = ""
		m.searchedTo = -1
	}

	out := m.layout().Output()
	m.output.Width = out.Width
	m.output.Height = out.Height

	lines := m.session.Lines()
	seen := make(map[string]bool)
	m.links = m.links[:0]

	var b strings.Builder
	for i, l := range lines {
		for _, id := range l.LinkIDs() {
			if !seen[id] {
				seen[id] = true
				m.links = append(m.links, id)
			}
		}
		s, ok := m.cache[l.Index]
		if !ok {
			s = m.term.RenderLine(l.Runs, l.Matches)
			m.cache[l.Index] = s
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
	}
	if len(lines) > 0 {
		first := lines[0].Index
		for idx := range m.cache {
			if idx < first {
				delete(m.cache, idx)
			}
		}
	}

	m.output.SetContent(b.String())
	if m.follow {
		m.output.GotoBottom()
	}
	if m.search.Active() && len(lines) > 0 && lines[len(lines)-1].Index+1 != m.searchedTo {
		m.runSearch()
	}
}

// runSearch searches the kept output lines again.
func (m *Model) runSearch() {
	lines := m.session.Lines()
	texts := make([]string, len(lines))
	first := 0
	for i, l := range lines {
		texts[i] = l.Text
	}
	if len(lines) > 0 {
		first = lines[0].Index
		m.searchedTo = lines[len(lines)-1].Index + 1
	}
	m.search.Search(texts, first)
}

// showMatch scrolls the current search match into view.
func (m *Model) showMatch() {
	r := m.search.Current()
	if r == nil {
		m.setStatus("no match for " + m.search.Query())
		return
	}
	lines := m.session.Lines()
	if len(lines) == 0 {
		return
	}
	m.follow = false
	m.scrollTo(r.Line - lines[0].Index)
	m.setStatus(fmt.Sprintf("match %d/%d: line %d", m.search.CurrentIndex()+1, m.search.MatchCount(), r.Line+1))
}

// selectLink highlights link i and scrolls it into view.
func (m *Model) selectLink(i int) {
	old := m.term.SelectedID
	m.selected = i
	m.term.SelectedID = ""
	if i >= 0 && i < len(m.links) {
		m.term.SelectedID = m.links[i]
	}
	for _, l := range m.session.Lines() {
		for _, match := range l.Matches {
			if match.ID == old || match.ID == m.term.SelectedID {
				delete(m.cache, l.Index)
				break
			}
		}
	}
	m.follow = false
	m.refresh()

	if id := m.term.SelectedID; id != "" {
		for row, l := range m.session.Lines() {
			for _, match := range l.Matches {
				if match.ID == id {
					m.scrollTo(row)
					return
				}
			}
		}
	}
}

// scrollTo makes row visible, leaving it in the middle when it was not.
func (m *Model) scrollTo(row int) {
	top := m.output.YOffset
	if row >= top && row < top+m.output.Height {
		return
	}
	m.output.SetYOffset(max(row-m.output.Height/2, 0))
}

// activate resolves link id and shows where it points.
func (m *Model) activate(id string) {
	act, err := m.session.Activate(id)
	if err != nil {
		m.setError(err.Error())
		return
	}
	m.lastActivation = &act
	if loc := act.Location(); loc != "" {
		m.setStatus("→ " + loc)
	} else {
		m.setStatus("→ " + act.Text)
	}
}

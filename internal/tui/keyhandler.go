package tui

import (
	"github.com/Iron-Ham/buildview/internal/panel"
	"github.com/Iron-Ham/buildview/internal/tui/keymap"
	"github.com/Iron-Ham/buildview/internal/tui/msg"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeypress dispatches a key through the keymap.
func (m Model) handleKeypress(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchInput(key)
	}

	cmd, ok := m.keys.Lookup(key)
	if !ok {
		return m, nil
	}

	// While help is shown, any command other than quit just closes it.
	if m.showHelp && cmd != keymap.CmdQuit {
		m.showHelp = false
		return m, nil
	}

	switch cmd {
	case keymap.CmdQuit:
		m.quitting = true
		m.ctl.Close()
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		m.showHelp = true

	case keymap.CmdCancel:
		if m.selected >= 0 {
			m.selectLink(-1)
			m.follow = true
			m.output.GotoBottom()
		}
		m.search.Clear()
		m.setStatus("")

	case keymap.CmdBuild:
		m.build("key")

	case keymap.CmdStop:
		if m.ctl.Stop() {
			m.setStatus("build stopped")
		}
		m.refresh()

	case keymap.CmdTogglePanel:
		m.session.TogglePanel()
		m.refresh()

	case keymap.CmdFocusPanel:
		if p := m.session.Panel(); p != nil {
			if p.Focused() {
				p.Blur()
			} else {
				p.Focus()
			}
		}
		m.refresh()

	case keymap.CmdCyclePlacement:
		m.cyclePlacement()

	case keymap.CmdNextLink:
		if len(m.links) > 0 {
			m.selectLink((m.selected + 1) % len(m.links))
		}

	case keymap.CmdPrevLink:
		if len(m.links) > 0 {
			i := m.selected - 1
			if i < 0 {
				i = len(m.links) - 1
			}
			m.selectLink(i)
		}

	case keymap.CmdOpenLink:
		if id := m.term.SelectedID; id != "" {
			m.activate(id)
		}

	case keymap.CmdCopy:
		return m, m.copySelection()

	case keymap.CmdSearch:
		m.searching = true
		m.input.SetValue(m.search.Query())
		m.input.CursorEnd()
		return m, m.input.Focus()

	case keymap.CmdNextMatch:
		if m.search.Next() != nil {
			m.showMatch()
		}

	case keymap.CmdPrevMatch:
		if m.search.Previous() != nil {
			m.showMatch()
		}

	case keymap.CmdScrollDown:
		m.output.ScrollDown(1)
		m.follow = m.output.AtBottom()
	case keymap.CmdScrollUp:
		m.output.ScrollUp(1)
		m.follow = false
	case keymap.CmdPageDown:
		m.output.PageDown()
		m.follow = m.output.AtBottom()
	case keymap.CmdPageUp:
		m.output.PageUp()
		m.follow = false
	case keymap.CmdScrollToTop:
		m.output.GotoTop()
		m.follow = false
	case keymap.CmdScrollToBottom:
		m.output.GotoBottom()
		m.follow = true
	}
	return m, nil
}

// handleSearchInput edits the search prompt. Enter runs the search and
// jumps to the first match; esc closes the prompt.
func (m Model) handleSearchInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		if err := m.search.Compile(m.input.Value()); err != nil {
			m.setError("bad search: " + err.Error())
			return m, nil
		}
		if !m.search.Active() {
			m.setStatus("")
			return m, nil
		}
		m.runSearch()
		m.showMatch()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// cyclePlacement moves the panel to the next slot. A visible panel is
// recreated there right away; otherwise the next build uses the slot.
func (m *Model) cyclePlacement() {
	next := panel.Bottom
	for i, p := range panel.Placements {
		if p == m.session.Placement() {
			next = panel.Placements[(i+1)%len(panel.Placements)]
			break
		}
	}
	m.session.SetPlacement(next)
	if p := m.session.Panel(); p != nil && p.Visible() {
		m.session.MovePanel(next)
	}
	m.setStatus("panel: " + next.String())
	m.refresh()
}

// copySelection copies the selected link's location, or the whole output
// when no link is selected.
func (m *Model) copySelection() tea.Cmd {
	if id := m.term.SelectedID; id != "" {
		act, err := m.session.Activate(id)
		if err != nil {
			m.setError(err.Error())
			return nil
		}
		if loc := act.Location(); loc != "" {
			return msg.Copy(loc, "location", m.copy)
		}
		return msg.Copy(act.Text, "link", m.copy)
	}
	text := m.session.Text()
	if text == "" {
		m.setStatus("nothing to copy")
		return nil
	}
	return msg.Copy(text, "output", m.copy)
}

// handleMouse activates a link when it is clicked and scrolls on the wheel.
func (m Model) handleMouse(mouse tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.mouse {
		return m, nil
	}
	switch mouse.Button {
	case tea.MouseButtonWheelUp:
		m.output.ScrollUp(3)
		m.follow = false
		return m, nil
	case tea.MouseButtonWheelDown:
		m.output.ScrollDown(3)
		m.follow = m.output.AtBottom()
		return m, nil
	}
	if mouse.Action != tea.MouseActionRelease || mouse.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for i, id := range m.links {
		if m.zones.Get(id).InBounds(mouse) {
			m.selectLink(i)
			m.activate(id)
			return m, nil
		}
	}
	return m, nil
}

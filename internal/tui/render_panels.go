package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/buildview/internal/panel"
	"github.com/Iron-Ham/buildview/internal/tui/keymap"
	"github.com/Iron-Ham/buildview/internal/tui/styles"
	"github.com/Iron-Ham/buildview/internal/util"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	l := m.layout()
	workspace := m.renderWorkspace(l.Workspace)

	var body string
	if !l.PanelVisible {
		body = workspace
	} else {
		out := m.renderPanel(l.Panel)
		switch l.Placement {
		case panel.Top:
			body = lipgloss.JoinVertical(lipgloss.Left, out, workspace)
		case panel.Left:
			body = lipgloss.JoinHorizontal(lipgloss.Top, out, workspace)
		case panel.Right:
			body = lipgloss.JoinHorizontal(lipgloss.Top, workspace, out)
		default:
			body = lipgloss.JoinVertical(lipgloss.Left, workspace, out)
		}
	}

	screen := lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
	return m.zones.Scan(screen)
}

// renderPanel draws the build panel: a title line over the output.
func (m Model) renderPanel(r Rect) string {
	style := styles.Panel
	if p := m.session.Panel(); p != nil && p.Focused() {
		style = styles.PanelFocused
	}
	content := lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(r.Width-PanelChromeWidth), m.output.View())
	return style.
		Width(max(r.Width-PanelChromeWidth, 0)).
		Height(max(r.Height-2, 0)).
		MaxHeight(r.Height).
		Render(content)
}

func (m Model) renderTitle(width int) string {
	title := m.session.Title()
	var b strings.Builder
	if m.session.Running() {
		b.WriteString(m.spinner.View())
		b.WriteByte(' ')
	}
	b.WriteString("Build: ")
	b.WriteString(title.Status)
	if title.Timer != "" {
		b.WriteString("  ")
		b.WriteString(title.Timer)
	}
	if n := m.session.Dropped(); n > 0 {
		fmt.Fprintf(&b, "  (%d lines dropped)", n)
	}
	return styles.StateStyle(title.State).Render(util.TruncateWidth(b.String(), max(width-2, 0)))
}

// renderWorkspace draws the area beside the panel: build details, or the
// help screen.
func (m Model) renderWorkspace(r Rect) string {
	style := styles.Workspace.
		Width(r.Width).
		Height(r.Height).
		MaxWidth(r.Width).
		MaxHeight(r.Height)
	if r.Width == 0 || r.Height == 0 {
		return ""
	}
	if m.showHelp {
		return style.Render(m.renderHelp())
	}

	inner := max(r.Width-4, 0)
	var lines []string
	lines = append(lines, styles.Title.Render("buildview"))
	if m.session.BuildID() == "" {
		lines = append(lines, "", styles.Muted.Render("No build yet. Press "+m.keys.Keys(keymap.CmdBuild)+" to build."))
		return style.Render(strings.Join(lines, "\n"))
	}

	title := m.session.Title()
	lines = append(lines,
		"",
		row("Command", util.TruncateWidth(m.session.Command(), max(inner-10, 0))),
		row("Build", m.session.BuildID()),
		row("State", styles.StateStyle(title.State).UnsetPadding().Render(title.Status)),
		row("Time", title.Timer),
		row("Panel", m.session.Placement().String()),
		row("Links", fmt.Sprintf("%d", len(m.links))),
	)
	if a := m.lastActivation; a != nil {
		target := a.Location()
		if target == "" {
			target = a.Text
		}
		lines = append(lines, "", styles.Secondary.Render("Last link"), "  "+util.TruncateWidth(target, max(inner-2, 0)))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func row(label, value string) string {
	return styles.Muted.Render(fmt.Sprintf("%-9s", label)) + " " + value
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Keys"))
	for _, section := range m.keys.Help() {
		b.WriteString("\n")
		b.WriteString(styles.HelpSection.Render(section.Category))
		for _, binding := range section.Bindings {
			fmt.Fprintf(&b, "\n  %s  %s",
				styles.HelpKey.Render(fmt.Sprintf("%-10s", m.keys.Keys(binding.Command))),
				binding.Description)
		}
	}
	return b.String()
}

// renderStatusBar draws the last status message, or a key hint.
func (m Model) renderStatusBar() string {
	if m.searching {
		m.input.Width = max(m.width-3, 1)
		return styles.StatusBar.Width(m.width).MaxWidth(m.width).Render(m.input.View())
	}
	text := m.status
	style := styles.StatusBar
	switch {
	case text == "":
		text = fmt.Sprintf("%s build  %s stop  %s panel  %s help  %s quit",
			m.keys.Keys(keymap.CmdBuild), m.keys.Keys(keymap.CmdStop), m.keys.Keys(keymap.CmdTogglePanel),
			m.keys.Keys(keymap.CmdToggleHelp), m.keys.Keys(keymap.CmdQuit))
		style = style.Foreground(styles.MutedColor)
	case m.statusErr:
		style = style.Foreground(styles.ErrorColor).Bold(true)
	}
	return style.Render(util.FitWidth(" "+text, m.width))
}

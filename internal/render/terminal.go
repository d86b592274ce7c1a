package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/Iron-Ham/buildview/internal/links"
	"github.com/Iron-Ham/buildview/internal/sgr"
)

// Terminal renders runs for a terminal. Control characters in the text are
// shown in caret notation so output can never move the cursor or restyle
// the host. Links are underlined and, with a zone manager, marked as
// clickable zones keyed by link ID.
type Terminal struct {
	Zones    *zone.Manager
	Link     lipgloss.Style
	Selected lipgloss.Style

	// SelectedID is the link currently highlighted with Selected.
	SelectedID string
}

// NewTerminal returns a Terminal with the default link styles.
func NewTerminal(zones *zone.Manager) *Terminal {
	return &Terminal{
		Zones:    zones,
		Link:     lipgloss.NewStyle().Underline(true),
		Selected: lipgloss.NewStyle().Underline(true).Reverse(true),
	}
}

// Render renders runs without links.
func (t *Terminal) Render(runs []sgr.StyledRun) string {
	return t.RenderLine(runs, nil)
}

// RenderLine renders runs with matches as link zones.
func (t *Terminal) RenderLine(runs []sgr.StyledRun, matches []links.Match) string {
	var out, link strings.Builder
	var current *links.Match
	walk(runs, matches, segmentWriter{
		text: func(s string, st sgr.Style) {
			if current == nil {
				out.WriteString(Lipgloss(st).Render(Visible(s)))
				return
			}
			ls := t.Link
			if current.ID == t.SelectedID {
				ls = t.Selected
			}
			link.WriteString(ls.Inherit(Lipgloss(st)).Render(Visible(s)))
		},
		open: func(m links.Match) {
			current = &m
			link.Reset()
		},
		close: func(m links.Match) {
			if t.Zones != nil {
				out.WriteString(t.Zones.Mark(m.ID, link.String()))
			} else {
				out.WriteString(link.String())
			}
			current = nil
		},
	})
	return out.String()
}

// Lipgloss converts a decoded style.
func Lipgloss(st sgr.Style) lipgloss.Style {
	s := lipgloss.NewStyle()
	if st.FG != nil {
		s = s.Foreground(lipgloss.Color(st.FG.Hex()))
	}
	if st.BG != nil {
		s = s.Background(lipgloss.Color(st.BG.Hex()))
	}
	if st.Bold {
		s = s.Bold(true)
	}
	if st.Underline {
		s = s.Underline(true)
	}
	return s
}

// Visible replaces C0 control characters other than tab, and DEL, with
// caret notation.
func Visible(s string) string {
	if !strings.ContainsFunc(s, isControl) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == 0x7f:
			b.WriteString("^?")
		case isControl(r):
			b.WriteByte('^')
			b.WriteByte(byte(r) + '@')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isControl(r rune) bool {
	return (r < 0x20 && r != '\t') || r == 0x7f
}

// Package render turns decoded output into markup. HTML is the web and
// contract form; Terminal is the lipgloss form used by the TUI. Both
// split styled runs at link boundaries so every match is wrapped exactly
// once and never breaks a style element.
package render

import (
	"html"
	"strings"

	"github.com/Iron-Ham/buildview/internal/links"
	"github.com/Iron-Ham/buildview/internal/sgr"
)

// HTML renders styled runs as escaped markup. Styled runs become
// <span style="..."> elements; unstyled runs are bare escaped text.
type HTML struct{}

// Render renders runs without links.
func (HTML) Render(runs []sgr.StyledRun) string {
	var b strings.Builder
	for _, r := range runs {
		writeHTMLRun(&b, r.Text, r.Style)
	}
	return b.String()
}

// RenderLine renders runs with each match wrapped in its anchor. Match
// offsets are byte offsets into sgr.Plain(runs) and must be sorted and
// non-overlapping, as links.Annotator.Find returns them.
func (HTML) RenderLine(runs []sgr.StyledRun, matches []links.Match) string {
	var b strings.Builder
	walk(runs, matches, segmentWriter{
		text:  func(s string, st sgr.Style) { writeHTMLRun(&b, s, st) },
		open:  func(m links.Match) { b.WriteString(m.OpenTag()) },
		close: func(m links.Match) { b.WriteString(m.CloseTag()) },
	})
	return b.String()
}

func writeHTMLRun(b *strings.Builder, text string, st sgr.Style) {
	if text == "" {
		return
	}
	if st.IsZero() {
		b.WriteString(html.EscapeString(text))
		return
	}
	b.WriteString(`<span style="`)
	b.WriteString(CSS(st))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(text))
	b.WriteString("</span>")
}

// CSS returns the inline declarations of a style.
func CSS(st sgr.Style) string {
	decls := make([]string, 0, 4)
	if st.FG != nil {
		decls = append(decls, "color: "+st.FG.CSS())
	}
	if st.BG != nil {
		decls = append(decls, "background-color: "+st.BG.CSS())
	}
	if st.Bold {
		decls = append(decls, "font-weight: bold")
	}
	if st.Underline {
		decls = append(decls, "text-decoration: underline")
	}
	return strings.Join(decls, "; ")
}

// segmentWriter receives the pieces of a line in order.
type segmentWriter struct {
	text  func(s string, st sgr.Style)
	open  func(m links.Match)
	close func(m links.Match)
}

// walk splits runs at match boundaries and reports text and anchors.
func walk(runs []sgr.StyledRun, matches []links.Match, w segmentWriter) {
	pos, mi := 0, 0
	inMatch := false
	for _, r := range runs {
		off := 0
		for off < len(r.Text) {
			for !inMatch && mi < len(matches) && matches[mi].Start < pos {
				mi++
			}
			if !inMatch && mi < len(matches) && matches[mi].Start == pos {
				w.open(matches[mi])
				inMatch = true
			}

			limit := pos + len(r.Text) - off
			if mi < len(matches) {
				if inMatch {
					limit = min(limit, matches[mi].End)
				} else {
					limit = min(limit, matches[mi].Start)
				}
			}

			n := limit - pos
			w.text(r.Text[off:off+n], r.Style)
			off += n
			pos = limit

			if inMatch && pos == matches[mi].End {
				w.close(matches[mi])
				inMatch = false
				mi++
			}
		}
	}
	if inMatch {
		w.close(matches[mi])
	}
}

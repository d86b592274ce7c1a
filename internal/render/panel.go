package render

import (
	"html"
	"strings"
)

// PanelData is what the HTML panel shows.
type PanelData struct {
	BuildID   string
	Placement string
	Class     string // success, error, running, stopped or idle
	Status    string
	Timer     string
	Lines     []string // rendered markup, one entry per output line
}

// Panel renders the full build panel. Every output line is followed by a
// newline inside the .output element.
func Panel(d PanelData) string {
	var b strings.Builder
	b.WriteString(`<div class="build`)
	if d.Placement != "" {
		b.WriteString(" panel-" + html.EscapeString(d.Placement))
	}
	b.WriteString(`"`)
	if d.BuildID != "" {
		b.WriteString(` data-build-id="` + html.EscapeString(d.BuildID) + `"`)
	}
	b.WriteString(">\n")

	b.WriteString(`<div class="title ` + html.EscapeString(d.Class) + `">`)
	b.WriteString(`<span class="build-status">` + html.EscapeString(d.Status) + `</span> `)
	b.WriteString(`<span class="build-timer">` + html.EscapeString(d.Timer) + `</span>`)
	b.WriteString("</div>\n")

	b.WriteString(`<pre class="output">`)
	for _, l := range d.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("</pre>\n</div>\n")
	return b.String()
}

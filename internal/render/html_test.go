package render

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/buildview/internal/links"
	"github.com/Iron-Ham/buildview/internal/sgr"
)

func decode(s string) []sgr.StyledRun {
	runs, _ := sgr.Decode(s, sgr.State{})
	return runs
}

func TestHTML_Render(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "red then plain",
			in:   "\x1b[31mHello\x1b[0m World",
			want: `<span style="color: rgb(187, 0, 0)">Hello</span> World`,
		},
		{
			name: "bold underline on background",
			in:   "\x1b[1;4;44mx",
			want: `<span style="background-color: rgb(0, 0, 187); font-weight: bold; text-decoration: underline">x</span>`,
		},
		{
			name: "script is escaped",
			in:   `<script type="text/javascript">alert('XSS!')</script>`,
			want: `&lt;script type=&#34;text/javascript&#34;&gt;alert(&#39;XSS!&#39;)&lt;/script&gt;`,
		},
		{
			name: "styled text is escaped too",
			in:   "\x1b[32m<b>&</b>",
			want: `<span style="color: rgb(0, 187, 0)">&lt;b&gt;&amp;&lt;/b&gt;</span>`,
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (HTML{}).Render(decode(tt.in)); got != tt.want {
				t.Errorf("Render() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestHTML_RenderLine_SplitsRunsAtMatches(t *testing.T) {
	a := links.MustCompile("o W")
	runs := decode("\x1b[31mHello\x1b[0m World")
	got := (HTML{}).RenderLine(runs, a.Find(sgr.Plain(runs)))

	want := `<span style="color: rgb(187, 0, 0)">Hell</span>` +
		`<a class="error-match" id="error-match-0-0" data-pattern="0">` +
		`<span style="color: rgb(187, 0, 0)">o</span> W</a>orld`
	if got != want {
		t.Errorf("RenderLine() =\n%s\nwant\n%s", got, want)
	}
}

func TestHTML_RenderLine_SingleWrap(t *testing.T) {
	a := links.MustCompile("match1", "match1")
	runs := decode("match1 match1 match1")
	got := (HTML{}).RenderLine(runs, a.Find(sgr.Plain(runs)))

	if n := strings.Count(got, `<a class="error-match"`); n != 3 {
		t.Errorf("got %d anchors, want 3: %s", n, got)
	}
	if n := strings.Count(got, `id="error-match-0-0"`); n != 3 {
		t.Errorf("all anchors should share error-match-0-0: %s", got)
	}
}

func TestHTML_RenderLine_MatchAtEdges(t *testing.T) {
	a := links.MustCompile("^err", "end$")
	runs := decode("err in the end")
	got := (HTML{}).RenderLine(runs, a.Find(sgr.Plain(runs)))
	want := `<a class="error-match" id="error-match-0-0" data-pattern="0">err</a> in the ` +
		`<a class="error-match" id="error-match-1-0" data-pattern="1">end</a>`
	if got != want {
		t.Errorf("RenderLine() =\n%s\nwant\n%s", got, want)
	}
}

func TestPanel(t *testing.T) {
	out := Panel(PanelData{
		BuildID:   "b1",
		Placement: "bottom",
		Class:     "success",
		Status:    "Success",
		Timer:     "1.2 s",
		Lines:     []string{"Executing: make", "same line"},
	})

	for _, want := range []string{
		`<div class="build panel-bottom" data-build-id="b1">`,
		`<div class="title success">`,
		`<span class="build-timer">1.2 s</span>`,
		"<pre class=\"output\">Executing: make\nsame line\n</pre>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Panel() missing %q in:\n%s", want, out)
		}
	}
}

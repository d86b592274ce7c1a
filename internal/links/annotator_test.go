package links

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/buildview/internal/errors"
)

func TestFind_SingleWrapPerOccurrence(t *testing.T) {
	a := MustCompile("match1")

	matches := a.Find("match1 match1 match1")
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	for i, m := range matches {
		if m.ID != "error-match-0-0" {
			t.Errorf("matches[%d].ID = %q, want error-match-0-0", i, m.ID)
		}
		if m.Text != "match1" {
			t.Errorf("matches[%d].Text = %q", i, m.Text)
		}
	}
	if matches[1].Start != 7 || matches[1].End != 13 {
		t.Errorf("matches[1] span = [%d,%d), want [7,13)", matches[1].Start, matches[1].End)
	}
}

func TestFind_OverlapFirstPatternWins(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		text     string
		want     []string // ID:Text
	}{
		{
			name:     "identical patterns wrap once",
			patterns: []string{"match1", "match1", "match1"},
			text:     "match1 match1 match1",
			want:     []string{"error-match-0-0:match1", "error-match-0-0:match1", "error-match-0-0:match1"},
		},
		{
			name:     "wider later pattern loses",
			patterns: []string{"err", "error: .*"},
			text:     "error: boom",
			want:     []string{"error-match-0-0:err"},
		},
		{
			name:     "disjoint spans from both patterns",
			patterns: []string{"foo", "bar"},
			text:     "bar foo bar",
			want:     []string{"error-match-1-0:bar", "error-match-0-0:foo", "error-match-1-0:bar"},
		},
		{
			name:     "distinct texts get new occurrences",
			patterns: []string{`\w+\.go`},
			text:     "a.go b.go a.go",
			want:     []string{"error-match-0-0:a.go", "error-match-0-1:b.go", "error-match-0-0:a.go"},
		},
		{
			name:     "empty matches skipped",
			patterns: []string{"x*"},
			text:     "abc",
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, errs := Compile(tt.patterns)
			if len(errs) > 0 {
				t.Fatalf("Compile() errors = %v", errs)
			}
			var got []string
			for _, m := range a.Find(tt.text) {
				got = append(got, m.ID+":"+m.Text)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Find() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFind_OccurrencesPersistAcrossLines(t *testing.T) {
	a := MustCompile(`\w+\.go`)
	first := a.Find("main.go failed")
	second := a.Find("util.go and main.go")

	if first[0].ID != "error-match-0-0" {
		t.Errorf("first ID = %q", first[0].ID)
	}
	if second[0].ID != "error-match-0-1" || second[1].ID != "error-match-0-0" {
		t.Errorf("second IDs = %q, %q", second[0].ID, second[1].ID)
	}

	a.Reset()
	if got := a.Find("util.go")[0].ID; got != "error-match-0-0" {
		t.Errorf("after Reset ID = %q, want error-match-0-0", got)
	}
}

func TestFind_Deterministic(t *testing.T) {
	lines := []string{"x.go:1 err", "y.go:2 err", "x.go:1 err"}
	run := func() []string {
		a := MustCompile(`(?<file>\w+\.go):(?<line>\d+)`, "err")
		var ids []string
		for _, l := range lines {
			for _, m := range a.Find(l) {
				ids = append(ids, m.ID)
			}
		}
		return ids
	}
	first, second := run(), run()
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Errorf("runs differ: %v vs %v", first, second)
	}
}

func TestFind_MultibyteOffsets(t *testing.T) {
	a := MustCompile("bad")
	text := "✗ héllo bad"
	m := a.Find(text)
	if len(m) != 1 {
		t.Fatalf("got %d matches", len(m))
	}
	if text[m[0].Start:m[0].End] != "bad" {
		t.Errorf("byte span [%d,%d) = %q", m[0].Start, m[0].End, text[m[0].Start:m[0].End])
	}
}

func TestCompile_InvalidPatterns(t *testing.T) {
	a, errs := Compile([]string{"(unclosed", "", "ok"})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !errors.Is(errs[0], errors.ErrInvalidPattern) {
		t.Errorf("error %v should match ErrInvalidPattern", errs[0])
	}
	var pe *errors.PatternError
	if !errors.As(errs[0], &pe) || pe.Index != 0 {
		t.Errorf("expected PatternError for index 0, got %v", errs[0])
	}

	ps := a.Patterns()
	if len(ps) != 1 || ps[0].Index != 2 {
		t.Fatalf("Patterns() = %+v", ps)
	}
	if got := a.Find("ok")[0].ID; got != "error-match-2-0" {
		t.Errorf("valid pattern keeps original index, got %q", got)
	}
}

func TestCompile_JavaScriptSyntax(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		want    string
	}{
		{"named groups", `(?<file>\w+\.ts)\((?<line>\d+),(?<col>\d+)\)`, "src/app.ts(4,2): error", "app.ts(4,2)"},
		{"empty class never matches", `x[]|fail`, "x fail", "fail"},
		{"octal escape", `\101BC`, "ABC", "ABC"},
		{"named backreference", `(?<w>\w+) \k<w>`, "the the end", "the the"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, errs := Compile([]string{tt.pattern})
			if len(errs) != 0 {
				t.Fatalf("Compile(%q) errors = %v", tt.pattern, errs)
			}
			got := a.Find(tt.text)
			if len(got) != 1 || got[0].Text != tt.want {
				t.Errorf("Find(%q) = %+v, want one match %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	a := MustCompile("match1")
	got := a.Annotate(`<b>match1</b> & match1`)
	want := `&lt;b&gt;<a class="error-match" id="error-match-0-0" data-pattern="0">match1</a>&lt;/b&gt; &amp; ` +
		`<a class="error-match" id="error-match-0-0" data-pattern="0">match1</a>`
	if got != want {
		t.Errorf("Annotate() =\n%s\nwant\n%s", got, want)
	}

	none := MustCompile()
	if got := none.Annotate(`"quoted"`); got != "&#34;quoted&#34;" {
		t.Errorf("Annotate() without patterns = %q", got)
	}
}

func TestActivate(t *testing.T) {
	a := MustCompile(`(?<file>[\w/]+\.go):(?<line>\d+):(?<col>\d+): (?<message>.*)`)
	m := a.Find("internal/x.go:12:5: undefined: y")
	if len(m) != 1 {
		t.Fatalf("got %d matches", len(m))
	}

	act, ok := a.Activate(m[0].ID)
	if !ok {
		t.Fatal("Activate() should find the link")
	}
	if act.Pattern != 0 {
		t.Errorf("Pattern = %d", act.Pattern)
	}
	if act.Groups[GroupMessage] != "undefined: y" {
		t.Errorf("message group = %q", act.Groups[GroupMessage])
	}
	if act.Location() != "internal/x.go:12:5" || act.Line() != 12 {
		t.Errorf("Location() = %q, Line() = %d", act.Location(), act.Line())
	}

	if _, ok := a.Activate("error-match-9-9"); ok {
		t.Error("unknown ID should not activate")
	}
	if a.Links() != 1 {
		t.Errorf("Links() = %d", a.Links())
	}
}

func TestActivation_Location(t *testing.T) {
	tests := []struct {
		groups map[string]string
		want   string
	}{
		{map[string]string{}, ""},
		{map[string]string{"file": "a.go"}, "a.go"},
		{map[string]string{"file": "a.go", "line": "3"}, "a.go:3"},
		{map[string]string{"file": "a.go", "col": "3"}, "a.go"},
		{map[string]string{"file": "a.go", "line": "3", "col": "9"}, "a.go:3:9"},
	}
	for _, tt := range tests {
		if got := (Activation{Groups: tt.groups}).Location(); got != tt.want {
			t.Errorf("Location(%v) = %q, want %q", tt.groups, got, tt.want)
		}
	}
}

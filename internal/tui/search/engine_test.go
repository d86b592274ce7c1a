package search

import (
	"testing"
)

var output = []string{
	"Executing: go build ./...",
	"main.go:12: undefined: Foo",
	"util.go:3: foo declared and not used",
	"ok",
}

func TestEngine_Search(t *testing.T) {
	tests := []struct {
		name  string
		query string
		first int
		want  []Result
	}{
		{"literal ignores case", "foo", 0, []Result{{1, 23, 26}, {2, 11, 14}}},
		{"literal escapes metacharacters", "./...", 0, []Result{{0, 20, 25}}},
		{"regex", `r:\w+\.go:\d+`, 0, []Result{{1, 0, 10}, {2, 0, 9}}},
		{"first offsets lines", "ok", 40, []Result{{43, 0, 2}}},
		{"no match", "zzz", 0, nil},
		{"empty query", "", 0, nil},
		{"empty regex", "r:", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			if err := e.Compile(tt.query); err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.query, err)
			}
			got := e.Search(output, tt.first)
			if len(got) != len(tt.want) {
				t.Fatalf("Search() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("match %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEngine_InvalidRegex(t *testing.T) {
	e := NewEngine()
	if err := e.Compile("r:("); err == nil {
		t.Fatal("Compile() should reject an invalid regex")
	}
	if e.Active() {
		t.Error("engine should be cleared after an invalid regex")
	}
}

func TestEngine_Navigation(t *testing.T) {
	e := NewEngine()
	if e.Next() != nil || e.Previous() != nil || e.Current() != nil {
		t.Fatal("empty engine should have no matches")
	}
	if e.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", e.CurrentIndex())
	}

	_ = e.Compile("o")
	e.Search([]string{"o", "xx", "oo"}, 0)
	steps := []struct {
		step func() *Result
		want Result
	}{
		{e.Next, Result{2, 0, 1}},
		{e.Next, Result{2, 1, 2}},
		{e.Next, Result{0, 0, 1}},
		{e.Previous, Result{2, 1, 2}},
		{e.Previous, Result{2, 0, 1}},
	}
	for i, s := range steps {
		if got := s.step(); got == nil || *got != s.want {
			t.Errorf("step %d = %v, want %v", i, got, s.want)
		}
	}
	if got := e.MatchingLines(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("MatchingLines() = %v", got)
	}
}

func TestEngine_SearchKeepsPlace(t *testing.T) {
	e := NewEngine()
	_ = e.Compile("error")
	lines := []string{"error a", "fine", "error b"}
	e.Search(lines, 0)
	e.Next()
	if e.Current().Line != 2 {
		t.Fatalf("current line = %d, want 2", e.Current().Line)
	}

	lines = append(lines, "error c")
	e.Search(lines, 0)
	if e.Current().Line != 2 {
		t.Errorf("after re-search current line = %d, want 2", e.Current().Line)
	}
	if e.MatchCount() != 3 {
		t.Errorf("MatchCount() = %d, want 3", e.MatchCount())
	}
}

// Package search finds text in the build output shown by the TUI.
package search

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// RegexPrefix marks a query as a regular expression, in the same dialect
// as the error-match patterns.
const RegexPrefix = "r:"

// Result is one match. Line is the output line index, which stays valid
// when older lines are dropped; Start and End are rune offsets.
type Result struct {
	Line  int
	Start int
	End   int
}

// Engine searches output lines and steps through the matches.
type Engine struct {
	query   string
	re      *regexp2.Regexp
	matches []Result
	current int
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compile sets the query. Queries with RegexPrefix are regular
// expressions; others are literal. Both ignore case. An invalid regular
// expression leaves the engine cleared and returns the error.
func (e *Engine) Compile(query string) error {
	e.Clear()
	if query == "" {
		return nil
	}
	expr := regexp2.Escape(query)
	if strings.HasPrefix(query, RegexPrefix) {
		expr = strings.TrimPrefix(query, RegexPrefix)
		if expr == "" {
			return nil
		}
	}
	re, err := regexp2.Compile(expr, regexp2.IgnoreCase)
	if err != nil {
		return err
	}
	e.query = query
	e.re = re
	return nil
}

// Search finds every match of the query in lines. first is the index of
// lines[0]. The current match is the first one at or after the previous
// current line, so a search that is repeated as output grows keeps its
// place.
func (e *Engine) Search(lines []string, first int) []Result {
	at := -1
	if c := e.Current(); c != nil {
		at = c.Line
	}
	e.matches = e.matches[:0]
	e.current = 0
	if e.re == nil {
		return nil
	}

	for i, line := range lines {
		m, _ := e.re.FindStringMatch(line)
		for m != nil {
			if m.Length == 0 {
				break
			}
			e.matches = append(e.matches, Result{Line: first + i, Start: m.Index, End: m.Index + m.Length})
			m, _ = e.re.FindNextMatch(m)
		}
	}
	if at >= 0 {
		e.JumpToLine(at)
	}
	return e.matches
}

// Next moves to the next match, wrapping around, and returns it.
func (e *Engine) Next() *Result {
	if len(e.matches) == 0 {
		return nil
	}
	e.current = (e.current + 1) % len(e.matches)
	return &e.matches[e.current]
}

// Previous moves to the previous match, wrapping around, and returns it.
func (e *Engine) Previous() *Result {
	if len(e.matches) == 0 {
		return nil
	}
	e.current = (e.current - 1 + len(e.matches)) % len(e.matches)
	return &e.matches[e.current]
}

// Current returns the current match, or nil.
func (e *Engine) Current() *Result {
	if e.current >= len(e.matches) {
		return nil
	}
	return &e.matches[e.current]
}

// CurrentIndex returns the position of the current match, or -1.
func (e *Engine) CurrentIndex() int {
	if len(e.matches) == 0 {
		return -1
	}
	return e.current
}

// JumpToLine makes the first match on or after line current.
func (e *Engine) JumpToLine(line int) bool {
	for i, m := range e.matches {
		if m.Line >= line {
			e.current = i
			return true
		}
	}
	return false
}

// Clear drops the query and its matches.
func (e *Engine) Clear() {
	e.query = ""
	e.re = nil
	e.matches = nil
	e.current = 0
}

// Query returns the active query.
func (e *Engine) Query() string { return e.query }

// Active reports whether a query is set.
func (e *Engine) Active() bool { return e.re != nil }

// MatchCount returns the number of matches.
func (e *Engine) MatchCount() int { return len(e.matches) }

// MatchingLines returns the indexes of the lines with a match, ascending.
func (e *Engine) MatchingLines() []int {
	var lines []int
	for _, m := range e.matches {
		if len(lines) == 0 || lines[len(lines)-1] != m.Line {
			lines = append(lines, m.Line)
		}
	}
	return lines
}

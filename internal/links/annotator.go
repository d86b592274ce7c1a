// Package links finds user-defined error patterns in build output and
// turns each match into a stable, clickable reference.
//
// Patterns are tried in the order given. A span claimed by an earlier
// pattern cannot be claimed again by a later one, so every piece of text is
// wrapped at most once. Identical matched text of one pattern shares one
// ID, error-match-{pattern}-{occurrence}, for as long as the Annotator is
// not Reset; a build view resets it at the start of every build.
package links

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/Iron-Ham/buildview/internal/errors"
)

// MatchTimeout bounds the time one pattern may spend on one line.
const MatchTimeout = 250 * time.Millisecond

// Group names with a meaning for hosts.
const (
	GroupFile    = "file"
	GroupLine    = "line"
	GroupCol     = "col"
	GroupMessage = "message"
)

// Pattern is one compiled error-match pattern.
type Pattern struct {
	Index  int
	Source string
	re     *regexp2.Regexp
}

// Match is one annotated span of visible text. Start and End are byte
// offsets.
type Match struct {
	Start      int
	End        int
	Pattern    int
	Occurrence int
	ID         string
	Text       string
	Groups     map[string]string
}

// OpenTag returns the opening element that wraps the match.
func (m Match) OpenTag() string {
	return fmt.Sprintf(`<a class="error-match" id="%s" data-pattern="%d">`, m.ID, m.Pattern)
}

// CloseTag returns the closing element of OpenTag.
func (Match) CloseTag() string { return "</a>" }

// Activation is what activating a link yields to a host.
type Activation struct {
	ID      string
	Pattern int
	Text    string
	Groups  map[string]string
}

// Location returns "file:line:col" from the named groups, omitting the
// parts that were not captured. It is empty without a file group.
func (a Activation) Location() string {
	file := a.Groups[GroupFile]
	if file == "" {
		return ""
	}
	loc := file
	if line := a.Groups[GroupLine]; line != "" {
		loc += ":" + line
		if col := a.Groups[GroupCol]; col != "" {
			loc += ":" + col
		}
	}
	return loc
}

// Line returns the captured line number, or 0.
func (a Activation) Line() int {
	n, _ := strconv.Atoi(a.Groups[GroupLine])
	return n
}

type occurrenceKey struct {
	pattern int
	text    string
}

// Annotator holds compiled patterns and the occurrence table of one build.
// It is not safe for concurrent use.
type Annotator struct {
	patterns    []Pattern
	occurrences map[occurrenceKey]int
	perPattern  map[int]int
	activations map[string]Activation
}

// ID formats the link identifier of a pattern occurrence.
func ID(pattern, occurrence int) string {
	return "error-match-" + strconv.Itoa(pattern) + "-" + strconv.Itoa(occurrence)
}

// Compile compiles sources in order. Invalid sources are skipped and
// reported as *errors.PatternError; valid ones keep their original index.
// Empty sources are ignored silently.
func Compile(sources []string) (*Annotator, []error) {
	a := &Annotator{}
	a.Reset()

	var errs []error
	for i, src := range sources {
		if strings.TrimSpace(src) == "" {
			continue
		}
		re, err := regexp2.Compile(src, regexp2.ECMAScript)
		if err != nil {
			errs = append(errs, errors.NewPatternError("pattern does not compile", err).WithPattern(i, src))
			continue
		}
		re.MatchTimeout = MatchTimeout
		a.patterns = append(a.patterns, Pattern{Index: i, Source: src, re: re})
	}
	return a, errs
}

// MustCompile is like Compile but panics on any invalid pattern.
func MustCompile(sources ...string) *Annotator {
	a, errs := Compile(sources)
	if len(errs) > 0 {
		panic(errors.Join(errs...))
	}
	return a
}

// Patterns returns the valid patterns in priority order.
func (a *Annotator) Patterns() []Pattern {
	return a.patterns
}

// Reset forgets all occurrences and activations.
func (a *Annotator) Reset() {
	a.occurrences = make(map[occurrenceKey]int)
	a.perPattern = make(map[int]int)
	a.activations = make(map[string]Activation)
}

// Find returns the non-overlapping matches in text, sorted by Start, and
// registers them for Activate.
func (a *Annotator) Find(text string) []Match {
	if len(a.patterns) == 0 || text == "" {
		return nil
	}
	offsets := runeOffsets(text)

	var claimed []Match
	for _, p := range a.patterns {
		m, err := p.re.FindStringMatch(text)
		for m != nil && err == nil {
			if m.Length > 0 {
				start := offsets[m.Index]
				end := offsets[m.Index+m.Length]
				if !overlaps(claimed, start, end) {
					claimed = append(claimed, Match{
						Start:   start,
						End:     end,
						Pattern: p.Index,
						Text:    text[start:end],
						Groups:  groups(m),
					})
				}
			}
			m, err = p.re.FindNextMatch(m)
		}
	}

	sort.Slice(claimed, func(i, j int) bool { return claimed[i].Start < claimed[j].Start })
	for i := range claimed {
		a.assign(&claimed[i])
	}
	return claimed
}

func (a *Annotator) assign(m *Match) {
	key := occurrenceKey{pattern: m.Pattern, text: m.Text}
	occ, ok := a.occurrences[key]
	if !ok {
		occ = a.perPattern[m.Pattern]
		a.perPattern[m.Pattern] = occ + 1
		a.occurrences[key] = occ
	}
	m.Occurrence = occ
	m.ID = ID(m.Pattern, occ)
	if _, ok := a.activations[m.ID]; !ok {
		a.activations[m.ID] = Activation{ID: m.ID, Pattern: m.Pattern, Text: m.Text, Groups: m.Groups}
	}
}

// Annotate returns text as escaped markup with every match wrapped once.
func (a *Annotator) Annotate(text string) string {
	matches := a.Find(text)
	var b strings.Builder
	pos := 0
	for _, m := range matches {
		b.WriteString(html.EscapeString(text[pos:m.Start]))
		b.WriteString(m.OpenTag())
		b.WriteString(html.EscapeString(m.Text))
		b.WriteString(m.CloseTag())
		pos = m.End
	}
	b.WriteString(html.EscapeString(text[pos:]))
	return b.String()
}

// Activate returns the pattern and captured groups of the first match
// registered under id.
func (a *Annotator) Activate(id string) (Activation, bool) {
	act, ok := a.activations[id]
	return act, ok
}

// Links returns the number of distinct link IDs registered.
func (a *Annotator) Links() int {
	return len(a.activations)
}

func overlaps(claimed []Match, start, end int) bool {
	for _, c := range claimed {
		if start < c.End && c.Start < end {
			return true
		}
	}
	return false
}

// runeOffsets maps rune index to byte offset, with one extra entry for
// the end of text. Invalid bytes count as one rune each, as they do in
// regexp2's rune conversion.
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

func groups(m *regexp2.Match) map[string]string {
	out := make(map[string]string)
	for _, g := range m.Groups() {
		if g.Name == "0" || len(g.Captures) == 0 {
			continue
		}
		out[g.Name] = g.String()
	}
	return out
}

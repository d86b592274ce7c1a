// Package sgr converts text carrying ANSI SGR escape sequences into styled
// runs. The active style is an explicit State value threaded through each
// call, so colours survive across chunk and line boundaries.
package sgr

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Style is the set of attributes applied to a run of text.
type Style struct {
	FG        *RGB
	BG        *RGB
	Bold      bool
	Underline bool
}

// IsZero reports whether the style renders like unstyled text.
func (s Style) IsZero() bool {
	return s.FG == nil && s.BG == nil && !s.Bold && !s.Underline
}

// Equal compares two styles by value.
func (s Style) Equal(o Style) bool {
	return sameColor(s.FG, o.FG) && sameColor(s.BG, o.BG) &&
		s.Bold == o.Bold && s.Underline == o.Underline
}

func sameColor(a, b *RGB) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// StyledRun is contiguous text sharing one style.
type StyledRun struct {
	Text  string
	Style Style
}

// State carries the active style between Decode calls.
type State struct {
	Style Style
}

// Decode splits chunk into styled runs. SGR sequences update the style and
// are consumed; any other escape or control sequence is kept as literal text.
// The returned State must be passed to the next call for the same stream.
func Decode(chunk string, state State) ([]StyledRun, State) {
	var runs []StyledRun
	var text strings.Builder
	style := state.Style

	emit := func() {
		if text.Len() == 0 {
			return
		}
		if n := len(runs); n > 0 && runs[n-1].Style.Equal(style) {
			runs[n-1].Text += text.String()
		} else {
			runs = append(runs, StyledRun{Text: text.String(), Style: style})
		}
		text.Reset()
	}

	for len(chunk) > 0 {
		i := strings.IndexByte(chunk, ansi.ESC)
		if i < 0 {
			text.WriteString(chunk)
			break
		}
		text.WriteString(chunk[:i])
		chunk = chunk[i:]

		seq, _, n, _ := ansi.DecodeSequence(chunk, ansi.NormalState, nil)
		if n <= 0 {
			n = 1
			seq = chunk[:1]
		}
		params, isSGR := sgrParams(seq)
		next, valid := apply(style, params)
		if isSGR && valid {
			emit()
			style = next
		} else {
			text.WriteString(seq)
		}
		chunk = chunk[n:]
	}
	emit()

	return runs, State{Style: style}
}

// sgrParams returns the parameter string of an ESC [ ... m sequence.
func sgrParams(seq string) (string, bool) {
	if len(seq) < 3 || !strings.HasPrefix(seq, "\x1b[") || seq[len(seq)-1] != 'm' {
		return "", false
	}
	return seq[2 : len(seq)-1], true
}

// apply walks the parameter list. A parameter that is not a number makes the
// whole sequence invalid; the caller then shows it as literal text.
func apply(style Style, raw string) (Style, bool) {
	if raw == "" {
		return Style{}, true
	}

	var params []int
	for _, group := range strings.Split(raw, ";") {
		sub := strings.Split(group, ":")
		vals := make([]int, len(sub))
		for i, f := range sub {
			// An empty parameter counts as 0, so "ESC [ ; 31 m" resets first.
			if f == "" {
				continue
			}
			v, err := strconv.Atoi(f)
			if err != nil || v < 0 {
				return style, false
			}
			vals[i] = v
		}
		// 38:2:<colour space>:r:g:b carries a colour space id we skip.
		if len(vals) == 6 && (vals[0] == 38 || vals[0] == 48) && vals[1] == 2 {
			vals = append(vals[:2], vals[3:]...)
		}
		params = append(params, vals...)
	}

	for i := 0; i < len(params); i++ {
		code := params[i]
		switch {
		case code == 0:
			style = Style{}
		case code == 1:
			style.Bold = true
		case code == 21 || code == 22:
			style.Bold = false
		case code == 4:
			style.Underline = true
		case code == 24:
			style.Underline = false
		case code >= 30 && code <= 37:
			c := Standard(code - 30)
			style.FG = &c
		case code >= 90 && code <= 97:
			c := Standard(code - 90 + 8)
			style.FG = &c
		case code == 39:
			style.FG = nil
		case code >= 40 && code <= 47:
			c := Standard(code - 40)
			style.BG = &c
		case code >= 100 && code <= 107:
			c := Standard(code - 100 + 8)
			style.BG = &c
		case code == 49:
			style.BG = nil
		case code == 38 || code == 48:
			c, used := extended(params[i+1:])
			i += used
			if c == nil {
				continue
			}
			if code == 38 {
				style.FG = c
			} else {
				style.BG = c
			}
		}
	}
	return style, true
}

// extended parses the tail of a 38/48 parameter. It returns the colour (nil
// when malformed) and how many parameters it consumed.
func extended(rest []int) (*RGB, int) {
	if len(rest) == 0 {
		return nil, 0
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return nil, len(rest)
		}
		if rest[1] > 255 {
			return nil, 2
		}
		c := Indexed(uint8(rest[1]))
		return &c, 2
	case 2:
		if len(rest) < 4 {
			return nil, len(rest)
		}
		for _, v := range rest[1:4] {
			if v > 255 {
				return nil, 4
			}
		}
		c := RGB{uint8(rest[1]), uint8(rest[2]), uint8(rest[3])}
		return &c, 4
	default:
		return nil, 1
	}
}

// Plain returns the visible text of runs.
func Plain(runs []StyledRun) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Decoder owns the State of one output stream.
type Decoder struct {
	state State
}

// NewDecoder returns a decoder with the default style active.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode converts chunk using and updating the decoder's state.
func (d *Decoder) Decode(chunk string) []StyledRun {
	runs, next := Decode(chunk, d.state)
	d.state = next
	return runs
}

// State returns the currently active state.
func (d *Decoder) State() State {
	return d.state
}

// Reset returns the decoder to the default style.
func (d *Decoder) Reset() {
	d.state = State{}
}

// Package keymap provides key binding definitions and lookup for the TUI.
package keymap

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Command represents a named action that can be triggered by a key binding.
type Command string

const (
	// Build control
	CmdBuild Command = "build"
	CmdStop  Command = "stop"

	// Panel
	CmdTogglePanel    Command = "toggle_panel"
	CmdFocusPanel     Command = "focus_panel"
	CmdCyclePlacement Command = "cycle_placement"

	// Links
	CmdNextLink Command = "next_link"
	CmdPrevLink Command = "prev_link"
	CmdOpenLink Command = "open_link"
	CmdCopy     Command = "copy"

	// Search
	CmdSearch    Command = "search"
	CmdNextMatch Command = "next_match"
	CmdPrevMatch Command = "prev_match"

	// Output navigation
	CmdScrollDown     Command = "scroll_down"
	CmdScrollUp       Command = "scroll_up"
	CmdPageDown       Command = "page_down"
	CmdPageUp         Command = "page_up"
	CmdScrollToTop    Command = "scroll_to_top"
	CmdScrollToBottom Command = "scroll_to_bottom"

	// General
	CmdToggleHelp Command = "toggle_help"
	CmdCancel     Command = "cancel"
	CmdQuit       Command = "quit"
)

// Modifier represents keyboard modifiers.
type Modifier uint8

const (
	ModNone Modifier = 0
	ModAlt  Modifier = 1 << iota
)

// String returns a human-readable representation of modifiers.
func (m Modifier) String() string {
	if m&ModAlt != 0 {
		return "alt+"
	}
	return ""
}

// KeyBinding represents a single key binding configuration.
type KeyBinding struct {
	// KeyType is the key. For rune keys use tea.KeyRunes and set Rune.
	KeyType tea.KeyType

	// Rune is the character for rune-based keys.
	Rune rune

	// Modifiers contains the modifier keys that must be pressed.
	Modifiers Modifier

	// Command is the action to execute when this binding is triggered.
	Command Command

	// Description is a human-readable description for help display.
	Description string

	// Category groups related bindings together in help display.
	Category string
}

// Matches checks if a tea.KeyMsg matches this binding.
func (kb KeyBinding) Matches(msg tea.KeyMsg) bool {
	wantAlt := kb.Modifiers&ModAlt != 0
	if msg.Alt != wantAlt {
		return false
	}

	// For special keys (not runes), match the key type directly
	if kb.KeyType != tea.KeyRunes {
		return msg.Type == kb.KeyType
	}

	if msg.Type != tea.KeyRunes || len(msg.Runes) == 0 {
		return false
	}
	return msg.Runes[0] == kb.Rune
}

// String returns a human-readable representation of the key binding.
func (kb KeyBinding) String() string {
	prefix := kb.Modifiers.String()

	if kb.KeyType != tea.KeyRunes {
		return prefix + kb.KeyType.String()
	}

	switch kb.Rune {
	case ' ':
		return prefix + "space"
	default:
		return prefix + string(kb.Rune)
	}
}

// Keymap is an ordered list of key bindings.
type Keymap struct {
	// Name identifies this keymap.
	Name string

	// Bindings are searched in order; the first match wins.
	Bindings []KeyBinding
}

// Lookup returns the command bound to msg.
func (km *Keymap) Lookup(msg tea.KeyMsg) (Command, bool) {
	for _, b := range km.Bindings {
		if b.Matches(msg) {
			return b.Command, true
		}
	}
	return "", false
}

// ForCommand returns all bindings that trigger cmd.
func (km *Keymap) ForCommand(cmd Command) []KeyBinding {
	var out []KeyBinding
	for _, b := range km.Bindings {
		if b.Command == cmd {
			out = append(out, b)
		}
	}
	return out
}

// Keys returns the keys bound to cmd joined with "/", e.g. "j/down".
func (km *Keymap) Keys(cmd Command) string {
	var s string
	for i, b := range km.ForCommand(cmd) {
		if i > 0 {
			s += "/"
		}
		s += b.String()
	}
	return s
}

// Section is one category of the help screen.
type Section struct {
	Category string
	Bindings []KeyBinding
}

// Help groups the bindings by category in first-seen order. A command
// bound to several keys is listed once, with its first description.
func (km *Keymap) Help() []Section {
	var sections []Section
	index := make(map[string]int)
	seen := make(map[Command]bool)
	for _, b := range km.Bindings {
		if seen[b.Command] {
			continue
		}
		seen[b.Command] = true
		i, ok := index[b.Category]
		if !ok {
			i = len(sections)
			index[b.Category] = i
			sections = append(sections, Section{Category: b.Category})
		}
		sections[i].Bindings = append(sections[i].Bindings, b)
	}
	return sections
}

package keymap

import tea "github.com/charmbracelet/bubbletea"

// DefaultKeymap returns the default key bindings.
func DefaultKeymap() *Keymap {
	return &Keymap{
		Name: "default",
		Bindings: []KeyBinding{
			// Build
			{KeyType: tea.KeyRunes, Rune: 'b', Command: CmdBuild, Description: "Build", Category: "Build"},
			{KeyType: tea.KeyRunes, Rune: 's', Command: CmdStop, Description: "Stop build", Category: "Build"},

			// Panel
			{KeyType: tea.KeyRunes, Rune: 'p', Command: CmdTogglePanel, Description: "Show/hide panel", Category: "Panel"},
			{KeyType: tea.KeyTab, Command: CmdFocusPanel, Description: "Focus/unfocus panel", Category: "Panel"},
			{KeyType: tea.KeyRunes, Rune: 'o', Command: CmdCyclePlacement, Description: "Move panel to next slot", Category: "Panel"},

			// Links
			{KeyType: tea.KeyRunes, Rune: 'n', Command: CmdNextLink, Description: "Next error", Category: "Errors"},
			{KeyType: tea.KeyRunes, Rune: 'N', Command: CmdPrevLink, Description: "Previous error", Category: "Errors"},
			{KeyType: tea.KeyEnter, Command: CmdOpenLink, Description: "Open selected error", Category: "Errors"},
			{KeyType: tea.KeyRunes, Rune: 'y', Command: CmdCopy, Description: "Copy error location or output", Category: "Errors"},

			// Search
			{KeyType: tea.KeyRunes, Rune: '/', Command: CmdSearch, Description: "Search output (r: for regex)", Category: "Search"},
			{KeyType: tea.KeyRunes, Rune: ']', Command: CmdNextMatch, Description: "Next match", Category: "Search"},
			{KeyType: tea.KeyRunes, Rune: '[', Command: CmdPrevMatch, Description: "Previous match", Category: "Search"},

			// Scrolling
			{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdScrollDown, Description: "Scroll down", Category: "Scrolling"},
			{KeyType: tea.KeyDown, Command: CmdScrollDown, Description: "Scroll down", Category: "Scrolling"},
			{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdScrollUp, Description: "Scroll up", Category: "Scrolling"},
			{KeyType: tea.KeyUp, Command: CmdScrollUp, Description: "Scroll up", Category: "Scrolling"},
			{KeyType: tea.KeyCtrlF, Command: CmdPageDown, Description: "Page down", Category: "Scrolling"},
			{KeyType: tea.KeyPgDown, Command: CmdPageDown, Description: "Page down", Category: "Scrolling"},
			{KeyType: tea.KeyCtrlB, Command: CmdPageUp, Description: "Page up", Category: "Scrolling"},
			{KeyType: tea.KeyPgUp, Command: CmdPageUp, Description: "Page up", Category: "Scrolling"},
			{KeyType: tea.KeyRunes, Rune: 'g', Command: CmdScrollToTop, Description: "Go to top", Category: "Scrolling"},
			{KeyType: tea.KeyRunes, Rune: 'G', Command: CmdScrollToBottom, Description: "Go to bottom and follow", Category: "Scrolling"},

			// General
			{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "Toggle help", Category: "General"},
			{KeyType: tea.KeyEsc, Command: CmdCancel, Description: "Clear selection", Category: "General"},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "Quit", Category: "General"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "General"},
		},
	}
}

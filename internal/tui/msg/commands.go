package msg

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/buildview/internal/build"
)

// Tick returns a command that sends a TickMsg after one timer interval.
func Tick() tea.Cmd {
	return tea.Tick(build.TickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Copy returns a command that writes text to the system clipboard. what
// describes the text for the status line. A nil write uses the system
// clipboard.
func Copy(text, what string, write func(string) error) tea.Cmd {
	if write == nil {
		write = clipboard.WriteAll
	}
	return func() tea.Msg {
		return CopiedMsg{What: what, Err: write(text)}
	}
}

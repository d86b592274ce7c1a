// Package styles holds the lipgloss styles of the terminal UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/buildview/internal/build"
)

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray
	BlueColor      = lipgloss.Color("#60A5FA") // Blue

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Build state colors
	StateIdle    = MutedColor
	StateRunning = BlueColor
	StateSuccess = SecondaryColor
	StateError   = ErrorColor
	StateStopped = WarningColor

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	// Panel frame; the focused panel gets the primary color
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor)

	PanelFocused = Panel.
			BorderForeground(PrimaryColor)

	PanelTitle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	// Workspace area next to the panel
	Workspace = lipgloss.NewStyle().
			Padding(1, 2)

	// Footer / status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(SurfaceColor)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	HelpSection = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginTop(1)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	SuccessMsg = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true)

	// Links in build output
	Link = lipgloss.NewStyle().
		Underline(true)

	LinkSelected = lipgloss.NewStyle().
			Underline(true).
			Reverse(true)
)

// StateColor returns the color of a build state.
func StateColor(s build.State) lipgloss.Color {
	switch s {
	case build.StateRunning:
		return StateRunning
	case build.StateSuccess:
		return StateSuccess
	case build.StateError:
		return StateError
	case build.StateStopped:
		return StateStopped
	default:
		return StateIdle
	}
}

// StateStyle returns the title style of a build state.
func StateStyle(s build.State) lipgloss.Style {
	return PanelTitle.Foreground(StateColor(s))
}

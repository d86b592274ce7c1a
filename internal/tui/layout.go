// Package tui provides the terminal user interface of buildview.
// This file contains layout constants and dimension calculation functions.
package tui

import "github.com/Iron-Ham/buildview/internal/panel"

const (
	// PanelShare is the fraction of the screen the panel takes along its axis.
	PanelShare = 0.6

	// MinPanelSize is the smallest panel height or width, borders included.
	MinPanelSize = 5

	// StatusBarHeight is the height of the status bar below everything.
	StatusBarHeight = 1

	// PanelChromeWidth is the border width around the panel output.
	PanelChromeWidth = 2

	// PanelChromeHeight is the border plus the title line of the panel.
	PanelChromeHeight = 3
)

// Rect is a size in terminal cells.
type Rect struct {
	Width  int
	Height int
}

// Layout is where the panel and the workspace go on screen.
type Layout struct {
	Placement    panel.Placement
	PanelVisible bool
	Panel        Rect
	Workspace    Rect
}

// ComputeLayout splits a width x height screen between the panel and the
// workspace. A hidden panel leaves the whole screen to the workspace.
func ComputeLayout(width, height int, p panel.Placement, visible bool) Layout {
	avail := max(height-StatusBarHeight, 0)
	l := Layout{Placement: p, PanelVisible: visible}
	if !visible {
		l.Workspace = Rect{Width: width, Height: avail}
		return l
	}

	if p.Horizontal() {
		size := min(max(int(float64(avail)*PanelShare), MinPanelSize), avail)
		l.Panel = Rect{Width: width, Height: size}
		l.Workspace = Rect{Width: width, Height: avail - size}
		return l
	}

	size := min(max(int(float64(width)*PanelShare), MinPanelSize), width)
	l.Panel = Rect{Width: size, Height: avail}
	l.Workspace = Rect{Width: width - size, Height: avail}
	return l
}

// Output returns the size of the output area inside the panel.
func (l Layout) Output() Rect {
	return Rect{
		Width:  max(l.Panel.Width-PanelChromeWidth, 0),
		Height: max(l.Panel.Height-PanelChromeHeight, 0),
	}
}

// CalculateContentDimensions returns the output area of a bottom panel on
// a termWidth x termHeight terminal. It sizes pseudo-terminal builds so
// their output fits the panel.
func CalculateContentDimensions(termWidth, termHeight int) (width, height int) {
	out := ComputeLayout(termWidth, termHeight, panel.Bottom, true).Output()
	return out.Width, out.Height
}

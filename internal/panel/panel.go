// Package panel models where the build output panel lives and guarantees
// that at most one build panel exists at a time.
//
// A [Workspace] has four slots. The bottom slot is the primary one; top,
// left and right are docked edges. A [Handle] owns the single build panel:
// acquiring it for a placement destroys the previous panel before the new
// one is added, so no caller can ever observe two.
package panel

import (
	"fmt"
	"strings"
)

// Placement is one of the four panel slots.
type Placement int

const (
	// Bottom is the primary slot and the default.
	Bottom Placement = iota
	Top
	Left
	Right
)

// Placements lists every slot in display order.
var Placements = []Placement{Bottom, Top, Left, Right}

// String returns the configuration name of the placement.
func (p Placement) String() string {
	switch p {
	case Bottom:
		return "Bottom"
	case Top:
		return "Top"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}

// Slug returns the lower-case form used in markup and events.
func (p Placement) Slug() string {
	return strings.ToLower(p.String())
}

// Horizontal reports whether the panel spans the full width.
func (p Placement) Horizontal() bool {
	return p == Bottom || p == Top
}

// ParsePlacement parses a placement name case-insensitively. An empty
// name selects Bottom.
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bottom", "panel":
		return Bottom, nil
	case "top":
		return Top, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Bottom, fmt.Errorf("unknown panel placement %q (want Bottom, Top, Left or Right)", s)
}

// Panel is one panel in a workspace slot.
type Panel struct {
	id        string
	placement Placement
	visible   bool
	focused   bool
	destroyed bool
	ws        *Workspace
}

// ID returns the panel identifier.
func (p *Panel) ID() string { return p.id }

// Placement returns the slot the panel lives in.
func (p *Panel) Placement() Placement { return p.placement }

// Visible reports whether the panel is shown.
func (p *Panel) Visible() bool { return p.visible && !p.destroyed }

// Focused reports whether the panel has input focus.
func (p *Panel) Focused() bool { return p.focused && !p.destroyed }

// Destroyed reports whether the panel was removed from its workspace.
func (p *Panel) Destroyed() bool { return p.destroyed }

// Show makes the panel visible.
func (p *Panel) Show() {
	if p.destroyed || p.visible {
		return
	}
	p.visible = true
	p.ws.changed(p)
}

// Hide hides the panel and drops its focus.
func (p *Panel) Hide() {
	if p.destroyed || !p.visible {
		return
	}
	p.visible = false
	p.focused = false
	p.ws.changed(p)
}

// Focus shows the panel and gives it focus.
func (p *Panel) Focus() {
	if p.destroyed || (p.visible && p.focused) {
		return
	}
	p.visible = true
	p.focused = true
	p.ws.changed(p)
}

// Blur drops the focus and leaves the panel visible.
func (p *Panel) Blur() {
	if p.destroyed || !p.focused {
		return
	}
	p.focused = false
	p.ws.changed(p)
}

// Destroy removes the panel from its workspace. It is idempotent.
func (p *Panel) Destroy() {
	if p.destroyed {
		return
	}
	p.ws.remove(p)
	p.destroyed = true
	p.visible = false
	p.focused = false
	p.ws.changed(p)
}

// Workspace holds the panels of the four slots. It is not safe for
// concurrent use.
type Workspace struct {
	slots  map[Placement][]*Panel
	nextID int

	// OnChange, when set, is called after a panel is shown, hidden,
	// focused or destroyed.
	OnChange func(*Panel)
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{slots: make(map[Placement][]*Panel)}
}

// Add creates a hidden panel in slot p.
func (w *Workspace) Add(p Placement) *Panel {
	w.nextID++
	panel := &Panel{
		id:        fmt.Sprintf("panel-%d", w.nextID),
		placement: p,
		ws:        w,
	}
	w.slots[p] = append(w.slots[p], panel)
	return panel
}

// Panels returns the live panels of slot p.
func (w *Workspace) Panels(p Placement) []*Panel {
	return append([]*Panel(nil), w.slots[p]...)
}

// Visible returns every visible panel, in slot order.
func (w *Workspace) Visible() []*Panel {
	var out []*Panel
	for _, p := range Placements {
		for _, panel := range w.slots[p] {
			if panel.Visible() {
				out = append(out, panel)
			}
		}
	}
	return out
}

// Count returns the number of live panels in all slots.
func (w *Workspace) Count() int {
	n := 0
	for _, panels := range w.slots {
		n += len(panels)
	}
	return n
}

func (w *Workspace) remove(panel *Panel) {
	panels := w.slots[panel.placement]
	for i, p := range panels {
		if p == panel {
			w.slots[panel.placement] = append(panels[:i:i], panels[i+1:]...)
			return
		}
	}
}

func (w *Workspace) changed(p *Panel) {
	if w.OnChange != nil {
		w.OnChange(p)
	}
}

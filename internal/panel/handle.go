package panel

import (
	"fmt"
	"strings"
)

// Visibility is the policy for showing the panel around a build.
type Visibility int

const (
	// Toggle shows the panel when a build starts and leaves it to the user.
	Toggle Visibility = iota
	// KeepVisible shows the panel when a build starts and never hides it.
	KeepVisible
	// ShowOnError keeps the panel hidden unless the build fails.
	ShowOnError
	// Hidden never shows the panel by itself.
	Hidden
)

// String returns the configuration name of the policy.
func (v Visibility) String() string {
	switch v {
	case Toggle:
		return "Toggle"
	case KeepVisible:
		return "Keep Visible"
	case ShowOnError:
		return "Show on Error"
	case Hidden:
		return "Hidden"
	default:
		return "Unknown"
	}
}

// ParseVisibility parses a policy name. Case, spaces, dashes and
// underscores are ignored, so "show-on-error" and "Show on Error" agree.
func ParseVisibility(s string) (Visibility, error) {
	norm := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
	switch norm {
	case "", "toggle":
		return Toggle, nil
	case "keepvisible":
		return KeepVisible, nil
	case "showonerror":
		return ShowOnError, nil
	case "hidden":
		return Hidden, nil
	}
	return Toggle, fmt.Errorf("unknown panel visibility %q", s)
}

// ShowOnStart reports whether a new build shows the panel.
func (v Visibility) ShowOnStart() bool {
	return v == Toggle || v == KeepVisible
}

// Action is what to do with the panel when a build finishes.
type Action int

const (
	Keep Action = iota
	Show
	Hide
)

// OnFinish returns the action for a finished build.
func (v Visibility) OnFinish(success bool) Action {
	if v != ShowOnError {
		return Keep
	}
	if success {
		return Hide
	}
	return Show
}

// Handle owns the one build panel of a build view.
type Handle struct {
	ws    *Workspace
	panel *Panel
}

// NewHandle returns a Handle with no panel yet.
func NewHandle(ws *Workspace) *Handle {
	return &Handle{ws: ws}
}

// Acquire destroys the current panel, if any, and creates a new hidden
// one in slot p. The old panel is gone before the new one is added.
func (h *Handle) Acquire(p Placement) *Panel {
	h.Release()
	h.panel = h.ws.Add(p)
	return h.panel
}

// Current returns the owned panel, or nil.
func (h *Handle) Current() *Panel {
	return h.panel
}

// Release destroys the owned panel.
func (h *Handle) Release() {
	if h.panel != nil {
		h.panel.Destroy()
		h.panel = nil
	}
}

// Toggle flips the visibility of the owned panel. It reports whether the
// panel is visible afterwards.
func (h *Handle) Toggle() bool {
	if h.panel == nil {
		return false
	}
	if h.panel.Visible() {
		h.panel.Hide()
	} else {
		h.panel.Show()
	}
	return h.panel.Visible()
}

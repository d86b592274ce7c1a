// Package event defines the events a build view emits and a small
// synchronous bus that fans them out to hosts (terminal UI, web stream,
// logging) without those hosts depending on each other.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns "category.action", e.g. "build.started".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type names.
const (
	TypeBuildStarted  = "build.started"
	TypeBuildOutput   = "build.output"
	TypeBuildFinished = "build.finished"
	TypeBuildStopped  = "build.stopped"
	TypeBuildTimer    = "build.timer"
	TypePanelChanged  = "panel.changed"
	TypeLinkActivated = "link.activated"
	TypePatternError  = "config.pattern_error"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Build Lifecycle Events
// -----------------------------------------------------------------------------

// BuildStartedEvent is emitted when a build enters the running state.
type BuildStartedEvent struct {
	baseEvent
	BuildID   string `json:"build_id"`
	Command   string `json:"command"`
	Placement string `json:"placement"`
}

// NewBuildStartedEvent creates a BuildStartedEvent.
func NewBuildStartedEvent(buildID, command, placement string) BuildStartedEvent {
	return BuildStartedEvent{
		baseEvent: newBaseEvent(TypeBuildStarted),
		BuildID:   buildID,
		Command:   command,
		Placement: placement,
	}
}

// OutputEvent carries one finished, rendered output line.
type OutputEvent struct {
	baseEvent
	BuildID string   `json:"build_id"`
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
	Links   []string `json:"links,omitempty"`
}

// NewOutputEvent creates an OutputEvent.
func NewOutputEvent(buildID string, index int, text, html string, links []string) OutputEvent {
	return OutputEvent{
		baseEvent: newBaseEvent(TypeBuildOutput),
		BuildID:   buildID,
		Index:     index,
		Text:      text,
		HTML:      html,
		Links:     links,
	}
}

// BuildFinishedEvent is emitted when the process exits while running.
type BuildFinishedEvent struct {
	baseEvent
	BuildID  string        `json:"build_id"`
	State    string        `json:"state"` // "success" or "error"
	ExitCode int           `json:"exit_code"`
	Elapsed  time.Duration `json:"elapsed"`
	Timer    string        `json:"timer"`
}

// NewBuildFinishedEvent creates a BuildFinishedEvent.
func NewBuildFinishedEvent(buildID, state string, exitCode int, elapsed time.Duration, timer string) BuildFinishedEvent {
	return BuildFinishedEvent{
		baseEvent: newBaseEvent(TypeBuildFinished),
		BuildID:   buildID,
		State:     state,
		ExitCode:  exitCode,
		Elapsed:   elapsed,
		Timer:     timer,
	}
}

// BuildStoppedEvent is emitted when a running build is cancelled.
type BuildStoppedEvent struct {
	baseEvent
	BuildID string        `json:"build_id"`
	Elapsed time.Duration `json:"elapsed"`
	Timer   string        `json:"timer"`
}

// NewBuildStoppedEvent creates a BuildStoppedEvent.
func NewBuildStoppedEvent(buildID string, elapsed time.Duration, timer string) BuildStoppedEvent {
	return BuildStoppedEvent{
		baseEvent: newBaseEvent(TypeBuildStopped),
		BuildID:   buildID,
		Elapsed:   elapsed,
		Timer:     timer,
	}
}

// TimerEvent is emitted on each timer tick while a build runs.
type TimerEvent struct {
	baseEvent
	BuildID string        `json:"build_id"`
	Elapsed time.Duration `json:"elapsed"`
	Timer   string        `json:"timer"`
}

// NewTimerEvent creates a TimerEvent.
func NewTimerEvent(buildID string, elapsed time.Duration, timer string) TimerEvent {
	return TimerEvent{
		baseEvent: newBaseEvent(TypeBuildTimer),
		BuildID:   buildID,
		Elapsed:   elapsed,
		Timer:     timer,
	}
}

// -----------------------------------------------------------------------------
// Panel and Link Events
// -----------------------------------------------------------------------------

// PanelChangedEvent is emitted when the output panel is created, shown,
// hidden, focused or destroyed.
type PanelChangedEvent struct {
	baseEvent
	PanelID   string `json:"panel_id"`
	Placement string `json:"placement"`
	Visible   bool   `json:"visible"`
	Focused   bool   `json:"focused"`
	Destroyed bool   `json:"destroyed"`
}

// NewPanelChangedEvent creates a PanelChangedEvent.
func NewPanelChangedEvent(panelID, placement string, visible, focused, destroyed bool) PanelChangedEvent {
	return PanelChangedEvent{
		baseEvent: newBaseEvent(TypePanelChanged),
		PanelID:   panelID,
		Placement: placement,
		Visible:   visible,
		Focused:   focused,
		Destroyed: destroyed,
	}
}

// LinkActivatedEvent is emitted when a user activates an annotated match.
// Hosts act on it, e.g. by opening File at Line.
type LinkActivatedEvent struct {
	baseEvent
	BuildID string            `json:"build_id"`
	LinkID  string            `json:"link_id"`
	Pattern int               `json:"pattern"`
	Groups  map[string]string `json:"groups"`
}

// NewLinkActivatedEvent creates a LinkActivatedEvent.
func NewLinkActivatedEvent(buildID, linkID string, pattern int, groups map[string]string) LinkActivatedEvent {
	return LinkActivatedEvent{
		baseEvent: newBaseEvent(TypeLinkActivated),
		BuildID:   buildID,
		LinkID:    linkID,
		Pattern:   pattern,
		Groups:    groups,
	}
}

// PatternErrorEvent reports an error-match pattern that failed to compile.
// It is published once per configuration load.
type PatternErrorEvent struct {
	baseEvent
	Index   int    `json:"index"`
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

// NewPatternErrorEvent creates a PatternErrorEvent.
func NewPatternErrorEvent(index int, pattern, message string) PatternErrorEvent {
	return PatternErrorEvent{
		baseEvent: newBaseEvent(TypePatternError),
		Index:     index,
		Pattern:   pattern,
		Message:   message,
	}
}

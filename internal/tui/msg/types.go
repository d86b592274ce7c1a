package msg

import (
	"time"

	"github.com/Iron-Ham/buildview/internal/config"
)

// TickMsg is sent periodically to drive the build timer.
type TickMsg time.Time

// LoopMsg carries a callback that must run on the event loop, such as a
// chunk of process output.
type LoopMsg struct {
	Fn func()
}

// FilesChangedMsg is sent when watched files were saved.
type FilesChangedMsg struct {
	Paths []string
}

// ConfigReloadedMsg is sent when the config file changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// CopiedMsg reports the result of a clipboard copy.
type CopiedMsg struct {
	What string
	Err  error
}

// ErrMsg wraps an error to be displayed in the UI.
type ErrMsg struct {
	Err error
}

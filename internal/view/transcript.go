package view

import (
	"os"
	"path/filepath"

	"github.com/Iron-Ham/buildview/internal/event"
	"github.com/Iron-Ham/buildview/internal/logging"
)

// SaveTranscripts writes the raw output of every finished or stopped build
// of s to path, replacing the previous contents. The bus must be the one
// s publishes on. It returns the subscription IDs.
func SaveTranscripts(bus *event.Bus, s *Session, path string, logger *logging.Logger) []string {
	if logger == nil {
		logger = logging.NopLogger()
	}
	save := func(e event.Event) {
		if err := writeTranscript(path, s.Transcript()); err != nil {
			logger.WithBuild(s.BuildID()).LogError("cannot save transcript", err, "path", path)
			return
		}
		logger.WithBuild(s.BuildID()).Debug("transcript saved", "path", path, "trigger", e.EventType(),
			"bytes", s.transcript.Len(), "evicted", s.transcript.Dropped())
	}
	return []string{
		bus.Subscribe(event.TypeBuildFinished, save),
		bus.Subscribe(event.TypeBuildStopped, save),
	}
}

func writeTranscript(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

package styles

import (
	"testing"

	"github.com/Iron-Ham/buildview/internal/build"
)

func TestStateColor(t *testing.T) {
	tests := []struct {
		state build.State
		want  string
	}{
		{build.StateIdle, string(MutedColor)},
		{build.StateRunning, string(BlueColor)},
		{build.StateSuccess, string(SecondaryColor)},
		{build.StateError, string(ErrorColor)},
		{build.StateStopped, string(WarningColor)},
	}
	for _, tt := range tests {
		if got := string(StateColor(tt.state)); got != tt.want {
			t.Errorf("StateColor(%v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateStyle_Bold(t *testing.T) {
	if !StateStyle(build.StateError).GetBold() {
		t.Error("state titles should be bold")
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *BuildError
		want string
	}{
		{
			name: "message only",
			err:  NewBuildError("trigger failed", nil),
			want: "build error: trigger failed",
		},
		{
			name: "with context and cause",
			err:  NewBuildError("stop rejected", ErrBuildNotRunning).WithBuildID("b1"),
			want: "build error [build=b1]: stop rejected: build not running",
		},
		{
			name: "with command",
			err:  NewBuildError("spawn", nil).WithCommand("make all"),
			want: `build error [cmd="make all"]: spawn`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildError_Is(t *testing.T) {
	err := NewBuildError("stop rejected", ErrBuildNotRunning)
	if !Is(err, ErrBuildNotRunning) {
		t.Error("BuildError should match its cause")
	}
	var target *BuildError
	if !As(fmt.Errorf("wrapped: %w", err), &target) {
		t.Error("As() should find the BuildError through wrapping")
	}
	if Is(err, ErrInvalidPattern) {
		t.Error("BuildError should not match an unrelated sentinel")
	}
}

func TestPatternError(t *testing.T) {
	cause := errors.New("missing )")
	err := NewPatternError("invalid error pattern", cause).WithPattern(2, "(foo")

	want := `pattern error [index=2, pattern="(foo"]: invalid error pattern: missing )`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidPattern) {
		t.Error("PatternError should match ErrInvalidPattern")
	}
	if !Is(err, cause) {
		t.Error("PatternError should match its cause")
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want warning", err.Severity())
	}
}

func TestProcessError(t *testing.T) {
	err := NewProcessError("spawn failed", ErrProcessStart).
		WithCommand("make").
		WithPID(42)

	want := `process error [cmd="make", pid=42]: spawn failed: process failed to start`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if IsRetryable(err) {
		t.Error("IsRetryable() = true, want false")
	}
	if !IsUserFacing(err) {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("bad value", nil).WithFile("/tmp/c.yaml")
	want := "config error [file=/tmp/c.yaml]: bad value"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	var target *ConfigError
	if !As(err, &target) {
		t.Error("As() should match ConfigError")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("link", "error-match-0-3")
	if got := err.Error(); got != "link not found: error-match-0-3" {
		t.Errorf("Error() = %q", got)
	}
	if !Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if !IsUserFacing(err) {
		t.Error("NotFoundError should be user facing")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("unknown placement").WithField("panel.orientation").WithValue("Middle")
	want := "validation error [field=panel.orientation, value=Middle]: unknown placement"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("waiting for exit", 2*time.Second)
	if got := err.Error(); got != "timeout error: waiting for exit (timeout: 2s)" {
		t.Errorf("Error() = %q", got)
	}
	if !Is(err, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
	if !IsRetryable(err) {
		t.Error("timeouts are retryable")
	}
}

func TestClassificationHelpers(t *testing.T) {
	plain := errors.New("plain")

	if IsRetryable(nil) || IsUserFacing(nil) {
		t.Error("nil errors are neither retryable nor user facing")
	}
	if IsRetryable(plain) {
		t.Error("plain errors are not retryable")
	}
	if !IsRetryable(Wrap(ErrTimeout, "ctx")) {
		t.Error("wrapped ErrTimeout should be retryable")
	}
	if GetSeverity(nil) != SeverityDebug {
		t.Error("GetSeverity(nil) should be debug")
	}
	if GetSeverity(plain) != SeverityError {
		t.Error("GetSeverity(plain) should be error")
	}
	if GetSeverity(NewPatternError("x", nil)) != SeverityWarning {
		t.Error("GetSeverity(PatternError) should be warning")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("wrapping nil should return nil")
	}
	err := Wrap(ErrUnknownLink, "activate")
	if err.Error() != "activate: unknown link" {
		t.Errorf("Wrap() = %q", err.Error())
	}
	if !Is(err, ErrUnknownLink) {
		t.Error("Wrap should preserve the chain")
	}
}

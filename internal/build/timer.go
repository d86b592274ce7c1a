package build

import (
	"fmt"
	"time"
)

// TickInterval is how often hosts refresh the timer of a running build.
const TickInterval = 100 * time.Millisecond

// FormatElapsed renders d with one decimal of seconds, e.g. "1.2 s".
// Durations of a minute or more get a minutes prefix: "1m 05.3 s".
// Tenths are truncated, not rounded, so the display never runs ahead.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	tenths := int64(d / (100 * time.Millisecond))
	minutes := tenths / 600
	rest := tenths % 600
	if minutes == 0 {
		return fmt.Sprintf("%d.%d s", rest/10, rest%10)
	}
	return fmt.Sprintf("%dm %02d.%d s", minutes, rest/10, rest%10)
}

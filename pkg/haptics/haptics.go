// Package haptics emits vibration patterns for non-visual feedback.
package haptics

import (
	"log/slog"
	"time"
)

// Pattern is alternating vibrate/pause segments.
type Pattern []time.Duration

// Confirm acknowledges a routine action.
var Confirm = Pattern{50 * time.Millisecond}

// QuickAction acknowledges a quick-action trigger.
var QuickAction = Pattern{100 * time.Millisecond}

// Hazard is the urgent double pulse played alongside a spoken hazard
// warning. Kept long and unmistakable.
var Hazard = Pattern{500 * time.Millisecond, 100 * time.Millisecond, 500 * time.Millisecond}

// Driver plays a pattern on whatever vibration hardware is available.
// Playing is best-effort; a driver never blocks the session flow.
type Driver interface {
	Vibrate(p Pattern)
}

// LogDriver records patterns instead of vibrating. The default where no
// vibration hardware exists.
type LogDriver struct {
	Logger *slog.Logger
}

func (d LogDriver) Vibrate(p Pattern) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	segments := make([]int64, 0, len(p))
	for _, seg := range p {
		segments = append(segments, seg.Milliseconds())
	}
	logger.Info("vibrate", "pattern_ms", segments)
}

// NopDriver discards all patterns.
type NopDriver struct{}

func (NopDriver) Vibrate(Pattern) {}

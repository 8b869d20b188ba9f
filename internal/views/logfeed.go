package views

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/runebridge/internal/sched"
)

// DefaultLogTTL is how long a log line stays in the overlay.
const DefaultLogTTL = 20 * time.Second

// Fixed prefixes and colors for engine warnings and errors.
const (
	WarningPrefix = "WARNING"
	WarningColor  = "#FFA500"
	ErrorPrefix   = "ERROR"
	ErrorColor    = "#FF0000"
)

// fallbackColor is used when the engine sends an unparseable color.
var fallbackColor = colorful.Color{R: 1, G: 1, B: 1}

// LogEntry is one line of the log overlay.
type LogEntry struct {
	Prefix  string
	Color   colorful.Color
	Message string
}

// RGB returns the prefix color as 8-bit channels.
func (e LogEntry) RGB() (r, g, b uint8) {
	return e.Color.Clamped().RGB255()
}

// ParseColor parses a "#rrggbb" or "#rgb" color. Malformed input yields white.
func ParseColor(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fallbackColor
	}
	return c
}

// LogFeed is the engine log overlay. Each line is removed on its own timer.
type LogFeed struct {
	q *expiring[LogEntry]
}

// NewLogFeed creates a feed evicting after ttl. A non-positive ttl uses
// DefaultLogTTL.
func NewLogFeed(clock sched.Scheduler, ttl time.Duration) *LogFeed {
	if ttl <= 0 {
		ttl = DefaultLogTTL
	}
	return &LogFeed{q: newExpiring[LogEntry](clock, ttl)}
}

// Add appends a line with a colored prefix.
func (f *LogFeed) Add(prefix, colorHex, message string) {
	f.q.push(LogEntry{Prefix: prefix, Color: ParseColor(colorHex), Message: message})
}

// Warning appends a warning line.
func (f *LogFeed) Warning(message string) {
	f.Add(WarningPrefix, WarningColor, message)
}

// Error appends an error line.
func (f *LogFeed) Error(message string) {
	f.Add(ErrorPrefix, ErrorColor, message)
}

// Entries returns the visible lines, oldest first.
func (f *LogFeed) Entries() []LogEntry {
	return f.q.snapshot()
}

// Len returns the number of visible lines.
func (f *LogFeed) Len() int {
	return f.q.len()
}

// SetTTL changes the delay used by later lines.
func (f *LogFeed) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		f.q.setTTL(ttl)
	}
}

// OnChange registers fn to run after every insertion or eviction.
func (f *LogFeed) OnChange(fn func()) {
	f.q.setOnChange(fn)
}

// Close cancels all pending eviction timers.
func (f *LogFeed) Close() {
	f.q.close()
}

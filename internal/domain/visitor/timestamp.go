package visitor

import (
	"fmt"
	"time"
)

// Textual timestamp pattern used on the outward-facing surfaces:
// date, 'T', hour:minute, then milliseconds. The pattern predates this
// service and is kept for compatibility with existing consumers.
const timestampLen = len("2006-01-02T15:04:000")

// FormatTimestamp renders t in the canonical textual pattern.
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%s:%03d", t.Format("2006-01-02T15:04"), t.Nanosecond()/int(time.Millisecond))
}

// ParseTimestamp reads a timestamp in the canonical textual pattern.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) != timestampLen {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	t, err := time.Parse("2006-01-02T15:04", s[:16])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	var millis int
	if _, err := fmt.Sscanf(s[17:], "%03d", &millis); err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.Add(time.Duration(millis) * time.Millisecond), nil
}

package visitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 9, 1, 13, 45, 12, 67*int(time.Millisecond), time.UTC)
	assert.Equal(t, "2026-09-01T13:45:067", FormatTimestamp(ts))
}

func TestParseTimestamp(t *testing.T) {
	parsed, err := ParseTimestamp("2026-09-01T13:45:067")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 13, 45, 0, 67*int(time.Millisecond), time.UTC), parsed)
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, input := range []string{"", "2026-09-01", "2026-09-01T13:45", "not-a-timestamp-at-a"} {
		_, err := ParseTimestamp(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatParse_RoundTrip(t *testing.T) {
	// The pattern carries no seconds, so round-tripping keeps everything
	// down to the minute plus the millisecond component.
	ts := time.Date(2026, 9, 1, 13, 45, 0, 123*int(time.Millisecond), time.UTC)
	parsed, err := ParseTimestamp(FormatTimestamp(ts))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
}

package printer_test

import (
	"testing"
	"time"

	"github.com/slok/podexec/internal/printer"
	"github.com/stretchr/testify/assert"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 1, 30, 10, 15, 30, 0, time.UTC)

	tests := map[string]struct {
		start    time.Time
		expected string
	}{
		"just started": {
			start:    now,
			expected: "0s",
		},
		"started in the future": {
			start:    now.Add(time.Minute),
			expected: "0s",
		},
		"seconds are truncated": {
			start:    now.Add(-59*time.Second - 900*time.Millisecond),
			expected: "59s",
		},
		"minutes": {
			start:    now.Add(-90 * time.Second),
			expected: "1m",
		},
		"hours": {
			start:    now.Add(-5*time.Hour - 59*time.Minute),
			expected: "5h",
		},
		"days": {
			start:    now.Add(-50 * time.Hour),
			expected: "2d",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(test.expected, printer.FormatAge(test.start, now))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := map[string]struct {
		time     time.Time
		expected string
	}{
		"standard timestamp": {
			time:     time.Date(2026, 1, 30, 10, 15, 30, 0, time.UTC),
			expected: "2026-01-30 10:15:30 UTC",
		},
		"timestamp with different timezone gets converted to UTC": {
			time:     time.Date(2026, 1, 30, 10, 15, 30, 0, time.FixedZone("EST", -5*3600)),
			expected: "2026-01-30 15:15:30 UTC",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			result := printer.FormatTimestamp(test.time)
			assert.Equal(test.expected, result)
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := map[string]struct {
		seconds  float64
		expected string
	}{
		"whole seconds": {
			seconds:  1,
			expected: "1s",
		},
		"fraction of a second": {
			seconds:  0.5,
			expected: "0.5s",
		},
		"seconds with decimals": {
			seconds:  2.25,
			expected: "2.25s",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(test.expected, printer.FormatSeconds(test.seconds))
		})
	}
}

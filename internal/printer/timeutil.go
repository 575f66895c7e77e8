package printer

import (
	"fmt"
	"strconv"
	"time"
)

// FormatAge returns the elapsed time between start and now in its biggest unit.
// Examples: "5s", "3m", "2h", "1d".
func FormatAge(start, now time.Time) string {
	diff := now.Sub(start)
	switch {
	case diff < 0:
		return "0s"
	case diff < time.Minute:
		return fmt.Sprintf("%ds", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff.Hours()))
	}
	return fmt.Sprintf("%dd", int(diff.Hours()/24))
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatSeconds returns a float amount of seconds as a short duration string.
// Examples: "1s", "0.5s", "2.25s".
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64) + "s"
}

// Package exitcode makes the exit status of a remote script observable through its
// stderr stream.
//
// The script is run untouched by a child shell and, once it ends, the wrapper writes a
// single `EXIT_CODE:<status>` line to stderr and exits with the same status. Consumers
// recognize that line with [Parse] and use it instead of forwarding it as output.
//
// A script writing a line that matches the sentinel on its own stderr will be
// misread as the exit code. The wrapper sentinel is always the last one written, so
// consumers should keep the last match.
package exitcode

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// SentinelPrefix is the prefix of the line carrying the exit code.
	SentinelPrefix = "EXIT_CODE:"
	// SignalKind is the control signal kind used for the exit code.
	SignalKind = "EXIT_CODE"
	// CaptureFailedCode is the exit code reported when the real one is unknown.
	CaptureFailedCode = 1

	shell = "/bin/sh"
)

// ErrInvalidCode is returned for sentinel values that are not an exit code.
var ErrInvalidCode = errors.New("invalid exit code")

var sentinelRegexp = regexp.MustCompile(`^` + SentinelPrefix + `(\d+)$`)

// Wrap returns a shell script that runs script and reports its exit status on stderr.
// The leading newline of the sentinel isolates it from any unterminated stderr line.
func Wrap(script string) string {
	return fmt.Sprintf(`%s -c %s
rc=$?
printf '\n%s%%d\n' "$rc" >&2
exit "$rc"`, shell, quote(script), SentinelPrefix)
}

// Command returns the argv that runs the wrapped script.
func Command(script string) []string {
	return []string{shell, "-c", Wrap(script)}
}

// Parse returns the exit code value carried by line. Every line matching the sentinel
// is reported, even when its value is not a valid exit code.
func Parse(line string) (value string, ok bool) {
	m := sentinelRegexp.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Code converts a sentinel value into an exit code. Values out of the int range can't
// be a real exit status, they return CaptureFailedCode with an error.
func Code(value string) (int, error) {
	code, err := strconv.Atoi(value)
	if err != nil {
		return CaptureFailedCode, fmt.Errorf("exit code %q out of range: %w", value, ErrInvalidCode)
	}
	return code, nil
}

// quote single-quotes s for POSIX shells.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

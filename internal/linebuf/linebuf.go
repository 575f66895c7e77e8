// Package linebuf rebuilds complete lines from arbitrarily fragmented byte chunks.
package linebuf

import (
	"bytes"
	"strings"
)

// Buffer reassembles the lines of a single output channel. It holds at most one
// unterminated line between calls.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	pending []byte
}

// Append adds fragment to the pending data and returns the lines it completes, in
// order and without the terminator. Blank lines are not returned.
func (b *Buffer) Append(fragment []byte) []string {
	b.pending = append(b.pending, fragment...)

	var lines []string
	for {
		i := bytes.IndexByte(b.pending, '\n')
		if i < 0 {
			break
		}

		line := string(b.pending[:i])
		b.pending = b.pending[i+1:]
		if isBlank(line) {
			continue
		}
		lines = append(lines, line)
	}

	// Reclaim the consumed prefix once everything has been split.
	if len(b.pending) == 0 {
		b.pending = nil
	}

	return lines
}

// Flush returns the unterminated remainder, if it is not blank, and empties the buffer.
// It is called once the channel has no more data.
func (b *Buffer) Flush() (string, bool) {
	line := string(b.pending)
	b.pending = nil

	if isBlank(line) {
		return "", false
	}

	return line, true
}

// Pending returns the number of buffered bytes.
func (b *Buffer) Pending() int {
	return len(b.pending)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

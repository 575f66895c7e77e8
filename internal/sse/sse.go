// Package sse implements the subset of the server-sent events framing used by the
// streaming endpoints: every event is a single `data:` field with a JSON payload.
package sse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ContentType is the media type of event streams.
const ContentType = "text/event-stream"

// Writer writes events to an HTTP response, flushing each one.
type Writer struct {
	w  io.Writer
	rc *http.ResponseController
}

// NewWriter sets the event stream headers on w and returns the writer. The status is
// sent with the first event.
func NewWriter(w http.ResponseWriter) *Writer {
	h := w.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &Writer{w: w, rc: http.NewResponseController(w)}
}

// WriteJSON writes v as a single event and flushes it to the client. An error means
// the client is gone.
func (s *Writer) WriteJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	return s.WriteData(payload)
}

// WriteData writes payload as a single event. Payloads with newlines are split in
// multiple data fields.
func (s *Writer) WriteData(payload []byte) error {
	var buf bytes.Buffer
	for line := range bytes.SplitSeq(payload, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')

	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("could not write event: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("could not flush event: %w", err)
	}

	return nil
}

// Reader reads events from a stream.
type Reader struct {
	sc *bufio.Scanner
}

// NewReader returns a reader of the events in r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{sc: sc}
}

// Next returns the data of the next event. Returns io.EOF at the end of the stream.
// Comments and fields other than data are ignored.
func (r *Reader) Next() ([]byte, error) {
	var data [][]byte
	for r.sc.Scan() {
		line := r.sc.Bytes()
		if len(line) == 0 {
			if len(data) == 0 {
				continue
			}
			return bytes.Join(data, []byte("\n")), nil
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		if string(field) != "data" {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))
		data = append(data, bytes.Clone(value))
	}

	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("could not read event stream: %w", err)
	}

	// An event without the final blank line is still dispatched.
	if len(data) > 0 {
		return bytes.Join(data, []byte("\n")), nil
	}

	return nil, io.EOF
}

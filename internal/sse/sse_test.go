package sse_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/podexec/internal/sse"
)

func TestWriter(t *testing.T) {
	tests := map[string]struct {
		write   func(w *sse.Writer) error
		expBody string
	}{
		"A JSON value should be written as a single data field.": {
			write: func(w *sse.Writer) error {
				return w.WriteJSON(map[string]any{"level": "INFO"})
			},
			expBody: "data: {\"level\":\"INFO\"}\n\n",
		},

		"Multiple events should be separated by blank lines.": {
			write: func(w *sse.Writer) error {
				if err := w.WriteData([]byte("a")); err != nil {
					return err
				}
				return w.WriteData([]byte("b"))
			},
			expBody: "data: a\n\ndata: b\n\n",
		},

		"A payload with newlines should be split in data fields.": {
			write: func(w *sse.Writer) error {
				return w.WriteData([]byte("a\nb"))
			},
			expBody: "data: a\ndata: b\n\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			rec := httptest.NewRecorder()
			w := sse.NewWriter(rec)
			require.NoError(t, test.write(w))

			assert.Equal(test.expBody, rec.Body.String())
			assert.Equal("text/event-stream", rec.Header().Get("Content-Type"))
			assert.Equal("no-cache", rec.Header().Get("Cache-Control"))
			assert.True(rec.Flushed)
		})
	}
}

func TestReader(t *testing.T) {
	tests := map[string]struct {
		stream    string
		expEvents []string
	}{
		"Events should be read in order.": {
			stream:    "data: a\n\ndata: b\n\n",
			expEvents: []string{"a", "b"},
		},

		"Multiple data fields should be joined with newlines.": {
			stream:    "data: a\ndata: b\n\n",
			expEvents: []string{"a\nb"},
		},

		"Comments and other fields should be ignored.": {
			stream:    ": keepalive\n\nevent: message\nid: 1\ndata: a\n\n",
			expEvents: []string{"a"},
		},

		"A data field without space should be read.": {
			stream:    "data:a\n\n",
			expEvents: []string{"a"},
		},

		"A last event without the blank line should be read.": {
			stream:    "data: a\n\ndata: b",
			expEvents: []string{"a", "b"},
		},

		"CRLF line endings should be accepted.": {
			stream:    "data: a\r\n\r\n",
			expEvents: []string{"a"},
		},

		"An empty stream should not have events.": {
			stream: "",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			r := sse.NewReader(strings.NewReader(test.stream))

			var got []string
			for {
				data, err := r.Next()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				got = append(got, string(data))
			}

			assert.Equal(t, test.expEvents, got)
		})
	}
}

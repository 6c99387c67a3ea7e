// Package sse writes Server-Sent Events.
//
//	stream, err := sse.New(c.W, c.R)
//	if err != nil {
//	    c.Error(http.StatusInternalServerError, err.Error())
//	    return
//	}
//	stream.Send("toast", toastID, payload)
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrUnsupported is returned when the ResponseWriter cannot flush.
var ErrUnsupported = errors.New("sse: streaming not supported")

// Stream is an active SSE connection to one client.
type Stream struct {
	w       http.ResponseWriter
	r       *http.Request
	flusher http.Flusher
}

// New sets the event-stream headers and writes the 200 status.
func New(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, r: r, flusher: flusher}, nil
}

// Send writes a named event with an optional id and a JSON data payload.
func (s *Stream) Send(event, id string, data any) error {
	if s.IsClosed() {
		return s.r.Context().Err()
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}

	var b strings.Builder
	if id != "" {
		fmt.Fprintf(&b, "id: %s\n", oneLine(id))
	}
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", oneLine(event))
	}
	fmt.Fprintf(&b, "data: %s\n\n", payload)

	if _, err := fmt.Fprint(s.w, b.String()); err != nil {
		return fmt.Errorf("sse: write: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// Retry tells the client how long to wait before reconnecting.
func (s *Stream) Retry(d time.Duration) {
	fmt.Fprintf(s.w, "retry: %d\n\n", d.Milliseconds())
	s.flusher.Flush()
}

// Comment writes an SSE comment, used as a keepalive heartbeat.
func (s *Stream) Comment(msg string) error {
	if s.IsClosed() {
		return s.r.Context().Err()
	}
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", oneLine(msg)); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Done is closed when the client disconnects.
func (s *Stream) Done() <-chan struct{} { return s.r.Context().Done() }

// IsClosed reports whether the client has disconnected.
func (s *Stream) IsClosed() bool {
	select {
	case <-s.r.Context().Done():
		return true
	default:
		return false
	}
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}

// Package sse reads Server-Sent Events frames from a response body.
//
// Only the subset of the protocol needed for job progress streams is
// supported: "event", "data" and "id" fields, comments, and blank-line frame
// termination. Reconnection ("retry") is not handled.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single SSE line.
const maxLineSize = 1024 * 1024

// Frame is one blank-line-terminated SSE event.
type Frame struct {
	// Event is the event type from the "event:" line. Empty when the frame
	// carried no event line.
	Event string
	// Data is the frame payload. Multiple data lines are joined with "\n".
	Data string
	// ID is the last "id:" value seen in the frame.
	ID string
}

type state int

const (
	// stateAwaitingEvent is the state between frames.
	stateAwaitingEvent state = iota
	// stateAwaitingData is entered once a frame has started.
	stateAwaitingData
	// stateEmit holds a completed frame until the caller reads it.
	stateEmit
)

// Reader scans SSE frames line by line.
type Reader struct {
	scanner *bufio.Scanner
	state   state

	event   string
	id      string
	data    []string
	hasData bool

	frame Frame
	err   error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Reader{
		scanner: scanner,
		state:   stateAwaitingEvent,
	}
}

// Scan advances to the next complete frame. It returns false at end of input
// or on a read error. A frame left unterminated at end of input is dropped.
func (r *Reader) Scan() bool {
	if r.state == stateEmit {
		r.reset()
	}

	for r.scanner.Scan() {
		r.feed(r.scanner.Text())
		if r.state == stateEmit {
			return true
		}
	}

	r.err = r.scanner.Err()
	return false
}

// Frame returns the frame produced by the last successful Scan.
func (r *Reader) Frame() Frame {
	return r.frame
}

// Err returns the read error that stopped scanning, if any.
func (r *Reader) Err() error {
	return r.err
}

// feed applies one input line to the state machine.
func (r *Reader) feed(line string) {
	if line == "" {
		if r.hasData {
			r.frame = Frame{
				Event: r.event,
				Data:  strings.Join(r.data, "\n"),
				ID:    r.id,
			}
			r.state = stateEmit
			return
		}
		// A frame without data dispatches nothing.
		r.reset()
		return
	}

	if strings.HasPrefix(line, ":") {
		return
	}

	field, value, _ := strings.Cut(line, ":")
	value = strings.TrimPrefix(value, " ")

	switch field {
	case "event":
		r.event = value
		r.state = stateAwaitingData
	case "data":
		r.data = append(r.data, value)
		r.hasData = true
		r.state = stateAwaitingData
	case "id":
		r.id = value
		r.state = stateAwaitingData
	}
}

func (r *Reader) reset() {
	r.state = stateAwaitingEvent
	r.event = ""
	r.id = ""
	r.data = r.data[:0]
	r.hasData = false
}

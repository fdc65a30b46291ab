package api

import (
	"encoding/json"
	"fmt"
	"io"

	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
	"github.com/AltairaLabs/playht-go/sse"
)

// Progress event names. Frames with any other event name are skipped;
// frames without an event line are accepted.
const (
	ProgressEventGenerating = "generating"
	ProgressEventCompleted  = "completed"
	ProgressEventError      = "error"
)

var progressEvents = map[string]bool{
	ProgressEventGenerating: true,
	ProgressEventCompleted:  true,
	ProgressEventError:      true,
}

// ProgressEvent is one decoded frame of a job progress stream.
type ProgressEvent struct {
	// Event is the SSE event name; empty when the frame had none.
	Event string `json:"-"`

	ID            string   `json:"id"`
	Stage         string   `json:"stage,omitempty"`
	Progress      *float64 `json:"progress,omitempty"`
	StageProgress *float64 `json:"stage_progress,omitempty"`
	URL           string   `json:"url,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
	Size          *int64   `json:"size,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// ProgressStream reads progress events from a job's event stream. It owns
// the response body and cannot be restarted. It is not safe for concurrent use.
//
//	for {
//	    ev, err := ps.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if errors.IsKind(err, errors.KindDecode) {
//	        continue // one bad frame
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
type ProgressStream struct {
	body      *trackedBody
	reader    *sse.Reader
	observer  Observer
	operation string
	location  string
	done      bool
}

func newProgressStream(body *trackedBody, obs Observer, op, location string) *ProgressStream {
	return &ProgressStream{
		body:      body,
		reader:    sse.NewReader(body),
		observer:  obs,
		operation: op,
		location:  location,
	}
}

// Location returns the job's progress URL from the Content-Location header, or "".
func (s *ProgressStream) Location() string {
	return s.location
}

// Next returns the next progress event.
//
// It returns io.EOF once the stream ends. A frame whose data is not valid
// JSON yields a KindDecode error and the stream stays usable. A transport
// failure yields a KindTransport error and ends the stream; every later
// call returns io.EOF.
func (s *ProgressStream) Next() (ProgressEvent, error) {
	for {
		if s.done {
			return ProgressEvent{}, io.EOF
		}

		if !s.reader.Scan() {
			return ProgressEvent{}, s.finish()
		}

		frame := s.reader.Frame()
		if frame.Event != "" && !progressEvents[frame.Event] {
			continue
		}

		var ev ProgressEvent
		if err := json.Unmarshal([]byte(frame.Data), &ev); err != nil {
			derr := pkgerrors.New(pkgerrors.KindDecode, s.operation,
				fmt.Errorf("invalid progress frame: %w", err)).
				WithDetails(map[string]any{"event": frame.Event, "data": frame.Data})
			s.observer.ProgressEventReceived(frame.Event, derr)
			return ProgressEvent{Event: frame.Event}, derr
		}
		ev.Event = frame.Event
		if ev.ID == "" {
			ev.ID = frame.ID
		}
		s.observer.ProgressEventReceived(frame.Event, nil)
		return ev, nil
	}
}

// finish ends the stream and reports how it ended.
func (s *ProgressStream) finish() error {
	s.done = true
	err := s.reader.Err()
	if err != nil {
		// The tracked body records the read failure as a transport error.
		s.body.fail(pkgerrors.New(pkgerrors.KindTransport, s.operation, err))
		err = s.body.err
	}
	_ = s.body.Close()
	if err != nil {
		return err
	}
	return io.EOF
}

// Close releases the connection. It is safe to call more than once.
func (s *ProgressStream) Close() error {
	s.done = true
	return s.body.Close()
}

package prometheus

import (
	"strconv"

	"github.com/AltairaLabs/playht-go/api"
)

// Observer records client activity as Prometheus metrics. Pass it to
// api.WithObserver. It keeps no state, so one Observer can serve many clients.
type Observer struct{}

var _ api.Observer = (*Observer)(nil)

// NewObserver creates a new Observer.
func NewObserver() *Observer {
	return &Observer{}
}

// RequestStarted implements api.Observer.
func (o *Observer) RequestStarted(operation string) {
	RecordRequestStart(operation)
}

// RequestFinished implements api.Observer.
func (o *Observer) RequestFinished(info api.RequestInfo) {
	status := statusError
	if info.StatusCode != 0 {
		status = strconv.Itoa(info.StatusCode)
	}
	RecordRequestEnd(info.Operation, status, info.Duration.Seconds())
}

// ChunkReceived implements api.Observer.
func (o *Observer) ChunkReceived(operation string, size int) {
	RecordChunk(operation, size)
}

// StreamFinished implements api.Observer.
func (o *Observer) StreamFinished(info api.StreamInfo) {
	RecordStream(info.Operation, outcome(info.Err), info.Bytes, info.Duration.Seconds())
}

// ProgressEventReceived implements api.Observer.
func (o *Observer) ProgressEventReceived(event string, err error) {
	RecordProgressEvent(event, outcome(err))
}

func outcome(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}

package api

import "time"

// RequestInfo describes a finished HTTP exchange, up to the response headers.
type RequestInfo struct {
	Operation  string
	Method     string
	StatusCode int // 0 when no response was received
	Duration   time.Duration
	Err        error
}

// StreamInfo describes a response body that was consumed and closed.
type StreamInfo struct {
	Operation string
	Chunks    int
	Bytes     int64
	Duration  time.Duration
	Err       error
}

// Observer receives client lifecycle notifications. Implementations must be
// safe for concurrent use; methods are called synchronously on the calling
// goroutine and should return quickly.
type Observer interface {
	RequestStarted(operation string)
	RequestFinished(info RequestInfo)
	ChunkReceived(operation string, size int)
	StreamFinished(info StreamInfo)
	ProgressEventReceived(event string, err error)
}

type nopObserver struct{}

func (nopObserver) RequestStarted(string) {}
func (nopObserver) RequestFinished(RequestInfo) {}
func (nopObserver) ChunkReceived(string, int) {}
func (nopObserver) StreamFinished(StreamInfo) {}
func (nopObserver) ProgressEventReceived(string, error) {}

package testutil

import (
	"bytes"
	"errors"
	"io"
)

// ErrSinkFailed is returned by FailAfterWriter once its budget is spent.
var ErrSinkFailed = errors.New("sink write failed")

// FailAfterWriter accepts OK successful writes and fails every write after that.
// Writes records every slice it accepted, in order.
type FailAfterWriter struct {
	OK     int
	Writes [][]byte
	Calls  int
}

// Write implements io.Writer.
func (w *FailAfterWriter) Write(p []byte) (int, error) {
	w.Calls++
	if len(w.Writes) >= w.OK {
		return 0, ErrSinkFailed
	}
	w.Writes = append(w.Writes, append([]byte(nil), p...))
	return len(p), nil
}

// Bytes returns the concatenation of all accepted writes.
func (w *FailAfterWriter) Bytes() []byte {
	return bytes.Join(w.Writes, nil)
}

// ChunkedReader returns each of its chunks from exactly one Read call,
// then Err (io.EOF when nil). Reads counts the calls made.
type ChunkedReader struct {
	Chunks [][]byte
	Err    error
	Reads  int
	Closed bool
}

// Read implements io.Reader.
func (r *ChunkedReader) Read(p []byte) (int, error) {
	r.Reads++
	if len(r.Chunks) == 0 {
		if r.Err != nil {
			return 0, r.Err
		}
		return 0, io.EOF
	}
	n := copy(p, r.Chunks[0])
	if n < len(r.Chunks[0]) {
		r.Chunks[0] = r.Chunks[0][n:]
	} else {
		r.Chunks = r.Chunks[1:]
	}
	return n, nil
}

// Close implements io.Closer.
func (r *ChunkedReader) Close() error {
	r.Closed = true
	return nil
}

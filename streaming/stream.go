package streaming

import (
	"errors"
	"io"

	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
)

const (
	// DefaultChunkSize is the read buffer size used when none is configured.
	// A chunk is never larger than this; it may be smaller when the transport
	// hands over less data in a single read.
	DefaultChunkSize = 32 * 1024

	// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
	maxEmptyReads = 100

	defaultOperation = "ReadStream"
)

// ChunkHook observes every chunk as it is yielded. index is 0-based.
type ChunkHook func(index, size int)

// Option configures a ChunkStream or Forward call.
type Option func(*options)

type options struct {
	chunkSize int
	operation string
	hook      ChunkHook
}

// WithChunkSize sets the read buffer size. Non-positive values are ignored.
func WithChunkSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.chunkSize = size
		}
	}
}

// WithOperation sets the operation name reported in errors.
func WithOperation(op string) Option {
	return func(o *options) {
		if op != "" {
			o.operation = op
		}
	}
}

// WithChunkHook registers a hook called for every yielded chunk.
func WithChunkHook(hook ChunkHook) Option {
	return func(o *options) {
		o.hook = hook
	}
}

func newOptions(opts []Option) options {
	o := options{
		chunkSize: DefaultChunkSize,
		operation: defaultOperation,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ChunkStream is a lazy, single-pass sequence of byte chunks read from a
// streamed HTTP body. It owns the body exclusively and closes it once the
// sequence ends, fails, or Close is called. It cannot be restarted.
//
// Iterate it like a bufio.Scanner:
//
//	for s.Next() {
//	    chunk := s.Chunk()
//	}
//	if err := s.Err(); err != nil {
//	    ...
//	}
type ChunkStream struct {
	body io.ReadCloser
	opts options
	buf  []byte

	chunk   []byte
	pending error // error observed alongside the last chunk, reported on the next pull
	err     error
	done    bool

	chunks int
	bytes  int64
}

// NewChunkStream wraps body in a ChunkStream.
func NewChunkStream(body io.ReadCloser, opts ...Option) *ChunkStream {
	o := newOptions(opts)
	return &ChunkStream{
		body: body,
		opts: o,
		buf:  make([]byte, o.chunkSize),
	}
}

// Next advances to the next chunk. It returns false when the stream has
// ended or failed; Err distinguishes the two. Once Next returns false it
// keeps returning false and no further reads are attempted.
func (s *ChunkStream) Next() bool {
	if s.done {
		return false
	}
	s.chunk = nil

	if s.pending != nil {
		s.finish(s.pending)
		return false
	}

	for empty := 0; ; empty++ {
		n, err := s.body.Read(s.buf)
		if n > 0 {
			// The caller owns the returned chunk, so it must not alias buf.
			s.chunk = append(make([]byte, 0, n), s.buf[:n]...)
			if s.opts.hook != nil {
				s.opts.hook(s.chunks, n)
			}
			s.chunks++
			s.bytes += int64(n)
			if err != nil {
				s.pending = err
			}
			return true
		}
		if err != nil {
			s.finish(err)
			return false
		}
		if empty >= maxEmptyReads {
			s.finish(io.ErrNoProgress)
			return false
		}
	}
}

// Chunk returns the chunk produced by the last successful Next. The slice
// is freshly allocated and owned by the caller.
func (s *ChunkStream) Chunk() []byte {
	return s.chunk
}

// Err returns the error that terminated the stream, or nil after a clean
// end of stream. Read failures are reported as KindTransport errors.
func (s *ChunkStream) Err() error {
	return s.err
}

// Close releases the underlying body. It is safe to call more than once
// and stops any further chunks from being produced.
func (s *ChunkStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	s.chunk = nil
	return s.body.Close()
}

// Chunks returns the number of chunks yielded so far.
func (s *ChunkStream) Chunks() int {
	return s.chunks
}

// Bytes returns the number of bytes yielded so far.
func (s *ChunkStream) Bytes() int64 {
	return s.bytes
}

func (s *ChunkStream) finish(err error) {
	s.done = true
	s.pending = nil
	if !errors.Is(err, io.EOF) {
		s.err = pkgerrors.New(pkgerrors.KindTransport, s.opts.operation, err).
			WithDetails(map[string]any{"chunks": s.chunks, "bytes": s.bytes})
	}
	_ = s.body.Close()
}

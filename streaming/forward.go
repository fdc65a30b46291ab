package streaming

import (
	"context"
	"io"

	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
)

// Result summarizes a completed or aborted Forward call.
type Result struct {
	// Chunks is the number of chunks fully written to the sink.
	Chunks int
	// Bytes is the number of bytes fully written to the sink.
	Bytes int64
}

// Forward drains body into w chunk by chunk, in receipt order. Each chunk is
// written completely before the next one is read, so the pipeline never
// reads ahead of the sink. The body is always closed on return.
//
// A failed or short write aborts immediately with a KindSink error; whatever
// was written before stays in w. A read failure or context cancellation
// aborts with a KindTransport error.
func Forward(ctx context.Context, w io.Writer, body io.ReadCloser, opts ...Option) (Result, error) {
	o := newOptions(opts)
	stream := NewChunkStream(body, opts...)
	defer stream.Close()

	var res Result
	for {
		if err := ctx.Err(); err != nil {
			return res, pkgerrors.New(pkgerrors.KindTransport, o.operation, err)
		}
		if !stream.Next() {
			break
		}

		chunk := stream.Chunk()
		n, err := w.Write(chunk)
		if err == nil && n < len(chunk) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return res, pkgerrors.New(pkgerrors.KindSink, o.operation, err).
				WithDetails(map[string]any{"chunk": res.Chunks, "written_bytes": res.Bytes})
		}
		res.Chunks++
		res.Bytes += int64(n)
	}

	return res, stream.Err()
}

// Package streaming turns a streamed HTTP response body into audio chunks.
//
// Two forms are provided:
//
//   - ChunkStream, a lazy single-pass sequence. Each Next performs exactly one
//     read on the body and yields what that read returned, without merging or
//     re-splitting. The sequence ends on end-of-body or on the first read
//     failure, and cannot be restarted.
//   - Forward, which writes every chunk to a caller-supplied io.Writer before
//     requesting the next one. A sink failure stops the pipeline at once; bytes
//     already written are left in place.
//
// Neither form buffers the whole payload, so arbitrarily long audio can be
// relayed with memory bounded by the chunk size.
package streaming

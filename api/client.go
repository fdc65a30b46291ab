package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/AltairaLabs/playht-go/credentials"
	"github.com/AltairaLabs/playht-go/logger"
	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
	"github.com/AltairaLabs/playht-go/pkg/httputil"
	"github.com/AltairaLabs/playht-go/streaming"
	"github.com/AltairaLabs/playht-go/telemetry"
	"github.com/AltairaLabs/playht-go/version"
)

const (
	// DefaultBaseURL is the play.ht v2 API root.
	DefaultBaseURL = "https://api.play.ht/api/v2"

	// RequestIDHeader carries a per-request UUID for log correlation.
	RequestIDHeader = "X-Request-ID"

	// ContentLocationHeader carries the progress URL of a newly created job.
	ContentLocationHeader = "Content-Location"

	// maxErrorBodySize bounds how much of a non-2xx body is read.
	maxErrorBodySize = 1 << 20

	opDo = "Do"
)

// Media types used by the API.
const (
	MIMEApplicationJSON = "application/json"
	MIMEEventStream     = "text/event-stream"
	MIMEAudioMPEG       = "audio/mpeg"
	MIMETextPlain       = "text/plain"
)

// Client is a play.ht API client. It is safe for concurrent use; its
// configuration is never modified after NewClient returns.
type Client struct {
	baseURL    string
	httpClient *http.Client
	credential credentials.Credential
	userAgent  string
	headers    http.Header
	chunkSize  int
	tracer     trace.Tracer
	observer   Observer
	limiter    *rate.Limiter
	sem        *semaphore.Weighted
}

// NewClient builds a Client. Credentials are resolved once, here: explicit
// options first, then the credential file, then PLAYHT_SECRET_KEY and
// PLAYHT_USER_ID. Missing credentials or an invalid base URL yield a
// KindConfiguration error.
func NewClient(opts ...Option) (*Client, error) {
	o := clientOptions{
		baseURL:   DefaultBaseURL,
		userAgent: version.UserAgent(),
		chunkSize: streaming.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	baseURL := strings.TrimRight(o.baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("invalid base URL %q", o.baseURL)
		}
		return nil, pkgerrors.New(pkgerrors.KindConfiguration, "NewClient", err)
	}

	cred := o.credential
	if cred == nil {
		kp, err := credentials.Resolve(o.resolver)
		if err != nil {
			return nil, err
		}
		cred = kp
	}
	if s, ok := cred.(interface{ Secrets() []string }); ok {
		for _, secret := range s.Secrets() {
			logger.RegisterSecret(secret)
		}
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: o.httpClient,
		credential: cred,
		userAgent:  o.userAgent,
		headers:    o.headers,
		chunkSize:  o.chunkSize,
		tracer:     telemetry.Tracer(o.tracerProvider),
		observer:   o.observer,
	}
	if c.httpClient == nil {
		c.httpClient = httputil.NewInstrumentedClient(httputil.NoTimeout, nil)
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if o.rateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.rateLimit), max(o.rateBurst, 1))
	}
	if o.maxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(o.maxConcurrent)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Part is one field of a multipart/form-data body.
type Part struct {
	Name string
	// FileName marks the part as a file upload when non-empty.
	FileName    string
	ContentType string
	Data        []byte
}

// Request describes a raw API call for Do.
type Request struct {
	Method string
	// Path is relative to the base URL. Absolute http(s) URLs are used as-is.
	Path   string
	Accept string
	// Body is JSON-encoded when non-nil. It is ignored when Parts is set.
	Body any
	// Parts builds a multipart/form-data body.
	Parts  []Part
	Header http.Header
	// Operation names the call in errors, logs, spans and metrics.
	Operation string
}

// Do sends a raw request with authentication applied. A non-2xx response is
// returned as a KindAPI error with its body consumed. On success the caller
// owns the response body and must close it.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	return c.send(ctx, req, true)
}

func (c *Client) send(ctx context.Context, r *Request, streamed bool) (*http.Response, error) {
	op := r.Operation
	if op == "" {
		op = opDo
	}

	requestID := uuid.NewString()
	ctx = logger.WithRequestID(logger.WithOperation(ctx, op), requestID)
	ctx, span := telemetry.StartOperation(ctx, c.tracer, op,
		attribute.String(telemetry.AttrRequestID, requestID))

	httpReq, err := c.newHTTPRequest(ctx, r, op, requestID)
	if err != nil {
		telemetry.EndOperation(span, err)
		return nil, err
	}

	if err := c.acquire(ctx); err != nil {
		err = pkgerrors.New(pkgerrors.KindTransport, op, err)
		telemetry.EndOperation(span, err)
		return nil, err
	}

	c.observer.RequestStarted(op)
	logger.APIRequest(ctx, httpReq.Method, httpReq.URL.String(), httpReq.Header)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		err = pkgerrors.New(pkgerrors.KindTransport, op, err)
		c.finishRequest(ctx, httpReq, op, 0, start, err)
		c.release()
		telemetry.EndOperation(span, err)
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := apiError(op, resp)
		c.finishRequest(ctx, httpReq, op, resp.StatusCode, start, err)
		c.release()
		telemetry.EndOperation(span, err)
		return nil, err
	}

	c.finishRequest(ctx, httpReq, op, resp.StatusCode, start, nil)
	span.SetAttributes(attribute.Int(telemetry.AttrStatusCode, resp.StatusCode))
	resp.Body = &trackedBody{
		body:      resp.Body,
		ctx:       ctx,
		client:    c,
		span:      span,
		operation: op,
		streamed:  streamed,
		start:     start,
	}
	return resp, nil
}

func (c *Client) finishRequest(ctx context.Context, req *http.Request, op string, status int, start time.Time, err error) {
	c.observer.RequestFinished(RequestInfo{
		Operation:  op,
		Method:     req.Method,
		StatusCode: status,
		Duration:   time.Since(start),
		Err:        err,
	})
	logger.APIResponse(ctx, req.Method, req.URL.String(), status, err)
}

func (c *Client) acquire(ctx context.Context) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("waiting for a request slot: %w", err)
		}
	}
	return nil
}

func (c *Client) release() {
	if c.sem != nil {
		c.sem.Release(1)
	}
}

func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) newHTTPRequest(ctx context.Context, r *Request, op, requestID string) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case len(r.Parts) > 0:
		buf, ct, err := encodeMultipart(r.Parts)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.KindConfiguration, op,
				fmt.Errorf("failed to build multipart body: %w", err))
		}
		body, contentType = buf, ct
	case r.Body != nil:
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.KindConfiguration, op,
				fmt.Errorf("failed to marshal request: %w", err))
		}
		body, contentType = bytes.NewReader(data), MIMEApplicationJSON
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolveURL(r.Path), body)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.KindConfiguration, op,
			fmt.Errorf("failed to create request: %w", err))
	}

	if err := c.credential.Apply(ctx, req); err != nil {
		return nil, pkgerrors.New(pkgerrors.KindConfiguration, op,
			fmt.Errorf("failed to apply credentials: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	accept := r.Accept
	if accept == "" {
		accept = MIMEApplicationJSON
	}
	req.Header.Set("Accept", accept)
	for k, v := range c.headers {
		req.Header[k] = v
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}
	return req, nil
}

func encodeMultipart(parts []Part) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		disposition := fmt.Sprintf(`form-data; name=%q`, p.Name)
		if p.FileName != "" {
			disposition += fmt.Sprintf(`; filename=%q`, p.FileName)
		}
		h.Set("Content-Disposition", disposition)
		if p.ContentType != "" {
			h.Set("Content-Type", p.ContentType)
		}

		w, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write(p.Data); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// doJSON sends r and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, r *Request, out any) error {
	resp, err := c.send(ctx, r, false)
	if err != nil {
		return err
	}
	body := resp.Body.(*trackedBody)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return body.err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		derr := pkgerrors.New(pkgerrors.KindDecode, r.Operation,
			fmt.Errorf("failed to unmarshal response: %w", err))
		body.fail(derr)
		return derr
	}
	return nil
}

// openStream sends r and returns its tracked body for incremental reading.
func (c *Client) openStream(ctx context.Context, r *Request) (*http.Response, *trackedBody, error) {
	resp, err := c.send(ctx, r, true)
	if err != nil {
		return nil, nil, err
	}
	return resp, resp.Body.(*trackedBody), nil
}

func (c *Client) chunkOptions(op string) []streaming.Option {
	return []streaming.Option{
		streaming.WithChunkSize(c.chunkSize),
		streaming.WithOperation(op),
		streaming.WithChunkHook(func(_, size int) {
			c.observer.ChunkReceived(op, size)
		}),
	}
}

// trackedBody wraps a successful response body. Closing it releases the
// request slot, ends the operation span, and reports stream totals.
// It must not be read from multiple goroutines.
type trackedBody struct {
	body      io.ReadCloser
	ctx       context.Context //nolint:containedctx // checked on Close to classify early termination
	client    *Client
	span      trace.Span
	operation string
	streamed  bool
	start     time.Time

	chunks int
	bytes  int64
	err    error
	eof    bool
	closed bool
}

func (b *trackedBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 {
		b.chunks++
		b.bytes += int64(n)
	}
	switch {
	case errors.Is(err, io.EOF):
		b.eof = true
	case err != nil:
		b.fail(pkgerrors.New(pkgerrors.KindTransport, b.operation, err))
	}
	return n, err
}

// fail records the first error that ended the operation.
func (b *trackedBody) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *trackedBody) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	cerr := b.body.Close()
	if b.err == nil && !b.eof && b.ctx.Err() != nil {
		b.err = pkgerrors.New(pkgerrors.KindTransport, b.operation, b.ctx.Err())
	}
	b.client.release()

	if b.streamed {
		b.client.observer.StreamFinished(StreamInfo{
			Operation: b.operation,
			Chunks:    b.chunks,
			Bytes:     b.bytes,
			Duration:  time.Since(b.start),
			Err:       b.err,
		})
		logger.StreamSummary(b.ctx, b.chunks, b.bytes, b.err)
	}
	telemetry.EndOperation(b.span, b.err,
		attribute.Int(telemetry.AttrChunks, b.chunks),
		attribute.Int64(telemetry.AttrBytes, b.bytes),
	)
	return cerr
}

// sinkWriter records sink failures on the tracked body before Forward
// closes it, so spans and observers see the real cause.
type sinkWriter struct {
	w    io.Writer
	body *trackedBody
}

func (s sinkWriter) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		s.body.fail(pkgerrors.New(pkgerrors.KindSink, s.body.operation, err))
	}
	return n, err
}

// forward drains an opened stream into w.
func (c *Client) forward(ctx context.Context, w io.Writer, body *trackedBody, op string) (streaming.Result, error) {
	return streaming.Forward(ctx, sinkWriter{w: w, body: body}, body, c.chunkOptions(op)...)
}

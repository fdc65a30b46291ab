package api

import (
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/AltairaLabs/playht-go/credentials"
)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL        string
	httpClient     *http.Client
	credential     credentials.Credential
	resolver       credentials.ResolverConfig
	userAgent      string
	headers        http.Header
	chunkSize      int
	tracerProvider trace.TracerProvider
	observer       Observer
	rateLimit      float64
	rateBurst      int
	maxConcurrent  int64
}

// WithBaseURL overrides the API base URL (default https://api.play.ht/api/v2).
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for every request.
// The default client has no timeout and an OpenTelemetry-instrumented transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithCredentials sets the secret key and user id explicitly.
// Either value may be empty to fall back to the credential file or environment.
func WithCredentials(secretKey, userID string) Option {
	return func(o *clientOptions) {
		o.resolver.SecretKey = secretKey
		o.resolver.UserID = userID
	}
}

// WithCredentialFile reads the key pair from a YAML file with secret_key and user_id entries.
func WithCredentialFile(path string) Option {
	return func(o *clientOptions) {
		o.resolver.CredentialFile = path
	}
}

// WithCredentialEnv overrides the environment variable names used for the key pair.
func WithCredentialEnv(secretKeyEnv, userIDEnv string) Option {
	return func(o *clientOptions) {
		o.resolver.SecretKeyEnv = secretKeyEnv
		o.resolver.UserIDEnv = userIDEnv
	}
}

// WithCredential uses cred as-is, skipping resolution entirely.
func WithCredential(cred credentials.Credential) Option {
	return func(o *clientOptions) {
		o.credential = cred
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(name, value string) Option {
	return func(o *clientOptions) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Set(name, value)
	}
}

// WithChunkSize sets the read buffer size for audio streams.
func WithChunkSize(size int) Option {
	return func(o *clientOptions) {
		o.chunkSize = size
	}
}

// WithTracerProvider sets the provider for operation spans. The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *clientOptions) {
		o.tracerProvider = tp
	}
}

// WithObserver registers an Observer for request and stream notifications.
func WithObserver(obs Observer) Option {
	return func(o *clientOptions) {
		o.observer = obs
	}
}

// WithRateLimit paces outgoing requests to rps per second with the given burst.
// Requests wait for a token; they are never rejected or retried.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *clientOptions) {
		o.rateLimit = rps
		o.rateBurst = burst
	}
}

// WithMaxConcurrentRequests bounds the number of in-flight requests.
// A streamed response holds its slot until its body is closed.
func WithMaxConcurrentRequests(n int) Option {
	return func(o *clientOptions) {
		o.maxConcurrent = int64(n)
	}
}

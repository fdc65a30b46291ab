// Package httputil provides shared HTTP client construction for playht-go.
// It centralizes timeout defaults and transport instrumentation so that the
// API client, the CLI and tests build clients the same way.
package httputil

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NoTimeout disables the client-wide timeout. Audio streams are unbounded in
// duration, so the library never imposes a deadline of its own; callers bound
// latency with a context deadline instead.
const NoTimeout time.Duration = 0

// NewHTTPClient returns an *http.Client configured with the given timeout.
// Pass NoTimeout or a custom duration.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// NewInstrumentedClient returns an *http.Client whose transport emits an
// OpenTelemetry client span per request via otelhttp. A nil base uses
// http.DefaultTransport.
func NewInstrumentedClient(timeout time.Duration, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(base,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "playht " + r.Method + " " + r.URL.Path
			}),
		),
	}
}

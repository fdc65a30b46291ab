package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AltairaLabs/playht-go/api"
	"github.com/AltairaLabs/playht-go/credentials"
	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
	"github.com/AltairaLabs/playht-go/playhttest"
)

func newTestClient(t *testing.T, srv *playhttest.Server, opts ...api.Option) *api.Client {
	t.Helper()
	opts = append([]api.Option{
		api.WithBaseURL(srv.URL),
		api.WithCredentials(srv.SecretKey, srv.UserID),
	}, opts...)
	client, err := api.NewClient(opts...)
	require.NoError(t, err)
	return client
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	t.Setenv(credentials.EnvSecretKey, "")
	t.Setenv(credentials.EnvUserID, "")
}

func TestNewClient_MissingCredentials(t *testing.T) {
	clearCredentialEnv(t)

	_, err := api.NewClient()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindConfiguration))
	assert.ErrorIs(t, err, pkgerrors.ErrConfiguration)
}

func TestNewClient_FromEnvironment(t *testing.T) {
	t.Setenv(credentials.EnvSecretKey, "env-secret")
	t.Setenv(credentials.EnvUserID, "env-user")

	client, err := api.NewClient()
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, client.BaseURL())
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := api.NewClient(api.WithBaseURL("not a url"), api.WithCredentials("s", "u"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindConfiguration))
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client, err := api.NewClient(api.WithBaseURL("https://example.com/api/v2/"), api.WithCredentials("s", "u"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/v2", client.BaseURL())
}

func TestClient_SendsHeaders(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv,
		api.WithUserAgent("playht-test/1.0"),
		api.WithHeader("X-Custom", "yes"),
	)
	_, err := client.ListVoices(context.Background())
	require.NoError(t, err)

	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, srv.SecretKey, req.Header.Get(credentials.AuthorizationHeader))
	assert.Equal(t, srv.UserID, req.Header.Get(credentials.UserIDHeader))
	assert.Equal(t, "playht-test/1.0", req.Header.Get("User-Agent"))
	assert.Equal(t, api.MIMEApplicationJSON, req.Header.Get("Accept"))
	assert.Equal(t, "yes", req.Header.Get("X-Custom"))

	_, err = uuid.Parse(req.Header.Get(api.RequestIDHeader))
	assert.NoError(t, err, "request id should be a UUID")
}

func TestClient_WithCredentialEnv(t *testing.T) {
	clearCredentialEnv(t)
	srv := playhttest.NewServer()
	defer srv.Close()
	t.Setenv("ACME_PLAYHT_KEY", srv.SecretKey)
	t.Setenv("ACME_PLAYHT_USER", srv.UserID)

	client, err := api.NewClient(api.WithBaseURL(srv.URL), api.WithCredentialEnv("ACME_PLAYHT_KEY", "ACME_PLAYHT_USER"))
	require.NoError(t, err)

	_, err = client.ListVoices(context.Background())
	assert.NoError(t, err)
}

func TestClient_WithCredential(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	client, err := api.NewClient(api.WithBaseURL(srv.URL), api.WithCredential(srv.Credential()))
	require.NoError(t, err)

	_, err = client.ListVoices(context.Background())
	assert.NoError(t, err)
}

func TestClient_UnauthorizedIsAPIError(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	client, err := api.NewClient(api.WithBaseURL(srv.URL), api.WithCredentials("wrong", "creds"))
	require.NoError(t, err)

	voices, err := client.ListVoices(context.Background())
	require.Error(t, err)
	assert.Nil(t, voices)

	var apiErr *pkgerrors.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, pkgerrors.KindAPI, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Equal(t, "ListVoices", apiErr.Operation)
	assert.False(t, pkgerrors.IsRetryable(err))
}

func TestClient_ErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error_message", http.StatusBadRequest, `{"error_message":"bad voice"}`, "bad voice"},
		{"message", http.StatusForbidden, `{"message":"no credits"}`, "no credits"},
		{"error string", http.StatusNotFound, `{"error":"missing"}`, "missing"},
		{"nested error", http.StatusConflict, `{"error":{"message":"nested"}}`, "nested"},
		{"precedence", http.StatusBadRequest, `{"message":"second","error_message":"first"}`, "first"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway"},
		{"empty", http.StatusInternalServerError, ``, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := playhttest.NewServer()
			defer srv.Close()
			srv.FailNext(tt.status, tt.body)

			_, err := newTestClient(t, srv).ListVoices(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.status, pkgerrors.StatusCode(err))

			var apiErr *pkgerrors.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestClient_ServerErrorIsRetryable(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()
	srv.FailNext(http.StatusTooManyRequests, `{"error_message":"slow down"}`)

	_, err := newTestClient(t, srv).ListVoices(context.Background())
	assert.True(t, pkgerrors.IsRetryable(err))
}

func TestClient_TransportError(t *testing.T) {
	srv := playhttest.NewServer()
	client := newTestClient(t, srv)
	srv.Close()

	_, err := client.ListVoices(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindTransport))
	assert.True(t, pkgerrors.IsRetryable(err))
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "broken"`))
	}))
	defer server.Close()

	client, err := api.NewClient(api.WithBaseURL(server.URL), api.WithCredentials("s", "u"))
	require.NoError(t, err)

	_, err = client.ListVoices(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindDecode))
}

func TestClient_Do(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	resp, err := newTestClient(t, srv).Do(context.Background(), &api.Request{
		Method: http.MethodGet,
		Path:   "voices",
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ := srv.LastRequest()
	assert.Equal(t, "/voices", req.Path)
}

func TestClient_DoAbsoluteURL(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	client, err := api.NewClient(api.WithBaseURL("https://unused.example.com"),
		api.WithCredentials(srv.SecretKey, srv.UserID))
	require.NoError(t, err)

	resp, err := client.Do(context.Background(), &api.Request{Path: srv.URL + "/voices"})
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv).ListVoices(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindTransport))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_MaxConcurrentRequests(t *testing.T) {
	var inFlight, peak int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := api.NewClient(
		api.WithBaseURL(server.URL),
		api.WithCredentials("s", "u"),
		api.WithMaxConcurrentRequests(1),
	)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ListVoices(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestClient_RateLimit(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv, api.WithRateLimit(20, 1))

	start := time.Now()
	for range 3 {
		_, err := client.ListVoices(context.Background())
		require.NoError(t, err)
	}
	// Burst 1 at 20/s: the 2nd and 3rd calls each wait ~50ms.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_Spans(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	client := newTestClient(t, srv, api.WithTracerProvider(tp))
	_, err := client.ListVoices(context.Background())
	require.NoError(t, err)

	client2, err := api.NewClient(api.WithBaseURL(srv.URL), api.WithCredentials("bad", "creds"),
		api.WithTracerProvider(tp))
	require.NoError(t, err)
	_, _ = client2.ListVoices(context.Background())

	// Each operation span has an otelhttp child span for the HTTP exchange.
	var ops, exchanges []sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		if strings.HasPrefix(s.Name(), "playht.") {
			ops = append(ops, s)
		} else {
			exchanges = append(exchanges, s)
		}
	}
	require.Len(t, ops, 2)
	assert.Equal(t, "playht.ListVoices", ops[0].Name())
	assert.Equal(t, "Ok", ops[0].Status().Code.String())
	assert.Equal(t, "playht.ListVoices", ops[1].Name())
	assert.Equal(t, "Error", ops[1].Status().Code.String())

	require.Len(t, exchanges, 2)
	for i, ex := range exchanges {
		assert.Equal(t, "playht GET /voices", ex.Name())
		assert.Equal(t, ops[i].SpanContext().SpanID(), ex.Parent().SpanID(), "exchange %d parent", i)
	}
}

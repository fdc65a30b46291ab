package prometheus

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/AltairaLabs/playht-go/api"
	"github.com/AltairaLabs/playht-go/playhttest"
)

func resetMetrics() {
	requestsInFlight.Reset()
	requestDuration.Reset()
	requestsTotal.Reset()
	streamChunkBytes.Reset()
	streamBytesTotal.Reset()
	streamDuration.Reset()
	streamsTotal.Reset()
	progressEventsTotal.Reset()
}

func TestRecordRequest(t *testing.T) {
	resetMetrics()

	RecordRequestStart("ListVoices")
	RecordRequestStart("ListVoices")
	if got := testutil.ToFloat64(requestsInFlight.WithLabelValues("ListVoices")); got != 2 {
		t.Errorf("Expected 2 in-flight requests, got %f", got)
	}

	RecordRequestEnd("ListVoices", "200", 0.3)
	RecordRequestEnd("ListVoices", "error", 0.1)

	if got := testutil.ToFloat64(requestsInFlight.WithLabelValues("ListVoices")); got != 0 {
		t.Errorf("Expected 0 in-flight requests, got %f", got)
	}
	if got := testutil.ToFloat64(requestsTotal.WithLabelValues("ListVoices", "200")); got != 1 {
		t.Errorf("Expected 1 successful request, got %f", got)
	}
	if got := testutil.ToFloat64(requestsTotal.WithLabelValues("ListVoices", "error")); got != 1 {
		t.Errorf("Expected 1 failed request, got %f", got)
	}
	if count := testutil.CollectAndCount(requestDuration); count != 1 {
		t.Errorf("Expected 1 duration series, got %d", count)
	}
}

func TestRecordStream(t *testing.T) {
	resetMetrics()

	RecordChunk("StreamAudio", 512)
	RecordChunk("StreamAudio", 1024)
	RecordStream("StreamAudio", statusSuccess, 1536, 1.2)
	RecordStream("StreamAudio", statusError, 0, 0.4)

	if got := testutil.ToFloat64(streamBytesTotal.WithLabelValues("StreamAudio")); got != 1536 {
		t.Errorf("Expected 1536 bytes, got %f", got)
	}
	if got := testutil.ToFloat64(streamsTotal.WithLabelValues("StreamAudio", statusSuccess)); got != 1 {
		t.Errorf("Expected 1 successful stream, got %f", got)
	}
	if got := testutil.ToFloat64(streamsTotal.WithLabelValues("StreamAudio", statusError)); got != 1 {
		t.Errorf("Expected 1 failed stream, got %f", got)
	}
	if count := testutil.CollectAndCount(streamChunkBytes); count != 1 {
		t.Errorf("Expected 1 chunk size series, got %d", count)
	}
}

func TestRecordProgressEvent(t *testing.T) {
	resetMetrics()

	RecordProgressEvent(api.ProgressEventGenerating, statusSuccess)
	RecordProgressEvent(api.ProgressEventGenerating, statusError)
	RecordProgressEvent("", statusSuccess)

	if got := testutil.ToFloat64(progressEventsTotal.WithLabelValues("generating", statusSuccess)); got != 1 {
		t.Errorf("Expected 1 generating event, got %f", got)
	}
	if got := testutil.ToFloat64(progressEventsTotal.WithLabelValues("generating", statusError)); got != 1 {
		t.Errorf("Expected 1 undecodable event, got %f", got)
	}
	if got := testutil.ToFloat64(progressEventsTotal.WithLabelValues("message", statusSuccess)); got != 1 {
		t.Errorf("Expected unnamed events under \"message\", got %f", got)
	}
}

func TestObserver(t *testing.T) {
	resetMetrics()
	obs := NewObserver()

	obs.RequestStarted("GetTTSJob")
	obs.RequestFinished(api.RequestInfo{Operation: "GetTTSJob", StatusCode: 404, Duration: 50 * time.Millisecond})
	obs.RequestStarted("GetTTSJob")
	obs.RequestFinished(api.RequestInfo{Operation: "GetTTSJob", Err: errors.New("refused")})
	obs.ChunkReceived("TTSJobAudio", 300)
	obs.StreamFinished(api.StreamInfo{Operation: "TTSJobAudio", Bytes: 300, Duration: time.Second})
	obs.ProgressEventReceived(api.ProgressEventCompleted, nil)

	if got := testutil.ToFloat64(requestsTotal.WithLabelValues("GetTTSJob", "404")); got != 1 {
		t.Errorf("Expected 1 request with status 404, got %f", got)
	}
	if got := testutil.ToFloat64(requestsTotal.WithLabelValues("GetTTSJob", statusError)); got != 1 {
		t.Errorf("Expected 1 request without response, got %f", got)
	}
	if got := testutil.ToFloat64(streamsTotal.WithLabelValues("TTSJobAudio", statusSuccess)); got != 1 {
		t.Errorf("Expected 1 stream, got %f", got)
	}
	if got := testutil.ToFloat64(progressEventsTotal.WithLabelValues("completed", statusSuccess)); got != 1 {
		t.Errorf("Expected 1 completed event, got %f", got)
	}
}

func TestObserverWithClient(t *testing.T) {
	resetMetrics()

	srv := playhttest.NewServer()
	defer srv.Close()

	client, err := api.NewClient(
		api.WithBaseURL(srv.URL),
		api.WithCredentials(srv.SecretKey, srv.UserID),
		api.WithObserver(NewObserver()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.ListVoices(context.Background()); err != nil {
		t.Fatalf("ListVoices() error = %v", err)
	}
	if _, err := client.StreamAudio(context.Background(), io.Discard,
		api.DefaultTTSStreamRequest("hello", "v1")); err != nil {
		t.Fatalf("StreamAudio() error = %v", err)
	}

	if got := testutil.ToFloat64(requestsTotal.WithLabelValues("ListVoices", "200")); got != 1 {
		t.Errorf("Expected 1 ListVoices request, got %f", got)
	}
	if got := testutil.ToFloat64(streamBytesTotal.WithLabelValues("StreamAudio")); got != float64(len(srv.AudioBytes())) {
		t.Errorf("Expected %d streamed bytes, got %f", len(srv.AudioBytes()), got)
	}
	if got := testutil.ToFloat64(requestsInFlight.WithLabelValues("StreamAudio")); got != 0 {
		t.Errorf("Expected no requests in flight, got %f", got)
	}
}

func TestNewExporter(t *testing.T) {
	exporter := NewExporter(":0")
	if exporter.Registry() == nil {
		t.Fatal("Expected non-nil registry")
	}
	if exporter.Addr() != ":0" {
		t.Errorf("Expected configured address before start, got %q", exporter.Addr())
	}
}

func TestExporterHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "Test counter",
	})
	reg.MustRegister(counter)
	counter.Inc()

	handler := NewExporterWithRegistry(":0", reg).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_counter") {
		t.Error("Expected response to contain test_counter metric")
	}
}

func TestExporterStartShutdown(t *testing.T) {
	resetMetrics()
	RecordRequestStart("ListVoices")
	RecordRequestEnd("ListVoices", "200", 0.1)

	exporter := NewExporter("127.0.0.1:0")
	if err := exporter.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// A second Start is a no-op.
	if err := exporter.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}

	resp, err := http.Get("http://" + exporter.Addr() + MetricsPath)
	if err != nil {
		t.Fatalf("GET metrics error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(body), `playht_requests_total{operation="ListVoices",status="200"} 1`) {
		t.Errorf("Expected requests_total in output, got:\n%s", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := exporter.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := exporter.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestExporterServe(t *testing.T) {
	exporter := NewExporterWithRegistry("127.0.0.1:0", prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- exporter.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for exporter.Addr() == "127.0.0.1:0" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Get("http://" + exporter.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET health error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestExporterStartBadAddress(t *testing.T) {
	exporter := NewExporterWithRegistry("not-an-address", prometheus.NewRegistry())
	if err := exporter.Start(); err == nil {
		t.Error("Expected error for invalid address")
	}
}

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
	"github.com/AltairaLabs/playht-go/pkg/testutil"
)

func newTestProgressStream(chunks []string, readErr error) (*ProgressStream, *testutil.ChunkedReader) {
	reader := &testutil.ChunkedReader{Err: readErr}
	for _, c := range chunks {
		reader.Chunks = append(reader.Chunks, []byte(c))
	}

	c := &Client{observer: nopObserver{}}
	_, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "test")
	body := &trackedBody{
		body:      reader,
		ctx:       context.Background(),
		client:    c,
		span:      span,
		operation: "TTSJobProgress",
		streamed:  true,
		start:     time.Now(),
	}
	return newProgressStream(body, c.observer, "TTSJobProgress", ""), reader
}

func collect(ps *ProgressStream) (events []ProgressEvent, decodeErrs int, final error) {
	for {
		ev, err := ps.Next()
		switch {
		case err == nil:
			events = append(events, ev)
		case pkgerrors.IsKind(err, pkgerrors.KindDecode):
			decodeErrs++
		default:
			return events, decodeErrs, err
		}
	}
}

func TestProgressStream_FramesSplitAcrossReads(t *testing.T) {
	ps, reader := newTestProgressStream([]string{
		"event: gener", "ating\ndata: {\"id\":\"j1\",\"pro", "gress\":0.25}\n",
		"\nevent: completed\ndata: {\"id\":\"j1\",\"url\":\"https://x/a.mp3\"}\n\n",
	}, nil)

	events, decodeErrs, final := collect(ps)
	if !errors.Is(final, io.EOF) {
		t.Fatalf("final error = %v, want io.EOF", final)
	}
	if decodeErrs != 0 {
		t.Errorf("decode errors = %d, want 0", decodeErrs)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Event != ProgressEventGenerating || events[0].Progress == nil || *events[0].Progress != 0.25 {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].URL != "https://x/a.mp3" {
		t.Errorf("second event URL = %q", events[1].URL)
	}
	if !reader.Closed {
		t.Error("body not closed at end of stream")
	}
}

func TestProgressStream_DecodesAllFields(t *testing.T) {
	ps, _ := newTestProgressStream([]string{
		"event: generating\ndata: {\"id\":\"j1\",\"stage\":\"synthesizing\",\"progress\":0.4,\"stage_progress\":0.8}\n\n",
		"event: completed\ndata: {\"id\":\"j1\",\"progress\":1,\"url\":\"https://x/a.mp3\",\"duration\":2.5,\"size\":40960}\n\n",
	}, nil)

	events, _, final := collect(ps)
	if !errors.Is(final, io.EOF) {
		t.Fatalf("final error = %v, want io.EOF", final)
	}
	want := []ProgressEvent{
		{
			Event:         ProgressEventGenerating,
			ID:            "j1",
			Stage:         "synthesizing",
			Progress:      testutil.Ptr(0.4),
			StageProgress: testutil.Ptr(0.8),
		},
		{
			Event:    ProgressEventCompleted,
			ID:       "j1",
			Progress: testutil.Ptr(1.0),
			URL:      "https://x/a.mp3",
			Duration: testutil.Ptr(2.5),
			Size:     testutil.Ptr(int64(40960)),
		},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %+v, want %+v", events, want)
	}
}

func TestProgressStream_UnknownEventsSkipped(t *testing.T) {
	ps, _ := newTestProgressStream([]string{
		"event: ping\ndata: {}\n\n",
		"data: {\"id\":\"no-event\"}\n\n",
		"event: error\ndata: {\"error\":\"boom\"}\n\n",
	}, nil)

	events, _, final := collect(ps)
	if !errors.Is(final, io.EOF) {
		t.Fatalf("final error = %v, want io.EOF", final)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Event != "" || events[0].ID != "no-event" {
		t.Errorf("frame without event line = %+v", events[0])
	}
	if events[1].Event != ProgressEventError || events[1].Error != "boom" {
		t.Errorf("error frame = %+v", events[1])
	}
}

func TestProgressStream_IDFallsBackToFrameID(t *testing.T) {
	ps, _ := newTestProgressStream([]string{"id: 7\nevent: generating\ndata: {\"progress\":0.1}\n\n"}, nil)

	ev, err := ps.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ev.ID != "7" {
		t.Errorf("ID = %q, want %q", ev.ID, "7")
	}
}

func TestProgressStream_MalformedFrameIsNotTerminal(t *testing.T) {
	ps, _ := newTestProgressStream([]string{
		"event: generating\ndata: not-json\n\n",
		"event: completed\ndata: {\"id\":\"j\"}\n\n",
	}, nil)

	_, err := ps.Next()
	var perr *pkgerrors.Error
	if !errors.As(err, &perr) || perr.Kind != pkgerrors.KindDecode {
		t.Fatalf("first Next() error = %v, want decode error", err)
	}
	if perr.Details["data"] != "not-json" {
		t.Errorf("details = %v", perr.Details)
	}

	ev, err := ps.Next()
	if err != nil || ev.Event != ProgressEventCompleted {
		t.Fatalf("second Next() = %+v, %v", ev, err)
	}
}

func TestProgressStream_TransportErrorTerminates(t *testing.T) {
	readErr := errors.New("connection reset")
	ps, reader := newTestProgressStream([]string{"event: generating\ndata: {\"id\":\"j\"}\n\n"}, readErr)

	if _, err := ps.Next(); err != nil {
		t.Fatalf("first Next() error = %v", err)
	}

	_, err := ps.Next()
	if !pkgerrors.IsKind(err, pkgerrors.KindTransport) {
		t.Fatalf("Next() error = %v, want transport error", err)
	}
	if !errors.Is(err, readErr) {
		t.Errorf("error does not wrap the read failure: %v", err)
	}

	reads := reader.Reads
	for range 3 {
		if _, err := ps.Next(); !errors.Is(err, io.EOF) {
			t.Errorf("Next() after failure = %v, want io.EOF", err)
		}
	}
	if reader.Reads != reads {
		t.Errorf("reads after failure = %d, want %d", reader.Reads, reads)
	}
}

func TestProgressStream_CloseStopsIteration(t *testing.T) {
	ps, reader := newTestProgressStream([]string{"event: generating\ndata: {}\n\n"}, nil)

	if err := ps.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := ps.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, err := ps.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after Close = %v, want io.EOF", err)
	}
	if reader.Reads != 0 {
		t.Errorf("reads = %d, want 0", reader.Reads)
	}
}

func TestProgressStream_RandomFrameCount(t *testing.T) {
	for range 10 {
		n := rand.IntN(40)
		bad := 0
		var b strings.Builder
		for i := range n {
			if rand.IntN(4) == 0 {
				bad++
				b.WriteString("event: generating\ndata: {oops\n\n")
				continue
			}
			fmt.Fprintf(&b, "event: generating\ndata: {\"id\":\"j\",\"progress\":%d}\n\n", i)
		}

		// Split the stream at random byte offsets.
		raw := b.String()
		var chunks []string
		for len(raw) > 0 {
			k := 1 + rand.IntN(min(len(raw), 64))
			chunks = append(chunks, raw[:k])
			raw = raw[k:]
		}

		ps, _ := newTestProgressStream(chunks, nil)
		events, decodeErrs, final := collect(ps)
		if !errors.Is(final, io.EOF) {
			t.Fatalf("final error = %v", final)
		}
		if len(events) != n-bad || decodeErrs != bad {
			t.Fatalf("events = %d, decode errors = %d; want %d and %d", len(events), decodeErrs, n-bad, bad)
		}
	}
}

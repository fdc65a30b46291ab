package api_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AltairaLabs/playht-go/api"
	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
	"github.com/AltairaLabs/playht-go/playhttest"
)

func minimalJob(text, voice string) api.TTSJobRequest {
	return api.TTSJobRequest{Text: api.Some(text), Voice: api.Some(voice)}
}

func drainProgress(t *testing.T, ps *api.ProgressStream) []api.ProgressEvent {
	t.Helper()
	defer ps.Close()

	var events []api.ProgressEvent
	for {
		ev, err := ps.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestCreateTTSJob(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	job, err := newTestClient(t, srv).CreateTTSJob(context.Background(), minimalJob("hello", "v1"))
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, api.JobStatusQueued, job.Status)
	assert.False(t, job.Status.Done())

	text, _ := job.Input.Text.Get()
	assert.Equal(t, "hello", text)

	req, _ := srv.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, api.TTSJobPath, req.Path)
	assert.JSONEq(t, `{"text":"hello","voice":"v1"}`, string(req.Body))
}

func TestCreateTTSJob_Defaults(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	_, err := newTestClient(t, srv).CreateTTSJob(context.Background(), api.DefaultTTSJobRequest("hi", "v1"))
	require.NoError(t, err)

	req, _ := srv.LastRequest()
	assert.JSONEq(t, `{
		"text": "hi",
		"voice": "v1",
		"quality": "draft",
		"output_format": "mp3",
		"voice_engine": "PlayHT2.0",
		"emotion": "female_happy"
	}`, string(req.Body))
}

func TestCreateTTSJob_ServerRejects(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	_, err := newTestClient(t, srv).CreateTTSJob(context.Background(), api.TTSJobRequest{Voice: api.Some("v1")})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, pkgerrors.StatusCode(err))
}

func TestGetTTSJob(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	created, err := client.CreateTTSJob(context.Background(), minimalJob("hello", "v1"))
	require.NoError(t, err)

	got, err := client.GetTTSJob(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Input, got.Input)
	assert.Nil(t, got.Output)

	require.True(t, srv.CompleteJob(created.ID))
	got, err = client.GetTTSJob(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, api.JobStatusSucceeded, got.Status)
	assert.True(t, got.Status.Done())
	require.NotNil(t, got.Output)
	assert.Equal(t, int64(len(srv.AudioBytes())), got.Output.Size)
}

func TestGetTTSJob_Unknown(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	_, err := newTestClient(t, srv).GetTTSJob(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindAPI))
	assert.Equal(t, http.StatusNotFound, pkgerrors.StatusCode(err))
}

func TestJobOperations_EmptyID(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv)
	ctx := context.Background()

	_, err := client.GetTTSJob(ctx, "")
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindConfiguration))
	_, err = client.TTSJobProgress(ctx, "")
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindConfiguration))
	_, err = client.TTSJobAudio(ctx, "")
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindConfiguration))
	_, err = client.StreamTTSJobAudio(ctx, io.Discard, "")
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindConfiguration))
	_, err = client.CopyTTSJobProgress(ctx, io.Discard, "")
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindConfiguration))

	assert.Empty(t, srv.Requests())
}

func TestTTSJobProgress(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	job, err := client.CreateTTSJob(context.Background(), minimalJob("hello", "v1"))
	require.NoError(t, err)

	ps, err := client.TTSJobProgress(context.Background(), job.ID)
	require.NoError(t, err)
	events := drainProgress(t, ps)

	require.Len(t, events, 2)
	assert.Equal(t, api.ProgressEventGenerating, events[0].Event)
	assert.Equal(t, job.ID, events[0].ID)
	require.NotNil(t, events[0].Progress)
	assert.InDelta(t, 0.5, *events[0].Progress, 1e-9)

	assert.Equal(t, api.ProgressEventCompleted, events[1].Event)
	assert.NotEmpty(t, events[1].URL)
	require.NotNil(t, events[1].Size)
	assert.Equal(t, int64(len(srv.AudioBytes())), *events[1].Size)

	req, _ := srv.LastRequest()
	assert.Equal(t, api.MIMEEventStream, req.Header.Get("Accept"))

	// Once ended, the stream keeps reporting EOF.
	_, err = ps.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTTSJobProgress_SkipsMalformedFrames(t *testing.T) {
	srv := playhttest.NewServer(playhttest.WithProgress(func(id string) string {
		return "event: generating\ndata: {not json}\n\n" +
			"event: heartbeat\ndata: {}\n\n" +
			fmt.Sprintf("event: completed\ndata: {\"id\":%q,\"progress\":1}\n\n", id)
	}))
	defer srv.Close()
	client := newTestClient(t, srv)

	job, err := client.CreateTTSJob(context.Background(), minimalJob("hello", "v1"))
	require.NoError(t, err)

	ps, err := client.TTSJobProgress(context.Background(), job.ID)
	require.NoError(t, err)
	defer ps.Close()

	_, err = ps.Next()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsKind(err, pkgerrors.KindDecode))

	ev, err := ps.Next()
	require.NoError(t, err, "a bad frame must not end the stream")
	assert.Equal(t, api.ProgressEventCompleted, ev.Event)
	assert.Equal(t, job.ID, ev.ID)

	_, err = ps.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCreateTTSJobWithProgress(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	ps, err := newTestClient(t, srv).CreateTTSJobWithProgress(context.Background(), minimalJob("hello", "v1"))
	require.NoError(t, err)
	location := ps.Location()
	events := drainProgress(t, ps)

	require.NotEmpty(t, events)
	id := events[0].ID
	assert.Equal(t, srv.URL+"/tts/"+id, location)

	job, ok := srv.Job(id)
	require.True(t, ok)
	assert.Equal(t, api.JobStatusSucceeded, job.Status)
}

func TestCopyTTSJobProgress(t *testing.T) {
	raw := "event: generating\ndata: {\"progress\":0.1}\n\nevent: completed\ndata: {\"progress\":1}\n\n"
	srv := playhttest.NewServer(playhttest.WithProgress(func(string) string { return raw }))
	defer srv.Close()
	client := newTestClient(t, srv)

	job, err := client.CreateTTSJob(context.Background(), minimalJob("hello", "v1"))
	require.NoError(t, err)

	var buf bytes.Buffer
	result, err := client.CopyTTSJobProgress(context.Background(), &buf, job.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, buf.String())
	assert.Equal(t, int64(len(raw)), result.Bytes)
}

func TestTTSJobAudio(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	job, err := client.CreateTTSJob(context.Background(), minimalJob("hello", "v1"))
	require.NoError(t, err)

	stream, err := client.TTSJobAudio(context.Background(), job.ID)
	require.NoError(t, err)
	defer stream.Close()

	var got []byte
	for stream.Next() {
		got = append(got, stream.Chunk()...)
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, srv.AudioBytes(), got)

	req, _ := srv.LastRequest()
	assert.Equal(t, api.MIMEAudioMPEG, req.Header.Get("Accept"))
}

func TestStreamTTSJobAudio(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	job, err := client.CreateTTSJob(context.Background(), minimalJob("hello", "v1"))
	require.NoError(t, err)

	var buf bytes.Buffer
	result, err := client.StreamTTSJobAudio(context.Background(), &buf, job.ID)
	require.NoError(t, err)
	assert.Equal(t, srv.AudioBytes(), buf.Bytes())
	assert.Equal(t, int64(buf.Len()), result.Bytes)
	assert.Positive(t, result.Chunks)
}

func TestStreamTTSJobAudio_UnknownJob(t *testing.T) {
	srv := playhttest.NewServer()
	defer srv.Close()

	var buf strings.Builder
	_, err := newTestClient(t, srv).StreamTTSJobAudio(context.Background(), &buf, "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, pkgerrors.StatusCode(err))
	assert.Zero(t, buf.Len())
}

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/AltairaLabs/playht-go/logger"
	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
	"github.com/AltairaLabs/playht-go/streaming"
)

// TTSJobPath is the endpoint for creating and fetching TTS jobs.
const TTSJobPath = "/tts"

// TTSJobRequest describes an asynchronous synthesis job. Unset fields are
// omitted from the payload and left to server defaults.
type TTSJobRequest struct {
	Text          Optional[string]       `json:"text,omitzero"`
	Voice         Optional[string]       `json:"voice,omitzero"`
	Quality       Optional[Quality]      `json:"quality,omitzero"`
	OutputFormat  Optional[OutputFormat] `json:"output_format,omitzero"`
	VoiceEngine   Optional[VoiceEngine]  `json:"voice_engine,omitzero"`
	Emotion       Optional[Emotion]      `json:"emotion,omitzero"`
	Speed         Optional[float64]      `json:"speed,omitzero"`
	Temperature   Optional[float64]      `json:"temperature,omitzero"`
	SampleRate    Optional[int]          `json:"sample_rate,omitzero"`
	Seed          Optional[int]          `json:"seed,omitzero"`
	VoiceGuidance Optional[float64]      `json:"voice_guidance,omitzero"`
	StyleGuidance Optional[float64]      `json:"style_guidance,omitzero"`
}

// DefaultTTSJobRequest returns a request for text in voice with the default
// quality, output format, engine and emotion filled in.
func DefaultTTSJobRequest(text, voice string) TTSJobRequest {
	return TTSJobRequest{
		Text:         Some(text),
		Voice:        Some(voice),
		Quality:      Some(DefaultQuality),
		OutputFormat: Some(DefaultOutputFormat),
		VoiceEngine:  Some(DefaultVoiceEngine),
		Emotion:      Some(DefaultEmotion),
	}
}

// JobStatus is the server-reported state of a TTS job.
type JobStatus string

// Known job states. The server may report others; they are passed through unchanged.
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Done reports whether the job reached a final state.
func (s JobStatus) Done() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// JobOutput locates the audio of a finished job.
type JobOutput struct {
	Duration float64 `json:"duration"`
	Size     int64   `json:"size"`
	URL      string  `json:"url"`
}

// Link is a hypermedia link attached to a job.
type Link struct {
	ContentType string `json:"contentType,omitempty"`
	Description string `json:"description,omitempty"`
	Href        string `json:"href,omitempty"`
	Method      string `json:"method,omitempty"`
	Rel         string `json:"rel,omitempty"`
}

// TTSJob is a snapshot of a job as last reported by the server.
type TTSJob struct {
	ID      string        `json:"id"`
	Created string        `json:"created,omitempty"`
	Input   TTSJobRequest `json:"input"`
	Output  *JobOutput    `json:"output,omitempty"`
	Status  JobStatus     `json:"status,omitempty"`
	Links   []Link        `json:"_links,omitempty"`
}

func jobPath(op, id string) (string, error) {
	if id == "" {
		return "", pkgerrors.New(pkgerrors.KindConfiguration, op, errors.New("job id is required"))
	}
	return TTSJobPath + "/" + url.PathEscape(id), nil
}

// CreateTTSJob submits a job. The returned job is normally queued.
func (c *Client) CreateTTSJob(ctx context.Context, req TTSJobRequest) (*TTSJob, error) {
	var job TTSJob
	err := c.doJSON(ctx, &Request{
		Method:    http.MethodPost,
		Path:      TTSJobPath,
		Body:      req,
		Operation: "CreateTTSJob",
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetTTSJob fetches the current state of a job.
func (c *Client) GetTTSJob(ctx context.Context, id string) (*TTSJob, error) {
	const op = "GetTTSJob"
	path, err := jobPath(op, id)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithJobID(ctx, id)

	var job TTSJob
	if err := c.doJSON(ctx, &Request{Method: http.MethodGet, Path: path, Operation: op}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateTTSJobWithProgress submits a job and returns its progress stream in
// one round trip. The job's progress URL, when the server reports one, is
// available from ProgressStream.Location.
func (c *Client) CreateTTSJobWithProgress(ctx context.Context, req TTSJobRequest) (*ProgressStream, error) {
	const op = "CreateTTSJobWithProgress"
	resp, body, err := c.openStream(ctx, &Request{
		Method:    http.MethodPost,
		Path:      TTSJobPath,
		Accept:    MIMEEventStream,
		Body:      req,
		Operation: op,
	})
	if err != nil {
		return nil, err
	}
	return newProgressStream(body, c.observer, op, resp.Header.Get(ContentLocationHeader)), nil
}

// TTSJobProgress opens the progress stream of an existing job.
func (c *Client) TTSJobProgress(ctx context.Context, id string) (*ProgressStream, error) {
	const op = "TTSJobProgress"
	path, err := jobPath(op, id)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithJobID(ctx, id)

	resp, body, err := c.openStream(ctx, &Request{
		Method:    http.MethodGet,
		Path:      path,
		Accept:    MIMEEventStream,
		Operation: op,
	})
	if err != nil {
		return nil, err
	}
	return newProgressStream(body, c.observer, op, resp.Header.Get(ContentLocationHeader)), nil
}

// CopyTTSJobProgress forwards the raw event stream of a job to w, unparsed.
func (c *Client) CopyTTSJobProgress(ctx context.Context, w io.Writer, id string) (streaming.Result, error) {
	const op = "CopyTTSJobProgress"
	path, err := jobPath(op, id)
	if err != nil {
		return streaming.Result{}, err
	}
	ctx = logger.WithJobID(ctx, id)

	_, body, err := c.openStream(ctx, &Request{
		Method:    http.MethodGet,
		Path:      path,
		Accept:    MIMEEventStream,
		Operation: op,
	})
	if err != nil {
		return streaming.Result{}, err
	}
	return c.forward(ctx, w, body, op)
}

// TTSJobAudio opens the audio of a finished job as a lazy chunk sequence.
// The caller must drain or Close the returned stream.
func (c *Client) TTSJobAudio(ctx context.Context, id string) (*streaming.ChunkStream, error) {
	const op = "TTSJobAudio"
	path, err := jobPath(op, id)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithJobID(ctx, id)

	_, body, err := c.openStream(ctx, &Request{
		Method:    http.MethodGet,
		Path:      path,
		Accept:    MIMEAudioMPEG,
		Operation: op,
	})
	if err != nil {
		return nil, err
	}
	return streaming.NewChunkStream(body, c.chunkOptions(op)...), nil
}

// StreamTTSJobAudio writes the audio of a finished job to w chunk by chunk.
func (c *Client) StreamTTSJobAudio(ctx context.Context, w io.Writer, id string) (streaming.Result, error) {
	const op = "StreamTTSJobAudio"
	path, err := jobPath(op, id)
	if err != nil {
		return streaming.Result{}, err
	}
	ctx = logger.WithJobID(ctx, id)

	_, body, err := c.openStream(ctx, &Request{
		Method:    http.MethodGet,
		Path:      path,
		Accept:    MIMEAudioMPEG,
		Operation: op,
	})
	if err != nil {
		return streaming.Result{}, err
	}
	return c.forward(ctx, w, body, op)
}

package api

import (
	"context"
	"io"

	"github.com/AltairaLabs/playht-go/streaming"
)

// The functions below build a one-off Client with NewClient(opts...) and
// run a single call on it. Without options the credentials come from
// PLAYHT_SECRET_KEY and PLAYHT_USER_ID. Programs making more than one call
// should construct a Client once and reuse it.

// ListVoices lists stock voices. See Client.ListVoices.
func ListVoices(ctx context.Context, opts ...Option) ([]Voice, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return c.ListVoices(ctx)
}

// ListClonedVoices lists cloned voices. See Client.ListClonedVoices.
func ListClonedVoices(ctx context.Context, opts ...Option) ([]ClonedVoice, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return c.ListClonedVoices(ctx)
}

// CloneVoiceFromFile clones a voice from a local sample. See Client.CloneVoiceFromFile.
func CloneVoiceFromFile(ctx context.Context, req CloneVoiceFileRequest, opts ...Option) (*ClonedVoice, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return c.CloneVoiceFromFile(ctx, req)
}

// CloneVoiceFromURL clones a voice from a hosted sample. See Client.CloneVoiceFromURL.
func CloneVoiceFromURL(ctx context.Context, req CloneVoiceURLRequest, opts ...Option) (*ClonedVoice, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return c.CloneVoiceFromURL(ctx, req)
}

// DeleteClonedVoice deletes a cloned voice. See Client.DeleteClonedVoice.
func DeleteClonedVoice(
	ctx context.Context, req DeleteClonedVoiceRequest, opts ...Option,
) (*DeleteClonedVoiceResponse, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return c.DeleteClonedVoice(ctx, req)
}

// CreateTTSJob submits a job. See Client.CreateTTSJob.
func CreateTTSJob(ctx context.Context, req TTSJobRequest, opts ...Option) (*TTSJob, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return c.CreateTTSJob(ctx, req)
}

// CreateTTSJobWithProgress submits a job and returns its progress stream.
// See Client.CreateTTSJobWithProgress.
func CreateTTSJobWithProgress(ctx context.Context, req TTSJobRequest, opts ...Option) (*ProgressStream, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return c.CreateTTSJobWithProgress(ctx, req)
}

// GetTTSJob fetches a job. See Client.GetTTSJob.
func GetTTSJob(ctx context.Context, id string, opts ...Option) (*TTSJob, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return c.GetTTSJob(ctx, id)
}

// CopyTTSJobProgress copies a job's raw event stream to w. See Client.CopyTTSJobProgress.
func CopyTTSJobProgress(ctx context.Context, w io.Writer, id string, opts ...Option) (streaming.Result, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return streaming.Result{}, err
	}
	return c.CopyTTSJobProgress(ctx, w, id)
}

// StreamTTSJobAudio writes a finished job's audio to w. See Client.StreamTTSJobAudio.
func StreamTTSJobAudio(ctx context.Context, w io.Writer, id string, opts ...Option) (streaming.Result, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return streaming.Result{}, err
	}
	return c.StreamTTSJobAudio(ctx, w, id)
}

// StreamAudio synthesizes req and writes the audio to w. See Client.StreamAudio.
func StreamAudio(ctx context.Context, w io.Writer, req TTSStreamRequest, opts ...Option) (streaming.Result, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return streaming.Result{}, err
	}
	return c.StreamAudio(ctx, w, req)
}

// GetAudioStreamURL asks for a URL to fetch the audio from. See Client.GetAudioStreamURL.
func GetAudioStreamURL(ctx context.Context, req TTSStreamRequest, opts ...Option) (*TTSStreamURL, error) {
	c, err := NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return c.GetAudioStreamURL(ctx, req)
}

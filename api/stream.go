package api

import (
	"context"
	"io"
	"net/http"

	"github.com/AltairaLabs/playht-go/streaming"
)

// TTSStreamPath is the endpoint for real-time audio synthesis.
const TTSStreamPath = "/tts/stream"

// TTSStreamRequest describes a real-time synthesis request. Unset fields are
// omitted from the payload.
type TTSStreamRequest struct {
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
	TextGuidance  Optional[float64]      `json:"text_guidance,omitzero"`
}

// DefaultTTSStreamRequest returns a stream request for text in voice with
// the default quality, output format, engine and emotion filled in.
func DefaultTTSStreamRequest(text, voice string) TTSStreamRequest {
	return TTSStreamRequest{
		Text:         Some(text),
		Voice:        Some(voice),
		Quality:      Some(DefaultQuality),
		OutputFormat: Some(DefaultOutputFormat),
		VoiceEngine:  Some(DefaultVoiceEngine),
		Emotion:      Some(DefaultEmotion),
	}
}

// TTSStreamURL is a one-shot URL from which the audio can be fetched later.
type TTSStreamURL struct {
	Href        string `json:"href"`
	Method      string `json:"method"`
	ContentType string `json:"contentType"`
	Rel         string `json:"rel"`
	Description string `json:"description"`
}

// AudioStream starts synthesis and returns the audio as a lazy chunk
// sequence in wire order. The Accept header follows req.OutputFormat.
// The caller must drain or Close the returned stream.
func (c *Client) AudioStream(ctx context.Context, req TTSStreamRequest) (*streaming.ChunkStream, error) {
	const op = "AudioStream"
	_, body, err := c.openStream(ctx, &Request{
		Method:    http.MethodPost,
		Path:      TTSStreamPath,
		Accept:    audioAccept(req.OutputFormat),
		Body:      req,
		Operation: op,
	})
	if err != nil {
		return nil, err
	}
	return streaming.NewChunkStream(body, c.chunkOptions(op)...), nil
}

// StreamAudio starts synthesis and writes every chunk to w before reading
// the next. A failing w aborts the stream with a KindSink error; bytes
// already written stay in w.
func (c *Client) StreamAudio(ctx context.Context, w io.Writer, req TTSStreamRequest) (streaming.Result, error) {
	const op = "StreamAudio"
	_, body, err := c.openStream(ctx, &Request{
		Method:    http.MethodPost,
		Path:      TTSStreamPath,
		Accept:    audioAccept(req.OutputFormat),
		Body:      req,
		Operation: op,
	})
	if err != nil {
		return streaming.Result{}, err
	}
	return c.forward(ctx, w, body, op)
}

// GetAudioStreamURL asks for a URL to fetch the audio from instead of the audio itself.
func (c *Client) GetAudioStreamURL(ctx context.Context, req TTSStreamRequest) (*TTSStreamURL, error) {
	var u TTSStreamURL
	err := c.doJSON(ctx, &Request{
		Method:    http.MethodPost,
		Path:      TTSStreamPath,
		Accept:    MIMEApplicationJSON,
		Body:      req,
		Operation: "GetAudioStreamURL",
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

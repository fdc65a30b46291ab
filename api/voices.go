package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/AltairaLabs/playht-go/logger"
	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
)

// API paths for voice endpoints.
const (
	VoicesPath              = "/voices"
	ClonedVoicesPath        = "/cloned-voices"
	ClonedVoicesInstantPath = "/cloned-voices/instant"
)

// Voice is a stock voice. Only ID and Name are always present.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sample   string `json:"sample,omitempty"`
	Accent   string `json:"accent,omitempty"`
	Age      string `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Language string `json:"language,omitempty"`
	LangCode string `json:"lang_code,omitempty"`
	Loudness string `json:"loudness,omitempty"`
	Style    string `json:"style,omitempty"`
	Tempo    string `json:"tempo,omitempty"`
	Texture  string `json:"texture,omitempty"`
}

// ClonedVoice is a voice created from a user sample.
type ClonedVoice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// CloneVoiceFileRequest clones a voice from a local audio sample.
type CloneVoiceFileRequest struct {
	// SampleFile is the path of the audio sample.
	SampleFile string
	// VoiceName is the name given to the cloned voice.
	VoiceName string
	// MIMEType is the sample's media type (e.g. "audio/mpeg"). It is sent as-is.
	MIMEType string
}

// CloneVoiceURLRequest clones a voice from a sample hosted at a URL.
type CloneVoiceURLRequest struct {
	SampleFileURL string `json:"sample_file_url"`
	VoiceName     string `json:"voice_name"`
}

// DeleteClonedVoiceRequest identifies the cloned voice to delete.
type DeleteClonedVoiceRequest struct {
	VoiceID string `json:"voice_id"`
}

// DeleteClonedVoiceResponse confirms a deletion.
type DeleteClonedVoiceResponse struct {
	Message string      `json:"message"`
	Deleted ClonedVoice `json:"deleted"`
}

// ListVoices returns every stock voice.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	var voices []Voice
	err := c.doJSON(ctx, &Request{
		Method:    http.MethodGet,
		Path:      VoicesPath,
		Operation: "ListVoices",
	}, &voices)
	if err != nil {
		return nil, err
	}
	return voices, nil
}

// ListClonedVoices returns the account's cloned voices.
func (c *Client) ListClonedVoices(ctx context.Context) ([]ClonedVoice, error) {
	var voices []ClonedVoice
	err := c.doJSON(ctx, &Request{
		Method:    http.MethodGet,
		Path:      ClonedVoicesPath,
		Operation: "ListClonedVoices",
	}, &voices)
	if err != nil {
		return nil, err
	}
	return voices, nil
}

// CloneVoiceFromFile reads the sample into memory and uploads it as
// multipart/form-data with voice_name and sample_file fields.
func (c *Client) CloneVoiceFromFile(ctx context.Context, req CloneVoiceFileRequest) (*ClonedVoice, error) {
	const op = "CloneVoiceFromFile"

	if req.VoiceName == "" || req.MIMEType == "" {
		return nil, pkgerrors.New(pkgerrors.KindConfiguration, op,
			fmt.Errorf("voice name and MIME type are required"))
	}

	//nolint:gosec // G304: the sample path is supplied by the caller
	data, err := os.ReadFile(req.SampleFile)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.KindConfiguration, op,
			fmt.Errorf("failed to read sample file: %w", err))
	}

	return c.CloneVoice(ctx, req.VoiceName, filepath.Base(req.SampleFile), req.MIMEType, data)
}

// CloneVoice uploads an in-memory sample. fileName is reported to the server as the upload's file name.
func (c *Client) CloneVoice(ctx context.Context, voiceName, fileName, mimeType string, sample []byte) (*ClonedVoice, error) {
	var voice ClonedVoice
	err := c.doJSON(ctx, &Request{
		Method: http.MethodPost,
		Path:   ClonedVoicesInstantPath,
		Parts: []Part{
			{Name: "voice_name", ContentType: MIMETextPlain, Data: []byte(voiceName)},
			{Name: "sample_file", FileName: fileName, ContentType: mimeType, Data: sample},
		},
		Operation: "CloneVoice",
	}, &voice)
	if err != nil {
		return nil, err
	}
	return &voice, nil
}

// CloneVoiceFromURL clones a voice from a remotely hosted sample.
func (c *Client) CloneVoiceFromURL(ctx context.Context, req CloneVoiceURLRequest) (*ClonedVoice, error) {
	var voice ClonedVoice
	err := c.doJSON(ctx, &Request{
		Method:    http.MethodPost,
		Path:      ClonedVoicesPath,
		Body:      req,
		Operation: "CloneVoiceFromURL",
	}, &voice)
	if err != nil {
		return nil, err
	}
	return &voice, nil
}

// DeleteClonedVoice issues a single DELETE for the voice. Whatever status the
// server returns is surfaced unchanged; deleting twice is not special-cased.
func (c *Client) DeleteClonedVoice(ctx context.Context, req DeleteClonedVoiceRequest) (*DeleteClonedVoiceResponse, error) {
	ctx = logger.WithVoiceID(ctx, req.VoiceID)
	var resp DeleteClonedVoiceResponse
	err := c.doJSON(ctx, &Request{
		Method:    http.MethodDelete,
		Path:      ClonedVoicesPath,
		Body:      req,
		Operation: "DeleteClonedVoice",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

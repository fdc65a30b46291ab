// Package playhttest provides an in-memory fake of the play.ht API for tests.
//
// The fake keeps voices, cloned voices and jobs in memory, enforces the
// secret key / user id pair, and serves audio and job progress as chunked,
// flushed responses so streaming code paths are exercised end to end.
//
//	srv := playhttest.NewServer()
//	defer srv.Close()
//	client, _ := api.NewClient(api.WithBaseURL(srv.URL), api.WithCredentials(srv.SecretKey, srv.UserID))
package playhttest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/AltairaLabs/playht-go/api"
	"github.com/AltairaLabs/playht-go/credentials"
)

// Default credentials accepted by the fake.
const (
	DefaultSecretKey = "test-secret-key"
	DefaultUserID    = "test-user-id"
)

const maxUploadSize = 32 << 20

// RecordedRequest is a request as received by the fake.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Upload is a voice sample received by the instant clone endpoint.
type Upload struct {
	VoiceName   string
	FileName    string
	ContentType string
	Data        []byte
}

type failure struct {
	status int
	body   string
}

// ProgressFunc renders the raw event-stream body for a job.
type ProgressFunc func(jobID string) string

// Server is a fake play.ht API backed by httptest.Server.
type Server struct {
	*httptest.Server

	SecretKey string
	UserID    string

	mu        sync.Mutex
	voices    []api.Voice
	cloned    []api.ClonedVoice
	jobs      map[string]*api.TTSJob
	audio     [][]byte
	progress  ProgressFunc
	uploads   []Upload
	requests  []RecordedRequest
	failNext  []failure
	streamURL string
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials sets the accepted key pair.
func WithCredentials(secretKey, userID string) Option {
	return func(s *Server) {
		s.SecretKey = secretKey
		s.UserID = userID
	}
}

// WithVoices replaces the stock voice catalog.
func WithVoices(voices []api.Voice) Option {
	return func(s *Server) {
		s.voices = voices
	}
}

// WithClonedVoices seeds the cloned voice list.
func WithClonedVoices(voices []api.ClonedVoice) Option {
	return func(s *Server) {
		s.cloned = voices
	}
}

// WithAudioChunks sets the audio served by stream and job audio endpoints.
// Each chunk is written and flushed separately.
func WithAudioChunks(chunks [][]byte) Option {
	return func(s *Server) {
		s.audio = chunks
	}
}

// WithProgress overrides the event stream served for job progress.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Server) {
		s.progress = fn
	}
}

// NewServer starts a fake API. Callers must Close it.
func NewServer(opts ...Option) *Server {
	s := &Server{
		SecretKey: DefaultSecretKey,
		UserID:    DefaultUserID,
		voices:    DefaultVoices(),
		jobs:      make(map[string]*api.TTSJob),
		audio:     DefaultAudio(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /voices", s.handleVoices)
	mux.HandleFunc("GET /cloned-voices", s.handleClonedVoices)
	mux.HandleFunc("POST /cloned-voices/instant", s.handleCloneInstant)
	mux.HandleFunc("POST /cloned-voices", s.handleCloneURL)
	mux.HandleFunc("DELETE /cloned-voices", s.handleDeleteClone)
	mux.HandleFunc("POST /tts", s.handleCreateJob)
	mux.HandleFunc("GET /tts/{id}", s.handleGetJob)
	mux.HandleFunc("POST /tts/stream", s.handleStream)

	s.Server = httptest.NewServer(s.middleware(mux))
	s.streamURL = s.URL + "/tts/stream/" + uuid.NewString()
	if s.progress == nil {
		s.progress = s.defaultProgress
	}
	return s
}

// Credential returns a credential accepted by the fake.
func (s *Server) Credential() *credentials.KeyPairCredential {
	return credentials.NewKeyPairCredential(s.SecretKey, s.UserID)
}

// FailNext makes the next request fail with status and a raw body.
// Calls queue up; each failure is used once.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, failure{status: status, body: body})
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Uploads returns the samples received by the instant clone endpoint.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// Job returns a copy of the stored job.
func (s *Server) Job(id string) (api.TTSJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return api.TTSJob{}, false
	}
	return *job, true
}

// CompleteJob marks a job succeeded and attaches its output.
func (s *Server) CompleteJob(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false
	}
	s.completeLocked(job)
	return true
}

// AudioBytes returns the concatenated audio the fake serves.
func (s *Server) AudioBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Join(s.audio, nil)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		var fail *failure
		if len(s.failNext) > 0 {
			fail = &s.failNext[0]
			s.failNext = s.failNext[1:]
		}
		s.mu.Unlock()

		if fail != nil {
			w.Header().Set("Content-Type", api.MIMEApplicationJSON)
			w.WriteHeader(fail.status)
			_, _ = io.WriteString(w, fail.body)
			return
		}

		if r.Header.Get(credentials.AuthorizationHeader) != s.SecretKey ||
			r.Header.Get(credentials.UserIDHeader) != s.UserID {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", api.MIMEApplicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error_message": msg})
}

func (s *Server) handleVoices(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	voices := append([]api.Voice{}, s.voices...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, voices)
}

func (s *Server) handleClonedVoices(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	voices := append([]api.ClonedVoice{}, s.cloned...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, voices)
}

func (s *Server) handleCloneInstant(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}
	name := r.FormValue("voice_name")
	file, header, err := r.FormFile("sample_file")
	if name == "" || err != nil {
		writeError(w, http.StatusBadRequest, "voice_name and sample_file are required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	voice := api.ClonedVoice{ID: "s3://voice-cloning-zero-shot/" + uuid.NewString(), Name: name, Type: "instant"}

	s.mu.Lock()
	s.cloned = append(s.cloned, voice)
	s.uploads = append(s.uploads, Upload{
		VoiceName:   name,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, voice)
}

func (s *Server) handleCloneURL(w http.ResponseWriter, r *http.Request) {
	var req api.CloneVoiceURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SampleFileURL == "" || req.VoiceName == "" {
		writeError(w, http.StatusBadRequest, "sample_file_url and voice_name are required")
		return
	}

	voice := api.ClonedVoice{ID: "s3://voice-cloning-zero-shot/" + uuid.NewString(), Name: req.VoiceName, Type: "instant"}
	s.mu.Lock()
	s.cloned = append(s.cloned, voice)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, voice)
}

func (s *Server) handleDeleteClone(w http.ResponseWriter, r *http.Request) {
	var req api.DeleteClonedVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VoiceID == "" {
		writeError(w, http.StatusBadRequest, "voice_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.cloned {
		if v.ID == req.VoiceID {
			s.cloned = append(s.cloned[:i], s.cloned[i+1:]...)
			writeJSON(w, http.StatusOK, api.DeleteClonedVoiceResponse{
				Message: "Voice deleted successfully",
				Deleted: v,
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Voice not found")
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req api.TTSJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if text, _ := req.Text.Get(); text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if voice, _ := req.Voice.Get(); voice == "" {
		writeError(w, http.StatusBadRequest, "voice is required")
		return
	}

	id := uuid.NewString()
	job := &api.TTSJob{
		ID:      id,
		Created: "2024-01-01T00:00:00.000Z",
		Input:   req,
		Status:  api.JobStatusQueued,
		Links: []api.Link{{
			ContentType: api.MIMEEventStream,
			Description: "Event stream of job progress",
			Href:        s.jobURL(id),
			Method:      http.MethodGet,
			Rel:         "self",
		}},
	}

	s.mu.Lock()
	s.jobs[id] = job
	snapshot := *job
	s.mu.Unlock()

	w.Header().Set(api.ContentLocationHeader, s.jobURL(id))
	if accepts(r, api.MIMEEventStream) {
		s.writeProgress(w, id)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	job, ok := s.jobs[id]
	var snapshot api.TTSJob
	if ok {
		snapshot = *job
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	switch {
	case accepts(r, api.MIMEEventStream):
		s.writeProgress(w, id)
	case strings.HasPrefix(r.Header.Get("Accept"), "audio/"):
		s.writeAudio(w, r.Header.Get("Accept"))
	default:
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req api.TTSStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if text, _ := req.Text.Get(); text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if accepts(r, api.MIMEApplicationJSON) {
		writeJSON(w, http.StatusOK, api.TTSStreamURL{
			Href:        s.streamURL,
			Method:      http.MethodGet,
			ContentType: api.MIMEAudioMPEG,
			Rel:         "related",
			Description: "Audio stream URL",
		})
		return
	}
	s.writeAudio(w, r.Header.Get("Accept"))
}

func (s *Server) writeAudio(w http.ResponseWriter, contentType string) {
	s.mu.Lock()
	chunks := s.audio
	s.mu.Unlock()

	if contentType == "" {
		contentType = api.MIMEAudioMPEG
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	for _, chunk := range chunks {
		if _, err := w.Write(chunk); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) writeProgress(w http.ResponseWriter, id string) {
	body := s.progress(id)

	w.Header().Set("Content-Type", api.MIMEEventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	for _, frame := range strings.SplitAfter(body, "\n\n") {
		if frame == "" {
			continue
		}
		if _, err := io.WriteString(w, frame); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// defaultProgress reports one generating frame and one completed frame,
// and marks the job succeeded.
func (s *Server) defaultProgress(id string) string {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if ok {
		s.completeLocked(job)
	}
	size := len(bytes.Join(s.audio, nil))
	s.mu.Unlock()

	return fmt.Sprintf("event: generating\ndata: {\"id\":%q,\"progress\":0.5,\"stage\":\"active\",\"stage_progress\":0.5}\n\n"+
		"event: completed\ndata: {\"id\":%q,\"progress\":1,\"stage\":\"complete\",\"url\":%q,\"duration\":1.5,\"size\":%d}\n\n",
		id, id, s.audioURL(id), size)
}

func (s *Server) completeLocked(job *api.TTSJob) {
	job.Status = api.JobStatusSucceeded
	job.Output = &api.JobOutput{
		Duration: 1.5,
		Size:     int64(len(bytes.Join(s.audio, nil))),
		URL:      s.audioURL(job.ID),
	}
}

func (s *Server) jobURL(id string) string {
	return s.URL + "/tts/" + id
}

func (s *Server) audioURL(id string) string {
	return s.URL + "/audio/" + id + ".mp3"
}

func accepts(r *http.Request, mime string) bool {
	return strings.Contains(r.Header.Get("Accept"), mime)
}

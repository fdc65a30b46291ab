package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
)

// maxErrorBodyDetail bounds the raw body kept in error details.
const maxErrorBodyDetail = 512

// envelopeKeys are checked in order for a server-provided error message.
var envelopeKeys = []string{"error_message", "message", "error"}

// apiError consumes a non-2xx response and converts it into a KindAPI error.
func apiError(op string, resp *http.Response) error {
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize)) // NOSONAR: a failed read leaves the message empty

	e := pkgerrors.New(pkgerrors.KindAPI, op, nil).WithStatusCode(resp.StatusCode)
	if msg := errorMessage(data); msg != "" {
		return e.WithMessage(msg)
	}

	e.WithMessage(http.StatusText(resp.StatusCode))
	if body := strings.TrimSpace(string(data)); body != "" {
		if len(body) > maxErrorBodyDetail {
			body = body[:maxErrorBodyDetail]
		}
		e.WithDetails(map[string]any{"body": body})
	}
	return e
}

// errorMessage extracts the message from a JSON error envelope, or "".
// Nested {"error": {"message": "..."}} objects are understood too.
func errorMessage(data []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}

	for _, key := range envelopeKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}

package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 16

// StatusError is a non-200 answer from a hosted provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Type       string // error.type from the body, if any
	Code       string // error.code from the body when it is a string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s: %s", e.Provider, e.StatusCode, e.Type, e.Message)
}

// ReadStatusError decodes the {"error": {"type", "message", "code"}} envelope
// used by OpenAI-compatible and Anthropic APIs. An unreadable body falls back
// to the HTTP status text.
func ReadStatusError(provider string, resp *http.Response) *StatusError {
	se := &StatusError{Provider: provider, StatusCode: resp.StatusCode, Message: resp.Status}

	var body struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || json.Unmarshal(data, &body) != nil {
		return se
	}

	se.Type = body.Error.Type
	if code, ok := body.Error.Code.(string); ok {
		se.Code = code
	}
	if body.Error.Message != "" {
		se.Message = body.Error.Message
	}
	return se
}

// ClassifyStatus converts a wrapped *StatusError into a ProviderError using
// classify to pick the code. It returns nil when err carries no StatusError.
func ClassifyStatus(err error, classify func(*StatusError) string) *ProviderError {
	var se *StatusError
	if !errors.As(err, &se) {
		return nil
	}
	return NewProviderError(classify(se), se.Message, err)
}

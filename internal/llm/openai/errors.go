package openai

import (
	"net/http"
	"strings"

	"github.com/HerbHall/notebookrelay/pkg/llm"
)

// mapError translates OpenAI and network errors into typed llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if llm.IsProviderError(err) {
		return err
	}
	if pe := llm.TransportError(providerName, err); pe != nil {
		return pe
	}
	if pe := llm.ClassifyStatus(err, classifyStatus); pe != nil {
		return pe
	}
	return llm.NewProviderError(llm.ErrCodeServerError, "openai error", err)
}

// classifyStatus picks the error code for an OpenAI-compatible error body.
// Compatible servers (vLLM, LM Studio) often omit type and code, so the
// message is consulted as well.
func classifyStatus(se *llm.StatusError) string {
	msg := strings.ToLower(se.Message)
	switch {
	case se.StatusCode == http.StatusUnauthorized, se.StatusCode == http.StatusForbidden:
		return llm.ErrCodeAuthentication
	case se.StatusCode == http.StatusTooManyRequests:
		return llm.ErrCodeRateLimit
	case se.Code == "model_not_found",
		se.StatusCode == http.StatusNotFound && strings.Contains(msg, "model"):
		return llm.ErrCodeModelNotFound
	case se.Code == "context_length_exceeded", se.Type == "context_length_exceeded",
		strings.Contains(msg, "context length"), strings.Contains(msg, "maximum context"):
		return llm.ErrCodeContextLength
	case se.StatusCode >= http.StatusInternalServerError:
		return llm.ErrCodeServerError
	default:
		return llm.ErrCodeInvalidRequest
	}
}

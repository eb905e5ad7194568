package anthropic

import (
	"net/http"
	"strings"

	"github.com/HerbHall/notebookrelay/pkg/llm"
)

// statusOverloaded is Anthropic's non-standard "overloaded" status.
const statusOverloaded = 529

// mapError translates Anthropic and network errors into typed llm.ProviderError values.
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
	return llm.NewProviderError(llm.ErrCodeServerError, "anthropic error", err)
}

// classifyStatus maps Anthropic error types onto provider error codes.
func classifyStatus(se *llm.StatusError) string {
	switch se.Type {
	case "authentication_error", "permission_error":
		return llm.ErrCodeAuthentication
	case "rate_limit_error":
		return llm.ErrCodeRateLimit
	case "not_found_error":
		return llm.ErrCodeModelNotFound
	case "overloaded_error", "api_error":
		return llm.ErrCodeServerError
	case "invalid_request_error":
		msg := strings.ToLower(se.Message)
		if strings.Contains(msg, "too long") || strings.Contains(msg, "context window") {
			return llm.ErrCodeContextLength
		}
		return llm.ErrCodeInvalidRequest
	}

	// Untyped bodies, e.g. from a proxy in front of the API.
	switch {
	case se.StatusCode == http.StatusUnauthorized, se.StatusCode == http.StatusForbidden:
		return llm.ErrCodeAuthentication
	case se.StatusCode == http.StatusTooManyRequests:
		return llm.ErrCodeRateLimit
	case se.StatusCode == statusOverloaded, se.StatusCode >= http.StatusInternalServerError:
		return llm.ErrCodeServerError
	default:
		return llm.ErrCodeInvalidRequest
	}
}

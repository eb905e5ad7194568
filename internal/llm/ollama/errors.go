package ollama

import (
	"errors"
	"strings"

	"github.com/HerbHall/notebookrelay/pkg/llm"
	"github.com/ollama/ollama/api"
)

// mapError translates Ollama and network errors into typed llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if llm.IsProviderError(err) {
		return err
	}

	if pe := llm.TransportError("ollama", err); pe != nil {
		return pe
	}

	// Ollama StatusError (HTTP-level errors).
	var se api.StatusError
	if errors.As(err, &se) {
		msg := se.ErrorMessage
		if msg == "" {
			msg = se.Status
		}
		switch {
		case se.StatusCode == 401 || se.StatusCode == 403:
			return llm.NewProviderError(llm.ErrCodeAuthentication, msg, err)
		case se.StatusCode == 404 && strings.Contains(strings.ToLower(msg), "model"):
			return llm.NewProviderError(llm.ErrCodeModelNotFound, msg, err)
		case se.StatusCode == 429:
			return llm.NewProviderError(llm.ErrCodeRateLimit, msg, err)
		case se.StatusCode >= 500:
			return llm.NewProviderError(llm.ErrCodeServerError, msg, err)
		case se.StatusCode >= 400:
			return llm.NewProviderError(llm.ErrCodeInvalidRequest, msg, err)
		}
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "ollama error", err)
}

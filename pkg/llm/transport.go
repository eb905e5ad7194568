package llm

import (
	"context"
	"errors"
	"net"
	"strings"
)

// TransportError classifies network-level failures shared by every HTTP-based
// provider. It returns nil when err is not a timeout or connectivity failure,
// leaving provider-specific mapping to the caller.
func TransportError(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewProviderError(ErrCodeTimeout, provider+" request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewProviderError(ErrCodeCanceled, provider+" request canceled by caller", err)
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return NewProviderError(ErrCodeTimeout, provider+" request timed out", err)
	}

	var oe *net.OpError
	if errors.As(err, &oe) {
		return NewProviderError(ErrCodeUnavailable, provider+" server unreachable", err)
	}

	// Connection refused, DNS errors, etc. that arrive without a typed cause.
	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return NewProviderError(ErrCodeUnavailable, provider+" server unreachable", err)
	}

	return nil
}

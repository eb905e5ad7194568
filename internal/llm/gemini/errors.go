package gemini

import (
	"errors"
	"strings"

	"github.com/HerbHall/notebookrelay/pkg/llm"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mapError translates Gemini client errors into typed llm.ProviderError values.
// The client surfaces either gRPC statuses or REST googleapi errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if llm.IsProviderError(err) {
		return err
	}

	if pe := llm.TransportError("gemini", err); pe != nil {
		return pe
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return fromCode(st.Code(), st.Message(), err)
	}

	var ge *googleapi.Error
	if errors.As(err, &ge) {
		msg := ge.Message
		if msg == "" {
			msg = ge.Error()
		}
		switch {
		case ge.Code == 401 || ge.Code == 403:
			return llm.NewProviderError(llm.ErrCodeAuthentication, msg, err)
		case ge.Code == 429:
			return llm.NewProviderError(llm.ErrCodeRateLimit, msg, err)
		case ge.Code == 404:
			return llm.NewProviderError(llm.ErrCodeModelNotFound, msg, err)
		case ge.Code == 503:
			return llm.NewProviderError(llm.ErrCodeUnavailable, msg, err)
		case ge.Code >= 500:
			return llm.NewProviderError(llm.ErrCodeServerError, msg, err)
		case ge.Code >= 400:
			return llm.NewProviderError(invalidOrContext(msg), msg, err)
		}
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "gemini error", err)
}

func fromCode(code codes.Code, msg string, err error) error {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return llm.NewProviderError(llm.ErrCodeAuthentication, msg, err)
	case codes.ResourceExhausted:
		return llm.NewProviderError(llm.ErrCodeRateLimit, msg, err)
	case codes.NotFound:
		return llm.NewProviderError(llm.ErrCodeModelNotFound, msg, err)
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return llm.NewProviderError(invalidOrContext(msg), msg, err)
	case codes.DeadlineExceeded:
		return llm.NewProviderError(llm.ErrCodeTimeout, msg, err)
	case codes.Canceled:
		return llm.NewProviderError(llm.ErrCodeCanceled, msg, err)
	case codes.Unavailable:
		return llm.NewProviderError(llm.ErrCodeUnavailable, msg, err)
	default:
		return llm.NewProviderError(llm.ErrCodeServerError, msg, err)
	}
}

func invalidOrContext(msg string) string {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "token") && (strings.Contains(lower, "exceed") || strings.Contains(lower, "limit")) {
		return llm.ErrCodeContextLength
	}
	return llm.ErrCodeInvalidRequest
}

package server

import (
	"encoding/json"
	"net/http"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound       = "https://notebookrelay.dev/problems/not-found"
	ProblemTypeBadRequest     = "https://notebookrelay.dev/problems/bad-request"
	ProblemTypeInternal       = "https://notebookrelay.dev/problems/internal-error"
	ProblemTypeTooLarge       = "https://notebookrelay.dev/problems/payload-too-large"
	ProblemTypeBadGateway     = "https://notebookrelay.dev/problems/bad-gateway"
	ProblemTypeGatewayTimeout = "https://notebookrelay.dev/problems/gateway-timeout"
	ProblemTypeClientClosed   = "https://notebookrelay.dev/problems/client-closed-request"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type" example:"https://notebookrelay.dev/problems/bad-request"`
	Title    string `json:"title" example:"Bad Request"`
	Status   int    `json:"status" example:"400"`
	Detail   string `json:"detail,omitempty" example:"message or messages is required"`
	Instance string `json:"instance,omitempty" example:"/chat"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	})
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: instance,
	})
}

// PayloadTooLarge writes a 413 problem response.
func PayloadTooLarge(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeTooLarge,
		Title:    "Payload Too Large",
		Status:   http.StatusRequestEntityTooLarge,
		Detail:   detail,
		Instance: instance,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	})
}

// BadGateway writes a 502 problem response.
func BadGateway(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeBadGateway,
		Title:    "Bad Gateway",
		Status:   http.StatusBadGateway,
		Detail:   detail,
		Instance: instance,
	})
}

// GatewayTimeout writes a 504 problem response.
func GatewayTimeout(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeGatewayTimeout,
		Title:    "Gateway Timeout",
		Status:   http.StatusGatewayTimeout,
		Detail:   detail,
		Instance: instance,
	})
}

// StatusClientClosedRequest is the non-standard status recorded when the
// client went away before a response was ready.
const StatusClientClosedRequest = 499

// ClientClosedRequest writes a 499 problem response. The client has usually
// disconnected, so this mostly serves logs and metrics.
func ClientClosedRequest(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeClientClosed,
		Title:    "Client Closed Request",
		Status:   StatusClientClosedRequest,
		Detail:   detail,
		Instance: instance,
	})
}

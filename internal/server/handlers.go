package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/HerbHall/notebookrelay/internal/runner"
	"github.com/HerbHall/notebookrelay/internal/version"
	"github.com/HerbHall/notebookrelay/pkg/llm"
	"go.uber.org/zap"
)

// handleRoot redirects to the interactive API documentation.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusTemporaryRedirect)
}

// handleHealth reports service health and upstream availability.
//
//	@Summary		Health check
//	@Description	Always returns 200. ollama_available is true only when the configured upstream answers a live probe in time.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Provider: s.providerName(), Build: version.Map()}

	if s.provider != nil {
		ctx, cancel := s.healthContext(r.Context())
		defer cancel()
		if err := s.provider.Heartbeat(ctx); err != nil {
			s.logger.Debug("upstream heartbeat failed",
				zap.String("provider", s.provider.Name()),
				zap.Error(err),
			)
		} else {
			resp.OllamaAvailable = true
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleModels lists the upstream's models, falling back to a static list.
//
//	@Summary		List models
//	@Description	Returns the upstream model list, or the configured fallback list when the upstream is unreachable or reports none.
//	@Tags			llm
//	@Produce		json
//	@Success		200	{object}	ModelsResponse
//	@Router			/models [get]
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	resp := ModelsResponse{Provider: s.providerName()}

	if s.provider != nil {
		models, err := s.provider.ListModels(r.Context())
		switch {
		case err != nil:
			s.logger.Warn("listing upstream models failed; serving fallback list",
				zap.String("provider", s.provider.Name()),
				zap.Error(err),
			)
		case len(models) > 0:
			resp.Models = models
		}
	}

	if len(resp.Models) == 0 {
		resp.Models = s.llmCfg.FallbackModels()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleChat relays a conversation to the upstream provider.
//
//	@Summary		Chat completion
//	@Description	Forwards a single message or a message list to the configured provider and returns its completion.
//	@Tags			llm
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ChatRequest	true	"Chat request"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	Problem
//	@Failure		500		{object}	Problem
//	@Failure		502		{object}	Problem
//	@Failure		504		{object}	Problem
//	@Router			/chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	messages := chatMessages(req)
	if len(messages) == 0 {
		BadRequest(w, "message or messages is required", r.URL.Path)
		return
	}

	if s.provider == nil {
		InternalError(w, "provider not initialized", r.URL.Path)
		return
	}

	opts := s.llmCfg.CallOptions()
	if req.Model != "" {
		opts = append(opts, llm.WithModel(req.Model))
	}

	resp, err := s.provider.Chat(r.Context(), messages, opts...)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response: resp.Content,
		Status:   "success",
		Provider: s.provider.Name(),
		Model:    resp.Model,
	})
}

// handleExecute runs a code cell and returns its rendered output.
//
//	@Summary		Execute code
//	@Description	Runs the submitted code and returns captured output. Code failures are reported with status "error" and HTTP 200. The runner is not a sandbox.
//	@Tags			execution
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ExecuteRequest	true	"Code to execute"
//	@Success		200		{object}	ExecuteResponse
//	@Failure		400		{object}	Problem
//	@Failure		500		{object}	Problem
//	@Router			/execute [post]
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Code == nil {
		BadRequest(w, "code is required", r.URL.Path)
		return
	}
	if s.runner == nil {
		InternalError(w, "code runner not initialized", r.URL.Path)
		return
	}

	res, err := s.runner.Run(r.Context(), *req.Code)
	if err != nil {
		s.logger.Error("code execution harness failed",
			zap.String("runner", s.runner.Name()),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		InternalError(w, "code execution failed to start", r.URL.Path)
		return
	}

	output, status := runner.Render(res)
	writeJSON(w, http.StatusOK, ExecuteResponse{Output: output, Status: status})
}

// chatMessages normalizes the two request forms into one message list.
func chatMessages(req ChatRequest) []llm.Message {
	if len(req.Messages) > 0 {
		out := make([]llm.Message, len(req.Messages))
		for i, m := range req.Messages {
			role := strings.TrimSpace(m.Role)
			if role == "" {
				role = llm.RoleUser
			}
			out[i] = llm.Message{Role: role, Content: m.Content}
		}
		return out
	}
	if strings.TrimSpace(req.Message) != "" {
		return []llm.Message{{Role: llm.RoleUser, Content: req.Message}}
	}
	return nil
}

// writeProviderError maps a provider failure onto a gateway status. Upstream
// messages are logged but not echoed, since some providers quote credentials
// back in their errors.
func (s *Server) writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	fields := []zap.Field{
		zap.String("provider", s.provider.Name()),
		zap.String("request_id", RequestID(r.Context())),
		zap.Error(err),
	}
	if llm.IsCanceledError(err) {
		s.logger.Info("client canceled chat request", fields...)
		ClientClosedRequest(w, "request canceled by client", r.URL.Path)
		return
	}
	s.logger.Error("upstream chat failed", fields...)

	var pe *llm.ProviderError
	switch {
	case llm.IsTimeoutError(err):
		GatewayTimeout(w, "upstream provider timed out", r.URL.Path)
	case llm.IsUnavailableError(err):
		BadGateway(w, "upstream provider is unreachable", r.URL.Path)
	case llm.IsEmptyCompletionError(err):
		BadGateway(w, "upstream provider returned an empty completion", r.URL.Path)
	case errors.As(err, &pe):
		BadGateway(w, fmt.Sprintf("upstream provider error (%s)", pe.Code), r.URL.Path)
	default:
		InternalError(w, "internal error", r.URL.Path)
	}
}

// decode reads a size-limited JSON body into dst, writing a problem response
// and returning false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			PayloadTooLarge(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), r.URL.Path)
			return false
		}
		BadRequest(w, "invalid JSON body", r.URL.Path)
		return false
	}
	return true
}

func (s *Server) providerName() string {
	if s.provider != nil {
		return s.provider.Name()
	}
	return s.llmCfg.Name
}

func (s *Server) healthContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.llmCfg.HealthTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.llmCfg.HealthTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/HerbHall/notebookrelay/internal/testutil"
	"github.com/HerbHall/notebookrelay/pkg/llm"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), DefaultConfig(), zap.NewNop()); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestToContents(t *testing.T) {
	system, history := toContents(testutil.NewConversation(
		testutil.WithSystem("be kind"),
		testutil.WithTurn(llm.RoleAssistant, "hello"),
		testutil.WithTurn("", "again"),
	))

	if system == nil || len(system.Parts) != 1 || system.Parts[0] != genai.Text("be kind") {
		t.Fatalf("system = %+v", system)
	}
	wantRoles := []string{"user", "model", "user"}
	if len(history) != len(wantRoles) {
		t.Fatalf("history len = %d, want %d", len(history), len(wantRoles))
	}
	for i, role := range wantRoles {
		if history[i].Role != role {
			t.Errorf("history[%d].Role = %q, want %q", i, history[i].Role, role)
		}
	}
}

func TestToContents_NoSystem(t *testing.T) {
	system, history := toContents(testutil.NewConversation())
	if system != nil {
		t.Errorf("system = %+v, want nil", system)
	}
	if len(history) != 1 {
		t.Errorf("history len = %d, want 1", len(history))
	}
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello, "), genai.Text("world")}},
		}},
	}
	if got := extractText(resp); got != "Hello, world" {
		t.Errorf("extractText() = %q", got)
	}
	if got := extractText(&genai.GenerateContentResponse{}); got != "" {
		t.Errorf("extractText(empty) = %q", got)
	}
	if got := extractText(nil); got != "" {
		t.Errorf("extractText(nil) = %q", got)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "bad key"), llm.IsAuthenticationError},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "quota"), llm.IsRateLimitError},
		{"grpc not found", status.Error(codes.NotFound, "models/x is not found"), llm.IsModelNotFoundError},
		{"grpc invalid", status.Error(codes.InvalidArgument, "bad role"), llm.IsInvalidRequestError},
		{"grpc token limit", status.Error(codes.InvalidArgument, "input token count exceeds the maximum"), llm.IsContextLengthError},
		{"grpc unavailable", status.Error(codes.Unavailable, "try later"), llm.IsUnavailableError},
		{"grpc deadline", status.Error(codes.DeadlineExceeded, "slow"), llm.IsTimeoutError},
		{"grpc canceled", status.Error(codes.Canceled, "caller left"), llm.IsCanceledError},
		{"grpc internal", status.Error(codes.Internal, "boom"), llm.IsServerError},
		{"rest 403", &googleapi.Error{Code: 403, Message: "API key not valid"}, llm.IsAuthenticationError},
		{"rest 429", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 429}), llm.IsRateLimitError},
		{"rest 500", &googleapi.Error{Code: 500, Message: "internal"}, llm.IsServerError},
		{"rest 400", &googleapi.Error{Code: 400, Message: "invalid"}, llm.IsInvalidRequestError},
		{"context deadline", context.DeadlineExceeded, llm.IsTimeoutError},
		{"unknown", errors.New("weird"), llm.IsServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := mapError(tt.err); !tt.check(err) {
				t.Errorf("mapError(%v) = %v", tt.err, err)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	if err := mapError(nil); err != nil {
		t.Errorf("mapError(nil) = %v", err)
	}
}

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/HerbHall/notebookrelay/pkg/llm"
	"github.com/HerbHall/notebookrelay/pkg/llm/llmtest"
	"go.uber.org/zap"
)

const testKey = "sk-test-key"

type capture struct {
	mu   sync.Mutex
	req  chatRequest
	auth string
}

// mockOpenAI returns an httptest server emulating the chat completions API.
func mockOpenAI(t *testing.T, reply string) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testKey {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)) //nolint:errcheck
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		c.req = req
		c.auth = r.Header.Get("Authorization")
		c.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":    "chatcmpl-1",
			"model": req.Model,
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
			"usage": map[string]int{"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5},
		})
	})

	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"gpt-3.5-turbo"},{"id":"gpt-4"}]}`)) //nolint:errcheck
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, c
}

func newTestProvider(t *testing.T, serverURL, key string) *Provider {
	t.Helper()
	p, err := New(Config{
		BaseURL: serverURL + "/v1",
		APIKey:  key,
		Model:   "gpt-3.5-turbo",
		Timeout: 10 * time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestContract(t *testing.T) {
	srv, _ := mockOpenAI(t, "Hello there friend")
	llmtest.TestProviderContract(t, func() llm.Provider { return newTestProvider(t, srv.URL, testKey) })
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNew_DefaultBaseURL(t *testing.T) {
	p, err := New(Config{APIKey: "k"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.client.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("baseURL = %q", p.client.BaseURL)
	}
}

func TestChat_SendsMessagesAndOptions(t *testing.T) {
	srv, c := mockOpenAI(t, "4")
	p := newTestProvider(t, srv.URL, testKey)

	resp, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "2+2?"},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "4" {
		t.Errorf("Content = %q, want %q", resp.Content, "4")
	}
	if resp.Usage.TotalTokens != 5 {
		t.Errorf("TotalTokens = %d, want 5", resp.Usage.TotalTokens)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.req.Messages) != 2 || c.req.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", c.req.Messages)
	}
	if c.req.Temperature != 0.7 || c.req.TopP != 0.95 {
		t.Errorf("temperature/top_p = %v/%v", c.req.Temperature, c.req.TopP)
	}
	if c.req.Stream {
		t.Error("stream must be false")
	}
}

func TestChat_BadKey(t *testing.T) {
	srv, _ := mockOpenAI(t, "x")
	p := newTestProvider(t, srv.URL, "wrong")

	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if !llm.IsAuthenticationError(err) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestChat_EmptyCompletion(t *testing.T) {
	srv, _ := mockOpenAI(t, "")
	p := newTestProvider(t, srv.URL, testKey)

	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if !llm.IsEmptyCompletionError(err) {
		t.Fatalf("expected empty completion error, got %v", err)
	}
}

func TestChat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"model":"m","choices":[]}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	p := newTestProvider(t, srv.URL, testKey)

	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if !llm.IsEmptyCompletionError(err) {
		t.Fatalf("expected empty completion error, got %v", err)
	}
}

func TestChat_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	p := newTestProvider(t, srv.URL, testKey)

	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if !llm.IsServerError(err) {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestChat_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	p, err := New(Config{BaseURL: srv.URL, APIKey: testKey, Model: "m", Timeout: 50 * time.Millisecond}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if !llm.IsTimeoutError(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	srv, _ := mockOpenAI(t, "x")
	p := newTestProvider(t, srv.URL, testKey)

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 || models[0] != "gpt-3.5-turbo" {
		t.Errorf("models = %v", models)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"429", &llm.StatusError{Provider: providerName, StatusCode: 429, Message: "slow"}, llm.IsRateLimitError},
		{"404 model", &llm.StatusError{Provider: providerName, StatusCode: 404, Message: "The model `x` does not exist"}, llm.IsModelNotFoundError},
		{"context", &llm.StatusError{Provider: providerName, StatusCode: 400, Type: "context_length_exceeded", Message: "too long"}, llm.IsContextLengthError},
		{"503", &llm.StatusError{Provider: providerName, StatusCode: 503, Message: "overloaded"}, llm.IsServerError},
		{"400", &llm.StatusError{Provider: providerName, StatusCode: 400, Message: "bad"}, llm.IsInvalidRequestError},
		{"deadline", context.DeadlineExceeded, llm.IsTimeoutError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := mapError(tt.err); !tt.check(err) {
				t.Errorf("mapError(%v) = %v", tt.err, err)
			}
		})
	}
}

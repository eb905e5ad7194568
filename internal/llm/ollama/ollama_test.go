package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HerbHall/notebookrelay/pkg/llm"
	"github.com/HerbHall/notebookrelay/pkg/llm/llmtest"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// newTestProvider creates a Provider pointing at the given httptest server URL.
func newTestProvider(t *testing.T, serverURL string) *Provider {
	t.Helper()
	p, err := New(Config{
		URL:     serverURL,
		Model:   "test-model",
		Timeout: 10 * time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

// recordedRequest captures the last generate request the mock received.
type recordedRequest struct {
	mu  sync.Mutex
	req api.GenerateRequest
}

func (r *recordedRequest) get() api.GenerateRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.req
}

// mockOllama returns an httptest server that handles Ollama API endpoints.
func mockOllama(t *testing.T, reply string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	mux := http.NewServeMux()

	// Heartbeat
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Ollama is running")) //nolint:errcheck
	})

	// Generate (non-streaming)
	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req api.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec.mu.Lock()
		rec.req = req
		rec.mu.Unlock()

		resp := api.GenerateResponse{
			Model:    req.Model,
			Response: reply,
			Done:     true,
			Metrics: api.Metrics{
				PromptEvalCount: 5,
				EvalCount:       4,
				TotalDuration:   100 * time.Millisecond,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	})

	// List models
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		resp := api.ListResponse{
			Models: []api.ListModelResponse{
				{Name: "test-model:latest", Model: "test-model:latest", Size: 1024},
				{Name: "llama3:8b", Model: "llama3:8b", Size: 512},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestContract(t *testing.T) {
	srv, _ := mockOllama(t, "Hello from Ollama!")
	llmtest.TestProviderContract(t, func() llm.Provider { return newTestProvider(t, srv.URL) })
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(Config{URL: "http://[::1"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

func TestChat_Success(t *testing.T) {
	srv, rec := mockOllama(t, "The answer is 4.")
	p := newTestProvider(t, srv.URL)

	resp, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "What is 2+2?"}})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "The answer is 4." {
		t.Errorf("Content = %q, want %q", resp.Content, "The answer is 4.")
	}
	if resp.Model != "test-model" {
		t.Errorf("Model = %q, want %q", resp.Model, "test-model")
	}
	if !resp.Done {
		t.Error("Done = false, want true")
	}
	if resp.Usage.TotalTokens != 9 {
		t.Errorf("TotalTokens = %d, want 9", resp.Usage.TotalTokens)
	}

	got := rec.get()
	if got.Prompt != "What is 2+2?" {
		t.Errorf("Prompt = %q, want single message verbatim", got.Prompt)
	}
	if got.Stream == nil || *got.Stream {
		t.Error("expected stream=false in request")
	}
}

func TestChat_SendsGenerationOptions(t *testing.T) {
	srv, rec := mockOllama(t, "ok")
	p := newTestProvider(t, srv.URL)

	if _, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	opts := rec.get().Options
	if opts["temperature"] != 0.7 {
		t.Errorf("temperature = %v, want 0.7", opts["temperature"])
	}
	if opts["top_p"] != 0.95 {
		t.Errorf("top_p = %v, want 0.95", opts["top_p"])
	}
	// JSON numbers decode as float64.
	if opts["num_ctx"] != float64(2048) {
		t.Errorf("num_ctx = %v, want 2048", opts["num_ctx"])
	}
	if _, ok := opts["num_predict"]; ok {
		t.Error("num_predict should be omitted when MaxTokens is unset")
	}
}

func TestChat_WithModelOption(t *testing.T) {
	srv, _ := mockOllama(t, "ok")
	p := newTestProvider(t, srv.URL)

	resp, err := p.Chat(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Hello"}},
		llm.WithModel("custom-model"),
	)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Model != "custom-model" {
		t.Errorf("Model = %q, want %q", resp.Model, "custom-model")
	}
}

func TestChat_EmptyCompletion(t *testing.T) {
	srv, _ := mockOllama(t, "   ")
	p := newTestProvider(t, srv.URL)

	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if !llm.IsEmptyCompletionError(err) {
		t.Fatalf("expected empty completion error, got %v", err)
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

	p, err := New(Config{URL: srv.URL, Model: "m", Timeout: 50 * time.Millisecond}, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if !llm.IsTimeoutError(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestChat_ModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'nope' not found"}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	p := newTestProvider(t, srv.URL)
	_, err := p.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if !llm.IsModelNotFoundError(err) {
		t.Fatalf("expected model-not-found error, got %v", err)
	}
}

func TestHeartbeat_ServerDown(t *testing.T) {
	// Point at a closed server to simulate unreachable Ollama.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	p := newTestProvider(t, srv.URL)
	err := p.Heartbeat(context.Background())
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if !llm.IsUnavailableError(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestListModels_Success(t *testing.T) {
	srv, _ := mockOllama(t, "ok")
	p := newTestProvider(t, srv.URL)

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("ListModels() returned %d models, want 2", len(models))
	}
	if models[0] != "test-model:latest" {
		t.Errorf("models[0] = %q, want %q", models[0], "test-model:latest")
	}
}

func TestMapError_StatusErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   api.StatusError
		check func(error) bool
	}{
		{"404 model", api.StatusError{StatusCode: 404, ErrorMessage: "model 'x' not found"}, llm.IsModelNotFoundError},
		{"401", api.StatusError{StatusCode: 401, ErrorMessage: "unauthorized"}, llm.IsAuthenticationError},
		{"429", api.StatusError{StatusCode: 429, ErrorMessage: "slow down"}, llm.IsRateLimitError},
		{"500", api.StatusError{StatusCode: 500, ErrorMessage: "internal server error"}, llm.IsServerError},
		{"400", api.StatusError{StatusCode: 400, ErrorMessage: "bad"}, llm.IsInvalidRequestError},
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
		t.Errorf("mapError(nil) = %v, want nil", err)
	}
}

func TestMapError_ContextCanceled(t *testing.T) {
	if err := mapError(context.Canceled); !llm.IsCanceledError(err) {
		t.Errorf("expected canceled error, got %v", err)
	}
}

func TestResolveURL(t *testing.T) {
	orig := inContainer
	t.Cleanup(func() { inContainer = orig })

	tests := []struct {
		name      string
		cfg       Config
		container bool
		want      string
	}{
		{"default", Config{}, false, "http://localhost:11434"},
		{"bare host port", Config{URL: "10.0.0.5:11434"}, false, "http://10.0.0.5:11434"},
		{"trailing slash", Config{URL: "http://ollama:11434/"}, false, "http://ollama:11434"},
		{"docker rewrites localhost", Config{URL: "http://localhost:11434", DockerHost: "host.docker.internal"}, true, "http://host.docker.internal:11434"},
		{"docker rewrites loopback ip", Config{URL: "http://127.0.0.1:11434", DockerHost: "host.docker.internal"}, true, "http://host.docker.internal:11434"},
		{"docker keeps named host", Config{URL: "http://ollama:11434", DockerHost: "host.docker.internal"}, true, "http://ollama:11434"},
		{"no docker host configured", Config{URL: "http://localhost:11434"}, true, "http://localhost:11434"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inContainer = func() bool { return tt.container }
			u, err := tt.cfg.ResolveURL()
			if err != nil {
				t.Fatalf("ResolveURL() error = %v", err)
			}
			if got := u.String(); got != tt.want {
				t.Errorf("ResolveURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveURL_MissingHost(t *testing.T) {
	_, err := Config{URL: "http://"}.ResolveURL()
	if err == nil || !strings.Contains(err.Error(), "missing host") {
		t.Fatalf("expected missing host error, got %v", err)
	}
}

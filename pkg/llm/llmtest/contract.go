// Package llmtest provides shared contract tests that verify any
// llm.Provider implementation behaves correctly. Every provider's test
// file should call TestProviderContract to ensure conformance.
//
// The factory is expected to point the provider at a mock upstream that
// answers every chat with non-empty text and lists at least one model.
package llmtest

import (
	"context"
	"testing"

	"github.com/HerbHall/notebookrelay/pkg/llm"
)

// TestProviderContract runs a suite of behavioral contract tests against
// any llm.Provider implementation. Call this from each provider's _test.go:
//
//	func TestContract(t *testing.T) {
//	    srv := mockOllama(t)
//	    llmtest.TestProviderContract(t, func() llm.Provider { return newTestProvider(t, srv.URL) })
//	}
func TestProviderContract(t *testing.T, factory func() llm.Provider) {
	t.Helper()

	t.Run("Name_is_not_empty", func(t *testing.T) {
		if factory().Name() == "" {
			t.Error("Name() must not be empty")
		}
	})

	t.Run("Chat_returns_non_empty_response", func(t *testing.T) {
		p := factory()
		resp, err := p.Chat(context.Background(), []llm.Message{
			{Role: llm.RoleUser, Content: "Say hello in exactly three words"},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if resp == nil {
			t.Fatal("Chat() returned nil response")
		}
		if resp.Content == "" {
			t.Error("Chat() returned empty content")
		}
		if resp.Model == "" {
			t.Error("Response.Model must not be empty")
		}
	})

	t.Run("Chat_with_conversation_history", func(t *testing.T) {
		p := factory()
		messages := []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a helpful assistant. Be concise."},
			{Role: llm.RoleUser, Content: "What is 2+2? Reply with just the number."},
			{Role: llm.RoleAssistant, Content: "4"},
			{Role: llm.RoleUser, Content: "And 3+3?"},
		}
		resp, err := p.Chat(context.Background(), messages)
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if resp.Content == "" {
			t.Error("Chat() returned empty content")
		}
	})

	t.Run("Chat_with_model_option", func(t *testing.T) {
		p := factory()
		resp, err := p.Chat(context.Background(),
			[]llm.Message{{Role: llm.RoleUser, Content: "Hi"}},
			llm.WithModel("contract-model"),
		)
		if err != nil {
			if llm.IsModelNotFoundError(err) {
				return
			}
			t.Fatalf("Chat() with model option error = %v", err)
		}
		if resp.Model == "" {
			t.Error("Response.Model must not be empty")
		}
	})

	t.Run("Chat_cancelled_context", func(t *testing.T) {
		p := factory()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: "Write a very long essay"}})
		if err == nil {
			t.Fatal("Chat() with cancelled context should return error")
		}
		if !llm.IsCanceledError(err) {
			t.Errorf("cancelled context should map to canceled, got %v", err)
		}
	})

	t.Run("Chat_empty_messages_returns_error", func(t *testing.T) {
		p := factory()
		_, err := p.Chat(context.Background(), nil)
		if err == nil {
			t.Fatal("Chat() with nil messages should return error")
		}
		if !llm.IsInvalidRequestError(err) {
			t.Errorf("expected invalid request error, got %v", err)
		}
	})

	t.Run("HealthReporter", func(t *testing.T) {
		p := factory()
		if err := p.Heartbeat(context.Background()); err != nil {
			t.Errorf("Heartbeat() error = %v", err)
		}
		models, err := p.ListModels(context.Background())
		if err != nil {
			t.Fatalf("ListModels() error = %v", err)
		}
		if len(models) == 0 {
			t.Error("ListModels() returned empty list")
		}
	})
}

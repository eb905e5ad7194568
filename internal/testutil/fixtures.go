// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/HerbHall/notebookrelay/pkg/llm"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// NewConversation returns a one-turn user conversation, suitable for test
// fixtures. Options are applied in order and append or replace turns.
func NewConversation(opts ...func([]llm.Message) []llm.Message) []llm.Message {
	msgs := []llm.Message{{Role: llm.RoleUser, Content: "Hello"}}
	for _, opt := range opts {
		msgs = opt(msgs)
	}
	return msgs
}

// WithSystem prepends a system instruction.
func WithSystem(content string) func([]llm.Message) []llm.Message {
	return func(msgs []llm.Message) []llm.Message {
		return append([]llm.Message{{Role: llm.RoleSystem, Content: content}}, msgs...)
	}
}

// WithTurn appends a message with the given role.
func WithTurn(role, content string) func([]llm.Message) []llm.Message {
	return func(msgs []llm.Message) []llm.Message {
		return append(msgs, llm.Message{Role: role, Content: content})
	}
}

// CounterValue reads the current value of one series of vec.
func CounterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	if err := vec.WithLabelValues(labels...).Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

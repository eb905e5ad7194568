package llm

import (
	"context"
	"io"

	pkgllm "github.com/HerbHall/notebookrelay/pkg/llm"
	"github.com/prometheus/client_golang/prometheus"
)

var upstreamRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "relay_upstream_requests_total",
		Help: "Total number of completion requests sent upstream, by outcome.",
	},
	[]string{"provider", "outcome"},
)

func init() {
	prometheus.MustRegister(upstreamRequestsTotal)
}

// instrumented records the outcome of every Chat call.
type instrumented struct {
	pkgllm.Provider
}

// Instrument wraps p so each completion request is counted in
// relay_upstream_requests_total.
func Instrument(p pkgllm.Provider) pkgllm.Provider {
	if _, ok := p.(*instrumented); ok {
		return p
	}
	return &instrumented{Provider: p}
}

func (i *instrumented) Chat(ctx context.Context, messages []pkgllm.Message, opts ...pkgllm.CallOption) (*pkgllm.Response, error) {
	resp, err := i.Provider.Chat(ctx, messages, opts...)
	upstreamRequestsTotal.WithLabelValues(i.Name(), outcome(err)).Inc()
	return resp, err
}

// Close closes the wrapped provider when it holds resources.
func (i *instrumented) Close() error {
	if c, ok := i.Provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case pkgllm.IsTimeoutError(err):
		return "timeout"
	case pkgllm.IsCanceledError(err):
		return "canceled"
	case pkgllm.IsUnavailableError(err):
		return "unavailable"
	case pkgllm.IsEmptyCompletionError(err):
		return "empty"
	default:
		return "error"
	}
}

package runner

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

var executionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "relay_executions_total",
		Help: "Total number of code executions, by runner and status.",
	},
	[]string{"runner", "status"},
)

func init() {
	prometheus.MustRegister(executionsTotal)
}

type instrumented struct {
	Runner
}

// Instrument wraps r so every run is counted in relay_executions_total.
func Instrument(r Runner) Runner {
	if _, ok := r.(*instrumented); ok {
		return r
	}
	return &instrumented{Runner: r}
}

func (i *instrumented) Run(ctx context.Context, code string) (*Result, error) {
	res, err := i.Runner.Run(ctx, code)
	status := "harness_error"
	if err == nil {
		_, status = Render(res)
	}
	executionsTotal.WithLabelValues(i.Name(), status).Inc()
	return res, err
}

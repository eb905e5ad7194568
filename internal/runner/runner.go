// Package runner executes notebook code cells and renders their results.
//
// Every run owns its own output buffers, so concurrent runs never observe each
// other's output. Failures raised by the submitted code are reported in
// Result.Err; the error returned by Run is reserved for harness failures.
package runner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Execution statuses reported to clients.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Runner names accepted by Config.Name.
const (
	NameStarlark   = "starlark"
	NameJavaScript = "javascript"
	NameSubprocess = "subprocess"
)

// NoOutput is the placeholder rendered when a run produced nothing to show.
const NoOutput = "Code executed successfully with no output."

// Runner executes one code cell.
type Runner interface {
	Name() string
	Run(ctx context.Context, code string) (*Result, error)
}

// Binding is a top-level name left behind by a run, with its printable form.
type Binding struct {
	Name  string
	Value string
}

// Result holds everything a run produced.
type Result struct {
	Stdout   string
	Stderr   string
	Err      error
	Bindings []Binding
}

// CodeError is a failure raised by the submitted code. Trace is shown to
// the client verbatim.
type CodeError struct {
	Trace string
}

func (e *CodeError) Error() string { return e.Trace }

// Render turns a result into the client-facing output text and status.
func Render(res *Result) (output, status string) {
	if res == nil {
		return NoOutput, StatusSuccess
	}

	if res.Err != nil {
		out := "Error:\n" + res.Err.Error()
		if res.Stdout != "" {
			out += "\n\nOutput:\n" + res.Stdout
		}
		return out, StatusError
	}

	if res.Stderr != "" {
		return fmt.Sprintf("Error:\n%s\n\nOutput:\n%s", res.Stderr, res.Stdout), StatusSuccess
	}

	if res.Stdout != "" {
		return res.Stdout, StatusSuccess
	}

	visible := make([]Binding, 0, len(res.Bindings))
	for _, b := range res.Bindings {
		if !strings.HasPrefix(b.Name, "_") {
			visible = append(visible, b)
		}
	}
	if len(visible) > 0 {
		sort.Slice(visible, func(i, j int) bool { return visible[i].Name < visible[j].Name })
		var sb strings.Builder
		sb.WriteString("Variables defined:\n")
		for _, b := range visible {
			sb.WriteString(b.Name)
			sb.WriteString(" = ")
			sb.WriteString(b.Value)
			sb.WriteString("\n")
		}
		return sb.String(), StatusSuccess
	}

	return NoOutput, StatusSuccess
}

// Config selects and configures the runner backend.
type Config struct {
	Name       string           `mapstructure:"name"`
	Subprocess SubprocessConfig `mapstructure:"subprocess"`
}

// SubprocessConfig configures the out-of-process runner.
//
// Epilogue is appended to every cell after a newline. It runs only when the
// cell completed and should write the cell's top-level bindings as a JSON
// object of name to printable value into the file named by the
// NOTEBOOKRELAY_BINDINGS environment variable. An empty Epilogue disables
// binding reports, which interpreters other than Python need.
type SubprocessConfig struct {
	Command  []string      `mapstructure:"command"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Epilogue string        `mapstructure:"epilogue"`
}

// PythonEpilogue reports module-level names that are not modules, functions
// or classes, using repr for their values.
const PythonEpilogue = `import json as _nr_json, os as _nr_os, types as _nr_types
with open(_nr_os.environ["NOTEBOOKRELAY_BINDINGS"], "w") as _nr_f:
    _nr_json.dump({_k: repr(_v) for _k, _v in list(globals().items()) if not _k.startswith("_") and not isinstance(_v, (_nr_types.ModuleType, _nr_types.FunctionType, _nr_types.BuiltinFunctionType, type))}, _nr_f)
`

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{
		Name: NameStarlark,
		Subprocess: SubprocessConfig{
			Command:  []string{"python3", "-"},
			Timeout:  30 * time.Second,
			Epilogue: PythonEpilogue,
		},
	}
}

// New creates the runner named by cfg.Name, instrumented with execution
// metrics. In-process runners share the server's address space, which is
// logged as a warning.
func New(cfg Config, logger *zap.Logger) (Runner, error) {
	var r Runner
	switch cfg.Name {
	case NameStarlark, "":
		r = NewStarlark()
	case NameJavaScript:
		r = NewJavaScript()
	case NameSubprocess:
		sp, err := NewSubprocess(cfg.Subprocess, logger)
		if err != nil {
			return nil, err
		}
		r = sp
	default:
		return nil, fmt.Errorf("unknown runner: %s", cfg.Name)
	}

	if r.Name() != NameSubprocess {
		logger.Warn("code execution runs unsandboxed inside the server process; expose /execute only to trusted clients",
			zap.String("runner", r.Name()),
		)
	}
	return Instrument(r), nil
}

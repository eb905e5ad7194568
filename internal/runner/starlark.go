package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
)

func init() {
	resolve.AllowSet = true
	resolve.AllowGlobalReassign = true
	resolve.AllowRecursion = true
}

// Starlark runs cells written in Starlark, a Python dialect, inside the
// server process. Each run gets a fresh thread and globals.
type Starlark struct{}

// NewStarlark returns a Starlark runner.
func NewStarlark() *Starlark { return &Starlark{} }

// Name implements Runner.
func (s *Starlark) Name() string { return NameStarlark }

// Run implements Runner. print writes to the run's stdout and the
// predeclared eprint writes to its stderr.
func (s *Starlark) Run(ctx context.Context, code string) (*Result, error) {
	var stdout, stderr bytes.Buffer

	thread := &starlark.Thread{
		Name: "cell",
		Print: func(_ *starlark.Thread, msg string) {
			stdout.WriteString(msg)
			stdout.WriteByte('\n')
		},
	}

	predeclared := starlark.StringDict{
		"eprint": starlark.NewBuiltin("eprint", func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if len(kwargs) > 0 {
				return nil, fmt.Errorf("eprint: unexpected keyword arguments")
			}
			parts := make([]string, len(args))
			for i, a := range args {
				if str, ok := starlark.AsString(a); ok {
					parts[i] = str
				} else {
					parts[i] = a.String()
				}
			}
			stderr.WriteString(strings.Join(parts, " "))
			stderr.WriteByte('\n')
			return starlark.None, nil
		}),
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	globals, err := starlark.ExecFile(thread, "<cell>", code, predeclared)

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		res.Err = &CodeError{Trace: starlarkTrace(err)}
		return res, nil
	}

	for _, name := range globals.Keys() {
		res.Bindings = append(res.Bindings, Binding{Name: name, Value: globals[name].String()})
	}
	return res, nil
}

func starlarkTrace(err error) string {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Backtrace()
	}
	return err.Error()
}

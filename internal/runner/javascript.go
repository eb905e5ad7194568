package runner

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// JavaScript runs cells as ECMAScript inside the server process. Each run
// gets a fresh VM.
type JavaScript struct{}

// NewJavaScript returns a JavaScript runner.
func NewJavaScript() *JavaScript { return &JavaScript{} }

// Name implements Runner.
func (j *JavaScript) Name() string { return NameJavaScript }

// Run implements Runner. console.log, info and debug write to the run's
// stdout; console.error and warn write to its stderr.
func (j *JavaScript) Run(ctx context.Context, code string) (*Result, error) {
	var stdout, stderr bytes.Buffer

	vm := goja.New()
	console := vm.NewObject()
	for name, buf := range map[string]*bytes.Buffer{
		"log": &stdout, "info": &stdout, "debug": &stdout,
		"error": &stderr, "warn": &stderr,
	} {
		if err := console.Set(name, consoleWriter(buf)); err != nil {
			return nil, err
		}
	}
	if err := vm.Set("console", console); err != nil {
		return nil, err
	}

	before := make(map[string]struct{})
	for _, k := range vm.GlobalObject().Keys() {
		before[k] = struct{}{}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	_, err := vm.RunString(code)

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		res.Err = &CodeError{Trace: jsTrace(err)}
		return res, nil
	}

	global := vm.GlobalObject()
	for _, k := range global.Keys() {
		if _, existed := before[k]; existed {
			continue
		}
		v := global.Get(k)
		if _, isFunc := goja.AssertFunction(v); isFunc {
			continue
		}
		res.Bindings = append(res.Bindings, Binding{Name: k, Value: jsRepr(v)})
	}
	return res, nil
}

func consoleWriter(buf *bytes.Buffer) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		buf.WriteString(strings.Join(parts, " "))
		buf.WriteByte('\n')
		return goja.Undefined()
	}
}

func jsTrace(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return exc.String()
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return "execution interrupted: " + interrupted.Error()
	}
	return err.Error()
}

func jsRepr(v goja.Value) string {
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return v.String()
	}
	if s, ok := v.Export().(string); ok {
		return strconv.Quote(s)
	}
	if obj, ok := v.(*goja.Object); ok {
		if b, err := obj.MarshalJSON(); err == nil {
			return string(b)
		}
	}
	return v.String()
}

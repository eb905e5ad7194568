package runner

import (
	"context"
	"strings"
	"testing"
	"time"
)

func runJS(t *testing.T, code string) (string, string) {
	t.Helper()
	res, err := NewJavaScript().Run(context.Background(), code)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return Render(res)
}

func TestJavaScript_ConsoleLog(t *testing.T) {
	out, status := runJS(t, "console.log('hello', 42)")
	if out != "hello 42\n" || status != StatusSuccess {
		t.Errorf("got (%q, %q)", out, status)
	}
}

func TestJavaScript_Bindings(t *testing.T) {
	out, status := runJS(t, "var x = 5; var s = 'a'; var o = {k: [1, 2]}; function f() {}")
	want := "Variables defined:\no = {\"k\":[1,2]}\ns = \"a\"\nx = 5\n"
	if out != want || status != StatusSuccess {
		t.Errorf("got (%q, %q), want (%q, success)", out, status, want)
	}
}

func TestJavaScript_LexicalDeclarationsAreNotBindings(t *testing.T) {
	out, _ := runJS(t, "let y = 1; const z = 2;")
	if out != NoOutput {
		t.Errorf("output = %q, want placeholder", out)
	}
}

func TestJavaScript_Stderr(t *testing.T) {
	out, status := runJS(t, "console.warn('careful'); console.log('ok')")
	want := "Error:\ncareful\n\n\nOutput:\nok\n"
	if out != want || status != StatusSuccess {
		t.Errorf("got (%q, %q), want (%q, success)", out, status, want)
	}
}

func TestJavaScript_Exception(t *testing.T) {
	out, status := runJS(t, "console.log('before'); throw new Error('boom')")
	if status != StatusError {
		t.Fatalf("status = %q, want error", status)
	}
	if !strings.HasPrefix(out, "Error:\n") || !strings.Contains(out, "boom") {
		t.Errorf("output %q should carry the exception", out)
	}
	if !strings.HasSuffix(out, "\n\nOutput:\nbefore\n") {
		t.Errorf("output %q should end with prior stdout", out)
	}
}

func TestJavaScript_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := NewJavaScript().Run(ctx, "for (;;) {}")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out, status := Render(res)
	if status != StatusError || !strings.Contains(out, "interrupted") {
		t.Errorf("got (%q, %q)", out, status)
	}
}

func TestJavaScript_Isolation(t *testing.T) {
	assertIsolated(t, NewJavaScript(), func(marker string) string {
		return "for (var i = 0; i < 100; i++) {} console.log('" + marker + "')"
	})
}

package runner

import (
	"context"
	"strings"
	"testing"
	"time"
)

func runStarlark(t *testing.T, code string) (string, string) {
	t.Helper()
	res, err := NewStarlark().Run(context.Background(), code)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return Render(res)
}

func TestStarlark_Print(t *testing.T) {
	out, status := runStarlark(t, "print('hello')")
	if out != "hello\n" || status != StatusSuccess {
		t.Errorf("got (%q, %q)", out, status)
	}
}

func TestStarlark_Bindings(t *testing.T) {
	out, status := runStarlark(t, "x = 5\n_private = 1\nname = 'ada'")
	want := "Variables defined:\nname = \"ada\"\nx = 5\n"
	if out != want || status != StatusSuccess {
		t.Errorf("got (%q, %q), want (%q, success)", out, status, want)
	}
}

func TestStarlark_Placeholder(t *testing.T) {
	for _, code := range []string{"", "# just a comment"} {
		out, status := runStarlark(t, code)
		if out != NoOutput || status != StatusSuccess {
			t.Errorf("code %q: got (%q, %q)", code, out, status)
		}
	}
}

func TestStarlark_RuntimeError(t *testing.T) {
	out, status := runStarlark(t, "print('before')\nx = 1 // 0")
	if status != StatusError {
		t.Fatalf("status = %q, want error", status)
	}
	if !strings.HasPrefix(out, "Error:\n") {
		t.Errorf("output %q should start with the error header", out)
	}
	if !strings.Contains(out, "division by zero") {
		t.Errorf("output %q should contain the failure", out)
	}
	if !strings.HasSuffix(out, "\n\nOutput:\nbefore\n") {
		t.Errorf("output %q should end with prior stdout", out)
	}
}

func TestStarlark_SyntaxError(t *testing.T) {
	out, status := runStarlark(t, "def (:")
	if status != StatusError || !strings.HasPrefix(out, "Error:\n") {
		t.Errorf("got (%q, %q)", out, status)
	}
}

func TestStarlark_Stderr(t *testing.T) {
	out, status := runStarlark(t, "eprint('careful', 1)\nprint('ok')")
	want := "Error:\ncareful 1\n\n\nOutput:\nok\n"
	if out != want || status != StatusSuccess {
		t.Errorf("got (%q, %q), want (%q, success)", out, status, want)
	}
}

func TestStarlark_DialectFeatures(t *testing.T) {
	code := `
def fact(n):
    if n <= 1:
        return 1
    return n * fact(n - 1)

i = 0
while i < 3:
    i += 1
s = set([1, 2, 2])
print(fact(5), i, len(s))
`
	out, status := runStarlark(t, code)
	if out != "120 3 2\n" || status != StatusSuccess {
		t.Errorf("got (%q, %q)", out, status)
	}
}

func TestStarlark_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := NewStarlark().Run(ctx, "while True:\n    pass")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, status := Render(res); status != StatusError {
		t.Errorf("status = %q, want error", status)
	}
}

func TestStarlark_Isolation(t *testing.T) {
	assertIsolated(t, NewStarlark(), func(marker string) string {
		return "for _ in range(50):\n    pass\nprint('" + marker + "')"
	})
}

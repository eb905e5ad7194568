package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// bindingsEnv names the file the epilogue writes bindings into.
const bindingsEnv = "NOTEBOOKRELAY_BINDINGS"

// Subprocess runs each cell in a separate interpreter process fed the code on
// stdin, inside a temporary working directory removed afterwards.
type Subprocess struct {
	command  []string
	timeout  time.Duration
	epilogue string
	logger   *zap.Logger
}

// NewSubprocess validates cfg and returns a subprocess runner.
func NewSubprocess(cfg SubprocessConfig, logger *zap.Logger) (*Subprocess, error) {
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, fmt.Errorf("subprocess runner: command is required")
	}
	return &Subprocess{
		command:  cfg.Command,
		timeout:  cfg.Timeout,
		epilogue: cfg.Epilogue,
		logger:   logger,
	}, nil
}

// Name implements Runner.
func (s *Subprocess) Name() string { return NameSubprocess }

// Run implements Runner. A non-zero exit is a code failure with stderr as
// its trace; failing to start the interpreter is a harness error.
func (s *Subprocess) Run(ctx context.Context, code string) (*Result, error) {
	dir, err := os.MkdirTemp("", "notebookrelay-cell-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Warn("failed to remove work dir", zap.String("dir", dir), zap.Error(rmErr))
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// The bindings file lives beside the work dir so cell code listing its
	// cwd never sees it.
	bindingsPath := filepath.Join(dir, "bindings.json")
	workDir := filepath.Join(dir, "cwd")
	if err := os.Mkdir(workDir, 0o700); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	script := code
	if s.epilogue != "" {
		script = code + "\n" + s.epilogue
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Dir = workDir
	cmd.Env = append(minimalEnv(workDir), bindingsEnv+"="+bindingsPath)
	cmd.Stdin = strings.NewReader(script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", s.command[0], err)
	}
	err = cmd.Wait()

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		res.Bindings = s.readBindings(bindingsPath)
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		trace := "execution stopped: " + ctxErr.Error()
		if errors.Is(ctxErr, context.DeadlineExceeded) && s.timeout > 0 {
			trace = fmt.Sprintf("execution timed out after %s", s.timeout)
		}
		if res.Stderr != "" {
			trace = res.Stderr + "\n" + trace
		}
		res.Err = &CodeError{Trace: trace}
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		trace := res.Stderr
		if trace == "" {
			trace = exitErr.Error()
		}
		res.Err = &CodeError{Trace: trace}
		return res, nil
	}
	return nil, fmt.Errorf("wait %s: %w", s.command[0], err)
}

// readBindings loads what the epilogue reported. A missing or unreadable file
// means no bindings; the cell itself still succeeded.
func (s *Subprocess) readBindings(path string) []Binding {
	if s.epilogue == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read bindings", zap.Error(err))
		}
		return nil
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Warn("malformed bindings report", zap.Error(err))
		return nil
	}
	bindings := make([]Binding, 0, len(values))
	for name, value := range values {
		bindings = append(bindings, Binding{Name: name, Value: value})
	}
	return bindings
}

// minimalEnv passes through only what an interpreter needs to start.
func minimalEnv(home string) []string {
	env := []string{"HOME=" + home, "TMPDIR=" + home, "PYTHONDONTWRITEBYTECODE=1", "PYTHONUNBUFFERED=1"}
	for _, key := range []string{"PATH", "LANG", "LC_ALL", "SYSTEMROOT"} {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	return env
}

package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds every checker invocation.
const DefaultTimeout = 60 * time.Second

// Command describes one run of the checker.
type Command struct {
	Name    string   // executable path or bare name
	Args    []string // arguments
	Dir     string   // working directory (empty = current)
	Timeout time.Duration

	// IgnoreExitCode treats a non-zero exit as success when stdout is
	// non-empty; the caller's parser decides whether the output is usable.
	IgnoreExitCode bool

	// Detached runs the child in its own process group.
	Detached bool
}

// Invoker runs a checker command and returns its stdout.
type Invoker interface {
	Run(ctx context.Context, c Command) ([]byte, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, c Command) ([]byte, error)

// Run calls f.
func (f InvokerFunc) Run(ctx context.Context, c Command) ([]byte, error) { return f(ctx, c) }

// ExecInvoker runs commands as child processes.
type ExecInvoker struct {
	// WaitDelay bounds how long Run waits for output pipes after the
	// child is killed.
	WaitDelay time.Duration
}

// NewExecInvoker creates an ExecInvoker.
func NewExecInvoker() *ExecInvoker {
	return &ExecInvoker{WaitDelay: 2 * time.Second}
}

// Run executes c. Errors are ErrNotFound, ErrTimeout, the parent context's
// error, or an *InvocationError carrying the child's stderr.
func (e *ExecInvoker) Run(ctx context.Context, c Command) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = e.WaitDelay
	if c.Detached {
		setProcessGroup(cmd)
		cmd.Cancel = func() error { return killProcessGroup(cmd) }
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s %s after %s: %w", c.Name, strings.Join(c.Args, " "), timeout, ErrTimeout)
	}

	out := stdout.Bytes()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, c.Name)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", c.Name, err)
		}
		if c.IgnoreExitCode && len(bytes.TrimSpace(out)) > 0 {
			return out, nil
		}
		return nil, &InvocationError{
			Name:     c.Name,
			Args:     c.Args,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	if len(bytes.TrimSpace(out)) == 0 && strings.TrimSpace(stderr.String()) != "" {
		return nil, &InvocationError{Name: c.Name, Args: c.Args, Stderr: stderr.String()}
	}
	return out, nil
}

// isNotFound reports whether err means the executable itself is missing.
// A missing working directory also surfaces as ENOENT, from chdir.
func isNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Op != "chdir" && errors.Is(pathErr.Err, fs.ErrNotExist)
	}
	return false
}

package checker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by an Invoker when the executable cannot be
	// started because it does not exist.
	ErrNotFound = errors.New("checker: executable not found")

	// ErrExecutableNotFound is the user-facing failure Client returns for
	// ErrNotFound. It is never retried.
	ErrExecutableNotFound = errors.New("flow executable not found")

	// ErrTimeout is returned when an invocation exceeds its timeout.
	ErrTimeout = errors.New("checker: invocation timed out")
)

// InvocationError is a failed run of the checker that produced no usable
// stdout. Stderr is kept verbatim so busy markers can be detected in it.
type InvocationError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *InvocationError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s %s (exit %d): %s", e.Name, strings.Join(e.Args, " "), e.ExitCode, truncate(msg, 400))
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Text returns everything the checker said about the failure.
func (e *InvocationError) Text() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

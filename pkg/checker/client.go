package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/flowcov/internal/detect"
	"github.com/dkoosis/flowcov/internal/logging"
	"github.com/dkoosis/flowcov/pkg/coverage"
)

// Client issues coverage requests against the checker, retrying while the
// checker reports that it is starting or rechecking.
type Client struct {
	invoker     Invoker
	markers     detect.Markers
	servers     *Servers
	timeout     time.Duration
	stopTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithInvoker replaces the process invoker.
func WithInvoker(inv Invoker) Option {
	return func(c *Client) { c.invoker = inv }
}

// WithMarkers replaces the busy-signal markers.
func WithMarkers(m detect.Markers) Option {
	return func(c *Client) { c.markers = m }
}

// WithServers shares a spawned-server registry.
func WithServers(s *Servers) Option {
	return func(c *Client) { c.servers = s }
}

// WithTimeout sets the per-invocation timeout for coverage requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithStopTimeout sets the timeout for each `stop` command.
func WithStopTimeout(d time.Duration) Option {
	return func(c *Client) { c.stopTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client backed by an ExecInvoker unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		invoker:     NewExecInvoker(),
		markers:     detect.DefaultMarkers(),
		servers:     NewServers(),
		timeout:     DefaultTimeout,
		stopTimeout: DefaultTimeout,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Servers returns the registry of roots with spawned servers.
func (c *Client) Servers() *Servers { return c.servers }

// CoverageCommand builds `<exe> coverage <file> --json` run from the file's
// directory.
func (c *Client) CoverageCommand(exe, file string) Command {
	return Command{
		Name:           exe,
		Args:           []string{"coverage", file, "--json"},
		Dir:            filepath.Dir(file),
		Timeout:        c.timeout,
		IgnoreExitCode: true,
	}
}

// Coverage returns the raw coverage output for file. Busy responses are
// retried immediately until the checker answers or ctx is done. A missing
// executable fails with ErrExecutableNotFound; other failures are returned
// unchanged.
func (c *Client) Coverage(ctx context.Context, exe, file string) ([]byte, error) {
	cmd := c.CoverageCommand(exe, file)
	root := cmd.Dir
	if r, ok := ProjectRoot(cmd.Dir); ok {
		root = r
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := c.invoker.Run(ctx, cmd)
		if err == nil {
			if attempt > 1 {
				c.logger.Debug("checker answered after retry", "file", file, "attempts", attempt)
			}
			return out, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrExecutableNotFound, exe)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		signal := c.markers.Classify(errorText(err))
		if !signal.Busy() {
			return nil, err
		}
		if signal == detect.Starting {
			c.servers.Add(root)
		}
		c.logger.Debug("checker busy, retrying", "file", file, "state", signal.String(), "attempt", attempt)
	}
}

// Report runs Coverage and parses the result.
func (c *Client) Report(ctx context.Context, exe, file string) (*coverage.Report, error) {
	out, err := c.Coverage(ctx, exe, file)
	if err != nil {
		return nil, err
	}
	return coverage.Parse(out)
}

// StopAll issues `stop` to every recorded root and clears the registry.
// The executable is located per root from configured. Every error is
// discarded and each stop is bounded by the stop timeout.
func (c *Client) StopAll(ctx context.Context, configured string) {
	roots := c.servers.Drain()
	if len(roots) == 0 {
		return
	}

	var g errgroup.Group
	for _, root := range roots {
		g.Go(func() error {
			exe := Locate(configured, root)
			_, err := c.invoker.Run(ctx, Command{
				Name:           exe,
				Args:           []string{"stop"},
				Dir:            root,
				Timeout:        c.stopTimeout,
				IgnoreExitCode: true,
				Detached:       true,
			})
			if err != nil {
				c.logger.Debug("stop failed", "root", root, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func errorText(err error) string {
	var invErr *InvocationError
	if errors.As(err, &invErr) {
		return invErr.Text()
	}
	return err.Error()
}

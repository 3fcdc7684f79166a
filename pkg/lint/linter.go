// Package lint runs a coverage check for one document and turns the result
// into diagnostics.
package lint

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dkoosis/flowcov/internal/config"
	"github.com/dkoosis/flowcov/internal/logging"
	"github.com/dkoosis/flowcov/pkg/checker"
	"github.com/dkoosis/flowcov/pkg/coverage"
	"github.com/dkoosis/flowcov/pkg/doccache"
)

// ErrClosed is returned when the document was closed while its lint ran.
// The result is discarded rather than cached.
var ErrClosed = errors.New("lint: document closed")

// Document is a file open in the host.
type Document struct {
	ID   doccache.DocumentID
	Path string
}

// NewDocument identifies path by its absolute form.
func NewDocument(path string) Document {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Document{ID: doccache.DocumentID(abs), Path: abs}
}

// Reporter produces a parsed coverage report for file. *checker.Client
// satisfies it.
type Reporter interface {
	Report(ctx context.Context, exe, file string) (*coverage.Report, error)
}

// Result is the outcome of one lint.
type Result struct {
	Document    Document
	Executable  string
	Report      *coverage.Report
	Diagnostics []coverage.Diagnostic
	// Skipped is set when the document is outside any Flow project and
	// OnlyIfAppropriate is on.
	Skipped  bool
	Duration time.Duration
}

// Linter ties the checker client to the per-document cache.
type Linter struct {
	reporter Reporter
	cache    *doccache.Cache
	logger   *slog.Logger
}

// NewLinter creates a Linter. A nil logger discards output.
func NewLinter(reporter Reporter, cache *doccache.Cache, logger *slog.Logger) *Linter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Linter{reporter: reporter, cache: cache, logger: logger}
}

// Cache returns the cache results are written to.
func (l *Linter) Cache() *doccache.Cache { return l.cache }

// Lint returns the uncovered-region diagnostics for doc. It returns
// (nil, nil) when the document is not part of a Flow project and
// cfg.OnlyIfAppropriate is set.
func (l *Linter) Lint(ctx context.Context, cfg config.Config, doc Document) ([]coverage.Diagnostic, error) {
	res, err := l.Run(ctx, cfg, doc)
	if err != nil || res.Skipped {
		return nil, err
	}
	return res.Diagnostics, nil
}

// Run is Lint with the full result.
func (l *Linter) Run(ctx context.Context, cfg config.Config, doc Document) (Result, error) {
	id := uuid.NewString()
	ctx = logging.WithRequestID(ctx, id)
	log := l.logger.With("request_id", id, "file", doc.Path)

	res := Result{Document: doc}
	dir := filepath.Dir(doc.Path)
	if cfg.OnlyIfAppropriate {
		if _, ok := checker.ProjectRoot(dir); !ok {
			log.Debug("no flow project, skipping")
			res.Skipped = true
			return res, nil
		}
	}

	gen := l.cache.Generation(doc.ID)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	res.Executable = checker.Locate(cfg.ExecutablePath, dir)
	start := time.Now()
	report, err := l.reporter.Report(ctx, res.Executable, doc.Path)
	res.Duration = time.Since(start)
	if err != nil {
		log.Debug("lint failed", "exe", res.Executable, "error", err)
		return res, err
	}
	if report == nil {
		return res, &coverage.ParseError{Reason: "no report"}
	}

	if !l.cache.PutAt(doc.ID, gen, report) {
		log.Debug("document closed during lint, dropping report")
		return res, ErrClosed
	}
	res.Report = report
	res.Diagnostics = coverage.Diagnostics(report, doc.Path, cfg.ShowUncovered)
	log.Debug("lint done",
		"percent", report.Percent(),
		"uncovered", len(report.UncoveredLocations),
		"elapsed", res.Duration)
	return res, nil
}

// Package resolve rewrites short cross-reference identifiers in a PreTeXt
// corpus to the qualified identifiers they are declared under.
//
// A run has two strictly ordered phases. Phase 1 reads every document and
// builds the resolution Table; phase 2 starts only after the table is complete
// and frozen, and rewrites every document in place.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"ptxref/internal/config"
	"ptxref/internal/corpus"
	"ptxref/internal/extract"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Resolver runs the resolution pass over one corpus. It is single-use.
type Resolver struct {
	scanner *corpus.Scanner
	refs    extract.ReferenceExtractor
	decls   extract.DeclarationExtractor
	isRef   func(id string) bool
	workers int
	strict  bool
	log     *zap.Logger
	runID   string

	state atomic.Int32
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the progress logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithExtractors replaces the pattern extractors.
func WithExtractors(refs extract.ReferenceExtractor, decls extract.DeclarationExtractor) Option {
	return func(r *Resolver) {
		if refs != nil {
			r.refs = refs
		}
		if decls != nil {
			r.decls = decls
		}
	}
}

// WithRunID fixes the run identifier used to correlate log entries.
func WithRunID(id string) Option {
	return func(r *Resolver) {
		if id != "" {
			r.runID = id
		}
	}
}

// New builds a Resolver from cfg.
func New(cfg *config.Config, opts ...Option) (*Resolver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	patterns, err := extract.NewPatterns(cfg.Categories)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		scanner: corpus.NewScanner(cfg.Root, cfg.Scan),
		refs:    patterns,
		decls:   patterns,
		isRef:   patterns.IsReferenceID,
		workers: cfg.Workers,
		strict:  cfg.Strict,
		log:     zap.NewNop(),
		runID:   uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(zap.String("run_id", r.runID))
	return r, nil
}

// Corpus resolves every reference under root with the default configuration.
// It is the entry point for build tooling that runs before the document build.
func Corpus(ctx context.Context, root string) error {
	cfg := config.DefaultConfig()
	cfg.Root = root
	r, err := New(cfg)
	if err != nil {
		return err
	}
	_, err = r.Run(ctx)
	return err
}

// RunID returns the identifier tagging this run's log entries.
func (r *Resolver) RunID() string {
	return r.runID
}

// State returns the current lifecycle state.
func (r *Resolver) State() State {
	return State(r.state.Load())
}

// Run executes phase 1, freezes the table, then executes phase 2.
//
// A phase 1 failure aborts before any document is written. In strict mode
// ambiguous or unstable tables abort the same way. Phase 2 failures are
// isolated per document: every other document is still rewritten, and the
// returned error aggregates the failures.
func (r *Resolver) Run(ctx context.Context) (*Report, error) {
	if !r.state.CompareAndSwap(int32(StatePending), int32(StateBuilding)) {
		return nil, ErrAlreadyRun
	}
	start := time.Now()

	table, report, err := r.build(ctx)
	if err != nil {
		r.state.Store(int32(StateFailed))
		return report, err
	}
	table.Freeze()

	if err := r.checkStrict(report); err != nil {
		r.state.Store(int32(StateFailed))
		report.Duration = time.Since(start)
		return report, err
	}

	r.state.Store(int32(StateRewriting))
	r.log.Info("Rewriting references",
		zap.Int("documents", report.Documents),
		zap.Int("entries", report.Entries))

	if err := r.rewrite(ctx, table, report); err != nil {
		r.state.Store(int32(StateFailed))
		report.Duration = time.Since(start)
		return report, err
	}

	report.Duration = time.Since(start)
	r.state.Store(int32(StateDone))

	if len(report.Failures) > 0 {
		var errs error
		for _, f := range report.Failures {
			errs = multierr.Append(errs, f)
		}
		r.log.Warn("Resolution finished with failures",
			zap.Int("failed", len(report.Failures)),
			zap.Int("rewritten", report.Rewritten))
		return report, errs
	}

	r.log.Info("Resolution complete",
		zap.Int("references", report.References),
		zap.Int("rewritten", report.Rewritten),
		zap.Int("unresolved", len(report.Unresolved)),
		zap.Duration("elapsed", report.Duration))
	return report, nil
}

// BuildTable runs phase 1 only. Nothing is written; the returned table is frozen.
func (r *Resolver) BuildTable(ctx context.Context) (*Table, *Report, error) {
	table, report, err := r.build(ctx)
	if err != nil {
		return nil, report, err
	}
	table.Freeze()
	return table, report, nil
}

func (r *Resolver) checkStrict(report *Report) error {
	if !r.strict {
		return nil
	}
	var err error
	if len(report.Conflicts) > 0 {
		shorts := make([]string, len(report.Conflicts))
		for i, c := range report.Conflicts {
			shorts[i] = c.Short
		}
		err = multierr.Append(err, fmt.Errorf("%w: %v", ErrAmbiguous, shorts))
	}
	if len(report.Unstable) > 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %v", ErrUnstable, report.Unstable))
	}
	if err != nil {
		r.log.Error("Strict mode: aborting before rewrite", zap.Error(err))
	}
	return err
}

// isCanceled reports whether err came from ctx being done.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

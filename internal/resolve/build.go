package resolve

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"ptxref/internal/extract"
	"ptxref/internal/logging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// skipper is implemented by extractors that can report malformed tags.
type skipper interface {
	Skipped(text []byte) []int
}

// docScan is the phase 1 result for one document.
type docScan struct {
	path    string
	refIDs  []string
	decls   []extract.Declaration
	skipped int
}

// build runs phase 1: read every document, then merge the per-document
// results in scan order so the last declaration in that order wins no
// matter how many workers read the corpus.
func (r *Resolver) build(ctx context.Context) (*Table, *Report, error) {
	report := &Report{RunID: r.runID, Root: r.scanner.Root()}
	rlog := logging.WithRunID(logging.CategoryResolve, r.runID)
	timer := logging.StartTimer(rlog, "phase 1")

	paths, err := r.scanner.Paths(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("scan corpus: %w", err)
	}
	report.Documents = len(paths)
	r.log.Debug("Scanned corpus", zap.String("root", report.Root), zap.Int("documents", len(paths)))

	scans := make([]docScan, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := r.scanDocument(path)
			if err != nil {
				return &DocumentError{Path: path, Phase: PhaseBuild, Err: err}
			}
			scans[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if !isCanceled(err) {
			r.log.Error("Phase 1 failed, nothing rewritten", zap.Error(err))
		}
		return nil, report, err
	}

	referenced := make(map[string]bool)
	for _, s := range scans {
		for _, id := range s.refIDs {
			referenced[id] = true
		}
		report.Skipped += s.skipped
	}

	table := NewTable()
	for _, s := range scans {
		for _, d := range s.decls {
			if !referenced[d.Short] {
				continue
			}
			prev, _ := table.Lookup(d.Short)
			conflict, err := table.Set(d.Short, d.Qualified, s.path)
			if err != nil {
				return nil, report, err
			}
			if conflict {
				rlog.Warn("ambiguous declaration for %s: %s replaces %s (%s)", d.Short, d.Qualified, prev, s.path)
				r.log.Warn("Ambiguous declaration, last one wins",
					zap.String("short", d.Short),
					zap.String("previous", prev),
					zap.String("qualified", d.Qualified),
					zap.String("path", s.path))
			}
		}
	}

	for _, short := range table.Keys() {
		q, _ := table.Lookup(short)
		rlog.Debug("resolved %s -> %s", short, q)
	}

	report.Entries = table.Len()
	report.Conflicts = table.Conflicts()
	report.Unstable = table.Unstable(r.isRef)
	for _, short := range report.Unstable {
		q, _ := table.Lookup(short)
		rlog.Warn("unstable entry %s -> %s: target has the shape of a reference", short, q)
		r.log.Warn("Resolved identifier would be rewritten again",
			zap.String("short", short),
			zap.String("qualified", q))
	}

	timer.Stop()
	r.log.Info("Resolution table built",
		zap.Int("documents", report.Documents),
		zap.Int("referenced", len(referenced)),
		zap.Int("entries", report.Entries),
		zap.Int("conflicts", len(report.Conflicts)))
	return table, report, nil
}

func (r *Resolver) scanDocument(path string) (docScan, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return docScan{}, err
	}

	s := docScan{path: path}
	for _, ref := range r.refs.References(text) {
		s.refIDs = append(s.refIDs, ref.ID)
	}
	s.decls = r.decls.Declarations(text)

	if sk, ok := r.refs.(skipper); ok {
		offsets := sk.Skipped(text)
		for _, off := range offsets {
			logging.ExtractWarn("%s:%d: malformed reference tag skipped", path, lineOf(text, off))
		}
		s.skipped = len(offsets)
	}
	logging.ExtractDebug("%s: %d references, %d declarations", path, len(s.refIDs), len(s.decls))
	return s, nil
}

func lineOf(text []byte, off int) int {
	return bytes.Count(text[:off], []byte("\n")) + 1
}

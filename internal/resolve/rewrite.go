package resolve

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"ptxref/internal/extract"
	"ptxref/internal/logging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// docRewrite is the phase 2 result for one document.
type docRewrite struct {
	refs       int
	rewritten  int
	unresolved []string
	err        *DocumentError
}

// rewrite runs phase 2 against a frozen table. Each document is an
// independent read-modify-write; a failure is recorded in the report and
// does not stop the other documents. Only cancellation aborts the phase.
func (r *Resolver) rewrite(ctx context.Context, table *Table, report *Report) error {
	wlog := logging.WithRunID(logging.CategoryRewrite, r.runID)
	timer := logging.StartTimer(wlog, "phase 2")

	paths, err := r.scanner.Paths(ctx)
	if err != nil {
		return fmt.Errorf("scan corpus: %w", err)
	}

	results := make([]docRewrite, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.rewriteDocument(path, table)
			if err != nil {
				res.err = &DocumentError{Path: path, Phase: PhaseRewrite, Err: err}
				wlog.Error("%v", res.err)
				r.log.Error("Failed to rewrite document", zap.String("path", path), zap.Error(err))
			} else {
				wlog.Debug("%s: %d/%d references rewritten", path, res.rewritten, res.refs)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	unresolved := make(map[string]bool)
	for _, res := range results {
		report.References += res.refs
		report.Rewritten += res.rewritten
		for _, id := range res.unresolved {
			unresolved[id] = true
		}
		if res.err != nil {
			report.Failures = append(report.Failures, res.err)
		}
	}
	for id := range unresolved {
		report.Unresolved = append(report.Unresolved, id)
	}
	sort.Strings(report.Unresolved)
	for _, id := range report.Unresolved {
		wlog.Debug("unresolved reference %s left unchanged", id)
	}

	timer.Stop()
	return nil
}

// rewriteDocument re-reads path, substitutes resolved identifiers and writes
// the text back unconditionally, keeping the file's permissions.
func (r *Resolver) rewriteDocument(path string, table *Table) (docRewrite, error) {
	info, err := os.Stat(path)
	if err != nil {
		return docRewrite{}, err
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return docRewrite{}, err
	}

	refs := r.refs.References(text)
	out, rewritten, unresolved := Apply(text, refs, table)

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return docRewrite{refs: len(refs)}, err
	}
	return docRewrite{refs: len(refs), rewritten: rewritten, unresolved: unresolved}, nil
}

// Apply returns text with the identifier span of every reference found in
// table replaced by its qualified identifier. All other bytes are copied
// unchanged. refs must be in document order, as extractors return them.
func Apply(text []byte, refs []extract.Reference, table *Table) (out []byte, rewritten int, unresolved []string) {
	if len(refs) == 0 {
		return text, 0, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(text) + 16*len(refs))
	last := 0
	for _, ref := range refs {
		if ref.Start < last || ref.End > len(text) || ref.Start > ref.End {
			continue
		}
		q, ok := table.Lookup(ref.ID)
		if !ok {
			unresolved = append(unresolved, ref.ID)
			continue
		}
		buf.Write(text[last:ref.Start])
		buf.WriteString(q)
		last = ref.End
		rewritten++
	}
	if rewritten == 0 {
		return text, 0, unresolved
	}
	buf.Write(text[last:])
	return buf.Bytes(), rewritten, unresolved
}

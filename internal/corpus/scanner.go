// Package corpus enumerates the markup documents of a source tree.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"ptxref/internal/config"
	"ptxref/internal/logging"
)

// ErrNotDirectory is returned when the corpus root exists but is not a directory.
var ErrNotDirectory = errors.New("corpus root is not a directory")

// errStop ends a walk early when an iterator consumer stops pulling.
var errStop = errors.New("stop")

// Scanner walks a corpus root and yields document paths.
// A Scanner holds no walk state, so every call re-walks the tree.
type Scanner struct {
	root   string
	cfg    config.ScanConfig
	ignore ignoreRules
}

func NewScanner(root string, cfg config.ScanConfig) *Scanner {
	return &Scanner{root: root, cfg: cfg, ignore: newIgnoreRules(cfg.IgnorePatterns)}
}

// Root returns the directory being scanned.
func (s *Scanner) Root() string {
	return s.root
}

// Walk calls fn for every document under the root, in lexical order
// (directory entries sorted by name). Returning an error from fn stops the walk.
func (s *Scanner) Walk(ctx context.Context, fn func(path string) error) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("corpus root %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", s.root, ErrNotDirectory)
	}

	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		name := d.Name()

		if d.IsDir() {
			if s.ignore.match(rel, name) {
				logging.ScanDebug("skipping ignored directory %s", rel)
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if s.ignore.match(rel, name) {
			return nil
		}
		if !hasExtension(name, s.cfg.Extensions) {
			return nil
		}
		if isExcludedName(name, s.cfg.ExcludeNames) {
			logging.ScanDebug("skipping excluded document %s", rel)
			return nil
		}

		return fn(path)
	})
}

// All returns a lazy, restartable sequence of document paths. A walk error is
// yielded once as the final element.
func (s *Scanner) All(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := s.Walk(ctx, func(path string) error {
			if !yield(path, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield("", err)
		}
	}
}

// Paths collects every document path in walk order.
func (s *Scanner) Paths(ctx context.Context) ([]string, error) {
	var paths []string
	err := s.Walk(ctx, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Scan("found %d documents under %s", len(paths), s.root)
	return paths, nil
}

package resolve

import (
	"sort"
	"sync"
)

// Candidate is one declaration that competed for a short identifier.
type Candidate struct {
	Qualified string `json:"qualified" yaml:"qualified"`
	Path      string `json:"path" yaml:"path"`
}

// Conflict records a short identifier declared with more than one distinct
// qualified identifier. Winner is the last candidate in scan order.
type Conflict struct {
	Short      string      `json:"short" yaml:"short"`
	Winner     string      `json:"winner" yaml:"winner"`
	Candidates []Candidate `json:"candidates" yaml:"candidates"`
}

// Table maps short identifiers to qualified identifiers for one run.
// It is written during phase 1 and frozen before phase 2; lookups are safe
// for concurrent use.
type Table struct {
	mu         sync.RWMutex
	entries    map[string]string
	candidates map[string][]Candidate
	frozen     bool
}

func NewTable() *Table {
	return &Table{
		entries:    make(map[string]string),
		candidates: make(map[string][]Candidate),
	}
}

// Set records short -> qualified, overwriting any earlier entry. It reports
// whether the overwrite replaced a different qualified identifier.
func (t *Table) Set(short, qualified, path string) (conflict bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return false, ErrFrozen
	}

	prev, had := t.entries[short]
	t.entries[short] = qualified

	cand := Candidate{Qualified: qualified, Path: path}
	known := false
	for _, c := range t.candidates[short] {
		if c == cand {
			known = true
			break
		}
	}
	if !known {
		t.candidates[short] = append(t.candidates[short], cand)
	}
	return had && prev != qualified, nil
}

// Lookup returns the qualified identifier for short.
func (t *Table) Lookup(short string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	q, ok := t.entries[short]
	return q, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Freeze makes the table read-only.
func (t *Table) Freeze() {
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (t *Table) Frozen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frozen
}

// Keys returns the short identifiers in sorted order.
func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of the mapping.
func (t *Table) Entries() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

// Conflicts returns every short identifier with more than one distinct
// qualified candidate, sorted by short identifier.
func (t *Table) Conflicts() []Conflict {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Conflict
	for short, cands := range t.candidates {
		distinct := make(map[string]bool)
		for _, c := range cands {
			distinct[c.Qualified] = true
		}
		if len(distinct) < 2 {
			continue
		}
		out = append(out, Conflict{
			Short:      short,
			Winner:     t.entries[short],
			Candidates: append([]Candidate(nil), cands...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Short < out[j].Short })
	return out
}

// Unstable returns the short identifiers whose qualified identifier has the
// shape of a reference itself, so a rewritten reference may be rewritten again
// by the next run. isRef decides the shape; when nil, only qualified
// identifiers that are keys of this table count.
func (t *Table) Unstable(isRef func(id string) bool) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	for short, q := range t.entries {
		if q == short {
			continue
		}
		_, isKey := t.entries[q]
		if isKey || (isRef != nil && isRef(q)) {
			out = append(out, short)
		}
	}
	sort.Strings(out)
	return out
}

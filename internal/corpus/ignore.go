package corpus

import (
	"path"
	"path/filepath"
	"strings"
)

// ignoreRules holds the configured ignore patterns, normalized once per
// Scanner. A plain entry matches a path component by name (".git") or a
// leading directory ("drafts/old"); an entry with glob metacharacters is
// matched against the slash-separated path relative to the corpus root.
type ignoreRules struct {
	plain []string
	globs []string
}

func newIgnoreRules(patterns []string) ignoreRules {
	var r ignoreRules
	for _, raw := range patterns {
		p := strings.TrimRight(strings.TrimSpace(raw), `/\`)
		p = filepath.ToSlash(p)
		switch {
		case p == "":
		case strings.ContainsAny(p, "*?[]"):
			r.globs = append(r.globs, p)
		default:
			r.plain = append(r.plain, p)
		}
	}
	return r
}

// match reports whether the entry at rel (base name name) is ignored.
func (r ignoreRules) match(rel, name string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range r.plain {
		if name == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	for _, g := range r.globs {
		if ok, _ := path.Match(g, rel); ok {
			return true
		}
		// "drafts/*" also covers everything nested below drafts/
		if dir, found := strings.CutSuffix(g, "/*"); found && strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

// isExcludedName reports whether a file's base name carries an excluded marker
// such as "toctree".
func isExcludedName(name string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// hasExtension reports whether name ends in one of exts (case-sensitive).
func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

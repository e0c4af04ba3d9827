package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Patterns is the regular-expression Extractor.
//
// A reference is <xref ref="ID" ...> closed on the same line, where ID starts
// with one of the categories. A declaration is xml:id="VALUE"; every suffix of
// VALUE that follows a non-leading '_' and starts with a category is a short
// identifier VALUE declares.
type Patterns struct {
	categories []string
	ref        *regexp.Regexp
	open       *regexp.Regexp
	decl       *regexp.Regexp
}

var _ Extractor = (*Patterns)(nil)

var declPattern = regexp.MustCompile(`xml:id="([^"\n]*)"`)

// NewPatterns compiles the patterns for the given category prefixes.
func NewPatterns(categories []string) (*Patterns, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("at least one reference category is required")
	}

	cats := make([]string, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c == "" {
			return nil, fmt.Errorf("empty reference category")
		}
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	// Longest first so the captured category is the most specific one.
	sort.SliceStable(cats, func(i, j int) bool { return len(cats[i]) > len(cats[j]) })

	quoted := make([]string, len(cats))
	for i, c := range cats {
		quoted[i] = regexp.QuoteMeta(c)
	}
	alt := strings.Join(quoted, "|")

	ref, err := regexp.Compile(`<xref ref="((` + alt + `)[^"\n]*)"[^>\n]*>`)
	if err != nil {
		return nil, fmt.Errorf("compile reference pattern: %w", err)
	}
	open, err := regexp.Compile(`<xref ref="(?:` + alt + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile reference opening pattern: %w", err)
	}

	return &Patterns{categories: cats, ref: ref, open: open, decl: declPattern}, nil
}

// MustPatterns is NewPatterns that panics on error.
func MustPatterns(categories ...string) *Patterns {
	p, err := NewPatterns(categories)
	if err != nil {
		panic(err)
	}
	return p
}

// Categories returns the recognized prefixes, longest first.
func (p *Patterns) Categories() []string {
	return append([]string(nil), p.categories...)
}

// References returns every well-formed reference in text, in order.
func (p *Patterns) References(text []byte) []Reference {
	matches := p.ref.FindAllSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Reference{
			ID:       string(text[m[2]:m[3]]),
			Category: string(text[m[4]:m[5]]),
			Start:    m[2],
			End:      m[3],
		})
	}
	return refs
}

// Skipped returns the offsets of reference openings that do not form a
// well-formed tag (unterminated attribute, tag not closed on its line).
func (p *Patterns) Skipped(text []byte) []int {
	opens := p.open.FindAllIndex(text, -1)
	if len(opens) == 0 {
		return nil
	}
	ok := make(map[int]bool)
	for _, m := range p.ref.FindAllIndex(text, -1) {
		ok[m[0]] = true
	}
	var skipped []int
	for _, o := range opens {
		if !ok[o[0]] {
			skipped = append(skipped, o[0])
		}
	}
	return skipped
}

// Declarations returns every (qualified, short) pair declared in text, in
// document order. A qualified id embedding several short ids yields one
// Declaration per short id, outermost first.
func (p *Patterns) Declarations(text []byte) []Declaration {
	var decls []Declaration
	for _, m := range p.decl.FindAllSubmatchIndex(text, -1) {
		value := string(text[m[2]:m[3]])
		for i := 1; i < len(value)-1; i++ {
			if value[i] != '_' {
				continue
			}
			short := value[i+1:]
			if p.IsReferenceID(short) {
				decls = append(decls, Declaration{Qualified: value, Short: short, Offset: m[2]})
			}
		}
	}
	return decls
}

// IsReferenceID reports whether id has the shape of a reference identifier,
// i.e. starts with a recognized category.
func (p *Patterns) IsReferenceID(id string) bool {
	return p.Category(id) != ""
}

// Category returns the most specific category id starts with, or "".
func (p *Patterns) Category(id string) string {
	for _, c := range p.categories {
		if strings.HasPrefix(id, c) {
			return c
		}
	}
	return ""
}

// Package extract finds cross-reference uses and identifier declarations in
// PreTeXt source text.
//
// Extraction is pattern based: the source is treated as semi-structured text,
// not parsed. The ReferenceExtractor and DeclarationExtractor interfaces keep
// callers independent of that choice.
package extract

// Reference is one <xref ref="ID"> use.
type Reference struct {
	// ID is the identifier as written in the ref attribute.
	ID string
	// Category is the recognized prefix ID starts with (e.g. "lst-").
	Category string
	// Start and End delimit ID in the document text.
	Start, End int
}

// Declaration pairs a qualified xml:id with one short identifier it embeds
// as an underscore-delimited suffix.
type Declaration struct {
	Qualified string
	Short     string
	// Offset is the position of the attribute value in the document text.
	Offset int
}

// ReferenceExtractor finds reference uses in a document.
type ReferenceExtractor interface {
	References(text []byte) []Reference
}

// DeclarationExtractor finds declarations in a document.
type DeclarationExtractor interface {
	Declarations(text []byte) []Declaration
}

// Extractor does both.
type Extractor interface {
	ReferenceExtractor
	DeclarationExtractor
}

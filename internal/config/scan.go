package config

// ScanConfig controls which files under the corpus root are documents.
type ScanConfig struct {
	// Extensions lists the markup extensions (with leading dot) to process.
	Extensions []string `yaml:"extensions" json:"extensions,omitempty"`
	// ExcludeNames skips files whose base name contains any of these markers.
	ExcludeNames []string `yaml:"exclude_names" json:"exclude_names,omitempty"`
	// IgnorePatterns skips matching paths/dirs (relative to the root).
	// Supports simple dir names (e.g., ".git") and glob patterns (e.g., "drafts/*").
	IgnorePatterns []string `yaml:"ignore_patterns" json:"ignore_patterns,omitempty"`
}

// DefaultScanConfig returns defaults for a PreTeXt source tree.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Extensions:   []string{".ptx"},
		ExcludeNames: []string{"toctree"},
		IgnorePatterns: []string{
			".git",
			".ptxref",
		},
	}
}

package processor

import "github.com/sevigo/textchunk/tokenizer"

// SettingsLookup resolves index-specific settings consumed while processing
// a document. It is consulted once per document, and only when the configured
// algorithm needs a runtime max token count.
type SettingsLookup interface {
	// MaxTokenCount returns the tokenization cutoff for the given index.
	// An empty or unknown index name resolves to a global default.
	MaxTokenCount(indexName string) int
}

// StaticSettings is a SettingsLookup backed by an in-memory table.
// The zero value resolves everything to the default cutoff.
type StaticSettings struct {
	// Default is the global cutoff; non-positive means the built-in default.
	Default int
	// PerIndex holds per-index overrides.
	PerIndex map[string]int
}

func (s StaticSettings) MaxTokenCount(indexName string) int {
	if v, ok := s.PerIndex[indexName]; ok && v > 0 {
		return v
	}
	if s.Default > 0 {
		return s.Default
	}
	return tokenizer.DefaultMaxTokenCount
}

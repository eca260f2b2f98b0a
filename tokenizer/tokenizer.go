package tokenizer

import "context"

// Tokenizer is an interface for components that can split text into an
// ordered sequence of token strings. This keeps the chunking strategies
// decoupled from any specific tokenization implementation.
type Tokenizer interface {
	// Tokenize splits text using the named tokenizer. maxTokenCount is a hard
	// cutoff: producing more tokens than that is an error, not a truncation.
	Tokenize(ctx context.Context, text, tokenizerName string, maxTokenCount int) ([]string, error)
}

package chunker

import (
	"context"
	"fmt"
	"sort"

	"github.com/sevigo/textchunk/schema"
	"github.com/sevigo/textchunk/tokenizer"
)

// Supported algorithm names.
const (
	FixedTokenLengthAlgorithm = "fixed_token_length"
	DelimiterAlgorithm        = "delimiter"
)

// RuntimeParams carries values that are only known at document-processing
// time, as opposed to the static parameters fixed when a chunker is built.
type RuntimeParams struct {
	// MaxTokenCount is the tokenization cutoff for the index the document
	// belongs to. Zero or negative means the default cutoff.
	MaxTokenCount int
}

// Chunker splits one text value into an ordered list of passages. A Chunker
// is configured once, immutable afterwards, and safe to share across
// concurrent processing calls.
type Chunker interface {
	Chunk(ctx context.Context, text string, rp RuntimeParams) ([]string, error)
}

// Dependencies carries the collaborators a chunker may need.
type Dependencies struct {
	Tokenizer tokenizer.Tokenizer
}

type factory struct {
	build         func(deps Dependencies, params map[string]any) (Chunker, error)
	runtimeParams bool
}

var factories = map[string]factory{
	FixedTokenLengthAlgorithm: {
		build: func(deps Dependencies, params map[string]any) (Chunker, error) {
			return NewFixedTokenChunker(deps.Tokenizer, params)
		},
		runtimeParams: true,
	},
	DelimiterAlgorithm: {
		build: func(_ Dependencies, params map[string]any) (Chunker, error) {
			return NewDelimiterChunker(params)
		},
	},
}

// New builds the named chunking algorithm from its parameter map. The
// constructor validates all static parameters; Chunk assumes a valid state.
func New(name string, deps Dependencies, params map[string]any) (Chunker, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf(
			"%w: chunking algorithm [%s] is not supported, supported algorithms are %v",
			schema.ErrInvalidConfig, name, Names(),
		)
	}
	if params == nil {
		params = map[string]any{}
	}
	return f.build(deps, params)
}

// Names returns the supported algorithm names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequiresRuntimeParameters reports whether the named algorithm consumes
// per-document runtime parameters.
func RequiresRuntimeParameters(name string) bool {
	return factories[name].runtimeParams
}
